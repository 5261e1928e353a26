package config

import (
	"fmt"
	"reflect"
	"strings"
)

// Validator validates a configuration value.
type Validator interface {
	Validate(config interface{}) error
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(config interface{}) error

func (f ValidatorFunc) Validate(config interface{}) error {
	return f(config)
}

// Validate runs validators in order and stops at the first failure.
func Validate(config interface{}, validators ...Validator) error {
	for _, v := range validators {
		if err := v.Validate(config); err != nil {
			return fmt.Errorf("config validation: %w", err)
		}
	}
	return nil
}

// RequiredFields validates that the named fields are not zero.
// Nested fields use dot notation ("AI.Provider").
func RequiredFields(fields ...string) Validator {
	return ValidatorFunc(func(config interface{}) error {
		val := structValue(config)
		if !val.IsValid() {
			return fmt.Errorf("config must be a struct")
		}

		var missing []string
		for _, name := range fields {
			fieldVal := nestedField(val, name)
			if !fieldVal.IsValid() {
				return fmt.Errorf("field %s not found", name)
			}
			if fieldVal.IsZero() {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("required fields are missing: %s", strings.Join(missing, ", "))
		}
		return nil
	})
}

// RangeValidator validates that a numeric field lies within [min, max].
func RangeValidator(fieldName string, min, max float64) Validator {
	return ValidatorFunc(func(config interface{}) error {
		fieldVal := nestedField(structValue(config), fieldName)
		if !fieldVal.IsValid() {
			return fmt.Errorf("field %s not found", fieldName)
		}

		var n float64
		switch fieldVal.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			n = float64(fieldVal.Int())
		case reflect.Float32, reflect.Float64:
			n = fieldVal.Float()
		default:
			return fmt.Errorf("field %s is not numeric", fieldName)
		}

		if n < min || n > max {
			return fmt.Errorf("field %s value %v is out of range [%v, %v]", fieldName, n, min, max)
		}
		return nil
	})
}

// OneOfValidator validates that a field equals one of the allowed values.
func OneOfValidator(fieldName string, allowed ...interface{}) Validator {
	return ValidatorFunc(func(config interface{}) error {
		fieldVal := nestedField(structValue(config), fieldName)
		if !fieldVal.IsValid() {
			return fmt.Errorf("field %s not found", fieldName)
		}
		got := fieldVal.Interface()
		for _, want := range allowed {
			if reflect.DeepEqual(got, want) {
				return nil
			}
		}
		return fmt.Errorf("field %s value %v is not one of %v", fieldName, got, allowed)
	})
}

func structValue(config interface{}) reflect.Value {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return reflect.Value{}
	}
	return val
}

func nestedField(val reflect.Value, fieldPath string) reflect.Value {
	current := val
	for _, part := range strings.Split(fieldPath, ".") {
		if current.Kind() == reflect.Ptr {
			current = current.Elem()
		}
		if current.Kind() != reflect.Struct {
			return reflect.Value{}
		}
		current = current.FieldByName(part)
		if !current.IsValid() {
			return reflect.Value{}
		}
	}
	return current
}
