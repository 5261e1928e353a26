package main

import "testing"

func TestFlagOrEnv(t *testing.T) {
	t.Setenv("GROWTHLOOP_TOPIC", "env topic")
	t.Setenv("GROWTHLOOP_VIBE", "The Narrator")

	tests := []struct {
		name      string
		flagValue string
		envName   string
		want      string
	}{
		{"flag wins over env", "flag topic", "TOPIC", "flag topic"},
		{"unset flag falls back to env", "", "TOPIC", "env topic"},
		{"vibe from env", "", "VIBE", "The Narrator"},
		{"neither set", "", "UNSET", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := flagOrEnv(tt.flagValue, tt.envName); got != tt.want {
				t.Fatalf("flagOrEnv(%q, %q) = %q, want %q", tt.flagValue, tt.envName, got, tt.want)
			}
		})
	}
}
