//go:build windows

package memory

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
)

// fileLock on Windows falls back to create-exclusive semantics: the
// lock exists while the sentinel file exists. Unlike flock this does
// not self-release on crash, so stale locks time out via lockWait.
type fileLock struct {
	file *os.File
	path string
}

func acquireLock(path string, wait time.Duration) (*fileLock, error) {
	deadline := time.Now().Add(wait)
	for {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			_, _ = fmt.Fprintf(f, "pid=%d\n", os.Getpid())
			return &fileLock{file: f, path: path}, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("open lock file: %w", err)
		}
		if time.Now().After(deadline) {
			// Assume the previous holder crashed and steal the lock.
			_ = os.Remove(path)
			continue
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func (l *fileLock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	closeErr := l.file.Close()
	removeErr := os.Remove(l.path)
	l.file = nil

	if closeErr != nil {
		return fmt.Errorf("close %s: %w", l.path, closeErr)
	}
	if removeErr != nil {
		return fmt.Errorf("remove %s: %w", l.path, removeErr)
	}
	return nil
}
