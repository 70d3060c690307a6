package fileio

import (
	"os"
	"sync"
	"syscall"
)

// FileLock is an advisory exclusive lock on a sidecar file.
type FileLock struct {
	path     string
	file     *os.File
	released bool
	mu       sync.Mutex
}

// Acquire blocks until the exclusive lock on path is held. The file is created if needed.
func Acquire(path string) (*FileLock, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}

	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX); err != nil {
		file.Close()
		return nil, err
	}

	return &FileLock{path: path, file: file}, nil
}

// TryAcquire returns (nil, nil) when another holder owns the lock.
func TryAcquire(path string) (*FileLock, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}

	err = syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
	if err != nil {
		file.Close()
		if err == syscall.EWOULDBLOCK {
			return nil, nil
		}
		return nil, err
	}

	return &FileLock{path: path, file: file}, nil
}

// Release is safe to call more than once.
func (l *FileLock) Release() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.released {
		return nil
	}
	l.released = true

	if err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN); err != nil {
		l.file.Close()
		return err
	}
	return l.file.Close()
}
