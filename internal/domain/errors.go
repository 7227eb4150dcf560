package domain

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("declaration not found")

// StorageError wraps any failure while reading declaration data.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
