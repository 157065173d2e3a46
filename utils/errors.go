package utils

import (
	"github.com/pkg/errors"
)

// NewIndexOutOfRangeError describes an index outside [0, size).
func NewIndexOutOfRangeError(what string, index, size int) error {
	return errors.Errorf("%s index %d out of range [0, %d)", what, index, size)
}
