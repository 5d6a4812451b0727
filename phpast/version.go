package phpast

import (
	"errors"
	"fmt"
)

// Version is the only php-ast node format version this package emits
const Version = 40

// ErrUnsupportedVersion is returned when a caller asks for any other version
var ErrUnsupportedVersion = errors.New("unsupported ast version")

// CheckVersion fails unless version is the supported one
func CheckVersion(version int) error {
	if version != Version {
		return fmt.Errorf("%w: unexpected version: want %d, got %d", ErrUnsupportedVersion, Version, version)
	}
	return nil
}
