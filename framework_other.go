//go:build !darwin
// +build !darwin

package mediaremote

import "github.com/pkg/errors"

// The private framework only exists on macOS. Other platforms compile, but
// Open reports the same permanent unavailability as a failed load would.
func loadFramework() (framework, error) {
	return nil, errors.Wrap(ErrUnavailable, "mediaremote requires macOS")
}
