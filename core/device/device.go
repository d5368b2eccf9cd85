// Package device identifies the compute targets that batches are dispatched to.
// A Device is an opaque token for the scheduler; only its textual form matters
// for load accounting and metric labels.
package device

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Device names a compute target such as "cpu" or "cuda:0".
type Device struct {
	Kind  string `json:"kind"`
	Index int    `json:"index"`
}

// CPU is the default host device.
var CPU = Device{Kind: "cpu"}

// ErrInvalidDevice is returned when a device string cannot be parsed.
var ErrInvalidDevice = errors.New("invalid device")

// New returns the device of the given kind and index. Kind is lowercased.
func New(kind string, index int) Device {
	return Device{Kind: strings.ToLower(kind), Index: index}
}

// Parse converts strings such as "CPU", "gpu:1" or "cuda:0" to a Device. A
// missing index means index zero.
func Parse(s string) (Device, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return Device{}, fmt.Errorf("%w: empty", ErrInvalidDevice)
	}
	kind, idx, found := strings.Cut(s, ":")
	if kind == "" {
		return Device{}, fmt.Errorf("%w: %q", ErrInvalidDevice, s)
	}
	if !found {
		return Device{Kind: kind}, nil
	}
	n, err := strconv.Atoi(idx)
	if err != nil || n < 0 {
		return Device{}, fmt.Errorf("%w: %q", ErrInvalidDevice, s)
	}
	return Device{Kind: kind, Index: n}, nil
}

// MustParse is like Parse but panics on error. Intended for constants in tests
// and static wiring.
func MustParse(s string) Device {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// String renders the device as "kind" for index zero CPUs and "kind:index"
// otherwise.
func (d Device) String() string {
	if d.Kind == "" {
		return "unknown"
	}
	if d.Kind == "cpu" && d.Index == 0 {
		return d.Kind
	}
	return d.Kind + ":" + strconv.Itoa(d.Index)
}

// IsZero reports whether the device was never set.
func (d Device) IsZero() bool { return d.Kind == "" }

// UnmarshalText allows devices to be decoded from configuration strings.
func (d *Device) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// MarshalText encodes the device using String.
func (d Device) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}
