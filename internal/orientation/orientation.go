// Package orientation turns the host's device and interface orientation
// signals into the single geometric correction applied to a frame before
// barcode detection.
package orientation

import (
	"fmt"
	"strings"
)

// Device is the physical orientation reported by the device's motion sensors.
type Device int

const (
	DeviceUnknown Device = iota
	DevicePortrait
	DevicePortraitUpsideDown
	DeviceLandscapeLeft
	DeviceLandscapeRight
	DeviceFaceUp
	DeviceFaceDown
)

// Interface is the orientation of the host's user interface. It is only
// consulted when the device lies flat; InterfaceUnavailable covers platforms
// or states (no active window) where the host cannot report it.
type Interface int

const (
	InterfaceUnavailable Interface = iota
	InterfacePortrait
	InterfacePortraitUpsideDown
	InterfaceLandscapeLeft
	InterfaceLandscapeRight
)

// Correction is the canonical transform applied to a frame.
type Correction int

const (
	CorrectionNone Correction = iota
	CorrectionRotate180
)

// IsFlat reports whether the device lies face up or face down.
func (d Device) IsFlat() bool { return d == DeviceFaceUp || d == DeviceFaceDown }

// IsLandscape reports whether the interface is laid out in landscape.
// An unavailable interface orientation is not landscape.
func (i Interface) IsLandscape() bool {
	return i == InterfaceLandscapeLeft || i == InterfaceLandscapeRight
}

// Resolve maps an orientation signal to its correction. It is total: values
// outside the enumeration resolve to CorrectionNone.
func Resolve(device Device, iface Interface) Correction {
	switch device {
	case DevicePortraitUpsideDown, DeviceLandscapeLeft, DeviceLandscapeRight:
		return CorrectionRotate180
	case DeviceFaceUp, DeviceFaceDown:
		if iface.IsLandscape() {
			return CorrectionRotate180
		}
		return CorrectionNone
	default:
		return CorrectionNone
	}
}

// Provider exposes the host's orientation accessors.
type Provider interface {
	Device() Device
	// Interface returns InterfaceUnavailable when the host cannot tell.
	Interface() Interface
}

// ResolveFrom reads the provider once and resolves the correction. The
// interface orientation is only queried for a flat device.
func ResolveFrom(p Provider) Correction {
	if p == nil {
		return CorrectionNone
	}
	d := p.Device()
	iface := InterfaceUnavailable
	if d.IsFlat() {
		iface = p.Interface()
	}
	return Resolve(d, iface)
}

// StaticProvider is a fixed orientation signal, used by hosts that receive the
// orientation alongside each frame.
type StaticProvider struct {
	DeviceOrientation    Device
	InterfaceOrientation Interface
}

func (s StaticProvider) Device() Device { return s.DeviceOrientation }

func (s StaticProvider) Interface() Interface { return s.InterfaceOrientation }

var deviceNames = map[Device]string{
	DeviceUnknown:            "unknown",
	DevicePortrait:           "portrait",
	DevicePortraitUpsideDown: "portrait-upside-down",
	DeviceLandscapeLeft:      "landscape-left",
	DeviceLandscapeRight:     "landscape-right",
	DeviceFaceUp:             "face-up",
	DeviceFaceDown:           "face-down",
}

var interfaceNames = map[Interface]string{
	InterfaceUnavailable:        "unavailable",
	InterfacePortrait:           "portrait",
	InterfacePortraitUpsideDown: "portrait-upside-down",
	InterfaceLandscapeLeft:      "landscape-left",
	InterfaceLandscapeRight:     "landscape-right",
}

func (d Device) String() string {
	if n, ok := deviceNames[d]; ok {
		return n
	}
	return fmt.Sprintf("device(%d)", int(d))
}

func (i Interface) String() string {
	if n, ok := interfaceNames[i]; ok {
		return n
	}
	return fmt.Sprintf("interface(%d)", int(i))
}

func (c Correction) String() string {
	if c == CorrectionRotate180 {
		return "rotate-180"
	}
	return "none"
}

func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("_", "-", " ", "-").Replace(s)
}

// ParseDevice parses a device orientation name such as "face-up".
// The empty string is DeviceUnknown.
func ParseDevice(s string) (Device, error) {
	n := normalizeName(s)
	if n == "" {
		return DeviceUnknown, nil
	}
	for d, name := range deviceNames {
		if name == n {
			return d, nil
		}
	}
	return DeviceUnknown, fmt.Errorf("unknown device orientation %q", s)
}

// ParseInterface parses an interface orientation name such as "landscape-left".
// The empty string is InterfaceUnavailable.
func ParseInterface(s string) (Interface, error) {
	n := normalizeName(s)
	if n == "" {
		return InterfaceUnavailable, nil
	}
	for i, name := range interfaceNames {
		if name == n {
			return i, nil
		}
	}
	return InterfaceUnavailable, fmt.Errorf("unknown interface orientation %q", s)
}
