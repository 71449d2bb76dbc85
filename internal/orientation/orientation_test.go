package orientation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allDevices = []Device{
	DeviceUnknown, DevicePortrait, DevicePortraitUpsideDown,
	DeviceLandscapeLeft, DeviceLandscapeRight, DeviceFaceUp, DeviceFaceDown,
}

var allInterfaces = []Interface{
	InterfaceUnavailable, InterfacePortrait, InterfacePortraitUpsideDown,
	InterfaceLandscapeLeft, InterfaceLandscapeRight,
}

func TestResolve_Table(t *testing.T) {
	cases := []struct {
		device Device
		iface  Interface
		want   Correction
	}{
		{DevicePortrait, InterfaceUnavailable, CorrectionNone},
		{DeviceUnknown, InterfaceUnavailable, CorrectionNone},
		{DevicePortraitUpsideDown, InterfaceUnavailable, CorrectionRotate180},
		{DeviceLandscapeLeft, InterfaceUnavailable, CorrectionRotate180},
		{DeviceLandscapeRight, InterfaceUnavailable, CorrectionRotate180},
		{DeviceFaceUp, InterfaceLandscapeLeft, CorrectionRotate180},
		{DeviceFaceUp, InterfaceLandscapeRight, CorrectionRotate180},
		{DeviceFaceUp, InterfacePortrait, CorrectionNone},
		{DeviceFaceUp, InterfaceUnavailable, CorrectionNone},
		{DeviceFaceDown, InterfaceLandscapeRight, CorrectionRotate180},
		{DeviceFaceDown, InterfacePortraitUpsideDown, CorrectionNone},
		{DeviceFaceDown, InterfaceUnavailable, CorrectionNone},
		{Device(42), InterfaceLandscapeLeft, CorrectionNone},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Resolve(c.device, c.iface), "%s/%s", c.device, c.iface)
	}
}

func TestResolve_NonFlatIgnoresInterface(t *testing.T) {
	for _, d := range allDevices {
		if d.IsFlat() {
			continue
		}
		want := Resolve(d, InterfaceUnavailable)
		for _, i := range allInterfaces {
			assert.Equal(t, want, Resolve(d, i), "device %s interface %s", d, i)
		}
	}
}

func TestResolve_FlatMatchesUprightEquivalent(t *testing.T) {
	for _, d := range []Device{DeviceFaceUp, DeviceFaceDown} {
		assert.Equal(t, Resolve(DeviceLandscapeLeft, InterfaceUnavailable), Resolve(d, InterfaceLandscapeLeft))
		assert.Equal(t, Resolve(DeviceLandscapeRight, InterfaceUnavailable), Resolve(d, InterfaceLandscapeRight))
		assert.Equal(t, Resolve(DevicePortrait, InterfaceUnavailable), Resolve(d, InterfacePortrait))
	}
}

type countingProvider struct {
	device         Device
	iface          Interface
	interfaceCalls int
}

func (p *countingProvider) Device() Device { return p.device }

func (p *countingProvider) Interface() Interface {
	p.interfaceCalls++
	return p.iface
}

func TestResolveFrom_QueriesInterfaceOnlyWhenFlat(t *testing.T) {
	p := &countingProvider{device: DeviceLandscapeLeft, iface: InterfacePortrait}
	assert.Equal(t, CorrectionRotate180, ResolveFrom(p))
	assert.Zero(t, p.interfaceCalls)

	p = &countingProvider{device: DeviceFaceUp, iface: InterfaceLandscapeRight}
	assert.Equal(t, CorrectionRotate180, ResolveFrom(p))
	assert.Equal(t, 1, p.interfaceCalls)
}

func TestResolveFrom_NilProvider(t *testing.T) {
	assert.Equal(t, CorrectionNone, ResolveFrom(nil))
}

func TestStaticProvider(t *testing.T) {
	p := StaticProvider{DeviceOrientation: DeviceFaceDown, InterfaceOrientation: InterfaceLandscapeLeft}
	assert.Equal(t, CorrectionRotate180, ResolveFrom(p))
}

func TestParseDeviceAndInterface(t *testing.T) {
	for _, d := range allDevices {
		got, err := ParseDevice(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}
	for _, i := range allInterfaces {
		got, err := ParseInterface(i.String())
		require.NoError(t, err)
		assert.Equal(t, i, got)
	}

	d, err := ParseDevice(" Face_Up ")
	require.NoError(t, err)
	assert.Equal(t, DeviceFaceUp, d)

	d, err = ParseDevice("")
	require.NoError(t, err)
	assert.Equal(t, DeviceUnknown, d)

	i, err := ParseInterface("")
	require.NoError(t, err)
	assert.Equal(t, InterfaceUnavailable, i)

	_, err = ParseDevice("sideways")
	require.Error(t, err)
	_, err = ParseInterface("diagonal")
	require.Error(t, err)
}
