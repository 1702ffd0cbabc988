package utils

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeviceIDFrom(t *testing.T) {
	mac, err := net.ParseMAC("00:1a:2b:3c:4d:5e")
	assert.NoError(t, err)
	other, err := net.ParseMAC("66:77:88:99:aa:bb")
	assert.NoError(t, err)

	lister := func(ifaces ...net.Interface) func() ([]net.Interface, error) {
		return func() ([]net.Interface, error) { return ifaces, nil }
	}

	id := deviceIDFrom(lister(
		net.Interface{Name: "lo", Flags: net.FlagUp | net.FlagLoopback, HardwareAddr: other},
		net.Interface{Name: "eth1", Flags: 0, HardwareAddr: other},
		net.Interface{Name: "eth0", Flags: net.FlagUp, HardwareAddr: mac},
	))
	assert.Regexp(t, `^POS-[0-9A-F]{8}$`, id)
	assert.Equal(t, id, deviceIDFrom(lister(net.Interface{Name: "wlan0", Flags: net.FlagUp, HardwareAddr: mac})),
		"only the address matters")
	assert.NotEqual(t, id, deviceIDFrom(lister(net.Interface{Name: "eth0", Flags: net.FlagUp, HardwareAddr: other})))

	assert.Equal(t, UnknownDevice, deviceIDFrom(lister()))
	assert.Equal(t, UnknownDevice, deviceIDFrom(func() ([]net.Interface, error) { return nil, errors.New("no netlink") }))
}
