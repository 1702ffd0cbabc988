package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"strings"
)

// UnknownDevice is reported when no network interface has a hardware address.
const UnknownDevice = "POS-UNKNOWN"

// DeviceID hashes the MAC address of the first active, non-loopback interface
// into a short terminal id like "POS-A1B2C3D4". It is stamped into backups so a
// restore can tell which till a file came from.
func DeviceID() string {
	return deviceIDFrom(net.Interfaces)
}

func deviceIDFrom(list func() ([]net.Interface, error)) string {
	interfaces, err := list()
	if err != nil {
		return UnknownDevice
	}

	var mac string
	for _, i := range interfaces {
		if i.Flags&net.FlagUp == 0 || i.Flags&net.FlagLoopback != 0 || len(i.HardwareAddr) == 0 {
			continue
		}
		mac = i.HardwareAddr.String()
		break
	}
	if mac == "" {
		return UnknownDevice
	}

	sum := sha256.Sum256([]byte(mac + "go-pos-vault-device"))
	return "POS-" + strings.ToUpper(hex.EncodeToString(sum[:])[:8])
}
