package useraccount

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"regexp"
)

// tokenBytes is 256 bits, auth/invite token size.
const tokenBytes = 32

// generateOpaqueToken returns a URL-safe, unpadded base64 encoding of
// tokenBytes of CSPRNG output.
func generateOpaqueToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// deviceUUIDPattern enforces the 8-64 alnum+hyphen client-generated device
// uuid format.
var deviceUUIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]{8,64}$`)

func validDeviceUUID(uuid string) bool {
	return deviceUUIDPattern.MatchString(uuid)
}

func validDeviceType(t DeviceType) bool {
	switch t {
	case DeviceWeb, DeviceAndroid, DeviceIOS, DeviceUnknown:
		return true
	default:
		return false
	}
}
