package systemd

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// HashFileName is the file holding the install-time hash of the unit file.
const HashFileName = "unit-file.sha256"

// CheckUnitFile compares unitPath against the hash recorded in hashPath.
// It returns a warning when the unit changed since installation, and ""
// when they match or there is nothing to compare (no unit, no hash).
func CheckUnitFile(unitPath, hashPath string) string {
	data, err := os.ReadFile(unitPath)
	if errors.Is(err, fs.ErrNotExist) {
		return ""
	}
	if err != nil {
		return fmt.Sprintf("cannot read unit file %s: %v", unitPath, err)
	}

	stored, err := os.ReadFile(hashPath)
	if err != nil {
		return ""
	}
	expected := strings.TrimSpace(string(stored))
	if len(expected) != sha256.Size*2 {
		return ""
	}

	actual := hashHex(data)
	if actual == expected {
		return ""
	}
	return fmt.Sprintf("systemd unit file %s has been modified since installation (expected %s, got %s)",
		unitPath, expected[:16], actual[:16])
}

// RecordUnitHash writes the SHA-256 of unitPath to hashPath.
func RecordUnitHash(unitPath, hashPath string) error {
	data, err := os.ReadFile(unitPath)
	if err != nil {
		return fmt.Errorf("read unit file: %w", err)
	}
	return os.WriteFile(hashPath, []byte(hashHex(data)+"\n"), 0o600)
}

func hashHex(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
