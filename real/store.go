package real

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ConnectionString turns a storage address into a sqlite connection string.
// Addresses that already use the "file:" scheme are returned unchanged; a
// bare path becomes file:<path> with foreign keys enabled when requested.
func ConnectionString(address string, foreignKeys bool) string {
	if strings.HasPrefix(address, "file:") {
		return address
	}
	if !foreignKeys {
		return "file:" + address
	}
	return fmt.Sprintf("file:%s?_foreign_keys=on", address)
}

// ensureParentDir creates the directory holding a bare path store address.
func ensureParentDir(address string) error {
	if strings.HasPrefix(address, "file:") || address == ":memory:" {
		return nil
	}
	dir := filepath.Dir(address)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating store directory %s: %w", dir, err)
	}
	return nil
}
