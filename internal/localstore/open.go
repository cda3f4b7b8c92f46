package localstore

import (
	"fmt"
	"path/filepath"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Open builds the backend named by the configuration. path is a directory
// for the file backend and a database file for sqlite.
func Open(backend, path string) (Store, error) {
	switch backend {
	case BackendFile:
		return NewFileStore(path)
	case BackendSQLite:
		if filepath.Ext(path) == "" {
			path = filepath.Join(path, "storefront.db")
		}
		return NewSQLiteStore(path)
	case BackendMemory:
		return NewMemStore(), nil
	default:
		return nil, fmt.Errorf("unknown local store backend %q", backend)
	}
}
