// Package kv provides the byte store zenmap persists its records in. Every
// backend maps a fixed string key to an opaque value.
package kv

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("kv: key not found")

// Substrate is a synchronous string-keyed byte store.
type Substrate interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Close() error
}

const (
	BackendBolt   = "bolt"
	BackendBadger = "badger"
	BackendFile   = "file"
)

// Backends lists the accepted backend names.
var Backends = []string{BackendBolt, BackendBadger, BackendFile}

// Options selects and locates a backend.
type Options struct {
	Backend string
	// Path is the bolt file, the badger directory or the file-backend
	// directory. Empty with InMemory set runs badger without disk.
	Path     string
	InMemory bool
	// Logger receives badger's log lines. Other backends do not log.
	Logger logrus.FieldLogger
}

// DefaultPath returns where a backend keeps its data inside dataDir.
func DefaultPath(backend, dataDir string) string {
	switch backend {
	case BackendBadger:
		return filepath.Join(dataDir, "badger")
	case BackendFile:
		return filepath.Join(dataDir, "records")
	default:
		return filepath.Join(dataDir, "zenmap.bolt")
	}
}

// Open returns the backend named in opts.
func Open(opts Options) (Substrate, error) {
	switch opts.Backend {
	case BackendBolt, "":
		return OpenBolt(opts.Path)
	case BackendBadger:
		return OpenBadger(opts.Path, opts.InMemory, opts.Logger)
	case BackendFile:
		return OpenFile(opts.Path)
	default:
		return nil, fmt.Errorf("kv: unknown backend %q", opts.Backend)
	}
}
