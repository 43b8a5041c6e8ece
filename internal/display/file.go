package display

import (
	"log"
	"os"
	"path/filepath"
	"sync"

	"bubbleviz/domain/core"
	"bubbleviz/ports"
)

// File is a display target backed by a file on disk. Each Show rewrites the
// file atomically through a temp file and rename.
type File struct {
	id   core.ChartID
	path string

	mu  sync.Mutex
	err error
}

// NewFile creates a target writing to path
func NewFile(path string) *File {
	return &File{id: core.NewChartID(), path: path}
}

// ID returns the chart id of the target
func (f *File) ID() string {
	return f.id.String()
}

// Path returns the file the target writes to
func (f *File) Path() string {
	return f.path
}

// Show rewrites the file with content; a failed write is kept for Err
func (f *File) Show(content ports.Content) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.err = writeAtomic(f.path, content.Body)
	if f.err != nil {
		log.Printf("[Display] Failed to write %s: %v", f.path, f.err)
	}
}

// Err returns the error of the most recent write
func (f *File) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
