// Package workspace provides per-request scratch directories.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Workspace is a temporary directory owned by one request. Files written
// under it are removed together by Release.
type Workspace struct {
	id   string
	dir  string
	once sync.Once
	err  error
}

// New creates a workspace under baseDir, or under the OS temp dir when baseDir is empty.
func New(baseDir string) (*Workspace, error) {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	id := uuid.NewString()
	dir := filepath.Join(baseDir, "ledgerrecon-"+id)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}
	return &Workspace{id: id, dir: dir}, nil
}

// ID returns the workspace's unique id.
func (w *Workspace) ID() string { return w.id }

// Dir returns the workspace directory.
func (w *Workspace) Dir() string { return w.dir }

// Path returns a path inside the workspace for name. Directory parts of name
// are discarded so callers can pass client-supplied file names.
func (w *Workspace) Path(name string) string {
	base := filepath.Base(filepath.Clean("/" + name))
	if base == "/" || base == "." {
		base = "unnamed"
	}
	return filepath.Join(w.dir, base)
}

// Release removes the workspace and everything in it. Calls after the first
// return the first call's result.
func (w *Workspace) Release() error {
	w.once.Do(func() {
		if err := os.RemoveAll(w.dir); err != nil {
			w.err = fmt.Errorf("removing workspace %s: %w", w.id, err)
		}
	})
	return w.err
}

// ReleaseAfter releases the workspace once delay has passed, logging any
// failure at warn. The returned channel is closed when release has run.
func (w *Workspace) ReleaseAfter(delay time.Duration, log zerolog.Logger) <-chan struct{} {
	done := make(chan struct{})
	release := func() {
		defer close(done)
		if err := w.Release(); err != nil {
			log.Warn().Err(err).Str("workspace", w.id).Msg("workspace cleanup failed")
			return
		}
		log.Debug().Str("workspace", w.id).Msg("workspace released")
	}
	if delay <= 0 {
		go release()
		return done
	}
	time.AfterFunc(delay, release)
	return done
}
