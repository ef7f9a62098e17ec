// Package file implements the local-folder source: every .csv and .json file
// directly inside a folder becomes one raw table keyed by its file stem.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"retailetl/internal/config"
	"retailetl/internal/datasource"
	"retailetl/internal/logging"
)

func init() {
	datasource.Register(config.SourceLocal, func(p config.Pipeline, log *logging.Logger) (datasource.Extractor, error) {
		return NewFolder(p.Local.Folder, p, log), nil
	})
}

// Local is a filesystem data source that opens one file from the local disk.
type Local struct{ path string }

// NewLocal returns a Local data source bound to path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Open opens the configured path for reading. A context that is already
// done short-circuits without touching the filesystem. Filesystem errors are
// wrapped with the path and keep working with errors.Is.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}

// Folder extracts every supported file in a directory. Subdirectories are
// not traversed.
type Folder struct {
	dir string
	p   config.Pipeline
	log *logging.Logger
}

// NewFolder returns a Folder over dir. p supplies parser options.
func NewFolder(dir string, p config.Pipeline, log *logging.Logger) *Folder {
	return &Folder{dir: dir, p: p, log: logging.OrNop(log).With("source", "local", "folder", dir)}
}

// Extract reads the folder. A missing folder is an error; a file that cannot
// be read or parsed is logged and skipped.
func (f *Folder) Extract(ctx context.Context) (datasource.RawTables, error) {
	f.log.Info("attempting to load files")
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		f.log.Error("directory not found", "error", err)
		return nil, fmt.Errorf("read folder %s: %w", f.dir, err)
	}

	out := datasource.RawTables{}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() {
			continue
		}
		key, ext, ok := datasource.SplitName(e.Name())
		if !ok {
			continue
		}
		if key == "" {
			f.log.Warn("skipping file with empty key", "file", e.Name())
			continue
		}
		tbl, err := datasource.Read(ctx, f.p, f.log, NewLocal(filepath.Join(f.dir, e.Name())), ext)
		if err != nil {
			f.log.Error("error reading file", "file", e.Name(), "error", err)
			continue
		}
		out[key] = tbl
		f.log.Info("loaded file", "file", e.Name(), "format", ext, "rows", tbl.Len())
	}
	return out, nil
}
