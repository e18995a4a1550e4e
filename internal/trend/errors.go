package trend

import (
	"fmt"
	"strings"

	"github.com/newthinker/trendpulse/internal/core"
)

// LoadErrorKind classifies why a load came back incomplete.
type LoadErrorKind int

const (
	DirMissing LoadErrorKind = iota + 1
	NoFiles
	Malformed
)

func (k LoadErrorKind) String() string {
	switch k {
	case DirMissing:
		return "dir_missing"
	case NoFiles:
		return "no_files"
	case Malformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// FileError ties a parse failure to its file.
type FileError struct {
	Path string
	Err  error
}

// LoadError reports a degraded load. The store is still usable.
type LoadError struct {
	Kind   LoadErrorKind
	Source string
	Files  []FileError
	Err    error
}

func (e *LoadError) Error() string {
	switch e.Kind {
	case DirMissing:
		return fmt.Sprintf("snapshot source %s missing", e.Source)
	case NoFiles:
		return fmt.Sprintf("no snapshot files in %s", e.Source)
	case Malformed:
		names := make([]string, len(e.Files))
		for i, f := range e.Files {
			names[i] = f.Path
		}
		return fmt.Sprintf("malformed snapshot files in %s: %s", e.Source, strings.Join(names, ", "))
	default:
		return "snapshot load failed"
	}
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the core codes for the missing and malformed cases.
func (e *LoadError) Is(target error) bool {
	switch e.Kind {
	case DirMissing:
		return target == core.ErrDataDirMissing
	case Malformed:
		return target == core.ErrSnapshotMalformed
	case NoFiles:
		return target == core.ErrNoData
	}
	return false
}
