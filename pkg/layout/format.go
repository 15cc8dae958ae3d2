package layout

import (
	"path/filepath"
	"strings"

	apperrors "github.com/vale981/klayout-converter/pkg/errors"
)

// Reader parses one layout interchange format into a Layout.
type Reader interface {
	// Format returns the short format name (e.g. "gdsii").
	Format() string

	// Detect reports whether this reader handles the given file path,
	// typically by extension.
	Detect(path string) bool

	// Read opens and fully parses the file.
	Read(path string) (*Layout, error)
}

// Detect picks the reader responsible for path.
// It returns an UNSUPPORTED_FORMAT error when no reader claims the file.
func Detect(path string, readers ...Reader) (Reader, error) {
	for _, r := range readers {
		if r.Detect(path) {
			return r, nil
		}
	}

	known := make([]string, 0, len(readers))
	for _, r := range readers {
		known = append(known, r.Format())
	}
	return nil, apperrors.New(apperrors.ErrCodeUnsupportedFormat,
		"unsupported layout format: %s (supported: %s)",
		filepath.Base(path), strings.Join(known, ", "))
}
