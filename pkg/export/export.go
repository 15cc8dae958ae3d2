// Package export serializes conversion results to JSON.
package export

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/vale981/klayout-converter/pkg/convert"
	apperrors "github.com/vale981/klayout-converter/pkg/errors"
)

// ErrExists reports that the output file already exists and overwriting
// was not requested. Callers can prompt and retry with force.
var ErrExists = errors.New("output file already exists")

// Write serializes the result as indented JSON.
func Write(res *convert.Result, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, err, "cannot encode result")
	}
	return nil
}

// ToFile writes the result to path, creating parent directories as needed.
// Unless force is set, an existing file is left untouched and ErrExists is
// returned.
func ToFile(res *convert.Result, path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return ErrExists
		}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "cannot create output directory %s", dir)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "cannot create output file %s", path)
	}
	if err := Write(res, f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
