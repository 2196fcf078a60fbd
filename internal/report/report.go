// package report renders a completed analysis run into its output formats.
// Every format is a rendering of the same run result; none is a live store.
package report

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/charmbracelet/log"

	"rightscan/internal/analysis"
	"rightscan/internal/shared"
)

// Supported output formats.
const (
	FormatJSON   = "json"
	FormatCSV    = "csv"
	FormatXLSX   = "xlsx"
	FormatSQLite = "sqlite"
)

// Formats lists every writable format in preferred order.
var Formats = []string{FormatJSON, FormatCSV, FormatXLSX, FormatSQLite}

// IsValidFormat reports whether name is a writable format.
func IsValidFormat(name string) bool {
	for _, f := range Formats {
		if f == name {
			return true
		}
	}
	return false
}

// Write renders the result into each requested format under dir and returns
// the paths written. An unknown format fails before anything is written.
func Write(result *analysis.Result, dir string, formats []string, logger *log.Logger) ([]string, error) {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	for _, format := range formats {
		if !IsValidFormat(format) {
			return nil, fmt.Errorf("%w: unknown output format %q", shared.ErrInvalidFlag, format)
		}
	}

	base := fileBase(result)
	var written []string

	for _, format := range formats {
		var (
			path string
			err  error
		)
		switch format {
		case FormatJSON:
			path = filepath.Join(dir, base+".json")
			err = WriteJSON(result, path)
		case FormatCSV:
			path = filepath.Join(dir, base+".csv")
			err = WriteCSV(result, path)
		case FormatXLSX:
			path = filepath.Join(dir, base+".xlsx")
			err = WriteXLSX(result, path)
		case FormatSQLite:
			path = filepath.Join(dir, base+".db")
			err = WriteSQLite(result, path)
		}
		if err != nil {
			return written, err
		}
		logger.Info("wrote report", "format", format, "path", path)
		written = append(written, path)
	}

	return written, nil
}

// fileBase derives a filesystem-safe base name from the artist and run date.
func fileBase(result *analysis.Result) string {
	artist := "unknown_artist"
	if result.Artist != nil && result.Artist.Name != "" {
		artist = slug(result.Artist.Name)
	}
	return fmt.Sprintf("%s_unclaimed_%s", artist, result.GeneratedAt.Format("2006-01-02"))
}

func slug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "unknown_artist"
	}
	return b.String()
}
