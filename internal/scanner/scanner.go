// # internal/scanner/scanner.go
package scanner

import (
	"context"
	"errors"
	"fmt"

	"docwatch/internal/symbols"
)

// ErrUnsupportedFile is returned when a scanner is handed a path whose
// extension it does not own.
var ErrUnsupportedFile = errors.New("unsupported file type")

// Scanner turns one file's text into a normalized symbol model. ScanFile reads
// from disk; ScanSource parses already-retrieved text (used by drift analysis
// to re-scan historical revisions with the same grammar).
type Scanner interface {
	Supports(path string) bool
	ScanFile(ctx context.Context, path string) (*symbols.ScanResult, error)
	ScanSource(ctx context.Context, path string, source []byte) (*symbols.ScanResult, error)
}

// ParseError marks input the scanner's grammar subset could not handle. The
// caller is expected to skip the file and continue, never abort the batch.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
