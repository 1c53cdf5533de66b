package importsort

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrMalformedImport is matched by every MalformedImportError
var ErrMalformedImport = errors.New("malformed import statement")

// MalformedImportError is returned when an import statement cannot be
// tokenized or does not match any supported shape.
type MalformedImportError struct {
	Line   int // 1-based line where the statement starts
	Reason string
}

func (e *MalformedImportError) Error() string {
	return fmt.Sprintf("%s at line %d: %s", ErrMalformedImport, e.Line, e.Reason)
}

// Is reports whether target is ErrMalformedImport
func (e *MalformedImportError) Is(target error) bool {
	return target == ErrMalformedImport
}

func malformed(line int, format string, args ...any) error {
	return &MalformedImportError{Line: line + 1, Reason: fmt.Sprintf(format, args...)}
}
