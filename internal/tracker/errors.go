package tracker

import "errors"

// Sentinel errors returned by tracker operations. The HTTP layer maps these
// onto status codes; the CLI prints them as-is.
var (
	// ErrHabitNotFound is returned when an operation names a habit that is
	// not in the grid.
	ErrHabitNotFound = errors.New("habit not found")

	// ErrNotConnected is returned when a spreadsheet operation runs while
	// no sheet is configured.
	ErrNotConnected = errors.New("Google Sheets not connected")

	// ErrMirror wraps spreadsheet transport failures that are surfaced to
	// the caller. Best-effort pushes log instead of returning this.
	ErrMirror = errors.New("spreadsheet sync failed")
)

// ValidationError reports malformed operation input.
type ValidationError struct {
	Field  string // offending input field
	Reason string // human-readable description
}

func (e *ValidationError) Error() string { return e.Reason }

// IsNotFound reports whether err means the named habit does not exist.
func IsNotFound(err error) bool { return errors.Is(err, ErrHabitNotFound) }

// IsNotConnected reports whether err means no spreadsheet is configured.
func IsNotConnected(err error) bool { return errors.Is(err, ErrNotConnected) }

// IsMirror reports whether err is a spreadsheet transport failure.
func IsMirror(err error) bool { return errors.Is(err, ErrMirror) }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
