// Package validation provides pre-run checks for collection roots.
package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Error represents a validation failure with context.
type Error struct {
	// Field is the name of the argument that failed validation
	Field string
	// Message describes the validation failure
	Message string
	// Err is the underlying error (if any)
	Err error
}

// Error returns a formatted validation error message.
func (ve *Error) Error() string {
	if ve.Err != nil {
		return fmt.Sprintf("validation failed for %q: %s: %v", ve.Field, ve.Message, ve.Err)
	}
	return fmt.Sprintf("validation failed for %q: %s", ve.Field, ve.Message)
}

// Unwrap returns the underlying error for errors.Is/As.
func (ve *Error) Unwrap() error {
	return ve.Err
}

// ValidateRoot checks that path exists, is a directory, and is readable.
// field names the argument in error messages (e.g. "source").
func ValidateRoot(field, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Error{Field: field, Message: "directory does not exist", Err: err}
		}
		return &Error{Field: field, Message: "cannot access directory", Err: err}
	}
	if !info.IsDir() {
		return &Error{Field: field, Message: "not a directory"}
	}

	f, err := os.Open(path)
	if err != nil {
		return &Error{Field: field, Message: "directory is not readable", Err: err}
	}
	_ = f.Close()

	return nil
}

// ValidateRoots checks both collection roots and their relationship:
// they must be distinct directories, and neither may be nested inside
// the other, since a nested target would make the walk index files of
// the other tree.
func ValidateRoots(source, target string) error {
	if err := ValidateRoot("source", source); err != nil {
		return err
	}
	if err := ValidateRoot("target", target); err != nil {
		return err
	}

	srcAbs, err := filepath.Abs(source)
	if err != nil {
		return &Error{Field: "source", Message: "cannot resolve absolute path", Err: err}
	}
	tgtAbs, err := filepath.Abs(target)
	if err != nil {
		return &Error{Field: "target", Message: "cannot resolve absolute path", Err: err}
	}

	if srcAbs == tgtAbs {
		return &Error{Field: "target", Message: "source and target are the same directory"}
	}
	if isNested(srcAbs, tgtAbs) {
		return &Error{Field: "target", Message: "target is nested inside source"}
	}
	if isNested(tgtAbs, srcAbs) {
		return &Error{Field: "source", Message: "source is nested inside target"}
	}

	return nil
}

func isNested(parent, child string) bool {
	return strings.HasPrefix(child, parent+string(filepath.Separator))
}
