package validation

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauern/photosync/internal/util"
)

func TestValidateRoot_OK(t *testing.T) {
	if err := ValidateRoot("source", t.TempDir()); err != nil {
		t.Errorf("expected valid root, got %v", err)
	}
}

func TestValidateRoot_Missing(t *testing.T) {
	err := ValidateRoot("source", filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Fatal("expected error for missing directory")
	}

	var vErr *Error
	if !errors.As(err, &vErr) {
		t.Fatalf("expected *validation.Error, got %T", err)
	}
	if vErr.Field != "source" {
		t.Errorf("expected field source, got %q", vErr.Field)
	}
}

func TestValidateRoot_NotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	util.WriteFile(t, path, "content")

	err := ValidateRoot("target", path)
	if err == nil {
		t.Fatal("expected error for regular file")
	}

	var vErr *Error
	if !errors.As(err, &vErr) {
		t.Fatalf("expected *validation.Error, got %T", err)
	}
	if vErr.Message != "not a directory" {
		t.Errorf("unexpected message %q", vErr.Message)
	}
}

func TestValidateRoots_SameDirectory(t *testing.T) {
	dir := t.TempDir()

	if err := ValidateRoots(dir, dir); err == nil {
		t.Fatal("expected error for identical source and target")
	}
}

func TestValidateRoots_Nested(t *testing.T) {
	parent := t.TempDir()
	child := filepath.Join(parent, "inside")
	if err := os.MkdirAll(child, 0o750); err != nil {
		t.Fatalf("failed to create nested dir: %v", err)
	}

	if err := ValidateRoots(parent, child); err == nil {
		t.Error("expected error for target nested in source")
	}
	if err := ValidateRoots(child, parent); err == nil {
		t.Error("expected error for source nested in target")
	}
}

func TestValidateRoots_Distinct(t *testing.T) {
	if err := ValidateRoots(t.TempDir(), t.TempDir()); err != nil {
		t.Errorf("expected distinct roots to validate, got %v", err)
	}
}

func TestError_Formatting(t *testing.T) {
	cause := errors.New("boom")
	err := &Error{Field: "source", Message: "cannot access directory", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("expected Unwrap to expose cause")
	}
	want := `validation failed for "source": cannot access directory: boom`
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}
