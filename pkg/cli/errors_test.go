package cli

import (
	"errors"
	"strings"
	"testing"
)

func TestConfigError(t *testing.T) {
	err := NewConfigError("layouts.dir", "directory does not exist")
	if !strings.Contains(err.Error(), "layouts.dir") {
		t.Errorf("expected field in message, got %q", err.Error())
	}

	err = NewConfigError("", "file not found")
	if strings.Contains(err.Error(), "in :") {
		t.Errorf("expected field omitted when empty, got %q", err.Error())
	}
}

func TestCommandError_Unwrap(t *testing.T) {
	cause := errors.New("layout directory missing")
	err := NewCommandError("lint", cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if !strings.Contains(err.Error(), "lint") {
		t.Errorf("expected command name in message, got %q", err.Error())
	}
}
