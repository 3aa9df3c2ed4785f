package cli

import (
	"errors"
	"fmt"
	"testing"

	"miyabi-hq/statusproxy/pkg/config"
)

func TestConfigError(t *testing.T) {
	err := &ConfigError{
		Field:   "gateway.timeout",
		Message: "missing required field",
	}

	expected := "config error in gateway.timeout: missing required field"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewConfigError(t *testing.T) {
	err := NewConfigError("field", "message")
	if err.Field != "field" {
		t.Errorf("Field = %q, want %q", err.Field, "field")
	}
	if err.Message != "message" {
		t.Errorf("Message = %q, want %q", err.Message, "message")
	}
}

func TestCommandError(t *testing.T) {
	underlyingErr := errors.New("underlying error")
	err := &CommandError{
		Command: "probe",
		Err:     underlyingErr,
	}

	expected := "command probe failed: underlying error"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestCommandErrorUnwrap(t *testing.T) {
	underlyingErr := errors.New("underlying error")
	err := &CommandError{
		Command: "probe",
		Err:     underlyingErr,
	}

	unwrapped := err.Unwrap()
	if unwrapped != underlyingErr {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, underlyingErr)
	}

	// Test with errors.Is
	if !errors.Is(err, underlyingErr) {
		t.Error("errors.Is() should work with CommandError.Unwrap()")
	}
}

func TestNewCommandError(t *testing.T) {
	underlyingErr := errors.New("test")
	err := NewCommandError("command", underlyingErr)

	if err.Command != "command" {
		t.Errorf("Command = %q, want %q", err.Command, "command")
	}
	if err.Err != underlyingErr {
		t.Errorf("Err = %v, want %v", err.Err, underlyingErr)
	}
}

func TestConfigError_NoField(t *testing.T) {
	err := &ConfigError{Message: "file not found"}

	expected := "config error: file not found"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestConfigErrors(t *testing.T) {
	wrapped := fmt.Errorf("configuration validation failed: %w", config.ValidationError{
		Errors: []config.FieldError{
			{Field: "proxy.port", Message: "must be between 1 and 65535"},
			{Field: "gateway.paths", Message: "must not be empty"},
		},
	})

	got := ConfigErrors(wrapped)
	if len(got) != 2 {
		t.Fatalf("ConfigErrors() returned %d errors, want 2", len(got))
	}
	if got[0].Field != "proxy.port" || got[1].Field != "gateway.paths" {
		t.Errorf("fields = %q, %q", got[0].Field, got[1].Field)
	}

	plain := ConfigErrors(errors.New("open statusproxy.yaml: no such file"))
	if len(plain) != 1 || plain[0].Field != "" {
		t.Errorf("ConfigErrors(plain) = %+v", plain)
	}

	if ConfigErrors(nil) != nil {
		t.Error("ConfigErrors(nil) should be nil")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"generic", errors.New("boom"), ExitFailure},
		{"config error", NewConfigError("output", "bad"), ExitConfig},
		{"wrapped config error", NewCommandError("probe", NewConfigError("output", "bad")), ExitConfig},
		{"validation error", fmt.Errorf("load: %w", config.ValidationError{}), ExitConfig},
		{"command error", NewCommandError("probe", errors.New("all paths failed")), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
