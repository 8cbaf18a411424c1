package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
)

func TestTexBuilderError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *TexBuilderError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(CategoryConfig, SeverityFatal, "configuration invalid"),
			expected: "config (fatal): configuration invalid",
		},
		{
			name:     "error with cause",
			err:      Wrap(fmt.Errorf("file not found"), CategoryConfig, SeverityFatal, "failed to load config"),
			expected: "config (fatal): failed to load config: file not found",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := test.err.Error()
			if result != test.expected {
				t.Errorf("Error() = %q, want %q", result, test.expected)
			}
		})
	}
}

func TestTexBuilderError_WithContext(t *testing.T) {
	err := New(CategoryToolchain, SeverityWarning, "latexmk failed").
		WithContext("tool", "latexmk").
		WithContext("exit_code", 12)

	if err.Context == nil {
		t.Fatal("Context should not be nil")
	}
	if err.Context["tool"] != "latexmk" {
		t.Errorf("Context[tool] = %v, want latexmk", err.Context["tool"])
	}
	if err.Context["exit_code"] != 12 {
		t.Errorf("Context[exit_code] = %v, want 12", err.Context["exit_code"])
	}
}

func TestIsCategory(t *testing.T) {
	configErr := New(CategoryConfig, SeverityFatal, "config error")
	depErr := DependencyMissing("docker", "start docker", nil)
	wrapped := fmt.Errorf("setup: %w", depErr)
	standardErr := fmt.Errorf("standard error")

	tests := []struct {
		name     string
		err      error
		category ErrorCategory
		expected bool
	}{
		{"config error matches config category", configErr, CategoryConfig, true},
		{"config error doesn't match dependency category", configErr, CategoryDependency, false},
		{"wrapped dependency error matches", wrapped, CategoryDependency, true},
		{"standard error doesn't match any category", standardErr, CategoryConfig, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := IsCategory(test.err, test.category)
			if result != test.expected {
				t.Errorf("IsCategory() = %v, want %v", result, test.expected)
			}
		})
	}
}

func TestGetCategory(t *testing.T) {
	if got := GetCategory(fmt.Errorf("plain")); got != CategoryInternal {
		t.Errorf("GetCategory(plain) = %v, want %v", got, CategoryInternal)
	}
	if got := GetCategory(Interrupted()); got != CategoryInterrupted {
		t.Errorf("GetCategory(Interrupted) = %v, want %v", got, CategoryInterrupted)
	}
}

func TestConvenienceFunctions(t *testing.T) {
	t.Run("ToolFailed", func(t *testing.T) {
		err := ToolFailed("latexmk", 12)
		if err.Category != CategoryToolchain {
			t.Errorf("Category = %v, want %v", err.Category, CategoryToolchain)
		}
		if err.ExitCode != 12 {
			t.Errorf("ExitCode = %d, want 12", err.ExitCode)
		}
	})

	t.Run("DependencyMissing", func(t *testing.T) {
		cause := fmt.Errorf("exec: \"docker\": executable file not found in $PATH")
		err := DependencyMissing("docker", "install docker", cause)
		if err.Category != CategoryDependency {
			t.Errorf("Category = %v, want %v", err.Category, CategoryDependency)
		}
		if !stdErrors.Is(err, cause) {
			t.Errorf("Cause should match wrapped cause: %v", cause)
		}
		if err.Context["hint"] != "install docker" {
			t.Errorf("Context[hint] = %v, want install docker", err.Context["hint"])
		}
	})

	t.Run("ValidationFailed", func(t *testing.T) {
		err := ValidationFailed("toolchain.mode", "unsupported value")
		if err.Category != CategoryValidation {
			t.Errorf("Category = %v, want %v", err.Category, CategoryValidation)
		}
		if err.Context["field"] != "toolchain.mode" {
			t.Errorf("Context[field] = %v, want toolchain.mode", err.Context["field"])
		}
	})
}
