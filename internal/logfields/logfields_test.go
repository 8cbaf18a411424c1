package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"BuildID", KeyBuildID, "b-1", BuildID("b-1")},
		{"Tool", KeyTool, "latexmk", Tool("latexmk")},
		{"Mode", KeyMode, "docker", Mode("docker")},
		{"Image", KeyImage, "texlive/texlive:latest-full", Image("texlive/texlive:latest-full")},
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
		{"File", KeyFile, "main.tex", File("main.tex")},
		{"Output", KeyOutput, "build", Output("build")},
		{"Stage", KeyStage, "compile", Stage("compile")},
		{"Cause", KeyCause, "quiet", Cause("quiet")},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			// Key drift would break log ingestion schemas.
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if got := tc.attr.Value.String(); got != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %v", tc.name, tc.attrVal, got)
		}
	}
}

// TestNumericHelpers verifies keys for numeric & float helpers.
func TestNumericHelpers(t *testing.T) {
	if v := ExitCode(12); v.Key != KeyExitCode || v.Value.Int64() != 12 {
		t.Fatalf("ExitCode mismatch: %v", v)
	}
	if v := Count(3); v.Key != KeyCount {
		t.Fatalf("Count key mismatch: %s", v.Key)
	}
	if v := DurationMS(1.5); v.Key != KeyDurationMS || v.Value.Float64() != 1.5 {
		t.Fatalf("DurationMS mismatch: %v", v)
	}
}

func TestError(t *testing.T) {
	if v := Error(nil); v.Value.String() != "" {
		t.Fatalf("Error(nil) should be empty, got %q", v.Value.String())
	}
	if v := Error(errors.New("boom")); v.Key != KeyError || v.Value.String() != "boom" {
		t.Fatalf("Error mismatch: %v", v)
	}
}
