package errs

import (
	"strings"
	"testing"
)

func TestExitCode(t *testing.T) {
	if got := InputMalformed.ExitCode(); got != 1 {
		t.Errorf("InputMalformed.ExitCode() = %d, want 1", got)
	}
	for _, k := range []Kind{UnsupportedConstruct, InvariantViolation, UnbalancedBranches} {
		if got := k.ExitCode(); got != 2 {
			t.Errorf("%s.ExitCode() = %d, want 2", k, got)
		}
	}
}

func TestFormatIncludesKindPassPathMessage(t *testing.T) {
	err := New(UnsupportedConstruct, "translate", "unhandled expression form").WithPath("$.main.body")
	out := err.Format(false)

	for _, want := range []string{"UnsupportedConstruct", "translate", "$.main.body", "unhandled expression form"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatOmitsPathWhenUnset(t *testing.T) {
	err := New(InputMalformed, "astin", "bad json")
	out := err.Format(false)
	if strings.Contains(out, " at ") {
		t.Errorf("Format should omit the \"at\" line when Path is unset:\n%s", out)
	}
}

func TestErrorImplementsErrorInterface(t *testing.T) {
	var e error = New(InvariantViolation, "optimize", "dangling register")
	if !strings.Contains(e.Error(), "dangling register") {
		t.Errorf("Error() = %q, want it to contain the message", e.Error())
	}
}

func TestFormatAllEmpty(t *testing.T) {
	if got := FormatAll(nil, false); got != "" {
		t.Errorf("FormatAll(nil) = %q, want empty string", got)
	}
}

func TestFormatAllSingleIsUnnumbered(t *testing.T) {
	out := FormatAll([]*CompilerError{New(InputMalformed, "astin", "bad json")}, false)
	if strings.Contains(out, "[1 of 1]") {
		t.Errorf("a single error should not be numbered:\n%s", out)
	}
}

func TestFormatAllMultipleAreNumbered(t *testing.T) {
	errsList := []*CompilerError{
		New(InputMalformed, "astin", "first problem"),
		New(UnsupportedConstruct, "translate", "second problem"),
	}
	out := FormatAll(errsList, false)
	if !strings.Contains(out, "[1 of 2]") || !strings.Contains(out, "[2 of 2]") {
		t.Errorf("expected both errors numbered:\n%s", out)
	}
	if !strings.Contains(out, "2 error(s)") {
		t.Errorf("expected a summary count:\n%s", out)
	}
}
