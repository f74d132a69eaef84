// Package errs formats the back-end's error taxonomy: InputMalformed,
// UnsupportedConstruct, InvariantViolation and UnbalancedBranches, each
// carrying the pass that raised it and a pointer into the offending AST
// node instead of a source line/column (the typed AST has no source text
// by the time it reaches this pipeline).
package errs

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Kind classifies a CompilerError for the purposes of exit-code selection
// and message formatting.
type Kind uint8

const (
	// InputMalformed means the typed AST failed to deserialise.
	InputMalformed Kind = iota
	// UnsupportedConstruct means an AST node was seen that no pass knows
	// how to handle; this must not happen after a correct type check.
	UnsupportedConstruct
	// InvariantViolation means an SSA/IR/machine invariant broke mid-pipeline.
	InvariantViolation
	// UnbalancedBranches means the code-vector calculator found an If/Match
	// whose branches carry different code vectors. It never blocks
	// translation; it is reported for debugging only.
	UnbalancedBranches
)

// String renders the kind the way it appears in diagnostics.
func (k Kind) String() string {
	switch k {
	case InputMalformed:
		return "InputMalformed"
	case UnsupportedConstruct:
		return "UnsupportedConstruct"
	case InvariantViolation:
		return "InvariantViolation"
	case UnbalancedBranches:
		return "UnbalancedBranches"
	default:
		return "Unknown"
	}
}

// ExitCode returns the process exit code associated with the kind, per
// the CLI contract: 1 for bad input, 2 for everything else that aborts
// the pipeline. UnbalancedBranches never aborts, so it has no exit code
// of its own; callers that do exit on it should treat it as 2.
func (k Kind) ExitCode() int {
	if k == InputMalformed {
		return 1
	}
	return 2
}

// CompilerError is a single error produced by the pipeline.
type CompilerError struct {
	Kind    Kind
	Pass    string // name of the pass/component that raised the error
	Message string
	Path    string // JSONPath-like pointer into the offending AST node, e.g. "$.declarations[2].body"
}

// New creates a CompilerError.
func New(kind Kind, pass, message string) *CompilerError {
	return &CompilerError{Kind: kind, Pass: pass, Message: message}
}

// WithPath attaches an AST path to the error and returns it for chaining.
func (e *CompilerError) WithPath(path string) *CompilerError {
	e.Path = path
	return e
}

// Error implements the error interface.
func (e *CompilerError) Error() string {
	return e.Format(false)
}

// Format renders the error for stderr. When color is true, ANSI colour is
// applied via fatih/color instead of being hand-assembled.
func (e *CompilerError) Format(useColor bool) string {
	var sb strings.Builder

	kindLabel := fmt.Sprintf("[%s]", e.Kind)
	if useColor {
		kindLabel = color.New(color.FgRed, color.Bold).Sprint(kindLabel)
	}

	if e.Pass != "" {
		fmt.Fprintf(&sb, "%s in pass %q\n", kindLabel, e.Pass)
	} else {
		fmt.Fprintf(&sb, "%s\n", kindLabel)
	}

	if e.Path != "" {
		pathLabel := e.Path
		if useColor {
			pathLabel = color.New(color.Faint).Sprint(e.Path)
		}
		fmt.Fprintf(&sb, "  at %s\n", pathLabel)
	}

	msg := e.Message
	if useColor {
		msg = color.New(color.Bold).Sprint(msg)
	}
	sb.WriteString(msg)

	return sb.String()
}

// FormatAll formats a batch of errors, numbering them when there is more
// than one.
func FormatAll(errs []*CompilerError, useColor bool) string {
	if len(errs) == 0 {
		return ""
	}
	if len(errs) == 1 {
		return errs[0].Format(useColor)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "pipeline failed with %d error(s):\n\n", len(errs))
	for i, e := range errs {
		fmt.Fprintf(&sb, "[%d of %d] ", i+1, len(errs))
		sb.WriteString(e.Format(useColor))
		if i < len(errs)-1 {
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}
