// Package errs implements the two-severity, two-stage error reporting model
// of §4.9 and §7: compile_error/compile_warning at parse and type-check
// time, runtime_error/runtime_warning during execution. It plays the role
// the teacher gives go/scanner.ErrorList in lang/scanner and lang/resolver
// (a sortable, accumulating list of diagnostics with a single combined
// error), adapted to Stackyy's framed message format instead of Go's plain
// "file:line: msg" convention.
package errs

import (
	"fmt"
	"strings"
)

// Stage identifies which phase of the pipeline raised a diagnostic, which
// in turn selects the "ERROR" vs "RUNTIME ERROR" framing.
type Stage int

const (
	StageCompile Stage = iota
	StageRuntime
)

// Severity distinguishes a diagnostic that must abort the pipeline from one
// that is merely logged and bypassed.
type Severity int

const (
	SeverityFatal Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "fatal"
}

// Info is anything that can render the "<info>" part of a framed
// diagnostic: a token.Value ("file:line:col -> 'text'"), a token.Position
// ("file:line:col") or token.NoDebug (empty). Defined as an interface here,
// rather than depending on lang/token directly, so this package stays a
// leaf with no dependency on the rest of the pipeline.
type Info interface {
	FormatInfo() string
}

// noInfo is used when a diagnostic carries no location at all.
type noInfo struct{}

func (noInfo) FormatInfo() string { return "" }

// NoInfo is the zero value of Info.
var NoInfo Info = noInfo{}

// Diagnostic is a single compile or runtime error or warning.
type Diagnostic struct {
	Stage    Stage
	Severity Severity
	Message  string
	Info     Info
}

// Error implements the error interface, framing the message per §4.9:
// "ERROR at <info> -> <msg>" for compile-time fatals, "RUNTIME ERROR at
// <info> -> <msg>" for runtime fatals. Warnings use the same frame with a
// "WARNING" marker so they are visibly distinct from fatals on stderr.
func (d *Diagnostic) Error() string {
	label := "ERROR"
	if d.Stage == StageRuntime {
		label = "RUNTIME ERROR"
	}
	if d.Severity == SeverityWarning {
		label = "WARNING: " + label
	}
	info := ""
	if d.Info != nil {
		info = d.Info.FormatInfo()
	}
	if info == "" {
		return fmt.Sprintf("%s -> %s", label, d.Message)
	}
	return fmt.Sprintf("%s at %s -> %s", label, info, d.Message)
}

// List accumulates diagnostics raised over a single compile pass (the
// pre-parser, the parser, or the type checker), so that a caller can report
// every error found instead of aborting at the first one, while still
// stopping the pipeline once any fatal has been recorded (§7: "no error
// recovery inside the pipeline" refers to execution continuing on bad
// input, not to the diagnostic collector silently losing errors).
type List struct {
	items []*Diagnostic
}

// Add appends a fully-formed diagnostic.
func (l *List) Add(d *Diagnostic) { l.items = append(l.items, d) }

// AddFatal records a fatal diagnostic for the given stage.
func (l *List) AddFatal(stage Stage, info Info, format string, args ...any) {
	l.Add(&Diagnostic{Stage: stage, Severity: SeverityFatal, Message: fmt.Sprintf(format, args...), Info: info})
}

// AddWarning records a non-fatal diagnostic for the given stage.
func (l *List) AddWarning(stage Stage, info Info, format string, args ...any) {
	l.Add(&Diagnostic{Stage: stage, Severity: SeverityWarning, Message: fmt.Sprintf(format, args...), Info: info})
}

// HasFatal reports whether any fatal diagnostic was recorded.
func (l *List) HasFatal() bool {
	for _, d := range l.items {
		if d.Severity == SeverityFatal {
			return true
		}
	}
	return false
}

// Fatals returns the fatal diagnostics, in recorded order.
func (l *List) Fatals() []*Diagnostic { return filterBySeverity(l.items, SeverityFatal) }

// Warnings returns the non-fatal diagnostics, in recorded order.
func (l *List) Warnings() []*Diagnostic { return filterBySeverity(l.items, SeverityWarning) }

func filterBySeverity(items []*Diagnostic, sev Severity) []*Diagnostic {
	var out []*Diagnostic
	for _, d := range items {
		if d.Severity == sev {
			out = append(out, d)
		}
	}
	return out
}

// Err returns nil if no fatal diagnostic was recorded, otherwise an error
// whose message lists every fatal diagnostic, one per line, and which
// implements Unwrap() []error so callers can use errors.Is/As across the
// batch.
func (l *List) Err() error {
	fatals := l.Fatals()
	if len(fatals) == 0 {
		return nil
	}
	return &multiError{diags: fatals}
}

type multiError struct{ diags []*Diagnostic }

func (e *multiError) Error() string {
	lines := make([]string, len(e.diags))
	for i, d := range e.diags {
		lines[i] = d.Error()
	}
	return strings.Join(lines, "\n")
}

func (e *multiError) Unwrap() []error {
	errs := make([]error, len(e.diags))
	for i, d := range e.diags {
		errs[i] = d
	}
	return errs
}

// Runtime builds a single fatal runtime diagnostic, the shape every
// lang/machine failure takes: execution has no batching, a runtime error
// aborts the thread immediately (§4.9).
func Runtime(info Info, format string, args ...any) error {
	return &Diagnostic{Stage: StageRuntime, Severity: SeverityFatal, Message: fmt.Sprintf(format, args...), Info: info}
}

// RuntimeWarning builds a single non-fatal runtime diagnostic.
func RuntimeWarning(info Info, format string, args ...any) *Diagnostic {
	return &Diagnostic{Stage: StageRuntime, Severity: SeverityWarning, Message: fmt.Sprintf(format, args...), Info: info}
}
