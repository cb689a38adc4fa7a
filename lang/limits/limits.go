// Package limits holds the process-wide bounds named as invariants in §3.8,
// loaded from the environment the same way the teacher layers `mainer`
// flags over environment variables with caarlos0/env: a struct tagged with
// `env:"..."` and `envDefault:"..."`, parsed once at process start.
package limits

import "github.com/caarlos0/env/v6"

// Limits are the tunable bounds the parser and the machine enforce. The
// defaults match the spec's fixed constants (§3.8); overriding them is
// useful for embedding Stackyy in a sandboxed host or for exercising the
// "overflow" failure paths in tests without constructing enormous programs.
type Limits struct {
	// MaxInclDepth bounds how many nested `include` directives the parser
	// follows before failing (§3.8 MAX_INCL_DEPTH).
	MaxInclDepth int `env:"STACKYY_MAX_INCL_DEPTH" envDefault:"3"`

	// MaxCallStackSize bounds the executor's native call depth (§3.8
	// MAX_CALL_STACK_SIZE).
	MaxCallStackSize int `env:"STACKYY_MAX_CALL_STACK_SIZE" envDefault:"40"`

	// MaxSteps bounds the number of operations a single run may execute
	// before the executor aborts it as runaway. Zero means unlimited; the
	// spec itself places no such bound, but an embedder may want one, so it
	// defaults off rather than inventing a number the spec never names.
	MaxSteps int `env:"STACKYY_MAX_STEPS" envDefault:"0"`
}

// Default returns the spec's fixed bounds (§3.8), ignoring the environment.
func Default() Limits {
	return Limits{MaxInclDepth: 3, MaxCallStackSize: 40, MaxSteps: 0}
}

// FromEnv returns the bounds configured via environment variables, using
// Default's value for anything unset. A malformed value is reported as an
// error, returned together with Default().
func FromEnv() (Limits, error) {
	l := Default()
	if err := env.Parse(&l); err != nil {
		return Default(), err
	}
	return l, nil
}
