package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeInfo string

func (f fakeInfo) FormatInfo() string { return string(f) }

func TestDiagnosticError(t *testing.T) {
	cases := []struct {
		d    Diagnostic
		want string
	}{
		{Diagnostic{Stage: StageCompile, Severity: SeverityFatal, Message: "bad", Info: NoInfo}, "ERROR -> bad"},
		{Diagnostic{Stage: StageRuntime, Severity: SeverityFatal, Message: "bad", Info: fakeInfo("f:1:1")}, "RUNTIME ERROR at f:1:1 -> bad"},
		{Diagnostic{Stage: StageCompile, Severity: SeverityWarning, Message: "meh", Info: NoInfo}, "WARNING: ERROR -> meh"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, c.d.Error())
	}
}

func TestListAccumulates(t *testing.T) {
	var l List
	require.False(t, l.HasFatal())
	require.NoError(t, l.Err())

	l.AddWarning(StageCompile, NoInfo, "unknown escape %q", `\q`)
	require.False(t, l.HasFatal())
	require.Len(t, l.Warnings(), 1)

	l.AddFatal(StageCompile, fakeInfo("a.scy:1:1"), "unclosed string")
	require.True(t, l.HasFatal())
	require.Len(t, l.Fatals(), 1)

	err := l.Err()
	require.Error(t, err)

	var me *multiError
	require.True(t, errors.As(err, &me))
	require.Len(t, me.Unwrap(), 1)
}

func TestRuntimeHelpers(t *testing.T) {
	err := Runtime(fakeInfo("a.scy:1:1"), "Divison by 0 is undefined")
	require.EqualError(t, err, "RUNTIME ERROR at a.scy:1:1 -> Divison by 0 is undefined")

	warn := RuntimeWarning(NoInfo, "unimplemented opcode")
	require.Equal(t, SeverityWarning, warn.Severity)
}
