package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProgramDefineLookup(t *testing.T) {
	p := NewProgram(Meta{Name: "demo", Version: "0.1"})
	require.Equal(t, 0, p.Len())
	require.Nil(t, p.Lookup("main"))
	require.False(t, p.Has("main"))

	main := &Function{Name: "main", Outs: []Type{Int}}
	p.Define(main)

	require.True(t, p.Has("main"))
	require.Same(t, main, p.Lookup("main"))
	require.Equal(t, 1, p.Len())
}

func TestProgramNamesSorted(t *testing.T) {
	p := NewProgram(Meta{Name: "demo", Version: "0.1"})
	p.Define(&Function{Name: "zeta"})
	p.Define(&Function{Name: "alpha"})
	p.Define(&Function{Name: "mid"})

	require.Equal(t, []string{"alpha", "mid", "zeta"}, p.Names())
}

func TestFunctionContractEqual(t *testing.T) {
	fn := &Function{Name: "square", Ins: []Type{Int}, Outs: []Type{Int}}
	require.True(t, fn.ContractEqual([]Type{Int}, []Type{Int}))
	require.False(t, fn.ContractEqual([]Type{Int}, []Type{Bool}))
	require.False(t, fn.ContractEqual(nil, []Type{Int}))
}
