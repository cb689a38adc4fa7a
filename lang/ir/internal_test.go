package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInternalOpString(t *testing.T) {
	for op := InternalOp(0); op < maxInternalOp; op++ {
		require.NotEmpty(t, op.String())
	}
	require.Equal(t, "invalid internal", maxInternalOp.String())
}

func TestLookupInternalOp(t *testing.T) {
	op, ok := LookupInternalOp("dup")
	require.True(t, ok)
	require.Equal(t, OpDup, op)

	op, ok = LookupInternalOp("+")
	require.True(t, ok)
	require.Equal(t, OpAdd, op)

	_, ok = LookupInternalOp("not-a-real-word")
	require.False(t, ok)
}
