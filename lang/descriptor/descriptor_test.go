package descriptor

import (
	"path/filepath"
	"testing"

	"github.com/mna/stackyy/lang/ir"
	"github.com/stretchr/testify/require"
)

func TestLookupType(t *testing.T) {
	typ, ok := LookupType("file")
	require.True(t, ok)
	require.Equal(t, TypeFile, typ)

	_, ok = LookupType("socket")
	require.False(t, ok)
}

func TestLookupActionExcludesClose(t *testing.T) {
	a, ok := LookupAction("read-all")
	require.True(t, ok)
	require.Equal(t, ReadAll, a)

	_, ok = LookupAction("close")
	require.False(t, ok)
}

func TestContractFor(t *testing.T) {
	c, ok := ContractFor(TypeFile, Open)
	require.True(t, ok)
	require.Equal(t, []ir.Type{ir.String}, c.Ins)
	require.Equal(t, []ir.Type{ir.Descriptor}, c.Outs)

	c, ok = ContractFor(TypeFile, WriteAll)
	require.True(t, ok)
	require.Equal(t, []ir.Type{ir.Descriptor, ir.String}, c.Ins)
	require.Equal(t, []ir.Type{ir.Descriptor}, c.Outs)
}

func TestOpenWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.txt")
	d, err := Open(TypeFile, path)
	require.NoError(t, err)

	require.NoError(t, d.WriteAll("hello world"))

	got, err := d.ReadAll()
	require.NoError(t, err)
	require.Equal(t, "hello world", got)

	require.NoError(t, d.Drop())
}

func TestCloneSharesResourceAndRefcounts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.txt")
	d, err := Open(TypeFile, path)
	require.NoError(t, err)

	clone := d.Clone()
	require.NoError(t, clone.WriteAll("via clone"))

	got, err := d.ReadAll()
	require.NoError(t, err)
	require.Equal(t, "via clone", got)

	// first Drop only releases one reference, resource stays open
	require.NoError(t, d.Drop())
	_, err = clone.ReadAll()
	require.NoError(t, err)

	require.NoError(t, clone.Drop())
}

func TestDescriptorString(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.txt")
	d, err := Open(TypeFile, path)
	require.NoError(t, err)
	require.Equal(t, "FileDescriptor("+path+")", d.String())
	require.NoError(t, d.Drop())
}
