package strgraph

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLibraryTableAddAndSaveLoad(t *testing.T) {
	lt := NewLibraryTable(2)
	require.NoError(t, lt.Add(0, 500, 50, true))
	require.NoError(t, lt.Add(100, 0, 0, false))
	require.EqualValues(t, 2, lt.NumLibraries())
	require.Equal(t, Library{FirstSeqNum: 0, InsertLength: 500, Stdev: 50, Paired: true}, lt.Library(0))

	var buf bytes.Buffer
	require.NoError(t, lt.Save(&buf))

	loaded, err := LoadLibraryTable(&buf)
	require.NoError(t, err)
	require.EqualValues(t, 2, loaded.NumLibraries())
	require.Equal(t, lt.Library(1), loaded.Library(1))
}

func TestLibraryTableRejectsUnpairedBeforePaired(t *testing.T) {
	lt := NewLibraryTable(2)
	require.NoError(t, lt.Add(0, 0, 0, false))
	require.Error(t, lt.Add(50, 500, 50, true))
}

func TestLibraryTableRejectsOutOfOrderUnpaired(t *testing.T) {
	lt := NewLibraryTable(2)
	require.NoError(t, lt.Add(50, 0, 0, false))
	require.Error(t, lt.Add(10, 0, 0, false))
}

func TestGraphLibraryAttachment(t *testing.T) {
	g := twoReadGraph(t)
	require.Nil(t, g.Libraries())
	lt := NewLibraryTable(1)
	require.NoError(t, lt.Add(0, 300, 30, true))
	g.AttachLibraryTable(lt)
	require.Same(t, lt, g.Libraries())
}
