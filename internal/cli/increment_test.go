package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIncrementThenStatus_EndToEnd(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "edusync.db")

	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--db", dbPath, "increment", "u1", "l1", "10"})
	require.NoError(t, cmd.Execute())

	cmd = NewRootCommand()
	cmd.SetArgs([]string{"--db", dbPath, "increment", "u1", "l1", "15"})
	require.NoError(t, cmd.Execute())

	cmd = NewRootCommand()
	cmd.SetArgs([]string{"--db", dbPath, "status", "--format", "json"})
	require.NoError(t, cmd.Execute())
}

func TestIncrement_RejectsBadIncrementArgument(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "edusync.db")

	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--db", dbPath, "increment", "u1", "l1", "not-a-number"})
	require.Error(t, cmd.Execute())
}
