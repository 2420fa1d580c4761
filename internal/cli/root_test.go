package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["migrate"])
	assert.True(t, names["sweep"])
}

func TestMigrateNeedsDSN(t *testing.T) {
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("CONFIG_FILE", "")

	rootCmd.SetArgs([]string{"migrate"})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.dsn")
}
