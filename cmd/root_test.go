package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"serve", "lookup", "index", "migrate"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "rnc-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestLookupCommand_Flags(t *testing.T) {
	entity := lookupCmd.Flags().Lookup("entity")
	require.NotNil(t, entity)
	assert.Equal(t, "false", entity.DefValue)

	output := lookupCmd.Flags().Lookup("output")
	require.NotNil(t, output)
	assert.Equal(t, "json", output.DefValue)
	assert.Equal(t, "o", output.Shorthand)
}

func TestLookupCommand_RequiresOneArg(t *testing.T) {
	assert.Error(t, lookupCmd.Args(lookupCmd, nil))
	assert.Error(t, lookupCmd.Args(lookupCmd, []string{"1", "2"}))
	assert.NoError(t, lookupCmd.Args(lookupCmd, []string{"00110344256"}))
}

func TestIndexCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range indexCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["stats"])
	assert.True(t, names["get"])
}
