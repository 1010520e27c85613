package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	// Collect subcommand names.
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	// Verify expected subcommands are registered.
	expected := []string{"ingest", "serve", "migrate", "towns", "boundary"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "parentmap-ingest", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestIngestCommand_HasSubcommands(t *testing.T) {
	cmds := ingestCmd.Commands()
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	expected := []string{"toilets", "nursing", "playgrounds", "parks", "school-pdfs", "all"}
	for _, name := range expected {
		assert.True(t, names[name], "ingest should have subcommand %q", name)
	}
}

func TestNursingCommand_Flags(t *testing.T) {
	var nursingCmd *cobra.Command
	for _, c := range ingestCmd.Commands() {
		if c.Name() == "nursing" {
			nursingCmd = c
		}
	}
	require.NotNil(t, nursingCmd)

	flag := nursingCmd.Flags().Lookup("type")
	require.NotNil(t, flag, "nursing command should have --type flag")
	assert.Equal(t, "both", flag.DefValue)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestBoundaryCommand_Flags(t *testing.T) {
	for _, flagName := range []string{"shapefile", "geographic"} {
		flag := boundaryCmd.Flags().Lookup(flagName)
		assert.NotNil(t, flag, "boundary should have --%s flag", flagName)
	}
}
