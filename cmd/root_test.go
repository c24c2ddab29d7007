package cmd

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func TestRootCmd_RegistersExpectedSubcommands(t *testing.T) {
	// GIVEN the assembled root command
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Use] = true
	}

	// THEN each CLI surface named in SPEC_FULL.md §2-§3 is wired in
	assert.True(t, names["run"], "run command must be registered")
	assert.True(t, names["loadtest"], "loadtest command must be registered")
	assert.True(t, names["monitor"], "monitor command must be registered")
	assert.True(t, names["table"], "table command must be registered")
}

func TestRootCmd_LogFlagDefaultsToInfo(t *testing.T) {
	// GIVEN the root command's persistent flags
	flag := rootCmd.PersistentFlags().Lookup("log")

	// THEN the default log level is info, matching the teacher's
	// PersistentPreRun-driven logrus.SetLevel wiring
	assert.NotNil(t, flag)
	assert.Equal(t, "info", flag.DefValue)
}

func TestTableConvertCmd_RequiresSrcAndDst(t *testing.T) {
	// GIVEN the table convert subcommand
	// THEN both --src and --dst are required, since a conversion with either
	// missing has no sensible default
	for _, name := range []string{"src", "dst"} {
		assert.Equal(t, []string{"true"}, tableConvertCmd.Flags().Lookup(name).Annotations[cobra.BashCompOneRequiredFlag], name)
	}
	assert.True(t, tableConvertCmd.Flags().Lookup("src").Changed == false)
	assert.NoError(t, tableConvertCmd.Flags().Set("src", "a.yaml"))
	assert.NoError(t, tableConvertCmd.Flags().Set("dst", "a.bolt"))
}
