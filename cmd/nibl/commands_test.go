package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()

	for _, name := range []string{"gen", "serve", "new", "meta"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestRootCmd_Flags(t *testing.T) {
	root := newRootCmd()

	for _, name := range []string{"debug", "unsafe", "config"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), name)
	}
	assert.Equal(t, configFile, root.PersistentFlags().Lookup("config").DefValue)

	gen, _, err := root.Find([]string{"gen"})
	require.NoError(t, err)
	assert.NotNil(t, gen.Flags().Lookup("keep"))

	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	assert.Equal(t, "1313", serve.Flags().Lookup("port").DefValue)
}

func TestMetaCmd_RequiresFile(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"meta"})
	assert.Error(t, root.Execute())
}
