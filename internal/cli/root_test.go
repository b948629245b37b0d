package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRootCmd(t *testing.T) {
	cmd := GetRootCmd()
	require.NotNil(t, cmd)
	assert.Equal(t, "canvasagent", cmd.Use)
	assert.Equal(t, version, cmd.Version)
}

func TestGetVersion(t *testing.T) {
	assert.Equal(t, "0.1.0", GetVersion())
}

func TestRegisteredCommands(t *testing.T) {
	names := map[string]bool{}
	for _, sub := range GetRootCmd().Commands() {
		names[sub.Name()] = true
	}

	for _, want := range []string{"serve", "chat", "download", "status", "stop", "configure"} {
		assert.True(t, names[want], "command %s should be registered", want)
	}
}

func TestGlobalFlags(t *testing.T) {
	flags := GetRootCmd().PersistentFlags()
	assert.NotNil(t, flags.Lookup("config"))
	assert.NotNil(t, flags.Lookup("log-level"))
}
