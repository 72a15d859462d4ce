package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Only the offline refusal path is tested; detecting releases needs GitHub.
func TestSelfUpdateCmd_RefusesDevelopmentBuilds(t *testing.T) {
	for _, version := range []string{"dev", ""} {
		t.Run("version "+version, func(t *testing.T) {
			originalVersion := rootCmd.Version
			t.Cleanup(func() { rootCmd.Version = originalVersion })
			rootCmd.Version = version

			cmd := newSelfUpdateCmd()
			var out bytes.Buffer
			cmd.SetOut(&out)
			cmd.SetErr(&out)

			err := cmd.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "cannot self-update a development version")
			assert.NotContains(t, out.String(), "Checking for updates")
		})
	}
}

func TestSelfUpdateCmdProperties(t *testing.T) {
	cmd := newSelfUpdateCmd()

	assert.Equal(t, "self-update", cmd.Use)
	assert.Equal(t, "Update mcp-upgates to the latest version", cmd.Short)
	assert.Contains(t, cmd.Long, "GitHub")
	assert.Equal(t, "giantswarm/mcp-upgates", githubRepoSlug)
}
