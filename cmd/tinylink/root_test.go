package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootCmd(t *testing.T) {
	t.Run("missing config file", func(t *testing.T) {
		cmd := newRootCmd()
		cmd.SetArgs([]string{"migrate", "--config", "invalid/path/to/config.yml"})

		assert.Error(t, cmd.Execute())
	})

	t.Run("subcommands", func(t *testing.T) {
		cmd := newRootCmd()

		for _, name := range []string{"serve", "migrate"} {
			sub, _, err := cmd.Find([]string{name})

			assert.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		}
	})
}
