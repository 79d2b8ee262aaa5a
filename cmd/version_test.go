package cmd

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func TestVersionCmd_RunDoesNotPanic(t *testing.T) {
	c := &cobra.Command{}
	assert.NotPanics(t, func() { versionCmd.Run(c, []string{}) })
}
