package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"attributioncli/internal/cli"
)

func TestRunVersion(t *testing.T) {
	assert.Equal(t, cli.ExitOK, run([]string{"version"}))
}

func TestRunUnknownCommand(t *testing.T) {
	assert.Equal(t, cli.ExitFailure, run([]string{"bogus"}))
}
