package ui

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalOnPipe(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	// A pipe is not a terminal and has no window size; the fallback
	// width applies.
	width, isTTY := Terminal(r.Fd())
	assert.False(t, isTTY)
	assert.Equal(t, 80, width)
}
