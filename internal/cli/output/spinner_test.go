package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpinner_NonTerminal(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "Uploading backup")

	s.Start()
	s.Success("backup written")

	assert.Equal(t, "\r✓ backup written\n", buf.String())
}

func TestSpinner_StopIsIdempotent(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "Restoring")

	s.Start()
	s.Fail("restore failed")
	s.Stop()
	s.Success("ignored")

	assert.Equal(t, "\r✗ restore failed\n", buf.String())
}

func TestSpinner_StopWithoutStart(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "Idle")
	s.Stop()
	assert.Empty(t, buf.String())
}
