package progress

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestTerminal(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)

	term.OrganizationStarted("acme", 0, 2)
	term.RepositoryStarted("acme", "a-much-longer-repository-name", 0, 2)
	term.RepositoryStarted("acme", "api", 1, 2)
	term.OrganizationFinished("acme", 2)

	out := buf.String()
	assert.Contains(t, out, "\rAnalyzing org: acme (1/2)")
	assert.Contains(t, out, "\rAnalyzing acme/a-much-longer-repository-name (1/2)")
	assert.Contains(t, out, "\rAnalyzing acme/api (2/2)")
	assert.Contains(t, out, "Analyzed org: acme, 2 repos\n")

	longer := len("Analyzing acme/a-much-longer-repository-name (1/2)")
	shorter := len("Analyzing acme/api (2/2)")
	assert.Contains(t, out, "\rAnalyzing acme/api (2/2)"+string(bytes.Repeat([]byte(" "), longer-shorter)))
}

func TestTerminalDone(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)

	term.Done()
	assert.Empty(t, buf.String())

	term.OrganizationStarted("ghost", 1, 2)
	term.Done()
	assert.Equal(t, "\rAnalyzing org: ghost (2/2)\n", buf.String())

	term.OrganizationStarted("acme", 0, 1)
	term.OrganizationFinished("acme", 0)
	before := buf.Len()
	term.Done()
	assert.Equal(t, before, buf.Len())
}

func TestLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewLogging(zap.New(core))

	l.OrganizationStarted("acme", 0, 1)
	l.RepositoryStarted("acme", "api", 0, 3)
	l.OrganizationFinished("acme", 3)

	require.Equal(t, 3, logs.Len())
	entries := logs.All()
	assert.Equal(t, "Analyzing org", entries[0].Message)
	assert.Equal(t, "api", entries[1].ContextMap()["repo"])
	assert.Equal(t, int64(3), entries[2].ContextMap()["repos"])
}

func TestMulti(t *testing.T) {
	var first, second bytes.Buffer
	m := Multi{NewTerminal(&first), NewTerminal(&second)}

	m.OrganizationStarted("acme", 0, 1)
	m.RepositoryStarted("acme", "api", 0, 1)
	m.OrganizationFinished("acme", 1)

	assert.Equal(t, first.String(), second.String())
	assert.NotEmpty(t, first.String())
}

func TestIsTerminalOnRegularFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "progress")
	require.NoError(t, err)
	defer f.Close()

	assert.False(t, IsTerminal(f))
}
