package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"trace":   TRACE,
		"DEBUG":   DEBUG,
		"":        INFO,
		"warning": WARN,
		" error ": ERROR,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestWriterLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger("world", &buf, WARN)

	l.Debug("скрыто %d", 1)
	l.Info("скрыто %d", 2)
	l.Warn("видно %d", 3)
	l.Error("видно %d", 4)

	out := buf.String()
	assert.NotContains(t, out, "скрыто")
	assert.Contains(t, out, "[WARN] [world] видно 3")
	assert.Contains(t, out, "[ERROR] [world] видно 4")
}

func TestNilLoggerIsSilent(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() { l.Info("ничего") })
}

func TestManagerWriterComponentsShareLevel(t *testing.T) {
	var buf bytes.Buffer
	m := NewManager(WARN, false, &buf)

	w := m.World()
	assert.Same(t, w, m.Component(ComponentWorld))
	m.Render().Info("скрыто")
	m.Events().Warn("видно %d", 1)
	w.Error("ошибка")

	assert.Equal(t, []string{ComponentEvents, ComponentRender, ComponentWorld}, m.Components())
	out := buf.String()
	assert.NotContains(t, out, "скрыто")
	assert.Contains(t, out, "[WARN] [events] видно 1")
	assert.Contains(t, out, "[ERROR] [world] ошибка")

	require.NoError(t, m.Close())
	assert.Empty(t, m.Components())
}

func TestManagerFileComponents(t *testing.T) {
	LogDir = t.TempDir()
	var buf bytes.Buffer
	m := NewManager(DEBUG, true, &buf)

	m.World().Debug("в файл и консоль")
	assert.Contains(t, buf.String(), "[DEBUG] [world] в файл и консоль")

	files, err := filepath.Glob(filepath.Join(LogDir, "world_*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	require.NoError(t, m.Close())
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "в файл и консоль")
}
