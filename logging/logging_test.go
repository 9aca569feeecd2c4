package logging_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/plus3/hotbean/config"
	"github.com/plus3/hotbean/logging"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "engine.log")
	log, err := logging.New(config.Logging{Level: "debug", Path: path, JSON: true})
	require.NoError(t, err)

	log.WithField("scene", "level1").Debug("scene loaded")
	log.Trace("dropped")
	require.NoError(t, log.Close())
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "scene loaded", entry["msg"])
	assert.Equal(t, "level1", entry["scene"])
	assert.Equal(t, "debug", entry["level"])
}

func TestLevels(t *testing.T) {
	log, err := logging.New(config.Logging{})
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())

	_, err = logging.New(config.Logging{Level: "loud"})
	assert.Error(t, err)
}
