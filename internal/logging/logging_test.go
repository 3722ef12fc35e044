package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithOutput(&buf, "debug", "json")
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	logger.WithField("employee", "alice").Info("cycle")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "cycle", line["msg"])
	assert.Equal(t, "alice", line["employee"])
	assert.Contains(t, line, "time")
}

func TestNewDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithOutput(&buf, "", "")
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())

	logger.Debug("hidden")
	assert.Empty(t, buf.String())
}

func TestNewRejectsBadInput(t *testing.T) {
	_, err := New("loud", "text")
	assert.Error(t, err)

	_, err = New("info", "xml")
	assert.Error(t, err)
}
