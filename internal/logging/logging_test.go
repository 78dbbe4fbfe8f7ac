package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/config"
)

func TestNew_JSONCarriesServiceField(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(config.LogConfig{Level: "info", Format: "json"}, "ewm-main-service", &buf)

	logger.WithField("event_id", 7).Info("event published")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ewm-main-service", entry["service"])
	assert.Equal(t, "event published", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.EqualValues(t, 7, entry["event_id"])
}

func TestNew_LevelFallsBackToInfo(t *testing.T) {
	logger := newLogger(config.LogConfig{Level: "loud", Format: "text"}, "svc", &bytes.Buffer{})
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}

func TestFromContext_AddsRequestID(t *testing.T) {
	logger, hook := test.NewNullLogger()
	ctx := WithRequestID(context.Background(), "req-1")

	FromContext(ctx, logger).Info("hello")

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, "req-1", hook.LastEntry().Data["request_id"])
	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Equal(t, "", RequestID(context.Background()))
}
