package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSONOutsideDevelopment(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "users", "production", "")
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "users", line["app"])
	assert.Equal(t, "logger initialized", line["msg"])
}

func TestNewLogger_TextInDevelopment(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "users", "development", "")
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.Contains(t, buf.String(), "app=users")
}

func TestNewLogger_LevelOverride(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "users", "production", "warn")
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())

	buf.Reset()
	logger.WithField("app", "indexer").Warn("custom app")
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "indexer", line["app"], "explicit fields win")
	assert.Equal(t, "production", line["env"])

	logger = newLogger(&buf, "users", "production", "loud")
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "users", "production", "")
	buf.Reset()

	LogError(logger, "boom", errors.New("disk full"), logrus.Fields{"user_id": 3})
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "disk full", line["error"])
	assert.Equal(t, float64(3), line["user_id"])
	assert.Equal(t, "error", line["level"])
}

func TestOptionalClients(t *testing.T) {
	assert.Nil(t, NewRedisClient("", "", 0))
	es, err := NewESClient(nil, "", "")
	require.NoError(t, err)
	assert.Nil(t, es)

	es, err = NewESClient([]string{"http://localhost:9200"}, "", "")
	require.NoError(t, err)
	assert.NotNil(t, es)
}

func TestPingES(t *testing.T) {
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)

	es, err := NewESClient([]string{srv.URL}, "", "")
	require.NoError(t, err)
	assert.NoError(t, PingES(context.Background(), es, time.Second))

	status = http.StatusUnauthorized
	assert.ErrorContains(t, PingES(context.Background(), es, time.Second), "401")
}
