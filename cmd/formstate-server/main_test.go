package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formstate/internal/logging"
	"github.com/goliatone/go-formstate/pkg/config"
	"github.com/goliatone/go-formstate/pkg/schema"
)

func testRouter(t *testing.T) (http.Handler, *bytes.Buffer) {
	t.Helper()
	cfg, err := config.LoadFrom(map[string]string{"FORMSTATE_BASE_PATH": "/v1"})
	require.NoError(t, err)

	var logs bytes.Buffer
	logger, err := logging.NewWithOutput(&logs, "debug", "json")
	require.NoError(t, err)

	store, err := schema.Embedded()
	require.NoError(t, err)

	router, err := newRouter(cfg, logger, store, prometheus.NewRegistry())
	require.NoError(t, err)
	return router, &logs
}

func TestRouter_MountsSessionsAndMetrics(t *testing.T) {
	router, logs := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/forms/sample/sessions", nil))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `formstate_sessions_opened_total{form="sample"} 1`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	assert.Contains(t, logs.String(), `"msg":"session opened"`)
	assert.Contains(t, logs.String(), `"path":"/v1/forms/sample/sessions"`)
}

func TestNewRouter_RejectsEmptyStore(t *testing.T) {
	cfg, err := config.LoadFrom(nil)
	require.NoError(t, err)
	_, err = newRouter(cfg, logrus.New(), schema.NewStore(), prometheus.NewRegistry())
	assert.Error(t, err)
}
