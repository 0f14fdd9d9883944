package routes

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/angelmondragon/attribution-backend/internal/reports"
	"github.com/angelmondragon/attribution-backend/pkg/config"
	"github.com/angelmondragon/attribution-backend/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(context.Context) error { return f.err }

type fakeTrigger struct {
	count int
}

func (f *fakeTrigger) Trigger() { f.count++ }

type fakeEfficiency struct {
	rows []reports.EfficiencyRow
	err  error
}

func (f *fakeEfficiency) Build(context.Context, time.Time) ([]reports.EfficiencyRow, error) {
	return f.rows, f.err
}

func testRouterParams(t *testing.T) RouterParams {
	t.Helper()
	return RouterParams{
		Config: &config.Config{App: config.AppConfig{Env: "test"}},
		Logger: logger.New(logger.Options{ServiceName: "api-test", Level: zerolog.Disabled, Output: io.Discard}),
		DB:     &fakePinger{},
		Redis:  &fakePinger{},
	}
}

func TestHealthzAndReadyz(t *testing.T) {
	router := NewRouter(testRouterParams(t))
	server := httptest.NewServer(router)
	defer server.Close()

	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "test", resp.Header.Get("X-Attribution-Env"))

	resp, err = http.Get(server.URL + "/readyz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestReadyzFailsWhenDependencyDown(t *testing.T) {
	params := testRouterParams(t)
	params.DB = &fakePinger{err: errors.New("connection refused")}
	server := httptest.NewServer(NewRouter(params))
	defer server.Close()

	resp, err := http.Get(server.URL + "/readyz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestTriggerRunEndpoint(t *testing.T) {
	params := testRouterParams(t)
	trigger := &fakeTrigger{}
	params.Pipeline = trigger
	server := httptest.NewServer(NewRouter(params))
	defer server.Close()

	resp, err := http.Post(server.URL+"/runs", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, 1, trigger.count)
}

func TestTriggerRunAbsentWithoutPipeline(t *testing.T) {
	server := httptest.NewServer(NewRouter(testRouterParams(t)))
	defer server.Close()

	resp, err := http.Post(server.URL+"/runs", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEfficiencyReportEndpoint(t *testing.T) {
	params := testRouterParams(t)
	params.Efficiency = &fakeEfficiency{rows: []reports.EfficiencyRow{
		{Campaign: "spring_sale", Spend: 100, Revenue: 450, Orders: 3, Verdict: reports.VerdictProfitable},
	}}
	server := httptest.NewServer(NewRouter(params))
	defer server.Close()

	resp, err := http.Get(server.URL + "/reports/efficiency?days=14")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data struct {
			Since     string                  `json:"since"`
			Campaigns []reports.EfficiencyRow `json:"campaigns"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Data.Campaigns, 1)
	assert.Equal(t, "spring_sale", body.Data.Campaigns[0].Campaign)
	assert.Equal(t, reports.VerdictProfitable, body.Data.Campaigns[0].Verdict)
}

func TestEfficiencyReportRejectsBadDays(t *testing.T) {
	params := testRouterParams(t)
	params.Efficiency = &fakeEfficiency{}
	server := httptest.NewServer(NewRouter(params))
	defer server.Close()

	resp, err := http.Get(server.URL + "/reports/efficiency?days=not-a-number")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRequestIDHeaderEchoed(t *testing.T) {
	server := httptest.NewServer(NewRouter(testRouterParams(t)))
	defer server.Close()

	req, err := http.NewRequest(http.MethodGet, server.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-Id", "req-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "req-123", resp.Header.Get("X-Request-Id"))
}
