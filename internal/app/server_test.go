package app

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	protocol "gpacalc/api"
	"gpacalc/internal/advice"
	"gpacalc/internal/config"
	"gpacalc/internal/gpa"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProvider struct {
	tips []string
	err  error
}

func (f fakeProvider) Advise(context.Context, string) ([]string, error) {
	return f.tips, f.err
}

func newTestServer(t *testing.T, provider advice.Provider) *httptest.Server {
	t.Helper()
	cfg := config.Config{
		CORSOrigins:   []string{"http://localhost:3000"},
		AdviceTimeout: time.Second,
	}
	srv := NewServerWithProvider(cfg, provider, zap.NewNop())
	go srv.Hub.Run()

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, fakeProvider{})

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGrades(t *testing.T) {
	ts := newTestServer(t, fakeProvider{})

	resp, err := http.Get(ts.URL + "/api/grades")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body protocol.GradesResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Grades, 10)
	for i, g := range gpa.Catalog() {
		assert.Equal(t, g, body.Grades[i].GradeOption)
	}
	assert.Equal(t, "good", body.Grades[0].Band)
	assert.Equal(t, "fair", body.Grades[6].Band)
	assert.Equal(t, "poor", body.Grades[9].Band)
	assert.Equal(t, []float64{3.0, 2.0, 1.5, 1.0}, body.CommonCredits)
}

func TestComputeEndpoint(t *testing.T) {
	ts := newTestServer(t, fakeProvider{})

	resp := post(t, ts.URL+"/api/gpa", `{"courses":[
		{"id":"1","name":"A","credits":3,"gradePoints":4},
		{"id":"2","name":"B","credits":"3","gradePoints":3.75},
		{"id":"3","name":"C","credits":3,"gradePoints":3.5},
		{"id":"4","name":"D","credits":"n/a","gradePoints":0}
	]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result gpa.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 3.75, result.GPA)
	assert.Equal(t, 9.0, result.TotalCredits)
	assert.Equal(t, 33.75, result.TotalPoints)
	assert.Equal(t, "A", result.Label)
	assert.Equal(t, "😁", result.Emoji)
}

func TestComputeEndpointEmptyCredits(t *testing.T) {
	ts := newTestServer(t, fakeProvider{})

	resp := post(t, ts.URL+"/api/gpa", `{"courses":[{"id":"1","credits":0,"gradePoints":4}]}`)

	var result gpa.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 0.0, result.GPA)
	assert.Equal(t, "F", result.Label)
}

func TestComputeEndpointOverflow(t *testing.T) {
	ts := newTestServer(t, fakeProvider{})

	resp := post(t, ts.URL+"/api/gpa", `{"courses":[{"credits":1e308,"gradePoints":4},{"credits":1e308,"gradePoints":4}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result gpa.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 0.0, result.GPA)
	assert.Equal(t, 0.0, result.TotalCredits)
	assert.Equal(t, "F", result.Label)
}

func TestWriteJSONUnencodable(t *testing.T) {
	srv := NewServerWithProvider(config.Config{}, fakeProvider{}, zap.NewNop())
	rec := httptest.NewRecorder()

	srv.writeJSON(rec, http.StatusOK, map[string]float64{"gpa": math.Inf(1)})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body protocol.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 2000, body.Code)
	assert.Equal(t, "Internal server error", body.Message)
}

func TestComputeEndpointBadJSON(t *testing.T) {
	ts := newTestServer(t, fakeProvider{})

	resp := post(t, ts.URL+"/api/gpa", `{"courses":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body protocol.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 1001, body.Code)
	assert.Equal(t, "Invalid data", body.Message)
}

func TestAdviceEndpoint(t *testing.T) {
	ts := newTestServer(t, fakeProvider{tips: []string{"x", "y", "z"}})

	resp := post(t, ts.URL+"/api/advice", `{"courses":[{"id":"1","name":"CSE","credits":3,"gradePoints":3.25}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body protocol.AdviceResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 3.25, body.GPA)
	assert.Equal(t, []string{"x", "y", "z"}, body.Advice)
}

func TestAdviceEndpointFallback(t *testing.T) {
	ts := newTestServer(t, fakeProvider{err: errors.New("provider down")})

	resp := post(t, ts.URL+"/api/advice", `{"courses":[{"id":"1","credits":3,"gradePoints":2}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body protocol.AdviceResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, advice.FallbackAdvice, body.Advice)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, fakeProvider{})

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/gpa", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
}
