package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdrpinto/robotroute/config"
)

func newTestServer() *Server {
	gin.SetMode(gin.TestMode)
	defaults := config.Default()
	defaults.Search.Workers = 2
	return New(defaults, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func do(t *testing.T, s *Server, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	request := httptest.NewRequest(method, target, reader)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	recorder := httptest.NewRecorder()
	s.Handler().ServeHTTP(recorder, request)
	return recorder
}

func TestHealthz(t *testing.T) {
	recorder := do(t, newTestServer(), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"status":"ok"}`, recorder.Body.String())
	assert.NotEmpty(t, recorder.Header().Get(requestIDHeader))
}

func TestGrid(t *testing.T) {
	s := newTestServer()

	recorder := do(t, s, http.MethodGet, "/v1/grid", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var response gridResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, 9, response.Order)
	assert.Len(t, response.Walls, 42)
	assert.Contains(t, response.Walls, [2]int{3, 5})
	assert.Contains(t, response.Walls, [2]int{6, 1})
	assert.Equal(t, 9, strings.Count(response.Text, "\n"))

	recorder = do(t, s, http.MethodGet, "/v1/grid?order=12", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, 12, response.Order)

	recorder = do(t, s, http.MethodGet, "/v1/grid?order=2", nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestSolve_DefaultScenario(t *testing.T) {
	request := httptest.NewRequest(http.MethodPost, "/v1/solve", strings.NewReader(`{}`))
	request.Header.Set(requestIDHeader, "route-1")
	recorder := httptest.NewRecorder()
	newTestServer().Handler().ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)

	var response SolveResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, "route-1", response.RequestID)
	assert.Equal(t, "bfs", response.Strategy)
	assert.Empty(t, response.Heuristic)
	assert.True(t, response.Found)
	assert.Equal(t, []int{0, 315, 315, 270, 315, 315, 315}, response.Actions)
	assert.Equal(t, "E", response.Moves[0])
	assert.Equal(t, 27, response.Expanded)
	assert.Equal(t, 7.0, response.Cost)
	require.Len(t, response.Path, 8)
	assert.Equal(t, [2]int{1, 1}, response.Path[0])
	assert.Equal(t, [2]int{7, 7}, response.Path[7])
}

func TestSolve_AStar(t *testing.T) {
	recorder := do(t, newTestServer(), http.MethodPost, "/v1/solve", map[string]any{
		"strategy":  "astar",
		"heuristic": "chebyshev",
		"order":     12,
		"goal":      map[string]int{"x": 10, "y": 10},
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	var response SolveResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.True(t, response.Found)
	assert.Equal(t, "chebyshev", response.Heuristic)
	assert.Equal(t, [2]int{10, 10}, response.Path[len(response.Path)-1])
	assert.Equal(t, float64(len(response.Actions)), response.Cost)
}

func TestSolve_Rejections(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
		code int
	}{
		{"goal on wall", map[string]any{"goal": map[string]int{"x": 3, "y": 5}}, http.StatusBadRequest},
		{"goal outside", map[string]any{"goal": map[string]int{"x": 40, "y": 5}}, http.StatusBadRequest},
		{"unknown strategy", map[string]any{"strategy": "beam"}, http.StatusBadRequest},
		{"unknown heuristic", map[string]any{"strategy": "astar", "heuristic": "octile"}, http.StatusBadRequest},
		{"small order", map[string]any{"order": 2}, http.StatusBadRequest},
		{"budget", map[string]any{"max_expansions": 1}, http.StatusUnprocessableEntity},
	}
	s := newTestServer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := do(t, s, http.MethodPost, "/v1/solve", tt.body)
			assert.Equal(t, tt.code, recorder.Code, recorder.Body.String())
		})
	}

	recorder := do(t, s, http.MethodPost, "/v1/solve", nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestMetrics(t *testing.T) {
	s := newTestServer()
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/v1/solve", map[string]any{}).Code)

	recorder := do(t, s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "robotroute_search_runs_total")
}

func TestStepSocket(t *testing.T) {
	httpServer := httptest.NewServer(newTestServer().Handler())
	defer httpServer.Close()

	url := "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/v1/step"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer ws.Close()

	var snapshot stepSnapshot
	require.NoError(t, ws.WriteJSON(map[string]any{"type": "next"}))
	require.NoError(t, ws.ReadJSON(&snapshot))
	assert.Equal(t, "engine not initialized", snapshot.Error)

	require.NoError(t, ws.WriteJSON(map[string]any{"type": "init", "heuristic": "chebyshev"}))
	snapshot = stepSnapshot{}
	require.NoError(t, ws.ReadJSON(&snapshot))
	assert.Empty(t, snapshot.Error)
	assert.Equal(t, "astar", snapshot.Strategy)
	assert.Len(t, snapshot.Walls, 42)
	assert.Equal(t, [][2]int{{1, 1}}, snapshot.Open)
	assert.Equal(t, [2]int{7, 7}, snapshot.Goal)

	require.NoError(t, ws.WriteJSON(map[string]any{"type": "next"}))
	snapshot = stepSnapshot{}
	require.NoError(t, ws.ReadJSON(&snapshot))
	assert.Equal(t, 1, snapshot.Step)
	assert.Equal(t, [2]int{1, 1}, snapshot.Current)
	assert.Equal(t, [][2]int{{1, 1}}, snapshot.Closed)
	assert.False(t, snapshot.Done)

	require.NoError(t, ws.WriteJSON(map[string]any{"type": "run"}))
	for i := 0; i < 100; i++ {
		snapshot = stepSnapshot{}
		require.NoError(t, ws.ReadJSON(&snapshot))
		if snapshot.Done {
			break
		}
	}
	require.True(t, snapshot.Done)
	assert.True(t, snapshot.Found)
	assert.Len(t, snapshot.Moves, 7)
	assert.Equal(t, [2]int{7, 7}, snapshot.Path[len(snapshot.Path)-1])

	require.NoError(t, ws.WriteJSON(map[string]any{"type": "init", "goal": map[string]int{"x": 0, "y": 0}}))
	snapshot = stepSnapshot{}
	require.NoError(t, ws.ReadJSON(&snapshot))
	assert.NotEmpty(t, snapshot.Error)

	require.NoError(t, ws.WriteJSON(map[string]any{"type": "init", "strategy": "bfs"}))
	snapshot = stepSnapshot{}
	require.NoError(t, ws.ReadJSON(&snapshot))
	assert.Contains(t, snapshot.Error, "cannot be stepped")

	require.NoError(t, ws.WriteJSON(map[string]any{"type": "init", "strategy": "ucs"}))
	snapshot = stepSnapshot{}
	require.NoError(t, ws.ReadJSON(&snapshot))
	assert.Empty(t, snapshot.Error)
	assert.Equal(t, "ucs", snapshot.Strategy)

	require.NoError(t, ws.WriteJSON(map[string]any{"type": "run"}))
	for i := 0; i < 100; i++ {
		snapshot = stepSnapshot{}
		require.NoError(t, ws.ReadJSON(&snapshot))
		if snapshot.Done {
			break
		}
	}
	assert.Equal(t, "ucs", snapshot.Strategy)
	assert.True(t, snapshot.Found)
	assert.Len(t, snapshot.Moves, 7)

	require.NoError(t, ws.WriteJSON(map[string]any{"type": "jump"}))
	snapshot = stepSnapshot{}
	require.NoError(t, ws.ReadJSON(&snapshot))
	assert.Contains(t, snapshot.Error, "unknown message type")
}
