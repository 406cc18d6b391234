package server

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/daniellalimbag/dory-app-sub000/internal/config"
	"github.com/daniellalimbag/dory-app-sub000/internal/metricsapi"
)

const sessionBody = `{
	"session_id": 12,
	"swimmer_id": 7,
	"pool_length_m": 25,
	"samples": [
		{"timestamp_ms": 0, "accel_x": 1},
		{"timestamp_ms": 10000, "accel_x": 1}
	]
}`

func newTestServer(t *testing.T, cfg config.DaemonConfig) (*Server, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	if cfg.CacheTTLSeconds == 0 {
		cfg.CacheTTLSeconds = 60
	}
	return NewServer(cfg, rdb), mr
}

func postSession(t *testing.T, s *Server, body, authHeader string) (int, string, []byte) {
	t.Helper()
	req := httptest.NewRequest("POST", "/metrics/session", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	// no timeout: the redis-down case waits out client retries
	resp, err := s.App.Test(req, -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, resp.Header.Get("X-Cache"), data
}

func TestHealthRoute(t *testing.T) {
	s := NewServer(config.DaemonConfig{}, nil)

	req := httptest.NewRequest("GET", "/health", nil)
	resp, err := s.App.Test(req)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestSessionEndpoint(t *testing.T) {
	s, _ := newTestServer(t, config.DaemonConfig{PoolLengthMeters: 50})

	status, cache, data := postSession(t, s, sessionBody, "")
	if status != 200 {
		t.Fatalf("status = %d, body %s", status, data)
	}
	if cache != "MISS" {
		t.Errorf("X-Cache = %q, want MISS", cache)
	}

	var resp metricsapi.SessionResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.SessionID == nil || *resp.SessionID != 12 || resp.SwimmerID == nil || *resp.SwimmerID != 7 {
		t.Errorf("ids = %v, %v", resp.SessionID, resp.SwimmerID)
	}
	if resp.ExerciseID != nil {
		t.Errorf("exercise id = %v, want null", *resp.ExerciseID)
	}
	// too short to swim a lap, so the whole recording is one entry
	if resp.Averages.LapCount != 1 || len(resp.Laps) != 1 {
		t.Fatalf("laps = %+v", resp.Laps)
	}
	lap := resp.Laps[0]
	if lap.LapTimeSeconds != 10 {
		t.Errorf("lap time = %v, want 10", lap.LapTimeSeconds)
	}
	// request pool length wins over the server default
	if lap.VelocityMetersPerSecond != 2.5 {
		t.Errorf("velocity = %v, want 2.5", lap.VelocityMetersPerSecond)
	}
}

func TestSessionEndpointCaches(t *testing.T) {
	s, mr := newTestServer(t, config.DaemonConfig{})

	_, _, first := postSession(t, s, sessionBody, "")
	if len(mr.Keys()) != 1 {
		t.Fatalf("cache keys = %v, want one", mr.Keys())
	}
	if ttl := mr.TTL(mr.Keys()[0]); ttl.Seconds() != 60 {
		t.Errorf("TTL = %v, want 60s", ttl)
	}

	status, cache, second := postSession(t, s, sessionBody, "")
	if status != 200 || cache != "HIT" {
		t.Errorf("second request status = %d, X-Cache = %q", status, cache)
	}
	if string(first) != string(second) {
		t.Errorf("cached body differs:\n%s\n%s", first, second)
	}

	// a different pool length is a different answer
	other := strings.Replace(sessionBody, `"pool_length_m": 25`, `"pool_length_m": 50`, 1)
	if _, cache, _ := postSession(t, s, other, ""); cache != "MISS" {
		t.Errorf("X-Cache = %q for a new pool length, want MISS", cache)
	}
}

func TestSessionEndpointRedisDown(t *testing.T) {
	s, mr := newTestServer(t, config.DaemonConfig{})
	mr.Close()

	status, _, data := postSession(t, s, sessionBody, "")
	if status != 200 {
		t.Errorf("status = %d with redis down, body %s", status, data)
	}
}

func TestSessionEndpointBadRequest(t *testing.T) {
	s := NewServer(config.DaemonConfig{}, nil)

	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"session_id":`},
		{"string session id", `{"session_id": "s1", "samples": []}`},
		{"negative pool", `{"session_id": 1, "pool_length_m": -1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if status, _, _ := postSession(t, s, tt.body, ""); status != 400 {
				t.Errorf("status = %d, want 400", status)
			}
		})
	}
}

func TestEmptySamples(t *testing.T) {
	s := NewServer(config.DaemonConfig{}, nil)

	status, _, data := postSession(t, s, `{"samples": []}`, "")
	if status != 200 {
		t.Fatalf("status = %d", status)
	}
	var resp metricsapi.SessionResponse
	json.Unmarshal(data, &resp)
	if resp.Averages.LapCount != 0 || len(resp.Laps) != 0 {
		t.Errorf("empty session gave %+v", resp)
	}
}

func TestAPIKeyMiddleware(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	s := NewServer(config.DaemonConfig{APIKeyHash: string(hash)}, nil)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", 401},
		{"not bearer", "Basic correct", 401},
		{"wrong key", "Bearer wrong", 401},
		{"correct key", "Bearer correct", 200},
		{"lowercase scheme", "bearer correct", 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if status, _, _ := postSession(t, s, sessionBody, tt.header); status != tt.want {
				t.Errorf("status = %d, want %d", status, tt.want)
			}
		})
	}

	// health stays open
	resp, _ := s.App.Test(httptest.NewRequest("GET", "/health", nil))
	if resp.StatusCode != 200 {
		t.Errorf("health status = %d, want 200", resp.StatusCode)
	}
}
