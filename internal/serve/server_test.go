package serve

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okra-platform/webdemo/internal/config"
)

// Test plan for Server:
// 1. Test the server answers all three routes over a real listener
// 2. Test Start returns nil after context cancellation
// 3. Test Start fails when the port is already in use
// 4. Test Start rejects an invalid configuration
// 5. Test the metrics listener serves /metrics when enabled

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Port = 0
	cfg.ShutdownTimeout = 2 * time.Second
	return cfg
}

// startServer runs srv in the background and returns its base URL and a stop
// function that waits for Start to return.
func startServer(t *testing.T, srv Server) (string, func() error) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(ctx)
	}()

	select {
	case <-srv.Ready():
	case err := <-errChan:
		cancel()
		t.Fatalf("server failed to start: %v", err)
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("server did not become ready")
	}

	stop := func() error {
		cancel()
		select {
		case err := <-errChan:
			return err
		case <-time.After(5 * time.Second):
			return fmt.Errorf("server did not stop")
		}
	}
	_, port, err := net.SplitHostPort(srv.Addr())
	require.NoError(t, err)
	return "http://127.0.0.1:" + port, stop
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func TestServer_Routes(t *testing.T) {
	// Test: all routes are served over a real listener
	srv := NewServer(testConfig(), zerolog.Nop())
	baseURL, stop := startServer(t, srv)

	t.Run("data", func(t *testing.T) {
		resp, err := http.Get(baseURL + "/api/data")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
		assert.NotEmpty(t, resp.Header.Get(HeaderRequestID))

		var data DataResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&data))
		assert.Equal(t, "Hello from the Go server!", data.Message)
		_, err = time.Parse(time.RFC3339, data.Timestamp)
		assert.NoError(t, err)
	})

	t.Run("greet", func(t *testing.T) {
		resp, err := http.Post(baseURL+"/api/greet", "application/json", strings.NewReader(`{"name":"Ada"}`))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var greet GreetResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&greet))
		assert.Contains(t, greet.Greeting, "Hello, Ada!")
		assert.Regexp(t, timeOfDay, greet.Greeting)
	})

	t.Run("greet malformed", func(t *testing.T) {
		resp, err := http.Post(baseURL+"/api/greet", "application/json", strings.NewReader(`not json`))
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, `{"error":"Invalid request"}`, string(body))
	})

	t.Run("page", func(t *testing.T) {
		resp, err := http.Get(baseURL + "/foo")
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "text/html", resp.Header.Get("Content-Type"))
		assert.Contains(t, string(body), "Go Web UI Demo")
	})

	assert.NoError(t, stop())
}

func TestServer_StopsOnCancel(t *testing.T) {
	// Test: cancelling the context shuts the listener down cleanly
	srv := NewServer(testConfig(), zerolog.Nop())
	baseURL, stop := startServer(t, srv)

	require.NoError(t, stop())

	client := &http.Client{Timeout: time.Second}
	_, err := client.Get(baseURL + "/")
	assert.Error(t, err)
}

func TestServer_PortInUse(t *testing.T) {
	// Test: Start returns the bind error when the port is taken
	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := testConfig()
	cfg.Port = ln.Addr().(*net.TCPAddr).Port

	srv := NewServer(cfg, zerolog.Nop())
	err = srv.Start(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")
}

func TestServer_InvalidConfig(t *testing.T) {
	// Test: Start validates the configuration before binding
	cfg := testConfig()
	cfg.Port = -1

	srv := NewServer(cfg, zerolog.Nop())
	err := srv.Start(context.Background())

	assert.ErrorIs(t, err, config.ErrInvalidPort)
	assert.Empty(t, srv.Addr())
}

func TestServer_MetricsListener(t *testing.T) {
	// Test: /metrics is served on the metrics port, not on the service port
	cfg := testConfig()
	cfg.MetricsPort = freePort(t)

	srv := NewServer(cfg, zerolog.Nop())
	baseURL, stop := startServer(t, srv)
	defer func() { assert.NoError(t, stop()) }()

	resp, err := http.Get(baseURL + "/api/data")
	require.NoError(t, err)
	resp.Body.Close()

	metricsURL := fmt.Sprintf("http://127.0.0.1:%d/metrics", cfg.MetricsPort)
	var body []byte
	require.Eventually(t, func() bool {
		resp, err := http.Get(metricsURL)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, err = io.ReadAll(resp.Body)
		return err == nil && resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	assert.Contains(t, string(body), `webdemo_http_requests_total{method="GET",route="/api/data",status="200"} 1`)

	// The service port keeps serving the page for /metrics
	resp, err = http.Get(baseURL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/html", resp.Header.Get("Content-Type"))
}
