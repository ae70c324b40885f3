package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	riqhttp "github.com/fivetwenty-io/ridderiq-client/internal/http"
	"github.com/fivetwenty-io/ridderiq-client/pkg/ridderiq"
)

// MockLogger for testing.
type MockLogger struct {
	mu   sync.Mutex
	logs []map[string]interface{}
}

func (l *MockLogger) record(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logs = append(l.logs, map[string]interface{}{"level": level, "msg": msg, "fields": fields})
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) { l.record("debug", msg, fields) }
func (l *MockLogger) Info(msg string, fields map[string]interface{})  { l.record("info", msg, fields) }
func (l *MockLogger) Warn(msg string, fields map[string]interface{})  { l.record("warn", msg, fields) }
func (l *MockLogger) Error(msg string, fields map[string]interface{}) { l.record("error", msg, fields) }

func fastRetries() riqhttp.Option {
	return riqhttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond)
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Do(t *testing.T) {
	t.Parallel()

	t.Run("successful request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/acme%20corp/main%2F01/v2/crm/todos", request.URL.EscapedPath())
			assert.Equal(t, http.MethodGet, request.Method)
			assert.Equal(t, "key-123", request.Header.Get("X-API-KEY"))
			assert.Equal(t, "application/json", request.Header.Get("Accept"))
			assert.Equal(t, "ridderiq-client/1.0", request.Header.Get("User-Agent"))

			_ = json.NewEncoder(writer).Encode([]map[string]int{{"id": 7}})
		}))
		defer server.Close()

		client := riqhttp.NewClient()

		resp, err := client.Do(context.Background(), &ridderiq.RequestDescriptor{
			URL:    server.URL + "/acme%20corp/main%2F01/v2/crm/todos",
			Method: ridderiq.MethodGet,
			Headers: map[string]string{
				"Accept":    "application/json",
				"X-API-KEY": "key-123",
			},
		})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.JSONEq(t, `[{"id":7}]`, string(resp.Body))
	})

	t.Run("request with query parameters", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "1", request.URL.Query().Get("page"))
			assert.Equal(t, "20", request.URL.Query().Get("size"))
			assert.Equal(t, `name[eq]"Test" and age[gt]20`, request.URL.Query().Get("filter"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := riqhttp.NewClient()

		resp, err := client.Do(context.Background(), &ridderiq.RequestDescriptor{
			URL:    server.URL + "/t/a/v2/crm/todos",
			Method: ridderiq.MethodGet,
			Query: url.Values{
				"page":   []string{"1"},
				"size":   []string{"20"},
				"filter": []string{`name[eq]"Test" and age[gt]20`},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("request with body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, http.MethodPost, request.Method)
			assert.Equal(t, "application/json", request.Header.Get("Content-Type"))

			var body map[string]string

			_ = json.NewDecoder(request.Body).Decode(&body)
			assert.Equal(t, "call back", body["description"])

			writer.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		client := riqhttp.NewClient()

		resp, err := client.Do(context.Background(), &ridderiq.RequestDescriptor{
			URL:     server.URL + "/t/a/v2/crm/todos",
			Method:  ridderiq.MethodPost,
			Headers: map[string]string{"Content-Type": "application/json"},
			Body:    json.RawMessage(`{"description":"call back"}`),
		})
		require.NoError(t, err)
		assert.Equal(t, 201, resp.StatusCode)
	})

	t.Run("error response", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			writer.WriteHeader(http.StatusNotFound)
			_, _ = writer.Write([]byte(`{"title":"Not Found"}`))
		}))
		defer server.Close()

		client := riqhttp.NewClient()

		resp, err := client.Do(context.Background(), &ridderiq.RequestDescriptor{
			URL:    server.URL + "/t/a/v2/crm/unknown",
			Method: ridderiq.MethodGet,
		})
		require.Error(t, err)
		assert.Equal(t, 404, resp.StatusCode)

		statusErr := &ridderiq.StatusError{}
		ok := errors.As(err, &statusErr)
		require.True(t, ok)
		assert.Equal(t, 404, statusErr.StatusCode)
		assert.JSONEq(t, `{"title":"Not Found"}`, string(statusErr.Body))
	})

	t.Run("with debug logging", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		logger := &MockLogger{}
		client := riqhttp.NewClient(riqhttp.WithLogger(logger), riqhttp.WithDebug(true))

		_, err := client.Do(context.Background(), &ridderiq.RequestDescriptor{
			URL:     server.URL + "/t/a/v2/crm/todos",
			Method:  ridderiq.MethodGet,
			Headers: map[string]string{"X-API-KEY": "secret-api-key-1234"},
		})
		require.NoError(t, err)

		require.Len(t, logger.logs, 2)
		assert.Equal(t, "HTTP Request", logger.logs[0]["msg"])
		assert.Equal(t, "HTTP Response", logger.logs[1]["msg"])

		fields, ok := logger.logs[0]["fields"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, map[string]string{"X-API-KEY": "***1234"}, fields["headers"])
	})

	t.Run("invalid url", func(t *testing.T) {
		t.Parallel()

		_, err := riqhttp.NewClient().Do(context.Background(), &ridderiq.RequestDescriptor{
			URL:    "http://[::1",
			Method: ridderiq.MethodGet,
		})
		require.Error(t, err)
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_RetryLogic(t *testing.T) {
	t.Parallel()

	t.Run("retries on 5xx errors", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			if attempts.Add(1) < 3 {
				writer.WriteHeader(http.StatusInternalServerError)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		logger := &MockLogger{}
		client := riqhttp.NewClient(fastRetries(), riqhttp.WithLogger(logger))

		resp, err := client.Do(context.Background(), &ridderiq.RequestDescriptor{URL: server.URL, Method: ridderiq.MethodGet})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, int32(3), attempts.Load())
		assert.Len(t, logger.logs, 2)
	})

	t.Run("retries on rate limiting", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			if attempts.Add(1) < 2 {
				writer.WriteHeader(http.StatusTooManyRequests)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		client := riqhttp.NewClient(fastRetries())

		resp, err := client.Do(context.Background(), &ridderiq.RequestDescriptor{URL: server.URL, Method: ridderiq.MethodGet})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, int32(2), attempts.Load())
	})

	t.Run("does not retry on client errors", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			attempts.Add(1)
			writer.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client := riqhttp.NewClient(fastRetries())

		resp, err := client.Do(context.Background(), &ridderiq.RequestDescriptor{URL: server.URL, Method: ridderiq.MethodGet})
		require.Error(t, err)
		assert.Equal(t, 400, resp.StatusCode)
		assert.Equal(t, int32(1), attempts.Load())
	})

	t.Run("returns last response when retries are exhausted", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			attempts.Add(1)
			writer.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := riqhttp.NewClient(riqhttp.WithRetryConfig(1, time.Millisecond, 5*time.Millisecond))

		resp, err := client.Do(context.Background(), &ridderiq.RequestDescriptor{URL: server.URL, Method: ridderiq.MethodGet})
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, 503, resp.StatusCode)
		assert.Equal(t, int32(2), attempts.Load())

		statusErr := &ridderiq.StatusError{}
		assert.ErrorAs(t, err, &statusErr)
	})

	t.Run("retries can be disabled", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			attempts.Add(1)
			writer.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := riqhttp.NewClient(riqhttp.WithRetryConfig(0, time.Millisecond, time.Millisecond))

		_, err := client.Do(context.Background(), &ridderiq.RequestDescriptor{URL: server.URL, Method: ridderiq.MethodGet})
		require.Error(t, err)
		assert.Equal(t, int32(1), attempts.Load())
	})
}
