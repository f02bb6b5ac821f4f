package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"elasticquest-be/internal/dto"
	"elasticquest-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestESClusterService(t *testing.T) IESClusterService {
	t.Helper()
	return NewESClusterService(logger.NewZapLogger(t.TempDir()+"/es.log", false))
}

func connectionFor(t *testing.T, server *httptest.Server) dto.ESConnectionConfig {
	t.Helper()
	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return dto.ESConnectionConfig{
		Name:   "test",
		Host:   u.Hostname(),
		Port:   port,
		Scheme: "http",
	}
}

func TestTestConnection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"cluster_name": "docker-cluster",
			"version":      map[string]string{"number": "8.12.0"},
		})
	}))
	defer server.Close()

	svc := newTestESClusterService(t)
	cfg := connectionFor(t, server)

	result := svc.TestConnection(context.Background(), &cfg)

	assert.True(t, result.Success)
	assert.Equal(t, "docker-cluster", result.ClusterName)
	assert.Equal(t, "8.12.0", result.Version)
}

func TestTestConnectionAuthForwarded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "elastic" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"cluster_name": "secured",
			"version":      map[string]string{"number": "8.12.0"},
		})
	}))
	defer server.Close()

	svc := newTestESClusterService(t)

	cfg := connectionFor(t, server)
	result := svc.TestConnection(context.Background(), &cfg)
	assert.False(t, result.Success)

	cfg.Username = "elastic"
	cfg.Password = "secret"
	result = svc.TestConnection(context.Background(), &cfg)
	assert.True(t, result.Success)
	assert.Equal(t, "secured", result.ClusterName)
}

func TestTestConnectionUnreachable(t *testing.T) {
	svc := newTestESClusterService(t)
	cfg := dto.ESConnectionConfig{Host: "127.0.0.1", Port: 1, Scheme: "http"}

	result := svc.TestConnection(context.Background(), &cfg)

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

func TestExecuteCommand(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/products/_search", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"query": {"match_all": {}}}`, string(body))

		fmt.Fprint(w, `{"hits": {"total": {"value": 0}}}`)
	}))
	defer server.Close()

	svc := newTestESClusterService(t)

	result := svc.ExecuteCommand(context.Background(), &dto.ESExecutionRequest{
		Command:    "POST /products/_search\n{\"query\": {\"match_all\": {}}}",
		Connection: connectionFor(t, server),
	})

	assert.True(t, result.Success)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Contains(t, result.ResponseBody, "hits")
}

func TestExecuteCommandErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "index_not_found_exception"}`, http.StatusNotFound)
	}))
	defer server.Close()

	svc := newTestESClusterService(t)

	result := svc.ExecuteCommand(context.Background(), &dto.ESExecutionRequest{
		Command:    "GET /missing/_search",
		Connection: connectionFor(t, server),
	})

	assert.False(t, result.Success)
	assert.Equal(t, http.StatusNotFound, result.StatusCode)
	assert.Contains(t, result.ResponseBody, "index_not_found_exception")
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name         string
		command      string
		wantMethod   string
		wantEndpoint string
		wantBody     string
		wantErr      bool
	}{
		{
			name:         "get without body",
			command:      "GET /_cat/indices",
			wantMethod:   "GET",
			wantEndpoint: "/_cat/indices",
		},
		{
			name:         "lowercase method",
			command:      "put /products",
			wantMethod:   "PUT",
			wantEndpoint: "/products",
		},
		{
			name:         "missing leading slash",
			command:      "GET _cluster/health",
			wantMethod:   "GET",
			wantEndpoint: "/_cluster/health",
		},
		{
			name:         "body on following lines",
			command:      "POST /products/_doc\n{\"name\": \"widget\"}",
			wantMethod:   "POST",
			wantEndpoint: "/products/_doc",
			wantBody:     `{"name": "widget"}`,
		},
		{
			name:    "empty command",
			command: "   ",
			wantErr: true,
		},
		{
			name:    "unsupported method",
			command: "TRACE /",
			wantErr: true,
		},
		{
			name:    "missing endpoint",
			command: "GET",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method, endpoint, body, err := parseCommand(tt.command)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseCommand(%q) expected error, got %q %q", tt.command, method, endpoint)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseCommand(%q) error = %v", tt.command, err)
			}
			if method != tt.wantMethod {
				t.Errorf("method = %q, want %q", method, tt.wantMethod)
			}
			if endpoint != tt.wantEndpoint {
				t.Errorf("endpoint = %q, want %q", endpoint, tt.wantEndpoint)
			}
			if body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}
