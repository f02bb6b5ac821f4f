package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"elasticquest-be/internal/dto"
	"elasticquest-be/internal/pkg/logger"
)

var allowedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodDelete: true,
	http.MethodHead:   true,
}

type IESClusterService interface {
	TestConnection(ctx context.Context, cfg *dto.ESConnectionConfig) *dto.ConnectionTestResult
	ExecuteCommand(ctx context.Context, req *dto.ESExecutionRequest) *dto.ESExecutionResult
}

// esClusterService proxies requests to a user-supplied Elasticsearch
// cluster so the browser never talks to it directly.
type esClusterService struct {
	client *http.Client
	logger logger.ILogger
}

func NewESClusterService(log logger.ILogger) IESClusterService {
	return &esClusterService{
		client: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		logger: log,
	}
}

func baseURL(cfg *dto.ESConnectionConfig) string {
	scheme := cfg.Scheme
	if scheme == "" {
		scheme = "http"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, cfg.Host, cfg.Port)
}

func (s *esClusterService) TestConnection(ctx context.Context, cfg *dto.ESConnectionConfig) *dto.ConnectionTestResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL(cfg)+"/", nil)
	if err != nil {
		return &dto.ConnectionTestResult{
			Message: "Invalid connection configuration",
			Error:   err.Error(),
		}
	}
	if cfg.Username != "" {
		req.SetBasicAuth(cfg.Username, cfg.Password)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("ESClusterService", "Connection test failed", map[string]interface{}{
			"host":  cfg.Host,
			"error": err.Error(),
		})
		return &dto.ConnectionTestResult{
			Message: "Could not reach the cluster",
			Error:   err.Error(),
		}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode != http.StatusOK {
		return &dto.ConnectionTestResult{
			Message: fmt.Sprintf("Cluster responded with status %d", resp.StatusCode),
			Error:   strings.TrimSpace(string(body)),
		}
	}

	var info struct {
		ClusterName string `json:"cluster_name"`
		Version     struct {
			Number string `json:"number"`
		} `json:"version"`
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return &dto.ConnectionTestResult{
			Message: "Cluster returned an unexpected response",
			Error:   err.Error(),
		}
	}

	return &dto.ConnectionTestResult{
		Success:     true,
		Message:     "Connected successfully",
		ClusterName: info.ClusterName,
		Version:     info.Version.Number,
	}
}

func (s *esClusterService) ExecuteCommand(ctx context.Context, req *dto.ESExecutionRequest) *dto.ESExecutionResult {
	method, endpoint, payload, err := parseCommand(req.Command)
	if err != nil {
		return &dto.ESExecutionResult{
			Message: "Invalid command",
			Error:   err.Error(),
		}
	}

	var body io.Reader
	if payload != "" {
		body = strings.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, baseURL(&req.Connection)+endpoint, body)
	if err != nil {
		return &dto.ESExecutionResult{
			Message: "Invalid command",
			Error:   err.Error(),
		}
	}
	if payload != "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.Connection.Username != "" {
		httpReq.SetBasicAuth(req.Connection.Username, req.Connection.Password)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		s.logger.Warn("ESClusterService", "Command execution failed", map[string]interface{}{
			"host":  req.Connection.Host,
			"error": err.Error(),
		})
		return &dto.ESExecutionResult{
			Message: "Could not reach the cluster",
			Error:   err.Error(),
		}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<20))

	result := &dto.ESExecutionResult{
		StatusCode:   resp.StatusCode,
		ResponseBody: string(respBody),
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		result.Success = true
		result.Message = "Command executed"
	} else {
		result.Message = fmt.Sprintf("Cluster responded with status %d", resp.StatusCode)
	}
	return result
}

// parseCommand splits a Kibana-console style command, "METHOD /endpoint"
// on the first line with an optional JSON body on the remaining lines.
func parseCommand(command string) (method, endpoint, body string, err error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return "", "", "", fmt.Errorf("empty command")
	}

	firstLine := command
	if idx := strings.IndexByte(command, '\n'); idx >= 0 {
		firstLine = command[:idx]
		body = strings.TrimSpace(command[idx+1:])
	}

	parts := strings.Fields(firstLine)
	if len(parts) != 2 {
		return "", "", "", fmt.Errorf("expected \"METHOD /endpoint\", got %q", firstLine)
	}

	method = strings.ToUpper(parts[0])
	if !allowedMethods[method] {
		return "", "", "", fmt.Errorf("unsupported method %q", parts[0])
	}

	endpoint = parts[1]
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}

	return method, endpoint, body, nil
}
