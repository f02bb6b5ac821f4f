package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

const defaultBaseURL = "http://localhost:8080/api"

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

func sendRequest(method, baseURL, url string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func main() {
	baseURL := defaultBaseURL
	if env := os.Getenv("DIAGNOSE_BASE_URL"); env != "" {
		baseURL = env
	}

	color.Cyan("🚀 ElasticQuest Backend Diagnostic\n")

	// 1. Health checks
	color.Yellow("\n[1] RAG chat health")
	resp, body, err := sendRequest("GET", baseURL, "/rag-chat/health", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var healthResp map[string]interface{}
	json.Unmarshal(body, &healthResp)
	prettyPrint(healthResp)

	color.Yellow("\n[2] ES proxy health")
	resp, body, err = sendRequest("GET", baseURL, "/es-connection/health", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)

	// 2. Optional local cluster probe
	if host := os.Getenv("DIAGNOSE_ES_HOST"); host != "" {
		color.Yellow("\n[3] Testing ES connection to %s", host)
		connReq := map[string]interface{}{
			"name":   "diagnostic",
			"host":   host,
			"port":   9200,
			"scheme": "http",
		}
		resp, body, err = sendRequest("POST", baseURL, "/es-connection/test", connReq)
		if err != nil {
			color.Red("Failed: %v", err)
		} else {
			color.Green("Status: %s", resp.Status)
			var connResp map[string]interface{}
			json.Unmarshal(body, &connResp)
			prettyPrint(connResp)
		}
	}

	// 3. Streaming chat round trip
	color.Yellow("\n[4] Streaming chat round trip")
	chatReq := map[string]interface{}{
		"question":        "What is a shard in Elasticsearch?",
		"contextMaterial": "Elasticsearch uses shards to distribute data across nodes.",
	}
	if err := streamChat(baseURL, chatReq); err != nil {
		color.Red("Stream failed: %v", err)
		os.Exit(1)
	}

	color.Cyan("\n✅ Diagnostic complete")
}

func streamChat(baseURL string, payload map[string]interface{}) error {
	jsonBody, _ := json.Marshal(payload)
	req, err := http.NewRequest("POST", baseURL+"/rag-chat/stream", bytes.NewBuffer(jsonBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{} // No timeout, the server bounds the stream
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	chunks := 0
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}

		var chunk struct {
			Content    string `json:"content"`
			Done       bool   `json:"done"`
			Error      string `json:"error"`
			Highlights []struct {
				Text        string `json:"text"`
				Highlighted bool   `json:"highlighted"`
			} `json:"highlights"`
		}
		if err := json.Unmarshal([]byte(strings.TrimSpace(line[5:])), &chunk); err != nil {
			color.Red("Malformed frame: %s", line)
			continue
		}

		if chunk.Error != "" {
			return fmt.Errorf("server reported: %s", chunk.Error)
		}
		if chunk.Done {
			highlighted := 0
			for _, seg := range chunk.Highlights {
				if seg.Highlighted {
					highlighted++
				}
			}
			color.Green("Received %d chunks, %d segments (%d highlighted)", chunks, len(chunk.Highlights), highlighted)
			return nil
		}

		chunks++
		fmt.Print(chunk.Content)
	}
	return scanner.Err()
}
