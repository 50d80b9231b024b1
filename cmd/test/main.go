package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorPurple = "\033[35m"
	colorCyan   = "\033[36m"
)

type TestClient struct {
	baseURL string
	client  *http.Client
}

func NewTestClient(baseURL string) *TestClient {
	return &TestClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the server")
	testType := flag.String("test", "all", "Test type: all, health, agent-card, icp, a2a, gemini, export")
	message := flag.String("message", "Our buyers are CTOs at Series B fintech startups in Europe", "User message for a2a and gemini tests")
	flag.Parse()

	client := NewTestClient(*baseURL)

	printHeader("ICP Builder - Smoke Tests")
	fmt.Printf("%sBase URL: %s%s\n\n", colorCyan, client.baseURL, colorReset)

	tests := map[string]func() bool{
		"health":     client.testHealthCheck,
		"agent-card": client.testAgentCard,
		"icp":        client.testProfile,
		"a2a":        func() bool { return client.testA2ATurn(*message) },
		"gemini":     func() bool { return client.testGeminiProxy(*message) },
		"export":     client.testExport,
	}

	if *testType == "all" {
		client.runAllTests(tests)
		return
	}
	fn, ok := tests[*testType]
	if !ok {
		printError(fmt.Sprintf("Unknown test type: %s", *testType))
		fmt.Println("\nAvailable tests: all, health, agent-card, icp, a2a, gemini, export")
		os.Exit(1)
	}
	if !fn() {
		os.Exit(1)
	}
}

func (tc *TestClient) runAllTests(tests map[string]func() bool) {
	order := []string{"health", "agent-card", "icp", "a2a", "export"}

	passed := 0
	failed := 0
	for _, name := range order {
		if tests[name]() {
			passed++
		} else {
			failed++
		}
		fmt.Println()
	}

	printHeader("Test Summary")
	fmt.Printf("%sPassed: %d%s\n", colorGreen, passed, colorReset)
	fmt.Printf("%sFailed: %d%s\n", colorRed, failed, colorReset)
	fmt.Printf("Total: %d\n", passed+failed)

	if failed > 0 {
		os.Exit(1)
	}
}

// do sends a request and decodes a JSON object response.
func (tc *TestClient) do(method, path string, payload any) (int, map[string]any, []byte, error) {
	url := tc.baseURL + path
	fmt.Printf("%s %s\n", method, url)

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, nil, err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return 0, nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := tc.client.Do(req)
	if err != nil {
		return 0, nil, nil, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var decoded map[string]any
	_ = json.Unmarshal(raw, &decoded)
	return resp.StatusCode, decoded, raw, nil
}

func (tc *TestClient) testHealthCheck() bool {
	printTestHeader("Testing Health Check Endpoint")

	status, body, _, err := tc.do(http.MethodGet, "/api/health", nil)
	if err != nil {
		printError(fmt.Sprintf("Request failed: %v", err))
		return false
	}
	if status != http.StatusOK {
		printError(fmt.Sprintf("Expected status 200, got %d", status))
		return false
	}
	if body["status"] != "ok" {
		printError(fmt.Sprintf("Expected status 'ok', got '%v'", body["status"]))
		return false
	}

	printSuccess("Health check passed")
	return true
}

func (tc *TestClient) testAgentCard() bool {
	printTestHeader("Testing Agent Card Endpoint")

	status, card, raw, err := tc.do(http.MethodGet, "/.well-known/agent.json", nil)
	if err != nil {
		printError(fmt.Sprintf("Request failed: %v", err))
		return false
	}
	if status != http.StatusOK {
		printError(fmt.Sprintf("Expected status 200, got %d", status))
		return false
	}

	requiredFields := []string{"name", "description", "url", "version", "capabilities", "skills"}
	for _, field := range requiredFields {
		if _, ok := card[field]; !ok {
			printError(fmt.Sprintf("Missing required field: %s", field))
			return false
		}
	}

	printSuccess("Agent card is valid")
	printJSON(raw)
	return true
}

func (tc *TestClient) testProfile() bool {
	printTestHeader("Testing Profile Endpoint")

	status, body, _, err := tc.do(http.MethodGet, "/api/icp", nil)
	if err != nil {
		printError(fmt.Sprintf("Request failed: %v", err))
		return false
	}
	if status != http.StatusOK {
		printError(fmt.Sprintf("Expected status 200, got %d", status))
		return false
	}
	st, ok := body["status"].(map[string]any)
	if !ok {
		printError("Missing status")
		return false
	}

	printSuccess(fmt.Sprintf("Profile is %v%% complete, active section %v", st["percentage"], st["activeSection"]))
	return true
}

func (tc *TestClient) testA2ATurn(message string) bool {
	printTestHeader("Testing A2A Turn")
	fmt.Printf("%sMessage:%s %s\n\n", colorCyan, colorReset, message)

	request := map[string]any{
		"jsonrpc": "2.0",
		"id":      fmt.Sprintf("test-%d", time.Now().Unix()),
		"method":  "message/send",
		"params": map[string]any{
			"message": map[string]any{
				"kind":  "message",
				"role":  "user",
				"parts": []map[string]any{{"kind": "text", "text": message}},
			},
			"configuration": map[string]any{
				"blocking":            true,
				"acceptedOutputModes": []string{"text", "data"},
			},
		},
	}

	status, response, _, err := tc.do(http.MethodPost, "/a2a/icp", request)
	if err != nil {
		printError(fmt.Sprintf("Request failed: %v", err))
		return false
	}
	if status != http.StatusOK {
		printError(fmt.Sprintf("Expected status 200, got %d", status))
		return false
	}
	if errObj, ok := response["error"]; ok {
		printError("Request returned an error")
		errJSON, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Println(string(errJSON))
		return false
	}

	result, ok := response["result"].(map[string]any)
	if !ok {
		printError("Invalid result format")
		return false
	}
	taskStatus, ok := result["status"].(map[string]any)
	if !ok {
		printError("Invalid status format")
		return false
	}

	state, _ := taskStatus["state"].(string)
	if state != "input-required" && state != "completed" {
		printError(fmt.Sprintf("Expected state 'input-required' or 'completed', got '%s'", state))
		printParts(taskStatus)
		return false
	}
	printSuccess(fmt.Sprintf("Turn finished with state '%s'", state))
	printParts(taskStatus)

	if artifacts, ok := result["artifacts"].([]any); ok && len(artifacts) > 0 {
		fmt.Printf("\n%sArtifacts:%s %d\n", colorPurple, colorReset, len(artifacts))
	}
	return true
}

func (tc *TestClient) testGeminiProxy(message string) bool {
	printTestHeader("Testing Stateless Gemini Endpoint")

	status, body, raw, err := tc.do(http.MethodPost, "/api/gemini", map[string]any{"message": message})
	if err != nil {
		printError(fmt.Sprintf("Request failed: %v", err))
		return false
	}
	if status != http.StatusOK {
		printError(fmt.Sprintf("Expected status 200, got %d", status))
		printJSON(raw)
		return false
	}

	printSuccess(fmt.Sprintf("Reply received with %v update(s)", body["updates"]))
	fmt.Println(body["reply"])
	return true
}

func (tc *TestClient) testExport() bool {
	printTestHeader("Testing Markdown Export")

	status, _, raw, err := tc.do(http.MethodGet, "/api/export?format=markdown", nil)
	if err != nil {
		printError(fmt.Sprintf("Request failed: %v", err))
		return false
	}
	if status != http.StatusOK {
		printError(fmt.Sprintf("Expected status 200, got %d", status))
		return false
	}
	if !strings.HasPrefix(string(raw), "# Ideal Customer Profile") {
		printError("Export does not start with the profile heading")
		return false
	}

	printSuccess("Export succeeded")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println(string(raw))
	fmt.Println(strings.Repeat("=", 80))
	return true
}

func printParts(status map[string]any) {
	msg, ok := status["message"].(map[string]any)
	if !ok {
		return
	}
	parts, _ := msg["parts"].([]any)
	for _, part := range parts {
		if p, ok := part.(map[string]any); ok {
			if text, ok := p["text"].(string); ok {
				fmt.Println(text)
			}
		}
	}
}

func printHeader(text string) {
	fmt.Printf("\n%s%s%s\n", colorBlue, strings.Repeat("=", len(text)+4), colorReset)
	fmt.Printf("%s= %s =%s\n", colorBlue, text, colorReset)
	fmt.Printf("%s%s%s\n\n", colorBlue, strings.Repeat("=", len(text)+4), colorReset)
}

func printTestHeader(text string) {
	fmt.Printf("%s[TEST] %s%s\n", colorCyan, text, colorReset)
	fmt.Println(strings.Repeat("-", 80))
}

func printSuccess(text string) {
	fmt.Printf("%s✓ %s%s\n", colorGreen, text, colorReset)
}

func printError(text string) {
	fmt.Printf("%s✗ %s%s\n", colorRed, text, colorReset)
}

func printJSON(data []byte) {
	var prettyJSON bytes.Buffer
	if err := json.Indent(&prettyJSON, data, "", "  "); err == nil {
		fmt.Printf("\n%sResponse:%s\n%s\n", colorYellow, colorReset, prettyJSON.String())
	}
}
