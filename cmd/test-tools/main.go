package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// A short session keeps the smoke test fast; env/.env may override it.
var sessionEnv = map[string]string{
	"SYSMONITOR_SESSION_DURATION": "5s",
	"SYSMONITOR_SESSION_INTERVAL": "1s",
	"SYSMONITOR_REPORT_DIR":       "reports",
}

func main() {
	// Load environment variables
	loadEnvFile("env/.env")

	fmt.Println("🧪 Testing MCP Server and Tool Calling")
	fmt.Println("=======================================")
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// Build path to the MCP server binary
	serverPath := findServerBinary()
	if serverPath == "" {
		log.Fatal("❌ MCP server binary not found. Run: go build -o sysmonitor-mcp ./cmd/sysmonitor-mcp")
	}
	fmt.Println("✅ Test 1: MCP server binary found")

	// Start the MCP server
	cmd := exec.Command(serverPath)
	cmd.Env = os.Environ()
	for key, value := range sessionEnv {
		if os.Getenv(key) == "" {
			cmd.Env = append(cmd.Env, key+"="+value)
		}
	}
	cmd.Stderr = os.Stderr
	transport := &mcp.CommandTransport{Command: cmd}

	// Create client
	client := mcp.NewClient(&mcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	// Connect to server
	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		log.Fatalf("❌ Failed to connect to MCP server: %v", err)
	}
	defer session.Close()
	fmt.Println("✅ Test 2: Connected to MCP server")

	// List available tools
	fmt.Println("\n✓ Test 3: Listing available tools")
	listResult, err := session.ListTools(ctx, nil)
	if err != nil {
		log.Fatalf("❌ Failed to list tools: %v", err)
	}
	fmt.Printf("  Found %d tools:\n", len(listResult.Tools))
	for _, tool := range listResult.Tools {
		fmt.Printf("  - %s: %s\n", tool.Name, tool.Description)
	}

	fmt.Println("\n✓ Test 4: Testing get_system_info tool")
	if text, err := callText(ctx, session, "get_system_info"); err != nil {
		fmt.Printf("  ❌ System info tool failed: %v\n", err)
	} else {
		fmt.Printf("  ✅ %s\n", preview(text))
	}

	fmt.Println("\n✓ Test 5: Starting a session")
	text, err := callText(ctx, session, "start_session")
	if err != nil {
		log.Fatalf("❌ start_session failed: %v", err)
	}
	fmt.Printf("  ✅ %s\n", preview(text))

	fmt.Println("\n✓ Test 6: Waiting for the first sample")
	if text, err := waitForSample(ctx, session); err != nil {
		fmt.Printf("  ❌ No sample: %v\n", err)
	} else {
		fmt.Printf("  ✅ %s\n", preview(text))
	}

	fmt.Println("\n✓ Test 7: Polling status until the session completes")
	status, err := waitForCompletion(ctx, session)
	if err != nil {
		log.Fatalf("❌ Session did not complete: %v", err)
	}
	if status.Completion != nil && status.Completion.Error != "" {
		fmt.Printf("  ❌ Report failed: %s\n", status.Completion.Error)
	} else if status.Completion != nil {
		fmt.Printf("  ✅ %d samples, report: %s\n", status.Completion.Samples, status.Completion.ReportPath)
	}

	fmt.Println("\n✓ Test 8: Stopping an idle session is a no-op")
	if _, err := callText(ctx, session, "stop_session"); err != nil {
		fmt.Printf("  ❌ stop_session failed: %v\n", err)
	} else {
		fmt.Println("  ✅ stop_session accepted")
	}

	fmt.Println("\n=======================================")
	fmt.Println("✅ All MCP tool calling tests complete!")
	fmt.Println("\n💡 To test interactively, run: go run ./cmd/mcp-client ./sysmonitor-mcp")
}

type sessionStatus struct {
	Status struct {
		State string `json:"state"`
	} `json:"status"`
	Elapsed    string `json:"elapsed"`
	Remaining  string `json:"remaining"`
	Completion *struct {
		ReportPath string `json:"pdf_path"`
		Samples    int    `json:"samples"`
		Error      string `json:"error"`
	} `json:"completion"`
}

func waitForCompletion(ctx context.Context, session *mcp.ClientSession) (sessionStatus, error) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		text, err := callText(ctx, session, "get_session_status")
		if err != nil {
			return sessionStatus{}, err
		}
		var st sessionStatus
		if err := json.Unmarshal([]byte(text), &st); err != nil {
			return sessionStatus{}, fmt.Errorf("decode status: %w", err)
		}
		fmt.Printf("  ... %s (elapsed %s, remaining %s)\n", st.Status.State, st.Elapsed, st.Remaining)
		if st.Status.State == "completed" {
			return st, nil
		}
		select {
		case <-ctx.Done():
			return st, ctx.Err()
		case <-ticker.C:
		}
	}
}

func waitForSample(ctx context.Context, session *mcp.ClientSession) (string, error) {
	for range 10 {
		text, err := callText(ctx, session, "get_latest_sample")
		if err == nil {
			return text, nil
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
	return "", fmt.Errorf("timed out")
}

// callText calls a tool without arguments and returns its text content. Tool
// errors are returned as Go errors.
func callText(ctx context.Context, session *mcp.ClientSession, name string) (string, error) {
	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      name,
		Arguments: map[string]any{},
	})
	if err != nil {
		return "", err
	}
	var parts []string
	for _, content := range result.Content {
		if v, ok := content.(*mcp.TextContent); ok {
			parts = append(parts, v.Text)
		}
	}
	text := strings.Join(parts, "\n")
	if result.IsError {
		return "", fmt.Errorf("%s", text)
	}
	return text, nil
}

func preview(text string) string {
	if len(text) > 200 {
		return text[:200] + "..."
	}
	return text
}

func findServerBinary() string {
	candidates := []string{
		"./sysmonitor-mcp",
		"../../sysmonitor-mcp",
		"../../../sysmonitor-mcp",
	}
	for _, p := range candidates {
		if abs, err := filepath.Abs(p); err == nil {
			if _, err := os.Stat(abs); err == nil {
				return abs
			}
		}
	}
	return ""
}

func loadEnvFile(path string) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return
	}

	file, err := os.Open(absPath)
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			value = strings.Trim(value, `"'`)
			os.Setenv(key, value)
		}
	}
}
