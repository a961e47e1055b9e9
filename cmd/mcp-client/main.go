package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	flag.Parse()
	args := flag.Args()

	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: mcp-client <server-command> [<args>]")
		fmt.Fprintln(os.Stderr, "Example: mcp-client ./sysmonitor-mcp --duration 1m")
		os.Exit(2)
	}

	ctx := context.Background()

	// Start the server as a subprocess
	cmd := exec.Command(args[0], args[1:]...)
	transport := &mcp.CommandTransport{Command: cmd}

	// Create MCP client
	client := mcp.NewClient(&mcp.Implementation{
		Name:    "sysmonitor-client",
		Version: "1.0.0",
	}, nil)

	// Connect to the server
	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer session.Close()

	fmt.Println("Connected to System Monitor MCP Server!")
	fmt.Println("Available commands:")
	fmt.Println("  /tools    - List available tools")
	fmt.Println("  /start    - Start a monitoring session")
	fmt.Println("  /stop     - Stop the running session (the report is still written)")
	fmt.Println("  /status   - Show session state, elapsed and remaining time")
	fmt.Println("  /sample   - Show the most recent sample")
	fmt.Println("  /sysinfo  - Show host identity")
	fmt.Println("  /exit     - Exit the client")
	fmt.Println()

	commands := map[string]string{
		"/start":   "start_session",
		"/stop":    "stop_session",
		"/status":  "get_session_status",
		"/sample":  "get_latest_sample",
		"/sysinfo": "get_system_info",
	}

	// Interactive REPL
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch input {
		case "/exit":
			fmt.Println("Goodbye!")
			return

		case "/tools":
			listTools(ctx, session)

		default:
			tool, ok := commands[input]
			if !ok {
				fmt.Printf("Unknown command %q\n\n", input)
				continue
			}
			callTool(ctx, session, tool, map[string]any{})
		}
	}

	if err := scanner.Err(); err != nil {
		log.Printf("Scanner error: %v", err)
	}
}

func listTools(ctx context.Context, session *mcp.ClientSession) {
	fmt.Println("Available Tools:")
	for tool, err := range session.Tools(ctx, nil) {
		if err != nil {
			log.Printf("Error listing tools: %v", err)
			return
		}
		fmt.Printf("  - %s: %s\n", tool.Name, tool.Description)
	}
	fmt.Println()
}

func callTool(ctx context.Context, session *mcp.ClientSession, toolName string, args map[string]any) {
	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      toolName,
		Arguments: args,
	})
	if err != nil {
		log.Printf("Error calling tool: %v", err)
		return
	}

	printResult(result)
}

func printResult(result *mcp.CallToolResult) {
	if result.IsError {
		fmt.Printf("❌ Error: ")
	} else {
		fmt.Printf("✅ Result: ")
	}

	// Try to pretty-print the content
	for _, content := range result.Content {
		switch v := content.(type) {
		case *mcp.TextContent:
			fmt.Println(v.Text)
		default:
			// Try JSON marshaling for other types
			jsonData, err := json.MarshalIndent(content, "", "  ")
			if err != nil {
				fmt.Printf("%+v\n", content)
			} else {
				fmt.Println(string(jsonData))
			}
		}
	}
	fmt.Println()
}
