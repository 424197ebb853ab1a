package log

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
)

var (
	mu                  sync.Mutex
	debugMode           = false
	output    io.Writer = os.Stderr
)

// SetDebugMode enables or disables debug mode
func SetDebugMode(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	debugMode = enabled
}

// IsDebugMode returns whether debug mode is enabled
func IsDebugMode() bool {
	mu.Lock()
	defer mu.Unlock()
	return debugMode
}

// SetOutput sets the output writer for log messages.
// The panel swaps this out while the alt-screen is active.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Output returns the current output writer
func Output() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return output
}

func printf(c *color.Color, format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if c == nil {
		fmt.Fprintf(output, format, args...)
		return
	}
	c.Fprintf(output, format, args...)
}

// Debug prints debug messages (only in debug mode)
func Debug(format string, args ...interface{}) {
	if IsDebugMode() {
		printf(color.New(color.FgHiBlack), "[DEBUG] "+format+"\n", args...)
	}
}

// DebugConfig prints configuration details in debug mode
func DebugConfig(label string, config interface{}) {
	if !IsDebugMode() {
		return
	}
	gray := color.New(color.FgHiBlack)
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		printf(gray, "[DEBUG] %s: (failed to serialize: %v)\n", label, err)
		return
	}
	printf(gray, "[DEBUG] %s:\n%s\n", label, string(data))
}

// DebugRequest logs backend request details in debug mode
func DebugRequest(method, url string, body interface{}) {
	if !IsDebugMode() {
		return
	}
	printf(color.New(color.FgCyan), "[DEBUG] Backend Request: %s %s\n", method, url)
	if body != nil {
		data, _ := json.MarshalIndent(body, "", "  ")
		printf(nil, "[DEBUG] Request Body:\n%s\n", truncate(string(data), 2000))
	}
}

// DebugResponse logs backend response details in debug mode
func DebugResponse(statusCode int, body interface{}) {
	if !IsDebugMode() {
		return
	}
	printf(color.New(color.FgGreen), "[DEBUG] Backend Response: %d\n", statusCode)
	if body != nil {
		data, _ := json.MarshalIndent(body, "", "  ")
		printf(nil, "[DEBUG] Response Body:\n%s\n", truncate(string(data), 2000))
	}
}

// DebugPrompt logs the prompt sent to the model, truncated
func DebugPrompt(prompt string) {
	if IsDebugMode() {
		printf(color.New(color.FgYellow), "[DEBUG] Prompt (%d bytes):\n%s\n", len(prompt), truncate(prompt, 500))
	}
}

// DebugDuration logs execution duration in debug mode
func DebugDuration(operation string, duration time.Duration) {
	if IsDebugMode() {
		printf(color.New(color.FgBlue), "[DEBUG] %s took %v\n", operation, duration)
	}
}

// Info prints informational messages
func Info(format string, args ...interface{}) {
	printf(nil, format+"\n", args...)
}

// Error prints error messages
func Error(format string, args ...interface{}) {
	printf(color.New(color.FgRed), "Error: "+format+"\n", args...)
}

// Warn prints warning messages
func Warn(format string, args ...interface{}) {
	printf(color.New(color.FgYellow), "Warning: "+format+"\n", args...)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
