package tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func shellCmdArgs(command string) json.RawMessage {
	b, _ := json.Marshal(map[string]string{"command": command})
	return b
}

func TestShellToolExecutes(t *testing.T) {
	tool := NewShellTool(5)
	result, err := tool.Execute(context.Background(), shellCmdArgs("echo hello"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success() {
		t.Fatalf("command failed: %v", result.Error)
	}
	if strings.TrimSpace(result.Output) != "hello" {
		t.Errorf("got %q", result.Output)
	}
}

func TestShellToolConfirmationPrompt(t *testing.T) {
	tool := NewShellTool(5)
	prompt, err := tool.ConfirmationPrompt(shellCmdArgs("rm -rf /tmp/scratch"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(prompt, "rm -rf /tmp/scratch") {
		t.Errorf("prompt should contain the command: %q", prompt)
	}
	if !strings.Contains(prompt, "?") {
		t.Errorf("prompt should be a question: %q", prompt)
	}
}

func TestShellToolEmptyCommand(t *testing.T) {
	tool := NewShellTool(5)
	result, err := tool.Execute(context.Background(), shellCmdArgs(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success() {
		t.Error("expected failure for empty command")
	}

	if _, err := tool.ConfirmationPrompt(shellCmdArgs("")); err == nil {
		t.Error("expected confirmation prompt error for empty command")
	}
}

func TestShellToolAllowlist(t *testing.T) {
	tool := NewShellTool(5).WithAllowedCommands([]string{"echo"})

	result, _ := tool.Execute(context.Background(), shellCmdArgs("echo ok"))
	if !result.Success() {
		t.Errorf("allowlisted command failed: %v", result.Error)
	}

	result, _ = tool.Execute(context.Background(), shellCmdArgs("ls /"))
	if result.Success() {
		t.Error("non-allowlisted command should fail")
	}
}

func TestShellToolReportsExitCode(t *testing.T) {
	tool := NewShellTool(5)
	result, err := tool.Execute(context.Background(), shellCmdArgs("exit 3"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success() {
		t.Fatal("expected failure")
	}
	if !strings.Contains(result.Error.Error(), "exit code 3") {
		t.Errorf("error should mention exit code: %v", result.Error)
	}
}
