package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

// flakyTool fails with a retryable error until it has been called
// succeedOn times.
type flakyTool struct {
	BaseTool
	calls     int
	succeedOn int
	failWith  string
}

func (f *flakyTool) Metadata() ToolMetadata {
	return ToolMetadata{Name: "flaky", Description: "fails then succeeds"}
}

func (f *flakyTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	f.calls++
	if f.succeedOn == 0 || f.calls < f.succeedOn {
		msg := f.failWith
		if msg == "" {
			msg = "network unreachable"
		}
		return FailureResult(errors.New(msg)), nil
	}
	return SuccessResult("done"), nil
}

// confirmedFlakyTool is a flakyTool gated behind user confirmation.
type confirmedFlakyTool struct {
	flakyTool
}

func (c *confirmedFlakyTool) ConfirmationPrompt(args json.RawMessage) (string, error) {
	return "Run it?", nil
}

func TestExecutorRetriesRetryableFailures(t *testing.T) {
	tool := &flakyTool{succeedOn: 3}
	result, err := NewDefaultExecutor().Execute(context.Background(), tool, EmptyArgs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success() {
		t.Fatalf("expected success after retries, got %v", result.Error)
	}
	if tool.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", tool.calls)
	}
}

func TestExecutorDoesNotRetryNonRetryableFailures(t *testing.T) {
	tool := &flakyTool{failWith: "permission denied"}
	result, err := NewDefaultExecutor().Execute(context.Background(), tool, EmptyArgs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success() {
		t.Fatal("expected failure result")
	}
	if tool.calls != 1 {
		t.Errorf("non-retryable failure retried: %d attempts", tool.calls)
	}
}

func TestExecutorRunsConfirmedToolsExactlyOnce(t *testing.T) {
	tool := &confirmedFlakyTool{flakyTool{succeedOn: 2}}
	result, err := NewDefaultExecutor().Execute(context.Background(), tool, EmptyArgs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success() {
		t.Fatal("single attempt should have failed")
	}
	if tool.calls != 1 {
		t.Errorf("confirmed tool ran %d times on one confirmation", tool.calls)
	}
}
