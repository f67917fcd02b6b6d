package assistant

import (
	"fmt"
	"strings"
	"testing"

	"github.com/voxahq/voxa/model"
)

func TestHistoryTrimsOldestFirst(t *testing.T) {
	h := NewHistory().WithMax(4)
	for i := 0; i < 10; i++ {
		h.Append(model.UserMessage(fmt.Sprintf("message %d", i)))
	}
	if h.Len() != 4 {
		t.Fatalf("expected 4 messages, got %d", h.Len())
	}
	snapshot := h.Snapshot()
	if snapshot[0].Content != "message 6" || snapshot[3].Content != "message 9" {
		t.Errorf("unexpected retained range: %+v", snapshot)
	}
}

func TestHistorySystemPromptSurvivesTrim(t *testing.T) {
	h := NewHistory().WithMax(2)
	h.SetSystem("persona")
	for i := 0; i < 5; i++ {
		h.Append(model.UserMessage("x"), model.AssistantMessage("y"))
	}
	rendered := h.ForResponder()
	if len(rendered) != 3 {
		t.Fatalf("expected system + 2 messages, got %d", len(rendered))
	}
	if rendered[0].Content != "persona" {
		t.Errorf("system prompt missing, got %q", rendered[0].Content)
	}
}

func TestHistoryRendersToolDataAsMarkedUser(t *testing.T) {
	h := NewHistory()
	h.Append(model.ToolDataMessage("sunny, 20 degrees"))
	rendered := h.ForResponder()
	if len(rendered) != 1 {
		t.Fatalf("expected 1 message, got %d", len(rendered))
	}
	if !strings.HasPrefix(rendered[0].Content, "[DATA] ") {
		t.Errorf("tool data not marked: %q", rendered[0].Content)
	}
}

func TestHistoryExtrasAreNotCommitted(t *testing.T) {
	h := NewHistory()
	h.Append(model.UserMessage("kept"))
	rendered := h.ForResponder(model.UserMessage("pending"), model.ToolDataMessage("data"))
	if len(rendered) != 3 {
		t.Fatalf("expected 3 rendered messages, got %d", len(rendered))
	}
	if h.Len() != 1 {
		t.Errorf("extras leaked into the record: %d messages", h.Len())
	}
}

func TestHistoryReplaceFoldsSystemRole(t *testing.T) {
	h := NewHistory()
	h.Replace([]model.Message{
		model.SystemMessage("stored persona"),
		model.UserMessage("hi"),
	})
	if h.Len() != 1 {
		t.Fatalf("expected 1 message, got %d", h.Len())
	}
	rendered := h.ForResponder()
	if rendered[0].Content != "stored persona" {
		t.Errorf("system message was not folded into the prompt: %+v", rendered)
	}
}

func TestHistoryLastReplyUsedTool(t *testing.T) {
	h := NewHistory()
	if h.LastReplyUsedTool() {
		t.Error("empty history reports tool data")
	}

	h.Append(model.UserMessage("hi"), model.AssistantMessage("hello"))
	if h.LastReplyUsedTool() {
		t.Error("plain exchange reports tool data")
	}

	h.Append(
		model.UserMessage("weather?"),
		model.ToolDataMessage("sunny"),
		model.AssistantMessage("It is sunny."),
	)
	if !h.LastReplyUsedTool() {
		t.Error("tool exchange not reported")
	}

	h.Append(model.UserMessage("thanks"), model.AssistantMessage("any time"))
	if h.LastReplyUsedTool() {
		t.Error("stale tool data reported after a plain exchange")
	}
}

func TestEventLogDropsOldest(t *testing.T) {
	l := NewEventLog()
	for i := 0; i < EventLogCap+10; i++ {
		l.Add("info", fmt.Sprintf("event %d", i))
	}
	entries := l.Entries()
	if len(entries) != EventLogCap {
		t.Fatalf("expected %d entries, got %d", EventLogCap, len(entries))
	}
	if entries[0].Summary != "event 10" {
		t.Errorf("oldest entries not dropped, first is %q", entries[0].Summary)
	}
	if entries[len(entries)-1].Summary != fmt.Sprintf("event %d", EventLogCap+9) {
		t.Errorf("unexpected newest entry: %q", entries[len(entries)-1].Summary)
	}
}

func TestInterruptIsIdempotent(t *testing.T) {
	i := NewInterrupt()
	if i.Triggered() {
		t.Fatal("fresh interrupt reports triggered")
	}
	if err := i.Check(); err != nil {
		t.Fatalf("fresh interrupt check failed: %v", err)
	}
	i.Trigger()
	i.Trigger()
	if !i.Triggered() {
		t.Fatal("triggered interrupt not reported")
	}
	if err := i.Check(); err != ErrInterrupted {
		t.Fatalf("expected ErrInterrupted, got %v", err)
	}
	select {
	case <-i.Done():
	default:
		t.Error("done channel not closed")
	}
}

func TestIsAffirmative(t *testing.T) {
	yes := []string{"yes", "Yes.", "yeah", "sure", "OK", "okay!", "go ahead", "do it", "yes, please"}
	for _, s := range yes {
		if !isAffirmative(s) {
			t.Errorf("expected %q to be affirmative", s)
		}
	}
	no := []string{"no", "nope", "", "don't", "never", "yesterday"}
	for _, s := range no {
		if isAffirmative(s) {
			t.Errorf("expected %q to be negative", s)
		}
	}
}
