package storage

import (
	"context"
	"fmt"
	"testing"

	"github.com/voxahq/voxa/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenInMemory()
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestHistoryRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	history := []model.Message{
		model.SystemMessage("you are helpful"),
		model.UserMessage("what's the weather"),
		model.ToolDataMessage("Weather in Paris: light rain, 14.2°C"),
		model.AssistantMessage("It's raining in Paris, about fourteen degrees."),
	}

	if err := store.SaveHistory(ctx, "alice", history); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := store.LoadHistory(ctx, "alice")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded) != len(history) {
		t.Fatalf("got %d messages, want %d", len(loaded), len(history))
	}
	for i := range history {
		if loaded[i].Role != history[i].Role {
			t.Errorf("message %d: role %v, want %v", i, loaded[i].Role, history[i].Role)
		}
		if loaded[i].Content != history[i].Content {
			t.Errorf("message %d: content %q, want %q", i, loaded[i].Content, history[i].Content)
		}
	}
}

func TestSaveHistoryReplaces(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := []model.Message{model.UserMessage("one")}
	second := []model.Message{model.UserMessage("two"), model.AssistantMessage("three")}

	if err := store.SaveHistory(ctx, "bob", first); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveHistory(ctx, "bob", second); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.LoadHistory(ctx, "bob")
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 2 || loaded[0].Content != "two" {
		t.Errorf("save did not replace history: %+v", loaded)
	}
}

func TestLoadHistoryEmptyProfile(t *testing.T) {
	store := openTestStore(t)

	loaded, err := store.LoadHistory(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("expected empty history, got %d messages", len(loaded))
	}
}

func TestHistoriesAreIsolatedPerProfile(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	store.SaveHistory(ctx, "alice", []model.Message{model.UserMessage("alice says hi")})
	store.SaveHistory(ctx, "bob", []model.Message{model.UserMessage("bob says hi")})

	aliceHistory, err := store.LoadHistory(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(aliceHistory) != 1 || aliceHistory[0].Content != "alice says hi" {
		t.Errorf("alice's history leaked: %+v", aliceHistory)
	}
}

func TestProfilesListing(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.EnsureProfile(ctx, "alice"); err != nil {
		t.Fatal(err)
	}
	if err := store.EnsureProfile(ctx, "bob"); err != nil {
		t.Fatal(err)
	}
	// Idempotent
	if err := store.EnsureProfile(ctx, "alice"); err != nil {
		t.Fatal(err)
	}

	profiles, err := store.Profiles(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(profiles) != 2 {
		t.Errorf("got %d profiles, want 2: %v", len(profiles), profiles)
	}
}

func TestEnsureProfileRejectsEmptyName(t *testing.T) {
	store := openTestStore(t)
	if err := store.EnsureProfile(context.Background(), ""); err == nil {
		t.Error("expected error for empty profile name")
	}
}

func TestDeleteProfile(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	store.SaveHistory(ctx, "alice", []model.Message{model.UserMessage("hi")})
	store.AddFact(ctx, "alice", "likes tea")

	if err := store.DeleteProfile(ctx, "alice"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	profiles, _ := store.Profiles(ctx)
	if len(profiles) != 0 {
		t.Errorf("profile still listed: %v", profiles)
	}
	history, _ := store.LoadHistory(ctx, "alice")
	if len(history) != 0 {
		t.Errorf("history survived deletion: %+v", history)
	}
	facts, _ := store.Facts(ctx, "alice")
	if len(facts) != 0 {
		t.Errorf("facts survived deletion: %v", facts)
	}
}

func TestFactsCapDropsOldest(t *testing.T) {
	store := openTestStore(t).WithFactCap(5)
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		if err := store.AddFact(ctx, "alice", fmt.Sprintf("fact %d", i)); err != nil {
			t.Fatal(err)
		}
	}

	facts, err := store.Facts(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(facts) != 5 {
		t.Fatalf("got %d facts, want 5", len(facts))
	}
	if facts[0] != "fact 3" || facts[4] != "fact 7" {
		t.Errorf("wrong facts survived: %v", facts)
	}
}

func TestFactsDeduplicate(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	store.AddFact(ctx, "alice", "likes tea")
	store.AddFact(ctx, "alice", "likes tea")

	facts, err := store.Facts(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(facts) != 1 {
		t.Errorf("duplicate fact stored: %v", facts)
	}
}

func TestAddFactRejectsEmpty(t *testing.T) {
	store := openTestStore(t)
	if err := store.AddFact(context.Background(), "alice", ""); err == nil {
		t.Error("expected error for empty fact")
	}
}
