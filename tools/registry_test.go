package tools

import (
	"strings"
	"testing"
)

func TestRegistryRegisterAndGet(t *testing.T) {
	registry := NewRegistry()

	tool := NewCalculateTool()
	if err := registry.Register(tool); err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	got, ok := registry.Get("calculate")
	if !ok {
		t.Fatal("registered tool not found")
	}
	if got.Metadata().Name != "calculate" {
		t.Errorf("wrong tool returned: %s", got.Metadata().Name)
	}

	if !registry.Has("calculate") {
		t.Error("Has should report registered tool")
	}
	if registry.Has("missing") {
		t.Error("Has should not report unregistered tool")
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register(NewCalculateTool()); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if err := registry.Register(NewCalculateTool()); err == nil {
		t.Error("expected error for duplicate registration")
	}
}

func TestRegistryNamesSorted(t *testing.T) {
	registry := NewRegistry()
	registry.Register(NewTimeTool())
	registry.Register(NewCalculateTool())
	registry.Register(NewClipboardTool())

	names := registry.Names()
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("names not sorted: %v", names)
		}
	}
}

func TestRegistryDescriptionListsTools(t *testing.T) {
	registry := NewRegistry()
	registry.Register(NewCalculateTool())
	registry.Register(NewWeatherTool(5))

	desc := registry.Description()
	for _, want := range []string{"calculate", "get_weather", "expression", "city", "[required]"} {
		if !strings.Contains(desc, want) {
			t.Errorf("description missing %q:\n%s", want, desc)
		}
	}
}

func TestWithDefaults(t *testing.T) {
	registry, err := WithDefaults()
	if err != nil {
		t.Fatalf("WithDefaults failed: %v", err)
	}

	expected := []string{
		"calculate", "execute_shell", "get_current_time", "get_location",
		"get_weather", "read_clipboard", "read_file", "web_search",
	}
	names := registry.Names()
	if len(names) != len(expected) {
		t.Fatalf("expected %d tools, got %v", len(expected), names)
	}
	for i, name := range expected {
		if names[i] != name {
			t.Errorf("tool %d: got %s, want %s", i, names[i], name)
		}
	}
}
