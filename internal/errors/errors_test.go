package errors

import (
	"fmt"
	"testing"
)

func TestBuilderDefaults(t *testing.T) {
	err := Newf("engine refused to start").Build()

	if err.Component != ComponentUnknown {
		t.Errorf("Component = %q, want %q", err.Component, ComponentUnknown)
	}
	if err.Category != CategoryGeneric {
		t.Errorf("Category = %q, want %q", err.Category, CategoryGeneric)
	}
	if err.Timestamp.IsZero() {
		t.Error("Timestamp should be set on Build")
	}
}

func TestCategoryMatching(t *testing.T) {
	base := fmt.Errorf("session exited: %w", NewStd("broken pipe"))
	err := New(base).
		Component("engine").
		Category(CategoryEngineStart).
		Context("binary", "matlab").
		Build()

	if !IsCategory(err, CategoryEngineStart) {
		t.Error("IsCategory should match CategoryEngineStart")
	}
	if IsCategory(err, CategoryLabelLoad) {
		t.Error("IsCategory should not match CategoryLabelLoad")
	}

	// Wrapping must preserve category detection.
	wrapped := fmt.Errorf("bootstrap failed: %w", err)
	if !IsCategory(wrapped, CategoryEngineStart) {
		t.Error("IsCategory should match through wrapping")
	}
}

func TestContextCopy(t *testing.T) {
	err := Newf("missing label index").
		Category(CategoryLabelLoad).
		Context("index", 7).
		Build()

	ctx := err.GetContext()
	ctx["index"] = 99
	if err.GetContext()["index"] != 7 {
		t.Error("GetContext must return a copy, not the underlying map")
	}
}
