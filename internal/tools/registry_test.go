package tools

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func echoTool(name string) *Tool {
	return &Tool{
		Name:        name,
		Description: "echoes its marker",
		Handler: func(ctx context.Context, args map[string]any) *Result {
			return Text(name)
		},
	}
}

func TestRegisterAndGet(t *testing.T) {
	reg := NewRegistry(nil)

	if err := reg.Register(echoTool("listVMs")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got := reg.Get("listVMs")
	if got == nil {
		t.Fatal("Get returned nil for registered tool")
	}
	if got.Name != "listVMs" {
		t.Errorf("got name %q, want %q", got.Name, "listVMs")
	}
	if reg.Get("nope") != nil {
		t.Error("Get should return nil for unregistered name")
	}
}

func TestRegisterValidation(t *testing.T) {
	reg := NewRegistry(nil)

	if err := reg.Register(&Tool{Name: "", Handler: func(ctx context.Context, args map[string]any) *Result { return Text("x") }}); !errors.Is(err, ErrToolNameEmpty) {
		t.Errorf("empty name: got %v, want ErrToolNameEmpty", err)
	}
	if err := reg.Register(&Tool{Name: "broken"}); !errors.Is(err, ErrToolHandlerNil) {
		t.Errorf("nil handler: got %v, want ErrToolHandlerNil", err)
	}
}

func TestRegisterLastWins(t *testing.T) {
	reg := NewRegistry(nil)

	first := echoTool("startVM")
	second := &Tool{
		Name: "startVM",
		Handler: func(ctx context.Context, args map[string]any) *Result {
			return Text("second")
		},
	}

	reg.MustRegister(first)
	if err := reg.Register(second); err != nil {
		t.Fatalf("duplicate Register should overwrite, got error: %v", err)
	}

	res, err := reg.Dispatch(context.Background(), "startVM", nil)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if res.Content[0].Text != "second" {
		t.Errorf("got %q, want the later registration to win", res.Content[0].Text)
	}
	if reg.Count() != 1 {
		t.Errorf("overwrite should not grow the registry, count=%d", reg.Count())
	}
}

func TestNamesRegistrationOrder(t *testing.T) {
	reg := NewRegistry(nil)
	for _, name := range []string{"listVMs", "createVM", "startVM", "stopVM"} {
		reg.MustRegister(echoTool(name))
	}
	// Re-registering must not duplicate or reorder the name.
	reg.MustRegister(echoTool("createVM"))

	want := []string{"listVMs", "createVM", "startVM", "stopVM"}
	got := reg.Names()
	if len(got) != len(want) {
		t.Fatalf("got %d names, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	reg := NewRegistry(nil)

	res, err := reg.Dispatch(context.Background(), "nonExistentTool", map[string]any{})
	if err == nil {
		t.Fatal("expected error for unknown tool")
	}
	if !errors.Is(err, ErrUnknownTool) {
		t.Errorf("error should wrap ErrUnknownTool, got %v", err)
	}
	if !strings.Contains(strings.ToLower(err.Error()), "unknown tool") {
		t.Errorf("error message should name the failure mode, got %q", err.Error())
	}
	if res != nil {
		t.Error("unknown tool must not produce a content payload")
	}
}

func TestDispatchHandlerFailureIsResultNotError(t *testing.T) {
	reg := NewRegistry(nil)
	reg.MustRegister(&Tool{
		Name: "listVMs",
		Handler: func(ctx context.Context, args map[string]any) *Result {
			return Errorf("prlctl list failed: exit status 1")
		},
	})

	res, err := reg.Dispatch(context.Background(), "listVMs", map[string]any{})
	if err != nil {
		t.Fatalf("handler failures must not surface as dispatch errors: %v", err)
	}
	if !res.IsError {
		t.Error("result should be error-shaped")
	}
	if !strings.HasPrefix(res.Content[0].Text, "Error: ") {
		t.Errorf("error text should begin with the marker, got %q", res.Content[0].Text)
	}
}

func TestDispatchNilHandlerResult(t *testing.T) {
	reg := NewRegistry(nil)
	reg.MustRegister(&Tool{
		Name: "buggy",
		Handler: func(ctx context.Context, args map[string]any) *Result {
			return nil
		},
	})

	res, err := reg.Dispatch(context.Background(), "buggy", nil)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if res == nil || !res.IsError {
		t.Error("nil handler result should degrade to an error-shaped result")
	}
}

func TestDispatchValidatesBeforeHandler(t *testing.T) {
	called := false
	reg := NewRegistry(nil)
	reg.MustRegister(&Tool{
		Name: "startVM",
		Schema: Schema{
			Required:   []string{"vmId"},
			Properties: map[string]Property{"vmId": {Type: "string", MaxLength: 100}},
		},
		Handler: func(ctx context.Context, args map[string]any) *Result {
			called = true
			return Text("ok")
		},
	})

	res, err := reg.Dispatch(context.Background(), "startVM", map[string]any{})
	if err != nil {
		t.Fatalf("validation failures must not surface as dispatch errors: %v", err)
	}
	if !res.IsError {
		t.Error("missing required argument should produce an error-shaped result")
	}
	if !strings.Contains(res.Content[0].Text, "vmId") {
		t.Errorf("violation should name the field, got %q", res.Content[0].Text)
	}
	if called {
		t.Error("handler must not run when validation fails")
	}
}
