package mustache

import (
	"testing"
)

func TestContextLookup(t *testing.T) {
	tests := []struct {
		name string
		ctx  *Context
		key  string
		want any
	}{
		{
			name: "simple key",
			ctx:  NewContext(map[string]any{"name": "Ann"}),
			key:  "name",
			want: "Ann",
		},
		{
			name: "missing key",
			ctx:  NewContext(map[string]any{"name": "Ann"}),
			key:  "age",
			want: nil,
		},
		{
			name: "falls back to parent",
			ctx:  NewContext(map[string]any{"b": "outer"}).Push(map[string]any{}),
			key:  "b",
			want: "outer",
		},
		{
			name: "child shadows parent",
			ctx:  NewContext(map[string]any{"b": "outer"}).Push(map[string]any{"b": "inner"}),
			key:  "b",
			want: "inner",
		},
		{
			name: "false is a value and stops the walk",
			ctx:  NewContext(map[string]any{"x": true}).Push(map[string]any{"x": false}),
			key:  "x",
			want: false,
		},
		{
			name: "dot is the current view",
			ctx:  NewContext(map[string]any{"x": 1}).Push("item"),
			key:  ".",
			want: "item",
		},
		{
			name: "dotted path",
			ctx: NewContext(map[string]any{
				"a": map[string]any{"b": map[string]any{"c": "deep"}},
			}),
			key:  "a.b.c",
			want: "deep",
		},
		{
			name: "dotted path with missing segment",
			ctx:  NewContext(map[string]any{"a": map[string]any{}}),
			key:  "a.b.c",
			want: nil,
		},
		{
			name: "dotted path resolved in parent",
			ctx: NewContext(map[string]any{
				"a": map[string]any{"b": "v"},
			}).Push(map[string]any{"x": 1}),
			key:  "a.b",
			want: "v",
		},
		{
			name: "sequence index",
			ctx:  NewContext(map[string]any{"items": []string{"a", "b"}}),
			key:  "items.1",
			want: "b",
		},
		{
			name: "nil view",
			ctx:  NewContext(nil),
			key:  "x",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.ctx.Lookup(tt.key)
			if got != tt.want {
				t.Errorf("Lookup(%q) = %#v, want %#v", tt.key, got, tt.want)
			}
		})
	}
}

func TestContextLookupIsCached(t *testing.T) {
	view := map[string]any{"x": 1}
	ctx := NewContext(view)

	if got := ctx.Lookup("x"); got != 1 {
		t.Fatalf("Lookup(x) = %v, want 1", got)
	}
	view["x"] = 2
	if got := ctx.Lookup("x"); got != 1 {
		t.Errorf("Lookup(x) after change = %v, want cached 1", got)
	}

	// The cache belongs to the frame the lookup started from.
	if got := NewContext(view).Lookup("x"); got != 2 {
		t.Errorf("fresh Lookup(x) = %v, want 2", got)
	}
}

func TestContextMissingIsCached(t *testing.T) {
	view := map[string]any{}
	ctx := NewContext(view)

	if got := ctx.Lookup("x"); got != nil {
		t.Fatalf("Lookup(x) = %v, want nil", got)
	}
	view["x"] = "late"
	if got := ctx.Lookup("x"); got != nil {
		t.Errorf("Lookup(x) = %v, want cached absence", got)
	}
}

func TestContextComputedValues(t *testing.T) {
	calls := 0
	view := map[string]any{
		"counter": func() any {
			calls++
			return calls
		},
		"greeting": func() string { return "hi" },
		"double": Computed(func(view any) any {
			return view.(map[string]any)["n"].(int) * 2
		}),
	}
	ctx := NewContext(view)

	if got := ctx.Lookup("counter"); got != 1 {
		t.Errorf("first Lookup(counter) = %v, want 1", got)
	}
	if got := ctx.Lookup("counter"); got != 2 {
		t.Errorf("second Lookup(counter) = %v, want 2", got)
	}
	if got := ctx.Lookup("greeting"); got != "hi" {
		t.Errorf("Lookup(greeting) = %v, want hi", got)
	}

	// The computed value receives the view of the frame the lookup began in.
	child := ctx.Push(map[string]any{"n": 21})
	if got := child.Lookup("double"); got != 42 {
		t.Errorf("Lookup(double) = %v, want 42", got)
	}
}

func TestContextPush(t *testing.T) {
	parent := NewContext(map[string]any{"x": "parent"})
	child := parent.Push(map[string]any{"x": "child"})

	if child.Parent() != parent {
		t.Error("Parent() does not return the pushed-from context")
	}
	if parent.Parent() != nil {
		t.Error("root Parent() should be nil")
	}
	if got := parent.Lookup("x"); got != "parent" {
		t.Errorf("parent Lookup(x) = %v, want parent", got)
	}
	if got := child.Lookup("x"); got != "child" {
		t.Errorf("child Lookup(x) = %v, want child", got)
	}
	if got := child.View().(map[string]any)["x"]; got != "child" {
		t.Errorf("View()[x] = %v, want child", got)
	}
}
