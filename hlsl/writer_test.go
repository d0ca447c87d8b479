// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"testing"

	"github.com/gogpu/visject/graph"
)

// =============================================================================
// Test: placeholder expansion
// =============================================================================

func TestExpand(t *testing.T) {
	a := NewValue(graph.TypeFloat, "a")
	b := NewValue(graph.TypeFloat2, "b")

	tests := []struct {
		name   string
		format string
		args   []any
		want   string
	}{
		{"no_placeholders", "return material;", nil, "return material;"},
		{"values", "{0} + {1}", []any{a, b}, "a + b"},
		{"repeated", "{0} * {0}", []any{a}, "a * a"},
		{"string_arg", "#include \"{0}\"", []any{"./Flax/Common.hlsl"}, "#include \"./Flax/Common.hlsl\""},
		{"int_arg", "register(t{0})", []any{int32(2)}, "register(t2)"},
		{"bare_brace", "{ {0} }", []any{a}, "{ a }"},
		{"hlsl_block", "if (x) { return; }", nil, "if (x) { return; }"},
		{"missing_arg", "{0} {5}", []any{a}, "a {5}"},
		{"unterminated", "{0", []any{a}, "{0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := expand(tt.format, tt.args); got != tt.want {
				t.Errorf("expand(%q) = %q, want %q", tt.format, got, tt.want)
			}
		})
	}
}

// =============================================================================
// Test: statement emission
// =============================================================================

func TestWriteLocal(t *testing.T) {
	w := NewCodeWriter()
	v0 := w.WriteLocal(graph.TypeFloat2, "input.TexCoord * {0}", MakeFloat(2))
	v1 := w.WriteLocal(graph.TypeFloat, "{0}.x", v0)

	if v0.Text != "local0" || v1.Text != "local1" {
		t.Errorf("locals named %q, %q, want local0, local1", v0.Text, v1.Text)
	}
	if v0.Type != graph.TypeFloat2 {
		t.Errorf("local0 type = %v, want Float2", v0.Type)
	}
	want := "float2 local0 = input.TexCoord * 2.000000;\nfloat local1 = local0.x;\n"
	if got := w.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestDeclareLocalZeroInitializes(t *testing.T) {
	w := NewCodeWriter()
	v := w.DeclareLocal(graph.TypeFloat3)
	if v.Text != "local0" {
		t.Errorf("local named %q, want local0", v.Text)
	}
	want := "float3 local0 = float3(0, 0, 0);\n"
	if got := w.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestIndentation(t *testing.T) {
	w := NewCodeWriter()
	w.WriteLine("if (kill)")
	w.WriteLine("{")
	w.pushIndent()
	w.WriteLine("return;")
	w.popIndent()
	w.WriteLine("}")

	want := "if (kill)\n{\n    return;\n}\n"
	if got := w.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}

	// popIndent below zero stays at column zero.
	w.popIndent()
	w.popIndent()
	w.Clear()
	w.WriteLine("x")
	if got := w.String(); got != "x\n" {
		t.Errorf("output after underflow = %q, want %q", got, "x\n")
	}
}

// =============================================================================
// Test: segment lifecycle
// =============================================================================

func TestClearResetsTextAndLocals(t *testing.T) {
	w := NewCodeWriter()
	w.pushIndent()
	w.WriteLocal(graph.TypeFloat, "1.0")
	w.Clear()

	if got := w.String(); got != "" {
		t.Errorf("text after Clear = %q, want empty", got)
	}
	v := w.WriteLocal(graph.TypeFloat, "2.0")
	if v.Text != "local0" {
		t.Errorf("local counter not reset: got %q, want local0", v.Text)
	}
	if got := w.String(); got != "float local0 = 2.0;\n" {
		t.Errorf("indent not reset: %q", got)
	}
}

func TestIncludesSurviveClear(t *testing.T) {
	w := NewCodeWriter()
	w.AddInclude("./Flax/Noise.hlsl")
	w.AddInclude("./Flax/MaterialCommon.hlsl")
	w.AddInclude("./Flax/Noise.hlsl")
	w.Clear()

	got := w.Includes()
	want := []string{"./Flax/Noise.hlsl", "./Flax/MaterialCommon.hlsl"}
	if len(got) != len(want) {
		t.Fatalf("Includes() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Includes()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
