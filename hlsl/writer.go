// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/visject/graph"
)

// CodeWriter accumulates generated HLSL statements for one template
// segment. Templates carry positional placeholders, so Write and WriteLine
// substitute {0}, {1}, ... with their arguments instead of fmt verbs:
//
//	w.WriteLine("{0} = {1} * {2};", dst, a, b)
//
// Value arguments expand to their expression text, strings pass through,
// and anything else goes through fmt.Sprint. Braces not forming a valid
// placeholder are emitted literally, so plain HLSL blocks need no escaping.
type CodeWriter struct {
	out    strings.Builder
	indent int

	// Local variable counter, reset per segment.
	locals int

	// Registered #include paths in first-seen order.
	includes []string
	seen     map[string]struct{}
}

// NewCodeWriter creates an empty writer.
func NewCodeWriter() *CodeWriter {
	return &CodeWriter{seen: make(map[string]struct{})}
}

// Write appends expanded text without indentation or a trailing newline.
func (w *CodeWriter) Write(format string, args ...any) {
	w.out.WriteString(expand(format, args))
}

// WriteLine appends one indented line of expanded text.
func (w *CodeWriter) WriteLine(format string, args ...any) {
	w.writeIndent()
	w.out.WriteString(expand(format, args))
	w.out.WriteByte('\n')
}

// WriteLocal emits a local declaration initialized from the expanded
// expression and returns the local as a value:
//
//	float2 local0 = input.TexCoord * 2.0;
func (w *CodeWriter) WriteLocal(t graph.ValueType, format string, args ...any) Value {
	name := w.nextLocal()
	w.writeIndent()
	fmt.Fprintf(&w.out, "%s %s = %s;\n", t, name, expand(format, args))
	return Value{Type: t, Text: name}
}

// DeclareLocal emits a zero-initialized local declaration and returns it,
// for results assigned inside a following block.
func (w *CodeWriter) DeclareLocal(t graph.ValueType) Value {
	name := w.nextLocal()
	w.writeIndent()
	fmt.Fprintf(&w.out, "%s %s = %s;\n", t, name, Zero(t).Text)
	return Value{Type: t, Text: name}
}

func (w *CodeWriter) nextLocal() string {
	name := fmt.Sprintf("local%d", w.locals)
	w.locals++
	return name
}

// AddInclude registers an #include path. Paths are deduplicated and kept
// in first-seen order; unlike the text, registered includes survive Clear
// so every segment of the final shader sees the full set.
func (w *CodeWriter) AddInclude(path string) {
	if _, ok := w.seen[path]; ok {
		return
	}
	w.seen[path] = struct{}{}
	w.includes = append(w.includes, path)
}

// Includes returns the registered include paths in registration order.
func (w *CodeWriter) Includes() []string {
	return w.includes
}

// String returns the accumulated text.
func (w *CodeWriter) String() string {
	return w.out.String()
}

// Clear resets the text, the indentation, and the local counter for the
// next segment. The include set is preserved.
func (w *CodeWriter) Clear() {
	w.out.Reset()
	w.indent = 0
	w.locals = 0
}

// writeIndent writes the current indentation.
func (w *CodeWriter) writeIndent() {
	for i := 0; i < w.indent; i++ {
		w.out.WriteString("    ")
	}
}

// pushIndent increases indentation.
func (w *CodeWriter) pushIndent() {
	w.indent++
}

// popIndent decreases indentation.
func (w *CodeWriter) popIndent() {
	if w.indent > 0 {
		w.indent--
	}
}

// expand substitutes {N} placeholders with the matching argument.
func expand(format string, args []any) string {
	if !strings.ContainsRune(format, '{') {
		return format
	}
	var b strings.Builder
	b.Grow(len(format) + 16*len(args))
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '{' {
			b.WriteByte(c)
			continue
		}
		n, j := 0, i+1
		for j < len(format) && isDigit(format[j]) {
			n = n*10 + int(format[j]-'0')
			j++
		}
		if j == i+1 || j >= len(format) || format[j] != '}' || n >= len(args) {
			b.WriteByte(c)
			continue
		}
		b.WriteString(argText(args[n]))
		i = j
	}
	return b.String()
}

func argText(arg any) string {
	switch a := arg.(type) {
	case Value:
		return a.Text
	case string:
		return a
	default:
		return fmt.Sprint(a)
	}
}
