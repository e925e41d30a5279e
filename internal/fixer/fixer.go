// Package fixer rewrites Python source to add missing type annotations,
// preferring inferred types over Any when the environment knows the name.
package fixer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/omnitype/omnitype/internal/config"
	"github.com/omnitype/omnitype/internal/typesystem"
	"github.com/omnitype/omnitype/internal/utils"
)

// Fixer applies annotation fixes to source files.
type Fixer struct {
	env     *typesystem.TypeEnv
	inPlace bool
	exclude func(string) bool
}

// Option configures a Fixer.
type Option func(*Fixer)

// InPlace writes fixed files back to disk instead of leaving them untouched.
func InPlace() Option {
	return func(f *Fixer) { f.inPlace = true }
}

// Exclude filters basenames during directory walks.
func Exclude(fn func(string) bool) Option {
	return func(f *Fixer) { f.exclude = fn }
}

// New builds a fixer resolving annotations against env. A nil env means
// every fix falls back to Any.
func New(env *typesystem.TypeEnv, opts ...Option) *Fixer {
	f := &Fixer{env: env}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FixPath fixes one file, or every Python file under a directory.
func (f *Fixer) FixPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("fix %s: %w", path, err)
	}
	if !info.IsDir() {
		_, err := f.FixFile(path)
		return err
	}
	files, err := utils.FindPythonFiles(path, f.exclude)
	if err != nil {
		return fmt.Errorf("fix %s: %w", path, err)
	}
	for _, file := range files {
		if _, err := f.FixFile(file); err != nil {
			return err
		}
	}
	return nil
}

// FixFile fixes a single source file and reports whether it changed. The
// file is only rewritten when the fixer is in-place.
func (f *Fixer) FixFile(path string) (bool, error) {
	if filepath.Ext(path) != config.PythonFileExt {
		return false, nil
	}
	original, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("fix %s: %w", path, err)
	}
	fixed := f.FixSource(string(original))
	if fixed == string(original) {
		return false, nil
	}
	if f.inPlace {
		if err := os.WriteFile(path, []byte(fixed), 0o644); err != nil {
			return false, fmt.Errorf("fix %s: %w", path, err)
		}
	}
	return true, nil
}

// FixSource annotates unannotated parameters and missing return types.
// Only single-line def headers are rewritten; multi-line signatures pass
// through unchanged.
func (f *Fixer) FixSource(source string) string {
	used := map[string]bool{}
	var out strings.Builder

	lines := strings.Split(source, "\n")
	trailingNewline := strings.HasSuffix(source, "\n")
	if trailingNewline {
		lines = lines[:len(lines)-1]
	}

	for _, line := range lines {
		out.WriteString(f.fixLine(line, used))
		out.WriteByte('\n')
	}

	fixed := out.String()
	if !trailingNewline {
		fixed = strings.TrimSuffix(fixed, "\n")
	}
	if len(used) > 0 && !strings.Contains(fixed, "from typing import") {
		fixed = insertTypingImport(fixed, used)
	}
	return fixed
}

// fixLine rewrites one def header, or returns the line unchanged.
func (f *Fixer) fixLine(line string, used map[string]bool) string {
	trimmed := strings.TrimLeft(line, " \t")
	rest, isDef := strings.CutPrefix(trimmed, "def ")
	if !isDef {
		rest, isDef = strings.CutPrefix(trimmed, "async def ")
	}
	if !isDef {
		return line
	}
	open := strings.IndexByte(trimmed, '(')
	if open < 0 {
		return line
	}
	closeIdx := matchParen(trimmed, open)
	if closeIdx < 0 {
		return line
	}

	fnName := strings.TrimSpace(rest[:strings.IndexByte(rest, '(')])
	indent := line[:len(line)-len(trimmed)]
	params := f.annotateParams(trimmed[open+1:closeIdx], used)
	tail := trimmed[closeIdx+1:]

	if !strings.Contains(tail, "->") {
		if colon := strings.IndexByte(tail, ':'); colon >= 0 {
			tail = " -> " + f.returnAnnotation(fnName, used) + tail[colon:]
		}
	}
	return indent + trimmed[:open+1] + params + ")" + tail
}

// annotateParams adds annotations to bare parameters. Starred parameters,
// self, and cls stay untouched.
func (f *Fixer) annotateParams(params string, used map[string]bool) string {
	parts := splitTop(params)
	for i, raw := range parts {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || trimmed == "/" ||
			strings.HasPrefix(trimmed, "*") || strings.Contains(trimmed, ":") ||
			trimmed == config.SelfParamName || trimmed == config.ClsParamName {
			continue
		}
		leading := raw[:strings.Index(raw, trimmed)]
		name := trimmed
		def := ""
		if eq := strings.IndexByte(trimmed, '='); eq >= 0 {
			name = strings.TrimSpace(trimmed[:eq])
			def = " = " + strings.TrimSpace(trimmed[eq+1:])
		}
		parts[i] = leading + name + ": " + f.annotationFor(name, used) + def
	}
	return strings.Join(parts, ",")
}

// annotationFor resolves a parameter name against the environment, falling
// back to Any.
func (f *Fixer) annotationFor(name string, used map[string]bool) string {
	if f.env != nil {
		if t, ok := f.env.Lookup(name); ok && !typesystem.Equal(t, typesystem.Unknown) {
			return noteTypingNames(t.String(), used)
		}
	}
	used["Any"] = true
	return "Any"
}

// returnAnnotation resolves a function's return type from its inferred
// signature, falling back to Any.
func (f *Fixer) returnAnnotation(fnName string, used map[string]bool) string {
	if f.env != nil {
		if t, ok := f.env.Lookup(fnName); ok {
			if fn, isFunc := t.(typesystem.Func); isFunc &&
				!typesystem.Equal(fn.Return, typesystem.Unknown) {
				return noteTypingNames(fn.Return.String(), used)
			}
		}
	}
	used["Any"] = true
	return "Any"
}

// typingNames are the names an inserted annotation may pull from the typing
// module.
var typingNames = []string{"Any", "Callable", "Dict", "List", "Optional", "Set", "Tuple"}

// noteTypingNames records which typing names an annotation string uses and
// returns the annotation unchanged.
func noteTypingNames(anno string, used map[string]bool) string {
	for _, name := range typingNames {
		if strings.Contains(anno, name) {
			used[name] = true
		}
	}
	return anno
}

// insertTypingImport adds a typing import for the collected names after any
// shebang or coding line. Files that already import from typing are left
// alone, matching the conservative text-only rewrite.
func insertTypingImport(source string, used map[string]bool) string {
	var names []string
	for _, name := range typingNames {
		if used[name] {
			names = append(names, name)
		}
	}
	lines := strings.Split(source, "\n")
	at := 0
	if len(lines) > 0 && (strings.HasPrefix(lines[0], "#!") || strings.Contains(lines[0], "coding")) {
		at = 1
	}
	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:at]...)
	out = append(out, "from typing import "+strings.Join(names, ", "))
	out = append(out, lines[at:]...)
	return strings.Join(out, "\n")
}

// matchParen returns the index of the parenthesis closing s[open], or -1.
func matchParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
			if depth == 0 && s[i] == ')' {
				return i
			}
		}
	}
	return -1
}

// splitTop splits a parameter list on top-level commas.
func splitTop(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[', '(':
			depth++
		case ']', ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}
