package analyzer

import (
	"fmt"
	"os"
	"strings"

	"github.com/omnitype/omnitype/internal/config"
	"github.com/omnitype/omnitype/internal/typesystem"
)

// Diagnostic is one issue found in a source file. Line and Column are
// 0-based.
type Diagnostic struct {
	Path     string `json:"path"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s", d.Path, d.Line, d.Column, d.Severity, d.Message)
}

// Param is one formal parameter of a scanned function.
type Param struct {
	Name       string          `json:"name"`
	Annotation string          `json:"annotation,omitempty"`
	Type       typesystem.Type `json:"-"`
}

// Function is one function definition found during scanning.
type Function struct {
	Name       string          `json:"name"`
	Line       int             `json:"line"`
	Params     []Param         `json:"params"`
	ReturnAnno string          `json:"return_annotation,omitempty"`
	Return     typesystem.Type `json:"-"`
}

// Type builds the function's signature type from its annotations. Missing
// annotations come out as Unknown.
func (f Function) Type() typesystem.Func {
	params := make([]typesystem.Type, len(f.Params))
	for i, p := range f.Params {
		if p.Type != nil {
			params[i] = p.Type
		} else {
			params[i] = typesystem.Unknown
		}
	}
	ret := f.Return
	if ret == nil {
		ret = typesystem.Unknown
	}
	return typesystem.Func{Params: params, Return: ret}
}

// FileResult is the per-file analysis summary.
type FileResult struct {
	Path          string       `json:"path"`
	FunctionCount int          `json:"function_count"`
	ClassCount    int          `json:"class_count"`
	Functions     []Function   `json:"functions"`
	Diagnostics   []Diagnostic `json:"diagnostics"`
}

// AnalyzeFile scans one Python source file.
func AnalyzeFile(path string) (*FileResult, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", path, err)
	}
	return AnalyzeSource(path, src), nil
}

// AnalyzeSource scans Python source text for function and class definitions
// and reports missing annotations. The scan is line-oriented; function
// signatures may span lines and are joined on parenthesis depth.
func AnalyzeSource(path string, src []byte) *FileResult {
	res := &FileResult{Path: path}
	lines := strings.Split(string(src), "\n")

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "class ") {
			res.ClassCount++
			continue
		}

		name, ok := defName(trimmed)
		if !ok {
			continue
		}
		res.FunctionCount++

		sig, last := joinSignature(lines, i)
		fn := parseSignature(name, i, sig)
		res.Functions = append(res.Functions, fn)
		res.Diagnostics = append(res.Diagnostics, annotationDiagnostics(path, line, fn)...)
		i = last
	}
	return res
}

// defName extracts the function name from a "def" or "async def" line.
func defName(trimmed string) (string, bool) {
	rest, ok := strings.CutPrefix(trimmed, "def ")
	if !ok {
		rest, ok = strings.CutPrefix(trimmed, "async def ")
	}
	if !ok {
		return "", false
	}
	open := strings.IndexByte(rest, '(')
	if open < 0 {
		return "", false
	}
	name := strings.TrimSpace(rest[:open])
	if name == "" {
		return "", false
	}
	return name, true
}

// joinSignature collects lines from start until the signature's parentheses
// balance and a ":" closes the header. Returns the joined text and the index
// of the last consumed line.
func joinSignature(lines []string, start int) (string, int) {
	var b strings.Builder
	depth := 0
	for i := start; i < len(lines); i++ {
		line := lines[i]
		b.WriteString(strings.TrimSpace(line))
		for _, r := range line {
			switch r {
			case '(', '[':
				depth++
			case ')', ']':
				depth--
			}
		}
		if depth <= 0 && strings.Contains(line, ")") {
			return b.String(), i
		}
		b.WriteByte(' ')
	}
	return b.String(), len(lines) - 1
}

// parseSignature splits a joined "def name(params) -> ret:" header into its
// parts and resolves annotations to types.
func parseSignature(name string, line int, sig string) Function {
	fn := Function{Name: name, Line: line}

	open := strings.IndexByte(sig, '(')
	if open < 0 {
		return fn
	}
	close := matchParen(sig, open)
	if close < 0 {
		return fn
	}

	for _, raw := range splitParams(sig[open+1 : close]) {
		p := strings.TrimSpace(raw)
		if p == "" || p == "/" || p == "*" {
			continue
		}
		fn.Params = append(fn.Params, parseParam(p))
	}

	tail := sig[close+1:]
	if arrow := strings.Index(tail, "->"); arrow >= 0 {
		anno := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(tail[arrow+2:]), ":"))
		fn.ReturnAnno = anno
		fn.Return = typesystem.FromAnnotation(anno)
	}
	return fn
}

func parseParam(p string) Param {
	// Drop a default value, then split name from annotation. The "=" scan
	// must ignore defaults nested in an annotation like Dict[str, int].
	depth := 0
	for i := 0; i < len(p); i++ {
		switch p[i] {
		case '[', '(':
			depth++
		case ']', ')':
			depth--
		case '=':
			if depth == 0 {
				p = strings.TrimSpace(p[:i])
				i = len(p)
			}
		}
	}
	name, anno, hasAnno := strings.Cut(p, ":")
	out := Param{Name: strings.TrimSpace(name)}
	if hasAnno {
		out.Annotation = strings.TrimSpace(anno)
		out.Type = typesystem.FromAnnotation(out.Annotation)
	}
	return out
}

// annotationDiagnostics flags unannotated parameters and a missing return
// annotation. self, cls, and starred parameters are exempt.
func annotationDiagnostics(path, defLine string, fn Function) []Diagnostic {
	col := len(defLine) - len(strings.TrimLeft(defLine, " \t"))
	var out []Diagnostic
	for _, p := range fn.Params {
		if p.Annotation != "" || exemptParam(p.Name) {
			continue
		}
		out = append(out, Diagnostic{
			Path:     path,
			Line:     fn.Line,
			Column:   col,
			Message:  fmt.Sprintf("Missing type annotation for parameter %q", p.Name),
			Severity: "warning",
		})
	}
	if fn.ReturnAnno == "" {
		out = append(out, Diagnostic{
			Path:     path,
			Line:     fn.Line,
			Column:   col,
			Message:  "Missing return type annotation",
			Severity: "warning",
		})
	}
	return out
}

func exemptParam(name string) bool {
	return name == config.SelfParamName || name == config.ClsParamName || strings.HasPrefix(name, "*")
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

// splitParams splits a parameter list on top-level commas.
func splitParams(s string) []string {
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
	if strings.TrimSpace(s[start:]) != "" {
		parts = append(parts, s[start:])
	}
	return parts
}
