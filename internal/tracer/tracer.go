// Package tracer runs Python files under a sys.settrace harness and turns
// the observed runtime values into type observations.
package tracer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/omnitype/omnitype/internal/config"
	"github.com/omnitype/omnitype/internal/typesystem"
)

// Tracer executes instrumented Python files and collects type traces.
type Tracer struct {
	python  string
	verbose bool
}

// Option configures a Tracer.
type Option func(*Tracer)

// WithPython selects the interpreter binary.
func WithPython(python string) Option {
	return func(t *Tracer) {
		if python != "" {
			t.python = python
		}
	}
}

// WithVerbose enables progress logging on stderr.
func WithVerbose() Option {
	return func(t *Tracer) { t.verbose = true }
}

func New(opts ...Option) *Tracer {
	t := &Tracer{python: config.DefaultPython}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Run instruments path, executes it with the configured interpreter, and
// parses the trace payload out of its stdout. testName, when non-empty,
// restricts the run to that single test function.
func (t *Tracer) Run(ctx context.Context, path, testName string) (*TypeTrace, error) {
	if filepath.Ext(path) != config.PythonFileExt {
		return nil, fmt.Errorf("trace %s: not a Python file", path)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("trace %s: %w", path, err)
	}

	tempFile := strings.TrimSuffix(path, config.PythonFileExt) + ".traced.py"
	if err := os.WriteFile(tempFile, []byte(Instrument(string(src), testName)), 0o644); err != nil {
		return nil, fmt.Errorf("trace %s: %w", path, err)
	}
	defer os.Remove(tempFile)

	if t.verbose {
		fmt.Fprintf(os.Stderr, "[trace] running %s via %s\n", path, t.python)
		if testName != "" {
			fmt.Fprintf(os.Stderr, "[trace] test: %s\n", testName)
		}
	}

	cmd := exec.CommandContext(ctx, t.python, tempFile)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("trace %s: %s failed: %w\n%s", path, t.python, err, output)
	}

	trace, err := ParseOutput(string(output))
	if err != nil {
		return nil, fmt.Errorf("trace %s: %w", path, err)
	}
	if t.verbose {
		fmt.Fprintf(os.Stderr, "[trace] collected %d variables, %d functions\n",
			len(trace.Variables), len(trace.Functions))
	}
	return trace, nil
}

// tracePayload mirrors the JSON the instrumented run prints between the
// trace markers.
type tracePayload struct {
	Variables map[string][]string `json:"variables"`
	Functions map[string]struct {
		Args    [][]string `json:"args"`
		Returns []string   `json:"returns"`
	} `json:"functions"`
}

// ParseOutput extracts the JSON trace payload from an instrumented run's
// combined output and converts the recorded type names.
func ParseOutput(output string) (*TypeTrace, error) {
	start := strings.Index(output, config.TraceStartMarker)
	if start < 0 {
		return nil, fmt.Errorf("no %s marker in output", config.TraceStartMarker)
	}
	rest := output[start+len(config.TraceStartMarker):]
	end := strings.Index(rest, config.TraceEndMarker)
	if end < 0 {
		return nil, fmt.Errorf("no %s marker in output", config.TraceEndMarker)
	}

	var payload tracePayload
	if err := json.Unmarshal([]byte(strings.TrimSpace(rest[:end])), &payload); err != nil {
		return nil, fmt.Errorf("parsing trace payload: %w", err)
	}

	trace := NewTypeTrace()
	for name, typeNames := range payload.Variables {
		for _, tn := range typeNames {
			trace.AddVariable(name, typesystem.FromAnnotation(tn))
		}
	}
	for fn, calls := range payload.Functions {
		for i, argNames := range calls.Args {
			args := make([]typesystem.Type, len(argNames))
			for j, an := range argNames {
				args[j] = typesystem.FromAnnotation(an)
			}
			ret := typesystem.Type(typesystem.Unknown)
			if i < len(calls.Returns) {
				ret = typesystem.FromAnnotation(calls.Returns[i])
			}
			trace.AddCall(fn, args, ret)
		}
	}
	return trace, nil
}
