package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/omnitype/omnitype/internal/analyzer"
	"github.com/omnitype/omnitype/internal/config"
	"github.com/omnitype/omnitype/internal/fixer"
	"github.com/omnitype/omnitype/internal/infer"
	"github.com/omnitype/omnitype/internal/solver"
	"github.com/omnitype/omnitype/internal/tracer"
	"github.com/omnitype/omnitype/internal/tracestore"
	"github.com/omnitype/omnitype/internal/typesystem"
	"github.com/omnitype/omnitype/internal/utils"
)

const usage = `omnitype - a hybrid type checker for Python

Usage:
  omnitype check <path> [--json] [--store <db>]
  omnitype fix <path> [--in-place] [--store <db>]
  omnitype trace <path> [--test <name>] [--store <db>] [--verbose]
  omnitype help
`

func main() {
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			os.Exit(1)
		}
	}()

	if handleHelp() {
		return
	}
	if handleCheck() {
		return
	}
	if handleFix() {
		return
	}
	if handleTrace() {
		return
	}

	fmt.Fprint(os.Stderr, usage)
	os.Exit(1)
}

func handleHelp() bool {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		return true
	}
	switch os.Args[1] {
	case "help", "-help", "--help":
		fmt.Print(usage)
		return true
	}
	return false
}

func handleCheck() bool {
	if len(os.Args) < 2 || os.Args[1] != "check" {
		return false
	}
	path, flags := parseArgs(os.Args[2:])
	if path == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s check <path> [--json] [--store <db>]\n", os.Args[0])
		os.Exit(1)
	}

	cfg := loadConfig(path)
	results := analyzePath(path, cfg)

	if flags["json"] != "" {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding results: %s\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
	} else {
		printResults(results)
	}

	if terr := checkTypes(results, cfg, storePath(cfg, flags)); terr != nil {
		fmt.Fprintf(os.Stderr, "Type error: %s\n", terr)
		os.Exit(1)
	}

	if cfg.IsStrict() {
		for _, r := range results {
			if len(r.Diagnostics) > 0 {
				os.Exit(1)
			}
		}
	}
	return true
}

func handleFix() bool {
	if len(os.Args) < 2 || os.Args[1] != "fix" {
		return false
	}
	path, flags := parseArgs(os.Args[2:])
	if path == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s fix <path> [--in-place] [--store <db>]\n", os.Args[0])
		os.Exit(1)
	}

	cfg := loadConfig(path)
	env := loadStoredEnv(storePath(cfg, flags))

	var opts []fixer.Option
	if flags["in-place"] != "" {
		opts = append(opts, fixer.InPlace())
	}
	opts = append(opts, fixer.Exclude(cfg.Excluded))

	if err := fixer.New(env, opts...).FixPath(path); err != nil {
		fmt.Fprintf(os.Stderr, "Fix failed: %s\n", err)
		os.Exit(1)
	}
	if flags["in-place"] != "" {
		fmt.Println("Fix completed (in-place)")
	} else {
		fmt.Println("Fix completed")
	}
	return true
}

func handleTrace() bool {
	if len(os.Args) < 2 || os.Args[1] != "trace" {
		return false
	}
	path, flags := parseArgs(os.Args[2:])
	if path == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s trace <path> [--test <name>] [--store <db>]\n", os.Args[0])
		os.Exit(1)
	}

	cfg := loadConfig(path)
	var opts []tracer.Option
	opts = append(opts, tracer.WithPython(cfg.Interpreter()))
	if flags["verbose"] != "" {
		opts = append(opts, tracer.WithVerbose())
	}

	trace, err := tracer.New(opts...).Run(context.Background(), path, flags["test"])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Runtime tracing failed: %s\n", err)
		os.Exit(1)
	}

	if len(trace.Variables) == 0 && len(trace.Functions) == 0 {
		fmt.Println("No type information collected.")
		return true
	}

	printTrace(trace)

	if db := storePath(cfg, flags); db != "" {
		store, err := tracestore.Open(db)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Trace store: %s\n", err)
			os.Exit(1)
		}
		defer store.Close()
		runID, err := store.SaveTrace(context.Background(), path, trace)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Trace store: %s\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nSaved run %s to %s\n", runID, db)
	}
	return true
}

// parseArgs splits command arguments into one positional path and a flag
// map. Value flags (--test, --store) consume the next argument; boolean
// flags map to "true".
func parseArgs(args []string) (string, map[string]string) {
	flags := map[string]string{}
	path := ""
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			if path == "" {
				path = arg
			}
			continue
		}
		name := strings.TrimLeft(arg, "-")
		switch name {
		case "test", "store":
			if i+1 < len(args) {
				flags[name] = args[i+1]
				i++
			}
		default:
			flags[name] = "true"
		}
	}
	return path, flags
}

func loadConfig(path string) *config.Config {
	dir := path
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		dir = filepath.Dir(path)
	}
	cfg, err := config.Discover(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config: %s\n", err)
		os.Exit(1)
	}
	return cfg
}

func storePath(cfg *config.Config, flags map[string]string) string {
	if flags["store"] != "" {
		return flags["store"]
	}
	return cfg.Store
}

func analyzePath(path string, cfg *config.Config) []*analyzer.FileResult {
	info, err := os.Stat(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Path not found: %s\n", path)
		os.Exit(1)
	}

	var files []string
	if info.IsDir() {
		files, err = utils.FindPythonFiles(path, cfg.Excluded)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error walking %s: %s\n", path, err)
			os.Exit(1)
		}
	} else {
		files = []string{path}
	}

	var results []*analyzer.FileResult
	for _, file := range files {
		res, err := analyzer.AnalyzeFile(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to analyze %s: %s\n", file, err)
			continue
		}
		results = append(results, res)
	}
	return results
}

// checkTypes replays persisted trace observations against the annotations
// found by the analyzer and solves the resulting constraints. With no
// stored runs there is nothing to conflict with, so the check passes.
func checkTypes(results []*analyzer.FileResult, cfg *config.Config, db string) *solver.TypeError {
	var opts []infer.Option
	if !cfg.IsStrict() {
		opts = append(opts, infer.WithLenient())
	}
	sess := infer.NewSession(opts...)

	for _, r := range results {
		for _, fn := range r.Functions {
			decl := fn.Type()
			if fn.Return == nil {
				// An unannotated return accepts whatever the traced
				// calls produced.
				decl.Return = typesystem.Any
			}
			sess.Declare(fn.Name, decl)
		}
	}

	if db != "" {
		if err := feedStoredRun(context.Background(), sess, db); err != nil {
			fmt.Fprintf(os.Stderr, "Trace store: %s\n", err)
		}
	}

	_, terr := sess.Resolve()
	return terr
}

// feedStoredRun replays the newest persisted run into the session as
// observations.
func feedStoredRun(ctx context.Context, sess *infer.Session, db string) error {
	store, err := tracestore.Open(db)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Runs(ctx)
	if err != nil || len(runs) == 0 {
		return err
	}
	latest := runs[0].ID

	vars, err := store.Variables(ctx, latest)
	if err != nil {
		return err
	}
	for name, t := range vars {
		sess.ObserveVar(name, t)
	}

	fns, err := store.Functions(ctx, latest)
	if err != nil {
		return err
	}
	for name, sig := range fns {
		if f, ok := typesystem.FromAnnotation(sig).(typesystem.Func); ok {
			sess.ObserveCall(name, f.Params, f.Return)
		}
	}
	return nil
}

func printResults(results []*analyzer.FileResult) {
	if len(results) == 0 {
		fmt.Println("No Python files found.")
		return
	}
	useColor := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	for _, r := range results {
		fmt.Printf("%s: functions=%d, classes=%d\n", r.Path, r.FunctionCount, r.ClassCount)
		for _, d := range r.Diagnostics {
			severity := d.Severity
			if useColor {
				severity = "\x1b[33m" + severity + "\x1b[0m"
			}
			fmt.Printf("  %s:%d:%d: %s %s\n", d.Path, d.Line+1, d.Column+1, severity, d.Message)
		}
	}
}

func printTrace(trace *tracer.TypeTrace) {
	fmt.Println("Runtime tracing completed.")

	sess := infer.NewSession()
	trace.Feed(sess)
	resolved, terr := sess.Resolve()
	if terr != nil {
		fmt.Fprintf(os.Stderr, "Type error: %s\n", terr)
		os.Exit(1)
	}

	if names := trace.VariableNames(); len(names) > 0 {
		fmt.Println("\nVariable type observations:")
		for _, name := range names {
			fmt.Printf("  %s: %s\n", name, resolved[name])
		}
	}
	if names := trace.FunctionNames(); len(names) > 0 {
		fmt.Println("\nFunction call signatures:")
		for _, name := range names {
			fmt.Printf("  %s: %s\n", name, resolved[name])
		}
	}
}

// loadStoredEnv builds a type environment from the most recent persisted
// trace run, so fixes prefer observed types over Any.
func loadStoredEnv(db string) *typesystem.TypeEnv {
	if db == "" {
		return nil
	}
	store, err := tracestore.Open(db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Trace store: %s\n", err)
		return nil
	}
	defer store.Close()

	ctx := context.Background()
	runs, err := store.Runs(ctx)
	if err != nil || len(runs) == 0 {
		return nil
	}
	latest := runs[0].ID

	env := typesystem.NewTypeEnv()
	if vars, err := store.Variables(ctx, latest); err == nil {
		for name, t := range vars {
			env.Bind(name, t)
		}
	}
	if fns, err := store.Functions(ctx, latest); err == nil {
		for name, sig := range fns {
			env.Bind(name, typesystem.FromAnnotation(sig))
		}
	}
	return env
}
