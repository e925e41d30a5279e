package config

const PythonFileExt = ".py"

// ConfigFileName is the per-project configuration file, found by walking up
// from the working directory.
const ConfigFileName = "omnitype.yaml"

// DefaultPython is the interpreter used when the config names none.
const DefaultPython = "python3"

// Markers bracketing the JSON trace payload in instrumented-run output.
const (
	TraceStartMarker = "TRACE_OUTPUT_START"
	TraceEndMarker   = "TRACE_OUTPUT_END"
)

// Parameter names exempt from missing-annotation diagnostics.
const (
	SelfParamName = "self"
	ClsParamName  = "cls"
)
