package config

// Mutation types understood by the mutation builder.
const (
	MutationHeaders   = "headers"
	MutationStatus    = "status"
	MutationDelay     = "delay"
	MutationFault     = "fault"
	MutationJSONPath  = "jsonpath"
	MutationRequestID = "requestId"
	MutationFail      = "fail"
)

// MutationTypes lists every supported mutation type.
var MutationTypes = []string{
	MutationHeaders,
	MutationStatus,
	MutationDelay,
	MutationFault,
	MutationJSONPath,
	MutationRequestID,
	MutationFail,
}

// Configuration sources recorded in ServerConfiguration.Sources.
const (
	SourceDefault = "default"
	SourceFile    = "file"
	SourceEnv     = "env"
	SourceFlag    = "flag"
)

// ServerConfiguration holds all server settings.
type ServerConfiguration struct {
	// BaseDir is the root of the response file tree.
	BaseDir string `json:"baseDir" yaml:"baseDir" toml:"baseDir"`
	// Host is the interface to listen on. Empty means all interfaces.
	Host string `json:"host,omitempty" yaml:"host,omitempty" toml:"host"`
	// Port is the HTTP port.
	Port int `json:"port" yaml:"port" toml:"port"`

	// CreateMissing creates an empty "<method>.json" when a directory has no
	// file for the request method.
	CreateMissing bool `json:"createMissing" yaml:"createMissing" toml:"createMissing"`
	// SortCandidates cycles candidates in file name order instead of raw
	// directory order. Default: true
	SortCandidates bool `json:"sortCandidates" yaml:"sortCandidates" toml:"sortCandidates"`
	// AtomicPick serializes listing and cursor update per pick.
	AtomicPick bool `json:"atomicPick" yaml:"atomicPick" toml:"atomicPick"`
	// Watch resets a directory's cursor when its files change.
	Watch bool `json:"watch" yaml:"watch" toml:"watch"`

	// LogRequests logs every request and its outcome.
	LogRequests bool `json:"logRequests" yaml:"logRequests" toml:"logRequests"`
	// LogLevel is debug, info, warn or error.
	LogLevel string `json:"logLevel,omitempty" yaml:"logLevel,omitempty" toml:"logLevel"`
	// LogFormat is text or json.
	LogFormat string `json:"logFormat,omitempty" yaml:"logFormat,omitempty" toml:"logFormat"`
	// LogFile additionally writes JSON logs to this path.
	LogFile string `json:"logFile,omitempty" yaml:"logFile,omitempty" toml:"logFile"`

	// ReadTimeout is the HTTP read timeout in seconds.
	ReadTimeout int `json:"readTimeout,omitempty" yaml:"readTimeout,omitempty" toml:"readTimeout"`
	// WriteTimeout is the HTTP write timeout in seconds.
	WriteTimeout int `json:"writeTimeout,omitempty" yaml:"writeTimeout,omitempty" toml:"writeTimeout"`
	// MaxLogEntries is the request history capacity.
	MaxLogEntries int `json:"maxLogEntries,omitempty" yaml:"maxLogEntries,omitempty" toml:"maxLogEntries"`
	// Metrics exposes Prometheus metrics under /__counterfeit/metrics.
	Metrics bool `json:"metrics" yaml:"metrics" toml:"metrics"`

	// Mutations are applied to every response in order.
	Mutations []MutationConfig `json:"mutations,omitempty" yaml:"mutations,omitempty" toml:"mutations"`

	// Sources records where each overridden setting came from.
	Sources map[string]string `json:"-" yaml:"-" toml:"-"`
}

// MutationConfig describes one response mutation.
type MutationConfig struct {
	// Name identifies the mutation in logs and errors.
	Name string `json:"name" yaml:"name" toml:"name"`
	// Type selects the mutation; see MutationTypes.
	Type string `json:"type" yaml:"type" toml:"type"`

	// Paths limits the mutation to request paths matching any of these
	// globs ("**" crosses segments). Empty means every path.
	Paths []string `json:"paths,omitempty" yaml:"paths,omitempty" toml:"paths"`
	// Methods limits the mutation to these HTTP methods.
	Methods []string `json:"methods,omitempty" yaml:"methods,omitempty" toml:"methods"`
	// When is a boolean expression over method, path, status, file, error
	// and notFound. Empty means always.
	When string `json:"when,omitempty" yaml:"when,omitempty" toml:"when"`

	// Headers are set by "headers" mutations.
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty" toml:"headers"`
	// Status is the code set by "status" mutations.
	Status int `json:"status,omitempty" yaml:"status,omitempty" toml:"status"`
	// Min and Max bound the "delay" duration (e.g. "10ms", "1s").
	Min string `json:"min,omitempty" yaml:"min,omitempty" toml:"min"`
	Max string `json:"max,omitempty" yaml:"max,omitempty" toml:"max"`
	// Probability is the chance a "fault" fires (0.0-1.0).
	Probability float64 `json:"probability,omitempty" yaml:"probability,omitempty" toml:"probability"`
	// StatusCodes are picked from at random by "fault". Default: 500
	StatusCodes []int `json:"statusCodes,omitempty" yaml:"statusCodes,omitempty" toml:"statusCodes"`
	// Message is the body of "fault" responses and the error of "fail".
	Message string `json:"message,omitempty" yaml:"message,omitempty" toml:"message"`
	// Set maps JSONPath expressions to the values "jsonpath" writes.
	Set map[string]any `json:"set,omitempty" yaml:"set,omitempty" toml:"set"`
	// Header names the request ID header. Default: X-Request-Id
	Header string `json:"header,omitempty" yaml:"header,omitempty" toml:"header"`
}

// DefaultServerConfiguration returns the configuration used when nothing is set.
func DefaultServerConfiguration() *ServerConfiguration {
	return &ServerConfiguration{
		BaseDir:        "responses",
		Port:           3000,
		SortCandidates: true,
		LogRequests:    true,
		LogLevel:       "info",
		LogFormat:      "text",
		ReadTimeout:    30,
		WriteTimeout:   30,
		MaxLogEntries:  1000,
		Metrics:        true,
		Sources:        make(map[string]string),
	}
}

// SetSource records where a setting came from.
func (c *ServerConfiguration) SetSource(key, source string) {
	if c.Sources == nil {
		c.Sources = make(map[string]string)
	}
	c.Sources[key] = source
}

// Source returns where a setting came from, SourceDefault if never overridden.
func (c *ServerConfiguration) Source(key string) string {
	if s, ok := c.Sources[key]; ok {
		return s
	}
	return SourceDefault
}
