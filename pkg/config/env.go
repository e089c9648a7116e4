package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment variable names
const (
	EnvBaseDir        = "COUNTERFEIT_BASE_DIR"
	EnvHost           = "COUNTERFEIT_HOST"
	EnvPort           = "COUNTERFEIT_PORT"
	EnvCreateMissing  = "COUNTERFEIT_CREATE_MISSING"
	EnvSortCandidates = "COUNTERFEIT_SORT_CANDIDATES"
	EnvAtomicPick     = "COUNTERFEIT_ATOMIC_PICK"
	EnvWatch          = "COUNTERFEIT_WATCH"
	EnvLogRequests    = "COUNTERFEIT_LOG_REQUESTS"
	EnvLogLevel       = "COUNTERFEIT_LOG_LEVEL"
	EnvLogFormat      = "COUNTERFEIT_LOG_FORMAT"
	EnvLogFile        = "COUNTERFEIT_LOG_FILE"
	EnvReadTimeout    = "COUNTERFEIT_READ_TIMEOUT"
	EnvWriteTimeout   = "COUNTERFEIT_WRITE_TIMEOUT"
	EnvMaxLogEntries  = "COUNTERFEIT_MAX_LOG_ENTRIES"
	EnvMetrics        = "COUNTERFEIT_METRICS"
)

// ApplyEnv overrides cfg with values present in the environment.
// Values that fail to parse are ignored.
func ApplyEnv(cfg *ServerConfiguration) {
	envString(cfg, EnvBaseDir, "baseDir", &cfg.BaseDir)
	envString(cfg, EnvHost, "host", &cfg.Host)
	envInt(cfg, EnvPort, "port", &cfg.Port)
	envBool(cfg, EnvCreateMissing, "createMissing", &cfg.CreateMissing)
	envBool(cfg, EnvSortCandidates, "sortCandidates", &cfg.SortCandidates)
	envBool(cfg, EnvAtomicPick, "atomicPick", &cfg.AtomicPick)
	envBool(cfg, EnvWatch, "watch", &cfg.Watch)
	envBool(cfg, EnvLogRequests, "logRequests", &cfg.LogRequests)
	envString(cfg, EnvLogLevel, "logLevel", &cfg.LogLevel)
	envString(cfg, EnvLogFormat, "logFormat", &cfg.LogFormat)
	envString(cfg, EnvLogFile, "logFile", &cfg.LogFile)
	envInt(cfg, EnvReadTimeout, "readTimeout", &cfg.ReadTimeout)
	envInt(cfg, EnvWriteTimeout, "writeTimeout", &cfg.WriteTimeout)
	envInt(cfg, EnvMaxLogEntries, "maxLogEntries", &cfg.MaxLogEntries)
	envBool(cfg, EnvMetrics, "metrics", &cfg.Metrics)
}

func envString(cfg *ServerConfiguration, name, key string, dst *string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
		cfg.SetSource(key, SourceEnv)
	}
}

func envInt(cfg *ServerConfiguration, name, key string, dst *int) {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
			cfg.SetSource(key, SourceEnv)
		}
	}
}

func envBool(cfg *ServerConfiguration, name, key string, dst *bool) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	switch strings.ToLower(v) {
	case "true", "1", "yes", "on":
		*dst = true
	case "false", "0", "no", "off":
		*dst = false
	default:
		return
	}
	cfg.SetSource(key, SourceEnv)
}
