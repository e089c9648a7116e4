package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/picklenerd/counterfeit/pkg/config"
)

// serverFlags holds the flags that override configuration values.
type serverFlags struct {
	configFile     string
	baseDir        string
	host           string
	port           int
	createMissing  bool
	sortCandidates bool
	atomicPick     bool
	watch          bool
	logRequests    bool
	logLevel       string
	logFormat      string
	logFile        string
	readTimeout    int
	writeTimeout   int
	maxLogEntries  int
	metrics        bool
}

func (f *serverFlags) register(fs *pflag.FlagSet) {
	d := config.DefaultServerConfiguration()

	fs.StringVarP(&f.configFile, "config", "c", "", "Path to a JSON, YAML or TOML config file")
	fs.StringVarP(&f.baseDir, "base-dir", "d", d.BaseDir, "Root of the response file tree")
	fs.StringVar(&f.host, "host", d.Host, "Interface to listen on (empty = all)")
	fs.IntVarP(&f.port, "port", "p", d.Port, "HTTP port (0 = any free port)")
	fs.BoolVar(&f.createMissing, "create-missing", d.CreateMissing, "Create an empty <method>.json when no file matches")
	fs.BoolVar(&f.sortCandidates, "sort", d.SortCandidates, "Serve candidates in file name order")
	fs.BoolVar(&f.atomicPick, "atomic-pick", d.AtomicPick, "Serialize listing and cursor update per pick")
	fs.BoolVarP(&f.watch, "watch", "w", d.Watch, "Restart a directory's cycle when its files change")
	fs.BoolVar(&f.logRequests, "log-requests", d.LogRequests, "Log every request")
	fs.StringVar(&f.logLevel, "log-level", d.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&f.logFormat, "log-format", d.LogFormat, "Log format (text, json)")
	fs.StringVar(&f.logFile, "log-file", d.LogFile, "Also write JSON logs to this file")
	fs.IntVar(&f.readTimeout, "read-timeout", d.ReadTimeout, "Read timeout in seconds")
	fs.IntVar(&f.writeTimeout, "write-timeout", d.WriteTimeout, "Write timeout in seconds")
	fs.IntVar(&f.maxLogEntries, "max-log-entries", d.MaxLogEntries, "Request history capacity")
	fs.BoolVar(&f.metrics, "metrics", d.Metrics, "Expose Prometheus metrics")
}

// resolveConfig merges defaults, the config file, the environment and the
// flags that were set explicitly, then validates the result.
func (f *serverFlags) resolveConfig(cmd *cobra.Command) (*config.ServerConfiguration, error) {
	cfg := config.DefaultServerConfiguration()
	if f.configFile != "" {
		loaded, err := config.LoadFromFile(f.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	config.ApplyEnv(cfg)
	f.apply(cmd.Flags(), cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (f *serverFlags) apply(fs *pflag.FlagSet, cfg *config.ServerConfiguration) {
	set := func(name, key string, fn func()) {
		if fs.Changed(name) {
			fn()
			cfg.SetSource(key, config.SourceFlag)
		}
	}

	set("base-dir", "baseDir", func() { cfg.BaseDir = f.baseDir })
	set("host", "host", func() { cfg.Host = f.host })
	set("port", "port", func() { cfg.Port = f.port })
	set("create-missing", "createMissing", func() { cfg.CreateMissing = f.createMissing })
	set("sort", "sortCandidates", func() { cfg.SortCandidates = f.sortCandidates })
	set("atomic-pick", "atomicPick", func() { cfg.AtomicPick = f.atomicPick })
	set("watch", "watch", func() { cfg.Watch = f.watch })
	set("log-requests", "logRequests", func() { cfg.LogRequests = f.logRequests })
	set("log-level", "logLevel", func() { cfg.LogLevel = f.logLevel })
	set("log-format", "logFormat", func() { cfg.LogFormat = f.logFormat })
	set("log-file", "logFile", func() { cfg.LogFile = f.logFile })
	set("read-timeout", "readTimeout", func() { cfg.ReadTimeout = f.readTimeout })
	set("write-timeout", "writeTimeout", func() { cfg.WriteTimeout = f.writeTimeout })
	set("max-log-entries", "maxLogEntries", func() { cfg.MaxLogEntries = f.maxLogEntries })
	set("metrics", "metrics", func() { cfg.Metrics = f.metrics })
}
