package mutation

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/picklenerd/counterfeit/pkg/config"
	"github.com/picklenerd/counterfeit/pkg/mapper"
)

// Options supplies the sources of time and randomness used by mutations.
type Options struct {
	// Sleep pauses a request. Defaults to time.Sleep.
	Sleep func(time.Duration)
	// Float64 returns a number in [0.0, 1.0). Defaults to math/rand/v2.
	Float64 func() float64
}

func (o Options) withDefaults() Options {
	if o.Sleep == nil {
		o.Sleep = time.Sleep
	}
	if o.Float64 == nil {
		o.Float64 = rand.Float64
	}
	return o
}

// Build turns mutation configs into mutations, in order.
func Build(cfgs []config.MutationConfig, opts Options) ([]mapper.Mutation, error) {
	opts = opts.withDefaults()
	mutations := make([]mapper.Mutation, 0, len(cfgs))
	for i := range cfgs {
		m, err := build(&cfgs[i], i, opts)
		if err != nil {
			return nil, fmt.Errorf("mutations[%d]: %w", i, err)
		}
		mutations = append(mutations, m)
	}
	return mutations, nil
}

func build(cfg *config.MutationConfig, idx int, opts Options) (*guarded, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	name := cfg.Name
	if name == "" {
		name = fmt.Sprintf("%s#%d", cfg.Type, idx)
	}

	g := &guarded{name: name, paths: cfg.Paths}
	if len(cfg.Methods) > 0 {
		g.methods = make(map[string]bool, len(cfg.Methods))
		for _, m := range cfg.Methods {
			g.methods[strings.ToUpper(m)] = true
		}
	}
	if cfg.When != "" {
		program, err := expr.Compile(cfg.When, expr.Env(exprEnv(nil)), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile when %q: %w", cfg.When, err)
		}
		g.when = program
	}

	apply, err := newApply(cfg, opts)
	if err != nil {
		return nil, err
	}
	g.apply = apply
	return g, nil
}

// guarded applies a mutation only to the requests its filters select.
type guarded struct {
	name    string
	paths   []string
	methods map[string]bool
	when    *vm.Program
	apply   func(out *mapper.Output) error
}

func (g *guarded) Name() string { return g.name }

func (g *guarded) Apply(out *mapper.Output) error {
	ok, err := g.selects(out)
	if err != nil || !ok {
		return err
	}
	return g.apply(out)
}

func (g *guarded) selects(out *mapper.Output) (bool, error) {
	if g.methods != nil && !g.methods[strings.ToUpper(out.Request.Method)] {
		return false, nil
	}
	if len(g.paths) > 0 && !matchAny(g.paths, out.Request.Path) {
		return false, nil
	}
	if g.when == nil {
		return true, nil
	}
	result, err := expr.Run(g.when, exprEnv(out))
	if err != nil {
		return false, fmt.Errorf("eval when: %w", err)
	}
	ok, _ := result.(bool)
	return ok, nil
}

func matchAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, path); err == nil && ok {
			return true
		}
	}
	return false
}

// exprEnv exposes the outcome of a request to "when" expressions. A nil
// output yields the zero environment used for compilation.
func exprEnv(out *mapper.Output) map[string]any {
	env := map[string]any{
		"method":   "",
		"path":     "",
		"status":   0,
		"file":     "",
		"error":    "",
		"notFound": false,
	}
	if out == nil {
		return env
	}
	env["method"] = out.Request.Method
	env["path"] = out.Request.Path
	env["status"] = out.Response.Status
	env["file"] = out.Result.Path
	if err := out.Err(); err != nil {
		env["error"] = err.Error()
		env["notFound"] = mapper.IsNotFound(err)
	}
	return env
}
