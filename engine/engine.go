// Package engine runs translations over files for the command line: it
// loads the project configuration, splits files into expressions, caches
// results and watches directories.
package engine

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gnolang/mtrans"
	"github.com/gnolang/mtrans/internal/cache"
)

// Result is the translation of one expression line.
type Result struct {
	Filename string          `json:"filename"`
	Line     int             `json:"line"`
	Source   string          `json:"source"`
	Output   string          `json:"output"`
	Errors   []*mtrans.Error `json:"errors"`
}

func (r Result) Failed() bool {
	return len(r.Errors) > 0
}

type Translator interface {
	Run(ctx context.Context, filePath string) ([]Result, error)
	RunSource(ctx context.Context, name string, source []byte) ([]Result, error)
}

// Engine translates files under one configuration. It is safe for
// concurrent use.
type Engine struct {
	config   Config
	options  map[string]any
	digest   []byte
	cache    *cache.Cache[[]Result]
	expander mtrans.Expander
}

type Option func(*Engine)

// WithCache reuses results of sources seen before under the same
// configuration.
func WithCache(c *cache.Cache[[]Result]) Option {
	return func(e *Engine) {
		e.cache = c
	}
}

// WithExpander replaces the default directive functions.
func WithExpander(x mtrans.Expander) Option {
	return func(e *Engine) {
		e.expander = x
	}
}

// New builds an engine from the configuration file at configurationPath,
// or from DefaultConfig when the path is empty.
func New(configurationPath string, options ...Option) (*Engine, error) {
	config := DefaultConfig()
	if configurationPath != "" {
		var err error
		config, err = LoadConfig(configurationPath)
		if err != nil {
			return nil, err
		}
	}
	return NewWithConfig(config, options...)
}

func NewWithConfig(config Config, options ...Option) (*Engine, error) {
	opts, err := config.options()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration %q: %w", config.Name, err)
	}
	// The cache key covers the resolved options, so edits to a rule file
	// invalidate entries the same way edits to the configuration do.
	digest, err := yaml.Marshal(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to digest configuration: %w", err)
	}

	e := &Engine{
		config:  config,
		options: opts,
		digest:  digest,
	}
	for _, o := range options {
		o(e)
	}
	return e, nil
}

func (e *Engine) Config() Config {
	return e.config
}

// Run translates every expression in the file at filePath.
func (e *Engine) Run(ctx context.Context, filePath string) ([]Result, error) {
	source, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", filePath, err)
	}
	return e.RunSource(ctx, filePath, source)
}

// RunSource translates source, one expression per non-empty line. Lines
// starting with % are comments.
func (e *Engine) RunSource(ctx context.Context, name string, source []byte) ([]Result, error) {
	key := cache.Key(e.digest, source)
	if e.cache != nil {
		if results, ok := e.cache.Get(key); ok {
			return withFilename(results, name), nil
		}
	}

	var translateOpts []mtrans.TranslateOption
	if e.expander != nil {
		translateOpts = append(translateOpts, mtrans.WithExpander(e.expander))
	}

	results := []Result{}
	sc := bufio.NewScanner(bytes.NewReader(source))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for line := 1; sc.Scan(); line++ {
		expr := strings.TrimSpace(sc.Text())
		if expr == "" || strings.HasPrefix(expr, "%") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res := mtrans.Run(ctx, e.options, expr, translateOpts...)
		results = append(results, Result{
			Filename: name,
			Line:     line,
			Source:   expr,
			Output:   res.Output,
			Errors:   res.Errors,
		})
	}
	if err := sc.Err(); err != nil {
		return results, fmt.Errorf("error reading %s: %w", name, err)
	}

	// Results cut short by the deadline are not cached.
	if e.cache != nil && ctx.Err() == nil {
		e.cache.Set(key, results)
	}
	return results, nil
}

// withFilename copies cached results for name. Empty error lists are
// restored to non-nil since the on-disk encoding drops them.
func withFilename(cached []Result, name string) []Result {
	out := make([]Result, len(cached))
	for i, r := range cached {
		r.Filename = name
		if r.Errors == nil {
			r.Errors = []*mtrans.Error{}
		}
		out[i] = r
	}
	return out
}
