// Package api provides the public API for the ShaderLab compiler.
//
// Compile turns ShaderLab source into one GLSL vertex and fragment source
// per pass, the pass render states, and the diagnostics found on the way.
// A Compiler additionally memoizes results and is safe for concurrent use.
package api

import (
	"log/slog"
	"sync"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/text/unicode/norm"

	"github.com/galacean/engine-sub008/internal/config"
	"github.com/galacean/engine-sub008/internal/diagnostic"
	"github.com/galacean/engine-sub008/internal/parser"
	"github.com/galacean/engine-sub008/internal/runtime"
	"github.com/galacean/engine-sub008/internal/visitor"
)

// Output records, re-exported for callers outside this module.
type (
	ShaderInfo    = runtime.ShaderInfo
	SubShaderInfo = runtime.SubShaderInfo
	PassInfo      = runtime.PassInfo
	RenderStates  = runtime.RenderStates
	Diagnostic    = diagnostic.Diagnostic
	FatalError    = runtime.FatalError
)

// ErrReturnMismatch is matched by errors.Is on a fatal return mismatch.
var ErrReturnMismatch = runtime.ErrReturnMismatch

// Options controls compilation.
type Options struct {
	// VaryingPolicy is "fragment-reads" (default) or "vertex-writes".
	// Unknown values fall back to the default.
	VaryingPolicy string

	// TreeShaking emits only the globals reachable from each entry point.
	TreeShaking bool

	// Suggestions adds "did you mean" hints to diagnostics.
	Suggestions bool

	// Logger traces compilation at debug level. Nil discards.
	Logger *slog.Logger
}

// DefaultOptions returns the options Compile uses.
func DefaultOptions() Options {
	d := runtime.DefaultOptions()
	return Options{
		VaryingPolicy: string(d.VaryingPolicy),
		TreeShaking:   d.TreeShaking,
		Suggestions:   d.Suggestions,
	}
}

// LoadOptions reads shaderlab.toml, shaderlab.json or .shaderlabrc from
// startDir or the nearest parent. It returns DefaultOptions and an empty
// path when no config file exists.
func LoadOptions(startDir string) (Options, string, error) {
	return ResolveOptions(startDir, Overrides{})
}

// Overrides are caller settings that win over the config file. Empty or nil
// fields leave the file (or default) value in place.
type Overrides struct {
	VaryingPolicy string
	TreeShaking   *bool
	Suggestions   *bool
}

// ResolveOptions loads the nearest config file like LoadOptions and applies
// overrides on top of it.
func ResolveOptions(startDir string, overrides Overrides) (Options, string, error) {
	cfg, path, err := config.Load(startDir)
	if err != nil {
		return Options{}, path, err
	}
	if cfg == nil {
		cfg = &config.Config{}
	}
	o := cfg.Merge(config.MergeOptions{
		VaryingPolicy: overrides.VaryingPolicy,
		TreeShaking:   overrides.TreeShaking,
		Suggestions:   overrides.Suggestions,
	})
	return Options{
		VaryingPolicy: string(o.VaryingPolicy),
		TreeShaking:   o.TreeShaking,
		Suggestions:   o.Suggestions,
	}, path, nil
}

// EncodeConfig renders opts as the contents of a shaderlab.toml file.
func EncodeConfig(opts Options) ([]byte, error) {
	cfg := config.Config{
		VaryingPolicy: opts.VaryingPolicy,
		TreeShaking:   &opts.TreeShaking,
		Suggestions:   &opts.Suggestions,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg.Encode()
}

func (o Options) toRuntime() runtime.Options {
	return runtime.Options{
		VaryingPolicy: runtime.VaryingPolicy(o.VaryingPolicy),
		TreeShaking:   o.TreeShaking,
		Suggestions:   o.Suggestions,
		Logger:        o.Logger,
	}
}

// Result contains the compilation output.
type Result struct {
	// Shader is nil when Err is set.
	Shader *ShaderInfo `json:"shader,omitempty"`

	// Diagnostics lists every recoverable problem, in source walk order.
	Diagnostics []Diagnostic `json:"diagnostics"`

	// Err is a fatal error: a grammar error (parser.ErrorList) or a
	// *FatalError for a return statement that disagrees with its function.
	Err error `json:"-"`

	// Error is Err as text, for JSON consumers.
	Error string `json:"error,omitempty"`
}

// HasErrors reports whether the compile failed or produced error diagnostics.
func (r Result) HasErrors() bool {
	if r.Err != nil {
		return true
	}
	for _, d := range r.Diagnostics {
		if d.Severity == diagnostic.Error {
			return true
		}
	}
	return false
}

// Format renders the diagnostics with source context.
func (r Result) Format(source string) string {
	l := diagnostic.NewList()
	for _, d := range r.Diagnostics {
		l.Add(d)
	}
	return l.Format(norm.NFC.String(source))
}

// Compile compiles ShaderLab source with default options.
func Compile(source string) Result {
	return CompileWithOptions(source, DefaultOptions())
}

// CompileWithOptions compiles ShaderLab source with custom options.
func CompileWithOptions(source string, opts Options) Result {
	return compile(norm.NFC.String(source), opts)
}

func compile(source string, opts Options) Result {
	root, err := parser.ParseSource(source)
	if err != nil {
		return failed(err, nil)
	}

	shader, err := visitor.Build(root)
	if err != nil {
		return failed(err, nil)
	}

	c := runtime.New(opts.toRuntime())
	info, err := c.Parse(shader)
	if err != nil {
		return failed(err, c.Diagnostics())
	}

	return Result{Shader: info, Diagnostics: diagnosticsOrEmpty(c.Diagnostics())}
}

func failed(err error, diags []Diagnostic) Result {
	return Result{Diagnostics: diagnosticsOrEmpty(diags), Err: err, Error: err.Error()}
}

func diagnosticsOrEmpty(diags []Diagnostic) []Diagnostic {
	if diags == nil {
		return []Diagnostic{}
	}
	return diags
}

// ----------------------------------------------------------------------------
// Compiler
// ----------------------------------------------------------------------------

// Compiler compiles with fixed options and memoizes results by source.
// Cached results are shared between callers and must not be modified.
type Compiler struct {
	opts   Options
	prefix []byte

	mu    sync.Mutex
	cache map[[blake2b.Size256]byte]Result
	hits  int
}

// NewCompiler creates a Compiler.
func NewCompiler(opts Options) *Compiler {
	return &Compiler{
		opts:   opts,
		prefix: optionsKey(opts),
		cache:  make(map[[blake2b.Size256]byte]Result),
	}
}

// optionsKey encodes the options that change the output.
func optionsKey(opts Options) []byte {
	policy := runtime.VaryingPolicy(opts.VaryingPolicy)
	if !policy.Valid() {
		policy = runtime.VaryingFragmentReads
	}
	key := []byte(policy)
	key = append(key, 0, flag(opts.TreeShaking), flag(opts.Suggestions), 0)
	return key
}

func flag(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// Compile compiles source, returning a cached result when the same
// normalized source was compiled before.
func (c *Compiler) Compile(source string) Result {
	source = norm.NFC.String(source)

	h, _ := blake2b.New256(nil)
	h.Write(c.prefix)
	h.Write([]byte(source))
	var key [blake2b.Size256]byte
	copy(key[:], h.Sum(nil))

	c.mu.Lock()
	if r, ok := c.cache[key]; ok {
		c.hits++
		c.mu.Unlock()
		return r
	}
	c.mu.Unlock()

	r := compile(source, c.opts)

	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.cache[key]; ok {
		return cached
	}
	c.cache[key] = r
	return r
}

// Stats returns the number of cached results and cache hits.
func (c *Compiler) Stats() (entries, hits int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache), c.hits
}

// Reset empties the cache.
func (c *Compiler) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[[blake2b.Size256]byte]Result)
	c.hits = 0
}
