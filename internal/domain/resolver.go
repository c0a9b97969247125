package domain

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dop251/goja"

	"gest.dev/pkg/gest/internal/adapter"
	"gest.dev/pkg/gest/internal/domain/coverage"
	m "gest.dev/pkg/gest/internal/model"
)

// The wrapper opens on the first source line and closes on an extra line so
// line numbers inside the module are unchanged.
const (
	moduleWrapperHead = "(function(exports, require, module, __filename, __dirname) {"
	moduleWrapperTail = "\n})"
)

// CompiledModule is a compiled script. One instance exists per resolved
// path and run; every importer shares it.
type CompiledModule struct {
	// Path is the absolute resolved path.
	Path m.Path
	// Label is the path shown in traces and the coverage report.
	Label   string
	Program *goja.Program
}

// ModuleResolver resolves, instruments, compiles and caches modules.
type ModuleResolver struct {
	mu       sync.Mutex
	fs       adapter.SourceFSAdapter
	basePath m.Path
	coverage *coverage.Registry
	cache    map[m.Path]*CompiledModule
}

// NewModuleResolver constructs a resolver. A nil registry disables instrumentation.
func NewModuleResolver(fs adapter.SourceFSAdapter, basePath m.Path, registry *coverage.Registry) *ModuleResolver {
	if basePath == "" {
		basePath = "."
	}

	return &ModuleResolver{
		fs:       fs,
		basePath: basePath,
		coverage: registry,
		cache:    make(map[m.Path]*CompiledModule),
	}
}

// ResolvePath maps an import path to its label and absolute path.
// Relative paths are joined with the base path and the script extension is forced.
func (r *ModuleResolver) ResolvePath(importPath string) (string, m.Path, error) {
	label := importPath
	if !filepath.IsAbs(label) {
		label = filepath.Join(string(r.basePath), label)
	}

	label = strings.TrimSuffix(label, filepath.Ext(label)) + adapter.ScriptExtension

	abs, err := r.fs.Abs(m.Path(label))
	if err != nil {
		return "", "", fmt.Errorf("failed to resolve %s: %w", importPath, err)
	}

	return filepath.Clean(label), abs, nil
}

// Resolve returns the compiled module for importPath, compiling it on the
// first request. from and pos locate the import for error reporting.
func (r *ModuleResolver) Resolve(_ context.Context, importPath, from string, pos m.Position) (*CompiledModule, error) {
	label, abs, err := r.ResolvePath(importPath)
	if err != nil {
		return nil, &ModuleNotFoundError{ImportPath: importPath, Source: from, Position: pos, Err: err}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if module, ok := r.cache[abs]; ok {
		return module, nil
	}

	content, err := r.fs.ReadFile(abs)
	if err != nil {
		slog.Debug("Module not found", "import", importPath, "resolved", abs, "error", err)
		return nil, &ModuleNotFoundError{ImportPath: importPath, Resolved: abs, Source: from, Position: pos, Err: err}
	}

	source := r.instrument(string(content), label)

	program, err := goja.Compile(label, moduleWrapperHead+source+moduleWrapperTail, false)
	if err != nil {
		return nil, &ModuleError{Name: importPath, Source: label, Position: pos, Err: err}
	}

	module := &CompiledModule{Path: abs, Label: label, Program: program}
	r.cache[abs] = module

	slog.Debug("Compiled module", "import", importPath, "resolved", abs)

	return module, nil
}

// CompileScript compiles an entry file as a plain script. Entry files are not
// cached. The raw content is returned for error snippets.
func (r *ModuleResolver) CompileScript(_ context.Context, path m.Path) (*CompiledModule, string, error) {
	content, err := r.fs.ReadFile(path)
	if err != nil {
		return nil, "", &ModuleNotFoundError{ImportPath: string(path), Resolved: path, Err: err}
	}

	label := string(path)

	program, err := goja.Compile(label, r.instrument(string(content), label), false)
	if err != nil {
		return nil, string(content), err
	}

	return &CompiledModule{Path: path, Label: label, Program: program}, string(content), nil
}

// Cached reports how many modules have been compiled.
func (r *ModuleResolver) Cached() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.cache)
}

func (r *ModuleResolver) instrument(content, label string) string {
	if r.coverage == nil {
		return content
	}

	return coverage.InstrumentSource(content, label, r.coverage)
}

// moduleLoader evaluates compiled modules inside one runtime and caches
// their module objects.
type moduleLoader struct {
	ctx      context.Context
	resolver *ModuleResolver
	rt       *goja.Runtime
	require  goja.Value
	modules  map[m.Path]*goja.Object
}

func newModuleLoader(ctx context.Context, resolver *ModuleResolver, rt *goja.Runtime) *moduleLoader {
	return &moduleLoader{
		ctx:      ctx,
		resolver: resolver,
		rt:       rt,
		modules:  make(map[m.Path]*goja.Object),
	}
}

// load returns the exports of importPath. A module required again while it
// is still evaluating yields its partial exports.
func (l *moduleLoader) load(importPath, from string, pos m.Position) (goja.Value, error) {
	compiled, err := l.resolver.Resolve(l.ctx, importPath, from, pos)
	if err != nil {
		return nil, err
	}

	if module, ok := l.modules[compiled.Path]; ok {
		return module.Get("exports"), nil
	}

	module := l.rt.NewObject()
	exports := l.rt.NewObject()
	_ = module.Set("exports", exports)
	_ = module.Set("id", compiled.Label)
	l.modules[compiled.Path] = module

	if err := l.evaluate(compiled, module, exports); err != nil {
		delete(l.modules, compiled.Path)
		return nil, &ModuleError{Name: importPath, Source: compiled.Label, Position: pos, Err: err}
	}

	return module.Get("exports"), nil
}

func (l *moduleLoader) evaluate(compiled *CompiledModule, module, exports *goja.Object) error {
	wrapper, err := l.rt.RunProgram(compiled.Program)
	if err != nil {
		return err
	}

	fn, ok := goja.AssertFunction(wrapper)
	if !ok {
		return fmt.Errorf("module %s did not compile to a function", compiled.Label)
	}

	_, err = fn(goja.Undefined(),
		exports,
		l.require,
		module,
		l.rt.ToValue(string(compiled.Path)),
		l.rt.ToValue(filepath.Dir(string(compiled.Path))),
	)

	return err
}
