package domain

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gest.dev/pkg/gest/internal/adapter"
	"gest.dev/pkg/gest/internal/domain/coverage"
	m "gest.dev/pkg/gest/internal/model"
)

func TestModuleResolver_ResolvePath(t *testing.T) {
	resolver := NewModuleResolver(adapter.NewLocalSourceFSAdapter(), "lib", nil)

	tests := []struct {
		name  string
		path  string
		label string
	}{
		{"bare", "math", filepath.Join("lib", "math.js")},
		{"with extension", "math.js", filepath.Join("lib", "math.js")},
		{"other extension", "math.ts", filepath.Join("lib", "math.js")},
		{"nested", "./util/strings", filepath.Join("lib", "util", "strings.js")},
		{"absolute", "/opt/scripts/run", "/opt/scripts/run.js"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label, abs, err := resolver.ResolvePath(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.label, label)
			assert.True(t, filepath.IsAbs(string(abs)))
		})
	}
}

func TestModuleResolver_CachesCompiledModules(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "a.js", "module.exports = require(\"b\");\n")
	writeScript(t, dir, "b.js", "module.exports = require(\"c\");\n")
	writeScript(t, dir, "c.js", "module.exports = { value: 3 };\n")

	resolver := NewModuleResolver(adapter.NewLocalSourceFSAdapter(), m.Path(dir), nil)
	ctx := context.Background()

	a, err := resolver.Resolve(ctx, "a", "main.js", m.Position{})
	require.NoError(t, err)
	b, err := resolver.Resolve(ctx, "b", "a.js", m.Position{})
	require.NoError(t, err)
	c, err := resolver.Resolve(ctx, "./c.js", "b.js", m.Position{})
	require.NoError(t, err)

	again, err := resolver.Resolve(ctx, "c", "a.js", m.Position{})
	require.NoError(t, err)

	assert.Same(t, c, again)
	assert.NotSame(t, a, b)
	assert.Equal(t, filepath.Join(dir, "c.js"), c.Label)
	assert.Equal(t, 3, resolver.Cached())
}

func TestModuleResolver_LoadsThroughRuntime(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "a.js", "const b = require(\"b\");\nmodule.exports = { total: b.value + 1 };\n")
	writeScript(t, dir, "b.js", "const c = require(\"c\");\nexports.value = c.value * 2;\n")
	writeScript(t, dir, "c.js", "exports.value = 20;\n")

	resolver := NewModuleResolver(adapter.NewLocalSourceFSAdapter(), m.Path(dir), nil)
	rt := goja.New()
	loader := newModuleLoader(context.Background(), resolver, rt)

	require.NoError(t, rt.Set("require", func(call goja.FunctionCall) goja.Value {
		exports, err := loader.load(call.Argument(0).String(), "test.js", m.Position{})
		if err != nil {
			panic(rt.NewGoError(err))
		}

		return exports
	}))
	loader.require = rt.Get("require")

	exports, err := loader.load("a", "test.js", m.Position{})
	require.NoError(t, err)

	obj := exports.ToObject(rt)
	assert.Equal(t, int64(41), obj.Get("total").ToInteger())

	first, err := loader.load("c", "test.js", m.Position{})
	require.NoError(t, err)
	second, err := loader.load("c", "test.js", m.Position{})
	require.NoError(t, err)
	assert.Same(t, first.ToObject(rt), second.ToObject(rt))
}

func TestModuleResolver_Errors(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "broken.js", "module.exports = {;\n")

	resolver := NewModuleResolver(adapter.NewLocalSourceFSAdapter(), m.Path(dir), nil)
	pos := m.Position{Line: 2, Column: 7}

	_, err := resolver.Resolve(context.Background(), "missing", "main.js", pos)

	var notFound *ModuleNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing", notFound.ImportPath)
	assert.Equal(t, m.Path(filepath.Join(dir, "missing.js")), notFound.Resolved)
	assert.Equal(t, pos, notFound.Position)

	_, err = resolver.Resolve(context.Background(), "broken", "main.js", pos)

	var moduleErr *ModuleError
	require.ErrorAs(t, err, &moduleErr)
	assert.Equal(t, filepath.Join(dir, "broken.js"), moduleErr.Source)

	frames := StackTrace(err, "main.js")
	require.Len(t, frames, 2)
	assert.Equal(t, "Error in module: broken", frames[0].Message)
	assert.Contains(t, frames[1].Message, "Parsing Error")
	assert.Equal(t, 0, resolver.Cached())
}

func TestModuleResolver_InstrumentsWhenEnabled(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "lib.js", "function double(x) {\n  return x * 2;\n}\nexports.double = double;\n")

	registry := coverage.NewRegistry()
	resolver := NewModuleResolver(adapter.NewLocalSourceFSAdapter(), m.Path(dir), registry)

	_, err := resolver.Resolve(context.Background(), "lib", "main.js", m.Position{})
	require.NoError(t, err)

	sites := registry.Sites(filepath.Join(dir, "lib.js"))
	require.Len(t, sites, 2)
	assert.Equal(t, m.SiteFunction, sites[0].Kind)
	assert.Equal(t, "double", sites[0].Label)
	assert.Equal(t, m.SiteStatement, sites[1].Kind)
	assert.Equal(t, 4, sites[1].Line)
}

func TestModuleResolver_CompileScript(t *testing.T) {
	dir := t.TempDir()
	file := writeScript(t, dir, "entry.test.js", "test(\"x\", () => {});\n")

	resolver := NewModuleResolver(adapter.NewLocalSourceFSAdapter(), m.Path(dir), nil)

	compiled, content, err := resolver.CompileScript(context.Background(), file)
	require.NoError(t, err)
	assert.Equal(t, string(file), compiled.Label)
	assert.Equal(t, "test(\"x\", () => {});\n", content)
	assert.Equal(t, 0, resolver.Cached())

	_, _, err = resolver.CompileScript(context.Background(), m.Path(filepath.Join(dir, "nope.test.js")))

	var notFound *ModuleNotFoundError
	assert.ErrorAs(t, err, &notFound)
}
