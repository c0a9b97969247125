package domain

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"

	"gest.dev/pkg/gest/internal/adapter"
	"gest.dev/pkg/gest/internal/domain/coverage"
	m "gest.dev/pkg/gest/internal/model"
)

const maxCallStackSize = 4096

// Engine owns the services shared by every runtime of a run. Its mutex is
// held for the duration of a suite; host callbacks never take it.
type Engine struct {
	mu       sync.Mutex
	config   m.Config
	coverage *coverage.Registry
	resolver *ModuleResolver
	tests    *TestRegistry
	logs     *LogCapture
}

// NewEngine constructs an Engine with fresh services for config.
func NewEngine(config m.Config, fsAdapter adapter.SourceFSAdapter) *Engine {
	registry := coverage.NewRegistry()

	var instrumentation *coverage.Registry
	if config.Coverage {
		instrumentation = registry
	}

	return &Engine{
		config:   config,
		coverage: registry,
		resolver: NewModuleResolver(fsAdapter, config.BasePath, instrumentation),
		tests:    NewTestRegistry(),
		logs:     NewLogCapture(),
	}
}

// session is a runtime bound to a single test file.
type session struct {
	engine   *Engine
	rt       *goja.Runtime
	file     m.Path
	loader   *moduleLoader
	describe []string
}

func (e *Engine) newSession(ctx context.Context, file m.Path) *session {
	rt := goja.New()
	rt.SetMaxCallStackSize(maxCallStackSize)

	s := &session{
		engine: e,
		rt:     rt,
		file:   file,
		loader: newModuleLoader(ctx, e.resolver, rt),
	}
	s.install()

	return s
}

func (s *session) install() {
	s.set("test", s.hostTest)
	s.set("describe", s.hostDescribe)
	s.set("expect", s.hostExpect)
	s.set("exit", s.hostExit)
	s.set("require", s.hostRequire)
	s.loader.require = s.rt.Get("require")
	s.set("get_testing_utils", s.hostTestingUtils)

	s.set(coverage.FunctionCallback, s.hostFunctionCovered)
	s.set(coverage.StatementCallback, s.hostStatementCovered)
	s.set(coverage.BranchCallback, s.hostBranchCovered)

	levels := s.rt.NewObject()
	for _, level := range m.LogLevels {
		_ = levels.Set(strings.ToUpper(string(level)), &logLevelToken{Level: level})
		s.set("log_"+string(level), s.logFunc(level))
	}

	_ = s.rt.Set("LOG_LEVEL", levels)

	console := s.rt.NewObject()
	_ = console.Set("log", s.logFunc(m.LevelInfo))

	for _, level := range m.LogLevels {
		_ = console.Set(string(level), s.logFunc(level))
	}

	_ = s.rt.Set("console", console)
}

func (s *session) set(name string, fn func(goja.FunctionCall) goja.Value) {
	_ = s.rt.Set(name, fn)
}

// hostTestingUtils returns the helper object exposing set_env. Variables are
// set for the whole process and are not restored after the test.
func (s *session) hostTestingUtils(goja.FunctionCall) goja.Value {
	utils := s.rt.NewObject()
	setEnv := func(call goja.FunctionCall) goja.Value {
		name := call.Argument(0).String()
		s.throwIf(setEnvVar(name, call.Argument(1).String()))

		return goja.Undefined()
	}

	_ = utils.Set("set_env", setEnv)
	_ = utils.Set("setEnv", setEnv)

	return utils
}

func setEnvVar(name, value string) error {
	if err := os.Setenv(name, value); err != nil {
		return fmt.Errorf("set_env %q: %w", name, err)
	}

	return nil
}

func (s *session) hostTest(call goja.FunctionCall) goja.Value {
	name := call.Argument(0).String()

	fn, ok := goja.AssertFunction(call.Argument(1))
	if !ok {
		panic(s.rt.NewTypeError("test %q expects a function", name))
	}

	if len(s.describe) > 0 {
		name = strings.Join(s.describe, " > ") + " > " + name
	}

	s.engine.tests.AddTest(Test{Name: name, Fn: fn, File: s.file})

	return goja.Undefined()
}

func (s *session) hostDescribe(call goja.FunctionCall) goja.Value {
	name := call.Argument(0).String()

	fn, ok := goja.AssertFunction(call.Argument(1))
	if !ok {
		panic(s.rt.NewTypeError("describe %q expects a function", name))
	}

	s.describe = append(s.describe, name)
	defer func() { s.describe = s.describe[:len(s.describe)-1] }()

	if err := s.invoke(fn); err != nil {
		s.rethrow(err)
	}

	return goja.Undefined()
}

func (s *session) hostExpect(call goja.FunctionCall) goja.Value {
	value := valueFromScript(call.Argument(0), s.invoke)
	return s.expectObject(NewExpector(value, s.engine.tests, s.engine.logs))
}

func (s *session) hostExit(goja.FunctionCall) goja.Value {
	s.rt.Interrupt(ErrScriptExit)
	return goja.Undefined()
}

func (s *session) hostRequire(call goja.FunctionCall) goja.Value {
	importPath := call.Argument(0).String()
	from, pos := s.callerPosition()

	exports, err := s.loader.load(importPath, from, pos)
	if err != nil {
		panic(s.rt.NewGoError(err))
	}

	return exports
}

func (s *session) hostFunctionCovered(call goja.FunctionCall) goja.Value {
	err := s.engine.coverage.FunctionCalled(call.Argument(0).String(), call.Argument(1).String(), int(call.Argument(2).ToInteger()))
	s.throwIf(err)

	return goja.Undefined()
}

func (s *session) hostStatementCovered(call goja.FunctionCall) goja.Value {
	s.throwIf(s.engine.coverage.StatementCalled(call.Argument(0).String(), int(call.Argument(1).ToInteger())))
	return goja.Undefined()
}

func (s *session) hostBranchCovered(call goja.FunctionCall) goja.Value {
	s.throwIf(s.engine.coverage.BranchCalled(call.Argument(0).String(), int(call.Argument(1).ToInteger())))
	return goja.Undefined()
}

func (s *session) logFunc(level m.LogLevel) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, 0, len(call.Arguments))
		for _, arg := range call.Arguments {
			parts = append(parts, arg.String())
		}

		s.engine.logs.Add(strings.Join(parts, " "), level)

		return goja.Undefined()
	}
}

// invoke calls fn on this runtime. Interrupts raised inside fn are re-armed
// so the enclosing script stops as well.
func (s *session) invoke(fn goja.Callable) error {
	_, err := fn(goja.Undefined())

	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		s.rt.Interrupt(interrupted.Value())
	}

	return err
}

// rethrow propagates an error from a nested call back into the script.
// Interrupts are already re-armed by invoke and need no rethrow.
func (s *session) rethrow(err error) {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return
	}

	var exception *goja.Exception
	if errors.As(err, &exception) {
		panic(exception)
	}

	panic(s.rt.NewGoError(err))
}

func (s *session) throwIf(err error) {
	if err != nil {
		panic(s.rt.NewGoError(err))
	}
}

// callerPosition locates the innermost script frame calling into the host.
func (s *session) callerPosition() (string, m.Position) {
	for _, frame := range s.rt.CaptureCallStack(0, nil) {
		pos := frame.Position()
		if pos.Filename == "" || pos.Line == 0 {
			continue
		}

		return pos.Filename, m.Position{Line: pos.Line, Column: pos.Column}
	}

	return string(s.file), m.Position{}
}

// run executes fn with an optional timeout. The returned value is the
// function result.
func (s *session) run(fn goja.Callable, timeout time.Duration) (goja.Value, error) {
	if timeout > 0 {
		timer := time.AfterFunc(timeout, func() { s.rt.Interrupt(ErrTestTimeout) })
		defer timer.Stop()
	}

	return fn(goja.Undefined())
}

func (s *session) expectObject(expector *Expector) *goja.Object {
	obj := s.rt.NewObject()
	s.attachMatchers(obj, expector)

	negated := expector.Not()
	not := s.rt.ToValue(func(goja.FunctionCall) goja.Value {
		return s.expectObject(negated)
	}).(*goja.Object)
	s.attachMatchers(not, negated)
	_ = obj.Set("not", not)

	return obj
}

func (s *session) attachMatchers(obj *goja.Object, e *Expector) {
	matchers := []struct {
		names []string
		fn    func(goja.FunctionCall)
	}{
		{[]string{"to_be", "toBe"}, func(c goja.FunctionCall) { e.ToBe(valueFromScript(c.Argument(0), s.invoke)) }},
		{[]string{"to_exist", "toExist"}, func(goja.FunctionCall) { e.ToExist() }},
		{[]string{"to_match", "toMatch"}, func(c goja.FunctionCall) { e.ToMatch(patternArg(c, 0)) }},
		{[]string{"to_throw", "toThrow"}, func(goja.FunctionCall) { e.ToThrow() }},
		{[]string{"to_throw_message", "toThrowMessage"}, func(c goja.FunctionCall) { e.ToThrowMessage(patternArg(c, 0)) }},
		{[]string{"to_throw_status", "toThrowStatus"}, func(c goja.FunctionCall) { e.ToThrowStatus(s.argText(c, 0)) }},
		{[]string{"to_throw_status_and_message", "toThrowStatusAndMessage"}, func(c goja.FunctionCall) {
			e.ToThrowStatusAndMessage(s.argText(c, 0), patternArg(c, 1))
		}},
		{[]string{"to_log", "toLog"}, func(goja.FunctionCall) { e.ToLog() }},
		{[]string{"to_log_message", "toLogMessage"}, func(c goja.FunctionCall) { e.ToLogMessage(patternArg(c, 0)) }},
	}

	for _, matcher := range matchers {
		fn := matcher.fn
		for _, name := range matcher.names {
			_ = obj.Set(name, func(call goja.FunctionCall) goja.Value {
				fn(call)
				return goja.Undefined()
			})
		}
	}
}

func (s *session) argText(call goja.FunctionCall, i int) string {
	return plainText(valueFromScript(call.Argument(i), s.invoke))
}

// patternArg reads a matcher pattern. A regular expression literal
// contributes its source; flags are not carried over.
func patternArg(call goja.FunctionCall, i int) string {
	arg := call.Argument(i)
	if obj, ok := arg.(*goja.Object); ok && obj.ClassName() == "RegExp" {
		return obj.Get("source").String()
	}

	return arg.String()
}
