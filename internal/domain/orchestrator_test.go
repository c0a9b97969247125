package domain

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gest.dev/pkg/gest/internal/adapter"
	m "gest.dev/pkg/gest/internal/model"
)

func writeScript(t *testing.T, dir, name, content string) m.Path {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return m.Path(path)
}

func newTestOrchestrator(dir string, coverage bool) Orchestrator {
	return NewOrchestrator(adapter.NewLocalSourceFSAdapter(), m.Config{
		BasePath: m.Path(dir),
		Coverage: coverage,
	})
}

func TestOrchestrator_PassingTestWithCoverage(t *testing.T) {
	dir := t.TempDir()
	file := writeScript(t, dir, "adds.test.js", `test("adds", () => { let x = 1 + 1; expect(x).to_be(2); });`)

	orch := newTestOrchestrator(dir, true)
	result := orch.RunSuite(context.Background(), file)

	assert.True(t, result.Passed)
	assert.Empty(t, result.Error)
	require.Len(t, result.Tests, 1)
	assert.Equal(t, "adds", result.Tests[0].Name)
	assert.Equal(t, m.Passed, result.Tests[0].Status)

	summary := orch.Summary()
	assert.Equal(t, 1, summary.SuitesPassed)
	assert.Equal(t, 0, summary.SuitesFailed)
	assert.Equal(t, 1, summary.TestsPassed)
	assert.False(t, summary.Failed())

	rows := orch.Coverage()
	require.Len(t, rows, 1)
	assert.Equal(t, string(file), rows[0].Source)
	assert.Equal(t, m.Ratio{Hit: 1, Total: 1}, rows[0].Statements)
	assert.Empty(t, rows[0].UncoveredLines)
}

func TestOrchestrator_TypeMismatchFailsSuite(t *testing.T) {
	dir := t.TempDir()
	file := writeScript(t, dir, "bad.test.js", `test("bad", () => { expect(1).to_be("1"); });`)

	orch := newTestOrchestrator(dir, false)
	result := orch.RunSuite(context.Background(), file)

	assert.False(t, result.Passed)
	require.Len(t, result.Tests, 1)
	assert.Equal(t, m.Failed, result.Tests[0].Status)
	assert.Contains(t, result.Tests[0].Reason, "Type mismatch")
	assert.Contains(t, result.Tests[0].Reason, "expected value to be")

	summary := orch.Summary()
	assert.Equal(t, 1, summary.SuitesFailed)
	assert.Equal(t, 1, summary.TestsFailed)
	assert.True(t, summary.Failed())
	assert.Nil(t, orch.Coverage())
}

func TestOrchestrator_RequiresModules(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "math.js", `function add(a, b) {
  return a + b;
}
module.exports = { add: add };
`)
	file := writeScript(t, dir, "math.test.js", `const math = require("math");
test("adds through module", () => {
  expect(math.add(2, 3)).to_be(5);
});
`)

	orch := newTestOrchestrator(dir, true)
	result := orch.RunSuite(context.Background(), file)

	require.Empty(t, result.Error)
	assert.True(t, result.Passed)

	var module *m.FileCoverage

	rows := orch.Coverage()
	for i := range rows {
		if rows[i].Source == filepath.Join(dir, "math.js") {
			module = &rows[i]
		}
	}

	require.NotNil(t, module)
	assert.Equal(t, m.Ratio{Hit: 1, Total: 1}, module.Functions)
	assert.Equal(t, m.Ratio{Hit: 1, Total: 1}, module.Statements)
}

func TestOrchestrator_SuiteErrors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		contains []string
	}{
		{
			name:     "unknown variable at top level",
			content:  "let a = 1;\nmissingFn();\n",
			contains: []string{"Eval Error:", "Access of an unknown variable or property", "missingFn();"},
		},
		{
			name:     "syntax error",
			content:  "test(\"broken\", () => {\n",
			contains: []string{"Compilation Error:", "Parsing Error"},
		},
		{
			name:     "missing module",
			content:  "const lib = require(\"nowhere\");\n",
			contains: []string{"Eval Error:", "Module not found: nowhere", moduleNotFoundHint},
		},
		{
			name:     "top level throw",
			content:  "throw { message: \"boom\", status: \"42\" };\n",
			contains: []string{"Eval Error:", "boom (status 42)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			file := writeScript(t, dir, "suite.test.js", tt.content)

			orch := newTestOrchestrator(dir, false)
			result := orch.RunSuite(context.Background(), file)

			assert.False(t, result.Passed)
			assert.Empty(t, result.Tests)

			for _, want := range tt.contains {
				assert.Contains(t, result.Error, want)
			}

			assert.Equal(t, 1, orch.Summary().SuitesFailed)
		})
	}
}

func TestOrchestrator_TestOutcomes(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		timeout  time.Duration
		status   m.TestStatus
		contains []string
	}{
		{
			name:    "throw matchers",
			content: "test(\"t\", () => {\n  expect(() => { throw { message: \"boom\", status: \"42\" }; }).to_throw_status_and_message(\"42\", \"boom\");\n});\n",
			status:  m.Passed,
		},
		{
			name:    "negated matcher",
			content: "test(\"t\", () => {\n  expect(1).not.to_be(2);\n  expect(\"abc\").not().to_match(\"^z\");\n});\n",
			status:  m.Passed,
		},
		{
			name:    "log matchers",
			content: "test(\"t\", () => {\n  log_warn(\"disk low\");\n  expect(LOG_LEVEL.WARN).to_log_message(\"disk\");\n  expect(LOG_LEVEL.ERROR).not.to_log();\n});\n",
			status:  m.Passed,
		},
		{
			name:    "exit stops without failing",
			content: "test(\"t\", () => {\n  expect(1).to_be(1);\n  exit();\n  expect(1).to_be(2);\n});\n",
			status:  m.Passed,
		},
		{
			name:    "regular expression literals",
			content: "test(\"t\", () => {\n  log_info(\"user 42 saved\");\n  expect(() => { throw new Error(\"boom\"); }).to_throw_message(/bo+m/);\n  expect(\"abc\").to_match(/^a.c$/);\n  expect(LOG_LEVEL.INFO).to_log_message(/user \\d+/);\n});\n",
			status:  m.Passed,
		},
		{
			name:     "negated kind mismatch",
			content:  "test(\"t\", () => {\n  expect(1).not().to_be(\"1\");\n});\n",
			status:   m.Failed,
			contains: []string{"Type mismatch: expected value to be string"},
		},
		{
			name:     "first failure wins",
			content:  "test(\"t\", () => {\n  expect(1).to_be(2);\n  expect(3).to_be(4);\n});\n",
			status:   m.Failed,
			contains: []string{"Expected value to be 2 but instead got 1"},
		},
		{
			name:     "returned value",
			content:  "test(\"t\", () => 42);\n",
			status:   m.Failed,
			contains: []string{"Output type mismatch", outputTypeHint},
		},
		{
			name:     "uncaught throw",
			content:  "test(\"t\", () => {\n  throw new TypeError(\"nope\");\n});\n",
			status:   m.Failed,
			contains: []string{"Error running test:", "Type mismatch: nope"},
		},
		{
			name:     "timeout",
			content:  "test(\"t\", () => {\n  while (true) {}\n});\n",
			timeout:  50 * time.Millisecond,
			status:   m.Failed,
			contains: []string{"Test timed out"},
		},
		{
			name:     "stack overflow",
			content:  "function recurse() { return recurse(); }\ntest(\"t\", () => {\n  recurse();\n});\n",
			status:   m.Failed,
			contains: []string{"Stack limit exceeded"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			file := writeScript(t, dir, "outcome.test.js", tt.content)

			orch := NewOrchestrator(adapter.NewLocalSourceFSAdapter(), m.Config{
				BasePath:    m.Path(dir),
				TestTimeout: tt.timeout,
			})
			result := orch.RunSuite(context.Background(), file)

			require.Empty(t, result.Error)
			require.Len(t, result.Tests, 1)
			assert.Equal(t, tt.status, result.Tests[0].Status, result.Tests[0].Reason)
			assert.Equal(t, tt.status == m.Passed, result.Passed)

			for _, want := range tt.contains {
				assert.Contains(t, result.Tests[0].Reason, want)
			}
		})
	}
}

func TestOrchestrator_LogsAreScopedToOneTest(t *testing.T) {
	dir := t.TempDir()
	file := writeScript(t, dir, "logs.test.js", `test("emits", () => {
  console.error("failure");
  expect(LOG_LEVEL.ERROR).to_log();
});
test("sees nothing", () => {
  expect(LOG_LEVEL.ERROR).not.to_log();
});
`)

	result := newTestOrchestrator(dir, false).RunSuite(context.Background(), file)

	require.Len(t, result.Tests, 2)
	assert.Equal(t, m.Passed, result.Tests[0].Status, result.Tests[0].Reason)
	assert.Equal(t, m.Passed, result.Tests[1].Status, result.Tests[1].Reason)
}

func TestOrchestrator_DescribePrefixesNames(t *testing.T) {
	dir := t.TempDir()
	file := writeScript(t, dir, "describe.test.js", `describe("math", () => {
  describe("add", () => {
    test("small", () => { expect(1 + 1).to_be(2); });
  });
  test("plain", () => { expect(true).to_be(true); });
});
test("top", () => { expect(0.5).to_be(0.5); });
`)

	result := newTestOrchestrator(dir, false).RunSuite(context.Background(), file)

	require.Len(t, result.Tests, 3)
	assert.Equal(t, "math > add > small", result.Tests[0].Name)
	assert.Equal(t, "math > plain", result.Tests[1].Name)
	assert.Equal(t, "top", result.Tests[2].Name)
	assert.True(t, result.Passed)
}

func TestOrchestrator_ExitAtTopLevelStillRunsRegisteredTests(t *testing.T) {
	dir := t.TempDir()
	file := writeScript(t, dir, "exit.test.js", `test("before", () => { expect(1).to_be(1); });
exit();
test("after", () => { expect(1).to_be(1); });
`)

	result := newTestOrchestrator(dir, false).RunSuite(context.Background(), file)

	assert.Empty(t, result.Error)
	require.Len(t, result.Tests, 1)
	assert.Equal(t, "before", result.Tests[0].Name)
	assert.True(t, result.Passed)
}

func TestOrchestrator_SharesModulesAcrossSuites(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "lib.js", "module.exports = { name: \"lib\" };\n")
	first := writeScript(t, dir, "a.test.js", "const lib = require(\"lib\");\ntest(\"a\", () => { expect(lib.name).to_be(\"lib\"); });\n")
	second := writeScript(t, dir, "b.test.js", "const lib = require(\"./lib.js\");\ntest(\"b\", () => { expect(lib.name).to_be(\"lib\"); });\n")

	orch := newTestOrchestrator(dir, false)
	assert.True(t, orch.RunSuite(context.Background(), first).Passed)
	assert.True(t, orch.RunSuite(context.Background(), second).Passed)

	impl, ok := orch.(*orchestrator)
	require.True(t, ok)
	assert.Equal(t, 1, impl.engine.resolver.Cached())

	summary := orch.Summary()
	assert.Equal(t, 2, summary.SuitesPassed)
	assert.Equal(t, 2, summary.TestsPassed)
}

func TestOrchestrator_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	file := writeScript(t, dir, "any.test.js", "test(\"t\", () => {});\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := newTestOrchestrator(dir, false).RunSuite(ctx, file)

	assert.False(t, result.Passed)
	assert.Contains(t, result.Error, "context canceled")
}

func TestNewOrchestratorFactory(t *testing.T) {
	factory := NewOrchestratorFactory(adapter.NewLocalSourceFSAdapter())

	first := factory(m.Config{})
	second := factory(m.Config{})

	assert.NotSame(t, first, second)
	assert.Equal(t, m.RunSummary{}, first.Summary())
}

func TestOrchestrator_CoverageKeepsBracelessBodiesIntact(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "lib.js", `function check(bad) {
  if (bad)
    throw new Error("bad");
  return 1;
}
function mark(x) {
  let y = 0;
  if (x)
    y = 1;
  return y;
}
module.exports = { check: check, mark: mark };
`)
	file := writeScript(t, dir, "lib.test.js", `const lib = require("lib");
test("skips the throw", () => {
  expect(lib.check(false)).to_be(1);
  expect(() => lib.check(true)).to_throw_message("bad");
  expect(lib.mark(false)).to_be(0);
});
`)

	for _, withCoverage := range []bool{false, true} {
		orch := newTestOrchestrator(dir, withCoverage)
		result := orch.RunSuite(context.Background(), file)

		require.Empty(t, result.Error, "coverage=%v", withCoverage)
		require.Len(t, result.Tests, 1)
		assert.Equal(t, m.Passed, result.Tests[0].Status, result.Tests[0].Reason)

		if !withCoverage {
			continue
		}

		var lib *m.FileCoverage

		rows := orch.Coverage()
		for i := range rows {
			if rows[i].Source == filepath.Join(dir, "lib.js") {
				lib = &rows[i]
			}
		}

		require.NotNil(t, lib)
		assert.Equal(t, []int{9}, lib.UncoveredLines)
	}
}

func TestOrchestrator_CoverageLoadsClassFields(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "counter.js", `class Counter {
  count = 0;
  increment() {
    this.count += 1;
  }
}
module.exports = { Counter: Counter };
`)
	file := writeScript(t, dir, "counter.test.js", `const { Counter } = require("counter");
test("counts", () => {
  const c = new Counter();
  c.increment();
  expect(c.count).to_be(1);
});
`)

	result := newTestOrchestrator(dir, true).RunSuite(context.Background(), file)

	require.Empty(t, result.Error)
	require.Len(t, result.Tests, 1)
	assert.Equal(t, m.Passed, result.Tests[0].Status, result.Tests[0].Reason)
}

func TestOrchestrator_TopLevelResultsDoNotLeakIntoLaterSuites(t *testing.T) {
	tests := []struct {
		name  string
		first string
	}{
		{"evaluation fails", "expect(1).to_be(2);\nlog_error(\"from a\");\nundefinedThing();\n"},
		{"no tests registered", "expect(1).to_be(2);\nlog_error(\"from a\");\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			first := writeScript(t, dir, "a.test.js", tt.first)
			second := writeScript(t, dir, "b.test.js", `test("clean", () => {
  expect(1).to_be(1);
  expect(LOG_LEVEL.ERROR).not.to_log();
});
`)

			orch := newTestOrchestrator(dir, false)
			orch.RunSuite(context.Background(), first)
			result := orch.RunSuite(context.Background(), second)

			require.Len(t, result.Tests, 1)
			assert.Equal(t, m.Passed, result.Tests[0].Status, result.Tests[0].Reason)
			assert.True(t, result.Passed)
		})
	}
}

func TestOrchestrator_TopLevelExpectationsDoNotFailFirstTest(t *testing.T) {
	dir := t.TempDir()
	file := writeScript(t, dir, "top.test.js", `expect(1).to_be(2);
test("first", () => { expect(true).to_be(true); });
`)

	result := newTestOrchestrator(dir, false).RunSuite(context.Background(), file)

	require.Len(t, result.Tests, 1)
	assert.Equal(t, m.Passed, result.Tests[0].Status, result.Tests[0].Reason)
}

func TestOrchestrator_TestingUtilsSetEnv(t *testing.T) {
	t.Setenv("GEST_SAMPLE_VALUE", "")

	dir := t.TempDir()
	file := writeScript(t, dir, "env.test.js", `test("sets env", () => {
  const utils = get_testing_utils();
  utils.set_env("GEST_SAMPLE_VALUE", "on");
});
`)

	result := newTestOrchestrator(dir, false).RunSuite(context.Background(), file)

	require.Len(t, result.Tests, 1)
	assert.Equal(t, m.Passed, result.Tests[0].Status, result.Tests[0].Reason)
	assert.Equal(t, "on", os.Getenv("GEST_SAMPLE_VALUE"))
}
