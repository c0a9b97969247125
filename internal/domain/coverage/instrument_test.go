package coverage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "gest.dev/pkg/gest/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		line string
		want LineKind
	}{
		{"function header", "function add(a, b) {", FunctionDef},
		{"one line function", "function add(a, b) { return a + b; }", FunctionDef},
		{"function expression", "const f = function named(x) {", FunctionDef},
		{"call statement", `print("hello");`, CallStatement},
		{"test registration", `test("adds", () => expect(1 + 1).to_be(2));`, CallStatement},
		{"call assignment", "let total = add(1, 2);", CallStatement},
		{"let assignment", "let x = 5;", Assignment},
		{"compound assignment", "  total += 1;", Assignment},
		{"member assignment", `module.exports = add;`, Assignment},
		{"if header", "if (x > 5) {", Branch},
		{"else if header", "} else if (x < 0) {", Branch},
		{"else header", "} else {", Branch},
		{"throw", `throw { message: "boom", status: 42 };`, Throw},
		{"return call", "return add(a, b);", Plain},
		{"return assignment", "return x = 1;", Plain},
		{"comparison", "x == y;", Plain},
		{"missing semicolon", "let x = 5", Plain},
		{"closing brace", "});", Plain},
		{"comment", "// call(me);", Plain},
		{"blank", "", Plain},
		{"inline if", "if (x) foo();", Plain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.line).Kind, "line %q", tt.line)
		})
	}
}

func TestClassify_FunctionNameAndInsertOffset(t *testing.T) {
	line := "function add(a, b) { return a + b; }"

	class := Classify(line)

	assert.Equal(t, "add", class.Name)
	assert.Equal(t, "function add(a, b) {", line[:class.Insert])
}

func TestInstrumentLine(t *testing.T) {
	tests := []struct {
		name  string
		index int
		line  string
		want  string
		site  m.SiteKey
	}{
		{
			name:  "function",
			index: 0,
			line:  "function add(a, b) {",
			want:  `function add(a, b) {__gest_cov_fn("add","lib/sum.js",1);`,
			site:  m.SiteKey{Kind: m.SiteFunction, Label: "add", Source: "lib/sum.js", Line: 1},
		},
		{
			name:  "statement",
			index: 3,
			line:  "  let x = 5;",
			want:  `  let x = 5;__gest_cov_stmt("lib/sum.js",4);`,
			site:  m.SiteKey{Kind: m.SiteStatement, Source: "lib/sum.js", Line: 4},
		},
		{
			name:  "branch",
			index: 4,
			line:  "  if (x) {",
			want:  `  if (x) {__gest_cov_branch("lib/sum.js",5);`,
			site:  m.SiteKey{Kind: m.SiteBranch, Source: "lib/sum.js", Line: 5},
		},
		{
			name:  "throw is prepended",
			index: 9,
			line:  `  throw "boom";`,
			want:  `__gest_cov_stmt("lib/sum.js",10);  throw "boom";`,
			site:  m.SiteKey{Kind: m.SiteStatement, Source: "lib/sum.js", Line: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewRegistry()

			got := InstrumentLine(tt.index, tt.line, "lib/sum.js", registry)

			assert.Equal(t, tt.want, got)

			sites := registry.Sites("lib/sum.js")
			require.Len(t, sites, 1)
			assert.Equal(t, tt.site, sites[0].SiteKey)
			assert.False(t, sites[0].Hit)
		})
	}
}

func TestInstrumentLine_PlainLineIsUntouched(t *testing.T) {
	registry := NewRegistry()

	got := InstrumentLine(0, "return a + b;", "x.js", registry)

	assert.Equal(t, "return a + b;", got)
	assert.Empty(t, registry.Sources())
}

func TestInstrumentLine_QuotesSourcePath(t *testing.T) {
	registry := NewRegistry()

	got := InstrumentLine(0, "foo();", `dir "q"/x.js`, registry)

	assert.Equal(t, `foo();__gest_cov_stmt("dir \"q\"/x.js",1);`, got)
}

func TestInstrumentSource_PreservesLineCount(t *testing.T) {
	content := strings.Join([]string{
		"function add(a, b) {",
		"  if (a > b) {",
		"    return a + b;",
		"  } else {",
		"    throw \"nope\";",
		"  }",
		"}",
		"module.exports = add;",
	}, "\n")
	registry := NewRegistry()

	out := InstrumentSource(content, "add.js", registry)

	assert.Equal(t, strings.Count(content, "\n"), strings.Count(out, "\n"))

	report := registry.Report()
	require.Len(t, report, 1)
	assert.Equal(t, 1, report[0].Functions.Total)
	assert.Equal(t, 2, report[0].Branches.Total)
	assert.Equal(t, 2, report[0].Statements.Total)
	assert.Equal(t, []int{5, 8}, report[0].UncoveredLines)
}

func TestInstrumentSource_BracelessBodies(t *testing.T) {
	tests := []struct {
		name    string
		content []string
		want    []string
	}{
		{
			name:    "throw under if",
			content: []string{"if (bad)", `  throw new Error("bad");`},
			want:    []string{"if (bad)", `  {__gest_cov_stmt("b.js",2);throw new Error("bad");}`},
		},
		{
			name:    "assignment under if",
			content: []string{"if (x)", "  y = 1;"},
			want:    []string{"if (x)", `  {y = 1;__gest_cov_stmt("b.js",2);}`},
		},
		{
			name:    "if and else",
			content: []string{"if (x)", "  first();", "else", "  second();"},
			want: []string{
				"if (x)", `  {first();__gest_cov_stmt("b.js",2);}`,
				"else", `  {second();__gest_cov_stmt("b.js",4);}`,
			},
		},
		{
			name:    "loop body after comment",
			content: []string{"for (const n of list)", "  // sum it", "  total += n;"},
			want:    []string{"for (const n of list)", "  // sum it", `  {total += n;__gest_cov_stmt("b.js",3);}`},
		},
		{
			name:    "nested headers",
			content: []string{"while (busy)", "  if (ready)", "    go();"},
			want:    []string{"while (busy)", "  if (ready)", `    {go();__gest_cov_stmt("b.js",3);}`},
		},
		{
			name:    "block body is unaffected",
			content: []string{"if (x) {", "  y = 1;", "}", "z = 2;"},
			want:    []string{`if (x) {__gest_cov_branch("b.js",1);`, `  y = 1;__gest_cov_stmt("b.js",2);`, "}", `z = 2;__gest_cov_stmt("b.js",4);`},
		},
		{
			name:    "statement after the body is top level again",
			content: []string{"if (x)", "  y = 1;", "z = 2;"},
			want:    []string{"if (x)", `  {y = 1;__gest_cov_stmt("b.js",2);}`, `z = 2;__gest_cov_stmt("b.js",3);`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := InstrumentSource(strings.Join(tt.content, "\n"), "b.js", NewRegistry())

			assert.Equal(t, tt.want, strings.Split(out, "\n"))
		})
	}
}

func TestInstrumentSource_BracelessBodyIsOnlyHitWhenItRuns(t *testing.T) {
	registry := NewRegistry()

	InstrumentSource("if (x)\n  y = 1;\nz = 2;", "b.js", registry)
	require.NoError(t, registry.StatementCalled("b.js", 3))

	report := registry.Report()
	require.Len(t, report, 1)
	assert.Equal(t, m.Ratio{Hit: 1, Total: 2}, report[0].Statements)
	assert.Equal(t, []int{2}, report[0].UncoveredLines)
}

func TestInstrumentSource_ClassBodies(t *testing.T) {
	content := []string{
		"class Counter {",
		"  count = 0;",
		`  label = name("counter");`,
		"  increment() {",
		"    this.count += 1;",
		"  }",
		"}",
		"const c = new Counter();",
		"module.exports = class extends Counter {",
		"  step = 2;",
		"};",
		"c.increment();",
	}

	want := []string{
		"class Counter {",
		"  count = 0;",
		`  label = name("counter");`,
		"  increment() {",
		`    this.count += 1;__gest_cov_stmt("c.js",5);`,
		"  }",
		"}",
		`const c = new Counter();__gest_cov_stmt("c.js",8);`,
		"module.exports = class extends Counter {",
		"  step = 2;",
		"};",
		`c.increment();__gest_cov_stmt("c.js",12);`,
	}

	registry := NewRegistry()
	out := InstrumentSource(strings.Join(content, "\n"), "c.js", registry)

	assert.Equal(t, want, strings.Split(out, "\n"))

	report := registry.Report()
	require.Len(t, report, 1)
	assert.Equal(t, 3, report[0].Statements.Total)
}

func TestInstrumentSource_BracesInStringsAreIgnored(t *testing.T) {
	content := []string{
		"class Box {",
		`  open = "{";`,
		"  size = 1; // }",
		"}",
		"x = 1;",
	}

	out := InstrumentSource(strings.Join(content, "\n"), "s.js", NewRegistry())

	lines := strings.Split(out, "\n")
	assert.Equal(t, `  open = "{";`, lines[1])
	assert.Equal(t, "  size = 1; // }", lines[2])
	assert.Equal(t, `x = 1;__gest_cov_stmt("s.js",5);`, lines[4])
}
