package coverage

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Names of the host callbacks the instrumented code calls.
const (
	FunctionCallback  = "__gest_cov_fn"
	StatementCallback = "__gest_cov_stmt"
	BranchCallback    = "__gest_cov_branch"
)

// LineKind is the classification of a single source line.
type LineKind int

// Line kinds in classification order. The first matching kind wins.
const (
	Plain LineKind = iota
	FunctionDef
	CallStatement
	Assignment
	Branch
	Throw
)

func (k LineKind) String() string {
	switch k {
	case FunctionDef:
		return "function"
	case CallStatement:
		return "call"
	case Assignment:
		return "assignment"
	case Branch:
		return "branch"
	case Throw:
		return "throw"
	default:
		return "plain"
	}
}

// Classification is the result of classifying a line.
type Classification struct {
	Kind LineKind
	// Name is the declared function name for FunctionDef lines.
	Name string
	// Insert is the byte offset right after the opening brace for FunctionDef lines.
	Insert int
}

// Recorder receives the sites discovered while instrumenting.
type Recorder interface {
	AddFunction(label, source string, line int)
	AddStatement(source string, line int)
	AddBranch(source string, line int)
}

var (
	functionDefPattern = regexp.MustCompile(`\bfunction\s+([A-Za-z_$][\w$]*)\s*\([^)]*\)\s*\{`)
	callPattern        = regexp.MustCompile(`^\s*[^\s(].*\(.*\)\s*;\s*$`)
	assignmentPattern  = regexp.MustCompile(`^\s*(?:(?:let|const|var)\s+)?[\w$.\[\]'"]+\s*[-+*/%]?=[^=].*;\s*$`)
	branchPattern      = regexp.MustCompile(`^\s*(?:\}\s*)?(?:else\s+if\b|if\b|else\b).*\{\s*$`)
	throwPattern       = regexp.MustCompile(`^\s*throw\b`)
	// Lines led by these keywords either leave the block or open a
	// construct, so nothing may be appended to them as a statement.
	controlPattern = regexp.MustCompile(`^\s*(?:\}\s*)?(?:return|throw|if|else|for|while|switch|case|default|do|break|continue)\b`)
	// A header whose body is the next statement rather than a block.
	bracelessHeaderPattern = regexp.MustCompile(`^\s*(?:\}\s*)?(?:(?:(?:else\s+)?if|for|while)\s*\(.*\)|else|do)\s*$`)
	classPattern           = regexp.MustCompile(`(?:^\s*(?:export\s+(?:default\s+)?)?|[=(,:]\s*)class\b`)
)

// Classify returns the kind of line, checking rules in a fixed order.
func Classify(line string) Classification {
	if strings.HasPrefix(strings.TrimSpace(line), "//") {
		return Classification{Kind: Plain}
	}

	if loc := functionDefPattern.FindStringSubmatchIndex(line); loc != nil {
		return Classification{Kind: FunctionDef, Name: line[loc[2]:loc[3]], Insert: loc[1]}
	}

	control := controlPattern.MatchString(line)

	switch {
	case !control && callPattern.MatchString(line):
		return Classification{Kind: CallStatement}
	case !control && assignmentPattern.MatchString(line):
		return Classification{Kind: Assignment}
	case branchPattern.MatchString(line):
		return Classification{Kind: Branch}
	case throwPattern.MatchString(line):
		return Classification{Kind: Throw}
	}

	return Classification{Kind: Plain}
}

// InstrumentLine rewrites one line with the matching probe and registers its
// site. index is the 0-based line index; sites use index+1.
func InstrumentLine(index int, line, source string, recorder Recorder) string {
	lineNumber := index + 1
	class := Classify(line)

	switch class.Kind {
	case FunctionDef:
		recorder.AddFunction(class.Name, source, lineNumber)
		probe := fmt.Sprintf("%s(%s,%s,%d);", FunctionCallback, strconv.Quote(class.Name), strconv.Quote(source), lineNumber)

		return line[:class.Insert] + probe + line[class.Insert:]
	case CallStatement, Assignment:
		recorder.AddStatement(source, lineNumber)
		return line + statementProbe(source, lineNumber)
	case Branch:
		recorder.AddBranch(source, lineNumber)
		return line + fmt.Sprintf("%s(%s,%d);", BranchCallback, strconv.Quote(source), lineNumber)
	case Throw:
		recorder.AddStatement(source, lineNumber)
		return statementProbe(source, lineNumber) + line
	default:
		return line
	}
}

// InstrumentSource instruments every line of content. The line count is preserved.
// Members declared directly in a class body are left alone, and the body of a
// brace-less if, else, for, while or do is wrapped in a block with its probe.
func InstrumentSource(content, source string, recorder Recorder) string {
	lines := strings.Split(content, "\n")

	var scope scopeTracker

	for i, line := range lines {
		switch {
		case scope.inClassBody():
		case scope.bodyPending:
			lines[i] = instrumentBody(i, line, source, recorder)
		default:
			lines[i] = InstrumentLine(i, line, source, recorder)
		}

		scope.advance(line)
	}

	return strings.Join(lines, "\n")
}

// instrumentBody rewrites a line that is the whole body of a brace-less
// control statement. The probe must stay inside that body.
func instrumentBody(index int, line, source string, recorder Recorder) string {
	lineNumber := index + 1
	body := strings.TrimLeft(line, " \t")
	indent := line[:len(line)-len(body)]

	switch Classify(line).Kind {
	case CallStatement, Assignment:
		recorder.AddStatement(source, lineNumber)
		return indent + "{" + body + statementProbe(source, lineNumber) + "}"
	case Throw:
		recorder.AddStatement(source, lineNumber)
		return indent + "{" + statementProbe(source, lineNumber) + body + "}"
	default:
		return InstrumentLine(index, line, source, recorder)
	}
}

// scopeTracker follows brace depth across lines, skipping string literals and
// line comments.
type scopeTracker struct {
	depth int
	// classBodies holds the depth of every open class body, innermost last.
	classBodies []int
	// classHeader is set while a class header waits for its opening brace.
	classHeader bool
	// bodyPending is set after a brace-less control header.
	bodyPending bool
}

func (s *scopeTracker) inClassBody() bool {
	return len(s.classBodies) > 0 && s.classBodies[len(s.classBodies)-1] == s.depth
}

func (s *scopeTracker) advance(line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "//") {
		return
	}

	s.bodyPending = bracelessHeaderPattern.MatchString(line)

	classFrom := -1
	if s.classHeader {
		classFrom = 0
	}

	if loc := classPattern.FindStringIndex(line); loc != nil {
		classFrom = loc[1]
		s.classHeader = true
	}

	var quote byte

	for i := 0; i < len(line); i++ {
		c := line[i]

		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'' || c == '`':
			quote = c
		case c == '/' && i+1 < len(line) && line[i+1] == '/':
			return
		case c == '{':
			s.depth++

			if classFrom >= 0 && i >= classFrom {
				s.classBodies = append(s.classBodies, s.depth)
				s.classHeader = false
				classFrom = -1
			}
		case c == '}':
			if s.inClassBody() {
				s.classBodies = s.classBodies[:len(s.classBodies)-1]
			}

			if s.depth > 0 {
				s.depth--
			}
		}
	}
}

func statementProbe(source string, line int) string {
	return fmt.Sprintf("%s(%s,%d);", StatementCallback, strconv.Quote(source), line)
}
