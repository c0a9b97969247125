package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dop251/goja"
	"github.com/dop251/goja/file"
	"github.com/dop251/goja/parser"

	"gest.dev/pkg/gest/internal/domain/coverage"
	m "gest.dev/pkg/gest/internal/model"
)

const moduleNotFoundHint = "Hint: imports are resolved against basePath and always use the .js extension."

// Engine errors surfaced as Error objects. Anything else is treated as a
// value thrown by the script itself.
var nativeErrorMessages = map[string]string{
	"ReferenceError": "Access of an unknown variable or property",
	"TypeError":      "Type mismatch",
	"RangeError":     "Value out of range",
	"SyntaxError":    "Parsing Error",
	"URIError":       "Malformed URI",
	"EvalError":      "Eval error",
}

var (
	exceptionFramePattern = regexp.MustCompile(`^\tat (?:(.*) \()?(.+?):(\d+):(\d+)\(\d+\)\)?$`)
	syntaxPositionPattern = regexp.MustCompile(`^(?:(.*): )?Line (\d+):(\d+) (.*)$`)
)

// StackTrace translates err into frames ordered outermost first; the last
// frame is the innermost error. parentSource labels frames whose error does
// not carry its own source. It never panics and returns no frames for a nil
// error or an explicit script exit.
//
//nolint:cyclop // one arm per error kind
func StackTrace(err error, parentSource string) []m.StackFrame {
	if err == nil || errors.Is(err, ErrScriptExit) {
		return nil
	}

	switch e := err.(type) {
	case *FunctionCallError:
		source := orDefault(e.Source, parentSource)
		frame := m.StackFrame{Message: "Error in function call: " + e.Name, Position: e.Position, Source: source}

		return append([]m.StackFrame{frame}, StackTrace(e.Err, source)...)
	case *ModuleError:
		frame := m.StackFrame{Message: "Error in module: " + e.Name, Position: e.Position, Source: parentSource}
		return append([]m.StackFrame{frame}, StackTrace(e.Err, orDefault(e.Source, parentSource))...)
	case *ModuleNotFoundError:
		return []m.StackFrame{{
			Message:  fmt.Sprintf("Module not found: %s. %s", e.ImportPath, moduleNotFoundHint),
			Position: e.Position,
			Source:   orDefault(e.Source, parentSource),
		}}
	case *OutputTypeError:
		return []m.StackFrame{{Message: "Output type mismatch: " + e.Error(), Source: parentSource}}
	case *coverage.UnregisteredSiteError:
		return []m.StackFrame{{
			Message:  "Instrumentation drift: " + e.Error(),
			Position: m.Position{Line: e.Key.Line},
			Source:   e.Key.Source,
		}}
	case *goja.Exception:
		return exceptionFrames(e, parentSource)
	case *goja.InterruptedError:
		return interruptFrames(e, parentSource)
	case *goja.StackOverflowError:
		frame := m.StackFrame{Message: "Stack limit exceeded: maximum call stack size exceeded", Source: parentSource}
		if parsed := parseExceptionFrames(e.String()); len(parsed) > 0 {
			frame.Source = orDefault(parsed[0].source, parentSource)
			frame.Position = parsed[0].position
		}

		return []m.StackFrame{frame}
	case *goja.CompilerSyntaxError:
		return []m.StackFrame{compilerFrame("Parsing Error: ", e.Message, e.File, e.Offset, parentSource)}
	case *goja.CompilerReferenceError:
		return []m.StackFrame{compilerFrame("Parsing Error: invalid reference: ", e.Message, e.File, e.Offset, parentSource)}
	case parser.ErrorList:
		frames := make([]m.StackFrame, 0, len(e))
		for _, parseErr := range e {
			frames = append(frames, parserFrame(parseErr, parentSource))
		}

		return frames
	case *parser.Error:
		return []m.StackFrame{parserFrame(e, parentSource)}
	default:
		if strings.Contains(err.Error(), "call stack size") {
			return []m.StackFrame{{Message: "Stack limit exceeded: " + err.Error(), Source: parentSource}}
		}

		return []m.StackFrame{{Message: "Unknown error: " + err.Error(), Source: parentSource}}
	}
}

// IsScriptThrow reports whether the innermost error is a value thrown by the
// script, as opposed to an engine, host or parse error.
func IsScriptThrow(err error) bool {
	ex, ok := innermost(err).(*goja.Exception)
	if !ok {
		return false
	}

	_, isThrow := thrownValue(ex)

	return isThrow
}

// ThrownDetails returns the message and status of a script throw. ok is false
// when err is not a script throw.
func ThrownDetails(err error) (message, status string, ok bool) {
	ex, isException := innermost(err).(*goja.Exception)
	if !isException {
		return "", "", false
	}

	frame, isThrow := thrownValue(ex)
	if !isThrow {
		return "", "", false
	}

	return frame.Message, frame.Status, true
}

// FormatStackTrace renders frames innermost first beneath header.
func FormatStackTrace(header string, frames []m.StackFrame) string {
	var b strings.Builder

	b.WriteString(header)

	for i := len(frames) - 1; i >= 0; i-- {
		frame := frames[i]
		b.WriteString("\n    ")
		b.WriteString(frame.Message)

		if frame.Status != "" {
			fmt.Fprintf(&b, " (status %s)", frame.Status)
		}

		b.WriteString("\n      at ")
		b.WriteString(frame.Location())
	}

	return b.String()
}

// SourceSnippet renders the line at pos with one line of context on either
// side and a caret under the column.
func SourceSnippet(content string, pos m.Position) string {
	if !pos.IsKnown() {
		return ""
	}

	lines := strings.Split(content, "\n")
	if pos.Line > len(lines) {
		return ""
	}

	column := pos.Column
	if column < 1 {
		column = 1
	}

	var b strings.Builder
	if pos.Line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", pos.Line-1, lines[pos.Line-2])
	}

	fmt.Fprintf(&b, "%4d | %s\n", pos.Line, lines[pos.Line-1])
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", column-1))

	if pos.Line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", pos.Line+1, lines[pos.Line])
	}

	return b.String()
}

func innermost(err error) error {
	for {
		call, ok := err.(*FunctionCallError)
		if !ok {
			return err
		}

		err = call.Err
	}
}

type exceptionFrame struct {
	function string
	source   string
	position m.Position
}

// parseExceptionFrames extracts script frames, innermost first, from the
// textual trace of an exception. Native frames are skipped.
func parseExceptionFrames(trace string) []exceptionFrame {
	var frames []exceptionFrame

	for _, line := range strings.Split(trace, "\n") {
		match := exceptionFramePattern.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if match == nil {
			continue
		}

		lineNumber, _ := strconv.Atoi(match[3])
		column, _ := strconv.Atoi(match[4])
		frames = append(frames, exceptionFrame{
			function: match[1],
			source:   match[2],
			position: m.Position{Line: lineNumber, Column: column},
		})
	}

	return frames
}

func exceptionFrames(ex *goja.Exception, parentSource string) []m.StackFrame {
	parsed := parseExceptionFrames(ex.String())

	var frames []m.StackFrame

	// Frame i was entered from the call site recorded in frame i+1.
	for i := len(parsed) - 1; i >= 1; i-- {
		frames = append(frames, m.StackFrame{
			Message:  "Error in function call: " + orDefault(parsed[i-1].function, "<anonymous>"),
			Position: parsed[i].position,
			Source:   orDefault(parsed[i].source, parentSource),
		})
	}

	source := parentSource
	var position m.Position

	if len(parsed) > 0 {
		source = orDefault(parsed[0].source, parentSource)
		position = parsed[0].position
	}

	if host := hostError(ex); host != nil {
		return append(frames, StackTrace(host, source)...)
	}

	leaf, _ := thrownValue(ex)
	leaf.Source = source
	leaf.Position = position

	return append(frames, leaf)
}

// thrownValue builds the leaf frame for an exception and reports whether it
// is a value thrown by the script.
func thrownValue(ex *goja.Exception) (m.StackFrame, bool) {
	value := ex.Value()

	obj, ok := value.(*goja.Object)
	if !ok || obj == nil {
		return m.StackFrame{Message: valueString(value)}, true
	}

	if hostError(ex) != nil {
		return m.StackFrame{Message: "Host error: " + valueString(value)}, false
	}

	message := propString(obj, "message")
	if prefix, native := nativeErrorMessages[propString(obj, "name")]; native {
		if strings.Contains(message, "call stack size") {
			prefix = "Stack limit exceeded"
		}

		return m.StackFrame{Message: prefix + ": " + message}, false
	}

	if !hasProp(obj, "message") {
		message = valueString(value)
	}

	return m.StackFrame{Message: message, Status: propString(obj, "status")}, true
}

// hostError returns the Go error carried by a GoError thrown from a host function.
func hostError(ex *goja.Exception) error {
	obj, ok := ex.Value().(*goja.Object)
	if !ok || obj == nil || propString(obj, "name") != "GoError" {
		return nil
	}

	carried := obj.Get("value")
	if carried == nil {
		return nil
	}

	err, _ := carried.Export().(error)

	return err
}

func interruptFrames(e *goja.InterruptedError, parentSource string) []m.StackFrame {
	cause, _ := e.Value().(error)

	switch {
	case errors.Is(cause, ErrScriptExit):
		return nil
	case errors.Is(cause, ErrTestTimeout):
		return []m.StackFrame{{Message: "Test timed out", Source: parentSource}}
	default:
		return []m.StackFrame{{Message: fmt.Sprintf("Script interrupted: %v", e.Value()), Source: parentSource}}
	}
}

// compilerFrame locates a compile error. Errors raised while parsing carry
// their position only in the message ("name: Line 3:5 Unexpected token").
func compilerFrame(prefix, message string, f *file.File, offset int, parentSource string) m.StackFrame {
	frame := m.StackFrame{Message: prefix + message, Source: parentSource}

	if f != nil {
		pos := f.Position(offset)
		frame.Position = m.Position{Line: pos.Line, Column: pos.Column}
		frame.Source = orDefault(pos.Filename, parentSource)

		return frame
	}

	if match := syntaxPositionPattern.FindStringSubmatch(firstLine(message)); match != nil {
		line, _ := strconv.Atoi(match[2])
		column, _ := strconv.Atoi(match[3])
		frame.Message = prefix + match[4]
		frame.Position = m.Position{Line: line, Column: column}
		frame.Source = orDefault(match[1], parentSource)
	}

	return frame
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}

	return s
}

func parserFrame(e *parser.Error, parentSource string) m.StackFrame {
	return m.StackFrame{
		Message:  "Parsing Error: " + e.Message,
		Position: m.Position{Line: e.Position.Line, Column: e.Position.Column},
		Source:   orDefault(e.Position.Filename, parentSource),
	}
}

func hasProp(obj *goja.Object, name string) bool {
	value := obj.Get(name)
	return value != nil && !goja.IsUndefined(value) && !goja.IsNull(value)
}

func propString(obj *goja.Object, name string) string {
	if !hasProp(obj, name) {
		return ""
	}

	return obj.Get(name).String()
}

func valueString(value goja.Value) string {
	if value == nil {
		return ""
	}

	return value.String()
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}

	return value
}
