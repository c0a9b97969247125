package domain

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	m "gest.dev/pkg/gest/internal/model"
)

const unexpectedErrorHeader = "Unexpected error occurred when running tests."

// ResultSink receives the outcome of every matcher call.
type ResultSink interface {
	AddExpectResult(result m.ExpectationResult)
}

// LogSource answers log matcher queries.
type LogSource interface {
	HasLog(level m.LogLevel) bool
	HasMatchingLog(level m.LogLevel, pattern string) (bool, error)
	Logs() []m.CapturedLog
}

// Expector evaluates matchers against a single value. Every matcher call
// appends exactly one result to the sink.
type Expector struct {
	value   Value
	negated bool
	results ResultSink
	logs    LogSource
}

// NewExpector binds value to the result sink and log source.
func NewExpector(value Value, results ResultSink, logs LogSource) *Expector {
	return &Expector{value: value, results: results, logs: logs}
}

// Not returns an Expector with the opposite polarity.
func (e *Expector) Not() *Expector {
	return &Expector{value: e.value, negated: !e.negated, results: e.results, logs: e.logs}
}

// outcome is the positive reading of a matcher; polarity is applied by record.
type outcome struct {
	pass       bool
	failure    string
	negFailure string
}

func (e *Expector) record(o outcome) {
	if o.pass != e.negated {
		e.results.AddExpectResult(m.Pass())
		return
	}

	if e.negated {
		e.results.AddExpectResult(m.Fail(o.negFailure))
		return
	}

	e.results.AddExpectResult(m.Fail(o.failure))
}

func (e *Expector) fail(message string) {
	e.results.AddExpectResult(m.Fail(message))
}

func (e *Expector) unsupported() bool {
	if u, ok := e.value.(UnsupportedValue); ok {
		e.fail("Unsupported value: " + u.Description)
		return true
	}

	return false
}

// ToBe checks equality with expected.
func (e *Expector) ToBe(expected Value) {
	if e.unsupported() {
		return
	}

	equal, comparable := valuesEqual(e.value, expected)
	if !comparable {
		// A kind mismatch fails under either polarity.
		e.fail(fmt.Sprintf("Type mismatch: expected value to be %s %s but instead got %s %s",
			expected.Kind(), expected, e.value.Kind(), e.value))

		return
	}

	failure := fmt.Sprintf("Expected value to be %s but instead got %s", expected, e.value)
	if diff := stringDiff(expected, e.value); diff != "" {
		failure += "\n" + diff
	}

	e.record(outcome{
		pass:       equal,
		failure:    failure,
		negFailure: fmt.Sprintf("Expected value %s to not be %s but it was", e.value, expected),
	})
}

// ToExist checks that the value is not nothing.
func (e *Expector) ToExist() {
	if e.unsupported() {
		return
	}

	_, isNothing := e.value.(NothingValue)
	e.record(outcome{
		pass:       !isNothing,
		failure:    "Expected value to exist but it did not",
		negFailure: fmt.Sprintf("Expected value %s to not exist but it did", e.value),
	})
}

// ToMatch checks a string value against a regular expression.
func (e *Expector) ToMatch(pattern string) {
	if e.unsupported() {
		return
	}

	s, ok := e.value.(StringValue)
	if !ok {
		e.fail(fmt.Sprintf("Type mismatch: to_match expects a string but got %s %s", e.value.Kind(), e.value))
		return
	}

	re, err := compilePattern(pattern)
	if err != nil {
		e.fail(fmt.Sprintf("Invalid pattern %q: %v", pattern, err))
		return
	}

	e.record(outcome{
		pass:       re.MatchString(string(s)),
		failure:    fmt.Sprintf("Expected value %s to match pattern %s but it did not", s, pattern),
		negFailure: fmt.Sprintf("Expected value %s to not match pattern %s but it did", s, pattern),
	})
}

// ToThrow checks that calling the function throws.
func (e *Expector) ToThrow() {
	threw, _, _, ok := e.invoke("to_throw")
	if !ok {
		return
	}

	e.record(outcome{
		pass:       threw,
		failure:    "Expected function to throw but it did not",
		negFailure: "Expected function to not throw but it did",
	})
}

// ToThrowMessage checks that calling the function throws with a matching message.
func (e *Expector) ToThrowMessage(pattern string) {
	threw, message, _, ok := e.invoke("to_throw_message")
	if !ok {
		return
	}

	e.record(throwOutcome(threw, "message", pattern, message))
}

// ToThrowStatus checks that calling the function throws with a matching status.
func (e *Expector) ToThrowStatus(status string) {
	threw, _, actual, ok := e.invoke("to_throw_status")
	if !ok {
		return
	}

	e.record(throwOutcome(threw, "status", status, actual))
}

// ToThrowStatusAndMessage checks status first, then message, of a single call.
func (e *Expector) ToThrowStatusAndMessage(status, pattern string) {
	threw, message, actual, ok := e.invoke("to_throw_status_and_message")
	if !ok {
		return
	}

	result := throwOutcome(threw, "status", status, actual)
	if result.pass {
		result = throwOutcome(threw, "message", pattern, message)
		result.negFailure = fmt.Sprintf("Expected function to not throw error with status '%s' and message '%s' but it did", status, pattern)
	}

	e.record(result)
}

// ToLog checks that a log was captured at the value's level.
func (e *Expector) ToLog() {
	level, ok := e.level("to_log")
	if !ok {
		return
	}

	e.record(outcome{
		pass:       e.logs.HasLog(level),
		failure:    fmt.Sprintf("Expected a log with level '%s' but none was captured", level),
		negFailure: fmt.Sprintf("Expected no log with level '%s' but one was captured", level),
	})
}

// ToLogMessage checks that a log at the value's level matches pattern.
func (e *Expector) ToLogMessage(pattern string) {
	level, ok := e.level("to_log_message")
	if !ok {
		return
	}

	matched, err := e.logs.HasMatchingLog(level, pattern)
	if err != nil {
		e.fail(err.Error())
		return
	}

	captured := formatLogs(e.logs.Logs())
	e.record(outcome{
		pass: matched,
		failure: fmt.Sprintf("Expected a log with level '%s' matching '%s' but none was captured. Captured logs:%s",
			level, pattern, captured),
		negFailure: fmt.Sprintf("Expected no log with level '%s' matching '%s' but one was captured. Captured logs:%s",
			level, pattern, captured),
	})
}

// invoke runs the function value. ok is false when a failure was already
// recorded because the value is not a function or the call failed with
// something other than a script throw.
func (e *Expector) invoke(matcher string) (threw bool, message, status string, ok bool) {
	if e.unsupported() {
		return false, "", "", false
	}

	fn, isFunction := e.value.(FunctionValue)
	if !isFunction {
		e.fail(fmt.Sprintf("Type mismatch: %s expects a function but got %s %s", matcher, e.value.Kind(), e.value))
		return false, "", "", false
	}

	err := fn.Invoke()
	if err == nil {
		return false, "", "", true
	}

	message, status, isThrow := ThrownDetails(err)
	if !isThrow {
		e.fail(FormatStackTrace(unexpectedErrorHeader, StackTrace(err, "")))
		return false, "", "", false
	}

	return true, message, status, true
}

func (e *Expector) level(matcher string) (m.LogLevel, bool) {
	if e.unsupported() {
		return "", false
	}

	level, ok := e.value.(LogLevelValue)
	if !ok {
		e.fail(fmt.Sprintf("Type mismatch: %s expects a LOG_LEVEL but got %s %s", matcher, e.value.Kind(), e.value))
		return "", false
	}

	return m.LogLevel(level), true
}

func throwOutcome(threw bool, field, expected, actual string) outcome {
	if !threw {
		return outcome{
			failure:    "Expected function to throw but it did not",
			negFailure: "Expected function to not throw but it did",
		}
	}

	return outcome{
		pass:       textMatches(expected, actual),
		failure:    fmt.Sprintf("Expected function to throw error with %s '%s' but instead received '%s'", field, expected, actual),
		negFailure: fmt.Sprintf("Expected function to not throw error with %s '%s' but it did", field, expected),
	}
}

// textMatches accepts exact equality or a regular expression match.
func textMatches(pattern, actual string) bool {
	if pattern == actual {
		return true
	}

	re, err := compilePattern(pattern)
	if err != nil {
		return false
	}

	return re.MatchString(actual)
}

// valuesEqual compares two values. comparable is false for different kinds;
// integers and floats are both numbers and compare by value.
func valuesEqual(a, b Value) (equal, comparable bool) {
	if x, ok := number(a); ok {
		if y, ok := number(b); ok {
			return x == y, true
		}
	}

	if a.Kind() != b.Kind() {
		return false, false
	}

	switch x := a.(type) {
	case FunctionValue:
		return false, true
	case NothingValue:
		return true, true
	default:
		return x == b, true
	}
}

func number(v Value) (float64, bool) {
	switch n := v.(type) {
	case IntegerValue:
		return float64(n), true
	case FloatValue:
		return float64(n), true
	default:
		return 0, false
	}
}

// stringDiff returns a unified diff when both values are strings and either
// spans several lines.
func stringDiff(expected, actual Value) string {
	want, ok := expected.(StringValue)
	if !ok {
		return ""
	}

	got, ok := actual.(StringValue)
	if !ok || (!strings.Contains(string(want), "\n") && !strings.Contains(string(got), "\n")) {
		return ""
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(want)),
		B:        difflib.SplitLines(string(got)),
		FromFile: "Expected",
		ToFile:   "Received",
		Context:  1,
	})
	if err != nil {
		return ""
	}

	return diff
}

func formatLogs(logs []m.CapturedLog) string {
	if len(logs) == 0 {
		return " none"
	}

	var b strings.Builder
	for _, entry := range logs {
		fmt.Fprintf(&b, "\n  [%s] %s", entry.Level, entry.Message)
	}

	return b.String()
}
