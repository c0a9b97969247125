package domain

import (
	"fmt"
	"math"
	"strconv"

	"github.com/dop251/goja"

	m "gest.dev/pkg/gest/internal/model"
)

// Value is a script value as seen by the matchers. The set of
// implementations is closed; values the matchers cannot handle become
// UnsupportedValue.
type Value interface {
	// Kind names the variant for type mismatch messages.
	Kind() string
	// String renders the value for failure messages.
	String() string
	isValue()
}

// StringValue is a script string.
type StringValue string

// BoolValue is a script boolean.
type BoolValue bool

// IntegerValue is a script number without a fractional part.
type IntegerValue int64

// FloatValue is a script number with a fractional part.
type FloatValue float64

// NothingValue is undefined or null.
type NothingValue struct{}

// FunctionValue is a script function. Invoke calls it without arguments on
// the runtime that owns it.
type FunctionValue struct {
	Name   string
	Invoke func() error
}

// LogLevelValue is one of the LOG_LEVEL tokens.
type LogLevelValue m.LogLevel

// UnsupportedValue is any other script value.
type UnsupportedValue struct {
	Description string
}

func (StringValue) Kind() string      { return "string" }
func (BoolValue) Kind() string        { return "bool" }
func (IntegerValue) Kind() string     { return "integer" }
func (FloatValue) Kind() string       { return "float" }
func (NothingValue) Kind() string     { return "nothing" }
func (FunctionValue) Kind() string    { return "function" }
func (LogLevelValue) Kind() string    { return "log level" }
func (UnsupportedValue) Kind() string { return "unsupported" }

func (v StringValue) String() string  { return strconv.Quote(string(v)) }
func (v BoolValue) String() string    { return strconv.FormatBool(bool(v)) }
func (v IntegerValue) String() string { return strconv.FormatInt(int64(v), 10) }
func (v FloatValue) String() string   { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (NothingValue) String() string   { return "nothing" }

func (v FunctionValue) String() string {
	if v.Name == "" {
		return "[function]"
	}

	return fmt.Sprintf("[function %s]", v.Name)
}

func (v LogLevelValue) String() string    { return string(v) }
func (v UnsupportedValue) String() string { return v.Description }

func (StringValue) isValue()      {}
func (BoolValue) isValue()        {}
func (IntegerValue) isValue()     {}
func (FloatValue) isValue()       {}
func (NothingValue) isValue()     {}
func (FunctionValue) isValue()    {}
func (LogLevelValue) isValue()    {}
func (UnsupportedValue) isValue() {}

// logLevelToken is the host object behind LOG_LEVEL.* so levels cannot be
// confused with plain strings.
type logLevelToken struct {
	Level m.LogLevel
}

// invokeFunc calls a script function and returns its error.
type invokeFunc func(fn goja.Callable) error

// valueFromScript converts a runtime value into a Value. invoke is used to
// build FunctionValue.Invoke.
func valueFromScript(v goja.Value, invoke invokeFunc) Value {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return NothingValue{}
	}

	if fn, ok := goja.AssertFunction(v); ok {
		name := ""
		if obj, isObj := v.(*goja.Object); isObj {
			name = propString(obj, "name")
		}

		return FunctionValue{Name: name, Invoke: func() error { return invoke(fn) }}
	}

	switch exported := v.Export().(type) {
	case string:
		return StringValue(exported)
	case bool:
		return BoolValue(exported)
	case int64:
		return IntegerValue(exported)
	case float64:
		if exported == math.Trunc(exported) && math.Abs(exported) < 1<<53 {
			return IntegerValue(int64(exported))
		}

		return FloatValue(exported)
	case *logLevelToken:
		return LogLevelValue(exported.Level)
	case []interface{}:
		return UnsupportedValue{Description: "array"}
	case map[string]interface{}:
		return UnsupportedValue{Description: "object"}
	default:
		return UnsupportedValue{Description: fmt.Sprintf("%T", exported)}
	}
}

// plainText renders a value without quoting, used for status codes and patterns.
func plainText(v Value) string {
	if s, ok := v.(StringValue); ok {
		return string(s)
	}

	return v.String()
}
