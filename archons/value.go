package archons

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValueKind identifies the variant held by a Value.
type ValueKind int

const (
	ValueString ValueKind = iota
	ValueNumber
	ValueBool
	ValueCount
	ValueList
)

func (k ValueKind) String() string {
	switch k {
	case ValueString:
		return "string"
	case ValueNumber:
		return "number"
	case ValueBool:
		return "boolean"
	case ValueCount:
		return "count"
	case ValueList:
		return "list"
	default:
		return "unknown"
	}
}

// Value is a coerced option value: a string, a number, a boolean, an
// occurrence count or a list of values.
type Value struct {
	kind  ValueKind
	str   string
	num   float64
	b     bool
	count int
	list  []Value
}

func StringValue(s string) Value  { return Value{kind: ValueString, str: s} }
func NumberValue(n float64) Value { return Value{kind: ValueNumber, num: n} }
func BoolValue(b bool) Value      { return Value{kind: ValueBool, b: b} }
func CountValue(n int) Value      { return Value{kind: ValueCount, count: n} }
func ListValue(vs ...Value) Value { return Value{kind: ValueList, list: append([]Value{}, vs...)} }

// Kind returns the variant held by v.
func (v Value) Kind() ValueKind { return v.kind }

func (v Value) AsString() (string, bool)  { return v.str, v.kind == ValueString }
func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == ValueNumber }
func (v Value) AsBool() (bool, bool)      { return v.b, v.kind == ValueBool }
func (v Value) AsCount() (int, bool)      { return v.count, v.kind == ValueCount }

// AsList returns a copy of the list elements.
func (v Value) AsList() ([]Value, bool) {
	if v.kind != ValueList {
		return nil, false
	}
	return append([]Value{}, v.list...), true
}

// Interface converts v to string, float64, bool, int or []any.
func (v Value) Interface() any {
	switch v.kind {
	case ValueString:
		return v.str
	case ValueNumber:
		return v.num
	case ValueBool:
		return v.b
	case ValueCount:
		return v.count
	case ValueList:
		out := make([]any, len(v.list))
		for i, e := range v.list {
			out[i] = e.Interface()
		}
		return out
	}
	return nil
}

// Equal reports whether v and o hold the same variant and contents.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case ValueString:
		return v.str == o.str
	case ValueNumber:
		return v.num == o.num
	case ValueBool:
		return v.b == o.b
	case ValueCount:
		return v.count == o.count
	case ValueList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	}
	return true
}

// MarshalJSON encodes v as its natural JSON form.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

func (v Value) String() string {
	switch v.kind {
	case ValueString:
		return v.str
	case ValueNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case ValueBool:
		return strconv.FormatBool(v.b)
	case ValueCount:
		return strconv.Itoa(v.count)
	case ValueList:
		parts := make([]string, len(v.list))
		for i, e := range v.list {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return ""
}

// Coerce converts raw through the parser.
func (p ValueParser) Coerce(raw string) (Value, error) {
	switch p {
	case ParserNumber:
		n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return Value{}, fmt.Errorf("invalid number %q", raw)
		}
		return NumberValue(n), nil
	case ParserBoolean:
		b, err := parseBool(raw)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(b), nil
	default:
		return StringValue(raw), nil
	}
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "t", "yes", "y", "1", "on":
		return true, nil
	case "false", "f", "no", "n", "0", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", raw)
}
