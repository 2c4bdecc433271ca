package archons

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestValueString(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{StringValue("abc"), "abc"},
		{NumberValue(3), "3"},
		{NumberValue(-0.5), "-0.5"},
		{NumberValue(1e21), "1e+21"},
		{BoolValue(true), "true"},
		{CountValue(4), "4"},
		{ListValue(StringValue("a"), NumberValue(2)), "[a, 2]"},
		{ListValue(), "[]"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("%v.String() = %q, want %q", tt.v.Kind(), got, tt.want)
		}
	}
}

func TestValueAccessors(t *testing.T) {
	if s, ok := StringValue("x").AsString(); !ok || s != "x" {
		t.Errorf("AsString = %q, %v", s, ok)
	}
	if _, ok := StringValue("1").AsNumber(); ok {
		t.Error("string value must not read as number")
	}
	if n, ok := CountValue(2).AsCount(); !ok || n != 2 {
		t.Errorf("AsCount = %d, %v", n, ok)
	}
	if _, ok := BoolValue(true).AsList(); ok {
		t.Error("bool value must not read as list")
	}

	list := ListValue(StringValue("a"))
	items, _ := list.AsList()
	items[0] = StringValue("changed")
	if again, _ := list.AsList(); !again[0].Equal(StringValue("a")) {
		t.Error("AsList must return a copy")
	}
}

func TestValueEqual(t *testing.T) {
	if NumberValue(1).Equal(CountValue(1)) {
		t.Error("different kinds compared equal")
	}
	if !ListValue(NumberValue(1), BoolValue(false)).Equal(ListValue(NumberValue(1), BoolValue(false))) {
		t.Error("identical lists compared unequal")
	}
	if ListValue(NumberValue(1)).Equal(ListValue(NumberValue(1), NumberValue(2))) {
		t.Error("lists of different length compared equal")
	}
}

func TestValueJSON(t *testing.T) {
	args := map[string]Value{
		"name":    StringValue("x"),
		"port":    NumberValue(8080),
		"debug":   BoolValue(true),
		"verbose": CountValue(2),
		"files":   ListValue(StringValue("a"), StringValue("b")),
	}
	data, err := json.Marshal(args)
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	want := map[string]any{
		"name":    "x",
		"port":    float64(8080),
		"debug":   true,
		"verbose": float64(2),
		"files":   []any{"a", "b"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("json mismatch (-want +got):\n%s", diff)
	}
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		parser  ValueParser
		raw     string
		want    Value
		wantErr bool
	}{
		{ParserString, "", StringValue(""), false},
		{ParserString, " spaced ", StringValue(" spaced "), false},
		{ParserNumber, "42", NumberValue(42), false},
		{ParserNumber, "-1.5", NumberValue(-1.5), false},
		{ParserNumber, " 7 ", NumberValue(7), false},
		{ParserNumber, "1e3", NumberValue(1000), false},
		{ParserNumber, "abc", Value{}, true},
		{ParserNumber, "NaN", Value{}, true},
		{ParserNumber, "Inf", Value{}, true},
		{ParserBoolean, "yes", BoolValue(true), false},
		{ParserBoolean, "OFF", BoolValue(false), false},
		{ParserBoolean, "0", BoolValue(false), false},
		{ParserBoolean, "maybe", Value{}, true},
	}
	for _, tt := range tests {
		got, err := tt.parser.Coerce(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%s.Coerce(%q) succeeded with %v", tt.parser, tt.raw, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s.Coerce(%q): %v", tt.parser, tt.raw, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("%s.Coerce(%q) = %v, want %v", tt.parser, tt.raw, got, tt.want)
		}
	}
}

func TestParseEnums(t *testing.T) {
	actions := map[string]Action{
		"":           ActionSet,
		"set":        ActionSet,
		"append":     ActionAppend,
		"count":      ActionCount,
		"store":      ActionStore,
		"storeFalse": ActionStoreFalse,
	}
	for s, want := range actions {
		got, err := ParseAction(s)
		if err != nil || got != want {
			t.Errorf("ParseAction(%q) = %v, %v", s, got, err)
		}
		if s != "" && got.String() != s {
			t.Errorf("%v.String() = %q, want %q", got, got.String(), s)
		}
	}
	if _, err := ParseAction("toggle"); err == nil {
		t.Error("ParseAction accepted unknown action")
	}

	if k, err := ParseKind("positional"); err != nil || k != KindPositional {
		t.Errorf("ParseKind = %v, %v", k, err)
	}
	if _, err := ParseKind("flag"); err == nil {
		t.Error("ParseKind accepted unknown type")
	}
	if p, err := ParseValueParser("number"); err != nil || p != ParserNumber {
		t.Errorf("ParseValueParser = %v, %v", p, err)
	}
	if _, err := ParseValueParser("date"); err == nil {
		t.Error("ParseValueParser accepted unknown parser")
	}
}
