package nup

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Span identifies a region of the source the engine evaluated. The engine
// attaches spans to every value and error label so the shell can underline
// the offending part of the pipeline.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Value is a Nushell value in the plugin serialization format. Exactly one
// of the variant fields is set; the JSON form is a single-key object keyed
// by the variant name, e.g. {"String":{"val":"x","span":{...}}}.
type Value struct {
	Nothing *NothingValue `json:"Nothing,omitempty"`
	Bool    *BoolValue    `json:"Bool,omitempty"`
	Int     *IntValue     `json:"Int,omitempty"`
	Float   *FloatValue   `json:"Float,omitempty"`
	String  *StringValue  `json:"String,omitempty"`
	List    *ListValue    `json:"List,omitempty"`
	Record  *RecordValue  `json:"Record,omitempty"`

	// Other holds the variant name of any engine value this package has no
	// typed form for (Date, Duration, Filesize, Glob, ...). Such values
	// decode without error so commands can answer with a usage error; their
	// payload beyond the span is not retained.
	Other     string `json:"-"`
	OtherSpan Span   `json:"-"`
}

type NothingValue struct {
	Span Span `json:"span"`
}

type BoolValue struct {
	Val  bool `json:"val"`
	Span Span `json:"span"`
}

type IntValue struct {
	Val  int64 `json:"val"`
	Span Span  `json:"span"`
}

type FloatValue struct {
	Val  float64 `json:"val"`
	Span Span    `json:"span"`
}

type StringValue struct {
	Val  string `json:"val"`
	Span Span   `json:"span"`
}

type ListValue struct {
	Vals []Value `json:"vals"`
	Span Span    `json:"span"`
}

type RecordValue struct {
	Val  map[string]Value `json:"val"`
	Span Span             `json:"span"`
}

// NewNothing creates a Nothing value.
func NewNothing(span Span) Value {
	return Value{Nothing: &NothingValue{Span: span}}
}

// NewBool creates a Bool value.
func NewBool(v bool, span Span) Value {
	return Value{Bool: &BoolValue{Val: v, Span: span}}
}

// NewInt creates an Int value.
func NewInt(v int64, span Span) Value {
	return Value{Int: &IntValue{Val: v, Span: span}}
}

// NewString creates a String value.
func NewString(v string, span Span) Value {
	return Value{String: &StringValue{Val: v, Span: span}}
}

// NewList creates a List value. A nil slice is encoded as an empty list
// rather than null, which is what the engine expects.
func NewList(vals []Value, span Span) Value {
	if vals == nil {
		vals = []Value{}
	}
	return Value{List: &ListValue{Vals: vals, Span: span}}
}

// NewRecord creates a Record value.
func NewRecord(val map[string]Value, span Span) Value {
	if val == nil {
		val = map[string]Value{}
	}
	return Value{Record: &RecordValue{Val: val, Span: span}}
}

// Type returns the Nushell type name of the value, e.g. "string". Used in
// error messages.
func (v Value) Type() string {
	switch {
	case v.Nothing != nil:
		return "nothing"
	case v.Bool != nil:
		return "bool"
	case v.Int != nil:
		return "int"
	case v.Float != nil:
		return "float"
	case v.String != nil:
		return "string"
	case v.List != nil:
		return "list"
	case v.Record != nil:
		return "record"
	case v.Other != "":
		return strings.ToLower(v.Other)
	default:
		return "unknown"
	}
}

// GetSpan returns the span of whichever variant is set.
func (v Value) GetSpan() Span {
	switch {
	case v.Nothing != nil:
		return v.Nothing.Span
	case v.Bool != nil:
		return v.Bool.Span
	case v.Int != nil:
		return v.Int.Span
	case v.Float != nil:
		return v.Float.Span
	case v.String != nil:
		return v.String.Span
	case v.List != nil:
		return v.List.Span
	case v.Record != nil:
		return v.Record.Span
	case v.Other != "":
		return v.OtherSpan
	default:
		return Span{}
	}
}

// AsString returns the string payload if the value is a String.
func (v Value) AsString() (string, bool) {
	if v.String == nil {
		return "", false
	}
	return v.String.Val, true
}

// AsBool returns the bool payload if the value is a Bool.
func (v Value) AsBool() (bool, bool) {
	if v.Bool == nil {
		return false, false
	}
	return v.Bool.Val, true
}

// AsList returns the element slice if the value is a List.
func (v Value) AsList() ([]Value, bool) {
	if v.List == nil {
		return nil, false
	}
	return v.List.Vals, true
}

// AsRecord returns the field map if the value is a Record.
func (v Value) AsRecord() (map[string]Value, bool) {
	if v.Record == nil {
		return nil, false
	}
	return v.Record.Val, true
}

// UnmarshalJSON requires exactly one variant key. Variant names this package
// has no typed form for (Date, Duration, Filesize, ...) decode into Other
// instead of failing, so one exotic flag value cannot take down the whole
// session; a value with zero or multiple keys still fails loudly.
func (v *Value) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if len(fields) != 1 {
		return fmt.Errorf("value must have exactly one variant, got %d", len(fields))
	}
	for name, payload := range fields {
		var dst any
		switch name {
		case "Nothing":
			v.Nothing = &NothingValue{}
			dst = v.Nothing
		case "Bool":
			v.Bool = &BoolValue{}
			dst = v.Bool
		case "Int":
			v.Int = &IntValue{}
			dst = v.Int
		case "Float":
			v.Float = &FloatValue{}
			dst = v.Float
		case "String":
			v.String = &StringValue{}
			dst = v.String
		case "List":
			v.List = &ListValue{}
			dst = v.List
		case "Record":
			v.Record = &RecordValue{}
			dst = v.Record
		default:
			v.Other = name
			var wrapper struct {
				Span Span `json:"span"`
			}
			// Span extraction is best effort, not every payload is an object.
			if err := json.Unmarshal(payload, &wrapper); err == nil {
				v.OtherSpan = wrapper.Span
			}
			return nil
		}
		if err := json.Unmarshal(payload, dst); err != nil {
			return fmt.Errorf("%s value: %w", name, err)
		}
	}
	return nil
}
