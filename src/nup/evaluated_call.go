package nup

import (
	"encoding/json"
	"fmt"
)

// EvaluatedCall is the command invocation as the engine evaluated it: the
// span of the call site, positional arguments, and named flags. Flags
// without an argument (switches) arrive with a null value.
type EvaluatedCall struct {
	Head       Span        `json:"head"`
	Positional []Value     `json:"positional"`
	Named      []NamedFlag `json:"named"`
}

// NamedFlag is one (name, optional value) pair. On the wire it is a
// two-element array.
type NamedFlag struct {
	Name  string
	Value *Value
}

func (n *NamedFlag) UnmarshalJSON(data []byte) error {
	var parts [2]json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("named flag must be a [name, value] pair: %w", err)
	}
	if err := json.Unmarshal(parts[0], &n.Name); err != nil {
		return fmt.Errorf("named flag name: %w", err)
	}
	if string(parts[1]) == "null" || parts[1] == nil {
		n.Value = nil
		return nil
	}
	var v Value
	if err := json.Unmarshal(parts[1], &v); err != nil {
		return fmt.Errorf("named flag %q: %w", n.Name, err)
	}
	n.Value = &v
	return nil
}

func (n NamedFlag) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{n.Name, n.Value})
}

// HasFlag reports whether the flag was passed. A switch passed with an
// explicit false value (--flag=false) counts as absent, matching engine
// semantics.
func (c *EvaluatedCall) HasFlag(name string) bool {
	for _, f := range c.Named {
		if f.Name != name {
			continue
		}
		if f.Value == nil {
			return true
		}
		if b, ok := f.Value.AsBool(); ok {
			return b
		}
		return true
	}
	return false
}

// FlagValue returns the value passed for the flag, or nil if the flag was
// absent or a bare switch.
func (c *EvaluatedCall) FlagValue(name string) *Value {
	for _, f := range c.Named {
		if f.Name == name {
			return f.Value
		}
	}
	return nil
}

// StringFlag returns the flag's string value. ok is false when the flag is
// absent; a present flag of any other type is an error.
func (c *EvaluatedCall) StringFlag(name string) (val string, ok bool, err error) {
	v := c.FlagValue(name)
	if v == nil {
		return "", false, nil
	}
	s, isStr := v.AsString()
	if !isStr {
		return "", false, fmt.Errorf("flag --%s: expected string, got %s", name, v.Type())
	}
	return s, true, nil
}

// RecordFlag returns the flag's record value. Same absence/type contract as
// StringFlag.
func (c *EvaluatedCall) RecordFlag(name string) (val map[string]Value, ok bool, err error) {
	v := c.FlagValue(name)
	if v == nil {
		return nil, false, nil
	}
	rec, isRec := v.AsRecord()
	if !isRec {
		return nil, false, fmt.Errorf("flag --%s: expected record, got %s", name, v.Type())
	}
	return rec, true, nil
}
