package nup

import "encoding/json"

// SyntaxShape tells the engine how to parse a flag or positional argument.
// The wire form is either a bare string ("String") or an object for
// parameterized shapes ({"Record":[]}), so the values are kept as raw JSON.
type SyntaxShape struct {
	json.RawMessage
}

var (
	ShapeString    = SyntaxShape{json.RawMessage(`"String"`)}
	ShapeDirectory = SyntaxShape{json.RawMessage(`"Directory"`)}
	ShapeFilepath  = SyntaxShape{json.RawMessage(`"Filepath"`)}
	ShapeRecord    = SyntaxShape{json.RawMessage(`{"Record":[]}`)}
)

// Type is a Nushell type in a signature's input/output list. Same raw-JSON
// treatment as SyntaxShape.
type Type struct {
	json.RawMessage
}

var (
	TypeNothing    = Type{json.RawMessage(`"Nothing"`)}
	TypeString     = Type{json.RawMessage(`"String"`)}
	TypeListString = Type{json.RawMessage(`{"List":"String"}`)}
)

// Flag describes one named flag of a command.
type Flag struct {
	Long     string       `json:"long"`
	Short    string       `json:"short,omitempty"`
	Arg      *SyntaxShape `json:"arg"`
	Required bool         `json:"required"`
	Desc     string       `json:"desc"`
}

// PositionalArg describes one positional argument of a command.
type PositionalArg struct {
	Name  string      `json:"name"`
	Desc  string      `json:"desc"`
	Shape SyntaxShape `json:"shape"`
}

// Signature is the command signature the engine registers at plugin add
// time. Field set mirrors what the engine expects; most of the booleans stay
// false for a simple command.
type Signature struct {
	Name                 string          `json:"name"`
	Description          string          `json:"description"`
	ExtraDescription     string          `json:"extra_description"`
	SearchTerms          []string        `json:"search_terms"`
	RequiredPositional   []PositionalArg `json:"required_positional"`
	OptionalPositional   []PositionalArg `json:"optional_positional"`
	RestPositional       *PositionalArg  `json:"rest_positional"`
	Named                []Flag          `json:"named"`
	InputOutputTypes     [][2]Type       `json:"input_output_types"`
	AllowMissingExamples bool            `json:"allow_variants_without_examples"`
	IsFilter             bool            `json:"is_filter"`
	CreatesScope         bool            `json:"creates_scope"`
	AllowsUnknownArgs    bool            `json:"allows_unknown_args"`
	Category             string          `json:"category"`
}

// Example is a usage example shown by `help <command>`.
type Example struct {
	Example     string `json:"example"`
	Description string `json:"description"`
	Result      *Value `json:"result"`
}

// PluginSignature pairs a signature with its examples, the unit the engine
// asks for in a Signature call.
type PluginSignature struct {
	Sig      Signature `json:"sig"`
	Examples []Example `json:"examples"`
}

// BuildSignature starts a signature with the defaults a plugin command
// wants: no positionals, misc category, help flag added by the engine.
func BuildSignature(name, description string) *Signature {
	return &Signature{
		Name:               name,
		Description:        description,
		SearchTerms:        []string{},
		RequiredPositional: []PositionalArg{},
		OptionalPositional: []PositionalArg{},
		Named:              []Flag{},
		InputOutputTypes:   [][2]Type{},
		Category:           "Misc",
	}
}

// Switch adds a boolean flag.
func (s *Signature) Switch(long, short, desc string) *Signature {
	s.Named = append(s.Named, Flag{Long: long, Short: short, Desc: desc})
	return s
}

// NamedFlag adds a flag that takes an argument of the given shape.
func (s *Signature) NamedFlag(long, short string, shape SyntaxShape, desc string) *Signature {
	arg := shape
	s.Named = append(s.Named, Flag{Long: long, Short: short, Arg: &arg, Desc: desc})
	return s
}

// InputOutput adds an accepted (input, output) type pair.
func (s *Signature) InputOutput(in, out Type) *Signature {
	s.InputOutputTypes = append(s.InputOutputTypes, [2]Type{in, out})
	return s
}
