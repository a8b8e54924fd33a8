package nup

import "fmt"

// ErrorLabel points a message at a span in the user's pipeline.
type ErrorLabel struct {
	Text string `json:"text"`
	Span Span   `json:"span"`
}

// LabeledError is the error shape the engine renders back to the user. It
// implements error so command handlers can return one directly; anything
// else that comes back from a handler is wrapped with AsLabeledError.
type LabeledError struct {
	Msg    string         `json:"msg"`
	Labels []ErrorLabel   `json:"labels"`
	Code   string         `json:"code,omitempty"`
	URL    string         `json:"url,omitempty"`
	Help   string         `json:"help,omitempty"`
	Inner  []LabeledError `json:"inner"`
}

// NewLabeledError creates an error with the given top-line message.
func NewLabeledError(msg string) *LabeledError {
	return &LabeledError{Msg: msg, Labels: []ErrorLabel{}, Inner: []LabeledError{}}
}

// WithLabel attaches a span-anchored label and returns the error for
// chaining.
func (e *LabeledError) WithLabel(text string, span Span) *LabeledError {
	e.Labels = append(e.Labels, ErrorLabel{Text: text, Span: span})
	return e
}

// WithHelp attaches a help line and returns the error for chaining.
func (e *LabeledError) WithHelp(help string) *LabeledError {
	e.Help = help
	return e
}

func (e *LabeledError) Error() string {
	if len(e.Labels) > 0 {
		return fmt.Sprintf("%s: %s", e.Msg, e.Labels[0].Text)
	}
	return e.Msg
}

// AsLabeledError converts any error into the wire shape, passing through
// errors that already are one.
func AsLabeledError(err error) *LabeledError {
	if le, ok := err.(*LabeledError); ok {
		return le
	}
	return NewLabeledError(err.Error())
}
