package nup

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ProtocolName is the protocol identifier exchanged in the Hello handshake.
const ProtocolName = "nu-plugin"

// ProtocolVersion is the Nushell protocol version this package targets.
// Compatibility is checked major-for-major (minor-for-minor while the
// protocol is pre-1.0).
const ProtocolVersion = "0.104.0"

// Hello opens the session from both sides. The engine refuses plugins whose
// protocol or version it cannot serve, and vice versa.
type Hello struct {
	Protocol string `json:"protocol"`
	Version  string `json:"version"`
	Features []any  `json:"features"`
}

// CallKind discriminates the engine's Call payloads.
type CallKind string

const (
	CallMetadata  CallKind = "Metadata"
	CallSignature CallKind = "Signature"
	CallRun       CallKind = "Run"
)

// RunCall carries the invocation of one command.
type RunCall struct {
	Name  string          `json:"name"`
	Call  EvaluatedCall   `json:"call"`
	Input json.RawMessage `json:"input"`
}

// Call is one engine request: on the wire a two-element array of id and
// payload, where the payload is a bare string for Metadata/Signature and an
// object for Run.
type Call struct {
	ID   int64
	Kind CallKind
	Run  *RunCall
}

func (c *Call) UnmarshalJSON(data []byte) error {
	var parts [2]json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("call must be a [id, call] pair: %w", err)
	}
	if err := json.Unmarshal(parts[0], &c.ID); err != nil {
		return fmt.Errorf("call id: %w", err)
	}
	payload := bytes.TrimSpace(parts[1])
	if len(payload) > 0 && payload[0] == '"' {
		var kind string
		if err := json.Unmarshal(payload, &kind); err != nil {
			return err
		}
		switch CallKind(kind) {
		case CallMetadata, CallSignature:
			c.Kind = CallKind(kind)
			return nil
		default:
			return fmt.Errorf("unknown call kind %q", kind)
		}
	}
	var run struct {
		Run *RunCall `json:"Run"`
	}
	if err := json.Unmarshal(payload, &run); err != nil {
		return err
	}
	if run.Run == nil {
		return fmt.Errorf("unknown call payload: %s", payload)
	}
	c.Kind = CallRun
	c.Run = run.Run
	return nil
}

func (c Call) MarshalJSON() ([]byte, error) {
	var payload any
	switch c.Kind {
	case CallMetadata, CallSignature:
		payload = string(c.Kind)
	case CallRun:
		payload = map[string]*RunCall{"Run": c.Run}
	default:
		return nil, fmt.Errorf("unknown call kind %q", c.Kind)
	}
	return json.Marshal([2]any{c.ID, payload})
}

// EngineCallResponse answers an EngineCall the plugin made while handling a
// Run. Same [id, payload] pairing as Call.
type EngineCallResponse struct {
	ID       int64
	Pipeline *PipelineData
	Error    *LabeledError
}

func (r *EngineCallResponse) UnmarshalJSON(data []byte) error {
	var parts [2]json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("engine call response must be a [id, response] pair: %w", err)
	}
	if err := json.Unmarshal(parts[0], &r.ID); err != nil {
		return fmt.Errorf("engine call response id: %w", err)
	}
	var payload struct {
		PipelineData *PipelineData `json:"PipelineData"`
		Error        *LabeledError `json:"Error"`
	}
	if err := json.Unmarshal(parts[1], &payload); err != nil {
		return err
	}
	r.Pipeline = payload.PipelineData
	r.Error = payload.Error
	return nil
}

func (r EngineCallResponse) MarshalJSON() ([]byte, error) {
	payload := map[string]any{}
	if r.Pipeline != nil {
		payload["PipelineData"] = r.Pipeline
	}
	if r.Error != nil {
		payload["Error"] = r.Error
	}
	return json.Marshal([2]any{r.ID, payload})
}

// EngineMessage is anything the engine may send the plugin. Exactly one
// field is set. Goodbye is a bare "Goodbye" string on the wire.
type EngineMessage struct {
	Hello              *Hello
	Call               *Call
	Signal             string
	EngineCallResponse *EngineCallResponse
	Goodbye            bool
}

func (m *EngineMessage) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte(`"Goodbye"`)) {
		m.Goodbye = true
		return nil
	}
	var payload struct {
		Hello              *Hello              `json:"Hello"`
		Call               *Call               `json:"Call"`
		Signal             string              `json:"Signal"`
		EngineCallResponse *EngineCallResponse `json:"EngineCallResponse"`
	}
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return err
	}
	m.Hello = payload.Hello
	m.Call = payload.Call
	m.Signal = payload.Signal
	m.EngineCallResponse = payload.EngineCallResponse
	if m.Hello == nil && m.Call == nil && m.Signal == "" && m.EngineCallResponse == nil {
		return fmt.Errorf("unrecognized engine message: %s", trimmed)
	}
	return nil
}

// PipelineData wraps a value (or nothing) flowing through the pipeline. The
// wire form is the string "Empty" or {"Value":[value, metadata]}.
type PipelineData struct {
	Empty bool
	Value *Value
}

func (p PipelineData) MarshalJSON() ([]byte, error) {
	if p.Empty || p.Value == nil {
		return json.Marshal("Empty")
	}
	return json.Marshal(map[string][2]any{"Value": {p.Value, nil}})
}

func (p *PipelineData) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte(`"Empty"`)) {
		p.Empty = true
		return nil
	}
	var payload struct {
		Value [2]json.RawMessage `json:"Value"`
	}
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return err
	}
	if payload.Value[0] == nil {
		return fmt.Errorf("unrecognized pipeline data: %s", trimmed)
	}
	var v Value
	if err := json.Unmarshal(payload.Value[0], &v); err != nil {
		return err
	}
	p.Value = &v
	return nil
}

// Metadata identifies the plugin to the engine.
type Metadata struct {
	Version string `json:"version"`
}

// CallResponse is the plugin's answer to one Call, a [id, payload] pair with
// a single-key payload naming the response variant.
type CallResponse struct {
	ID        int64
	Metadata  *Metadata
	Signature []PluginSignature
	Pipeline  *PipelineData
	Error     *LabeledError
}

func (r CallResponse) MarshalJSON() ([]byte, error) {
	var payload any
	switch {
	case r.Metadata != nil:
		payload = map[string]*Metadata{"Metadata": r.Metadata}
	case r.Signature != nil:
		payload = map[string][]PluginSignature{"Signature": r.Signature}
	case r.Pipeline != nil:
		payload = map[string]*PipelineData{"PipelineData": r.Pipeline}
	case r.Error != nil:
		payload = map[string]*LabeledError{"Error": r.Error}
	default:
		return nil, fmt.Errorf("call response %d has no payload", r.ID)
	}
	return json.Marshal([2]any{r.ID, payload})
}

func (r *CallResponse) UnmarshalJSON(data []byte) error {
	var parts [2]json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("call response must be a [id, response] pair: %w", err)
	}
	if err := json.Unmarshal(parts[0], &r.ID); err != nil {
		return fmt.Errorf("call response id: %w", err)
	}
	var payload struct {
		Metadata  *Metadata         `json:"Metadata"`
		Signature []PluginSignature `json:"Signature"`
		Pipeline  *PipelineData     `json:"PipelineData"`
		Error     *LabeledError     `json:"Error"`
	}
	if err := json.Unmarshal(parts[1], &payload); err != nil {
		return err
	}
	r.Metadata = payload.Metadata
	r.Signature = payload.Signature
	r.Pipeline = payload.Pipeline
	r.Error = payload.Error
	return nil
}

// EngineCallKind names the engine calls this plugin uses.
type EngineCallKind string

const EngineCallGetCurrentDir EngineCallKind = "GetCurrentDir"

// EngineCall is a request the plugin makes back to the engine while a Run
// call is in flight. Context is the id of that Run call.
type EngineCall struct {
	Context int64          `json:"context"`
	ID      int64          `json:"id"`
	Call    EngineCallKind `json:"call"`
}

// PluginMessage is anything the plugin may send the engine. Exactly one
// field is set.
type PluginMessage struct {
	Hello        *Hello        `json:"Hello,omitempty"`
	CallResponse *CallResponse `json:"CallResponse,omitempty"`
	EngineCall   *EngineCall   `json:"EngineCall,omitempty"`
}
