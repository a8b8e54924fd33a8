package nup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"
)

// ErrIncompatible is returned when the engine's Hello does not match our
// protocol or version.
var ErrIncompatible = errors.New("incompatible engine protocol")

// Engine is the handle a running command gets for calls back to the
// engine. Implemented by EngineConn; tests substitute fakes.
type Engine interface {
	// CurrentDir returns the shell's current working directory.
	CurrentDir(ctx context.Context) (string, error)
}

// Command is one plugin command the engine can call.
type Command interface {
	// Signature returns the signature registered with the engine.
	Signature() PluginSignature

	// Run executes the command. The returned value is sent back as the
	// pipeline output; a *LabeledError is forwarded verbatim, any other
	// error becomes a plain labeled error.
	Run(ctx context.Context, engine Engine, call *EvaluatedCall) (Value, error)
}

// Plugin serves a set of commands over the Nushell plugin protocol.
type Plugin struct {
	version  string
	commands map[string]Command
	order    []string
	logger   *slog.Logger
}

// NewPlugin creates a plugin that reports the given version in Metadata
// calls.
func NewPlugin(version string, logger *slog.Logger) *Plugin {
	if logger == nil {
		logger = slog.Default()
	}
	return &Plugin{
		version:  version,
		commands: make(map[string]Command),
		logger:   logger,
	}
}

// AddCommand registers a command under its signature name.
func (p *Plugin) AddCommand(cmd Command) {
	name := cmd.Signature().Sig.Name
	if _, dup := p.commands[name]; !dup {
		p.order = append(p.order, name)
	}
	p.commands[name] = cmd
}

// Serve runs the handshake and then answers engine calls until the engine
// says Goodbye or closes the pipe. Run calls execute synchronously on the
// calling goroutine: native dialogs have to stay on the main thread on
// macOS, so main() is expected to lock the OS thread and call Serve
// directly. A consequence is that interrupt signals only take effect while
// a run is blocked in an engine-call roundtrip; a signal sent while a
// dialog is on screen is read after the run finishes and ignored.
func (p *Plugin) Serve(ctx context.Context, t *Transport) error {
	if err := t.WriteEncoding(); err != nil {
		return err
	}
	if err := t.Send(&PluginMessage{Hello: &Hello{
		Protocol: ProtocolName,
		Version:  ProtocolVersion,
		Features: []any{},
	}}); err != nil {
		return err
	}

	msg, err := t.Receive()
	if err != nil {
		return fmt.Errorf("waiting for engine hello: %w", err)
	}
	if msg.Hello == nil {
		return fmt.Errorf("%w: expected Hello, got something else", ErrIncompatible)
	}
	if err := checkCompatible(msg.Hello); err != nil {
		return err
	}
	p.logger.Info("handshake complete", "engineVersion", msg.Hello.Version)

	for {
		msg, err := t.Receive()
		if err != nil {
			if errors.Is(err, io.EOF) {
				p.logger.Info("engine closed the connection")
				return nil
			}
			return err
		}

		switch {
		case msg.Goodbye:
			p.logger.Info("engine said goodbye")
			return nil
		case msg.Signal != "":
			// Nothing is running between calls, so signals here are
			// informational only.
			p.logger.Debug("ignoring signal outside of a call", "signal", msg.Signal)
		case msg.Call != nil:
			if err := p.handleCall(ctx, t, msg.Call); err != nil {
				return err
			}
		default:
			p.logger.Warn("ignoring unexpected engine message")
		}
	}
}

func (p *Plugin) handleCall(ctx context.Context, t *Transport, call *Call) error {
	switch call.Kind {
	case CallMetadata:
		return t.Send(&PluginMessage{CallResponse: &CallResponse{
			ID:       call.ID,
			Metadata: &Metadata{Version: p.version},
		}})

	case CallSignature:
		sigs := make([]PluginSignature, 0, len(p.order))
		for _, name := range p.order {
			sigs = append(sigs, p.commands[name].Signature())
		}
		return t.Send(&PluginMessage{CallResponse: &CallResponse{
			ID:        call.ID,
			Signature: sigs,
		}})

	case CallRun:
		return p.handleRun(ctx, t, call)

	default:
		return t.Send(&PluginMessage{CallResponse: &CallResponse{
			ID:    call.ID,
			Error: NewLabeledError(fmt.Sprintf("unsupported call %q", call.Kind)),
		}})
	}
}

func (p *Plugin) handleRun(ctx context.Context, t *Transport, call *Call) error {
	cmd, ok := p.commands[call.Run.Name]
	if !ok {
		return t.Send(&PluginMessage{CallResponse: &CallResponse{
			ID:    call.ID,
			Error: NewLabeledError(fmt.Sprintf("unknown command %q", call.Run.Name)),
		}})
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	engine := &EngineConn{t: t, context: call.ID, cancelRun: cancel, logger: p.logger}
	p.logger.Info("running command", "name", call.Run.Name, "callID", call.ID)

	value, err := cmd.Run(runCtx, engine, &call.Run.Call)
	if err != nil {
		p.logger.Warn("command failed", "name", call.Run.Name, "error", err)
		return t.Send(&PluginMessage{CallResponse: &CallResponse{
			ID:    call.ID,
			Error: AsLabeledError(err),
		}})
	}
	return t.Send(&PluginMessage{CallResponse: &CallResponse{
		ID:       call.ID,
		Pipeline: &PipelineData{Value: &value},
	}})
}

// checkCompatible verifies the engine speaks our protocol. While the
// protocol version is 0.x the minor version is treated as breaking, the
// same rule the engine applies.
func checkCompatible(h *Hello) error {
	if h.Protocol != ProtocolName {
		return fmt.Errorf("%w: protocol %q", ErrIncompatible, h.Protocol)
	}
	lMajor, lMinor, err := parseVersion(ProtocolVersion)
	if err != nil {
		return err
	}
	rMajor, rMinor, err := parseVersion(h.Version)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIncompatible, err)
	}
	if lMajor != rMajor || (lMajor == 0 && lMinor != rMinor) {
		return fmt.Errorf("%w: engine version %s, plugin supports %s", ErrIncompatible, h.Version, ProtocolVersion)
	}
	return nil
}

func parseVersion(v string) (major, minor int, err error) {
	parts := strings.SplitN(v, ".", 3)
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("malformed version %q", v)
	}
	major, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed version %q", v)
	}
	minor, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed version %q", v)
	}
	return major, minor, nil
}

// EngineConn lets a running command make calls back to the engine. Calls
// are answered inline: the serve loop is blocked in the command handler, so
// the reply is read directly off the transport.
type EngineConn struct {
	t         *Transport
	context   int64
	nextID    atomic.Int64
	cancelRun context.CancelFunc
	logger    *slog.Logger
}

// CurrentDir asks the engine for the caller's current working directory.
func (e *EngineConn) CurrentDir(ctx context.Context) (string, error) {
	resp, err := e.roundTrip(ctx, EngineCallGetCurrentDir)
	if err != nil {
		return "", err
	}
	if resp.Pipeline == nil || resp.Pipeline.Value == nil {
		return "", fmt.Errorf("engine returned no value for current dir")
	}
	dir, ok := resp.Pipeline.Value.AsString()
	if !ok {
		return "", fmt.Errorf("engine returned %s for current dir, expected string", resp.Pipeline.Value.Type())
	}
	return dir, nil
}

func (e *EngineConn) roundTrip(ctx context.Context, kind EngineCallKind) (*EngineCallResponse, error) {
	id := e.nextID.Add(1)
	if err := e.t.Send(&PluginMessage{EngineCall: &EngineCall{
		Context: e.context,
		ID:      id,
		Call:    kind,
	}}); err != nil {
		return nil, fmt.Errorf("failed to send engine call: %w", err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		msg, err := e.t.Receive()
		if err != nil {
			return nil, fmt.Errorf("waiting for engine call response: %w", err)
		}
		switch {
		case msg.EngineCallResponse != nil:
			resp := msg.EngineCallResponse
			if resp.ID != id {
				e.logger.Warn("discarding response for unknown engine call", "id", resp.ID)
				continue
			}
			if resp.Error != nil {
				return nil, resp.Error
			}
			return resp, nil
		case msg.Signal != "":
			e.logger.Debug("signal during engine call", "signal", msg.Signal)
			e.cancelRun()
		case msg.Goodbye:
			return nil, fmt.Errorf("engine said goodbye during engine call")
		default:
			e.logger.Warn("unexpected engine message during engine call")
		}
	}
}
