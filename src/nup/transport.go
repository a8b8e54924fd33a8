package nup

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
)

// Transport frames newline-delimited JSON messages between the plugin and
// the engine. The plugin side reads EngineMessages and writes
// PluginMessages; the engine launched us, so reads come from stdin and
// writes go to stdout.
type Transport struct {
	r       io.Reader
	w       io.Writer
	scanner *bufio.Scanner
	encoder *json.Encoder
	logger  *slog.Logger
	mu      sync.Mutex
	closed  atomic.Bool
}

// NewTransport creates a transport over the given reader and writer. Tests
// use in-memory pipes here; production code uses NewStdioTransport.
func NewTransport(r io.Reader, w io.Writer, logger *slog.Logger) *Transport {
	scanner := bufio.NewScanner(r)
	// 1MB max message size
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Transport{
		r:       r,
		w:       w,
		scanner: scanner,
		encoder: json.NewEncoder(w),
		logger:  logger,
	}
}

// NewStdioTransport creates the transport the engine expects when it spawns
// the plugin with --stdio.
func NewStdioTransport(logger *slog.Logger) *Transport {
	return NewTransport(os.Stdin, os.Stdout, logger)
}

// WriteEncoding declares the serialization format before any message is
// exchanged: a length byte followed by the encoding name.
func (t *Transport) WriteEncoding() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	const encoding = "json"
	buf := append([]byte{byte(len(encoding))}, encoding...)
	if _, err := t.w.Write(buf); err != nil {
		return fmt.Errorf("failed to write encoding declaration: %w", err)
	}
	return nil
}

// Send sends one message to the engine.
func (t *Transport) Send(msg *PluginMessage) error {
	if t.closed.Load() {
		return fmt.Errorf("transport is closed")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.logger.Enabled(context.Background(), slog.LevelDebug) {
		if data, err := json.Marshal(msg); err == nil {
			t.logger.Debug("sending message", "message", string(data))
		}
	}

	if err := t.encoder.Encode(msg); err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	return nil
}

// Receive reads the next message from the engine. Returns io.EOF when the
// engine closed our stdin.
func (t *Transport) Receive() (*EngineMessage, error) {
	if t.closed.Load() {
		return nil, fmt.Errorf("transport is closed")
	}

	if !t.scanner.Scan() {
		if err := t.scanner.Err(); err != nil {
			return nil, fmt.Errorf("scanner error: %w", err)
		}
		return nil, io.EOF
	}

	line := t.scanner.Bytes()
	t.logger.Debug("received line", "line", string(line))

	var msg EngineMessage
	if err := json.Unmarshal(line, &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}
	return &msg, nil
}

// Close marks the transport closed and closes the underlying streams when
// they are closers.
func (t *Transport) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil // Already closed
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if c, ok := t.w.(io.Closer); ok && t.w != os.Stdout {
		c.Close()
	}
	if c, ok := t.r.(io.Closer); ok && t.r != os.Stdin {
		c.Close()
	}
	return nil
}
