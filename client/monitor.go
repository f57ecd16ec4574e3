package client

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// QueueMonitorCallbacks receive live telemetry from the server's websocket
// feed. Any of the fields may be nil. Callbacks are invoked from the
// monitor's read goroutine.
type QueueMonitorCallbacks struct {
	QueueCountChanged func(remaining int)
	NodeProgress      func(value, max int)
	ExecutionError    func(promptID, message string)
}

// QueueMonitor is an optional live view of the ComfyUI queue over the /ws
// endpoint. The batch pipeline itself relies only on history polling; the
// monitor exists so a long batch run can show queue depth and sampler
// progress while it waits.
type QueueMonitor struct {
	wsURL     string
	conn      *websocket.Conn
	callbacks QueueMonitorCallbacks
	done      chan struct{}
	mu        sync.Mutex
	closed    bool
}

// NewQueueMonitor creates a monitor for the given client's server, sharing
// its client ID so the server routes this client's messages to the socket.
func NewQueueMonitor(c *Client, callbacks QueueMonitorCallbacks) *QueueMonitor {
	wsbase := strings.Replace(c.baseURL, "https://", "wss://", 1)
	wsbase = strings.Replace(wsbase, "http://", "ws://", 1)
	return &QueueMonitor{
		wsURL:     fmt.Sprintf("%s/ws?clientId=%s", wsbase, url.QueryEscape(c.clientid)),
		callbacks: callbacks,
		done:      make(chan struct{}),
	}
}

// Start dials the websocket and begins dispatching messages to the callbacks.
// It returns once the connection is established.
func (m *QueueMonitor) Start() error {
	conn, _, err := websocket.DefaultDialer.Dial(m.wsURL, nil)
	if err != nil {
		return fmt.Errorf("queue monitor dial: %w", err)
	}
	m.conn = conn
	go m.readLoop()
	return nil
}

// Close tears down the websocket connection and waits for the read loop to
// stop.
func (m *QueueMonitor) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	conn := m.conn
	m.mu.Unlock()

	if conn == nil {
		return // Start never succeeded, there is no read loop
	}
	conn.Close()
	<-m.done
}

func (m *QueueMonitor) readLoop() {
	defer close(m.done)
	for {
		_, message, err := m.conn.ReadMessage()
		if err != nil {
			m.mu.Lock()
			closed := m.closed
			m.mu.Unlock()
			if !closed {
				slog.Warn("queue monitor read error", "error", err)
			}
			return
		}
		m.dispatch(message)
	}
}

func (m *QueueMonitor) dispatch(raw []byte) {
	msg := &StatusMessage{}
	if err := json.Unmarshal(raw, msg); err != nil {
		slog.Warn("queue monitor: undecodable message", "error", err)
		return
	}

	switch data := msg.Data.(type) {
	case *StatusData:
		if m.callbacks.QueueCountChanged != nil {
			m.callbacks.QueueCountChanged(data.Status.ExecInfo.QueueRemaining)
		}
	case *ProgressData:
		if m.callbacks.NodeProgress != nil {
			m.callbacks.NodeProgress(data.Value, data.Max)
		}
	case *ExecutionErrorData:
		if m.callbacks.ExecutionError != nil {
			m.callbacks.ExecutionError(data.PromptID, data.ExceptionMessage)
		}
	}
}
