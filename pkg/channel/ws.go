package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/driftwave/client/pkg/logger"
	"github.com/driftwave/client/pkg/record"
)

// WSChannel talks to a sync gateway: snapshots and writes over HTTP,
// change events over one websocket per entity subscription. Event frames
// are binary and use the same trailing-op-byte msgpack format as the
// redis channel.
type WSChannel struct {
	baseURL string // e.g. https://gateway.example.com
	wsURL   string // e.g. wss://gateway.example.com/events
	http    *http.Client
}

func NewWS(baseURL string, wsURL string) *WSChannel {
	return &WSChannel{baseURL: baseURL, wsURL: wsURL, http: http.DefaultClient}
}

func (w *WSChannel) FetchSnapshot(ctx context.Context, entity record.EntityType) ([]map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/sync/%s", w.baseURL, entity), nil)
	if err != nil {
		return nil, err
	}
	resp, err := w.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("snapshot fetch for %s: %s", entity, resp.Status)
	}
	var out []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

type wsWriteBody struct {
	Op      Op             `json:"op"`
	Id      string         `json:"id"`
	Payload map[string]any `json:"payload,omitempty"`
}

func (w *WSChannel) Write(ctx context.Context, entity record.EntityType, op Op, id string, payload map[string]any) error {
	body, err := json.Marshal(wsWriteBody{Op: op, Id: id, Payload: payload})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/sync/%s", w.baseURL, entity), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := w.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("write to %s: %s", entity, resp.Status)
	}
	return nil
}

func (w *WSChannel) Subscribe(ctx context.Context, entity record.EntityType) (Stream, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, fmt.Sprintf("%s?entity=%s", w.wsURL, entity), nil)
	if err != nil {
		return nil, err
	}
	stream := &wsStream{conn: conn, events: make(chan Event, 64)}
	go stream.pump(entity)
	return stream, nil
}

type wsStream struct {
	conn   *websocket.Conn
	events chan Event
}

func (s *wsStream) pump(entity record.EntityType) {
	defer close(s.events)
	for {
		msgType, payload, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.BinaryMessage || len(payload) < 2 {
			continue
		}
		op := payload[len(payload)-1]
		body := payload[:len(payload)-1]

		ev := Event{Entity: entity, Op: op}
		if op == OpDelete {
			if err := msgpack.Unmarshal(body, &ev.Id); err != nil {
				logger.Warn("ws channel: bad delete event", zap.Error(err))
				continue
			}
		} else {
			if err := msgpack.Unmarshal(body, &ev.Payload); err != nil {
				logger.Warn("ws channel: bad event payload", zap.Error(err))
				continue
			}
			if id, ok := ev.Payload["id"].(string); ok {
				ev.Id = id
			}
		}
		s.events <- ev
	}
}

func (s *wsStream) Events() <-chan Event { return s.events }
func (s *wsStream) Close() error         { return s.conn.Close() }
