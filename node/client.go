package node

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/J0ET0M/qubic-demo-explorer-sub003/interfaces"
	"github.com/J0ET0M/qubic-demo-explorer-sub003/model"
)

const defaultDialTimeout = 10 * time.Second

type subscribeRequest struct {
	Method    string `json:"method"`
	StartTick uint64 `json:"startTick,omitempty"`
	Latest    bool   `json:"latest,omitempty"`
}

type subscribeAck struct {
	OK         bool     `json:"ok"`
	LatestTick uint64   `json:"latestTick"`
	Error      *wireErr `json:"error,omitempty"`
}

type wireErr struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type tickFrame struct {
	Tick         uint64              `json:"tick"`
	Epoch        uint32              `json:"epoch"`
	Timestamp    int64               `json:"timestamp"`
	LatestTick   uint64              `json:"latestTick"`
	Transactions []model.Transaction `json:"transactions"`
	Events       []model.EventLog    `json:"events"`
}

type wsDialer struct {
	dialTimeout time.Duration
}

// NewDialer returns the websocket implementation of interfaces.NodeDialer.
func NewDialer(dialTimeout time.Duration) interfaces.NodeDialer {
	if dialTimeout <= 0 {
		dialTimeout = defaultDialTimeout
	}
	return &wsDialer{dialTimeout: dialTimeout}
}

func (d *wsDialer) DialAndSubscribe(ctx context.Context, url string, startTick uint64) (interfaces.TickStream, error) {
	dialCtx, cancel := context.WithTimeout(ctx, d.dialTimeout)
	defer cancel()

	dialer := websocket.Dialer{HandshakeTimeout: d.dialTimeout}
	conn, _, err := dialer.DialContext(dialCtx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	req := subscribeRequest{Method: "tick.subscribe"}
	if startTick == model.StartLatest {
		req.Latest = true
	} else {
		req.StartTick = startTick
	}
	if err := conn.WriteJSON(req); err != nil {
		conn.Close()
		return nil, fmt.Errorf("subscribe %s: %w", url, err)
	}

	var ack subscribeAck
	_ = conn.SetReadDeadline(time.Now().Add(d.dialTimeout))
	if err := conn.ReadJSON(&ack); err != nil {
		conn.Close()
		return nil, fmt.Errorf("subscribe ack %s: %w", url, err)
	}
	_ = conn.SetReadDeadline(time.Time{})

	if !ack.OK {
		conn.Close()
		if ack.Error == nil {
			return nil, fmt.Errorf("%w: subscription refused by %s", ErrProtocol, url)
		}
		switch ack.Error.Code {
		case 401, 403:
			return nil, fmt.Errorf("%w: %s", ErrUnauthorized, ack.Error.Message)
		case 505:
			return nil, fmt.Errorf("%w: %s", ErrProtocol, ack.Error.Message)
		default:
			return nil, fmt.Errorf("subscribe refused by %s: %s", url, ack.Error.Message)
		}
	}
	return &wsStream{conn: conn}, nil
}

type wsStream struct {
	conn *websocket.Conn
}

func (s *wsStream) Recv() (model.TickRecord, error) {
	var frame tickFrame
	if err := s.conn.ReadJSON(&frame); err != nil {
		if websocket.IsUnexpectedCloseError(err) {
			return model.TickRecord{}, fmt.Errorf("stream closed: %w", err)
		}
		// A frame that does not decode means the node speaks a different
		// dialect; reconnecting would only replay the confusion.
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
			return model.TickRecord{}, fmt.Errorf("%w: malformed tick frame: %v", ErrProtocol, err)
		}
		return model.TickRecord{}, err
	}
	return model.TickRecord{
		Tick:         frame.Tick,
		Epoch:        frame.Epoch,
		Timestamp:    time.UnixMilli(frame.Timestamp).UTC(),
		Transactions: frame.Transactions,
		Events:       frame.Events,
		IsCatchUp:    frame.Tick < frame.LatestTick,
	}, nil
}

func (s *wsStream) Close() error {
	deadline := time.Now().Add(time.Second)
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return s.conn.Close()
}
