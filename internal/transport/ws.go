package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"insights/internal/agentevent"
)

// DefaultStreamPath is the agent endpoint that streams events.
const DefaultStreamPath = "/api/realtime"

// WSStream reads agent events from a websocket connection. Every text frame
// holds one event envelope; frames that fail to decode are dropped.
type WSStream struct {
	conn    *websocket.Conn
	frames  chan frame
	done    chan struct{}
	once    sync.Once
	mu      sync.Mutex
	dropped int
}

type frame struct {
	data []byte
	err  error
}

// StreamURL joins the agent base URL and stream path, switching http(s)
// schemes to ws(s).
func StreamURL(baseURL, path string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return "", fmt.Errorf("parse agent url: %w", err)
	}
	switch parsed.Scheme {
	case "http":
		parsed.Scheme = "ws"
	case "https":
		parsed.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported agent url scheme %q", parsed.Scheme)
	}
	if path == "" {
		path = DefaultStreamPath
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/") + "/" + strings.TrimLeft(path, "/")
	return parsed.String(), nil
}

// DialStream connects to an event stream endpoint.
func DialStream(ctx context.Context, streamURL string, header http.Header) (*WSStream, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, streamURL, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial event stream: %w (status %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial event stream: %w", err)
	}
	return NewWSStream(conn), nil
}

// NewWSStream wraps an established connection and starts reading from it.
func NewWSStream(conn *websocket.Conn) *WSStream {
	s := &WSStream{
		conn:   conn,
		frames: make(chan frame, 64),
		done:   make(chan struct{}),
	}
	go s.readLoop()
	return s
}

// Recv returns the next decodable event. A normal close from the server is
// reported as io.EOF.
func (s *WSStream) Recv(ctx context.Context) (agentevent.Event, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case f, ok := <-s.frames:
			if !ok {
				return nil, io.EOF
			}
			if f.err != nil {
				return nil, f.err
			}
			ev, err := agentevent.Decode(f.data)
			if err != nil {
				s.mu.Lock()
				s.dropped++
				s.mu.Unlock()
				continue
			}
			return ev, nil
		}
	}
}

// Dropped reports how many frames could not be decoded.
func (s *WSStream) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Close shuts the connection down and stops the reader.
func (s *WSStream) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		err = s.conn.Close()
	})
	return err
}

func (s *WSStream) readLoop() {
	defer close(s.frames)
	for {
		kind, data, err := s.conn.ReadMessage()
		if err != nil {
			if isNormalClose(err) {
				return
			}
			select {
			case <-s.done:
			case s.frames <- frame{err: fmt.Errorf("read event stream: %w", err)}:
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		select {
		case <-s.done:
			return
		case s.frames <- frame{data: data}:
		}
	}
}

func isNormalClose(err error) bool {
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return true
	}
	return errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed)
}
