package jsonrpc

import (
	"encoding/json"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

type frame struct {
	// common
	Jsonrpc string `json:"jsonrpc"`
	ID      *int64 `json:"id,omitempty"`

	// notification
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`

	// response
	Result json.RawMessage `json:"result,omitempty"`
	Error  *RPCError       `json:"error,omitempty"`
}

type notification struct {
	Subscription json.RawMessage `json:"subscription"`
	Result       json.RawMessage `json:"result"`
}

// subscription is owned by the connection loop once its request is sent.
type subscription struct {
	notify string
	unsub  string
	sink   func(result json.RawMessage, ok bool)

	id        string
	cancelled bool
}

func subKey(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

type wsConn struct {
	conn     *websocket.Conn
	requests <-chan clientRequest
	unsubs   <-chan *subscription
	stop     <-chan struct{}
	exiting  chan struct{}
	idCtr    *int64

	incoming chan frame
	readErr  error

	inflight map[int64]clientRequest
	subs     map[string]*subscription
}

func (c *wsConn) readLoop() {
	for {
		var f frame
		if err := c.conn.ReadJSON(&f); err != nil {
			c.readErr = err
			close(c.incoming)
			return
		}
		select {
		case c.incoming <- f:
		case <-c.exiting:
			return
		}
	}
}

func (c *wsConn) handleWsConn() {
	c.incoming = make(chan frame)
	c.inflight = map[int64]clientRequest{}
	c.subs = map[string]*subscription{}

	go c.readLoop()
	defer close(c.exiting)

	for {
		select {
		case f, ok := <-c.incoming:
			if !ok {
				log.Debugw("websocket closed", "error", c.readErr)
				c.shutdown()
				return
			}
			c.handleFrame(f)
		case req := <-c.requests:
			c.inflight[req.req.ID] = req
			if err := c.conn.WriteJSON(req.req); err != nil {
				log.Errorw("websocket write failed", "method", req.req.Method, "error", err)
				_ = c.conn.Close()
				c.shutdown()
				return
			}
		case s := <-c.unsubs:
			c.unsubscribe(s)
		case <-c.stop:
			if err := c.conn.Close(); err != nil {
				log.Debugw("websocket close error", "error", err)
			}
			c.shutdown()
			return
		}
	}
}

func (c *wsConn) handleFrame(f frame) {
	if f.ID == nil {
		if f.Method == "" {
			log.Warn("got frame with neither id nor method")
			return
		}
		var n notification
		if err := json.Unmarshal(f.Params, &n); err != nil {
			log.Warnw("bad notification params", "method", f.Method, "error", err)
			return
		}
		s, ok := c.subs[subKey(n.Subscription)]
		if !ok {
			log.Debugw("notification for unknown subscription", "method", f.Method, "subscription", string(n.Subscription))
			return
		}
		if s.notify != "" && s.notify != f.Method {
			log.Warnw("notification method mismatch", "got", f.Method, "expected", s.notify)
			return
		}
		s.sink(n.Result, true)
		return
	}

	req, ok := c.inflight[*f.ID]
	if !ok {
		log.Error("client got unknown ID in response")
		return
	}
	delete(c.inflight, *f.ID)

	resp := clientResponse{Result: f.Result, Error: f.Error}
	if req.sub != nil && f.Error == nil {
		s := req.sub
		s.id = subKey(f.Result)
		resp.subID = s.id
		// the response is processed before the next frame is read, so no
		// notification for this id can be missed
		c.subs[s.id] = s
		if s.cancelled {
			c.unsubscribe(s)
		}
	}
	req.ready <- resp
}

func (c *wsConn) unsubscribe(s *subscription) {
	if s.id == "" {
		s.cancelled = true
		return
	}
	if _, ok := c.subs[s.id]; !ok {
		return
	}
	delete(c.subs, s.id)
	s.sink(nil, false)

	if s.unsub == "" {
		return
	}
	id := atomic.AddInt64(c.idCtr, 1)
	req := request{
		Jsonrpc: "2.0",
		ID:      id,
		Method:  s.unsub,
		Params:  []param{newParam(s.id)},
	}
	c.inflight[id] = clientRequest{req: req, ready: make(chan clientResponse, 1)}
	if err := c.conn.WriteJSON(req); err != nil {
		log.Debugw("failed to unsubscribe", "subscription", s.id, "error", err)
	}
}

func (c *wsConn) shutdown() {
	for id, req := range c.inflight {
		req.ready <- clientResponse{err: ErrConnClosed}
		if req.sub != nil {
			req.sub.sink(nil, false)
		}
		delete(c.inflight, id)
	}
	for id, s := range c.subs {
		s.sink(nil, false)
		delete(c.subs, id)
	}
}
