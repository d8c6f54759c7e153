package jsonrpc

import (
	"container/list"
	"context"
	"encoding/json"
	"net/http"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
	logging "github.com/ipfs/go-log/v2"
	"go.opencensus.io/trace"
	"golang.org/x/xerrors"
)

var log = logging.Logger("rpc")

var (
	errorType   = reflect.TypeOf(new(error)).Elem()
	contextType = reflect.TypeOf(new(context.Context)).Elem()
)

type param struct {
	v reflect.Value
}

func newParam(v interface{}) param {
	return param{v: reflect.ValueOf(v)}
}

func (p param) MarshalJSON() ([]byte, error) {
	if !p.v.IsValid() {
		return []byte("null"), nil
	}
	return json.Marshal(p.v.Interface())
}

type request struct {
	Jsonrpc string  `json:"jsonrpc"`
	ID      int64   `json:"id"`
	Method  string  `json:"method"`
	Params  []param `json:"params"`
}

type clientResponse struct {
	Result json.RawMessage
	Error  *RPCError

	subID string
	err   error
}

type clientRequest struct {
	req   request
	ready chan clientResponse

	// sub is set for subscription requests
	sub *subscription
}

// ClientCloser is used to close Client from further use
type ClientCloser func()

type client struct {
	requests chan clientRequest
	unsubs   chan *subscription
	exiting  <-chan struct{}
	idCtr    int64
}

// NewClient creates new jsonrpc 2.0 client
//
// handler must be pointer to a struct with function fields tagged with
// `rpc_method`. Returned value closes the client connection.
func NewClient(ctx context.Context, addr string, handler interface{}, requestHeader http.Header) (ClientCloser, error) {
	return NewMergeClient(ctx, addr, []interface{}{handler}, requestHeader)
}

// NewMergeClient is like NewClient, but allows to specify multiple structs
// to be filled using one connection
func NewMergeClient(ctx context.Context, addr string, outs []interface{}, requestHeader http.Header) (ClientCloser, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, addr, requestHeader)
	if err != nil {
		return nil, xerrors.Errorf("dialing %s: %w", addr, err)
	}

	c := &client{
		requests: make(chan clientRequest),
		unsubs:   make(chan *subscription),
	}

	stop := make(chan struct{})
	exiting := make(chan struct{})
	c.exiting = exiting

	for _, handler := range outs {
		htyp := reflect.TypeOf(handler)
		if htyp.Kind() != reflect.Ptr {
			_ = conn.Close()
			return nil, xerrors.New("expected handler to be a pointer")
		}
		typ := htyp.Elem()
		if typ.Kind() != reflect.Struct {
			_ = conn.Close()
			return nil, xerrors.New("handler should be a struct")
		}

		val := reflect.ValueOf(handler)

		for i := 0; i < typ.NumField(); i++ {
			fn, err := c.makeRpcFunc(typ.Field(i))
			if err != nil {
				_ = conn.Close()
				return nil, xerrors.Errorf("%s.%s: %w", typ.Name(), typ.Field(i).Name, err)
			}

			val.Elem().Field(i).Set(fn)
		}
	}

	go (&wsConn{
		conn:     conn,
		requests: c.requests,
		unsubs:   c.unsubs,
		stop:     stop,
		exiting:  exiting,
		idCtr:    &c.idCtr,
	}).handleWsConn()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-exiting
		})
	}, nil
}

// chanSink buffers notifications between the connection loop, which must
// never block, and the subscriber.
type chanSink struct {
	elem reflect.Type

	lk     sync.Mutex
	buf    *list.List
	closed bool
	wake   chan struct{}
}

func newChanSink(elem reflect.Type) *chanSink {
	return &chanSink{
		elem: elem,
		buf:  list.New(),
		wake: make(chan struct{}, 1),
	}
}

func (s *chanSink) push(result json.RawMessage, ok bool) {
	s.lk.Lock()
	if s.closed {
		s.lk.Unlock()
		return
	}
	if !ok {
		s.closed = true
	} else {
		val := reflect.New(s.elem)
		if err := json.Unmarshal(result, val.Interface()); err != nil {
			log.Errorf("error unmarshaling chan response: %s", err)
		} else {
			s.buf.PushBack(val.Elem())
			if s.buf.Len() > 1 {
				log.Warnw("rpc output message buffer", "n", s.buf.Len())
			}
		}
	}
	s.lk.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// forward delivers buffered values to ch until the remote side closes the
// subscription. Once ctx is done buffered values are dropped and cancel is
// called once.
func (s *chanSink) forward(ctx context.Context, ch reflect.Value, cancel func()) {
	defer ch.Close()

	ctxDone := ctx.Done()
	cancelled := false
	for {
		s.lk.Lock()
		front := s.buf.Front()
		if front != nil {
			s.buf.Remove(front)
		}
		closed := s.closed
		s.lk.Unlock()

		if front == nil {
			if closed {
				return
			}
			select {
			case <-s.wake:
			case <-ctxDone:
				ctxDone = nil
				cancelled = true
				cancel()
			}
			continue
		}
		if cancelled {
			continue
		}

		chosen, _, _ := reflect.Select([]reflect.SelectCase{
			{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ctxDone)},
			{Dir: reflect.SelectSend, Chan: ch, Send: front.Value.(reflect.Value)},
		})
		if chosen == 0 {
			ctxDone = nil
			cancelled = true
			cancel()
		}
	}
}

func (c *client) sendRequest(ctx context.Context, creq clientRequest) (clientResponse, error) {
	select {
	case c.requests <- creq:
	case <-c.exiting:
		return clientResponse{}, ErrConnClosed
	case <-ctx.Done():
		return clientResponse{}, ctx.Err()
	}

	select {
	case resp := <-creq.ready:
		return resp, resp.err
	case <-ctx.Done():
		if creq.sub != nil {
			c.unsubscribe(creq.sub)
		}
		return clientResponse{}, ctx.Err()
	}
}

func (c *client) unsubscribe(s *subscription) {
	select {
	case c.unsubs <- s:
	case <-c.exiting:
	}
}

type rpcFunc struct {
	client *client

	ftyp   reflect.Type
	method string
	notify string
	unsub  string

	nout   int
	valOut int
	errOut int

	hasCtx int
	retCh  bool
}

func (fn *rpcFunc) processResponse(rval reflect.Value, err error) []reflect.Value {
	out := make([]reflect.Value, fn.nout)

	if fn.valOut != -1 {
		if rval.IsValid() {
			out[fn.valOut] = rval
		} else {
			out[fn.valOut] = reflect.New(fn.ftyp.Out(fn.valOut)).Elem()
		}
	}
	if fn.errOut != -1 {
		out[fn.errOut] = reflect.New(errorType).Elem()
		if err != nil {
			out[fn.errOut].Set(reflect.ValueOf(err))
		}
	}

	return out
}

func (fn *rpcFunc) processError(err error) []reflect.Value {
	return fn.processResponse(reflect.Value{}, &ErrClient{err})
}

func (fn *rpcFunc) handleRpcCall(args []reflect.Value) (results []reflect.Value) {
	id := atomic.AddInt64(&fn.client.idCtr, 1)
	params := make([]param, len(args)-fn.hasCtx)
	for i, arg := range args[fn.hasCtx:] {
		params[i] = param{v: arg}
	}

	ctx := context.Background()
	if fn.hasCtx == 1 {
		ctx = args[0].Interface().(context.Context)
	}
	ctx, span := trace.StartSpan(ctx, "api.call")
	defer span.End()
	span.AddAttributes(trace.StringAttribute("method", fn.method))

	creq := clientRequest{
		req: request{
			Jsonrpc: "2.0",
			ID:      id,
			Method:  fn.method,
			Params:  params,
		},
		ready: make(chan clientResponse, 1),
	}

	var sink *chanSink
	if fn.retCh {
		sink = newChanSink(fn.ftyp.Out(fn.valOut).Elem())
		creq.sub = &subscription{
			notify: fn.notify,
			unsub:  fn.unsub,
			sink:   sink.push,
		}
	}

	resp, err := fn.client.sendRequest(ctx, creq)
	if err != nil {
		return fn.processError(xerrors.Errorf("sendRequest failed: %w", err))
	}
	if resp.Error != nil {
		return fn.processResponse(reflect.Value{}, resp.Error)
	}

	if fn.valOut == -1 {
		return fn.processResponse(reflect.Value{}, nil)
	}

	if fn.retCh {
		// detach from the call span, the subscription outlives it
		subCtx := context.Background()
		if fn.hasCtx == 1 {
			subCtx = args[0].Interface().(context.Context)
		}
		ctyp := reflect.ChanOf(reflect.BothDir, fn.ftyp.Out(fn.valOut).Elem())
		ch := reflect.MakeChan(ctyp, 0)
		sub := creq.sub
		go sink.forward(subCtx, ch, func() { fn.client.unsubscribe(sub) })
		log.Debugw("subscribed", "method", fn.method, "subscription", resp.subID)
		return fn.processResponse(ch.Convert(fn.ftyp.Out(fn.valOut)), nil)
	}

	val := reflect.New(fn.ftyp.Out(fn.valOut))
	if len(resp.Result) > 0 {
		if err := json.Unmarshal(resp.Result, val.Interface()); err != nil {
			log.Warnw("unmarshaling failed", "method", fn.method, "message", string(resp.Result))
			return fn.processError(xerrors.Errorf("unmarshaling result: %w", err))
		}
	}
	return fn.processResponse(val.Elem(), nil)
}

func (c *client) makeRpcFunc(f reflect.StructField) (reflect.Value, error) {
	ftyp := f.Type
	if ftyp.Kind() != reflect.Func {
		return reflect.Value{}, xerrors.New("handler field not a func")
	}

	fun := &rpcFunc{
		client: c,
		ftyp:   ftyp,
		method: f.Tag.Get("rpc_method"),
		notify: f.Tag.Get("notify"),
		unsub:  f.Tag.Get("unsub"),
	}
	if fun.method == "" {
		return reflect.Value{}, xerrors.New("missing rpc_method tag")
	}

	var err error
	fun.valOut, fun.errOut, fun.nout, err = processFuncOut(ftyp)
	if err != nil {
		return reflect.Value{}, err
	}

	if ftyp.NumIn() > 0 && ftyp.In(0) == contextType {
		fun.hasCtx = 1
	}
	fun.retCh = fun.valOut != -1 && ftyp.Out(fun.valOut).Kind() == reflect.Chan
	if fun.retCh && ftyp.Out(fun.valOut).ChanDir()&reflect.RecvDir == 0 {
		return reflect.Value{}, xerrors.New("subscription channel must be receivable")
	}

	return reflect.MakeFunc(ftyp, fun.handleRpcCall), nil
}

func processFuncOut(funcType reflect.Type) (valOut int, errOut int, n int, err error) {
	errOut = -1
	valOut = -1
	n = funcType.NumOut()

	switch n {
	case 0:
	case 1:
		if funcType.Out(0) == errorType {
			errOut = 0
		} else {
			valOut = 0
		}
	case 2:
		valOut = 0
		errOut = 1
		if funcType.Out(1) != errorType {
			return 0, 0, 0, xerrors.New("expected error as second return value")
		}
	default:
		return 0, 0, 0, xerrors.New("too many return values")
	}

	return valOut, errOut, n, nil
}
