package daemon

import (
	"context"
	"encoding/json"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/tpresley/todomvc-cycle/pkg/store"
	"github.com/tpresley/todomvc-cycle/pkg/store/storedefs"
)

// ServeOpts keeps options that can be passed to Serve.
type ServeOpts struct {
	// If not nil, will be closed when the daemon is ready to serve requests.
	Ready chan<- struct{}
	// Causes the daemon to abort if closed or sent any data. If nil, Serve
	// will set up its own signal channel by listening to SIGINT and SIGTERM.
	Signals <-chan os.Signal
	// If not nil, overrides the response of the version RPC.
	Version *int
}

// Serve runs the daemon service, listening on the socket specified by
// sockpath and serving data from dbpath until all clients have exited. See
// doc for ServeOpts for additional options.
func Serve(sockpath, dbpath string, opts ServeOpts) int {
	logger.Println("pid is", os.Getpid())
	logger.Println("going to listen", sockpath)
	listener, err := net.Listen("unix", sockpath)
	if err != nil {
		logger.Printf("failed to listen on %s: %v", sockpath, err)
		logger.Println("aborting")
		return 2
	}

	st, err := store.NewStore(dbpath)
	if err != nil {
		logger.Printf("failed to open the database: %v", err)
		logger.Println("serving anyway")
	}

	version := Version
	if opts.Version != nil {
		version = *opts.Version
	}
	handler := (&service{version, st, err}).handler()

	connCh := make(chan net.Conn, 10)
	listenErrCh := make(chan error, 1)
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				listenErrCh <- err
				close(listenErrCh)
				return
			}
			connCh <- conn
		}
	}()

	sigCh := opts.Signals
	if sigCh == nil {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT)
		defer signal.Stop(ch)
		sigCh = ch
	}

	conns := make(map[*jsonrpc2.Conn]struct{})
	connDoneCh := make(chan *jsonrpc2.Conn, 10)

	interrupt := func() {
		if len(conns) == 0 {
			logger.Println("exiting since there are no clients")
		}
		logger.Printf("going to close %v active connections", len(conns))
		for conn := range conns {
			// Ignore the error - if we can't close the connection it's
			// because the client has closed it already.
			conn.Close()
		}
	}

	if opts.Ready != nil {
		close(opts.Ready)
	}

loop:
	for {
		select {
		case sig := <-sigCh:
			logger.Printf("received signal %v", sig)
			interrupt()
			break loop
		case err := <-listenErrCh:
			logger.Println("could not listen:", err)
			if len(conns) == 0 {
				logger.Println("exiting since there are no clients")
				break loop
			}
			logger.Println("continuing to serve until all existing clients exit")
		case conn := <-connCh:
			rpcConn := jsonrpc2.NewConn(context.Background(),
				jsonrpc2.NewBufferedStream(conn, jsonrpc2.VSCodeObjectCodec{}),
				handler)
			conns[rpcConn] = struct{}{}
			go func() {
				<-rpcConn.DisconnectNotify()
				connDoneCh <- rpcConn
			}()
		case conn := <-connDoneCh:
			delete(conns, conn)
			if len(conns) == 0 {
				logger.Println("all clients disconnected, exiting")
				break loop
			}
		}
	}

	err = os.Remove(sockpath)
	if err != nil {
		logger.Printf("failed to remove socket %s: %v", sockpath, err)
	}
	if st != nil {
		err = st.Close()
		if err != nil {
			logger.Printf("failed to close the store: %v", err)
		}
	}
	err = listener.Close()
	if err != nil {
		logger.Printf("failed to close listener: %v", err)
	}
	// Ensure that the listener goroutine has exited before returning.
	<-listenErrCh
	return 0
}

// service implements the daemon service. The err field stores the error that
// occurred when opening the store; if it is non-nil, store is nil and all
// store requests fail with it.
type service struct {
	apiVersion int
	store      storedefs.Store
	err        error
}

func (s *service) handler() jsonrpc2.Handler {
	return routingHandler(map[string]method{
		methodVersion: s.version,
		methodPid:     s.pid,
		methodGet:     s.get,
		methodSet:     s.set,
	})
}

func (s *service) version(_ context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return versionResponse{s.apiVersion}, nil
}

func (s *service) pid(_ context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return pidResponse{os.Getpid()}, nil
}

func (s *service) get(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var req getRequest
	if json.Unmarshal(rawParams, &req) != nil {
		return nil, errInvalidParams
	}
	if s.store == nil {
		return nil, &jsonrpc2.Error{Code: codeStoreError, Message: s.err.Error()}
	}
	value, err := s.store.Get(req.Key)
	if err == storedefs.ErrNoKey {
		return nil, errNoKey
	} else if err != nil {
		return nil, err
	}
	return getResponse{value}, nil
}

func (s *service) set(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var req setRequest
	if json.Unmarshal(rawParams, &req) != nil {
		return nil, errInvalidParams
	}
	if s.store == nil {
		return nil, &jsonrpc2.Error{Code: codeStoreError, Message: s.err.Error()}
	}
	err := s.store.Set(req.Key, req.Value)
	if err != nil {
		return nil, err
	}
	return nil, nil
}

type method func(context.Context, jsonrpc2.JSONRPC2, json.RawMessage) (any, error)

func routingHandler(methods map[string]method) jsonrpc2.Handler {
	return jsonrpc2.HandlerWithError(func(
		ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
		fn, ok := methods[req.Method]
		if !ok {
			return nil, errMethodNotFound
		}
		var rawParams json.RawMessage
		if req.Params != nil {
			rawParams = *req.Params
		}
		return fn(ctx, conn, rawParams)
	})
}

var (
	errMethodNotFound = &jsonrpc2.Error{
		Code: jsonrpc2.CodeMethodNotFound, Message: "method not found"}
	errInvalidParams = &jsonrpc2.Error{
		Code: jsonrpc2.CodeInvalidParams, Message: "invalid params"}
	errNoKey = &jsonrpc2.Error{
		Code: codeNoKey, Message: storedefs.ErrNoKey.Error()}
)
