package daemon

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/tpresley/todomvc-cycle/pkg/daemon/daemondefs"
	"github.com/tpresley/todomvc-cycle/pkg/store/storedefs"
)

// NewClient creates a new client to the daemon serving on the given socket.
// The connection is established lazily, when the first request is made.
func NewClient(sockPath string) daemondefs.Client {
	return &client{sockPath: sockPath}
}

type client struct {
	sockPath string

	mu   sync.Mutex
	conn *jsonrpc2.Conn
}

// The daemon only responds to requests and never calls methods on the client
// side.
var clientHandler = jsonrpc2.HandlerWithError(func(
	context.Context, *jsonrpc2.Conn, *jsonrpc2.Request) (any, error) {
	return nil, errMethodNotFound
})

func (c *client) SockPath() string { return c.sockPath }

func (c *client) ResetConn() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	conn := c.conn
	c.conn = nil
	return conn.Close()
}

func (c *client) Close() error {
	return c.ResetConn()
}

func (c *client) connect() (*jsonrpc2.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		netConn, err := net.Dial("unix", c.sockPath)
		if err != nil {
			return nil, err
		}
		c.conn = jsonrpc2.NewConn(context.Background(),
			jsonrpc2.NewBufferedStream(netConn, jsonrpc2.VSCodeObjectCodec{}),
			clientHandler)
	}
	return c.conn, nil
}

func (c *client) call(method string, params, result any) error {
	conn, err := c.connect()
	if err != nil {
		return err
	}
	err = conn.Call(context.Background(), method, params, result)
	var respErr *jsonrpc2.Error
	if errors.As(err, &respErr) && respErr.Code == codeNoKey {
		return storedefs.ErrNoKey
	}
	return err
}

func (c *client) Version() (int, error) {
	var resp versionResponse
	err := c.call(methodVersion, struct{}{}, &resp)
	return resp.Version, err
}

func (c *client) Pid() (int, error) {
	var resp pidResponse
	err := c.call(methodPid, struct{}{}, &resp)
	return resp.Pid, err
}

func (c *client) Get(key string) (string, error) {
	var resp getResponse
	err := c.call(methodGet, getRequest{key}, &resp)
	return resp.Value, err
}

func (c *client) Set(key, value string) error {
	return c.call(methodSet, setRequest{key, value}, nil)
}
