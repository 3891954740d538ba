package ipc

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/tim-hellhake/gateway-addon-go/pkg/log"
	"github.com/tim-hellhake/gateway-addon-go/pkg/wire"
)

// Client errors.
var (
	ErrNotConnected     = errors.New("not connected")
	ErrAlreadyConnected = errors.New("already connected")
)

// ClientConfig configures the gateway link.
type ClientConfig struct {
	// Network is the socket type ("unix" or "tcp").
	Network string

	// Address is the gateway IPC endpoint (socket path or host:port).
	Address string

	// MaxMessageSize is the maximum frame size (default: 64KB).
	MaxMessageSize uint32

	// DialTimeout bounds the connection attempt (default: 5s).
	DialTimeout time.Duration

	// Logger for link logging (optional).
	Logger log.Logger

	// OnMessage is called for every decoded inbound envelope.
	OnMessage func(msg wire.Message)

	// OnDisconnect is called when the link closes, with the cause
	// (nil on clean shutdown).
	OnDisconnect func(err error)

	// OnError is called for recoverable errors (bad frames).
	OnError func(err error)
}

// Client is the add-on side of the gateway IPC link.
type Client struct {
	config ClientConfig
	connID string
	logger log.Logger

	mu     sync.Mutex
	conn   net.Conn
	writer *FrameWriter

	running atomic.Bool
	wg      sync.WaitGroup
}

// NewClient creates a client. Connect establishes the link.
func NewClient(config ClientConfig) *Client {
	if config.Network == "" {
		config.Network = "unix"
	}
	if config.MaxMessageSize == 0 {
		config.MaxMessageSize = DefaultMaxMessageSize
	}
	if config.DialTimeout == 0 {
		config.DialTimeout = 5 * time.Second
	}
	logger := config.Logger
	if logger == nil {
		logger = log.NoopLogger{}
	}
	return &Client{
		config: config,
		connID: uuid.NewString(),
		logger: logger,
	}
}

// ConnectionID returns the UUID identifying this link in log events.
func (c *Client) ConnectionID() string {
	return c.connID
}

// Connect dials the gateway and starts the read loop.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running.Load() {
		return ErrAlreadyConnected
	}

	conn, err := net.DialTimeout(c.config.Network, c.config.Address, c.config.DialTimeout)
	if err != nil {
		return fmt.Errorf("failed to dial gateway at %s: %w", c.config.Address, err)
	}

	return c.attach(conn)
}

// Attach adopts an already-established connection (used by tests and
// by hosts that hand the add-on an inherited socket).
func (c *Client) Attach(conn net.Conn) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running.Load() {
		return ErrAlreadyConnected
	}
	return c.attach(conn)
}

func (c *Client) attach(conn net.Conn) error {
	c.conn = conn
	c.writer = NewFrameWriter(conn)
	c.writer.SetMaxMessageSize(c.config.MaxMessageSize)
	c.writer.SetLogger(c.logger, c.connID)
	c.running.Store(true)

	c.logger.Log(c.stateEvent("DISCONNECTED", "CONNECTED"))

	c.wg.Add(1)
	go c.readLoop(conn)
	return nil
}

// Send encodes and frames an envelope onto the link.
func (c *Client) Send(msg wire.Message) error {
	c.mu.Lock()
	writer := c.writer
	c.mu.Unlock()

	if writer == nil || !c.running.Load() {
		return ErrNotConnected
	}

	data, err := wire.Marshal(msg)
	if err != nil {
		return err
	}
	return writer.WriteFrame(data)
}

// Close shuts the link down and waits for the read loop to exit.
func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.writer = nil
	c.mu.Unlock()

	if !c.running.Swap(false) {
		return nil
	}

	var err error
	if conn != nil {
		err = conn.Close()
	}
	c.wg.Wait()

	c.logger.Log(c.stateEvent("CONNECTED", "DISCONNECTED"))
	return err
}

// Connected reports whether the link is up.
func (c *Client) Connected() bool {
	return c.running.Load()
}

func (c *Client) readLoop(conn net.Conn) {
	defer c.wg.Done()

	reader := NewFrameReader(conn)
	reader.SetMaxMessageSize(c.config.MaxMessageSize)
	reader.SetLogger(c.logger, c.connID)

	for {
		payload, err := reader.ReadFrame()
		if err != nil {
			// A read error after Close is the expected shutdown path.
			if !c.running.Swap(false) {
				err = nil
			}
			if err != nil {
				c.logger.Log(log.NewErrorEvent("ipc read", err))
			}
			if c.config.OnDisconnect != nil {
				c.config.OnDisconnect(err)
			}
			return
		}

		msg, err := wire.Unmarshal(payload)
		if err != nil {
			c.logger.Log(log.NewErrorEvent("ipc decode", err))
			if c.config.OnError != nil {
				c.config.OnError(err)
			}
			continue
		}

		if c.config.OnMessage != nil {
			c.config.OnMessage(msg)
		}
	}
}

func (c *Client) stateEvent(from, to string) log.Event {
	return log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.connID,
		Category:     log.CategoryState,
		State:        &log.StateChangeEvent{From: from, To: to},
	}
}
