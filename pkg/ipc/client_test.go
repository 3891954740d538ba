package ipc

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tim-hellhake/gateway-addon-go/pkg/wire"
)

// fakeGateway drives the far end of a piped link. Reads run on their
// own goroutine because net.Pipe is synchronous.
type fakeGateway struct {
	conn net.Conn
	fw   *FrameWriter
	msgs chan wire.Message
}

func newFakeGateway(t *testing.T, conn net.Conn) *fakeGateway {
	t.Helper()
	g := &fakeGateway{
		conn: conn,
		fw:   NewFrameWriter(conn),
		msgs: make(chan wire.Message, 16),
	}
	fr := NewFrameReader(conn)
	go func() {
		for {
			payload, err := fr.ReadFrame()
			if err != nil {
				close(g.msgs)
				return
			}
			msg, err := wire.Unmarshal(payload)
			if err != nil {
				continue
			}
			g.msgs <- msg
		}
	}()
	t.Cleanup(func() { conn.Close() })
	return g
}

func (g *fakeGateway) send(t *testing.T, msgType wire.MessageType, data any) {
	t.Helper()
	msg, err := wire.NewMessage(msgType, data)
	require.NoError(t, err)
	raw, err := wire.Marshal(msg)
	require.NoError(t, err)
	require.NoError(t, g.fw.WriteFrame(raw))
}

func (g *fakeGateway) next(t *testing.T) wire.Message {
	t.Helper()
	select {
	case msg, ok := <-g.msgs:
		require.True(t, ok, "link closed before expected message")
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return wire.Message{}
	}
}

func attachedClient(t *testing.T, config ClientConfig) (*Client, *fakeGateway) {
	t.Helper()
	clientEnd, gatewayEnd := net.Pipe()
	client := NewClient(config)
	require.NoError(t, client.Attach(clientEnd))
	t.Cleanup(func() { client.Close() })
	return client, newFakeGateway(t, gatewayEnd)
}

func TestClientSendReceive(t *testing.T) {
	received := make(chan wire.Message, 1)
	client, gateway := attachedClient(t, ClientConfig{
		OnMessage: func(msg wire.Message) { received <- msg },
	})

	msg, err := wire.NewMessage(wire.MessageAddonRegister, wire.AddonRegisterData{
		AddonID: "virtual-things",
		Version: "1.0.0",
	})
	require.NoError(t, err)
	require.NoError(t, client.Send(msg))

	got := gateway.next(t)
	assert.Equal(t, wire.MessageAddonRegister, got.MessageType)

	var data wire.AddonRegisterData
	require.NoError(t, got.DecodeData(&data))
	assert.Equal(t, "virtual-things", data.AddonID)

	gateway.send(t, wire.MessageUnload, nil)
	select {
	case inbound := <-received:
		assert.Equal(t, wire.MessageUnload, inbound.MessageType)
	case <-time.After(time.Second):
		t.Fatal("inbound message not dispatched")
	}
}

func TestClientClose(t *testing.T) {
	disconnected := make(chan error, 1)
	client, _ := attachedClient(t, ClientConfig{
		OnDisconnect: func(err error) { disconnected <- err },
	})

	require.True(t, client.Connected())
	require.NoError(t, client.Close())
	assert.False(t, client.Connected())

	select {
	case err := <-disconnected:
		assert.NoError(t, err, "clean shutdown must not report a cause")
	case <-time.After(time.Second):
		t.Fatal("OnDisconnect not called")
	}

	msg, err := wire.NewMessage(wire.MessageUnload, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, client.Send(msg), ErrNotConnected)

	// Close is idempotent.
	assert.NoError(t, client.Close())
}

func TestClientPeerDisconnect(t *testing.T) {
	disconnected := make(chan error, 1)
	client, gateway := attachedClient(t, ClientConfig{
		OnDisconnect: func(err error) { disconnected <- err },
	})

	gateway.conn.Close()

	select {
	case err := <-disconnected:
		assert.Error(t, err, "peer loss must report a cause")
	case <-time.After(time.Second):
		t.Fatal("OnDisconnect not called")
	}
	assert.False(t, client.Connected())
}

func TestClientAttachTwice(t *testing.T) {
	client, _ := attachedClient(t, ClientConfig{})

	otherEnd, _ := net.Pipe()
	defer otherEnd.Close()
	assert.ErrorIs(t, client.Attach(otherEnd), ErrAlreadyConnected)
}

func TestClientBadFrame(t *testing.T) {
	errs := make(chan error, 1)
	_, gateway := attachedClient(t, ClientConfig{
		OnError: func(err error) { errs <- err },
	})

	require.NoError(t, gateway.fw.WriteFrame([]byte("not json")))

	select {
	case err := <-errs:
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("decode error not surfaced")
	}
}
