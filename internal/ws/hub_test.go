package ws

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeConn struct {
	mu       sync.Mutex
	messages [][]byte
	closed   bool
	fail     bool
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("broken pipe")
	}
	c.messages = append(c.messages, data)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

func TestPublishIsScopedByCompany(t *testing.T) {
	hub := NewHub(zap.NewNop())
	go hub.Run()
	defer hub.Stop()

	acme, globex := uuid.New(), uuid.New()
	acmeConn, globexConn, superConn := &fakeConn{}, &fakeConn{}, &fakeConn{}
	hub.Register <- &Client{Conn: acmeConn, CompanyID: &acme}
	hub.Register <- &Client{Conn: globexConn, CompanyID: &globex}
	hub.Register <- &Client{Conn: superConn}

	hub.Publish(acme, map[string]string{"type": "stock_update"})

	require.Eventually(t, func() bool { return acmeConn.count() == 1 && superConn.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Zero(t, globexConn.count())
	assert.JSONEq(t, `{"type":"stock_update"}`, string(acmeConn.messages[0]))
}

func TestFailedWriteDropsClient(t *testing.T) {
	hub := NewHub(zap.NewNop())
	go hub.Run()
	defer hub.Stop()

	company := uuid.New()
	broken := &fakeConn{fail: true}
	hub.Register <- &Client{Conn: broken, CompanyID: &company}
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	hub.Publish(company, "x")
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
	assert.True(t, broken.closed)
}

func TestUnregisterClosesConn(t *testing.T) {
	hub := NewHub(zap.NewNop())
	go hub.Run()
	defer hub.Stop()

	conn := &fakeConn{}
	client := &Client{Conn: conn}
	hub.Register <- client
	hub.Unregister <- client

	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
	assert.True(t, conn.closed)
}

func TestJoinAfterStop(t *testing.T) {
	hub := NewHub(zap.NewNop())
	go hub.Run()

	client := &Client{Conn: &fakeConn{}}
	require.True(t, hub.Join(client))
	hub.Stop()

	assert.False(t, hub.Join(&Client{Conn: &fakeConn{}}))
	hub.Leave(client)
}

func TestRevokeUserClosesOnlyTheirStreams(t *testing.T) {
	hub := NewHub(zap.NewNop())
	go hub.Run()
	defer hub.Stop()

	company := uuid.New()
	bob, carol := uuid.New(), uuid.New()
	phone, laptop, other := &fakeConn{}, &fakeConn{}, &fakeConn{}
	require.True(t, hub.Join(&Client{Conn: phone, UserID: bob, CompanyID: &company}))
	require.True(t, hub.Join(&Client{Conn: laptop, UserID: bob, CompanyID: &company}))
	require.True(t, hub.Join(&Client{Conn: other, UserID: carol, CompanyID: &company}))
	require.Eventually(t, func() bool { return hub.ClientCount() == 3 }, time.Second, 5*time.Millisecond)

	hub.RevokeUser(bob)
	assert.Equal(t, 1, hub.ClientCount())
	assert.True(t, phone.closed)
	assert.True(t, laptop.closed)
	assert.False(t, other.closed)

	hub.Publish(company, "x")
	require.Eventually(t, func() bool { return other.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Zero(t, phone.count())
}
