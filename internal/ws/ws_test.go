package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietHub() *Hub {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return NewHub(l)
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg := <-c.send:
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
		return nil
	}
}

func TestHub_DeliversOnlyToTargetUser(t *testing.T) {
	h := quietHub()
	done := make(chan struct{})
	defer close(done)
	go h.Run(done)

	alice, bob := uuid.New(), uuid.New()
	a1 := &Client{hub: h, userID: alice, send: make(chan []byte, sendBuffer)}
	a2 := &Client{hub: h, userID: alice, send: make(chan []byte, sendBuffer)}
	b1 := &Client{hub: h, userID: bob, send: make(chan []byte, sendBuffer)}
	h.Register(a1)
	h.Register(a2)
	h.Register(b1)
	require.Eventually(t, func() bool { return h.ClientCount() == 3 }, time.Second, 5*time.Millisecond)

	SetDefaultHub(h)
	defer SetDefaultHub(nil)
	Notify([]uuid.UUID{alice, alice}, EventResumeAnalyzed, map[string]string{"resume_id": "r1"})

	var msg Message
	require.NoError(t, json.Unmarshal(receive(t, a1), &msg))
	assert.Equal(t, EventResumeAnalyzed, msg.Type)
	assert.NotEmpty(t, msg.Timestamp)
	receive(t, a2)

	select {
	case <-b1.send:
		t.Fatal("bob should not receive alice's event")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Len(t, a1.send, 0, "duplicate user ids are sent once")
}

func TestHub_DropsSlowClient(t *testing.T) {
	h := quietHub()
	done := make(chan struct{})
	defer close(done)
	go h.Run(done)

	id := uuid.New()
	slow := &Client{hub: h, userID: id, send: make(chan []byte)}
	h.Register(slow)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	h.SendTo(id, []byte(`{}`))
	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 5*time.Millisecond)

	_, open := <-slow.send
	assert.False(t, open)
}

func TestNotify_NoHub(t *testing.T) {
	SetDefaultHub(nil)
	assert.NotPanics(t, func() { Notify([]uuid.UUID{uuid.New()}, EventConnectionUpdated, nil) })
}
