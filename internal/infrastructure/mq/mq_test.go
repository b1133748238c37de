package mq

import (
	"context"
	"sync"
	"testing"
	"time"

	"plural_proxy_server/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestChannelBusDeliversToAllSubscribers(t *testing.T) {
	bus := NewChannelBus()

	var mu sync.Mutex
	var got []string
	var wg sync.WaitGroup
	wg.Add(4)
	for i := 0; i < 2; i++ {
		bus.Subscribe(func(ctx context.Context, evt Event) {
			mu.Lock()
			got = append(got, evt.Type)
			mu.Unlock()
			wg.Done()
		})
	}
	bus.Start()

	for _, typ := range []string{EventMessageProxied, EventProxyMessageDeleted} {
		evt, err := NewEvent(typ, map[string]int{"n": 1})
		require.NoError(t, err)
		require.NoError(t, bus.Publish(context.Background(), evt))
	}
	wg.Wait()
	bus.Close()

	assert.ElementsMatch(t, []string{
		EventMessageProxied, EventMessageProxied,
		EventProxyMessageDeleted, EventProxyMessageDeleted,
	}, got)
}

func TestChannelBusSurvivesHandlerPanic(t *testing.T) {
	bus := NewChannelBus()
	delivered := make(chan struct{}, 1)
	bus.Subscribe(func(ctx context.Context, evt Event) { panic("boom") })
	bus.Subscribe(func(ctx context.Context, evt Event) { delivered <- struct{}{} })
	bus.Start()
	defer bus.Close()

	evt, err := NewEvent(EventMessageProxied, nil)
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), evt))

	select {
	case <-delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("second subscriber never received the event")
	}
}

func TestChannelBusPublishAfterClose(t *testing.T) {
	bus := NewChannelBus()
	bus.Start()
	bus.Close()
	bus.Close()

	evt, err := NewEvent(EventMessageProxied, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, bus.Publish(context.Background(), evt), ErrBusClosed)
}

func TestKafkaMessageEnvelope(t *testing.T) {
	evt, err := NewEvent(EventMessageProxied, MessageProxied{
		MessageID: 175928847299117063,
		ChannelID: 1,
		Content:   "hi",
		Member:    model.ProxyMember{Hid: "abcde", Name: "Alice"},
	})
	require.NoError(t, err)

	msg, err := encodeMessage(evt)
	require.NoError(t, err)
	assert.Equal(t, []byte(evt.ID), msg.Key)

	back, err := decodeMessage(msg)
	require.NoError(t, err)
	assert.Equal(t, evt.ID, back.ID)
	assert.Equal(t, EventMessageProxied, back.Type)

	var payload MessageProxied
	require.NoError(t, back.Decode(&payload))
	assert.Equal(t, int64(175928847299117063), payload.MessageID)
	assert.Equal(t, "abcde", payload.Member.Hid)
}
