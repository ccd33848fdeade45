package wmbridge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/opd-ai/wmbridge/events"
	"github.com/opd-ai/wmbridge/interfaces"
	"github.com/opd-ai/wmbridge/limits"
	"github.com/opd-ai/wmbridge/queue"
	simtesting "github.com/opd-ai/wmbridge/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newSimClient(t *testing.T, capacity int) (*Client, *simtesting.SimulatedSession) {
	t.Helper()
	sim := simtesting.NewSimulatedSession(&interfaces.SessionConfig{
		StorageAddress: "test.db",
		DeviceName:     "TestApp",
		UseSimulation:  true,
	})
	opts := NewClientOptions()
	opts.QueueCapacity = capacity
	opts.TimeProvider = fixedClock{time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := NewClient(sim, opts)
	t.Cleanup(c.Destroy)
	return c, sim
}

func pollEnvelope(t *testing.T, c *Client) (events.Envelope, bool) {
	t.Helper()
	buf := make([]byte, limits.DefaultEventBufferSize)
	n, err := c.PollEvent(buf)
	require.NoError(t, err)
	if n == 0 {
		return events.Envelope{}, false
	}
	env, err := events.Decode(buf[:n])
	require.NoError(t, err)
	return env, true
}

func TestNewClientStartsCreated(t *testing.T) {
	c, sim := newSimClient(t, 0)

	assert.Equal(t, StateCreated, c.State())
	assert.Empty(t, c.LastError())
	assert.Equal(t, 0, c.PendingEvents())
	assert.Equal(t, 1, sim.GetTypedStats().Handlers)
}

type failingCreator struct{ err error }

func (f failingCreator) CreateSession(context.Context, string, string) (interfaces.ISession, error) {
	return nil, f.err
}

type simCreator struct{}

func (simCreator) CreateSession(_ context.Context, storage, name string) (interfaces.ISession, error) {
	return simtesting.NewSimulatedSession(&interfaces.SessionConfig{
		StorageAddress: storage,
		DeviceName:     name,
		UseSimulation:  true,
	}), nil
}

func TestCreate(t *testing.T) {
	c, err := Create(context.Background(), simCreator{}, "test.db", "TestApp", nil)
	require.NoError(t, err)
	defer c.Destroy()
	assert.Equal(t, StateCreated, c.State())

	_, err = Create(context.Background(), failingCreator{errors.New("disk full")}, "x.db", "x", nil)
	assert.ErrorIs(t, err, ErrInit)
	assert.ErrorContains(t, err, "disk full")
}

func TestConnectUnpairedEmitsPairingCode(t *testing.T) {
	c, sim := newSimClient(t, 0)

	require.NoError(t, c.Connect())
	assert.Equal(t, StateConnected, c.State())
	assert.Equal(t, 1, sim.GetTypedStats().PairingStreams)

	var env events.Envelope
	require.Eventually(t, func() bool {
		var ok bool
		env, ok = pollEnvelope(t, c)
		return ok
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, "pairing_code", env.Type)
	require.NotNil(t, env.Data)

	payload, err := env.Payload()
	require.NoError(t, err)
	code := payload.(*events.PairingCode)
	require.Len(t, code.Codes, 1)
	assert.True(t, strings.HasPrefix(code.Codes[0], "2@"))
}

func TestConnectPairedSkipsPairing(t *testing.T) {
	c, sim := newSimClient(t, 0)
	sim.SetPaired(true)

	require.NoError(t, c.Connect())
	assert.Equal(t, 0, sim.GetTypedStats().PairingStreams)

	env, ok := pollEnvelope(t, c)
	require.True(t, ok)
	assert.Equal(t, "connected", env.Type)
	assert.Nil(t, env.Data)
}

func TestConnectIsIdempotent(t *testing.T) {
	c, sim := newSimClient(t, 0)

	require.NoError(t, c.Connect())
	require.NoError(t, c.Connect())

	stats := sim.GetTypedStats()
	assert.Equal(t, 2, stats.ConnectCalls)
	assert.Equal(t, 1, stats.PairingStreams)
	assert.Equal(t, StateConnected, c.State())
}

func TestConnectFailure(t *testing.T) {
	c, sim := newSimClient(t, 0)
	sim.SetPaired(true)
	sim.FailConnect(errors.New("dial tcp: connection refused"))

	err := c.Connect()
	assert.ErrorIs(t, err, ErrConnect)
	assert.Equal(t, StateDisconnected, c.State())
	assert.Equal(t, "dial tcp: connection refused", c.LastError())

	sim.FailConnect(nil)
	require.NoError(t, c.Connect())
	assert.Equal(t, StateConnected, c.State())
}

func TestDisconnect(t *testing.T) {
	c, sim := newSimClient(t, 0)
	sim.SetPaired(true)

	require.NoError(t, c.Disconnect(), "disconnect before connect")
	assert.Equal(t, StateDisconnected, c.State())

	require.NoError(t, c.Connect())
	require.NoError(t, c.Disconnect())
	require.NoError(t, c.Disconnect())
	assert.Equal(t, StateDisconnected, c.State())
	assert.False(t, sim.IsConnected())
}

func TestInvoluntaryTransitions(t *testing.T) {
	c, sim := newSimClient(t, 0)
	sim.SetPaired(true)
	require.NoError(t, c.Connect())

	sim.SimulateDisconnect()
	assert.Equal(t, StateDisconnected, c.State())

	sim.Emit(&events.Connected{})
	assert.Equal(t, StateConnected, c.State())

	sim.Emit(&events.LoggedOut{Reason: 401})
	assert.Equal(t, StateDisconnected, c.State())

	// Created is left only by an explicit call.
	fresh, freshSim := newSimClient(t, 0)
	freshSim.Emit(&events.Connected{})
	assert.Equal(t, StateCreated, fresh.State())
}

func TestSimulatedPairingFlow(t *testing.T) {
	c, sim := newSimClient(t, 0)
	require.NoError(t, c.Connect())
	require.Eventually(t, func() bool { return c.PendingEvents() == 1 }, time.Second, 5*time.Millisecond)

	sim.SimulatePairing("15551234567.0:1@s.whatsapp.net")

	var tags []string
	require.Eventually(t, func() bool {
		for {
			env, ok := pollEnvelope(t, c)
			if !ok {
				break
			}
			tags = append(tags, env.Type)
		}
		return len(tags) >= 4
	}, time.Second, 5*time.Millisecond)

	assert.Contains(t, tags, "pair_success")
	assert.Contains(t, tags, "connected")
	assert.Equal(t, "pairing_code", tags[0])
}

func TestSendMessage(t *testing.T) {
	c, sim := newSimClient(t, 0)
	sim.SetPaired(true)

	err := c.SendMessage("15551234567", "hello")
	assert.ErrorIs(t, err, ErrConnect)
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.Equal(t, ErrNotConnected.Error(), c.LastError())

	require.NoError(t, c.Connect())
	require.NoError(t, c.SendMessage("15551234567", "hello"))

	sent := sim.GetSentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "15551234567", sent[0].Recipient)
	assert.Equal(t, "hello", sent[0].Text)
}

func TestSendMessageValidation(t *testing.T) {
	c, sim := newSimClient(t, 0)
	sim.SetPaired(true)
	require.NoError(t, c.Connect())

	tests := []struct {
		name      string
		recipient string
		text      string
		want      error
	}{
		{"empty text", "15551234567", "", limits.ErrMessageEmpty},
		{"empty recipient", "", "hi", limits.ErrMessageEmpty},
		{"oversize text", "15551234567", strings.Repeat("x", limits.MaxTextMessage+1), limits.ErrMessageTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.SendMessage(tt.recipient, tt.text)
			assert.ErrorIs(t, err, ErrConnect)
			assert.ErrorIs(t, err, tt.want)
			assert.NotEmpty(t, c.LastError())
		})
	}
	assert.Empty(t, sim.GetSentMessages())
}

func TestSendMessageProtocolFailure(t *testing.T) {
	c, sim := newSimClient(t, 0)
	sim.SetPaired(true)
	require.NoError(t, c.Connect())

	sim.FailSends(errors.New("server returned error 479"))
	err := c.SendMessage("15551234567", "hi")
	assert.ErrorIs(t, err, ErrConnect)
	assert.Equal(t, "server returned error 479", c.LastError())
}

func TestPollEventEmpty(t *testing.T) {
	c, _ := newSimClient(t, 0)

	buf := []byte("untouched")
	for i := 0; i < 3; i++ {
		n, err := c.PollEvent(buf)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
		assert.Equal(t, "untouched", string(buf))
	}
}

func TestPollEventBufferTooSmallKeepsEvent(t *testing.T) {
	c, sim := newSimClient(t, 0)
	sim.Emit(&events.Message{ID: "m1", From: "a@s.whatsapp.net", Text: "hello there"})

	size, ok := c.NextEventSize()
	require.True(t, ok)

	small := make([]byte, size-1)
	for i := range small {
		small[i] = 0xAA
	}
	n, err := c.PollEvent(small)
	assert.ErrorIs(t, err, queue.ErrTooLarge)
	assert.Equal(t, size, n)
	for _, b := range small {
		require.Equal(t, byte(0xAA), b)
	}
	assert.Equal(t, 1, c.PendingEvents())

	exact := make([]byte, size)
	n, err = c.PollEvent(exact)
	require.NoError(t, err)
	assert.Equal(t, size, n)
	assert.Equal(t, 0, c.PendingEvents())
}

func TestQueueOverflowDropsOldest(t *testing.T) {
	c, sim := newSimClient(t, 4)

	for i := 1; i <= 6; i++ {
		sim.Emit(&events.HistorySync{Progress: i})
	}
	assert.Equal(t, 4, c.PendingEvents())

	var got []int
	for {
		env, ok := pollEnvelope(t, c)
		if !ok {
			break
		}
		payload, err := env.Payload()
		require.NoError(t, err)
		got = append(got, payload.(*events.HistorySync).Progress)
	}
	assert.Equal(t, []int{3, 4, 5, 6}, got)
	assert.Equal(t, uint64(2), c.QueueStats().Dropped)
}

func TestUnmarshalableEventIsDropped(t *testing.T) {
	c, sim := newSimClient(t, 0)

	sim.Emit(events.NewUnknown(make(chan int)))
	sim.Emit(&events.Connected{})

	assert.Equal(t, 1, c.PendingEvents())
	env, ok := pollEnvelope(t, c)
	require.True(t, ok)
	assert.Equal(t, "connected", env.Type)
}

func TestDestroy(t *testing.T) {
	c, sim := newSimClient(t, 0)
	require.NoError(t, c.Connect())

	c.Destroy()
	c.Destroy()

	assert.Equal(t, StateDestroyed, c.State())
	stats := sim.GetTypedStats()
	assert.True(t, stats.Closed)
	assert.False(t, stats.Connected)

	assert.ErrorIs(t, c.Connect(), ErrDestroyed)
	assert.ErrorIs(t, c.Disconnect(), ErrDestroyed)
	assert.ErrorIs(t, c.SendMessage("1", "x"), ErrDestroyed)
	_, err := c.PollEvent(make([]byte, 16))
	assert.ErrorIs(t, err, ErrDestroyed)

	// Producers stop after destroy.
	pending := c.PendingEvents()
	sim.Emit(&events.Connected{})
	assert.Equal(t, pending, c.PendingEvents())
}

func TestDestroyStopsPairingForwarder(t *testing.T) {
	c, _ := newSimClient(t, 0)
	require.NoError(t, c.Connect())
	require.True(t, c.isPairing())

	done := make(chan struct{})
	go func() {
		c.Destroy()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Destroy did not return; pairing forwarder still running")
	}
	assert.False(t, c.isPairing())
}

func TestConcurrentProducersAndConsumer(t *testing.T) {
	c, sim := newSimClient(t, 64)
	sim.SetPaired(true)
	require.NoError(t, c.Connect())

	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				sim.Emit(&events.Message{ID: fmt.Sprintf("%d-%d", p, i), Text: "x"})
			}
		}(p)
	}

	stop := make(chan struct{})
	var consumer sync.WaitGroup
	consumer.Add(1)
	go func() {
		defer consumer.Done()
		buf := make([]byte, 4096)
		for {
			select {
			case <-stop:
				return
			default:
				_, _ = c.PollEvent(buf)
				_ = c.SendMessage("15551234567", "ping")
			}
		}
	}()

	wg.Wait()
	close(stop)
	consumer.Wait()

	assert.LessOrEqual(t, c.PendingEvents(), 64)
}

func TestConnectionStateString(t *testing.T) {
	assert.Equal(t, "created", StateCreated.String())
	assert.Equal(t, "connecting", StateConnecting.String())
	assert.Equal(t, "connected", StateConnected.String())
	assert.Equal(t, "disconnected", StateDisconnected.String())
	assert.Equal(t, "destroyed", StateDestroyed.String())
	assert.Equal(t, "ConnectionState(9)", ConnectionState(9).String())
}
