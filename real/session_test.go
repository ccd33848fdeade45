package real

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/opd-ai/wmbridge/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mau.fi/whatsmeow/types"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	cfg := &interfaces.SessionConfig{
		StorageAddress: filepath.Join(t.TempDir(), "store", "wa.db"),
		DeviceName:     "wmbridge-test",
		StoreDialect:   "sqlite3",
		ForeignKeys:    true,
	}
	session, err := NewSession(context.Background(), cfg)
	require.NoError(t, err)
	return session
}

func TestNewSessionFreshStoreIsUnpaired(t *testing.T) {
	session := newTestSession(t)

	assert.False(t, session.IsPaired())
	assert.False(t, session.IsSimulation())
	assert.NoError(t, session.Close())
	assert.ErrorIs(t, session.Close(), ErrSessionClosed)
}

func TestNewSessionRejectsInvalidConfig(t *testing.T) {
	_, err := NewSession(context.Background(), nil)
	assert.Error(t, err)

	_, err = NewSession(context.Background(), &interfaces.SessionConfig{StoreDialect: "sqlite3"})
	assert.ErrorIs(t, err, interfaces.ErrMissingStorageAddress)
}

func TestSessionClosedOperations(t *testing.T) {
	session := newTestSession(t)
	require.NoError(t, session.Close())

	assert.ErrorIs(t, session.Connect(), ErrSessionClosed)
	assert.ErrorIs(t, session.SendMessage(context.Background(), "15551234567", "hi"), ErrSessionClosed)
	_, err := session.PairingChannel(context.Background())
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestPairingChannelClosesOnCancel(t *testing.T) {
	session := newTestSession(t)
	defer session.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := session.PairingChannel(ctx)
	require.NoError(t, err)
	assert.True(t, session.pairing.Load())

	cancel()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				assert.Eventually(t, func() bool { return !session.pairing.Load() },
					time.Second, 10*time.Millisecond)
				return
			}
		case <-deadline:
			t.Fatal("pairing channel not closed after cancel")
		}
	}
}

func TestParseRecipient(t *testing.T) {
	jid, err := parseRecipient("15551234567")
	require.NoError(t, err)
	assert.Equal(t, "15551234567", jid.User)
	assert.Equal(t, types.DefaultUserServer, jid.Server)

	jid, err = parseRecipient("120363025246125486@g.us")
	require.NoError(t, err)
	assert.Equal(t, types.GroupServer, jid.Server)
}
