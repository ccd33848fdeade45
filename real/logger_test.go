package real

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func newCapturedLogger(t *testing.T) (*logrus.Logger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	logger := logrus.New()
	logger.SetOutput(buf)
	logger.SetLevel(logrus.DebugLevel)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})
	return logger, buf
}

func TestLoggerModuleField(t *testing.T) {
	base, buf := newCapturedLogger(t)
	log := NewLoggerWithEntry(logrus.NewEntry(base), "Client")

	log.Infof("connected to %s", "server")

	out := buf.String()
	assert.Contains(t, out, "module=Client")
	assert.Contains(t, out, "connected to server")
	assert.Contains(t, out, "level=info")
}

func TestLoggerSub(t *testing.T) {
	base, buf := newCapturedLogger(t)
	log := NewLoggerWithEntry(logrus.NewEntry(base), "Client").Sub("Socket")

	log.Warnf("frame dropped")

	out := buf.String()
	assert.Contains(t, out, "module=Client/Socket")
	assert.Contains(t, out, "level=warning")
}

func TestLoggerRespectsLevel(t *testing.T) {
	base, buf := newCapturedLogger(t)
	base.SetLevel(logrus.InfoLevel)
	log := NewLoggerWithEntry(logrus.NewEntry(base), "Database")

	log.Debugf("query")
	assert.Empty(t, buf.String())

	log.Errorf("upgrade failed")
	assert.Contains(t, buf.String(), "upgrade failed")
}
