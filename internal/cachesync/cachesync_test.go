package cachesync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startTestNATSServer(t *testing.T) *natsserver.Server {
	t.Helper()
	server, err := natsserver.NewServer(&natsserver.Options{
		Host:   "127.0.0.1",
		Port:   -1,
		NoLog:  true,
		NoSigs: true,
	})
	require.NoError(t, err)

	go server.Start()
	if !server.ReadyForConnections(5 * time.Second) {
		t.Fatal("NATS server not ready")
	}
	t.Cleanup(func() {
		server.Shutdown()
		server.WaitForShutdown()
	})
	return server
}

func connect(t *testing.T, server *natsserver.Server) *nats.Conn {
	t.Helper()
	conn, err := nats.Connect(server.ClientURL())
	require.NoError(t, err)
	t.Cleanup(conn.Close)
	return conn
}

type fetchLog struct {
	mu    sync.Mutex
	names []string
}

func (f *fetchLog) fetch(_ context.Context, collection string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.names = append(f.names, collection)
	return nil
}

func (f *fetchLog) snapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.names...)
}

func TestPeerRefetchesAnnouncedCollection(t *testing.T) {
	server := startTestNATSServer(t)
	a := NewBus(connect(t, server))
	b := NewBus(connect(t, server))

	var seenByA, seenByB fetchLog
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	_, err := a.Listen(ctx, seenByA.fetch)
	require.NoError(t, err)
	_, err = b.Listen(ctx, seenByB.fetch)
	require.NoError(t, err)
	require.NoError(t, a.conn.Flush())
	require.NoError(t, b.conn.Flush())

	a.Hook("projects")(context.Background(), "update", "p1")
	require.NoError(t, a.conn.Flush())

	require.Eventually(t, func() bool {
		return len(seenByB.snapshot()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"projects"}, seenByB.snapshot())
	assert.Never(t, func() bool { return len(seenByA.snapshot()) > 0 }, 100*time.Millisecond, 10*time.Millisecond)
}

func TestEventCarriesOrigin(t *testing.T) {
	server := startTestNATSServer(t)
	conn := connect(t, server)
	bus := NewBus(conn)

	sub, err := conn.SubscribeSync(Subject("files"))
	require.NoError(t, err)
	require.NoError(t, conn.Flush())

	bus.Publish(context.Background(), Event{Collection: "files", Op: "delete", ID: "f1"})

	msg, err := sub.NextMsg(2 * time.Second)
	require.NoError(t, err)
	assert.Contains(t, string(msg.Data), bus.Origin())
	assert.Contains(t, string(msg.Data), `"op":"delete"`)
}

func TestSchedulerRunReportsFailures(t *testing.T) {
	var log fetchLog
	boom := errors.New("remote unavailable")
	s, err := NewScheduler("", []string{"projects", "files"}, func(ctx context.Context, name string) error {
		_ = log.fetch(ctx, name)
		if name == "files" {
			return boom
		}
		return nil
	})
	require.NoError(t, err)

	failed := s.Run(context.Background())
	assert.Equal(t, []string{"projects", "files"}, log.snapshot())
	require.Len(t, failed, 1)
	assert.ErrorIs(t, failed["files"], boom)
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	_, err := NewScheduler("not a schedule", nil, func(context.Context, string) error { return nil })
	assert.Error(t, err)
}
