package integration

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dashanwesha/Code-Editor/api/ws"
	"github.com/dashanwesha/Code-Editor/internal/domain"
	"github.com/dashanwesha/Code-Editor/internal/registry"
	wshub "github.com/dashanwesha/Code-Editor/internal/websocket"
	"github.com/dashanwesha/Code-Editor/pkg/logger"
	"github.com/dashanwesha/Code-Editor/service"
)

type testClient struct {
	conn *websocket.Conn
	t    *testing.T
}

// setupRelay wires the relay in-process with no NATS or Redis so the suite
// runs without external services.
func setupRelay(t *testing.T) (*httptest.Server, *registry.Registry) {
	baseLogger := logger.NewLogger("error", "")
	ctx := logger.NewContext(context.Background(), baseLogger)

	reg := registry.New()
	hub := wshub.NewHub()
	go hub.Run()

	relay := service.NewRelayService(ctx, hub, nil, nil)
	server := httptest.NewServer(ws.SetupWebSocketRoutes(ws.WSConfig{
		Hub:     hub,
		Roster:  reg,
		Relay:   relay,
		RootCtx: ctx,
	}))

	t.Cleanup(func() {
		server.Close()
		hub.Close()
	})

	return server, reg
}

func connect(t *testing.T, server *httptest.Server) *testClient {
	wsURL := "ws" + server.URL[4:] + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &testClient{conn: conn, t: t}
}

func (c *testClient) send(ev domain.Event) {
	require.NoError(c.t, c.conn.WriteJSON(ev))
}

func (c *testClient) receive() domain.Event {
	var ev domain.Event
	c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	require.NoError(c.t, c.conn.ReadJSON(&ev))
	return ev
}

func (c *testClient) join(room, name string) {
	c.send(domain.Event{Type: domain.EventJoin, Room: room, UserName: name})
}

func TestSessionLifecycle(t *testing.T) {
	server, reg := setupRelay(t)

	alice := connect(t, server)
	alice.join("r1", "alice")

	ev := alice.receive()
	require.Equal(t, domain.EventUserJoined, ev.Type)
	assert.ElementsMatch(t, []string{"alice"}, ev.Members)

	bob := connect(t, server)
	bob.join("r1", "bob")

	// Both hear the grown roster.
	ev = alice.receive()
	assert.ElementsMatch(t, []string{"alice", "bob"}, ev.Members)
	ev = bob.receive()
	assert.ElementsMatch(t, []string{"alice", "bob"}, ev.Members)

	// Alice's edit reaches only bob; the language change that follows it
	// reaches both, so alice's next event proves she got no echo.
	alice.send(domain.Event{Type: domain.EventCodeChange, Code: "print(1)"})
	alice.send(domain.Event{Type: domain.EventLanguageChange, Language: "python"})

	ev = bob.receive()
	require.Equal(t, domain.EventCodeUpdate, ev.Type)
	assert.Equal(t, "print(1)", ev.Code)
	ev = bob.receive()
	require.Equal(t, domain.EventLanguageUpdate, ev.Type)
	assert.Equal(t, "python", ev.Language)

	ev = alice.receive()
	require.Equal(t, domain.EventLanguageUpdate, ev.Type, "sender must not receive its own code update")

	// Typing is echo-suppressed the same way.
	alice.send(domain.Event{Type: domain.EventTyping})
	ev = bob.receive()
	require.Equal(t, domain.EventUserTyping, ev.Type)
	assert.Equal(t, "alice", ev.UserName)

	// Disconnect acts as an implicit leave.
	alice.conn.Close()
	ev = bob.receive()
	require.Equal(t, domain.EventUserJoined, ev.Type)
	assert.ElementsMatch(t, []string{"bob"}, ev.Members)

	// Last member out tears the room down.
	bob.send(domain.Event{Type: domain.EventLeaveRoom})
	require.Eventually(t, func() bool {
		return len(reg.Rooms()) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRoomSwitch(t *testing.T) {
	server, reg := setupRelay(t)

	alice := connect(t, server)
	bob := connect(t, server)

	alice.join("r1", "alice")
	_ = alice.receive()
	bob.join("r1", "bob")
	_ = alice.receive()
	_ = bob.receive()

	// Joining another room implicitly leaves the first.
	alice.join("r2", "alice")

	ev := bob.receive()
	require.Equal(t, domain.EventUserJoined, ev.Type)
	assert.ElementsMatch(t, []string{"bob"}, ev.Members)

	ev = alice.receive()
	require.Equal(t, domain.EventUserJoined, ev.Type)
	assert.ElementsMatch(t, []string{"alice"}, ev.Members)

	require.Eventually(t, func() bool {
		rooms := reg.Rooms()
		return len(rooms) == 2
	}, 2*time.Second, 10*time.Millisecond)
	assert.ElementsMatch(t, []string{"bob"}, reg.Snapshot("r1"))
	assert.ElementsMatch(t, []string{"alice"}, reg.Snapshot("r2"))
}

func TestFreshRoomAfterTeardown(t *testing.T) {
	server, reg := setupRelay(t)

	alice := connect(t, server)
	alice.join("r1", "alice")
	_ = alice.receive()
	alice.conn.Close()

	require.Eventually(t, func() bool {
		return len(reg.Rooms()) == 0
	}, 2*time.Second, 10*time.Millisecond)

	bob := connect(t, server)
	bob.join("r1", "bob")

	ev := bob.receive()
	require.Equal(t, domain.EventUserJoined, ev.Type)
	assert.ElementsMatch(t, []string{"bob"}, ev.Members, "recreated room starts fresh")
}

func TestIdleEventsIgnored(t *testing.T) {
	server, _ := setupRelay(t)

	idler := connect(t, server)
	watcher := connect(t, server)
	watcher.join("r1", "watcher")
	_ = watcher.receive()

	// Events before any join carry no room context and are dropped.
	idler.send(domain.Event{Type: domain.EventCodeChange, Code: "x=1"})
	idler.send(domain.Event{Type: domain.EventTyping})
	idler.send(domain.Event{Type: domain.EventLeaveRoom})
	idler.join("r1", "idler")

	ev := watcher.receive()
	require.Equal(t, domain.EventUserJoined, ev.Type, "watcher sees only the join, never the idle events")
	assert.ElementsMatch(t, []string{"watcher", "idler"}, ev.Members)
}

func TestActiveUsersAnswersRequesterOnly(t *testing.T) {
	server, _ := setupRelay(t)

	alice := connect(t, server)
	bob := connect(t, server)
	alice.join("r1", "alice")
	_ = alice.receive()
	bob.join("r1", "bob")
	_ = alice.receive()
	_ = bob.receive()

	alice.send(domain.Event{Type: domain.EventActiveUsers})

	ev := alice.receive()
	require.Equal(t, domain.EventActiveUsers, ev.Type)
	// No presence store is wired in this suite, so the answer is empty;
	// delivery to the requester alone is what matters here.

	alice.send(domain.Event{Type: domain.EventLanguageChange, Language: "go"})
	ev = bob.receive()
	require.Equal(t, domain.EventLanguageUpdate, ev.Type, "bob never saw the active-users answer")
}
