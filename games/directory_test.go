package games

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRoomDefaults(t *testing.T) {
	e, _ := newTestEngine(nil)

	r := e.CreateRoom("ABCD", RoomConfig{Games: []Game{wheel(10)}})

	assert.Equal(t, "ABCD", r.Code())
	assert.Equal(t, 1, r.GamesCount())
	assert.Equal(t, defaultTimeBefore, r.timeBefore)
	assert.Equal(t, PhaseIdle, r.Phase())
	assert.True(t, e.RoomExists("ABCD"))
	assert.False(t, e.RoomExists("abcd"))

	state := r.Snapshot()
	assert.Empty(t, state.Users)
	assert.Empty(t, state.Scores)
	assert.Zero(t, state.CurrentGameIndex)
}

func TestCreateRoomOverwrites(t *testing.T) {
	e, _ := newTestEngine(nil)

	first := e.CreateRoom("ABCD", RoomConfig{})
	mustJoin(t, e, &recorder{}, "ABCD", "alice")

	second := e.CreateRoom("ABCD", RoomConfig{})

	got, ok := e.Room("ABCD")
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.NotSame(t, first, got)
	assert.Empty(t, got.Snapshot().Users)
}

func TestCreateRoomGeneratesCode(t *testing.T) {
	e, _ := newTestEngine(nil)

	r := e.CreateRoom("", RoomConfig{})

	assert.Len(t, r.Code(), 6)
	assert.True(t, e.RoomExists(r.Code()))
}

func TestJoinUnknownRoom(t *testing.T) {
	e, _ := newTestEngine(nil)

	_, err := e.Join(&recorder{}, "NOPE", "alice")

	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestJoinBroadcastsAndAcks(t *testing.T) {
	e, _ := newTestEngine(nil)
	e.CreateRoom("ABCD", RoomConfig{GamesCount: 2})

	alice, bob := &recorder{}, &recorder{}
	mustJoin(t, e, alice, "ABCD", "alice")

	res, err := e.Join(bob, "ABCD", "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, res.Users)
	assert.Equal(t, 2, res.GamesCount)

	assert.Equal(t, []string{EventJoined, EventUserJoined, EventUserJoined}, alice.types())
	assert.Equal(t, []string{EventJoined, EventUserJoined}, bob.types())

	joined := bob.last(EventJoined)
	assert.Equal(t, "ABCD", joined["code"])
	assert.Equal(t, float64(2), joined["gamesCount"])
	assert.Equal(t, []any{"alice", "bob"}, joined["users"])

	state, ok := e.Snapshot("ABCD")
	require.True(t, ok)
	assert.Equal(t, map[string]int{"alice": 0, "bob": 0}, state.Scores)
}

func TestJoinIsIdempotent(t *testing.T) {
	e, _ := newTestEngine(nil)
	e.CreateRoom("ABCD", RoomConfig{MaxUsers: 1})

	c := &recorder{}
	mustJoin(t, e, c, "ABCD", "alice")
	mustJoin(t, e, c, "ABCD", "alice")

	state, _ := e.Snapshot("ABCD")
	assert.Equal(t, []string{"alice"}, state.Users)
}

func TestJoinRespectsMaxUsers(t *testing.T) {
	e, _ := newTestEngine(nil)
	e.CreateRoom("ABCD", RoomConfig{MaxUsers: 2})

	mustJoin(t, e, &recorder{}, "ABCD", "alice")
	mustJoin(t, e, &recorder{}, "ABCD", "bob")

	_, err := e.Join(&recorder{}, "ABCD", "carol")
	assert.ErrorIs(t, err, ErrRoomFull)

	state, _ := e.Snapshot("ABCD")
	assert.Equal(t, []string{"alice", "bob"}, state.Users)
}

func TestConcurrentJoinsNeverExceedMaxUsers(t *testing.T) {
	e, _ := newTestEngine(nil)
	e.CreateRoom("ABCD", RoomConfig{MaxUsers: 5})

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()

			c := &recorder{}
			if _, err := e.Join(c, "ABCD", fmt.Sprintf("player%d", i)); err == nil && i%2 == 0 {
				e.Leave(c)
			}
		}()
	}
	wg.Wait()

	state, _ := e.Snapshot("ABCD")
	assert.LessOrEqual(t, len(state.Users), 5)
}

func TestLeaveKeepsScore(t *testing.T) {
	e, clock := newTestEngine(nil)
	e.CreateRoom("ABCD", RoomConfig{TimeBefore: 1, Games: []Game{wheel(10)}})

	alice, watcher := &recorder{}, &recorder{}
	mustJoin(t, e, alice, "ABCD", "alice")
	mustJoin(t, e, watcher, "ABCD", "watcher")
	e.Leave(watcher)

	require.NoError(t, e.Start("ABCD"))
	clock.drain(t)

	state, _ := e.Snapshot("ABCD")
	require.Equal(t, 10, state.Scores["alice"])

	e.Leave(alice)

	state, _ = e.Snapshot("ABCD")
	assert.NotContains(t, state.Users, "alice")
	assert.Equal(t, 10, state.Scores["alice"])

	again := &recorder{}
	mustJoin(t, e, again, "ABCD", "alice")

	state, _ = e.Snapshot("ABCD")
	assert.Equal(t, []string{"alice"}, state.Users)
	assert.Equal(t, 10, state.Scores["alice"])
}

func TestLeaveBroadcastsUserLeft(t *testing.T) {
	e, _ := newTestEngine(nil)
	e.CreateRoom("ABCD", RoomConfig{})

	alice, bob := &recorder{}, &recorder{}
	mustJoin(t, e, alice, "ABCD", "alice")
	mustJoin(t, e, bob, "ABCD", "bob")

	e.Leave(bob)

	left := alice.last(EventUserLeft)
	require.NotNil(t, left)
	assert.Equal(t, "bob", left["username"])
	assert.Equal(t, []any{"alice"}, left["users"])

	// bob's connection is no longer fanned out to.
	n := len(bob.types())
	e.Broadcast("ABCD", NewAnnouncement([]byte(`"hello"`)))
	assert.Len(t, bob.types(), n)
	assert.Equal(t, "hello", alice.last(EventAnnouncement)["message"])
}

func TestLeaveIsNoOpWhenUnboundOrDeleted(t *testing.T) {
	e, _ := newTestEngine(nil)
	e.CreateRoom("ABCD", RoomConfig{})

	e.Leave(&recorder{})

	c := &recorder{}
	mustJoin(t, e, c, "ABCD", "alice")
	e.DeleteAllRooms()

	assert.NotPanics(t, func() { e.Leave(c) })
	assert.False(t, e.RoomExists("ABCD"))
}

func TestJoinElsewhereLeavesPreviousRoom(t *testing.T) {
	e, _ := newTestEngine(nil)
	e.CreateRoom("ONE", RoomConfig{})
	e.CreateRoom("TWO", RoomConfig{})

	c := &recorder{}
	mustJoin(t, e, c, "ONE", "alice")
	mustJoin(t, e, c, "TWO", "alice")

	one, _ := e.Snapshot("ONE")
	two, _ := e.Snapshot("TWO")
	assert.Empty(t, one.Users)
	assert.Equal(t, []string{"alice"}, two.Users)
}

func TestJoinFullRoomKeepsPreviousRoom(t *testing.T) {
	e, _ := newTestEngine(nil)
	e.CreateRoom("ONE", RoomConfig{})
	e.CreateRoom("TWO", RoomConfig{MaxUsers: 1})

	c := &recorder{}
	mustJoin(t, e, c, "ONE", "alice")
	mustJoin(t, e, &recorder{}, "TWO", "bob")

	_, err := e.Join(c, "TWO", "alice")
	require.ErrorIs(t, err, ErrRoomFull)

	one, _ := e.Snapshot("ONE")
	two, _ := e.Snapshot("TWO")
	assert.Equal(t, []string{"alice"}, one.Users)
	assert.Equal(t, []string{"bob"}, two.Users)

	// Still bound to ONE: its broadcasts keep arriving.
	e.Broadcast("ONE", NewAnnouncement([]byte(`"still here"`)))
	assert.Equal(t, "still here", c.last(EventAnnouncement)["message"])
}

func TestRenameInFullRoomIsAllowed(t *testing.T) {
	e, _ := newTestEngine(nil)
	e.CreateRoom("ABCD", RoomConfig{MaxUsers: 1})

	c := &recorder{}
	mustJoin(t, e, c, "ABCD", "alice")
	mustJoin(t, e, c, "ABCD", "alicia")

	state, _ := e.Snapshot("ABCD")
	assert.Equal(t, []string{"alicia"}, state.Users)
}

func TestBroadcastToUnknownRoom(t *testing.T) {
	e, _ := newTestEngine(nil)

	assert.NotPanics(t, func() {
		e.Broadcast("NOPE", NewAnnouncement(nil))
	})
}

func TestReapSkipsRunningRooms(t *testing.T) {
	e, _ := newTestEngine(nil)
	e.CreateRoom("IDLE", RoomConfig{})
	e.CreateRoom("BUSY", RoomConfig{Games: []Game{wheel(10)}})
	require.NoError(t, e.Start("BUSY"))

	assert.Equal(t, 1, e.Reap(-1))
	assert.False(t, e.RoomExists("IDLE"))
	assert.True(t, e.RoomExists("BUSY"))
}

func TestReapKeepsRoomsWithConnections(t *testing.T) {
	e, clock := newTestEngine(nil)
	e.CreateRoom("LOBBY", RoomConfig{})
	e.CreateRoom("DONE", RoomConfig{Games: []Game{wheel(10)}})

	waiting, watching := &recorder{}, &recorder{}
	mustJoin(t, e, waiting, "LOBBY", "alice")
	mustJoin(t, e, watching, "DONE", "bob")
	require.NoError(t, e.Start("DONE"))
	clock.drain(t)
	require.Equal(t, PhaseFinished, mustRoom(t, e, "DONE").Phase())

	assert.Zero(t, e.Reap(-1))
	assert.True(t, e.RoomExists("LOBBY"))
	assert.True(t, e.RoomExists("DONE"))

	require.NoError(t, e.Start("LOBBY"))

	e.Leave(watching)
	assert.Equal(t, 1, e.Reap(-1))
	assert.False(t, e.RoomExists("DONE"))
}
