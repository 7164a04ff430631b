package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddAndSnapshot(t *testing.T) {
	reg := New()

	reg.AddMember("r1", "conn-a", "alice")
	reg.AddMember("r1", "conn-b", "bob")

	assert.ElementsMatch(t, []string{"alice", "bob"}, reg.Snapshot("r1"))
	assert.ElementsMatch(t, []string{"r1"}, reg.Rooms())
}

func TestSnapshotMissingRoom(t *testing.T) {
	reg := New()
	assert.Empty(t, reg.Snapshot("nope"))
}

func TestAddMemberIdempotent(t *testing.T) {
	reg := New()

	reg.AddMember("r1", "conn-a", "alice")
	reg.AddMember("r1", "conn-a", "alice")

	assert.ElementsMatch(t, []string{"alice"}, reg.Snapshot("r1"))
}

func TestSharedDisplayName(t *testing.T) {
	reg := New()

	// Two connections under the same name stay two members; one leaving
	// must not evict the other.
	reg.AddMember("r1", "conn-a", "alice")
	reg.AddMember("r1", "conn-b", "alice")
	assert.ElementsMatch(t, []string{"alice", "alice"}, reg.Snapshot("r1"))

	remaining := reg.RemoveMember("r1", "conn-a")
	assert.Equal(t, 1, remaining)
	assert.ElementsMatch(t, []string{"alice"}, reg.Snapshot("r1"))
}

func TestRemoveMemberDeletesEmptyRoom(t *testing.T) {
	reg := New()

	reg.AddMember("r1", "conn-a", "alice")
	remaining := reg.RemoveMember("r1", "conn-a")

	assert.Equal(t, 0, remaining)
	assert.Empty(t, reg.Rooms())

	// A later join creates a fresh room, not a resurrected one.
	reg.AddMember("r1", "conn-b", "bob")
	assert.ElementsMatch(t, []string{"bob"}, reg.Snapshot("r1"))
}

func TestRemoveMemberIdempotent(t *testing.T) {
	reg := New()

	assert.Equal(t, 0, reg.RemoveMember("r1", "conn-a"))

	reg.AddMember("r1", "conn-a", "alice")
	reg.AddMember("r1", "conn-b", "bob")

	assert.Equal(t, 1, reg.RemoveMember("r1", "conn-a"))
	assert.Equal(t, 1, reg.RemoveMember("r1", "conn-a"))
	assert.ElementsMatch(t, []string{"bob"}, reg.Snapshot("r1"))
}

func TestNoEmptyRooms(t *testing.T) {
	reg := New()

	ops := []func(){
		func() { reg.AddMember("r1", "a", "alice") },
		func() { reg.AddMember("r1", "b", "bob") },
		func() { reg.AddMember("r2", "c", "carol") },
		func() { reg.RemoveMember("r1", "a") },
		func() { reg.RemoveMember("r2", "c") },
		func() { reg.RemoveMember("r2", "c") },
		func() { reg.AddMember("r2", "a", "alice") },
		func() { reg.RemoveMember("r1", "b") },
		func() { reg.RemoveMember("r3", "x") },
	}

	for _, op := range ops {
		op()
		for _, id := range reg.Rooms() {
			assert.NotEmpty(t, reg.Snapshot(id), "room %s exists with no members", id)
		}
	}
}
