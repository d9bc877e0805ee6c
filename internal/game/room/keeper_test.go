package room_test

import (
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/Robinsstudio/PIX-L/internal/game/room"
)

func TestAddTeamRejectsInvalidSlots(t *testing.T) {
	k := room.NewKeeper("demo")
	conn := uuid.New()

	if k.AddTeam(conn, 0) {
		t.Fatal("AddTeam accepted slot 0")
	}
	if k.AddTeam(conn, room.MaxTeams+1) {
		t.Fatalf("AddTeam accepted slot %d", room.MaxTeams+1)
	}
	if !k.AddTeam(conn, 2) {
		t.Fatal("AddTeam rejected a free slot")
	}
	if k.AddTeam(uuid.New(), 2) {
		t.Fatal("AddTeam accepted an already taken slot")
	}
	if k.AddTeam(conn, 3) {
		t.Fatal("AddTeam let one connection own two slots")
	}
}

func TestTeamConnLookupsStayConsistent(t *testing.T) {
	k := room.NewKeeper("demo")
	a, b := uuid.New(), uuid.New()
	k.AddTeam(a, 1)
	k.AddTeam(b, 4)

	if team, ok := k.Team(a); !ok || team != 1 {
		t.Fatalf("Team(a) = %d, %v", team, ok)
	}
	if conn, ok := k.Conn(4); !ok || conn != b {
		t.Fatalf("Conn(4) = %v, %v", conn, ok)
	}
	if got := k.Teams(); !reflect.DeepEqual(got, []int{1, 4}) {
		t.Fatalf("Teams() = %v, want [1 4]", got)
	}
	if got := k.AvailableTeams(); !reflect.DeepEqual(got, []int{2, 3, 5}) {
		t.Fatalf("AvailableTeams() = %v, want [2 3 5]", got)
	}

	if released := k.RemoveConn(a); released != 1 {
		t.Fatalf("RemoveConn(a) = %d, want 1", released)
	}
	if _, ok := k.Team(a); ok {
		t.Fatal("Team(a) still resolves after removal")
	}
	if _, ok := k.Conn(1); ok {
		t.Fatal("Conn(1) still resolves after removal")
	}
	if !k.AddTeam(uuid.New(), 1) {
		t.Fatal("released slot cannot be claimed again")
	}
}

func TestRemoveConnWithoutSlot(t *testing.T) {
	k := room.NewKeeper("demo")
	admin := uuid.New()
	k.AddAdmin(admin)

	if !k.IsAdmin(admin) {
		t.Fatal("IsAdmin = false for a registered admin")
	}
	if released := k.RemoveConn(admin); released != 0 {
		t.Fatalf("RemoveConn(admin) = %d, want 0", released)
	}
	if k.IsAdmin(admin) {
		t.Fatal("IsAdmin = true after removal")
	}
}

func TestCanDiscard(t *testing.T) {
	k := room.NewKeeper("demo")
	if !k.CanDiscard() {
		t.Fatal("CanDiscard() = false for an empty room")
	}

	conn := uuid.New()
	k.AddTeam(conn, 1)
	if k.CanDiscard() {
		t.Fatal("CanDiscard() = true with a team connected")
	}
	k.RemoveConn(conn)

	k.StartQuestion(2)
	if k.CanDiscard() {
		t.Fatal("CanDiscard() = true with a question active")
	}
	k.EndQuestion()
	if !k.CanDiscard() {
		t.Fatal("CanDiscard() = false once the room is empty again")
	}
}
