package room

import (
	"sort"

	"github.com/google/uuid"
)

// MaxTeams is the number of team slots available in a room.
const MaxTeams = 5

// Keeper tracks who is in a room: team slot assignments, admins, and the
// active-question pointer. Slots and connections are kept in a pair of maps
// so both directions resolve in O(1).
type Keeper struct {
	room        string
	teamByConn  map[uuid.UUID]int
	connByTeam  map[int]uuid.UUID
	admins      map[uuid.UUID]bool
	activeIndex int
}

// NewKeeper creates a keeper for the given room id.
func NewKeeper(room string) *Keeper {
	return &Keeper{
		room:        room,
		teamByConn:  make(map[uuid.UUID]int),
		connByTeam:  make(map[int]uuid.UUID),
		admins:      make(map[uuid.UUID]bool),
		activeIndex: -1,
	}
}

// Room returns the room id.
func (k *Keeper) Room() string {
	return k.room
}

// AddTeam claims a slot for a connection. It reports false if the slot is
// out of range, already taken, or the connection already owns one.
func (k *Keeper) AddTeam(conn uuid.UUID, team int) bool {
	if team < 1 || team > MaxTeams {
		return false
	}
	if _, taken := k.connByTeam[team]; taken {
		return false
	}
	if _, has := k.teamByConn[conn]; has {
		return false
	}
	k.teamByConn[conn] = team
	k.connByTeam[team] = conn
	return true
}

// AddAdmin registers an admin connection.
func (k *Keeper) AddAdmin(conn uuid.UUID) {
	k.admins[conn] = true
}

// RemoveConn drops a connection, releasing its slot or admin entry.
// It returns the released team slot, or 0 if the connection held none.
func (k *Keeper) RemoveConn(conn uuid.UUID) int {
	delete(k.admins, conn)
	team, ok := k.teamByConn[conn]
	if !ok {
		return 0
	}
	delete(k.teamByConn, conn)
	delete(k.connByTeam, team)
	return team
}

// Team returns the slot owned by a connection.
func (k *Keeper) Team(conn uuid.UUID) (int, bool) {
	team, ok := k.teamByConn[conn]
	return team, ok
}

// Conn returns the connection owning a slot.
func (k *Keeper) Conn(team int) (uuid.UUID, bool) {
	conn, ok := k.connByTeam[team]
	return conn, ok
}

// IsAdmin reports whether the connection registered as an admin.
func (k *Keeper) IsAdmin(conn uuid.UUID) bool {
	return k.admins[conn]
}

// Teams returns the connected team slots in ascending order.
func (k *Keeper) Teams() []int {
	teams := make([]int, 0, len(k.connByTeam))
	for team := range k.connByTeam {
		teams = append(teams, team)
	}
	sort.Ints(teams)
	return teams
}

// AvailableTeams returns the slots not currently claimed.
func (k *Keeper) AvailableTeams() []int {
	var available []int
	for team := 1; team <= MaxTeams; team++ {
		if _, taken := k.connByTeam[team]; !taken {
			available = append(available, team)
		}
	}
	return available
}

// StartQuestion points the room at the question with the given board index.
func (k *Keeper) StartQuestion(index int) {
	k.activeIndex = index
}

// EndQuestion clears the active-question pointer.
func (k *Keeper) EndQuestion() {
	k.activeIndex = -1
}

// ActiveIndex returns the board index of the active question, or -1.
func (k *Keeper) ActiveIndex() int {
	return k.activeIndex
}

// CanDiscard reports whether the room holds nothing worth keeping: no active
// question and nobody connected.
func (k *Keeper) CanDiscard() bool {
	return k.activeIndex == -1 && len(k.teamByConn) == 0 && len(k.admins) == 0
}
