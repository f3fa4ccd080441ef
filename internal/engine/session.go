package engine

import (
	"time"

	"github.com/google/uuid"
)

// Session identifies the acting player for the lifetime of one run.
// Queries that must skip the player's own body consult it instead of a
// process-wide player.
type Session struct {
	ID      uuid.UUID
	Player  BodyID
	Started time.Time
}

func NewSession(player BodyID) *Session {
	return &Session{
		ID:      uuid.New(),
		Player:  player,
		Started: time.Now(),
	}
}

// IsPlayer reports whether a hit belongs to the session's player.
func (s *Session) IsPlayer(h Hit) bool {
	if s == nil || s.Player == NoBody {
		return false
	}
	return h.Body == s.Player || h.Root == s.Player
}
