// Package audit records permission-assignment history. Records are
// written by the background worker, never on the editor's request path.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Assignment is one successful permission write-back.
type Assignment struct {
	ID       uuid.UUID `json:"id"`
	ActorID  int64     `json:"actor_id"`
	GroupID  int64     `json:"group_id"`
	Audience string    `json:"audience"`
	Added    []string  `json:"added"`
	Removed  []string  `json:"removed"`
	At       time.Time `json:"at"`
}
