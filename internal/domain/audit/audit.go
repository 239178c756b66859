// Package audit defines the audit trail contract for state-changing
// operations that are not already self-auditing through the movement ledger.
package audit

import (
	"context"

	"posrail/internal/core/id"
)

// Action is the audited operation kind.
type Action string

const (
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionReverse Action = "reverse"
	ActionAdjust  Action = "adjust"
)

// Entry describes one audited change. Changes carries an arbitrary
// JSON-serializable snapshot of what happened.
type Entry struct {
	EntityType string
	EntityID   id.ID
	Action     Action
	UserID     string
	Changes    any
}

// Recorder persists audit entries. Implementations must tolerate being
// called inside an open transaction so the entry commits with the change
// it describes.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// Nop is a Recorder that discards entries (tests, tooling).
type Nop struct{}

func (Nop) Record(ctx context.Context, entry Entry) error { return nil }
