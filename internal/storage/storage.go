// Package storage is the persistent registry: chat users, their game player
// IDs, and the append-only send history.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateID is returned when a user registers a player ID that is
// already active on their list.
var ErrDuplicateID = errors.New("player id already registered")

type Config struct {
	Path        string
	BusyTimeout time.Duration // 0 means default
}

// User is a registered chat user.
type User struct {
	TelegramID   int64
	Username     string
	RegisteredAt time.Time
}

// PlayerID is one registered game identifier.
//
// Rows are soft-deleted: Deactivate clears Active, nothing is ever removed.
type PlayerID struct {
	ID         int64
	TelegramID int64
	PlayerID   string
	PlayerName string
	AddedAt    time.Time
	LastSentAt time.Time // zero when likes were never delivered
	TotalLikes int64
	Active     bool
}

// SendRecord is one audit row: a single remote call attempt, any outcome.
type SendRecord struct {
	TelegramID   int64
	PlayerID     string
	LikesSent    int
	Success      bool
	ErrorMessage string
	PlayerName   string
	At           time.Time
	Auto         bool // true for the scheduled cycle, false for /like
}

// UserGroup is one user's active player IDs in enumeration order.
type UserGroup struct {
	TelegramID int64
	PlayerIDs  []string
}

// Stats are the aggregate numbers behind the admin /stats command.
type Stats struct {
	Users       int
	PlayerIDs   int
	TotalLikes  int64
	SendsToday  int
	SuccessRate float64 // percent over all-time attempts; 0 with no attempts
}

// Store is the persistence API used by the dispatcher and the command surface.
type Store interface {
	// AddUser registers a user if not present. Reports whether it was created.
	AddUser(ctx context.Context, telegramID int64, username string) (created bool, err error)

	// AddPlayerID registers a player ID for a user.
	// Returns ErrDuplicateID if the ID is already active on that user's list.
	AddPlayerID(ctx context.Context, telegramID int64, playerID string) error

	// ListPlayerIDs returns the user's active player IDs, newest first.
	ListPlayerIDs(ctx context.Context, telegramID int64) ([]PlayerID, error)

	// ActiveByUser returns every active player ID grouped by owning user.
	// Order is stable within one call: users ascending, IDs in registration order.
	ActiveByUser(ctx context.Context) ([]UserGroup, error)

	// Deactivate soft-deletes a player ID from a user's list.
	Deactivate(ctx context.Context, telegramID int64, playerID string) error

	// RecordSuccess refreshes a registration after a successful send:
	// player name, last-send timestamp, cumulative likes counter.
	RecordSuccess(ctx context.Context, telegramID int64, playerID, playerName string, likesAdded int) error

	// AppendSend appends one audit row. One row per attempt, any outcome.
	AppendSend(ctx context.Context, rec SendRecord) error

	// ListUsers returns all registered users.
	ListUsers(ctx context.Context) ([]User, error)

	Stats(ctx context.Context) (Stats, error)

	Close() error
}
