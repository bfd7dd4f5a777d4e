// Package dispatch runs the batch send cycle: enumerate every registered
// player ID, call the remote API for each, classify, persist, and notify.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"likesbot/internal/keystore"
	"likesbot/internal/likes"
	"likesbot/internal/storage"
	"likesbot/pkg/logx"
)

// ErrRunInProgress is returned when a trigger arrives while a cycle is
// already running. Overlapping cycles are rejected, not queued.
var ErrRunInProgress = errors.New("dispatch cycle already running")

// ErrNoCredential is returned when the API key is not configured. The cycle
// aborts before touching any registration.
var ErrNoCredential = errors.New("api key not configured")

// Origin records what started a cycle.
type Origin int

const (
	OriginAutomatic Origin = iota
	OriginManual
)

func (o Origin) String() string {
	if o == OriginManual {
		return "manual"
	}
	return "automatic"
}

// Result is one player ID's classified outcome within a cycle.
type Result struct {
	PlayerID string
	Outcome  likes.Outcome
}

// Summary aggregates one full cycle. It exists only for the duration of the
// run and is handed to the admin notification and the manual trigger caller.
type Summary struct {
	Origin     Origin
	Users      int
	PlayerIDs  int
	LikesSent  int
	Successes  int
	Failures   int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Sender is the remote likes client port.
type Sender interface {
	Send(ctx context.Context, playerID, key string) likes.RawResponse
}

// Credentials is the keystore port.
type Credentials interface {
	Load() (string, error)
}

// Notifier delivers cycle results. Implementations must swallow delivery
// failures (log only): notification problems never fail a cycle.
type Notifier interface {
	NotifyUser(ctx context.Context, telegramID int64, results []Result)
	NotifyAdmin(ctx context.Context, s Summary)
	NotifyConfigError(ctx context.Context)
}

// Store is the subset of the registry the cycle writes through.
type Store interface {
	ActiveByUser(ctx context.Context) ([]storage.UserGroup, error)
	RecordSuccess(ctx context.Context, telegramID int64, playerID, playerName string, likesAdded int) error
	AppendSend(ctx context.Context, rec storage.SendRecord) error
}

type Runner struct {
	store    Store
	keys     Credentials
	client   Sender
	notifier Notifier
	minimum  int
	log      logx.Logger

	// runMu makes cycles single-flight: the cron trigger and /forcesend can
	// race, and the loser must be rejected rather than interleaved.
	runMu sync.Mutex
}

func NewRunner(store Store, keys Credentials, client Sender, notifier Notifier, minimum int, log logx.Logger) *Runner {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Runner{
		store:    store,
		keys:     keys,
		client:   client,
		notifier: notifier,
		minimum:  minimum,
		log:      log.With(logx.String("comp", "dispatch")),
	}
}

// Run executes one full cycle and returns its summary.
//
// Failure isolation is per player ID: a failed remote call or a failed
// persistence write is recorded and the cycle moves on. The only whole-cycle
// abort is a missing credential, which notifies the admin and returns
// ErrNoCredential.
func (r *Runner) Run(ctx context.Context, origin Origin) (Summary, error) {
	if !r.runMu.TryLock() {
		return Summary{}, ErrRunInProgress
	}
	defer r.runMu.Unlock()

	sum := Summary{Origin: origin, StartedAt: time.Now()}
	log := r.log.With(logx.String("origin", origin.String()))
	log.Info("cycle started")

	key, err := r.keys.Load()
	if err != nil {
		if errors.Is(err, keystore.ErrNotConfigured) {
			log.Error("cycle aborted: api key not configured")
			r.notifier.NotifyConfigError(ctx)
			sum.FinishedAt = time.Now()
			return sum, ErrNoCredential
		}
		sum.FinishedAt = time.Now()
		return sum, fmt.Errorf("load api key: %w", err)
	}

	groups, err := r.store.ActiveByUser(ctx)
	if err != nil {
		sum.FinishedAt = time.Now()
		return sum, fmt.Errorf("enumerate player ids: %w", err)
	}
	if len(groups) == 0 {
		log.Info("no player ids registered; nothing to do")
		sum.FinishedAt = time.Now()
		return sum, nil
	}

	sum.Users = len(groups)
	for _, g := range groups {
		sum.PlayerIDs += len(g.PlayerIDs)
	}

	auto := origin == OriginAutomatic
	for _, g := range groups {
		results := make([]Result, 0, len(g.PlayerIDs))
		for _, pid := range g.PlayerIDs {
			log.Debug("sending likes", logx.Int64("user", g.TelegramID), logx.String("player_id", pid))

			raw := r.client.Send(ctx, pid, key)
			out := likes.Classify(raw, r.minimum)
			r.persist(ctx, g.TelegramID, pid, out, auto)

			switch out.Kind {
			case likes.KindSuccess:
				sum.LikesSent += out.LikesAdded
				sum.Successes++
			default:
				sum.Failures++
			}
			results = append(results, Result{PlayerID: pid, Outcome: out})
		}
		r.notifier.NotifyUser(ctx, g.TelegramID, results)
	}

	sum.FinishedAt = time.Now()
	r.notifier.NotifyAdmin(ctx, sum)

	log.Info("cycle finished",
		logx.Int("users", sum.Users),
		logx.Int("player_ids", sum.PlayerIDs),
		logx.Int("likes_sent", sum.LikesSent),
		logx.Int("successes", sum.Successes),
		logx.Int("failures", sum.Failures),
		logx.Duration("took", sum.FinishedAt.Sub(sum.StartedAt)),
	)
	return sum, nil
}

// SendOne performs an immediate manual send for a single player ID (the
// /like command). It applies the same classify-and-persist rules as the
// cycle, with origin=manual, but does not notify anyone: the command surface
// renders the outcome itself.
func (r *Runner) SendOne(ctx context.Context, telegramID int64, playerID string) (likes.Outcome, error) {
	key, err := r.keys.Load()
	if err != nil {
		if errors.Is(err, keystore.ErrNotConfigured) {
			return likes.Outcome{}, ErrNoCredential
		}
		return likes.Outcome{}, fmt.Errorf("load api key: %w", err)
	}

	raw := r.client.Send(ctx, playerID, key)
	out := likes.Classify(raw, r.minimum)
	r.persist(ctx, telegramID, playerID, out, false)

	r.log.Info("manual send",
		logx.Int64("user", telegramID),
		logx.String("player_id", playerID),
		logx.String("outcome", out.Kind.String()),
		logx.Int("likes_added", out.LikesAdded),
	)
	return out, nil
}

// persist records one attempt. Success also refreshes the registration;
// Partial and Error leave it untouched. Store errors are logged and the
// cycle continues.
func (r *Runner) persist(ctx context.Context, telegramID int64, playerID string, out likes.Outcome, auto bool) {
	rec := storage.SendRecord{
		TelegramID: telegramID,
		PlayerID:   playerID,
		Auto:       auto,
	}

	switch out.Kind {
	case likes.KindSuccess:
		if err := r.store.RecordSuccess(ctx, telegramID, playerID, out.Player, out.LikesAdded); err != nil {
			r.log.Error("registration update failed", logx.Int64("user", telegramID), logx.String("player_id", playerID), logx.Err(err))
		}
		rec.LikesSent = out.LikesAdded
		rec.Success = true
		rec.PlayerName = out.Player
	case likes.KindPartial:
		rec.LikesSent = out.LikesAdded
		rec.ErrorMessage = fmt.Sprintf("Menos de %d likes", out.Minimum)
		rec.PlayerName = out.Player
	default:
		rec.ErrorMessage = out.ErrorMessage
	}

	if err := r.store.AppendSend(ctx, rec); err != nil {
		r.log.Error("send history append failed", logx.Int64("user", telegramID), logx.String("player_id", playerID), logx.Err(err))
	}
}
