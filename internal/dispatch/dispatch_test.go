package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"likesbot/internal/keystore"
	"likesbot/internal/likes"
	"likesbot/internal/storage"
	"likesbot/pkg/logx"
)

type fakeSender struct {
	mu        sync.Mutex
	responses map[string]likes.RawResponse
	calls     []string
	block     chan struct{} // when set, Send waits until closed
}

func (f *fakeSender) Send(ctx context.Context, playerID, key string) likes.RawResponse {
	f.mu.Lock()
	f.calls = append(f.calls, playerID)
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	if raw, ok := f.responses[playerID]; ok {
		return raw
	}
	return likes.RawResponse{Error: "player_not_found", Message: "Jogador não encontrado"}
}

type fakeKeys struct {
	key string
	err error
}

func (f *fakeKeys) Load() (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.key, nil
}

type fakeNotifier struct {
	mu           sync.Mutex
	userCalls    map[int64][]Result
	adminCalls   []Summary
	configErrors int
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{userCalls: make(map[int64][]Result)}
}

func (f *fakeNotifier) NotifyUser(ctx context.Context, telegramID int64, results []Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userCalls[telegramID] = append([]Result(nil), results...)
}

func (f *fakeNotifier) NotifyAdmin(ctx context.Context, s Summary) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.adminCalls = append(f.adminCalls, s)
}

func (f *fakeNotifier) NotifyConfigError(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.configErrors++
}

type fakeStore struct {
	mu        sync.Mutex
	groups    []storage.UserGroup
	successes []string
	sends     []storage.SendRecord
}

func (f *fakeStore) ActiveByUser(ctx context.Context) ([]storage.UserGroup, error) {
	return f.groups, nil
}

func (f *fakeStore) RecordSuccess(ctx context.Context, telegramID int64, playerID, playerName string, likesAdded int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.successes = append(f.successes, playerID)
	return nil
}

func (f *fakeStore) AppendSend(ctx context.Context, rec storage.SendRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, rec)
	return nil
}

func TestRunMissingCredential(t *testing.T) {
	t.Parallel()
	store := &fakeStore{groups: []storage.UserGroup{{TelegramID: 1, PlayerIDs: []string{"111111"}}}}
	sender := &fakeSender{}
	notifier := newFakeNotifier()

	r := NewRunner(store, &fakeKeys{err: keystore.ErrNotConfigured}, sender, notifier, 100, logx.Nop())
	_, err := r.Run(context.Background(), OriginAutomatic)

	if !errors.Is(err, ErrNoCredential) {
		t.Fatalf("err = %v, want ErrNoCredential", err)
	}
	if notifier.configErrors != 1 {
		t.Fatalf("configErrors = %d, want 1", notifier.configErrors)
	}
	if len(sender.calls) != 0 {
		t.Fatalf("sender called %d times before credential gate", len(sender.calls))
	}
}

func TestRunEmptyRegistry(t *testing.T) {
	t.Parallel()
	notifier := newFakeNotifier()
	r := NewRunner(&fakeStore{}, &fakeKeys{key: "k"}, &fakeSender{}, notifier, 100, logx.Nop())

	sum, err := r.Run(context.Background(), OriginAutomatic)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if sum.PlayerIDs != 0 || sum.Users != 0 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if len(notifier.adminCalls) != 0 {
		t.Fatal("admin notified for empty cycle")
	}
}

func TestRunMixedOutcomes(t *testing.T) {
	t.Parallel()
	store := &fakeStore{groups: []storage.UserGroup{
		{TelegramID: 10, PlayerIDs: []string{"111111", "222222"}},
		{TelegramID: 20, PlayerIDs: []string{"333333"}},
	}}
	sender := &fakeSender{responses: map[string]likes.RawResponse{
		"111111": {Success: true, LikesAdded: 150, Player: "Ana"},
		"222222": {Error: likes.ErrInsufficientLikes, LikesAdded: 30, Player: "Bruno"},
		"333333": {Error: likes.ErrCodeTimeout, Message: "Tempo de resposta esgotado. Tente novamente."},
	}}
	notifier := newFakeNotifier()

	r := NewRunner(store, &fakeKeys{key: "k"}, sender, notifier, 100, logx.Nop())
	sum, err := r.Run(context.Background(), OriginAutomatic)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if sum.Users != 2 || sum.PlayerIDs != 3 {
		t.Fatalf("summary counts: %+v", sum)
	}
	if sum.Successes != 1 || sum.Failures != 2 || sum.LikesSent != 150 {
		t.Fatalf("summary outcome: %+v", sum)
	}

	// Exactly one registration refresh, for the full success.
	if len(store.successes) != 1 || store.successes[0] != "111111" {
		t.Fatalf("successes = %v", store.successes)
	}
	// One audit row per attempt regardless of outcome.
	if len(store.sends) != 3 {
		t.Fatalf("audit rows = %d, want 3", len(store.sends))
	}
	for _, rec := range store.sends {
		if !rec.Auto {
			t.Fatalf("audit row not marked automatic: %+v", rec)
		}
	}

	// One consolidated message per user.
	if len(notifier.userCalls) != 2 {
		t.Fatalf("user notifications = %d, want 2", len(notifier.userCalls))
	}
	if got := notifier.userCalls[10]; len(got) != 2 {
		t.Fatalf("user 10 results = %d, want 2", len(got))
	}
	if len(notifier.adminCalls) != 1 {
		t.Fatalf("admin notifications = %d, want 1", len(notifier.adminCalls))
	}
}

func TestRunPartialAuditRow(t *testing.T) {
	t.Parallel()
	store := &fakeStore{groups: []storage.UserGroup{{TelegramID: 1, PlayerIDs: []string{"222222"}}}}
	sender := &fakeSender{responses: map[string]likes.RawResponse{
		"222222": {Error: likes.ErrInsufficientLikes, LikesAdded: 30, Player: "Bruno"},
	}}

	r := NewRunner(store, &fakeKeys{key: "k"}, sender, newFakeNotifier(), 100, logx.Nop())
	if _, err := r.Run(context.Background(), OriginAutomatic); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if len(store.sends) != 1 {
		t.Fatalf("audit rows = %d", len(store.sends))
	}
	rec := store.sends[0]
	if rec.Success {
		t.Fatal("partial recorded as success")
	}
	if rec.LikesSent != 30 {
		t.Fatalf("LikesSent = %d, want 30", rec.LikesSent)
	}
	if rec.ErrorMessage != "Menos de 100 likes" {
		t.Fatalf("ErrorMessage = %q", rec.ErrorMessage)
	}
	if len(store.successes) != 0 {
		t.Fatal("partial refreshed the registration")
	}
}

func TestRunRejectsOverlap(t *testing.T) {
	t.Parallel()
	block := make(chan struct{})
	store := &fakeStore{groups: []storage.UserGroup{{TelegramID: 1, PlayerIDs: []string{"111111"}}}}
	sender := &fakeSender{
		responses: map[string]likes.RawResponse{"111111": {Success: true, LikesAdded: 150}},
		block:     block,
	}

	r := NewRunner(store, &fakeKeys{key: "k"}, sender, newFakeNotifier(), 100, logx.Nop())

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(started)
		_, err := r.Run(context.Background(), OriginAutomatic)
		done <- err
	}()

	<-started
	// Wait until the first run is inside the sender.
	for {
		sender.mu.Lock()
		n := len(sender.calls)
		sender.mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := r.Run(context.Background(), OriginManual); !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("overlapping run err = %v, want ErrRunInProgress", err)
	}

	close(block)
	if err := <-done; err != nil {
		t.Fatalf("first run error: %v", err)
	}
}

func TestSendOne(t *testing.T) {
	t.Parallel()
	store := &fakeStore{}
	sender := &fakeSender{responses: map[string]likes.RawResponse{
		"111111": {Success: true, LikesAdded: 200, Player: "Ana"},
	}}

	r := NewRunner(store, &fakeKeys{key: "k"}, sender, newFakeNotifier(), 100, logx.Nop())
	out, err := r.SendOne(context.Background(), 42, "111111")
	if err != nil {
		t.Fatalf("SendOne error: %v", err)
	}
	if out.Kind != likes.KindSuccess || out.LikesAdded != 200 {
		t.Fatalf("outcome = %+v", out)
	}

	if len(store.sends) != 1 {
		t.Fatalf("audit rows = %d", len(store.sends))
	}
	if store.sends[0].Auto {
		t.Fatal("manual send marked automatic")
	}
}

func TestSendOneMissingCredential(t *testing.T) {
	t.Parallel()
	r := NewRunner(&fakeStore{}, &fakeKeys{err: keystore.ErrNotConfigured}, &fakeSender{}, newFakeNotifier(), 100, logx.Nop())
	if _, err := r.SendOne(context.Background(), 42, "111111"); !errors.Is(err, ErrNoCredential) {
		t.Fatalf("err = %v, want ErrNoCredential", err)
	}
}
