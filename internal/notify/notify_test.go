package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"likesbot/internal/storage"
	"likesbot/pkg/logx"
)

type fakeChatSender struct {
	sent map[int64][]string
	fail map[int64]bool
}

func newFakeChatSender() *fakeChatSender {
	return &fakeChatSender{sent: make(map[int64][]string), fail: make(map[int64]bool)}
}

func (f *fakeChatSender) SendText(ctx context.Context, chatID int64, text string) error {
	if f.fail[chatID] {
		return errors.New("blocked by user")
	}
	f.sent[chatID] = append(f.sent[chatID], text)
	return nil
}

func TestNotifyNewUserMentionsSender(t *testing.T) {
	t.Parallel()
	sender := newFakeChatSender()
	n := New(Config{AdminID: 99}, sender, logx.Nop())

	n.NotifyNewUser(context.Background(), 42, "alice", "1033857091")

	msgs := sender.sent[99]
	if len(msgs) != 1 {
		t.Fatalf("admin messages = %d, want 1", len(msgs))
	}
	for _, want := range []string{`tg://user?id=42`, "@alice", "1033857091"} {
		if !strings.Contains(msgs[0], want) {
			t.Errorf("notice missing %q:\n%s", want, msgs[0])
		}
	}
}

func TestNotifyNewUserWithoutUsername(t *testing.T) {
	t.Parallel()
	sender := newFakeChatSender()
	n := New(Config{AdminID: 99}, sender, logx.Nop())

	n.NotifyNewUser(context.Background(), 42, "", "1033857091")

	msgs := sender.sent[99]
	if len(msgs) != 1 {
		t.Fatalf("admin messages = %d, want 1", len(msgs))
	}
	if !strings.Contains(msgs[0], `tg://user?id=42`) {
		t.Fatalf("notice missing mention link:\n%s", msgs[0])
	}
	if strings.Contains(msgs[0], "@") {
		t.Fatalf("unexpected username marker without a username:\n%s", msgs[0])
	}
}

func TestBroadcastCountsFailures(t *testing.T) {
	t.Parallel()
	sender := newFakeChatSender()
	sender.fail[2] = true
	n := New(Config{AdminID: 99}, sender, logx.Nop())

	users := []storage.User{{TelegramID: 1}, {TelegramID: 2}, {TelegramID: 3}}
	sent, failed := n.Broadcast(context.Background(), users, "manutenção hoje")

	if sent != 2 || failed != 1 {
		t.Fatalf("sent/failed = %d/%d, want 2/1", sent, failed)
	}
	if len(sender.sent[1]) != 1 || len(sender.sent[3]) != 1 {
		t.Fatal("delivered set incomplete")
	}
	if !strings.Contains(sender.sent[1][0], "manutenção hoje") {
		t.Fatalf("broadcast body:\n%s", sender.sent[1][0])
	}
}
