// Package notify formats and delivers outbound chat messages: per-user cycle
// reports, admin summaries, and broadcasts.
//
// Delivery failures are logged and swallowed. A user who blocked the bot must
// never break a dispatch cycle or a broadcast for everyone else.
package notify

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"likesbot/internal/dispatch"
	"likesbot/internal/storage"
	"likesbot/pkg/logx"
	"likesbot/pkg/tgui"
)

// ChatSender is the transport port. Text is Telegram HTML.
type ChatSender interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

type Config struct {
	AdminID int64

	// RatePerSec caps outbound messages (Telegram throttles around 30/s).
	// Zero means the default of 20.
	RatePerSec int
}

type Notifier struct {
	send    ChatSender
	adminID int64
	limiter *rate.Limiter
	log     logx.Logger
}

func New(cfg Config, send ChatSender, log logx.Logger) *Notifier {
	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = 20
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Notifier{
		send:    send,
		adminID: cfg.AdminID,
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
		log:     log.With(logx.String("comp", "notify")),
	}
}

func (n *Notifier) deliver(ctx context.Context, chatID int64, text string) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return err
	}
	return n.send.SendText(ctx, chatID, text)
}

// NotifyUser sends one consolidated cycle report to a user.
func (n *Notifier) NotifyUser(ctx context.Context, telegramID int64, results []dispatch.Result) {
	if len(results) == 0 {
		return
	}
	text := formatUserCycle(results, time.Now())
	if err := n.deliver(ctx, telegramID, text); err != nil {
		n.log.Warn("user notification failed", logx.Int64("user", telegramID), logx.Err(err))
	}
}

// NotifyAdmin sends the aggregate cycle report to the administrator.
func (n *Notifier) NotifyAdmin(ctx context.Context, s dispatch.Summary) {
	if err := n.deliver(ctx, n.adminID, formatAdminReport(s)); err != nil {
		n.log.Warn("admin report failed", logx.Err(err))
	}
}

// NotifyConfigError tells the administrator the API key is missing.
func (n *Notifier) NotifyConfigError(ctx context.Context) {
	text := "❌ Key da API não configurada! Use /setkey para configurar."
	if err := n.deliver(ctx, n.adminID, text); err != nil {
		n.log.Warn("config error notice failed", logx.Err(err))
	}
}

// NotifyNewUser tells the administrator about a first-time registration.
// The user line is a mention so the admin can open the profile even when the
// account has no public username.
func (n *Notifier) NotifyNewUser(ctx context.Context, telegramID int64, username, playerID string) {
	display := "usuário"
	if username != "" {
		display = "@" + username
	}
	text := fmt.Sprintf("🆕 %s\n\n👤 Usuário: %s\n🆔 Telegram ID: %s\n🎮 Game ID: %s\n⏰ %s",
		tgui.B("NOVO USUÁRIO CADASTRADO!"),
		tgui.Mention(display, telegramID),
		tgui.Code(fmt.Sprintf("%d", telegramID)),
		tgui.Code(playerID),
		time.Now().Format(timeLayout),
	)
	if err := n.deliver(ctx, n.adminID, text); err != nil {
		n.log.Warn("new user notice failed", logx.Int64("user", telegramID), logx.Err(err))
	}
}

// Broadcast fans a message out to every user, rate limited.
// Returns delivered and failed counts.
func (n *Notifier) Broadcast(ctx context.Context, users []storage.User, message string) (sent, failed int) {
	text := fmt.Sprintf("📢 %s\n\n%s", tgui.B("MENSAGEM DO ADMINISTRADOR"), tgui.Esc(message))
	for _, u := range users {
		if err := n.deliver(ctx, u.TelegramID, text); err != nil {
			n.log.Warn("broadcast delivery failed", logx.Int64("user", u.TelegramID), logx.Err(err))
			failed++
			continue
		}
		sent++
	}
	return sent, failed
}
