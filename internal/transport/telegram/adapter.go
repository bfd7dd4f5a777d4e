// Package telegram is the chat transport: a telebot adapter plus the command
// router that maps bot commands onto the registry store and the dispatcher.
package telegram

import (
	"context"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"likesbot/pkg/logx"
)

type AdapterConfig struct {
	Token       string
	PollTimeout time.Duration
}

// Adapter wraps the telebot long poller and outbound sends.
// All outbound text is Telegram HTML.
type Adapter struct {
	bot *tele.Bot
	log logx.Logger
}

func NewAdapter(cfg AdapterConfig, log logx.Logger) (*Adapter, error) {
	timeout := cfg.PollTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	b, err := tele.NewBot(tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: timeout},
	})
	if err != nil {
		return nil, err
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Adapter{bot: b, log: log.With(logx.String("comp", "telegram"))}, nil
}

// Bot exposes the underlying telebot instance for handler registration.
func (a *Adapter) Bot() *tele.Bot { return a.bot }

// Start runs the long-poll loop until ctx is cancelled. It blocks.
func (a *Adapter) Start(ctx context.Context) {
	go func() {
		<-ctx.Done()
		a.bot.Stop()
	}()
	a.log.Info("polling started")
	a.bot.Start()
	a.log.Info("polling stopped")
}

var htmlOpts = &tele.SendOptions{ParseMode: tele.ModeHTML, DisableWebPagePreview: true}

// SendText sends HTML text to a chat, splitting messages that exceed
// Telegram's length limit.
func (a *Adapter) SendText(ctx context.Context, chatID int64, text string) error {
	chat := &tele.Chat{ID: chatID}
	for _, chunk := range splitText(text, textLimit) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if _, err := a.bot.Send(chat, chunk, htmlOpts); err != nil {
			return err
		}
	}
	return nil
}

const textLimit = 4000

// splitText splits long messages into chunks Telegram will accept,
// preferring newline boundaries.
func splitText(s string, limit int) []string {
	rs := []rune(s)
	if len(rs) <= limit {
		return []string{s}
	}

	out := make([]string, 0, (len(rs)+limit-1)/limit)
	start := 0
	for start < len(rs) {
		end := start + limit
		if end > len(rs) {
			end = len(rs)
		}

		if end < len(rs) {
			for i := end - 1; i > start; i-- {
				if rs[i] == '\n' && i-start >= limit/3 {
					end = i + 1
					break
				}
			}
		}

		chunk := strings.TrimRight(string(rs[start:end]), "\n")
		out = append(out, chunk)

		start = end
		for start < len(rs) && rs[start] == '\n' {
			start++
		}
	}
	return out
}
