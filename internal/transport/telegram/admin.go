package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"likesbot/internal/dispatch"
	"likesbot/internal/keystore"
	"likesbot/internal/notify"
	"likesbot/pkg/logx"
	"likesbot/pkg/tgui"
)

func (r *Router) onSetKey(ctx context.Context, c tele.Context) error {
	args := c.Args()
	if len(args) == 0 {
		text := fmt.Sprintf("⚠️ %s\n\nUse: %s", tgui.B("Key não informada"), tgui.Code("/setkey [KEY]"))
		return c.Send(text, htmlOpts)
	}
	key := args[0]

	if err := r.keys.Save(key); err != nil {
		return fmt.Errorf("save api key: %w", err)
	}

	// The raw key was posted in chat. Best effort removal.
	if msg := c.Message(); msg != nil {
		if err := r.adapter.bot.Delete(msg); err != nil {
			r.log.Warn("could not delete setkey message", logx.Err(err))
		}
	}

	text := fmt.Sprintf("✅ %s\n\n🔑 Key: %s\n\nO sistema está pronto para enviar likes!",
		tgui.B("KEY CONFIGURADA COM SUCESSO!"), tgui.Code(keystore.Mask(key)))
	return c.Send(text, htmlOpts)
}

func (r *Router) onCheckKey(ctx context.Context, c tele.Context) error {
	key, err := r.keys.Load()
	if err != nil {
		if errors.Is(err, keystore.ErrNotConfigured) {
			text := fmt.Sprintf("❌ %s\n\nUse %s para configurar.",
				tgui.B("Key não configurada"), tgui.Code("/setkey [KEY]"))
			return c.Send(text, htmlOpts)
		}
		return fmt.Errorf("load api key: %w", err)
	}
	text := fmt.Sprintf("🔑 %s\n\n✅ Key configurada: %s",
		tgui.B("STATUS DA KEY"), tgui.Code(keystore.Mask(key)))
	return c.Send(text, htmlOpts)
}

func (r *Router) onListUsers(ctx context.Context, c tele.Context) error {
	users, err := r.store.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	if len(users) == 0 {
		return c.Send("👥 Nenhum usuário cadastrado ainda.", htmlOpts)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "👥 %s\n\n", tgui.B("USUÁRIOS CADASTRADOS"))
	for i, u := range users {
		ids, err := r.store.ListPlayerIDs(ctx, u.TelegramID)
		if err != nil {
			return fmt.Errorf("list player ids: %w", err)
		}
		name := u.Username
		if name == "" {
			name = "N/A"
		}
		fmt.Fprintf(&b, "%s\n\n", divider)
		fmt.Fprintf(&b, "%s @%s\n", tgui.B(fmt.Sprintf("#%d", i+1)), tgui.Esc(name))
		fmt.Fprintf(&b, "🆔 Telegram: %s\n", tgui.Code(fmt.Sprintf("%d", u.TelegramID)))
		fmt.Fprintf(&b, "🎮 IDs cadastrados: %d\n", len(ids))
		if !u.RegisteredAt.IsZero() {
			fmt.Fprintf(&b, "📅 Desde: %s\n", u.RegisteredAt.Format(timeLayout))
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "%s\n\n📊 Total: %d usuário(s)", divider, len(users))
	return c.Send(b.String(), htmlOpts)
}

func (r *Router) onStats(ctx context.Context, c tele.Context) error {
	st, err := r.store.Stats(ctx)
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 %s\n\n%s\n\n", tgui.B("ESTATÍSTICAS DO BOT"), divider)
	fmt.Fprintf(&b, "👥 Usuários: %d\n", st.Users)
	fmt.Fprintf(&b, "🆔 IDs ativos: %d\n", st.PlayerIDs)
	fmt.Fprintf(&b, "💖 Likes enviados (total): %s\n", notify.FormatNumber(st.TotalLikes))
	fmt.Fprintf(&b, "📤 Envios hoje: %d\n", st.SendsToday)
	fmt.Fprintf(&b, "✅ Taxa de sucesso: %.1f%%\n\n%s\n\n", st.SuccessRate, divider)
	fmt.Fprintf(&b, "⏰ %s", time.Now().Format(timeLayout))
	return c.Send(b.String(), htmlOpts)
}

func (r *Router) onBroadcast(ctx context.Context, c tele.Context) error {
	var message string
	if msg := c.Message(); msg != nil {
		message = strings.TrimSpace(msg.Payload)
	}
	if message == "" {
		text := fmt.Sprintf("⚠️ %s\n\nUse: %s", tgui.B("Mensagem não informada"), tgui.Code("/broadcast [mensagem]"))
		return c.Send(text, htmlOpts)
	}

	users, err := r.store.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	if len(users) == 0 {
		return c.Send("👥 Nenhum usuário para receber a mensagem.", htmlOpts)
	}

	sent, failed := r.notifier.Broadcast(ctx, users, message)
	text := fmt.Sprintf("📢 %s\n\n✅ Entregues: %d\n❌ Falharam: %d",
		tgui.B("BROADCAST CONCLUÍDO"), sent, failed)
	return c.Send(text, htmlOpts)
}

// cycleTimeout bounds one full manual cycle. Every player ID can take up to
// a minute, so this is generous rather than tight.
const cycleTimeout = 30 * time.Minute

func (r *Router) onForceSend(ctx context.Context, c tele.Context) error {
	if err := c.Send("🚀 Iniciando ciclo de envio manual...", htmlOpts); err != nil {
		return err
	}

	// The cycle outlives the handler deadline; the admin report arrives via
	// the notifier when it finishes.
	go func() {
		runCtx, cancel := context.WithTimeout(r.base, cycleTimeout)
		defer cancel()

		_, err := r.disp.Run(runCtx, dispatch.OriginManual)
		switch {
		case err == nil:
		case errors.Is(err, dispatch.ErrRunInProgress):
			if sendErr := r.adapter.SendText(runCtx, r.adminID, "⚠️ Já existe um ciclo de envio em andamento."); sendErr != nil {
				r.log.Warn("run-in-progress notice failed", logx.Err(sendErr))
			}
		case errors.Is(err, dispatch.ErrNoCredential):
			// NotifyConfigError already fired inside the cycle.
		default:
			r.log.Error("manual cycle failed", logx.Err(err))
			if sendErr := r.adapter.SendText(runCtx, r.adminID, fmt.Sprintf("❌ Ciclo manual falhou: %s", tgui.Esc(err.Error()))); sendErr != nil {
				r.log.Warn("cycle failure notice failed", logx.Err(sendErr))
			}
		}
	}()
	return nil
}
