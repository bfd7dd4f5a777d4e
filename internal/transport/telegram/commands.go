package telegram

import (
	"context"
	"errors"
	"fmt"
	"time"

	tele "gopkg.in/telebot.v4"

	"likesbot/internal/dispatch"
	"likesbot/internal/notify"
	"likesbot/internal/storage"
	"likesbot/pkg/logx"
	"likesbot/pkg/tgui"
)

func (r *Router) onStart(ctx context.Context, c tele.Context) error {
	if _, err := r.store.AddUser(ctx, senderID(c), senderUsername(c)); err != nil {
		return fmt.Errorf("register user: %w", err)
	}
	return c.Send(startText(), mainMenu(), htmlOpts)
}

func (r *Router) onMenu(ctx context.Context, c tele.Context) error {
	text := fmt.Sprintf("📱 %s\n\nEscolha uma opção:", tgui.B("MENU PRINCIPAL"))
	return c.Send(text, mainMenu(), htmlOpts)
}

func (r *Router) onHelp(ctx context.Context, c tele.Context) error {
	return c.Send(helpText(senderID(c) == r.adminID), htmlOpts)
}

// validPlayerID accepts numeric game IDs only.
func validPlayerID(s string) bool {
	if len(s) < 5 || len(s) > 15 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (r *Router) onAddID(ctx context.Context, c tele.Context) error {
	args := c.Args()
	if len(args) == 0 {
		text := fmt.Sprintf("⚠️ %s\n\nUse: %s\nExemplo: %s",
			tgui.B("ID não informado"), tgui.Code("/addid [ID]"), tgui.Code("/addid 1033857091"))
		return c.Send(text, htmlOpts)
	}
	playerID := args[0]
	if !validPlayerID(playerID) {
		text := fmt.Sprintf("❌ %s\n\nO ID deve conter apenas números.\nExemplo: %s",
			tgui.B("ID inválido"), tgui.Code("/addid 1033857091"))
		return c.Send(text, htmlOpts)
	}

	created, err := r.store.AddUser(ctx, senderID(c), senderUsername(c))
	if err != nil {
		return fmt.Errorf("register user: %w", err)
	}

	if err := r.store.AddPlayerID(ctx, senderID(c), playerID); err != nil {
		if errors.Is(err, storage.ErrDuplicateID) {
			text := fmt.Sprintf("⚠️ O ID %s já está cadastrado na sua lista!", tgui.Code(playerID))
			return c.Send(text, htmlOpts)
		}
		return fmt.Errorf("add player id: %w", err)
	}

	if created {
		r.notifier.NotifyNewUser(ctx, senderID(c), senderUsername(c), playerID)
	}

	text := fmt.Sprintf("✅ %s\n\n🆔 ID: %s\n\n🌙 Este ID receberá likes automaticamente todos os dias à meia-noite!\n\n💡 Use /myids para ver todos os seus IDs.",
		tgui.B("ID CADASTRADO COM SUCESSO!"), tgui.Code(playerID))
	return c.Send(text, htmlOpts)
}

func (r *Router) onMyIDs(ctx context.Context, c tele.Context) error {
	text, err := r.myIDsText(ctx, senderID(c))
	if err != nil {
		return fmt.Errorf("list player ids: %w", err)
	}
	return c.Send(text, htmlOpts)
}

func (r *Router) onRemoveIDs(ctx context.Context, c tele.Context) error {
	kb, count, err := r.removeKeyboard(ctx, senderID(c))
	if err != nil {
		return fmt.Errorf("list player ids: %w", err)
	}
	if count == 0 {
		return c.Send("📋 Você não tem nenhum ID cadastrado para remover.", htmlOpts)
	}
	text := fmt.Sprintf("🗑️ %s\n\nEscolha o ID que deseja remover:", tgui.B("REMOVER ID"))
	return c.Send(text, kb, htmlOpts)
}

// manualSendTimeout covers one remote call (up to 60s) plus delivery slack.
const manualSendTimeout = 90 * time.Second

func (r *Router) onLike(ctx context.Context, c tele.Context) error {
	args := c.Args()
	if len(args) == 0 {
		text := fmt.Sprintf("⚠️ %s\n\nUse: %s\nExemplo: %s",
			tgui.B("ID não informado"), tgui.Code("/like [ID]"), tgui.Code("/like 1033857091"))
		return c.Send(text, htmlOpts)
	}
	playerID := args[0]
	if !validPlayerID(playerID) {
		text := fmt.Sprintf("❌ %s\n\nO ID deve conter apenas números.", tgui.B("ID inválido"))
		return c.Send(text, htmlOpts)
	}

	waiting, err := r.adapter.bot.Send(c.Chat(),
		fmt.Sprintf("⏳ Enviando likes para o ID %s...\n\nAguarde, isso pode levar até 1 minuto.", tgui.Code(playerID)),
		htmlOpts)
	if err != nil {
		return fmt.Errorf("send waiting message: %w", err)
	}

	sendCtx, cancel := context.WithTimeout(r.base, manualSendTimeout)
	defer cancel()

	out, err := r.disp.SendOne(sendCtx, senderID(c), playerID)
	if err != nil {
		if errors.Is(err, dispatch.ErrNoCredential) {
			r.notifier.NotifyConfigError(sendCtx)
			_, editErr := r.adapter.bot.Edit(waiting,
				"❌ O sistema ainda não está configurado. Contate o administrador.", htmlOpts)
			return editErr
		}
		return fmt.Errorf("manual send: %w", err)
	}

	if _, err := r.adapter.bot.Edit(waiting, notify.FormatOutcome(playerID, out), htmlOpts); err != nil {
		r.log.Warn("edit of waiting message failed", logx.Int64("user", senderID(c)), logx.Err(err))
		return c.Send(notify.FormatOutcome(playerID, out), htmlOpts)
	}
	return nil
}

func (r *Router) onStatus(ctx context.Context, c tele.Context) error {
	text, err := r.statusText(ctx, senderID(c))
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}
	return c.Send(text, htmlOpts)
}
