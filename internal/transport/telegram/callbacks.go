package telegram

import (
	"context"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	"likesbot/pkg/logx"
	"likesbot/pkg/tgui"
)

// onCallback routes inline button presses. Data is "scope:action" or
// "scope:action:payload".
func (r *Router) onCallback(ctx context.Context, c tele.Context) error {
	cb := c.Callback()
	if cb == nil {
		return nil
	}
	defer func() {
		if err := c.Respond(); err != nil {
			r.log.Debug("callback ack failed", logx.Err(err))
		}
	}()

	data := strings.TrimPrefix(cb.Data, "\f")
	parts := strings.SplitN(data, ":", 3)
	if len(parts) < 2 {
		return nil
	}
	scope, action := parts[0], parts[1]
	payload := ""
	if len(parts) == 3 {
		payload = parts[2]
	}

	switch scope {
	case "menu":
		return r.onMenuAction(ctx, c, action)
	case "remove":
		return r.onRemoveAction(ctx, c, action, payload)
	default:
		r.log.Debug("unknown callback scope", logx.String("data", data))
		return nil
	}
}

func (r *Router) onMenuAction(ctx context.Context, c tele.Context, action string) error {
	switch action {
	case "addid":
		text := fmt.Sprintf("➕ %s\n\nPara adicionar um ID, use:\n%s\n\nExemplo: %s",
			tgui.B("ADICIONAR ID"), tgui.Code("/addid [ID]"), tgui.Code("/addid 1033857091"))
		return c.Edit(text, htmlOpts)

	case "myids":
		text, err := r.myIDsText(ctx, senderID(c))
		if err != nil {
			return fmt.Errorf("list player ids: %w", err)
		}
		return c.Edit(text, htmlOpts)

	case "like":
		text := fmt.Sprintf("💖 %s\n\nPara enviar likes agora, use:\n%s\n\nExemplo: %s\n\n⏳ O envio pode levar até 1 minuto.",
			tgui.B("ENVIAR LIKES"), tgui.Code("/like [ID]"), tgui.Code("/like 1033857091"))
		return c.Edit(text, htmlOpts)

	case "remove":
		kb, count, err := r.removeKeyboard(ctx, senderID(c))
		if err != nil {
			return fmt.Errorf("list player ids: %w", err)
		}
		if count == 0 {
			return c.Edit("📋 Você não tem nenhum ID cadastrado para remover.", htmlOpts)
		}
		text := fmt.Sprintf("🗑️ %s\n\nEscolha o ID que deseja remover:", tgui.B("REMOVER ID"))
		return c.Edit(text, kb, htmlOpts)

	case "status":
		text, err := r.statusText(ctx, senderID(c))
		if err != nil {
			return fmt.Errorf("status: %w", err)
		}
		return c.Edit(text, htmlOpts)

	case "help":
		return c.Edit(helpText(senderID(c) == r.adminID), htmlOpts)

	default:
		r.log.Debug("unknown menu action", logx.String("action", action))
		return nil
	}
}

func (r *Router) onRemoveAction(ctx context.Context, c tele.Context, action, payload string) error {
	switch action {
	case "pick":
		if payload == "" {
			return nil
		}
		if err := r.store.Deactivate(ctx, senderID(c), payload); err != nil {
			return fmt.Errorf("deactivate player id: %w", err)
		}
		text := fmt.Sprintf("✅ %s\n\n🆔 ID removido: %s\n\nEle não receberá mais likes automáticos.",
			tgui.B("ID REMOVIDO"), tgui.Code(payload))
		return c.Edit(text, htmlOpts)

	case "cancel":
		return c.Edit("❌ Operação cancelada.", htmlOpts)

	default:
		r.log.Debug("unknown remove action", logx.String("action", action))
		return nil
	}
}
