package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"likesbot/internal/notify"
	"likesbot/pkg/tgui"
)

const divider = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

const timeLayout = "02/01/2006 15:04:05"

func startText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎮 %s\n\n", tgui.B("BEM-VINDO AO BOT DE LIKES AUTOMÁTICOS!"))
	b.WriteString("Este bot envia likes automaticamente à meia-noite (00:00) todos os dias para seus IDs cadastrados!\n\n")
	fmt.Fprintf(&b, "📋 %s\n\n", tgui.B("COMANDOS DISPONÍVEIS:"))
	b.WriteString("/addid [ID] - Adicionar um ID do jogo\n")
	b.WriteString("/myids - Ver seus IDs cadastrados\n")
	b.WriteString("/removeids - Remover IDs\n")
	b.WriteString("/like [ID] - Enviar likes AGORA\n")
	b.WriteString("/status - Status do sistema\n")
	b.WriteString("/help - Ajuda completa\n\n")
	fmt.Fprintf(&b, "💡 %s", tgui.B("Use o menu abaixo para navegar facilmente!"))
	return b.String()
}

func helpText(admin bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📖 %s\n\n", tgui.B("GUIA COMPLETO DO BOT"))
	fmt.Fprintf(&b, "%s\n\n", tgui.B("COMANDOS PRINCIPAIS:"))
	fmt.Fprintf(&b, "/addid [ID] - Adicionar ID do jogo à sua lista\nExemplo: %s\n\n", tgui.Code("/addid 1033857091"))
	b.WriteString("/myids - Ver todos os seus IDs cadastrados\n\n")
	b.WriteString("/removeids - Remover IDs indesejados\n\n")
	fmt.Fprintf(&b, "/like [ID] - Enviar likes imediatamente\nExemplo: %s\n\n", tgui.Code("/like 1033857091"))
	b.WriteString("/status - Ver status do sistema\n\n")
	fmt.Fprintf(&b, "%s\n\n", divider)
	fmt.Fprintf(&b, "%s\n\n", tgui.B("COMO FUNCIONA:"))
	b.WriteString("1️⃣ Cadastre seus IDs usando /addid\n")
	b.WriteString("2️⃣ Todo dia à meia-noite o bot envia likes automaticamente\n")
	b.WriteString("3️⃣ Você pode enviar likes manualmente com /like quando quiser\n")
	b.WriteString("4️⃣ Receba notificações de todos os envios\n\n")
	fmt.Fprintf(&b, "%s\n\n", divider)
	fmt.Fprintf(&b, "%s\n\n", tgui.B("IMPORTANTE:"))
	b.WriteString("• Cada envio deve ter no mínimo 100 likes para ser válido\n")
	b.WriteString("• Você pode cadastrar múltiplos IDs\n")
	b.WriteString("• Envios automáticos acontecem às 00:00 (horário Brasil)\n\n")
	b.WriteString("❓ Dúvidas? Entre em contato com o administrador!")

	if admin {
		b.WriteString("\n\n")
		fmt.Fprintf(&b, "👑 %s\n\n", tgui.B("COMANDOS DE ADMINISTRADOR"))
		b.WriteString("/setkey [KEY] - Configurar key da API\n")
		b.WriteString("/checkkey - Ver status da key\n")
		b.WriteString("/listusers - Listar todos os usuários\n")
		b.WriteString("/stats - Estatísticas gerais\n")
		b.WriteString("/broadcast [msg] - Enviar mensagem para todos\n")
		b.WriteString("/forcesend - Forçar envio de teste manual\n\n")
		fmt.Fprintf(&b, "%s\n\n", divider)
		fmt.Fprintf(&b, "%s\nA key da API tem limite de requisições por dia.\nApenas envios com 100+ likes são contabilizados.", tgui.B("ATENÇÃO:"))
	}
	return b.String()
}

// mainMenu builds the inline keyboard shown by /start and /menu.
func mainMenu() *tele.ReplyMarkup {
	return tgui.NewInline().
		Row(
			tgui.Btn("➕ Adicionar ID", tgui.Data("menu", "addid", "")),
			tgui.Btn("📋 Meus IDs", tgui.Data("menu", "myids", "")),
		).
		Row(
			tgui.Btn("💖 Enviar Likes", tgui.Data("menu", "like", "")),
			tgui.Btn("🗑️ Remover ID", tgui.Data("menu", "remove", "")),
		).
		Row(
			tgui.Btn("📊 Status", tgui.Data("menu", "status", "")),
			tgui.Btn("❓ Ajuda", tgui.Data("menu", "help", "")),
		).
		Markup()
}

// myIDsText renders the user's registered ID list.
func (r *Router) myIDsText(ctx context.Context, telegramID int64) (string, error) {
	ids, err := r.store.ListPlayerIDs(ctx, telegramID)
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return fmt.Sprintf("📋 %s\n\nVocê ainda não tem nenhum ID cadastrado.\n\nUse %s para adicionar.",
			tgui.B("SEUS IDs"), tgui.Code("/addid [ID]")), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 %s\n\n", tgui.B("SEUS IDs CADASTRADOS"))
	for i, p := range ids {
		fmt.Fprintf(&b, "%s\n\n", divider)
		fmt.Fprintf(&b, "%s - %s\n", tgui.B(fmt.Sprintf("#%d", i+1)), tgui.Code(p.PlayerID))
		if p.PlayerName != "" {
			fmt.Fprintf(&b, "👤 Player: %s\n", tgui.Esc(p.PlayerName))
		}
		if p.TotalLikes > 0 {
			fmt.Fprintf(&b, "💖 Total de likes recebidos: %s\n", notify.FormatNumber(p.TotalLikes))
		}
		if !p.LastSentAt.IsZero() {
			fmt.Fprintf(&b, "📅 Último envio: %s\n", p.LastSentAt.Format(timeLayout))
		} else {
			b.WriteString("📅 Ainda não recebeu likes\n")
		}
		b.WriteString("🕐 Próximo envio: Hoje às 00:00\n\n")
	}
	fmt.Fprintf(&b, "%s\n\n", divider)
	fmt.Fprintf(&b, "📊 %s %d ID(s) cadastrado(s)", tgui.B("Total:"), len(ids))
	return b.String(), nil
}

// statusText renders the per-user /status card.
func (r *Router) statusText(ctx context.Context, telegramID int64) (string, error) {
	ids, err := r.store.ListPlayerIDs(ctx, telegramID)
	if err != nil {
		return "", err
	}

	next := "Hoje às 00:00"
	if t := r.trigger.Next(); !t.IsZero() {
		next = t.Format(timeLayout)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 %s\n\n", tgui.B("STATUS DO SISTEMA"))
	fmt.Fprintf(&b, "👤 Seu Telegram ID: %s\n", tgui.Code(fmt.Sprintf("%d", telegramID)))
	fmt.Fprintf(&b, "🆔 IDs cadastrados: %d\n", len(ids))
	fmt.Fprintf(&b, "⏰ Próximo envio automático: %s\n\n%s\n\n", tgui.Esc(next), divider)
	b.WriteString("✅ Sistema operacional\n🔄 Envios automáticos ativos\n💖 Bot funcionando normalmente\n\n")
	fmt.Fprintf(&b, "⏰ %s", time.Now().Format(timeLayout))
	return b.String(), nil
}

// removeKeyboard builds the ID removal picker.
func (r *Router) removeKeyboard(ctx context.Context, telegramID int64) (*tele.ReplyMarkup, int, error) {
	ids, err := r.store.ListPlayerIDs(ctx, telegramID)
	if err != nil {
		return nil, 0, err
	}
	kb := tgui.NewInline()
	for _, p := range ids {
		label := p.PlayerName
		if label == "" {
			label = p.PlayerID
		}
		kb.Row(tgui.Btn("🗑️ "+tgui.TruncRunes(label, 30), tgui.Data("remove", "pick", p.PlayerID)))
	}
	kb.Row(tgui.Btn("❌ Cancelar", tgui.Data("remove", "cancel", "")))
	return kb.Markup(), len(ids), nil
}
