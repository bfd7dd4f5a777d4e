package notify

import (
	"fmt"
	"strings"
	"time"

	"likesbot/internal/dispatch"
	"likesbot/internal/likes"
	"likesbot/pkg/tgui"
)

const divider = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

const timeLayout = "02/01/2006 15:04:05"

// FormatNumber renders an integer with pt-BR digit grouping: 15162 -> "15.162".
func FormatNumber(n int64) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, d := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func statusText(status int) string {
	if status == 1 {
		return "Online"
	}
	return "Offline"
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// FormatOutcome renders the full single-send message for the /like command.
func FormatOutcome(playerID string, o likes.Outcome) string {
	switch o.Kind {
	case likes.KindSuccess:
		return formatManualSuccess(o)
	case likes.KindPartial:
		return formatManualPartial(o)
	default:
		return formatManualError(playerID, o)
	}
}

func playerInfoBlock(raw likes.RawResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⭐ %s\n", tgui.B("PLAYER INFO:"))
	fmt.Fprintf(&b, "   Level: %d\n", raw.Level)
	fmt.Fprintf(&b, "   EXP: %s\n", FormatNumber(raw.EXP))
	fmt.Fprintf(&b, "   Status: %s", statusText(raw.Status))
	return b.String()
}

func formatManualSuccess(o likes.Outcome) string {
	raw := o.Raw
	var b strings.Builder
	fmt.Fprintf(&b, "✅ %s\n\n", tgui.B("LIKES ENVIADOS COM SUCESSO!"))
	fmt.Fprintf(&b, "👤 Player: %s\n", tgui.Esc(orNA(raw.Player)))
	fmt.Fprintf(&b, "🆔 UID: %s\n", tgui.Esc(orNA(raw.UID)))
	fmt.Fprintf(&b, "🌎 Região: %s\n\n", tgui.Esc(orNA(raw.Region)))
	fmt.Fprintf(&b, "💖 %s\n", tgui.B("LIKES:"))
	fmt.Fprintf(&b, "   Antes: %s\n", FormatNumber(raw.InitialLikes))
	fmt.Fprintf(&b, "   Enviados: +%d\n", raw.LikesAdded)
	fmt.Fprintf(&b, "   Depois: %s\n\n", FormatNumber(raw.FinalLikes))
	b.WriteString(playerInfoBlock(raw))
	fmt.Fprintf(&b, "\n\n⏰ %s", tgui.Esc(orNA(raw.Timestamp)))
	return b.String()
}

func formatManualPartial(o likes.Outcome) string {
	raw := o.Raw
	minimum := raw.MinRequired
	if minimum <= 0 {
		minimum = o.Minimum
	}
	var b strings.Builder
	fmt.Fprintf(&b, "⚠️ %s\n\n", tgui.B("ENVIO PARCIAL"))
	fmt.Fprintf(&b, "👤 Player: %s\n", tgui.Esc(orNA(raw.Player)))
	fmt.Fprintf(&b, "🆔 UID: %s\n", tgui.Esc(orNA(raw.UID)))
	fmt.Fprintf(&b, "🌎 Região: %s\n\n", tgui.Esc(orNA(raw.Region)))
	fmt.Fprintf(&b, "💔 %s\n", tgui.B("LIKES INSUFICIENTES:"))
	fmt.Fprintf(&b, "   Antes: %s\n", FormatNumber(raw.InitialLikes))
	fmt.Fprintf(&b, "   Enviados: +%d\n", raw.LikesAdded)
	fmt.Fprintf(&b, "   Depois: %s\n\n", FormatNumber(raw.FinalLikes))
	fmt.Fprintf(&b, "   ⚠️ Mínimo necessário: %d likes\n", minimum)
	fmt.Fprintf(&b, "   ❌ Este envio NÃO foi contabilizado\n\n")
	b.WriteString(playerInfoBlock(raw))
	fmt.Fprintf(&b, "\n\n💡 Tente novamente mais tarde!\n\n⏰ %s", tgui.Esc(orNA(raw.Timestamp)))
	return b.String()
}

func formatManualError(playerID string, o likes.Outcome) string {
	var b strings.Builder
	switch o.ErrorCode {
	case "player_not_found":
		fmt.Fprintf(&b, "❌ %s\n\n", tgui.B("ERRO NO ENVIO"))
		fmt.Fprintf(&b, "🆔 ID: %s\n", tgui.Code(playerID))
		fmt.Fprintf(&b, "⚠️ Erro: Jogador não encontrado\n\n")
		fmt.Fprintf(&b, "💡 %s\n", tgui.B("POSSÍVEIS CAUSAS:"))
		b.WriteString("   • ID incorreto\n")
		b.WriteString("   • Jogador não existe\n")
		b.WriteString("   • Jogador excluiu a conta\n\n")
		b.WriteString("🔍 Verifique o ID e tente novamente")
	case likes.ErrCodeTimeout:
		fmt.Fprintf(&b, "⏱️ %s\n\n", tgui.B("TEMPO ESGOTADO"))
		fmt.Fprintf(&b, "🆔 ID: %s\n", tgui.Code(playerID))
		fmt.Fprintf(&b, "⚠️ %s\n\n", tgui.Esc(o.ErrorMessage))
		b.WriteString("💡 A API demorou muito para responder.\n   Tente novamente em alguns instantes.")
	default:
		fmt.Fprintf(&b, "❌ %s\n\n", tgui.B("ERRO NO ENVIO"))
		fmt.Fprintf(&b, "🆔 ID: %s\n", tgui.Code(playerID))
		fmt.Fprintf(&b, "⚠️ Erro: %s\n\n", tgui.Esc(o.ErrorMessage))
		b.WriteString("💡 Tente novamente ou contate o administrador.")
	}
	return b.String()
}

// formatUserCycle renders the consolidated per-user message for one cycle.
func formatUserCycle(results []dispatch.Result, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🌙 %s\n\n%s\n\n", tgui.B("ENVIO AUTOMÁTICO - MEIA-NOITE"), divider)

	totalLikes := 0
	successes := 0
	for i, res := range results {
		raw := res.Outcome.Raw
		switch res.Outcome.Kind {
		case likes.KindSuccess:
			totalLikes += res.Outcome.LikesAdded
			successes++
			fmt.Fprintf(&b, "✅ %s\n", tgui.B(fmt.Sprintf("ID %d: %s", i+1, res.PlayerID)))
			fmt.Fprintf(&b, "👤 Player: %s\n", tgui.Esc(orNA(raw.Player)))
			fmt.Fprintf(&b, "🌎 Região: %s\n", tgui.Esc(orNA(raw.Region)))
			fmt.Fprintf(&b, "💖 Likes: %s → %s (+%d)\n", FormatNumber(raw.InitialLikes), FormatNumber(raw.FinalLikes), res.Outcome.LikesAdded)
			fmt.Fprintf(&b, "⭐ Level: %d | EXP: %s\n\n", raw.Level, FormatNumber(raw.EXP))
		case likes.KindPartial:
			fmt.Fprintf(&b, "❌ %s\n", tgui.B(fmt.Sprintf("ID %d: %s", i+1, res.PlayerID)))
			fmt.Fprintf(&b, "👤 Player: %s\n", tgui.Esc(orNA(raw.Player)))
			fmt.Fprintf(&b, "💔 Apenas %d likes enviados\n", res.Outcome.LikesAdded)
			fmt.Fprintf(&b, "❌ Mínimo: %d likes\n\n", res.Outcome.Minimum)
		default:
			fmt.Fprintf(&b, "❌ %s\n", tgui.B(fmt.Sprintf("ID %d: %s", i+1, res.PlayerID)))
			fmt.Fprintf(&b, "⚠️ Erro: %s\n\n", tgui.Esc(res.Outcome.ErrorMessage))
		}
		fmt.Fprintf(&b, "%s\n\n", divider)
	}

	fmt.Fprintf(&b, "📊 %s\n", tgui.B("RESUMO:"))
	fmt.Fprintf(&b, "   • Total de IDs: %d\n", len(results))
	fmt.Fprintf(&b, "   • Likes enviados: %d\n", totalLikes)
	fmt.Fprintf(&b, "   • Sucesso: %d/%d\n\n", successes, len(results))
	fmt.Fprintf(&b, "⏰ %s", now.Format(timeLayout))
	return b.String()
}

// formatAdminReport renders the aggregate cycle summary for the admin.
func formatAdminReport(s dispatch.Summary) string {
	attempts := s.Successes + s.Failures
	rate := 0.0
	if attempts > 0 {
		rate = float64(s.Successes) / float64(attempts) * 100
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 %s\n\n", tgui.B("RELATÓRIO DE ENVIO AUTOMÁTICO"))
	fmt.Fprintf(&b, "⏰ %s\n\n%s\n\n", s.FinishedAt.Format(timeLayout), divider)
	fmt.Fprintf(&b, "👥 Usuários processados: %d\n", s.Users)
	fmt.Fprintf(&b, "🆔 IDs processados: %d\n", s.PlayerIDs)
	fmt.Fprintf(&b, "💖 Likes enviados: %s\n\n", FormatNumber(int64(s.LikesSent)))
	fmt.Fprintf(&b, "✅ Sucessos: %d\n", s.Successes)
	fmt.Fprintf(&b, "❌ Falhas: %d\n\n", s.Failures)
	fmt.Fprintf(&b, "Taxa de sucesso: %.1f%%\n\n%s", rate, divider)
	return b.String()
}
