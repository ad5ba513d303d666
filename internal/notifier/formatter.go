package notifier

import (
	"fmt"
	"strings"
	"time"

	"TradeSentry/internal/model"
)

// FormatCycleReport formats one cycle's per-symbol outcomes into a
// Telegram message.
func FormatCycleReport(cycle *model.CycleResult) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>TradeSentry cycle</b> | %s\n\n", cycle.StartedAt.Format("2006-01-02 15:04")))

	if cycle.Skipped {
		b.WriteString("⏸ Market closed, cycle skipped.\n")
		return b.String()
	}

	for _, r := range cycle.Results {
		switch {
		case r.Err != nil:
			b.WriteString(fmt.Sprintf("❌ %s: %v\n", r.Symbol, r.Err))
		case r.Receipt != nil:
			b.WriteString(fmt.Sprintf("%s %s: %s @ %.2f (RSI %.1f, order %s)\n",
				actionEmoji(r.Action), r.Symbol, r.Action, r.LastClose, r.RSI, r.Receipt.OrderID))
		default:
			b.WriteString(fmt.Sprintf("%s %s: %s (RSI %.1f, close %.2f)\n",
				actionEmoji(r.Action), r.Symbol, r.Action, r.RSI, r.LastClose))
		}
	}

	b.WriteString(fmt.Sprintf("\n%d symbols • %d orders • %d errors • %s\n",
		len(cycle.Results), cycle.Orders(), cycle.Errors(),
		cycle.FinishedAt.Sub(cycle.StartedAt).Round(time.Millisecond)))
	return b.String()
}

// FormatPositions formats a position snapshot for the /positions command.
func FormatPositions(positions []model.Position) string {
	if len(positions) == 0 {
		return "📦 No open positions."
	}
	var b strings.Builder
	b.WriteString("📦 <b>Open positions</b>\n\n")
	for _, p := range positions {
		b.WriteString(fmt.Sprintf("%s: %g @ %.2f\n", p.Symbol, p.Qty, p.AvgEntryPrice))
	}
	return b.String()
}

func actionEmoji(action model.Action) string {
	switch action {
	case model.ActionBought:
		return "🟢"
	case model.ActionSold:
		return "🔴"
	case model.ActionHeld:
		return "⚪"
	default:
		return "⏭"
	}
}
