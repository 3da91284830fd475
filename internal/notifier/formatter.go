package notifier

import (
	"fmt"
	"html"
	"strings"

	"DrawdownSentinel/internal/model"
)

const absent = "—"

func price(v *float64) string {
	if v == nil {
		return absent
	}
	return fmt.Sprintf("%.2f", *v)
}

func percent(v *float64) string {
	if v == nil {
		return absent
	}
	return fmt.Sprintf("%.2f%%", *v*100)
}

var sessionLabels = map[model.MarketSession]string{
	model.SessionOpen:       "盘中",
	model.SessionAfterHours: "盘后",
	model.SessionClosed:     "休市",
}

var sourceLabels = map[model.PriceSource]string{
	model.SourceRealtime:      "实时",
	model.SourceIntradayBar:   "分钟线",
	model.SourcePreviousClose: "昨收",
	model.SourceNone:          absent,
}

// FormatSheet renders one instrument's fact sheet.
func FormatSheet(s model.FactSheet) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<b>%s</b> %s\n", html.EscapeString(s.Symbol), html.EscapeString(s.StatusLabel)))
	b.WriteString(fmt.Sprintf("  现价: %s (%s)\n", price(s.Price), sourceLabels[s.PriceSource]))
	b.WriteString(fmt.Sprintf("  昨收: %s | 日高: %s\n", price(s.PreviousClose), price(s.DayHigh)))
	b.WriteString(fmt.Sprintf("  历史高点: %s (%s)\n", price(s.ReferenceHigh), html.EscapeString(string(s.ReferenceHighKind))))
	b.WriteString(fmt.Sprintf("  回撤: %s\n", percent(s.Drawdown)))
	if len(s.Missing) > 0 {
		tags := make([]string, len(s.Missing))
		for i, m := range s.Missing {
			tags[i] = string(m)
		}
		b.WriteString(fmt.Sprintf("  ⚠️ 缺失: %s\n", html.EscapeString(strings.Join(tags, ", "))))
	}
	return b.String()
}

// FormatBoard renders a whole board for the /status command.
func FormatBoard(board *model.Board) string {
	if board == nil {
		return "⏳ 尚无数据，请稍后再试"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📉 <b>DrawdownSentinel</b> | %s\n", sessionLabels[board.Session]))
	b.WriteString(fmt.Sprintf("北京时间: %s\n", html.EscapeString(board.BeijingTime)))
	b.WriteString(fmt.Sprintf("美西时间: %s\n\n", html.EscapeString(board.LocalTime)))
	for _, s := range board.Sheets {
		b.WriteString(FormatSheet(s))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatUnknownSymbol renders the reply for an untracked ticker.
func FormatUnknownSymbol(symbol string) string {
	return "未跟踪的标的: " + html.EscapeString(symbol)
}

// FormatTransitions renders alert lines for status changes.
func FormatTransitions(transitions []model.Transition, labels map[model.Status]string) string {
	if len(transitions) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("🚨 <b>回撤提醒</b>\n\n")
	for _, tr := range transitions {
		label := labels[tr.To]
		if label == "" {
			label = string(tr.To)
		}
		b.WriteString(fmt.Sprintf("<b>%s</b>: %s → %s\n",
			html.EscapeString(tr.Symbol), html.EscapeString(string(tr.From)), html.EscapeString(label)))
		b.WriteString(fmt.Sprintf("  现价 %.2f | 回撤 %.2f%%\n", tr.Price, tr.Drawdown*100))
	}
	return strings.TrimRight(b.String(), "\n")
}
