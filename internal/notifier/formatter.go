package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"AdapterScout/internal/model"

	"github.com/dustin/go-humanize"
)

// FormatNumber renders a USD amount with K/M/B suffixes; nil renders as N/A.
func FormatNumber(v *float64) string {
	if v == nil {
		return "N/A"
	}
	n := *v
	switch {
	case n < 1000:
		return fmt.Sprintf("%.2f", n)
	case n < 1_000_000:
		return fmt.Sprintf("%.1fK", n/1000)
	case n < 1_000_000_000:
		return fmt.Sprintf("%.2fM", n/1_000_000)
	default:
		return fmt.Sprintf("%.2fB", n/1_000_000_000)
	}
}

// FormatDate renders an epoch-seconds timestamp as "2 Jan 2006".
func FormatDate(ts *int64) string {
	if ts == nil || *ts == 0 {
		return "Unknown"
	}
	return time.Unix(*ts, 0).UTC().Format("2 Jan 2006")
}

// RelativeTime renders how long before now ts was, e.g. "3d ago".
func RelativeTime(ts *int64, now time.Time) string {
	if ts == nil || *ts == 0 {
		return "Unknown"
	}
	diff := now.Sub(time.Unix(*ts, 0))
	if diff < 0 {
		diff = 0
	}
	minutes := int(diff.Minutes())
	hours := int(diff.Hours())
	days := hours / 24
	switch {
	case minutes < 60:
		return fmt.Sprintf("%dm ago", minutes)
	case hours < 24:
		return fmt.Sprintf("%dh ago", hours)
	case days < 30:
		return fmt.Sprintf("%dd ago", days)
	case days < 365:
		return fmt.Sprintf("%dmo ago", days/30)
	}
	return fmt.Sprintf("%dy ago", days/365)
}

// FormatCoverageReport formats the stats header as a Telegram message.
func FormatCoverageReport(stats model.Stats, fetchedAt time.Time, warnings []string) string {
	var b strings.Builder
	tvl := stats.PoolsTVL

	b.WriteString(fmt.Sprintf("📊 <b>Yield adapter coverage</b> | %s\n\n", fetchedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Protocols covered: %s\n", humanize.Comma(int64(stats.UniqueProjects))))
	b.WriteString(fmt.Sprintf("  %.1f%% of %s protocols\n", stats.CoveragePercent(), humanize.Comma(int64(stats.Total))))
	b.WriteString(fmt.Sprintf("Total pools: %s\n", humanize.Comma(int64(stats.PoolsCount))))
	b.WriteString(fmt.Sprintf("Pools TVL: $%s\n", FormatNumber(&tvl)))
	b.WriteString(fmt.Sprintf("$1M+ pools: %s\n", humanize.Comma(int64(stats.PoolsOver1M))))

	for _, w := range warnings {
		b.WriteString(fmt.Sprintf("\n⚠️ %s", html.EscapeString(w)))
	}
	return b.String()
}

// FormatMissingList lists protocols without a yield adapter, at most limit entries.
func FormatMissingList(title string, protocols []model.EnrichedProtocol, limit int, now time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔍 <b>%s</b> (%d)\n\n", html.EscapeString(title), len(protocols)))
	if len(protocols) == 0 {
		b.WriteString("Nothing missing ✅")
		return b.String()
	}
	for i, p := range protocols {
		if limit > 0 && i == limit {
			b.WriteString(fmt.Sprintf("… and %d more", len(protocols)-limit))
			break
		}
		category := p.Category
		if category == "" {
			category = "Uncategorized"
		}
		b.WriteString(fmt.Sprintf("• <a href=\"%s\">%s</a> · %s · TVL $%s · listed %s\n",
			p.LlamaURL(), html.EscapeString(p.Name), html.EscapeString(category),
			FormatNumber(p.TVL), RelativeTime(p.ListedAt, now)))
	}
	return b.String()
}
