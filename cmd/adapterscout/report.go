package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"AdapterScout/internal/collector"
	"AdapterScout/internal/dashboard"
	"AdapterScout/internal/model"
	"AdapterScout/internal/notifier"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

type reportOptions struct {
	search     string
	chains     []string
	categories []string
	sort       string
	missing    bool
	relevant   bool
	minTVL     float64
	limit      int
	fixture    string
}

func reportCmd(configPath *string) *cobra.Command {
	opts := reportOptions{}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Run one fetch cycle and print the filtered protocol table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.Context(), cmd.OutOrStdout(), *configPath, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.search, "search", "", "Substring match on name, description or slug")
	f.StringSliceVar(&opts.chains, "chain", nil, "Only protocols on any of these chains")
	f.StringSliceVar(&opts.categories, "category", nil, "Only protocols in any of these categories")
	f.StringVar(&opts.sort, "sort", model.DefaultSort.String(), "Sort key: listedAt|tvl|name with -asc or -desc")
	f.BoolVar(&opts.missing, "missing", false, "Only protocols without a yield adapter")
	f.BoolVar(&opts.relevant, "relevant", false, "Only yield-relevant categories")
	f.Float64Var(&opts.minTVL, "min-tvl", 0, "Minimum TVL in USD")
	f.IntVar(&opts.limit, "limit", 50, "Maximum rows to print (0 for all)")
	f.StringVar(&opts.fixture, "fixture", "", "Read datasets from a JSON fixture instead of the network")
	return cmd
}

func (o reportOptions) filterState() model.FilterState {
	return model.FilterState{
		Search:                o.search,
		Chains:                o.chains,
		Categories:            o.categories,
		Sort:                  model.ParseSortKey(o.sort),
		ShowOnlyMissing:       o.missing,
		ShowOnlyYieldRelevant: o.relevant,
		MinTVL:                o.minTVL,
	}
}

func runReport(ctx context.Context, w io.Writer, configPath string, opts reportOptions) error {
	if opts.minTVL < 0 {
		return fmt.Errorf("--min-tvl must not be negative")
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	var col dashboard.Collector
	if opts.fixture != "" {
		sf, err := loadFixture(opts.fixture)
		if err != nil {
			return err
		}
		col = collector.NewCollector(sf, sf, sf)
	} else {
		col = newCollector(cfg)
	}

	svc := dashboard.NewService(col, cfg.Rules())
	if _, err := svc.Refresh(ctx); err != nil {
		return err
	}
	v, err := svc.View(opts.filterState())
	if err != nil {
		return err
	}
	renderReport(w, v, opts.limit, time.Now())
	return nil
}

// fixtureFile is the on-disk shape read by --fixture. Protocols and pools use
// the upstream JSON field names.
type fixtureFile struct {
	Protocols []model.Protocol `json:"protocols"`
	Pools     []model.Pool     `json:"pools"`
	Paths     []string         `json:"paths"`
	Truncated bool             `json:"truncated"`
}

func loadFixture(path string) (*collector.StaticFetcher, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var ff fixtureFile
	if err := json.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return &collector.StaticFetcher{
		Protocols: ff.Protocols,
		Pools:     ff.Pools,
		Tree:      collector.AdapterTree{Paths: ff.Paths, Truncated: ff.Truncated},
	}, nil
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	missingStyle = cellStyle.Foreground(lipgloss.Color("9"))
	coveredStyle = cellStyle.Foreground(lipgloss.Color("10"))
)

func renderReport(w io.Writer, v *dashboard.View, limit int, now time.Time) {
	st := v.Stats
	fmt.Fprintf(w, "Coverage: %s of %s protocols (%.1f%%)\n",
		humanize.Comma(int64(st.Covered)), humanize.Comma(int64(st.Total)), st.CoveragePercent())
	fmt.Fprintf(w, "Pools: %s | TVL $%s | $1M+ pools: %s | projects with pools: %s\n",
		humanize.Comma(int64(st.PoolsCount)), notifier.FormatNumber(&st.PoolsTVL),
		humanize.Comma(int64(st.PoolsOver1M)), humanize.Comma(int64(st.UniqueProjects)))
	fmt.Fprintf(w, "Fetched %s (cycle %s)\n", v.FetchedAt.Format(time.RFC3339), v.CycleID)
	for _, warn := range v.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}

	rows := v.Protocols
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Name", "Category", "Chains", "TVL", "Listed", "Adapter").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 5 && rows[row].HasYieldAdapter:
				return coveredStyle
			case col == 5:
				return missingStyle
			}
			return cellStyle
		})
	for _, p := range rows {
		adapter := "missing"
		if p.HasYieldAdapter {
			adapter = "yes"
		}
		t.Row(p.Name, p.Category, chainsCell(p.Chains), "$"+notifier.FormatNumber(p.TVL),
			notifier.RelativeTime(p.ListedAt, now), adapter)
	}
	fmt.Fprintln(w, t.Render())
	if len(rows) < len(v.Protocols) {
		fmt.Fprintf(w, "%d of %d protocols shown\n", len(rows), len(v.Protocols))
	}
}

func chainsCell(chains []string) string {
	if len(chains) <= 3 {
		return strings.Join(chains, ", ")
	}
	return fmt.Sprintf("%s +%d", strings.Join(chains[:3], ", "), len(chains)-3)
}
