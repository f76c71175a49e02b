package renderers

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/samvad-hq/samvad-market-pulse/internal/domain"
	"github.com/samvad-hq/samvad-market-pulse/internal/view"
)

var (
	colorPrimary  = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	colorDim      = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"}
	colorBorder   = lipgloss.AdaptiveColor{Light: "#DBDBDB", Dark: "#383838"}
	colorPositive = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#25D366"}
	colorNegative = lipgloss.AdaptiveColor{Light: "#D7263D", Dark: "#F25D5D"}
	colorNeutral  = lipgloss.AdaptiveColor{Light: "#3D3D3D", Dark: "#ABABAB"}
	colorError    = lipgloss.AdaptiveColor{Light: "#D7263D", Dark: "#F25D94"}
)

type terminalStyles struct {
	header   lipgloss.Style
	status   lipgloss.Style
	dim      lipgloss.Style
	title    lipgloss.Style
	card     lipgloss.Style
	errPanel lipgloss.Style
	positive lipgloss.Style
	neutral  lipgloss.Style
	negative lipgloss.Style
}

func newTerminalStyles(r *lipgloss.Renderer) terminalStyles {
	return terminalStyles{
		header: r.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			PaddingLeft(1),
		status: r.NewStyle().
			Foreground(colorDim).
			PaddingLeft(1),
		dim: r.NewStyle().
			Foreground(colorDim),
		title: r.NewStyle().
			Bold(true).
			Foreground(colorPrimary),
		card: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1),
		errPanel: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorError).
			Foreground(colorError).
			Padding(0, 1),
		positive: r.NewStyle().Foreground(colorPositive),
		neutral:  r.NewStyle().Foreground(colorNeutral),
		negative: r.NewStyle().Foreground(colorNegative),
	}
}

// terminalRenderer draws the dashboard as styled text.
type terminalRenderer struct {
	id          string
	typ         string
	width       int
	maxArticles int
	mu          sync.Mutex
	out         io.Writer
	st          terminalStyles
}

func newTerminalRenderer(_ context.Context, cfg RendererConfig, deps Deps) (Renderer, error) {
	tc := TerminalRendererConfig{Width: terminalDefaultWidth}
	if cfg.Terminal != nil {
		tc = *cfg.Terminal
	}
	if tc.Width <= 0 {
		tc.Width = terminalDefaultWidth
	}
	out := deps.normalize().Out

	return &terminalRenderer{
		id:          cfg.ID,
		typ:         TypeTerminal,
		width:       tc.Width,
		maxArticles: tc.MaxArticles,
		out:         out,
		st:          newTerminalStyles(lipgloss.NewRenderer(out)),
	}, nil
}

func (t *terminalRenderer) ID() string   { return t.id }
func (t *terminalRenderer) Type() string { return t.typ }

// Render writes one full dashboard frame.
func (t *terminalRenderer) Render(ctx context.Context, f Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	text := t.draw(f.View)

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := fmt.Fprintln(t.out, text); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

func (t *terminalRenderer) draw(vm view.ViewModel) string {
	var sections []string

	heading := fmt.Sprintf("Market Pulse · %s", vm.Query.Window)
	if vm.Query.SearchText != "" {
		heading += fmt.Sprintf(" · search %q", vm.Query.SearchText)
	}
	sections = append(sections, t.st.header.Render(heading), t.st.status.Render(t.statusLine(vm)))

	if vm.LoadState == "error" {
		msg := vm.ErrorMessage
		if vm.RetryHint != "" {
			msg += "\n" + vm.RetryHint
		}
		if vm.CanRetry {
			msg += "\n[retry] try again   [refresh] reload"
		} else {
			msg += "\n[refresh] reload"
		}
		sections = append(sections, t.st.errPanel.Width(t.width-4).Render(msg))
	}

	sections = append(sections, t.sentimentLine(vm.Sentiment))
	if line := t.trendingLine(vm.Trending); line != "" {
		sections = append(sections, line)
	}

	sections = append(sections, t.articles(vm))

	switch {
	case vm.HasMore:
		sections = append(sections, t.st.dim.Render(" [more] load more articles"))
	case vm.TotalArticles > 0:
		sections = append(sections, t.st.dim.Render(" End of results"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (t *terminalRenderer) statusLine(vm view.ViewModel) string {
	switch vm.LoadState {
	case "loading":
		return "Loading…"
	case "refreshing":
		return "Refreshing…"
	}
	line := fmt.Sprintf("Showing %d of %d articles · %s view", len(vm.Articles), vm.TotalArticles, vm.ViewMode)
	if vm.FilterText != "" {
		line += fmt.Sprintf(" · filter %q", vm.FilterText)
	}
	return line
}

func (t *terminalRenderer) sentimentLine(s domain.SentimentSummary) string {
	overall := s.Overall
	if overall == "" {
		overall = domain.SentimentNeutral
	}
	return " Sentiment  " + strings.Join([]string{
		t.st.positive.Render(fmt.Sprintf("▲ %d%% positive", s.Positive)),
		t.st.neutral.Render(fmt.Sprintf("● %d%% neutral", s.Neutral)),
		t.st.negative.Render(fmt.Sprintf("▼ %d%% negative", s.Negative)),
	}, "  ") + "  overall: " + t.sentimentStyle(overall).Render(string(overall))
}

func (t *terminalRenderer) trendingLine(topics []domain.TrendingTopic) string {
	if len(topics) == 0 {
		return ""
	}
	parts := make([]string, 0, len(topics))
	for _, tp := range topics {
		parts = append(parts, t.sentimentStyle(tp.Sentiment).Render(tp.Name))
	}
	return " Trending   " + strings.Join(parts, t.st.dim.Render(" · "))
}

func (t *terminalRenderer) sentimentStyle(s domain.Sentiment) lipgloss.Style {
	switch s {
	case domain.SentimentPositive:
		return t.st.positive
	case domain.SentimentNegative:
		return t.st.negative
	default:
		return t.st.neutral
	}
}

func (t *terminalRenderer) articles(vm view.ViewModel) string {
	list := vm.Articles
	if len(list) == 0 {
		switch {
		case vm.LoadState == "loading" || vm.LoadState == "refreshing":
			return t.st.dim.Render(" Fetching articles…")
		case vm.FilterText != "" && vm.TotalArticles > 0:
			return t.st.dim.Render(fmt.Sprintf(" No articles match %q", vm.FilterText))
		default:
			return t.st.dim.Render(" No articles found")
		}
	}
	if t.maxArticles > 0 && len(list) > t.maxArticles {
		list = list[:t.maxArticles]
	}

	if vm.ViewMode == view.ModeList {
		rows := make([]string, 0, len(list))
		for _, a := range list {
			rows = append(rows, t.listItem(a))
		}
		return strings.Join(rows, "\n")
	}

	cardWidth := max((t.width-2)/2-2, 20)
	var rows []string
	for i := 0; i < len(list); i += 2 {
		cards := []string{t.card(list[i], cardWidth)}
		if i+1 < len(list) {
			cards = append(cards, t.card(list[i+1], cardWidth))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (t *terminalRenderer) card(a view.Article, width int) string {
	body := []string{
		t.st.title.Render(truncate(a.Title, width-2)),
		t.meta(a),
	}
	if a.Description != "" {
		body = append(body, truncate(a.Description, 2*(width-2)))
	}
	return t.st.card.Width(width).Render(strings.Join(body, "\n"))
}

func (t *terminalRenderer) listItem(a view.Article) string {
	return " " + t.st.title.Render(truncate(a.Title, t.width-2)) + "\n   " + t.meta(a)
}

func (t *terminalRenderer) meta(a view.Article) string {
	parts := []string{a.SourceName, a.PublishedAt, "impact " + string(a.Impact)}
	var kept []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return t.st.dim.Render(strings.Join(kept, " · ")) + " " + t.sentimentStyle(a.Sentiment).Render(string(a.Sentiment))
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
