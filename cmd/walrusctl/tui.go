package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/walrus-tools/walrusctl/internal/observability"
	"github.com/walrus-tools/walrusctl/internal/sui"
)

// Retained event window in follow mode.
const followMaxEvents = 500

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("57")).Padding(0, 1)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245"))
	timeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	blobStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	sizeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("180"))
	txStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	eventTypeStyles = map[string]lipgloss.Style{
		"BlobRegistered": lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		"BlobCertified":  lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
		"InvalidBlobID":  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
	defaultTypeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
)

type eventsMsg []sui.BlobEvent

type fetchErrMsg struct{ err error }

type pollTickMsg time.Time

// followModel is the live event view: poll, merge, render, repeat.
type followModel struct {
	fetch    eventFetcher
	metrics  *observability.Metrics
	interval time.Duration

	spinner  spinner.Model
	events   []sui.BlobEvent
	seen     map[string]bool
	loading  bool
	err      error
	lastPoll time.Time
	width    int
	height   int
}

func newFollowModel(fetch eventFetcher, metrics *observability.Metrics, interval time.Duration) followModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return followModel{
		fetch:    fetch,
		metrics:  metrics,
		interval: interval,
		spinner:  sp,
		seen:     make(map[string]bool),
		loading:  true,
	}
}

func (m followModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchCmd())
}

func (m followModel) fetchCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		events, err := m.fetch(ctx)
		if err != nil {
			return fetchErrMsg{err: err}
		}
		return eventsMsg(events)
	}
}

func (m followModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case eventsMsg:
		m.merge(msg)
		m.loading = false
		m.err = nil
		m.lastPoll = time.Now()
		return m, tea.Tick(m.interval, func(t time.Time) tea.Msg { return pollTickMsg(t) })

	case fetchErrMsg:
		m.loading = false
		m.err = msg.err
		m.lastPoll = time.Now()
		return m, tea.Tick(m.interval, func(t time.Time) tea.Msg { return pollTickMsg(t) })

	case pollTickMsg:
		m.loading = true
		return m, m.fetchCmd()
	}

	return m, nil
}

// merge folds a fetched window into the model, counting only events not seen
// before. Windows overlap across polls by design.
func (m *followModel) merge(window []sui.BlobEvent) {
	for _, ev := range window {
		key := ev.TxDigest + "/" + ev.EventSeq
		if m.seen[key] {
			continue
		}
		m.seen[key] = true
		m.metrics.ObserveEvent(ev.Type)
		m.events = append(m.events, ev)
	}

	sort.Slice(m.events, func(i, j int) bool {
		return m.events[i].TimestampMs > m.events[j].TimestampMs
	})
	if len(m.events) > followMaxEvents {
		for _, ev := range m.events[followMaxEvents:] {
			delete(m.seen, ev.TxDigest+"/"+ev.EventSeq)
		}
		m.events = m.events[:followMaxEvents]
	}
}

func (m followModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("walrus events"))
	b.WriteString("\n\n")

	if m.err != nil {
		width := m.width
		if width <= 0 {
			width = 80
		}
		b.WriteString(errStyle.Render(wordwrap.String("error: "+m.err.Error(), width)))
		b.WriteString("\n\n")
	}

	if m.loading && len(m.events) == 0 {
		b.WriteString(m.spinner.View() + " fetching events…\n")
		return b.String()
	}

	b.WriteString(headerStyle.Render(fmt.Sprintf("%-19s %-16s %10s %-43s %s", "TIME", "EVENT", "SIZE", "BLOB ID", "TX")))
	b.WriteString("\n")

	rows := m.visibleRows()
	for _, ev := range m.events {
		if rows == 0 {
			break
		}
		rows--

		size := ""
		if ev.Size > 0 {
			size = formatSize(ev.Size)
		}
		b.WriteString(fmt.Sprintf("%s %s %s %s %s\n",
			timeStyle.Render(ev.Time().Format("2006-01-02 15:04:05")),
			typeStyle(ev.Type).Render(fmt.Sprintf("%-16s", ev.Type)),
			sizeStyle.Render(fmt.Sprintf("%10s", size)),
			blobStyle.Render(ev.BlobID),
			txStyle.Render(truncate(ev.TxDigest, 24)),
		))
	}

	b.WriteString("\n")
	b.WriteString(footerStyle.Render(m.footer()))
	return b.String()
}

func (m followModel) visibleRows() int {
	// Title, blank, header, blank, footer.
	reserved := 6
	if m.err != nil {
		reserved += 2
	}
	if m.height <= reserved {
		return 20
	}
	return m.height - reserved
}

func (m followModel) footer() string {
	status := fmt.Sprintf("%d events", len(m.events))
	if m.loading {
		status = m.spinner.View() + " polling"
	} else if !m.lastPoll.IsZero() {
		status += fmt.Sprintf(" • polled %s ago", time.Since(m.lastPoll).Truncate(time.Second))
	}
	return status + " • q to quit"
}

func typeStyle(eventType string) lipgloss.Style {
	if s, ok := eventTypeStyles[eventType]; ok {
		return s
	}
	return defaultTypeStyle
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
