package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/callisatech-creator/QuestFocus/internal/engine"
	"github.com/callisatech-creator/QuestFocus/internal/feedback"
	"github.com/callisatech-creator/QuestFocus/internal/ui"
)

type timerModel struct {
	ctx context.Context
	svc *engine.Service

	width int

	timer *engine.Timer
	stats engine.UserStats
	now   time.Time

	// confirmDiscard is set after a stop was refused for being under a minute,
	// or after the user asked to discard; the next "y" discards whatever the
	// timer has run since.
	confirmDiscard bool

	result          *engine.StopResult
	feedback        *feedback.Feedback
	waitingFeedback bool

	lastLog string
	loading bool
	err     error
}

type loadedMsg struct {
	timer *engine.Timer
	stats engine.UserStats
	err   error
}

type tickMsg struct{}

type timerMsg struct {
	timer *engine.Timer
	log   string
	err   error
}

type stoppedMsg struct {
	res *engine.StopResult
	err error
}

type feedbackMsg struct {
	fb feedback.Feedback
	ok bool
}

func newTimerModel(ctx context.Context, svc *engine.Service) timerModel {
	return timerModel{
		ctx:     ctx,
		svc:     svc,
		now:     svc.Now(),
		loading: true,
		lastLog: "Loaded.",
	}
}

func (m timerModel) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m timerModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		st := m.svc.LoadState(m.ctx)
		t, err := m.svc.Active(m.ctx)
		if errors.Is(err, engine.ErrNoActiveSession) {
			return loadedMsg{stats: st.Stats}
		}
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{timer: &t, stats: st.Stats}
	}
}

func (m timerModel) pauseCmd() tea.Cmd {
	return func() tea.Msg {
		t, err := m.svc.Pause(m.ctx)
		return timerMsg{timer: &t, log: "Paused.", err: err}
	}
}

func (m timerModel) resumeCmd() tea.Cmd {
	return func() tea.Msg {
		t, err := m.svc.Resume(m.ctx)
		return timerMsg{timer: &t, log: "Resumed.", err: err}
	}
}

func (m timerModel) stopCmd() tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.Stop(m.ctx, engine.StopInput{})
		return stoppedMsg{res: res, err: err}
	}
}

func (m timerModel) discardCmd() tea.Cmd {
	return func() tea.Msg {
		_, err := m.svc.Discard(m.ctx)
		return timerMsg{timer: nil, log: "Session discarded.", err: err}
	}
}

func waitFeedback(ch <-chan feedback.Feedback) tea.Cmd {
	return func() tea.Msg {
		fb, ok := <-ch
		return feedbackMsg{fb: fb, ok: ok}
	}
}

func (m timerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tickMsg:
		m.now = m.svc.Now()
		return m, tickCmd()
	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.lastLog = "Load failed: " + msg.err.Error()
			return m, nil
		}
		m.timer = msg.timer
		m.stats = msg.stats
		if m.timer == nil && m.result == nil {
			m.lastLog = "No active session. Start one with: qf start <subject>"
		}
		return m, nil
	case timerMsg:
		if msg.err != nil {
			m.lastLog = "Failed: " + msg.err.Error()
			return m, m.loadCmd()
		}
		m.timer = msg.timer
		m.confirmDiscard = false
		m.lastLog = msg.log
		return m, nil
	case stoppedMsg:
		if msg.err != nil {
			if engine.IsShortSession(msg.err) {
				m.confirmDiscard = true
				m.lastLog = "Under a minute. Discard it? (y/n)"
				return m, nil
			}
			m.lastLog = "Stop failed: " + msg.err.Error()
			return m, nil
		}
		m.confirmDiscard = false
		m.timer = nil
		if msg.res.Discarded {
			m.lastLog = "Short session discarded."
			return m, m.loadCmd()
		}
		m.result = msg.res
		m.stats = msg.res.Stats
		m.lastLog = fmt.Sprintf("Committed %s: +%d XP", ui.Minutes(msg.res.Session.DurationMinutes), msg.res.XPAwarded)
		m.waitingFeedback = true
		return m, waitFeedback(m.svc.RequestFeedback(m.ctx, msg.res.CommitResult))
	case feedbackMsg:
		m.waitingFeedback = false
		if msg.ok {
			fb := msg.fb
			m.feedback = &fb
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m timerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if m.confirmDiscard {
		switch key {
		case "y", "Y":
			m.lastLog = "Discarding…"
			return m, m.discardCmd()
		case "n", "N", "esc":
			m.confirmDiscard = false
			m.lastLog = "Kept running."
			return m, nil
		}
	}

	switch key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "r":
		m.loading = true
		m.lastLog = "Refreshing…"
		return m, m.loadCmd()
	case "p", " ":
		if m.timer == nil {
			return m, nil
		}
		if m.timer.Paused() {
			return m, m.resumeCmd()
		}
		return m, m.pauseCmd()
	case "s", "enter":
		if m.timer == nil {
			return m, nil
		}
		m.lastLog = "Stopping…"
		return m, m.stopCmd()
	case "d":
		if m.timer == nil {
			return m, nil
		}
		m.confirmDiscard = true
		m.lastLog = "Discard this session? (y/n)"
		return m, nil
	}
	return m, nil
}

func (m timerModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit.\n"
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderClock())
	b.WriteString("\n")
	if m.result != nil {
		b.WriteString(m.renderResult())
		b.WriteString("\n")
	}
	b.WriteString(m.renderKeys())
	b.WriteString("\n\n")
	b.WriteString(ui.Muted.Render(m.lastLog))
	b.WriteString("\n")
	return b.String()
}

func (m timerModel) renderHeader() string {
	if m.loading && m.timer == nil {
		return ui.Heading(ui.IconTimer, "QuestFocus") + " " + ui.Muted.Render("loading…")
	}
	st := m.stats
	return fmt.Sprintf("%s | Level %d %s %d/%d XP | %s %d",
		ui.Heading(ui.IconTimer, "QuestFocus"),
		st.Level,
		ui.ProgressBar(st.CurrentXP, st.NextLevelXP, 20),
		st.CurrentXP, st.NextLevelXP,
		ui.IconFire, st.StreakDays,
	)
}

func (m timerModel) renderClock() string {
	if m.timer == nil {
		return ui.Panel.Render(ui.Muted.Render("No active session"))
	}
	state := ui.Good.Render(ui.IconPlay + " running")
	if m.timer.Paused() {
		state = ui.Warn.Render(ui.IconPause + " paused")
	}
	elapsed := m.timer.Elapsed(m.now)
	body := fmt.Sprintf("%s\n%s\n%s",
		ui.H2.Render(m.timer.Subject),
		ui.BigClock.Render(ui.Clock(elapsed)),
		state,
	)
	return ui.Panel.Render(body)
}

func (m timerModel) renderResult() string {
	res := m.result
	lines := []string{
		ui.Good.Render(fmt.Sprintf("%s %s · %s · +%d XP", ui.IconDone, res.Session.Subject, ui.Minutes(res.Session.DurationMinutes), res.XPAwarded)),
	}
	if res.LevelUp {
		lines = append(lines, fmt.Sprintf("%s %d → %d", ui.BadgeLevelUp, res.LevelBefore, res.LevelAfter))
	}
	for _, a := range res.Unlocked {
		lines = append(lines, ui.Gold.Render(fmt.Sprintf("%s Achievement unlocked: %s %s", ui.IconTrophy, a.Icon, a.Title)))
	}
	switch {
	case m.waitingFeedback:
		lines = append(lines, ui.Muted.Render(ui.IconChat+" …"))
	case m.feedback != nil:
		lines = append(lines, ui.FeedbackStyle(string(m.feedback.Type)).Render(ui.IconChat+" "+m.feedback.Message))
	}
	return strings.Join(lines, "\n")
}

func (m timerModel) renderKeys() string {
	if m.timer == nil {
		return ui.Muted.Render("r: refresh · q: quit")
	}
	return ui.Muted.Render("p/space: pause/resume · s/enter: stop · d: discard · q: quit (timer keeps running)")
}
