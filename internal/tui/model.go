// Package tui is the bubbletea front-end model, driven by the zipcrack engine's
// progress.Snapshot stream and terminal Result value.
package tui

import (
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"

	"zipcrack/internal/estimate"
	"zipcrack/internal/progress"

	tea "github.com/charmbracelet/bubbletea"
)

// Result is the minimal terminal-value shape the TUI needs; zipcrack.Result
// satisfies it structurally (same field names), avoiding an import of the root
// package from this internal one.
type Result struct {
	Password string
	Err      error
}

type Config struct {
	SnapshotCh <-chan progress.Snapshot
	ResultCh   <-chan Result
	Stop       func()
	SetPaused  func(bool)

	// AlphabetLen/MinLen/MaxLen, if AlphabetLen > 0, let the view render a progress
	// bar and ETA against the brute-force total (estimate.BruteForce); dictionary
	// candidates are not part of that total.
	AlphabetLen int
	MinLen      int
	MaxLen      int
}

type snapshotMsg progress.Snapshot
type snapshotClosedMsg struct{}
type resultMsg Result
type resultClosedMsg struct{}

func listenSnapshots(ch <-chan progress.Snapshot) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return snapshotClosedMsg{}
		}
		return snapshotMsg(s)
	}
}

func listenResult(ch <-chan Result) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return resultClosedMsg{}
		}
		return resultMsg(r)
	}
}

type model struct {
	cfg Config

	attempts uint64
	pps      float64
	phase    progress.Phase
	current  string

	found    bool
	password string
	err      error

	snapshotsOpen bool
	resultOpen    bool
	paused        bool

	start time.Time

	totalComb *big.Int
}

func NewModel(cfg Config) model {
	m := model{
		cfg:           cfg,
		snapshotsOpen: true,
		resultOpen:    true,
		start:         time.Now(),
		phase:         progress.PhaseRunning,
	}
	if cfg.AlphabetLen > 0 && cfg.MaxLen > 0 {
		m.totalComb = estimate.BruteForce(cfg.AlphabetLen, cfg.MinLen, cfg.MaxLen)
	}
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		listenSnapshots(m.cfg.SnapshotCh),
		listenResult(m.cfg.ResultCh),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.cfg.Stop != nil {
				m.cfg.Stop()
			}
			return m, tea.Quit
		case "p":
			m.paused = !m.paused
			if m.cfg.SetPaused != nil {
				m.cfg.SetPaused(m.paused)
			}
			return m, nil
		}

	case snapshotMsg:
		m.attempts = msg.Attempts
		m.pps = msg.PasswordsPerSecond
		m.phase = msg.Phase
		m.current = msg.CurrentPassword
		return m, listenSnapshots(m.cfg.SnapshotCh)

	case snapshotClosedMsg:
		m.snapshotsOpen = false
		return m, nil

	case resultMsg:
		m.resultOpen = false
		if msg.Err == nil {
			m.found = true
			m.password = msg.Password
		} else {
			m.err = msg.Err
		}
		return m, tea.Quit

	case resultClosedMsg:
		m.resultOpen = false
		if !m.snapshotsOpen {
			return m, tea.Quit
		}
		return m, nil
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ZIP Password Recovery (q to quit, p to pause/resume)\n")
	fmt.Fprintf(&b, "Phase: %s | Elapsed: %s | Paused: %v\n",
		m.phase, time.Since(m.start).Truncate(time.Second), m.paused)

	fmt.Fprintf(&b, "\nThroughput: %9.0f p/s | Attempts: %d\n", m.pps, m.attempts)
	if m.current != "" {
		fmt.Fprintf(&b, "Last candidate: %s\n", m.current)
	}

	if m.totalComb != nil && m.totalComb.Sign() > 0 {
		attempts := new(big.Int).SetUint64(m.attempts)
		if attempts.Cmp(m.totalComb) > 0 {
			attempts.Set(m.totalComb)
		}
		percent := percentOf(attempts, m.totalComb)
		bar := progressBar(percent, 40)
		eta := etaString(attempts, m.totalComb, m.pps)
		fmt.Fprintf(&b, "\nProgress: %s %5.1f%% | ETA: %s\n", bar, percent*100, eta)
	}

	if m.found {
		fmt.Fprintf(&b, "\nPassword found: %s\n", m.password)
	} else if m.err != nil {
		fmt.Fprintf(&b, "\n%v\n", m.err)
	}
	return b.String()
}

// percentOf returns a float64 percentage in [0,1].
func percentOf(cur, total *big.Int) float64 {
	if total.Sign() == 0 {
		return 0
	}
	fCur := new(big.Float).SetInt(cur)
	fTot := new(big.Float).SetInt(total)
	r := new(big.Float).Quo(fCur, fTot)
	out, _ := r.Float64()
	if out < 0 {
		return 0
	}
	if out > 1 {
		return 1
	}
	return out
}

// etaString estimates time remaining given attempts so far and current p/s.
func etaString(cur, total *big.Int, pps float64) string {
	if pps <= 0 {
		return "∞"
	}
	remain := new(big.Int).Sub(total, cur)
	if remain.Sign() <= 0 {
		return "0s"
	}
	fRem := new(big.Float).SetInt(remain)
	fPps := big.NewFloat(pps)
	secsF := new(big.Float).Quo(fRem, fPps)
	secs, _ := secsF.Float64()
	if math.IsInf(secs, 0) || math.IsNaN(secs) {
		return "∞"
	}
	d := time.Duration(secs * float64(time.Second))
	return humanizeDuration(d)
}

func humanizeDuration(d time.Duration) string {
	if d < time.Second {
		return d.String()
	}
	d = d.Truncate(time.Second)

	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour

	h := d / time.Hour
	d -= h * time.Hour

	m := d / time.Minute
	d -= m * time.Minute

	s := d / time.Second

	parts := make([]string, 0, 4)
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if h > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
	}
	if m > 0 || h > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dm", m))
	}
	parts = append(parts, fmt.Sprintf("%ds", s))

	return strings.Join(parts, " ")
}

// progressBar renders a simple ASCII progress bar of the given width for percent in
// [0,1].
func progressBar(percent float64, width int) string {
	if width <= 0 {
		width = 20
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 1 {
		percent = 1
	}
	filled := int(math.Round(percent * float64(width)))
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return "[" + bar + "]"
}
