package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

type tickMsg time.Time

type doneMsg struct{}

// progressModel renders one download's progress bar. The copy loop updates
// the counters from its own goroutine; the tick drives the bar.
type progressModel struct {
	progress   progress.Model
	status     string
	totalBytes int64
	received   int64
	done       bool
	mu         sync.Mutex
}

func newProgressModel(status string, total int64) *progressModel {
	return &progressModel{
		progress:   progress.New(progress.WithDefaultGradient()),
		status:     status,
		totalBytes: total,
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *progressModel) Init() tea.Cmd {
	return tickCmd()
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			return m, tea.Quit
		}
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tickMsg:
		if m.done {
			return m, tea.Quit
		}
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.totalBytes > 0 {
			cmd := m.progress.SetPercent(float64(m.received) / float64(m.totalBytes))
			return m, tea.Batch(cmd, tickCmd())
		}
		return m, tickCmd()
	case progress.FrameMsg:
		newModel, cmd := m.progress.Update(msg)
		m.progress = newModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.totalBytes <= 0 {
		return fmt.Sprintf("%s\n%s received\n", m.status, byteLabel(m.received))
	}
	return fmt.Sprintf("%s\n%s %s / %s\n",
		m.status, m.progress.View(), byteLabel(m.received), byteLabel(m.totalBytes))
}

// copyWithProgress copies src to dst while feeding the model's counters.
func copyWithProgress(dst io.Writer, src io.Reader, m *progressModel) (int64, error) {
	buf := make([]byte, 32<<10)
	var written int64
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			wn, writeErr := dst.Write(buf[:n])
			written += int64(wn)
			m.mu.Lock()
			m.received = written
			m.mu.Unlock()
			if writeErr != nil {
				return written, writeErr
			}
			if wn < n {
				return written, io.ErrShortWrite
			}
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, readErr
		}
	}
}

func byteLabel(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%cB", float64(n)/float64(div), "KMGTPE"[exp])
}
