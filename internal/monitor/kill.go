package monitor

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/procmon/internal/collector"
	"github.com/rileyhilliard/procmon/internal/procctl"
)

// killPrompt is the confirmation shown before a process is terminated.
type killPrompt struct {
	rec   collector.ProcessRecord
	force bool
	// confirmed lives on the heap because the form keeps a pointer to it
	// while the model is copied on every update.
	confirmed *bool
	form      *huh.Form
}

func newKillPrompt(rec collector.ProcessRecord, force bool) *killPrompt {
	confirmed := new(bool)

	desc := fmt.Sprintf("Sends SIGTERM, then SIGKILL if it is still running after %s.", procctl.DefaultGrace)
	if rec.Class == collector.ClassSystem {
		desc = "This is a system process. " + desc
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Terminate %s (PID %d)?", rec.Name, rec.PID)).
				Description(desc).
				Affirmative("Terminate").
				Negative("Cancel").
				Value(confirmed),
		),
	).WithShowHelp(false).WithWidth(56)

	return &killPrompt{rec: rec, force: force, confirmed: confirmed, form: form}
}

// startKill opens the confirmation for the selected process. System
// processes are refused unless force is set.
func (m *Model) startKill(force bool) tea.Cmd {
	rec, ok := m.Selected()
	if !ok {
		return nil
	}
	if m.killer == nil {
		m.setStatus("Process termination is not available here")
		return nil
	}
	if err := procctl.Check(rec, force); err != nil {
		m.setError(err)
		if rec.PID > 1 && rec.Class == collector.ClassSystem && !force {
			m.status += " (X to force)"
		}
		return nil
	}

	m.confirm = newKillPrompt(rec, force)
	return m.confirm.form.Init()
}

// updateConfirm forwards msg to the confirmation form. The form's own
// completion commands are dropped so finishing it never quits the program.
func (m Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == KeyCollapse {
		m.confirm = nil
		return m, nil
	}

	model, cmd := m.confirm.form.Update(msg)
	if f, ok := model.(*huh.Form); ok {
		m.confirm.form = f
	}

	switch m.confirm.form.State {
	case huh.StateCompleted:
		p := m.confirm
		m.confirm = nil
		if *p.confirmed {
			return m, m.killCmd(p.rec, p.force)
		}
		m.setStatus("Left %s (PID %d) running", p.rec.Name, p.rec.PID)
		return m, nil
	case huh.StateAborted:
		m.confirm = nil
		return m, nil
	}
	return m, cmd
}

func (m Model) killCmd(rec collector.ProcessRecord, force bool) tea.Cmd {
	killer := m.killer
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), killTimeout)
		defer cancel()
		res, err := killer.Terminate(ctx, rec, procctl.Options{Force: force})
		return killResultMsg{rec: rec, res: res, err: err}
	}
}

func (m *Model) handleKillResult(msg killResultMsg) {
	if msg.err != nil {
		m.setError(msg.err)
		return
	}
	if msg.res.Escalated {
		m.setStatus("Killed %s (PID %d) after it ignored %s", msg.rec.Name, msg.rec.PID, procctl.SignalName(msg.res.Signal))
		return
	}
	m.setStatus("Sent %s to %s (PID %d)", procctl.SignalName(msg.res.Signal), msg.rec.Name, msg.rec.PID)
}
