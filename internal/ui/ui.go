// Copyright 2026 The Capcheck Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ui is the polymorphic front end over one capability set (spec
// §9): a single Run(problemStore, events) operation with two concrete
// surfaces, FullTerm (an alternate-screen bubbletea list) and BasicPrint (a
// non-interactive fallback that prints sorted problem lines to a writer).
// The core scanning/checking packages know nothing about either.
package ui

import (
	"fmt"
	"io"
	"sort"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"capcheck/internal/problem"
)

// AppEvent is the single event stream the UI thread consumes (spec §5).
type AppEvent struct {
	// Problems replaces the list's contents. cmd/capcheck sends one event at
	// startup; a config edit does not send another.
	Problems []problem.Problem
}

// Kind selects which concrete front end Run drives.
type Kind int

const (
	FullTerm Kind = iota
	BasicPrint
)

// Run drives the UI surface selected by kind (spec §9's "single operation
// run(problem_store, event_stream) -> result... variants FullTerm and
// BasicPrint"). abort is closed (or sent on) when the user requests
// cancellation; store.Abort is called before Run returns in that case.
func Run(kind Kind, store *problem.Store, events <-chan AppEvent, abort chan<- struct{}, out io.Writer) error {
	switch kind {
	case BasicPrint:
		return runBasicPrint(events, out)
	default:
		return runFullTerm(store, events, abort)
	}
}

// runBasicPrint is the non-interactive fallback: it blocks for the initial
// event (spec §5's "suspension points are limited to... blocking receive
// of the initial event"), prints every problem sorted by crate then
// permission, then returns.
func runBasicPrint(events <-chan AppEvent, out io.Writer) error {
	ev, ok := <-events
	if !ok {
		return nil
	}
	problems := append([]problem.Problem(nil), ev.Problems...)
	sort.Slice(problems, func(i, j int) bool {
		if problems[i].CrateName != problems[j].CrateName {
			return problems[i].CrateName < problems[j].CrateName
		}
		return problems[i].Permission < problems[j].Permission
	})
	for _, p := range problems {
		fmt.Fprintf(out, "[%s] %s: %s\n", p.Severity, p.CrateName, p.Message)
	}
	return nil
}

var (
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	popupStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2)
)

// model is the bubbletea model for FullTerm: a wrapping list of problems
// with a modal error popup, per spec §6 ("alternate-screen mode; keys
// Up/Down for list navigation (wrapping), q to quit... error popups are
// modal: any key dismisses them, q during a popup both dismisses and
// aborts").
type model struct {
	store    *problem.Store
	events   <-chan AppEvent
	abort    chan<- struct{}
	problems []problem.Problem
	cursor   int
	popup    string // non-empty while a modal error popup is shown
	done     bool
}

func runFullTerm(store *problem.Store, events <-chan AppEvent, abort chan<- struct{}) error {
	m := model{store: store, events: events, abort: abort}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

type appEventMsg AppEvent
type dismissPopupMsg struct{}
type abortMsg struct{}

func (m model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

func waitForEvent(events <-chan AppEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return dismissPopupMsg{}
		}
		return appEventMsg(ev)
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case appEventMsg:
		m.problems = msg.Problems
		if m.cursor >= len(m.problems) {
			m.cursor = 0
		}
		return m, waitForEvent(m.events)

	case abortMsg:
		if m.abort != nil {
			m.abort <- struct{}{}
		}
		m.store.Abort()
		m.done = true
		return m, tea.Quit

	case dismissPopupMsg:
		m.popup = ""
		return m, nil

	case tea.KeyMsg:
		if m.popup != "" {
			// Modal popup: any key dismisses it; q both dismisses and
			// aborts (spec §6).
			if msg.String() == "q" {
				return m.Update(abortMsg{})
			}
			m.popup = ""
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m.Update(abortMsg{})
		case "up":
			if len(m.problems) > 0 {
				m.cursor = (m.cursor - 1 + len(m.problems)) % len(m.problems)
			}
		case "down":
			if len(m.problems) > 0 {
				m.cursor = (m.cursor + 1) % len(m.problems)
			}
		}
	}
	return m, nil
}

func (m model) View() string {
	if m.done {
		return ""
	}
	if m.popup != "" {
		return popupStyle.Render(m.popup)
	}
	if len(m.problems) == 0 {
		return "no problems found — press q to quit\n"
	}
	var b []byte
	for i, p := range m.problems {
		line := fmt.Sprintf("[%s] %s: %s", p.Severity, p.CrateName, p.Message)
		if i == m.cursor {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b = append(b, line...)
		b = append(b, '\n')
	}
	return string(b)
}
