// Package tui is a terminal stand-in for the switcher overlay. It turns key
// presses into session events and draws whatever the controller renders.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/catswitch/internal/index"
	"github.com/jask/catswitch/internal/selection"
	"github.com/jask/catswitch/internal/service"
	"github.com/jask/catswitch/internal/session"
)

// Catalog is the index provider the preview refreshes.
type Catalog interface {
	session.IndexSource
	Refresh(ctx context.Context) (*index.Index, error)
}

// Preview is the bubbletea model. It is also the Overlay and Renderer of
// the controller it drives, so all session work happens inside Update.
type Preview struct {
	ctx       context.Context
	catalog   Catalog
	ctl       *session.Controller
	keys      KeyMap
	width     int
	termWidth int

	visible bool
	idx     *index.Index
	pos     selection.Position
	ok      bool
	status  string
}

type refreshedMsg struct {
	idx *index.Index
	err error
}

// New builds the preview. width is the overlay box width in columns.
func New(ctx context.Context, catalog Catalog, activator session.Activator, width int, opts ...Option) *Preview {
	if width <= 0 {
		width = 48
	}
	p := &Preview{ctx: ctx, catalog: catalog, keys: DefaultKeyMap(), width: width, idx: catalog.Current()}
	for _, o := range opts {
		o(p)
	}
	if p.ctl == nil {
		p.ctl = session.NewController(catalog, p, p, activator, nil)
	}
	return p
}

// Option customises a Preview.
type Option func(*Preview)

// WithController lets the caller build the controller, e.g. to attach a
// logger. The controller must use the preview as its Overlay and Renderer.
func WithController(build func(overlay session.Overlay, renderer session.Renderer) *session.Controller) Option {
	return func(p *Preview) { p.ctl = build(p, p) }
}

// WithKeys replaces the default key bindings.
func WithKeys(k KeyMap) Option {
	return func(p *Preview) { p.keys = k }
}

func (p *Preview) ShowOverlay() { p.visible = true }
func (p *Preview) HideOverlay() { p.visible = false }

func (p *Preview) RenderState(idx *index.Index, pos selection.Position, ok bool) {
	p.idx, p.pos, p.ok = idx, pos, ok
}

// Visible reports whether the overlay is shown.
func (p *Preview) Visible() bool { return p.visible }

// Selected returns the highlighted application.
func (p *Preview) Selected() (index.Record, bool) {
	if !p.ok || p.idx == nil {
		return index.Record{}, false
	}
	return p.idx.At(p.pos)
}

// Status is the last status line.
func (p *Preview) Status() string { return p.status }

func (p *Preview) Init() tea.Cmd {
	return p.refreshCmd()
}

func (p *Preview) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		idx, err := p.catalog.Refresh(p.ctx)
		return refreshedMsg{idx: idx, err: err}
	}
}

func (p *Preview) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		p.termWidth = m.Width
		if m.Width > 0 && m.Width-2 < p.width {
			p.width = max(20, m.Width-2)
		}
	case refreshedMsg:
		switch {
		case errors.Is(m.err, service.ErrStale):
		case m.err != nil:
			p.status = "refresh failed: " + m.err.Error()
		default:
			if !p.visible {
				p.idx = m.idx
			}
			p.handle(session.IndexChanged)
			if p.status == "" {
				p.status = fmt.Sprintf("%d apps in %d categories", m.idx.Len(), len(m.idx.Categories()))
			}
		}
	case tea.KeyMsg:
		return p.handleKey(m)
	}
	return p, nil
}

func (p *Preview) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, p.keys.Quit):
		return p, tea.Quit
	case key.Matches(m, p.keys.Refresh):
		p.status = "refreshing..."
		return p, p.refreshCmd()
	case key.Matches(m, p.keys.Release):
		s := p.ctl.Active()
		switched := s != nil && s.Dirty()
		p.handle(session.RequestHide)
		if rec, ok := p.Selected(); ok && switched && p.status == "" {
			p.status = "switched to " + rec.Name
		}
	case key.Matches(m, p.keys.NextApp):
		p.navigate(session.NextApp)
	case key.Matches(m, p.keys.PreviousApp):
		p.navigate(session.PreviousApp)
	case key.Matches(m, p.keys.NextCategory):
		p.navigate(session.NextCategory)
	}
	return p, nil
}

// navigate opens the overlay first when hidden; a terminal cannot see a
// held modifier, so the first navigation key stands in for pressing it.
func (p *Preview) navigate(ev session.Event) {
	if !p.visible {
		p.handle(session.RequestShow)
	}
	p.handle(ev)
}

func (p *Preview) handle(ev session.Event) {
	p.status = ""
	if err := p.ctl.Handle(p.ctx, ev); err != nil {
		p.status = err.Error()
	}
}

// View draws the index listing and, while the overlay is shown, floats the
// switcher box over its top centre.
func (p *Preview) View() string {
	body := RenderIndex(p.idx)
	if p.visible {
		box := boxStyle.Width(p.width).Render(p.renderOverlay())
		lines := splitLines(body)
		width := max(p.termWidth, maxLineWidth(lines), lipgloss.Width(box))
		height := max(len(lines), lipgloss.Height(box))
		x := max(0, (width-lipgloss.Width(box))/2)
		body = overlayAt(body, box, x, 0, width, height) + "\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("catswitch"))
	b.WriteString("\n\n")
	b.WriteString(body)
	b.WriteString("\n")
	if p.status != "" {
		b.WriteString(statusStyle.Render(p.status))
		b.WriteString("\n")
	}
	b.WriteString(p.renderHelp())
	return b.String()
}

func (p *Preview) renderOverlay() string {
	if p.idx == nil || !p.ok {
		return "No running applications"
	}
	var cats []string
	for _, c := range p.idx.Categories() {
		label := fmt.Sprintf("%s (%d)", c.DisplayName(), p.idx.Count(c))
		cats = append(cats, categoryStyle(c, c == p.pos.Category).Render(label))
	}
	inner := p.width - 2
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Width(inner).Render(strings.Join(cats, "  ")))
	b.WriteString("\n\n")
	for i, r := range p.idx.Apps(p.pos.Category) {
		name := truncate(r.Name, inner/2)
		id := truncate(r.ID, inner-lipgloss.Width(name)-4)
		if i == p.pos.Index {
			b.WriteString(selectedStyle.Render(" " + name + "  " + id + " "))
		} else {
			b.WriteString(" " + name + "  " + mutedStyle.Render(id))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (p *Preview) renderHelp() string {
	var parts []string
	for _, k := range p.keys.help() {
		h := k.Help()
		parts = append(parts, helpKeyStyle.Render("["+h.Key+"]")+" "+mutedStyle.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}

// RenderIndex lists every category with its applications.
func RenderIndex(idx *index.Index) string {
	if idx == nil || idx.Len() == 0 {
		return "No running applications\n"
	}
	var b strings.Builder
	for _, c := range idx.Categories() {
		b.WriteString(categoryStyle(c, true).Render(c.DisplayName()))
		b.WriteString("\n")
		for _, r := range idx.Apps(c) {
			fmt.Fprintf(&b, "  %s %s\n", padRight(truncate(r.Name, 28), 28), mutedStyle.Render(r.ID))
		}
	}
	return b.String()
}
