package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"scaleloop/catalog"
	"scaleloop/debug"
	"scaleloop/engine"
	"scaleloop/midifile"
	"scaleloop/pattern"
	"scaleloop/scale"
	"scaleloop/synth"
	"scaleloop/theme"
)

// uiPollInterval is the playhead/sweep refresh cadence. The audio-side
// ramp is authoritative; this only affects what the header displays.
const uiPollInterval = 80 * time.Millisecond

type Model struct {
	Store   *pattern.Store
	Engine  *engine.Engine
	Catalog *catalog.Client
	Theme   *theme.Theme

	cursorStep int
	cursorDeg  int
	bar        int
	voiceIdx   int
	status     string
	quitting   bool
}

type tickMsg time.Time

type catalogMsg struct {
	status string
	doc    *catalog.PatternDoc
}

func NewModel(store *pattern.Store, eng *engine.Engine, client *catalog.Client, th *theme.Theme) Model {
	return Model{
		Store:   store,
		Engine:  eng,
		Catalog: client,
		Theme:   th,
	}
}

func pollTick() tea.Cmd {
	return tea.Tick(uiPollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return pollTick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tickMsg:
		return m, pollTick()
	case catalogMsg:
		m.status = msg.status
		if msg.doc != nil {
			m.Store.Replace(msg.doc.ToPattern())
			m.syncLoopToSelection()
		}
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	pat := m.Store.Snapshot()
	maxDeg := scale.DegreeCount(pat.Scale)*pattern.PitchOctaves - 1

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.Engine.Stop()
		return m, tea.Quit

	case " ":
		m.Store.ToggleNote(m.cursorStep, m.cursorDeg)

	case "p":
		if m.Engine.Playing() {
			m.Engine.Stop()
		} else if err := m.Engine.Play(); err != nil {
			m.status = fmt.Sprintf("audio: %v", err)
		}

	case "left", "h":
		if m.cursorStep > 0 {
			m.cursorStep--
			m.bar = m.cursorStep / pattern.StepsPerBar
		}
	case "right", "l":
		if m.cursorStep < pattern.NumSteps-1 {
			m.cursorStep++
			m.bar = m.cursorStep / pattern.StepsPerBar
		}
	case "up", "k":
		if m.cursorDeg < maxDeg {
			m.cursorDeg++
		}
	case "down", "j":
		if m.cursorDeg > 0 {
			m.cursorDeg--
		}
	case "[":
		if m.bar > 0 {
			m.bar--
			m.cursorStep -= pattern.StepsPerBar
		}
	case "]":
		if m.bar < pattern.NumBars-1 {
			m.bar++
			m.cursorStep += pattern.StepsPerBar
		}

	case "+", "=":
		m.Engine.SetTempo(pat.Tempo + 5)
	case "-", "_":
		m.Engine.SetTempo(pat.Tempo - 5)

	case "s":
		m.Store.SetScale(nextScale(pat.Scale, 1))
	case "S":
		m.Store.SetScale(nextScale(pat.Scale, -1))
	case "r":
		m.Store.SetRoot(pat.Root + 1)
	case "R":
		m.Store.SetRoot(pat.Root - 1)

	case "v":
		m.voiceIdx = (m.voiceIdx + 1) % len(synth.VoiceTypes)
		m.Engine.ApplyPreset(synth.VoiceTypes[m.voiceIdx])
	case "1":
		m.toggleEffect(synth.EffectFilter)
	case "2":
		m.toggleEffect(synth.EffectReverb)
	case "3":
		m.toggleEffect(synth.EffectDelay)
	case "f":
		m.Engine.TriggerFilterSweep()
	case "M":
		m.Engine.SetMetronome(!m.Engine.Metronome())
	case "L":
		m.Engine.SetLooping(true)
	case "G":
		m.Engine.SetLooping(false)

	case "b":
		m.selectBars(m.bar, m.bar+1)
	case "B":
		m.selectBars(0, pattern.NumBars)

	case "u":
		m.Store.Undo()
	case "U":
		m.Store.Redo()
	case "y":
		m.Store.Copy()
		m.status = "copied selection"
	case "x":
		m.Store.Cut()
		m.status = "cut selection"
	case "P":
		m.Store.Paste()
	case "d":
		m.Store.Duplicate()
	case "F":
		m.Store.LoopFill()
	case "n":
		m.Store.Nudge(-1)
	case "N":
		m.Store.Nudge(1)
	case "t":
		m.Store.Transpose(1)
	case "T":
		m.Store.Transpose(-1)

	case "c":
		m.insertChordAtCursor(pat)

	case "e":
		m.status = m.exportMIDI(pat)

	case "w":
		return m, m.publish(pat)
	case "o":
		return m, m.loadNewest()
	}
	return m, nil
}

func (m Model) toggleEffect(fx synth.Effect) {
	m.Engine.SetEffectEnabled(fx, !m.Engine.EffectEnabled(fx))
}

func (m Model) selectBars(start, end int) {
	m.Store.SetSelection(start, end)
	m.syncLoopToSelection()
}

func (m Model) syncLoopToSelection() {
	sel := m.Store.Selection()
	m.Engine.SetLoopRange(sel.StartStep(), sel.EndStep())
}

func (m *Model) insertChordAtCursor(pat pattern.Pattern) {
	marker := pattern.ChordMarker{
		Step:     m.cursorStep,
		Root:     pat.Root % 12,
		Quality:  scale.ChordMinor,
		Duration: pattern.StepsPerBar,
	}
	if m.Store.InsertChord(marker) {
		m.status = "chord marker added"
	} else {
		m.status = "chord overlaps an existing marker"
	}
}

func (m Model) exportMIDI(pat pattern.Pattern) string {
	name := fmt.Sprintf("scaleloop-%s.mid", time.Now().Format("20060102-150405"))
	f, err := os.Create(name)
	if err != nil {
		return fmt.Sprintf("export: %v", err)
	}
	defer f.Close()
	opts := midifile.Options{Curve: midifile.CurveAsIs, Length: midifile.LengthAsProgrammed}
	if err := midifile.Write(f, pat, opts); err != nil {
		return fmt.Sprintf("export: %v", err)
	}
	return "exported " + name
}

// publish sends the pattern to the catalog in the background; failures
// surface as a status line and never touch playback.
func (m Model) publish(pat pattern.Pattern) tea.Cmd {
	client := m.Catalog
	return func() tea.Msg {
		if client == nil {
			return catalogMsg{status: "no catalog configured"}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		name := fmt.Sprintf("loop %s", time.Now().Format("Jan 2 15:04"))
		e, err := client.Create(ctx, name, nil, catalog.DocFromPattern(pat))
		if err != nil {
			debug.Log("catalog", "publish failed: %v", err)
			return catalogMsg{status: fmt.Sprintf("publish: %v", err)}
		}
		return catalogMsg{status: "published as " + e.ID}
	}
}

// loadNewest pulls the most recent catalog entry into the store.
func (m Model) loadNewest() tea.Cmd {
	client := m.Catalog
	return func() tea.Msg {
		if client == nil {
			return catalogMsg{status: "no catalog configured"}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		page, err := client.List(ctx, catalog.Query{Sort: catalog.SortNewest, Limit: 1})
		if err != nil {
			debug.Log("catalog", "list failed: %v", err)
			return catalogMsg{status: fmt.Sprintf("catalog: %v", err)}
		}
		if len(page) == 0 {
			return catalogMsg{status: "catalog is empty"}
		}
		if err := client.Load(ctx, page[0].ID); err != nil {
			debug.Log("catalog", "load count failed: %v", err)
		}
		doc := page[0].Pattern
		return catalogMsg{status: "loaded " + page[0].Name, doc: &doc}
	}
}

func nextScale(cur scale.Name, dir int) scale.Name {
	for i, n := range scale.Names {
		if n == cur {
			idx := (i + dir + len(scale.Names)) % len(scale.Names)
			return scale.Names[idx]
		}
	}
	return scale.Names[0]
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	pat := m.Store.Snapshot()
	sel := m.Store.Selection()
	playhead := m.Engine.CurrentStep()

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	statusStyle := lipgloss.NewStyle().Foreground(m.Theme.Success())

	playState := "STOP"
	if m.Engine.Playing() {
		playState = "PLAY"
	}
	sweep := ""
	if m.Engine.SweepActive() {
		sweep = fmt.Sprintf("  sweep %.0fHz", m.Engine.CutoffValue())
	}
	metro := ""
	if m.Engine.Metronome() {
		metro = "  click"
	}
	header := headerStyle.Render(fmt.Sprintf(
		"scaleloop  %s  %3dbpm  %s root:%d  voice:%s  bar:%02d%s%s",
		playState, pat.Tempo, pat.Scale, pat.Root,
		synth.VoiceTypes[m.voiceIdx], m.bar+1, sweep, metro,
	))

	grid := m.renderGrid(pat, sel, playhead)

	help := dimStyle.Render(strings.Join([]string{
		"hjkl:move  space:toggle  p:play  +/-:tempo  s/S:scale  r/R:root",
		"v:voice 1/2/3:fx f:sweep M:click  b/B:select  y/x/P:copy/cut/paste",
		"d:dup F:fill n/N:nudge t/T:transpose c:chord u/U:undo/redo",
		"e:export-midi w:publish o:load  [/]:bar  q:quit",
	}, "\n"))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(grid)
	out.WriteString("\n")
	out.WriteString(help)
	if m.status != "" {
		out.WriteString("\n")
		out.WriteString(statusStyle.Render(m.status))
	}
	return out.String()
}

// renderGrid draws the current bar: one row per degree, highest on
// top, sixteen step columns.
func (m Model) renderGrid(pat pattern.Pattern, sel pattern.Selection, playhead int) string {
	maxDeg := scale.DegreeCount(pat.Scale)*pattern.PitchOctaves - 1
	barStart := m.bar * pattern.StepsPerBar

	cursorStyle := lipgloss.NewStyle().Foreground(m.Theme.Cursor())
	activeStyle := lipgloss.NewStyle().Foreground(m.Theme.Active())
	playStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	emptyStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	selStyle := lipgloss.NewStyle().Foreground(m.Theme.FG())

	sym := m.Theme.Symbols
	var out strings.Builder
	for deg := maxDeg; deg >= 0; deg-- {
		fmt.Fprintf(&out, "%3d ", deg)
		for col := 0; col < pattern.StepsPerBar; col++ {
			step := barStart + col
			_, active := pat.Notes[pattern.Key{Step: step, Pitch: deg}]
			onCursor := step == m.cursorStep && deg == m.cursorDeg
			onPlayhead := step == playhead

			var r rune
			var style lipgloss.Style
			switch {
			case onCursor && active:
				r, style = sym.CursorActive, cursorStyle
			case onCursor:
				r, style = sym.CursorEmpty, cursorStyle
			case onPlayhead && active:
				r, style = sym.StepActive, playStyle
			case onPlayhead:
				r, style = sym.StepPlayhead, playStyle
			case active:
				r, style = sym.StepActive, activeStyle
			case sel.Contains(step):
				r, style = sym.StepEmpty, selStyle
			default:
				r, style = sym.StepEmpty, emptyStyle
			}
			out.WriteString(style.Render(string(r)))
			out.WriteString(" ")
		}
		out.WriteString("\n")
	}

	// Chord lane under the grid.
	out.WriteString("  ch")
	for col := 0; col < pattern.StepsPerBar; col++ {
		step := barStart + col
		if mkr, ok := pat.ChordAt(step); ok && mkr.Step == step {
			out.WriteString(" " + activeStyle.Render(string(sym.Solid)))
		} else {
			out.WriteString(" " + emptyStyle.Render(string(sym.StepEmpty)))
		}
	}
	out.WriteString("\n")
	return out.String()
}
