package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"scaleloop/audio"
	"scaleloop/catalog"
	"scaleloop/config"
	"scaleloop/debug"
	"scaleloop/engine"
	"scaleloop/pattern"
	"scaleloop/synth"
	"scaleloop/theme"
	"scaleloop/tui"
)

func main() {
	if os.Getenv("SCALELOOP_DEBUG") != "" {
		if err := debug.Enable(); err != nil {
			fmt.Fprintf(os.Stderr, "debug log: %v\n", err)
		}
		defer debug.Disable()
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// Load theme
	palette := theme.DefaultPalette()
	if p, err := theme.LoadGPL("palettes/plasma.gpl"); err == nil {
		palette = p
	}
	th := theme.New(palette)

	store := pattern.NewStore()
	store.SetTempo(cfg.UI.LastTempo)

	graph := synth.NewGraph(cfg.Audio.SampleRate)
	graph.ApplyPreset(cfg.UI.LastVoice)

	out := audio.NewRealtime(graph, cfg.Audio.SampleRate)
	eng := engine.New(store, graph, out)
	eng.SetMetronome(cfg.UI.Metronome)

	var client *catalog.Client
	if cfg.Catalog.URL != "" {
		client = catalog.NewClient(cfg.Catalog.URL)
	}

	m := tui.NewModel(store, eng, client, th)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	eng.Stop()
	out.Stop()

	cfg.UI.LastTempo = store.Tempo()
	cfg.UI.LastVoice = graph.VoiceType()
	cfg.UI.Metronome = eng.Metronome()
	if err := cfg.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "config save: %v\n", err)
	}
}
