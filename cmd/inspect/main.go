package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bgloop/assets"
	"bgloop/background"
	"bgloop/config"
	"bgloop/inspect"
	"bgloop/planner"
	"bgloop/probe"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	settings := config.Load()

	asset := flag.String("asset", settings.DefaultAsset, "Background clip to inspect")
	frames := flag.Int("frames", 450, "Composition length in frames")
	fps := flag.Float64("fps", config.DefaultFPS, "Composition frame rate")
	sourceSecs := flag.Float64("source", 0, "Source clip length in seconds (0 probes the clip)")
	flag.Parse()

	src, err := assets.NewDirResolver(settings.StaticDir).Resolve(context.Background(), *asset)
	if err != nil {
		fmt.Printf("Error resolving asset: %v\n", err)
		os.Exit(1)
	}

	if err := planner.ValidateSourceSeconds(*sourceSecs); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	sourceDuration := time.Duration(*sourceSecs * float64(time.Second))
	if sourceDuration <= 0 {
		info, err := probe.NewFFProbe().Probe(src)
		if err != nil {
			fmt.Printf("Could not probe %s (%v); showing unwrapped time\n", src, err)
		} else {
			sourceDuration = info.Duration
		}
	}

	timing := background.TimingConfig{DurationInFrames: *frames, FPS: *fps}
	model, err := inspect.NewModel(timing, src, sourceDuration)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	program := tea.NewProgram(model)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		program.Quit()
	}()

	if _, err := program.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}
