package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"bgloop/assets"
	"bgloop/background"
	"bgloop/composite"
	"bgloop/config"
	"bgloop/planner"
)

// DurationSource resolves the decoded length of a source asset
type DurationSource interface {
	Duration(ctx context.Context, asset background.SourceAsset) (time.Duration, error)
}

// FrameExtractor renders the still a directive selects
type FrameExtractor interface {
	ExtractFrame(d background.PlaybackDirective, sourceDuration time.Duration, output string) error
}

// DirectiveRequest asks for the layer output of a single frame
type DirectiveRequest struct {
	Frame  int                     `json:"frame"`
	Timing background.TimingConfig `json:"timing"`
	Asset  string                  `json:"asset,omitempty"`
	// SourceDuration in seconds; zero means probe the source
	SourceDuration float64 `json:"source_duration,omitempty"`
}

// DirectiveResponse is the directive plus the source instant it selects
type DirectiveResponse struct {
	Directive      background.PlaybackDirective `json:"directive"`
	SourceDuration float64                      `json:"source_duration"`
	SourceTime     float64                      `json:"source_time"`
	LoopIndex      int                          `json:"loop_index"`
	LoopPoint      bool                         `json:"loop_point"`
}

// BackgroundService wires the background layer to its collaborators
type BackgroundService struct {
	resolver     assets.Resolver
	durations    DurationSource
	store        planner.Store
	frames       FrameExtractor
	defaultAsset string
	workers      int
}

// Options configures a BackgroundService
type Options struct {
	Resolver     assets.Resolver
	Durations    DurationSource
	Store        planner.Store
	Frames       FrameExtractor
	DefaultAsset string
	Workers      int
}

// NewBackgroundService creates the service
func NewBackgroundService(opts Options) *BackgroundService {
	return &BackgroundService{
		resolver:     opts.Resolver,
		durations:    opts.Durations,
		store:        opts.Store,
		frames:       opts.Frames,
		defaultAsset: opts.DefaultAsset,
		workers:      opts.Workers,
	}
}

// Directive evaluates the layer for one frame. The frame index is not
// range checked; the layer leaves that to the host.
func (s *BackgroundService) Directive(ctx context.Context, req DirectiveRequest) (*DirectiveResponse, error) {
	if err := composite.ValidateTiming(req.Timing); err != nil {
		return nil, err
	}

	asset, err := s.resolveAsset(ctx, req.Asset)
	if err != nil {
		return nil, err
	}

	sourceDuration, err := s.sourceDuration(ctx, asset, req.SourceDuration)
	if err != nil {
		return nil, err
	}

	d := background.Render(req.Frame, req.Timing, asset)
	return &DirectiveResponse{
		Directive:      d,
		SourceDuration: sourceDuration.Seconds(),
		SourceTime:     d.SourceTime(sourceDuration).Seconds(),
		LoopIndex:      background.LoopIndex(req.Frame, d.FPS, sourceDuration),
		LoopPoint:      background.IsLoopPoint(req.Frame, d.FPS, sourceDuration),
	}, nil
}

// CreatePlan resolves, probes, plans and stores a composition
func (s *BackgroundService) CreatePlan(ctx context.Context, req planner.Request) (*planner.Plan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	asset, err := s.resolveAsset(ctx, string(req.Asset))
	if err != nil {
		return nil, err
	}
	req.Asset = asset

	sourceDuration, err := s.sourceDuration(ctx, asset, req.SourceDuration)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	plan, err := planner.Build(ctx, req, sourceDuration, s.workers)
	if err != nil {
		return nil, fmt.Errorf("planning failed: %w", err)
	}
	log.Printf("🧮 Planned %d frames for %s in %v (loops: %d)", len(plan.Samples), plan.UUID, time.Since(start), plan.Loops)

	if err := s.store.Save(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to store plan: %w", err)
	}
	return plan, nil
}

// GetPlan loads a stored plan
func (s *BackgroundService) GetPlan(ctx context.Context, id string) (*planner.Plan, error) {
	return s.store.Get(ctx, id)
}

// PreviewFrame extracts the still for one frame of a stored plan into a
// fresh file in dir and returns its path. The caller removes the file.
func (s *BackgroundService) PreviewFrame(ctx context.Context, id string, frame int, dir string) (string, error) {
	plan, err := s.store.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if frame < 0 || frame >= plan.Timing.DurationInFrames {
		return "", fmt.Errorf("%w: frame %d outside [0, %d)", planner.ErrInvalidRequest, frame, plan.Timing.DurationInFrames)
	}

	f, err := os.CreateTemp(dir, fmt.Sprintf("bgloop-%06d-*.png", frame))
	if err != nil {
		return "", fmt.Errorf("failed to create preview file: %w", err)
	}
	output := f.Name()
	f.Close()

	d := background.Render(frame, plan.Timing, plan.Asset)
	if err := s.frames.ExtractFrame(d, plan.SourceDuration, output); err != nil {
		os.Remove(output)
		return "", err
	}
	return output, nil
}

// Backgrounds lists the clips the resolver knows about
func (s *BackgroundService) Backgrounds(ctx context.Context) ([]string, error) {
	return s.resolver.List(ctx)
}

func (s *BackgroundService) resolveAsset(ctx context.Context, name string) (background.SourceAsset, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = s.defaultAsset
	}
	if strings.Contains(name, "://") {
		return background.SourceAsset(name), nil
	}
	if name == config.RandomAsset {
		asset, err := assets.Pick(ctx, s.resolver)
		if err != nil {
			return "", err
		}
		log.Printf("🎲 Picked background %s", asset)
		return asset, nil
	}

	asset, err := s.resolver.Resolve(ctx, name)
	if err != nil {
		return "", fmt.Errorf("failed to resolve asset %q: %w", name, err)
	}
	return asset, nil
}

func (s *BackgroundService) sourceDuration(ctx context.Context, asset background.SourceAsset, seconds float64) (time.Duration, error) {
	if err := planner.ValidateSourceSeconds(seconds); err != nil {
		return 0, err
	}
	if seconds > 0 {
		return time.Duration(seconds * float64(time.Second)), nil
	}

	d, err := s.durations.Duration(ctx, asset)
	if err != nil {
		return 0, fmt.Errorf("failed to probe %s: %w", asset, err)
	}
	return d, nil
}
