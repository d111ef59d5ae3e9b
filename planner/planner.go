// Package planner evaluates the background layer for every frame of a
// composition, the way a frame-parallel render host would.
package planner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"bgloop/background"
	"bgloop/config"

	"github.com/google/uuid"
)

// ErrInvalidRequest is returned for requests no host could render
var ErrInvalidRequest = errors.New("invalid plan request")

// batchSize is the number of frames one goroutine evaluates
const batchSize = 256

// MaxSourceSeconds is the longest source duration a time.Duration can hold
const MaxSourceSeconds = math.MaxInt64 / float64(time.Second)

// Request asks for the frame plan of one composition
type Request struct {
	UUID   string                  `json:"uuid"`
	Asset  background.SourceAsset  `json:"asset"`
	Timing background.TimingConfig `json:"timing"`
	// SourceDuration in seconds; zero means the source must be probed
	SourceDuration float64 `json:"source_duration,omitempty"`
}

// Sample is the layer output for one frame
type Sample struct {
	Frame      int           `json:"frame"`
	SourceTime time.Duration `json:"source_time_ns"`
	Loop       int           `json:"loop"`
}

// Plan is the evaluated background layer of a whole composition
type Plan struct {
	UUID           string                       `json:"uuid"`
	Asset          background.SourceAsset       `json:"asset"`
	Timing         background.TimingConfig      `json:"timing"`
	SourceDuration time.Duration                `json:"source_duration_ns"`
	OutputDuration time.Duration                `json:"output_duration_ns"`
	Directive      background.PlaybackDirective `json:"directive"`
	NeedsLoop      bool                         `json:"needs_loop"`
	Loops          int                          `json:"loops"`
	LoopPoints     []int                        `json:"loop_points"`
	Samples        []Sample                     `json:"samples,omitempty"`
	CreatedAt      time.Time                    `json:"created_at"`
}

// Validate checks the parts of a request a render host relies on
func (r Request) Validate() error {
	if r.Timing.DurationInFrames <= 0 {
		return fmt.Errorf("%w: duration_in_frames must be positive", ErrInvalidRequest)
	}
	if r.Timing.DurationInFrames > config.MaxFrames {
		return fmt.Errorf("%w: duration_in_frames above %d", ErrInvalidRequest, config.MaxFrames)
	}
	if !(r.Timing.FPS > 0) || r.Timing.FPS > config.MaxFPS {
		return fmt.Errorf("%w: fps must be in (0, %.0f]", ErrInvalidRequest, config.MaxFPS)
	}
	if background.OutputDuration(r.Timing).Seconds() > config.MaxCompositionDuration {
		return fmt.Errorf("%w: composition longer than %.0fs", ErrInvalidRequest, config.MaxCompositionDuration)
	}
	return ValidateSourceSeconds(r.SourceDuration)
}

// ValidateSourceSeconds rejects source durations that are negative, NaN or
// too long to convert to a time.Duration.
func ValidateSourceSeconds(seconds float64) error {
	if seconds < 0 || math.IsNaN(seconds) {
		return fmt.Errorf("%w: source_duration must not be negative", ErrInvalidRequest)
	}
	if seconds >= MaxSourceSeconds {
		return fmt.Errorf("%w: source_duration above %.0fs", ErrInvalidRequest, MaxSourceSeconds)
	}
	return nil
}

// Build evaluates every frame of the request concurrently. The result does
// not depend on workers or on the order batches finish in.
func Build(ctx context.Context, req Request, sourceDuration time.Duration, workers int) (*Plan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = 1
	}

	id := req.UUID
	if id == "" {
		id = uuid.NewString()
	}

	timing := req.Timing
	samples := make([]Sample, timing.DurationInFrames)

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, workers)

	for start := 0; start < timing.DurationInFrames; start += batchSize {
		end := min(start+batchSize, timing.DurationInFrames)

		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, err
		}

		select {
		case <-ctx.Done():
			wg.Wait()
			return nil, ctx.Err()
		case semaphore <- struct{}{}:
		}

		wg.Add(1)
		go func(from, to int) {
			defer wg.Done()
			defer func() { <-semaphore }()

			for frame := from; frame < to; frame++ {
				d := background.Render(frame, timing, req.Asset)
				samples[frame] = Sample{
					Frame:      frame,
					SourceTime: d.SourceTime(sourceDuration),
					Loop:       background.LoopIndex(frame, d.FPS, sourceDuration),
				}
			}
		}(start, end)
	}

	wg.Wait()

	plan := &Plan{
		UUID:           id,
		Asset:          req.Asset,
		Timing:         timing,
		SourceDuration: sourceDuration,
		OutputDuration: background.OutputDuration(timing),
		Directive:      background.Render(0, timing, req.Asset),
		NeedsLoop:      background.NeedsLoop(timing, sourceDuration),
		LoopPoints:     []int{},
		Samples:        samples,
		CreatedAt:      time.Now().UTC(),
	}

	for i := 1; i < len(samples); i++ {
		if samples[i].Loop != samples[i-1].Loop {
			plan.LoopPoints = append(plan.LoopPoints, samples[i].Frame)
		}
	}
	plan.Loops = samples[len(samples)-1].Loop

	return plan, nil
}

// Summary returns a copy of the plan without per-frame samples
func (p *Plan) Summary() *Plan {
	s := *p
	s.Samples = nil
	return &s
}
