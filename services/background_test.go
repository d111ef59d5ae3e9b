package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"bgloop/assets"
	"bgloop/background"
	"bgloop/composite"
	"bgloop/planner"
)

type fakeDurations struct {
	durations map[background.SourceAsset]time.Duration
	calls     int
}

func (f *fakeDurations) Duration(ctx context.Context, asset background.SourceAsset) (time.Duration, error) {
	f.calls++
	d, ok := f.durations[asset]
	if !ok {
		return 0, errors.New("moov atom not found")
	}
	return d, nil
}

type fakeFrames struct {
	directive background.PlaybackDirective
	source    time.Duration
	fail      bool
}

func (f *fakeFrames) ExtractFrame(d background.PlaybackDirective, sourceDuration time.Duration, output string) error {
	f.directive = d
	f.source = sourceDuration
	if f.fail {
		return errors.New("ffmpeg failed: exit status 1")
	}
	return os.WriteFile(output, []byte("png"), 0644)
}

func newTestService() (*BackgroundService, *fakeDurations, *fakeFrames) {
	durations := &fakeDurations{durations: map[background.SourceAsset]time.Duration{
		background.SourceAsset(filepath.Join("public", "subway_surfers.mp4")): 10 * time.Second,
	}}
	frames := &fakeFrames{}
	svc := NewBackgroundService(Options{
		Resolver:     assets.NewDirResolver("public"),
		Durations:    durations,
		Store:        planner.NewMemoryStore(),
		Frames:       frames,
		DefaultAsset: "subway_surfers.mp4",
		Workers:      4,
	})
	return svc, durations, frames
}

func TestDirectiveUsesDefaultAssetAndProbedDuration(t *testing.T) {
	svc, durations, _ := newTestService()

	resp, err := svc.Directive(context.Background(), DirectiveRequest{
		Frame:  449,
		Timing: background.TimingConfig{DurationInFrames: 450, FPS: 30},
	})
	if err != nil {
		t.Fatalf("Directive error: %v", err)
	}
	if resp.Directive.Asset != background.SourceAsset(filepath.Join("public", "subway_surfers.mp4")) {
		t.Fatalf("asset = %q", resp.Directive.Asset)
	}
	if !resp.Directive.Loop || !resp.Directive.Muted || resp.Directive.Volume != 0 {
		t.Fatalf("directive = %+v", resp.Directive)
	}
	if resp.SourceDuration != 10 || resp.LoopIndex != 1 || resp.LoopPoint {
		t.Fatalf("response = %+v", resp)
	}
	if resp.SourceTime < 4.966 || resp.SourceTime > 4.967 {
		t.Fatalf("SourceTime = %v; want about 4.967", resp.SourceTime)
	}
	if durations.calls != 1 {
		t.Fatalf("duration probed %d times", durations.calls)
	}
}

func TestDirectiveExplicitDurationSkipsProbe(t *testing.T) {
	svc, durations, _ := newTestService()

	resp, err := svc.Directive(context.Background(), DirectiveRequest{
		Frame:          300,
		Timing:         background.TimingConfig{DurationInFrames: 450, FPS: 30},
		Asset:          "https://cdn.example.com/loop.mp4",
		SourceDuration: 10,
	})
	if err != nil {
		t.Fatalf("Directive error: %v", err)
	}
	if durations.calls != 0 {
		t.Fatalf("probe should be skipped when the duration is given")
	}
	if resp.Directive.Asset != "https://cdn.example.com/loop.mp4" {
		t.Fatalf("URL assets should pass through, got %q", resp.Directive.Asset)
	}
	if !resp.LoopPoint || resp.SourceTime != 0 {
		t.Fatalf("frame 300 should be the loop point at 0s: %+v", resp)
	}
}

func TestDirectiveErrors(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Directive(ctx, DirectiveRequest{Timing: background.TimingConfig{DurationInFrames: 0, FPS: 30}})
	if !errors.Is(err, composite.ErrInvalidTiming) {
		t.Fatalf("expected ErrInvalidTiming, got %v", err)
	}

	_, err = svc.Directive(ctx, DirectiveRequest{
		Timing: background.TimingConfig{DurationInFrames: 10, FPS: 30},
		Asset:  "undecodable.mp4",
	})
	if err == nil {
		t.Fatalf("expected the probe failure to surface")
	}
}

func TestCreatePlanStoresAndPreviews(t *testing.T) {
	svc, _, frames := newTestService()
	ctx := context.Background()

	plan, err := svc.CreatePlan(ctx, planner.Request{
		UUID:   "video-42",
		Timing: background.TimingConfig{DurationInFrames: 450, FPS: 30},
	})
	if err != nil {
		t.Fatalf("CreatePlan error: %v", err)
	}
	if plan.Loops != 1 || len(plan.LoopPoints) != 1 {
		t.Fatalf("plan = %+v", plan.Summary())
	}

	stored, err := svc.GetPlan(ctx, "video-42")
	if err != nil || stored.UUID != "video-42" {
		t.Fatalf("GetPlan = %v, %v", stored, err)
	}

	dir := t.TempDir()
	path, err := svc.PreviewFrame(ctx, "video-42", 449, dir)
	if err != nil {
		t.Fatalf("PreviewFrame error: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("preview written to %q", path)
	}
	if frames.directive.Frame != 449 || frames.source != 10*time.Second {
		t.Fatalf("extractor got frame %d source %v", frames.directive.Frame, frames.source)
	}

	if _, err := svc.PreviewFrame(ctx, "video-42", 450, dir); !errors.Is(err, planner.ErrInvalidRequest) {
		t.Fatalf("expected an error for a frame past the end")
	}
	if _, err := svc.PreviewFrame(ctx, "missing", 0, dir); !errors.Is(err, planner.ErrPlanNotFound) {
		t.Fatalf("expected ErrPlanNotFound, got %v", err)
	}
}

func TestCreatePlanRejectsInvalidRequest(t *testing.T) {
	svc, durations, _ := newTestService()
	_, err := svc.CreatePlan(context.Background(), planner.Request{Timing: background.TimingConfig{FPS: 30}})
	if !errors.Is(err, planner.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if durations.calls != 0 {
		t.Fatalf("invalid requests must not reach the prober")
	}
}

func TestDirectiveRandomAssetPicksFromListing(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"minecraft.mp4", "subway_surfers.mp4"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	svc := NewBackgroundService(Options{
		Resolver:     assets.NewDirResolver(dir),
		Durations:    &fakeDurations{},
		Store:        planner.NewMemoryStore(),
		Frames:       &fakeFrames{},
		DefaultAsset: "random",
		Workers:      2,
	})

	resp, err := svc.Directive(context.Background(), DirectiveRequest{
		Frame:          10,
		Timing:         background.TimingConfig{DurationInFrames: 450, FPS: 30},
		SourceDuration: 10,
	})
	if err != nil {
		t.Fatalf("Directive error: %v", err)
	}
	got := string(resp.Directive.Asset)
	if got != filepath.Join(dir, "minecraft.mp4") && got != filepath.Join(dir, "subway_surfers.mp4") {
		t.Fatalf("asset = %q; want one of the listed clips", got)
	}

	empty := NewBackgroundService(Options{Resolver: assets.NewDirResolver(t.TempDir()), Durations: &fakeDurations{}})
	_, err = empty.Directive(context.Background(), DirectiveRequest{
		Timing:         background.TimingConfig{DurationInFrames: 10, FPS: 30},
		Asset:          "random",
		SourceDuration: 10,
	})
	if err == nil {
		t.Fatalf("expected an error when no clip can be picked")
	}
}

func TestPreviewFrameUsesDistinctFiles(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.CreatePlan(ctx, planner.Request{
		UUID:   "video-7",
		Timing: background.TimingConfig{DurationInFrames: 30, FPS: 30},
	}); err != nil {
		t.Fatalf("CreatePlan error: %v", err)
	}

	dir := t.TempDir()
	first, err := svc.PreviewFrame(ctx, "video-7", 12, dir)
	if err != nil {
		t.Fatalf("PreviewFrame error: %v", err)
	}
	second, err := svc.PreviewFrame(ctx, "video-7", 12, dir)
	if err != nil {
		t.Fatalf("PreviewFrame error: %v", err)
	}
	if first == second {
		t.Fatalf("previews of the same frame share %q", first)
	}

	if err := os.Remove(first); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(second); err != nil {
		t.Fatalf("removing one preview affected the other: %v", err)
	}
}

func TestPreviewFrameRemovesFileOnFailure(t *testing.T) {
	svc, _, frames := newTestService()
	ctx := context.Background()

	if _, err := svc.CreatePlan(ctx, planner.Request{
		UUID:   "video-8",
		Timing: background.TimingConfig{DurationInFrames: 30, FPS: 30},
	}); err != nil {
		t.Fatalf("CreatePlan error: %v", err)
	}

	frames.fail = true
	dir := t.TempDir()
	if _, err := svc.PreviewFrame(ctx, "video-8", 0, dir); err == nil {
		t.Fatalf("expected the extractor failure to surface")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("failed preview left %d files behind", len(entries))
	}
}

func TestDirectiveRejectsOverflowingSourceDuration(t *testing.T) {
	svc, durations, _ := newTestService()

	_, err := svc.Directive(context.Background(), DirectiveRequest{
		Timing:         background.TimingConfig{DurationInFrames: 450, FPS: 30},
		SourceDuration: 1e10,
	})
	if !errors.Is(err, planner.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if durations.calls != 0 {
		t.Fatalf("an out-of-range duration must not fall back to probing")
	}
}
