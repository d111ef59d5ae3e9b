// Package composite drives ffmpeg as the compositing primitive for
// background directives: decoding, seeking, loop wrap, cover fit and
// muting all happen inside ffmpeg.
package composite

import (
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"time"

	"bgloop/background"
	"bgloop/config"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// ErrInvalidTiming is returned when a composition cannot be expressed as a track
var ErrInvalidTiming = errors.New("invalid timing config")

// Frame is the target pixel size of the composition
type Frame struct {
	Width  int
	Height int
}

// DefaultFrame is the vertical shorts frame
func DefaultFrame() Frame {
	return Frame{Width: config.FrameWidth, Height: config.FrameHeight}
}

// Compositor runs ffmpeg for background directives
type Compositor struct {
	frame Frame
}

// NewCompositor creates a compositor for the given target frame
func NewCompositor(frame Frame) *Compositor {
	return &Compositor{frame: frame}
}

// CoverFit scales the stream so it covers the frame preserving aspect ratio,
// then crops the overflow around the centre.
func CoverFit(stream *ffmpeg.Stream, frame Frame) *ffmpeg.Stream {
	w, h := strconv.Itoa(frame.Width), strconv.Itoa(frame.Height)
	return stream.
		Filter("scale", ffmpeg.Args{w, h}, ffmpeg.KwArgs{"force_original_aspect_ratio": "increase"}).
		Filter("crop", ffmpeg.Args{w, h}).
		Filter("setsar", ffmpeg.Args{"1"})
}

// TrackStream builds the ffmpeg graph for the whole background track of a
// composition. The loop wrap is left to ffmpeg's -stream_loop.
func TrackStream(d background.PlaybackDirective, timing background.TimingConfig, frame Frame, output string) *ffmpeg.Stream {
	inputArgs := ffmpeg.KwArgs{}
	if d.Loop {
		inputArgs["stream_loop"] = "-1"
	}

	video := CoverFit(ffmpeg.Input(string(d.Asset), inputArgs), frame)

	outputArgs := ffmpeg.KwArgs{
		"r":        formatFPS(d.FPS),
		"frames:v": strconv.Itoa(timing.DurationInFrames),
		"t":        formatSeconds(background.OutputDuration(timing)),
		"c:v":      config.VideoCodec,
		"preset":   config.VideoPreset,
		"pix_fmt":  config.PixelFormat,
	}
	if d.Muted || d.Volume == 0 {
		outputArgs["an"] = ""
	}

	return video.Output(output, outputArgs).OverWriteOutput()
}

// FrameStream builds the ffmpeg graph extracting the single still that the
// directive selects. With an unknown source duration the seek is unwrapped
// and the input is looped so ffmpeg performs the wrap.
func FrameStream(d background.PlaybackDirective, sourceDuration time.Duration, frame Frame, output string) *ffmpeg.Stream {
	inputArgs := ffmpeg.KwArgs{
		"ss": formatSeconds(d.SourceTime(sourceDuration)),
	}
	if d.Loop && sourceDuration <= 0 {
		inputArgs["stream_loop"] = "-1"
	}

	video := CoverFit(ffmpeg.Input(string(d.Asset), inputArgs), frame)

	return video.Output(output, ffmpeg.KwArgs{
		"frames:v": "1",
		"an":       "",
	}).OverWriteOutput()
}

// RenderTrack writes the looping, muted, cover-fit background track.
func (c *Compositor) RenderTrack(d background.PlaybackDirective, timing background.TimingConfig, output string) error {
	if err := ValidateTiming(timing); err != nil {
		return err
	}

	log.Printf("🎞️  Rendering background track: %s (%d frames @ %s fps)", d.Asset, timing.DurationInFrames, formatFPS(d.FPS))
	if err := TrackStream(d, timing, c.frame, output).Run(); err != nil {
		return fmt.Errorf("ffmpeg failed: %w", err)
	}
	return nil
}

// ExtractFrame writes the still image the directive selects to output.
func (c *Compositor) ExtractFrame(d background.PlaybackDirective, sourceDuration time.Duration, output string) error {
	if err := FrameStream(d, sourceDuration, c.frame, output).Run(); err != nil {
		return fmt.Errorf("ffmpeg failed: %w", err)
	}
	return nil
}

// ValidateTiming rejects timing configs ffmpeg cannot express.
func ValidateTiming(timing background.TimingConfig) error {
	if timing.DurationInFrames <= 0 {
		return fmt.Errorf("%w: duration_in_frames must be positive, got %d", ErrInvalidTiming, timing.DurationInFrames)
	}
	if timing.DurationInFrames > config.MaxFrames {
		return fmt.Errorf("%w: duration_in_frames above %d, got %d", ErrInvalidTiming, config.MaxFrames, timing.DurationInFrames)
	}
	if timing.FPS <= 0 || math.IsNaN(timing.FPS) || math.IsInf(timing.FPS, 0) {
		return fmt.Errorf("%w: fps must be positive, got %v", ErrInvalidTiming, timing.FPS)
	}
	if timing.FPS > config.MaxFPS {
		return fmt.Errorf("%w: fps above %.0f, got %v", ErrInvalidTiming, config.MaxFPS, timing.FPS)
	}
	return nil
}

// formatSeconds truncates to microseconds so a seek never rounds up past the clip end
func formatSeconds(d time.Duration) string {
	us := d / time.Microsecond
	return fmt.Sprintf("%d.%06d", us/1000000, us%1000000)
}

func formatFPS(fps float64) string {
	return strconv.FormatFloat(fps, 'f', -1, 64)
}
