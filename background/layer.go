// Package background renders the full-bleed looping background video layer
// of a shorts composition.
//
// The layer is a pure mapping from (frame, timing, asset) to a
// PlaybackDirective. It sets the preconditions for a seamless loop (loop
// enabled, muted, one consistent fps basis) but it does not decode, seek or
// wrap anything itself: the compositing primitive performs the wrap
// (frame / fps) mod sourceDuration when loop is enabled. SourceTime computes
// the same mapping so hosts can verify or drive a primitive that needs an
// explicit seek offset.
//
// Nothing here validates its inputs. A frame outside [0, DurationInFrames)
// or a non-positive fps is a host programming error; missing or undecodable
// assets surface from the primitive.
package background

import (
	"math/big"
	"time"
)

// Render returns the playback directive for frameIndex.
// The directive always loops, is always silent and always covers the frame.
func Render(frameIndex int, timing TimingConfig, asset SourceAsset) PlaybackDirective {
	return PlaybackDirective{
		Asset:  asset,
		Loop:   true,
		Muted:  true,
		Volume: 0,
		Layout: FullBleed(),
		Frame:  frameIndex,
		FPS:    timing.FPS,
	}
}

// SourceTime returns the instant of the source shown for this directive.
// When Loop is false the unwrapped output time is returned and the primitive
// decides what to show past the end of the clip.
func (d PlaybackDirective) SourceTime(sourceDuration time.Duration) time.Duration {
	if !d.Loop {
		return SourceTime(d.Frame, d.FPS, 0)
	}
	return SourceTime(d.Frame, d.FPS, sourceDuration)
}

// SourceTime maps an output frame to (frameIndex / fps) mod sourceDuration.
//
// The arithmetic is exact, so frames that are a whole number of loops apart
// map to the same instant and the interval is half-open: with fps 30 and a
// 10s source, frame 299 maps to 9.9666s and frame 300 maps to 0.
// A sourceDuration <= 0 means the length is not known yet; the unwrapped
// output time is returned. fps must be positive and finite.
func SourceTime(frameIndex int, fps float64, sourceDuration time.Duration) time.Duration {
	t := frameTime(frameIndex, fps)
	if sourceDuration <= 0 {
		return ratToDuration(t)
	}

	d := durationToRat(sourceDuration)
	loops := floorDiv(t, d)
	wrapped := new(big.Rat).Mul(new(big.Rat).SetInt(loops), d)
	return ratToDuration(new(big.Rat).Sub(t, wrapped))
}

// LoopIndex returns how many times the source has wrapped by frameIndex.
func LoopIndex(frameIndex int, fps float64, sourceDuration time.Duration) int {
	if sourceDuration <= 0 {
		return 0
	}
	return int(floorDiv(frameTime(frameIndex, fps), durationToRat(sourceDuration)).Int64())
}

// IsLoopPoint reports whether frameIndex is the first frame of a new pass
// through the source (frame 0 excluded).
func IsLoopPoint(frameIndex int, fps float64, sourceDuration time.Duration) bool {
	if frameIndex <= 0 {
		return false
	}
	return LoopIndex(frameIndex, fps, sourceDuration) != LoopIndex(frameIndex-1, fps, sourceDuration)
}

// OutputDuration is DurationInFrames / FPS.
func OutputDuration(timing TimingConfig) time.Duration {
	return ratToDuration(frameTime(timing.DurationInFrames, timing.FPS))
}

// NeedsLoop reports whether the composition outlasts the source clip.
func NeedsLoop(timing TimingConfig, sourceDuration time.Duration) bool {
	if sourceDuration <= 0 {
		return false
	}
	t := frameTime(timing.DurationInFrames, timing.FPS)
	return t.Cmp(durationToRat(sourceDuration)) > 0
}

// frameTime is frameIndex / fps in seconds.
func frameTime(frameIndex int, fps float64) *big.Rat {
	rate := new(big.Rat).SetFloat64(fps)
	return new(big.Rat).Quo(new(big.Rat).SetInt64(int64(frameIndex)), rate)
}

func durationToRat(d time.Duration) *big.Rat {
	return new(big.Rat).SetFrac64(int64(d), int64(time.Second))
}

// ratToDuration truncates toward negative infinity at nanosecond resolution.
func ratToDuration(seconds *big.Rat) time.Duration {
	ns := new(big.Int).Mul(seconds.Num(), big.NewInt(int64(time.Second)))
	ns.Div(ns, seconds.Denom())
	return time.Duration(ns.Int64())
}

func floorDiv(a, b *big.Rat) *big.Int {
	q := new(big.Rat).Quo(a, b)
	return new(big.Int).Div(q.Num(), q.Denom())
}
