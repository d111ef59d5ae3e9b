package config

import "time"

// Composition Constants
const (
	// FrameWidth is the output frame width (9:16 aspect ratio)
	FrameWidth = 1080

	// FrameHeight is the output frame height (9:16 aspect ratio)
	FrameHeight = 1920

	// DefaultFPS is the composition frame rate when a request omits it
	DefaultFPS = 30.0

	// MaxCompositionDuration is the longest composition accepted, in seconds (3 minutes)
	MaxCompositionDuration = 180.0

	// MaxFPS is the highest composition frame rate accepted
	MaxFPS = 240.0

	// MaxFrames bounds DurationInFrames (MaxCompositionDuration at MaxFPS)
	MaxFrames = 43200
)

// Compositing Constants
const (
	// VideoCodec is the codec used when ffmpeg writes the background track
	VideoCodec = "libx264"

	// VideoPreset is the ffmpeg encoding speed preset
	VideoPreset = "fast"

	// PixelFormat keeps the track playable everywhere
	PixelFormat = "yuv420p"
)

// Asset Constants
const (
	// DefaultAsset is the background clip used when a request names none
	DefaultAsset = "subway_surfers.mp4"

	// RandomAsset asks for a clip picked at random from the resolver's listing
	RandomAsset = "random"

	// StaticDir is the directory holding bundled background clips
	StaticDir = "public"

	// AssetExtension filters background clips when listing
	AssetExtension = ".mp4"

	// PresignTTL is how long a presigned S3 asset URL stays valid
	PresignTTL = 1 * time.Hour
)

// Planning Constants
const (
	// PlanWorkers bounds the goroutines evaluating frames of one plan
	PlanWorkers = 8

	// PlanTTL is how long a finished plan is kept in Redis
	PlanTTL = 24 * time.Hour

	// DurationCacheTTL is how long a probed source duration is cached
	DurationCacheTTL = 7 * 24 * time.Hour

	// ProbeTimeout bounds a single ffprobe call
	ProbeTimeout = 30 * time.Second
)
