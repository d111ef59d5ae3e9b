package background

// TimingConfig is the composition-wide timing, fixed for a whole render pass.
type TimingConfig struct {
	DurationInFrames int     `json:"duration_in_frames"`
	FPS              float64 `json:"fps"`
}

// SourceAsset is an opaque path or URI of the background clip.
// Resolution and decoding belong to the compositing primitive.
type SourceAsset string

// Position mirrors the CSS positioning scheme of the layer
type Position string

const (
	PositionAbsolute Position = "absolute"
)

// FitMode controls how the source is scaled into the target frame
type FitMode string

const (
	// FitCover scales to fill the whole frame preserving aspect ratio,
	// cropping any overflow. It never stretches and never letterboxes.
	FitCover FitMode = "cover"
)

// Layout describes where the layer sits inside the target frame
type Layout struct {
	Position      Position `json:"position"`
	Top           int      `json:"top"`
	Left          int      `json:"left"`
	WidthPercent  float64  `json:"width_percent"`
	HeightPercent float64  `json:"height_percent"`
	Fit           FitMode  `json:"fit"`
}

// FullBleed returns the absolute, origin-anchored, 100% x 100% cover layout.
func FullBleed() Layout {
	return Layout{
		Position:      PositionAbsolute,
		Top:           0,
		Left:          0,
		WidthPercent:  100,
		HeightPercent: 100,
		Fit:           FitCover,
	}
}

// FillsFrame reports whether the layout spans the whole target frame
// without distorting the source aspect ratio.
func (l Layout) FillsFrame() bool {
	return l.Position == PositionAbsolute &&
		l.Top == 0 && l.Left == 0 &&
		l.WidthPercent == 100 && l.HeightPercent == 100 &&
		l.Fit == FitCover
}

// PlaybackDirective is what the layer hands to the compositing primitive
// for one output frame. It is built fresh per query and never shared.
type PlaybackDirective struct {
	Asset  SourceAsset `json:"asset"`
	Loop   bool        `json:"loop"`
	Muted  bool        `json:"muted"`
	Volume float64     `json:"volume"`
	Layout Layout      `json:"layout"`

	// Frame and FPS are the output frame and the fps basis the primitive
	// must use when it seeks into the source.
	Frame int     `json:"frame"`
	FPS   float64 `json:"fps"`
}
