// Package probe reads source clip metadata with ffprobe and caches the
// decoded durations the loop wrap depends on.
package probe

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"bgloop/background"
	"bgloop/config"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Info is the subset of ffprobe output the background layer cares about
type Info struct {
	Duration  time.Duration `json:"duration"`
	Width     int           `json:"width"`
	Height    int           `json:"height"`
	FrameRate float64       `json:"frame_rate"`
	HasAudio  bool          `json:"has_audio"`
}

// Prober resolves the decoded duration of a source asset
type Prober interface {
	Probe(asset background.SourceAsset) (*Info, error)
}

// FFProbe shells out to ffprobe through ffmpeg-go
type FFProbe struct {
	Timeout time.Duration
}

// NewFFProbe creates a prober with the default timeout
func NewFFProbe() *FFProbe {
	return &FFProbe{Timeout: config.ProbeTimeout}
}

// Probe runs ffprobe against the asset and parses its JSON report.
func (p *FFProbe) Probe(asset background.SourceAsset) (*Info, error) {
	out, err := ffmpeg.ProbeWithTimeout(string(asset), p.Timeout, ffmpeg.KwArgs{})
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed for %s: %w", asset, err)
	}
	return ParseProbe(out)
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType    string `json:"codec_type"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		RFrameRate   string `json:"r_frame_rate"`
		AvgFrameRate string `json:"avg_frame_rate"`
		Duration     string `json:"duration"`
	} `json:"streams"`
}

// ParseProbe decodes the ffprobe -show_format -show_streams JSON report.
// The container duration wins; the video stream duration is the fallback.
func ParseProbe(raw string) (*Info, error) {
	var out probeOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &Info{}
	var streamDuration string
	foundVideo := false

	for _, s := range out.Streams {
		switch s.CodecType {
		case "video":
			if foundVideo {
				continue
			}
			foundVideo = true
			info.Width = s.Width
			info.Height = s.Height
			streamDuration = s.Duration
			rate, err := ParseFrameRate(s.RFrameRate)
			if err != nil || rate == 0 {
				rate, _ = ParseFrameRate(s.AvgFrameRate)
			}
			info.FrameRate = rate
		case "audio":
			info.HasAudio = true
		}
	}

	if !foundVideo {
		return nil, fmt.Errorf("no video stream found")
	}

	d, err := parseSeconds(out.Format.Duration)
	if err != nil || d <= 0 {
		d, err = parseSeconds(streamDuration)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read duration: %w", err)
	}
	if d <= 0 {
		return nil, fmt.Errorf("source has no positive duration")
	}
	info.Duration = d

	return info, nil
}

// ParseFrameRate parses ffprobe rates such as "30/1", "30000/1001" or "25".
func ParseFrameRate(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("empty frame rate")
	}

	num, den, found := strings.Cut(raw, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid frame rate %q: %w", raw, err)
	}
	if !found {
		return n, nil
	}

	d, err := strconv.ParseFloat(den, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid frame rate %q: %w", raw, err)
	}
	if d == 0 {
		return 0, nil
	}
	return n / d, nil
}

func parseSeconds(raw string) (time.Duration, error) {
	if raw == "" || raw == "N/A" {
		return 0, fmt.Errorf("duration not available")
	}
	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	return time.Duration(secs * float64(time.Second)), nil
}
