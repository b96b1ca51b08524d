package presets

import "strconv"

// Preset describes one conversion profile. Identity is the name; names are
// unique within a loaded catalog.
type Preset struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	VideoCodec  string `yaml:"video_codec" json:"videoCodec"`
	AudioCodec  string `yaml:"audio_codec" json:"audioCodec"`
	Bitrate     string `yaml:"bitrate,omitempty" json:"bitrate,omitempty"`
	CRF         *int   `yaml:"crf,omitempty" json:"crf,omitempty"`
	Scale       string `yaml:"scale,omitempty" json:"scale,omitempty"`
	FastStart   bool   `yaml:"faststart,omitempty" json:"fastStart,omitempty"`
}

// FFmpegArgs renders the encoder portion of the ffmpeg argument vector for
// this preset. Input/output arguments are the caller's concern.
func (p Preset) FFmpegArgs() []string {
	args := []string{"-c:v", p.VideoCodec, "-c:a", p.AudioCodec}
	if p.CRF != nil {
		args = append(args, "-crf", strconv.Itoa(*p.CRF))
	}
	if p.Bitrate != "" {
		args = append(args, "-b:v", p.Bitrate)
	}
	if p.Scale != "" {
		args = append(args, "-vf", "scale="+p.Scale)
	}
	if p.FastStart {
		args = append(args, "-movflags", "+faststart")
	}
	args = append(args, "-preset", "medium")
	return args
}

// Clone returns a deep copy, detaching the CRF pointer so snapshot copies
// cannot alias catalog state.
func (p Preset) Clone() Preset {
	out := p
	if p.CRF != nil {
		crf := *p.CRF
		out.CRF = &crf
	}
	return out
}

func crf(value int) *int {
	return &value
}

// Builtins returns the stock profiles in their canonical order.
func Builtins() []Preset {
	return []Preset{
		{
			Name:        "High",
			Description: "Best quality, larger file size. Ideal for archiving or further editing.",
			VideoCodec:  "libx264",
			AudioCodec:  "aac",
			CRF:         crf(18),
		},
		{
			Name:        "Balanced",
			Description: "Good balance between quality and file size. Perfect for most use cases.",
			VideoCodec:  "libx264",
			AudioCodec:  "aac",
			CRF:         crf(23),
		},
		{
			Name:        "Web",
			Description: "Optimized for web streaming. Fast start enabled, reasonable quality.",
			VideoCodec:  "libx264",
			AudioCodec:  "aac",
			Bitrate:     "2M",
			CRF:         crf(28),
			FastStart:   true,
		},
		{
			Name:        "Mobile",
			Description: "Smaller file size for mobile devices. Reduced resolution and bitrate.",
			VideoCodec:  "libx264",
			AudioCodec:  "aac",
			Bitrate:     "1M",
			CRF:         crf(30),
			Scale:       "720:-1",
		},
	}
}
