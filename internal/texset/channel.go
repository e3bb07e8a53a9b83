package texset

import "strings"

// Channel is a texture role in the material. The enumeration is fixed;
// per-channel data lives in arrays indexed by Channel so the compiler can
// catch a missing case instead of a mistyped map key.
type Channel int

const (
	BaseColor Channel = iota
	Roughness
	Normal
	Displacement
	Opacity
	Metalness

	// NumChannels sizes per-channel arrays.
	NumChannels int = iota
)

var channelNames = [NumChannels]string{
	BaseColor:    "BaseColor",
	Roughness:    "Roughness",
	Normal:       "Normal",
	Displacement: "Displacement",
	Opacity:      "Opacity",
	Metalness:    "Metalness",
}

// Channels returns all channels in canonical order. The order is load-bearing:
// grouping and assembly both iterate it so results are reproducible.
func Channels() []Channel {
	return []Channel{BaseColor, Roughness, Normal, Displacement, Opacity, Metalness}
}

func (c Channel) String() string {
	if c < 0 || int(c) >= NumChannels {
		return "Unknown"
	}
	return channelNames[c]
}

// RawColorspace reports whether textures for this channel must be sampled
// with a raw (non-color-managed) colorspace.
func (c Channel) RawColorspace() bool {
	return c == Normal || c == Displacement
}

// ParseChannel resolves a channel by name, case-insensitively.
func ParseChannel(name string) (Channel, bool) {
	for i, n := range channelNames {
		if strings.EqualFold(n, name) {
			return Channel(i), true
		}
	}
	return 0, false
}

// ChannelSpec configures matching for one channel.
type ChannelSpec struct {
	Channel  Channel
	Enabled  bool
	Keywords []string // tried in order; first match wins
}

// DefaultSpecs returns the built-in channel configuration: every channel
// enabled with the keyword lists observed in common texture naming schemes.
func DefaultSpecs() []ChannelSpec {
	return []ChannelSpec{
		{Channel: BaseColor, Enabled: true, Keywords: []string{"basecolor", "albedo", "diffuse"}},
		{Channel: Roughness, Enabled: true, Keywords: []string{"roughness", "rough"}},
		{Channel: Normal, Enabled: true, Keywords: []string{"normal", "nrm"}},
		{Channel: Displacement, Enabled: true, Keywords: []string{"displacement", "height", "disp"}},
		{Channel: Opacity, Enabled: true, Keywords: []string{"opacity", "alpha"}},
		{Channel: Metalness, Enabled: true, Keywords: []string{"metalness", "metallic"}},
	}
}

// SplitKeywords parses a comma-separated keyword list, trimming whitespace
// and dropping empty entries.
func SplitKeywords(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
