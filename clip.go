package montage

import (
	"encoding/json"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

type (
	// Clip maps the range [TimelineStart, TimelineEnd) of its track to the
	// range [SourceStart, SourceEnd) of its asset. The optional payloads
	// depend on the kind of the track the clip lives on.
	Clip struct {
		ID            string  `json:"id" yaml:"id"`
		AssetID       string  `json:"assetId" yaml:"assetId"`
		TrackID       string  `json:"trackId" yaml:"trackId"`
		TimelineStart float64 `json:"timelineStart" yaml:"timelineStart"`
		TimelineEnd   float64 `json:"timelineEnd" yaml:"timelineEnd"`
		SourceStart   float64 `json:"sourceStart" yaml:"sourceStart"`
		SourceEnd     float64 `json:"sourceEnd" yaml:"sourceEnd"`

		Text      *TextContent   `json:"text,omitempty" yaml:"text,omitempty"`
		Lyrics    *LyricsContent `json:"lyrics,omitempty" yaml:"lyrics,omitempty"`
		Transform *Transform     `json:"transform,omitempty" yaml:"transform,omitempty"`
		Audio     *ClipAudio     `json:"audio,omitempty" yaml:"audio,omitempty"`

		// Effect is encoded separately, see clipWire.
		Effect EffectConfig `json:"-" yaml:"-"`
	}

	TextContent struct {
		Content string    `json:"content" yaml:"content"`
		Style   TextStyle `json:"style" yaml:"style"`
	}

	TextStyle struct {
		FontFamily string  `json:"fontFamily" yaml:"fontFamily"`
		FontSize   float64 `json:"fontSize" yaml:"fontSize"`
		Color      string  `json:"color" yaml:"color"`
		Bold       bool    `json:"bold" yaml:"bold"`
		Align      string  `json:"align" yaml:"align"`
		X          float64 `json:"x" yaml:"x"`
		Y          float64 `json:"y" yaml:"y"`
	}

	// LyricsContent is the text of a song section with optional per word
	// timing, in seconds relative to the master audio.
	LyricsContent struct {
		Content string      `json:"content" yaml:"content"`
		Words   []LyricWord `json:"words" yaml:"words"`
		Style   LyricsStyle `json:"style" yaml:"style"`
	}

	LyricWord struct {
		Word  string  `json:"word" yaml:"word"`
		Start float64 `json:"start" yaml:"start"`
		End   float64 `json:"end" yaml:"end"`
	}

	LyricsStyle struct {
		FontFamily     string  `json:"fontFamily" yaml:"fontFamily"`
		FontSize       float64 `json:"fontSize" yaml:"fontSize"`
		Color          string  `json:"color" yaml:"color"`
		HighlightColor string  `json:"highlightColor" yaml:"highlightColor"`
		Position       string  `json:"position" yaml:"position"`
	}

	// Transform places a video clip on the canvas. Offsets are fractions of
	// the canvas size, rotation is in degrees.
	Transform struct {
		Scale    float64 `json:"scale" yaml:"scale"`
		OffsetX  float64 `json:"offsetX" yaml:"offsetX"`
		OffsetY  float64 `json:"offsetY" yaml:"offsetY"`
		Rotation float64 `json:"rotation" yaml:"rotation"`
		Opacity  float64 `json:"opacity" yaml:"opacity"`
	}

	// ClipAudio toggles the audio embedded in a video clip.
	ClipAudio struct {
		Muted  bool    `json:"muted" yaml:"muted"`
		Volume float64 `json:"volume" yaml:"volume"`
	}
)

func DefaultTransform() Transform {
	return Transform{Scale: 1, Opacity: 1}
}

func DefaultClipAudio() ClipAudio {
	return ClipAudio{Volume: 1}
}

func DefaultTextStyle() TextStyle {
	return TextStyle{FontFamily: "Inter", FontSize: 48, Color: "#ffffff", Align: "center", X: 0.5, Y: 0.5}
}

func DefaultLyricsStyle() LyricsStyle {
	return LyricsStyle{FontFamily: "Inter", FontSize: 40, Color: "#ffffff", HighlightColor: "#ffd400", Position: "bottom"}
}

// Length returns the timeline length of the clip.
func (c *Clip) Length() float64 {
	return c.TimelineEnd - c.TimelineStart
}

// Valid reports whether both ranges of the clip are non-empty.
func (c *Clip) Valid() bool {
	return c.TimelineEnd > c.TimelineStart && c.SourceEnd > c.SourceStart
}

// Contains reports whether t lies strictly inside the timeline range.
func (c *Clip) Contains(t float64) bool {
	return c.TimelineStart < t && t < c.TimelineEnd
}

// SourceTime maps a timeline position to a position in the clip's asset,
// assuming the clip plays at the speed implied by its two ranges.
func (c *Clip) SourceTime(t float64) float64 {
	ratio := (t - c.TimelineStart) / (c.TimelineEnd - c.TimelineStart)
	return c.SourceStart + ratio*(c.SourceEnd-c.SourceStart)
}

func (c *Clip) Copy() Clip {
	ret := *c
	if c.Text != nil {
		t := *c.Text
		ret.Text = &t
	}
	if c.Lyrics != nil {
		l := *c.Lyrics
		l.Words = slices.Clone(c.Lyrics.Words)
		ret.Lyrics = &l
	}
	if c.Transform != nil {
		t := *c.Transform
		ret.Transform = &t
	}
	if c.Audio != nil {
		a := *c.Audio
		ret.Audio = &a
	}
	ret.Effect = copyEffect(c.Effect)
	return ret
}

// ActiveWord returns the index of the lyric word sounding at t, or -1.
func (l *LyricsContent) ActiveWord(t float64) int {
	i, found := slices.BinarySearchFunc(l.Words, t, func(w LyricWord, t float64) int {
		switch {
		case w.End <= t:
			return -1
		case w.Start > t:
			return 1
		default:
			return 0
		}
	})
	if !found {
		return -1
	}
	return i
}

type (
	// plainClip has the fields of Clip but none of its methods, so that it
	// can be handed to the encoders without recursing into them.
	plainClip Clip

	clipWire struct {
		plainClip `yaml:",inline"`
		Effect    *effectWire `json:"effect,omitempty" yaml:"effect,omitempty"`
	}

	// effectWire is the tagged form of an EffectConfig.
	effectWire struct {
		Kind              EffectKind         `json:"kind" yaml:"kind"`
		BeatZoom          *BeatZoom          `json:"beatZoom,omitempty" yaml:"beatZoom,omitempty"`
		Cutout            *Cutout            `json:"cutout,omitempty" yaml:"cutout,omitempty"`
		HeadStabilization *HeadStabilization `json:"headStabilization,omitempty" yaml:"headStabilization,omitempty"`
		Cartoon           *Cartoon           `json:"cartoon,omitempty" yaml:"cartoon,omitempty"`
		ColorGrade        *ColorGrade        `json:"colorGrade,omitempty" yaml:"colorGrade,omitempty"`
	}
)

func (c Clip) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.wire())
}

func (c *Clip) UnmarshalJSON(data []byte) error {
	var w clipWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	return c.fromWire(w)
}

func (c Clip) MarshalYAML() (any, error) {
	return c.wire(), nil
}

func (c *Clip) UnmarshalYAML(value *yaml.Node) error {
	var w clipWire
	if err := value.Decode(&w); err != nil {
		return err
	}
	return c.fromWire(w)
}

func (c Clip) wire() clipWire {
	return clipWire{plainClip: plainClip(c), Effect: wireEffect(c.Effect)}
}

func (c *Clip) fromWire(w clipWire) error {
	effect, err := w.Effect.config()
	if err != nil {
		return fmt.Errorf("clip %s: %w", w.ID, err)
	}
	*c = Clip(w.plainClip)
	c.Effect = effect
	return nil
}

func wireEffect(c EffectConfig) *effectWire {
	if c == nil {
		return nil
	}
	w := &effectWire{Kind: c.Kind()}
	switch c := c.(type) {
	case BeatZoom:
		w.BeatZoom = &c
	case Cutout:
		w.Cutout = &c
	case HeadStabilization:
		w.HeadStabilization = &c
	case Cartoon:
		w.Cartoon = &c
	case ColorGrade:
		w.ColorGrade = &c
	}
	return w
}

func (w *effectWire) config() (EffectConfig, error) {
	if w == nil {
		return nil, nil
	}
	def := DefaultEffectConfig(w.Kind)
	if def == nil {
		return nil, fmt.Errorf("unknown effect kind %q", w.Kind)
	}
	switch w.Kind {
	case BeatZoomEffect:
		if w.BeatZoom != nil {
			return *w.BeatZoom, nil
		}
	case CutoutEffect:
		if w.Cutout != nil {
			return *w.Cutout, nil
		}
	case HeadStabilizationEffect:
		if w.HeadStabilization != nil {
			return *w.HeadStabilization, nil
		}
	case CartoonEffect:
		if w.Cartoon != nil {
			return *w.Cartoon, nil
		}
	case ColorGradeEffect:
		if w.ColorGrade != nil {
			return *w.ColorGrade, nil
		}
	}
	return def, nil
}
