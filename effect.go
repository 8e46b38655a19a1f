package montage

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type (
	EffectKind string

	// EffectConfig is the configuration carried by the clip of an effect
	// track. It is a closed set: one value type per EffectKind. Code that
	// builds or edits configurations switches over all of them, so adding a
	// kind means adding a case to DefaultEffectConfig, copyEffect and the
	// wire conversion in clip.go.
	EffectConfig interface {
		Kind() EffectKind
		// Normalize returns the configuration with every parameter clamped to
		// its valid range.
		Normalize() EffectConfig
		isEffectConfig()
	}

	// BeatZoom pulses the zoom of the parent track on every beat. Beats and
	// Tempo are filled in from beat detection on the master audio.
	BeatZoom struct {
		Intensity     float64   `json:"intensity" yaml:"intensity"`
		PulseDuration float64   `json:"pulseDuration" yaml:"pulseDuration"`
		Tempo         float64   `json:"tempo" yaml:"tempo"`
		Beats         []float64 `json:"beats" yaml:"beats,flow"`
	}

	// Cutout keeps the person in the parent track and drops the background,
	// using a mask video rendered offline.
	Cutout struct {
		MaskAssetID string  `json:"maskAssetId,omitempty" yaml:"maskAssetId,omitempty"`
		Feather     float64 `json:"feather" yaml:"feather"`
		Invert      bool    `json:"invert" yaml:"invert"`
	}

	// HeadStabilization keeps the detected face steady. Smoothing factors are
	// in [0,1] for the horizontal, vertical and zoom axes.
	HeadStabilization struct {
		SmoothX          float64 `json:"smoothX" yaml:"smoothX"`
		SmoothY          float64 `json:"smoothY" yaml:"smoothY"`
		SmoothZ          float64 `json:"smoothZ" yaml:"smoothZ"`
		ProcessedAssetID string  `json:"processedAssetId,omitempty" yaml:"processedAssetId,omitempty"`
	}

	Cartoon struct {
		EdgeStrength float64 `json:"edgeStrength" yaml:"edgeStrength"`
		ColorLevels  int     `json:"colorLevels" yaml:"colorLevels"`
	}

	// ColorGrade parameters are offsets in [-1,1], 0 meaning unchanged.
	ColorGrade struct {
		Brightness  float64 `json:"brightness" yaml:"brightness"`
		Contrast    float64 `json:"contrast" yaml:"contrast"`
		Saturation  float64 `json:"saturation" yaml:"saturation"`
		Temperature float64 `json:"temperature" yaml:"temperature"`
	}
)

const (
	BeatZoomEffect          EffectKind = "beatZoom"
	CutoutEffect            EffectKind = "cutout"
	HeadStabilizationEffect EffectKind = "headStabilization"
	CartoonEffect           EffectKind = "cartoon"
	ColorGradeEffect        EffectKind = "colorGrade"
)

var EffectKinds = []EffectKind{
	BeatZoomEffect,
	CutoutEffect,
	HeadStabilizationEffect,
	CartoonEffect,
	ColorGradeEffect,
}

func (k EffectKind) Valid() bool {
	return slices.Contains(EffectKinds, k)
}

// Label returns the human readable name of the kind, e.g. "Beat Zoom" for
// beatZoom.
func (k EffectKind) Label() string {
	var b strings.Builder
	for i, r := range string(k) {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}
	return cases.Title(language.English).String(b.String())
}

// DefaultEffectConfig returns the configuration a new clip of the given kind
// starts with, or nil if the kind is unknown.
func DefaultEffectConfig(kind EffectKind) EffectConfig {
	switch kind {
	case BeatZoomEffect:
		return BeatZoom{Intensity: 0.15, PulseDuration: 0.15, Beats: []float64{}}
	case CutoutEffect:
		return Cutout{Feather: 0.02}
	case HeadStabilizationEffect:
		return HeadStabilization{SmoothX: 0.5, SmoothY: 0.5, SmoothZ: 0.5}
	case CartoonEffect:
		return Cartoon{EdgeStrength: 0.5, ColorLevels: 6}
	case ColorGradeEffect:
		return ColorGrade{}
	default:
		return nil
	}
}

func copyEffect(c EffectConfig) EffectConfig {
	switch c := c.(type) {
	case BeatZoom:
		c.Beats = slices.Clone(c.Beats)
		return c
	case Cutout, HeadStabilization, Cartoon, ColorGrade:
		return c
	case nil:
		return nil
	default:
		panic(fmt.Sprintf("montage: unhandled effect config %T", c))
	}
}

func (BeatZoom) Kind() EffectKind          { return BeatZoomEffect }
func (Cutout) Kind() EffectKind            { return CutoutEffect }
func (HeadStabilization) Kind() EffectKind { return HeadStabilizationEffect }
func (Cartoon) Kind() EffectKind           { return CartoonEffect }
func (ColorGrade) Kind() EffectKind        { return ColorGradeEffect }

func (BeatZoom) isEffectConfig()          {}
func (Cutout) isEffectConfig()            {}
func (HeadStabilization) isEffectConfig() {}
func (Cartoon) isEffectConfig()           {}
func (ColorGrade) isEffectConfig()        {}

func (c BeatZoom) Normalize() EffectConfig {
	c.Intensity = clamp(c.Intensity, 0, 1)
	c.PulseDuration = max(c.PulseDuration, 0)
	c.Tempo = max(c.Tempo, 0)
	if c.Beats != nil {
		c.Beats = slices.DeleteFunc(slices.Clone(c.Beats), func(t float64) bool { return t < 0 })
		slices.Sort(c.Beats)
	}
	return c
}

func (c Cutout) Normalize() EffectConfig {
	c.Feather = clamp(c.Feather, 0, 1)
	return c
}

func (c HeadStabilization) Normalize() EffectConfig {
	c.SmoothX = clamp(c.SmoothX, 0, 1)
	c.SmoothY = clamp(c.SmoothY, 0, 1)
	c.SmoothZ = clamp(c.SmoothZ, 0, 1)
	return c
}

func (c Cartoon) Normalize() EffectConfig {
	c.EdgeStrength = clamp(c.EdgeStrength, 0, 1)
	c.ColorLevels = clamp(c.ColorLevels, 2, 32)
	return c
}

func (c ColorGrade) Normalize() EffectConfig {
	c.Brightness = clamp(c.Brightness, -1, 1)
	c.Contrast = clamp(c.Contrast, -1, 1)
	c.Saturation = clamp(c.Saturation, -1, 1)
	c.Temperature = clamp(c.Temperature, -1, 1)
	return c
}

func clamp[T int | float64](v, lo, hi T) T {
	return min(max(v, lo), hi)
}
