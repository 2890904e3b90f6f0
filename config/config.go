// Package config loads the cueflow configuration surface: caption
// enablement, track labels and language codes, and the WebVTT switch.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/zsiec/cueflow/timeline"
)

// CaptionTrack names one CEA-608 channel's destination track.
type CaptionTrack struct {
	Label    string `mapstructure:"label"`
	Language string `mapstructure:"language"`
}

// Config is the full configuration surface. All fields have working
// defaults; a config file and CUEFLOW_* environment variables override
// them.
type Config struct {
	Level           string `mapstructure:"level"`
	CaptionsEnabled bool   `mapstructure:"captions_enabled"`
	WebVTTEnabled   bool   `mapstructure:"webvtt_enabled"`

	// CaptionTracks[i] configures channel i+1.
	CaptionTracks []CaptionTrack `mapstructure:"caption_tracks"`

	SubtitleLabel    string `mapstructure:"subtitle_label"`
	SubtitleLanguage string `mapstructure:"subtitle_language"`

	MetricsAddr string `mapstructure:"metrics_addr"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("level", "info")
	v.SetDefault("captions_enabled", true)
	v.SetDefault("webvtt_enabled", true)
	v.SetDefault("subtitle_label", "Subtitles")
	v.SetDefault("subtitle_language", "en")
	v.SetDefault("metrics_addr", "")
}

// Load reads configuration from an optional file path plus the
// environment.
func Load(path string) (Config, error) {
	v := viper.New()
	defaults(v)
	v.SetEnvPrefix("CUEFLOW")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}
	return c, nil
}

// Timeline converts the loaded surface into the controller's read-only
// configuration.
func (c Config) Timeline() timeline.Config {
	tc := timeline.Config{
		CaptionsEnabled:  c.CaptionsEnabled,
		WebVTTEnabled:    c.WebVTTEnabled,
		CaptionLabels:    make(map[int]string),
		CaptionLanguages: make(map[int]string),
		SubtitleLabel:    c.SubtitleLabel,
		SubtitleLanguage: c.SubtitleLanguage,
	}
	for i, t := range c.CaptionTracks {
		channel := i + 1
		if t.Label != "" {
			tc.CaptionLabels[channel] = t.Label
		}
		if t.Language != "" {
			tc.CaptionLanguages[channel] = t.Language
		}
	}
	return tc
}
