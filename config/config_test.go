package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.CaptionsEnabled || !cfg.WebVTTEnabled {
		t.Errorf("captions/webvtt should default on: %+v", cfg)
	}
	if cfg.SubtitleLabel != "Subtitles" || cfg.SubtitleLanguage != "en" {
		t.Errorf("subtitle defaults = %q/%q", cfg.SubtitleLabel, cfg.SubtitleLanguage)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cueflow.yaml")
	data := `
captions_enabled: false
subtitle_label: Untertitel
subtitle_language: de
caption_tracks:
  - label: English CC
    language: en
  - label: Spanish CC
    language: es
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.CaptionsEnabled {
		t.Error("captions_enabled not overridden by file")
	}
	if cfg.WebVTTEnabled != true {
		t.Error("unset key lost its default")
	}
	if len(cfg.CaptionTracks) != 2 || cfg.CaptionTracks[1].Language != "es" {
		t.Errorf("caption tracks = %+v", cfg.CaptionTracks)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestConfig_Timeline(t *testing.T) {
	cfg := Config{
		CaptionsEnabled: true,
		CaptionTracks: []CaptionTrack{
			{Label: "English CC", Language: "en"},
			{},
			{Label: "French CC", Language: "fr"},
		},
		SubtitleLabel: "Subs",
	}

	tc := cfg.Timeline()
	if tc.CaptionLabels[1] != "English CC" || tc.CaptionLabels[3] != "French CC" {
		t.Errorf("caption labels = %v", tc.CaptionLabels)
	}
	if _, ok := tc.CaptionLabels[2]; ok {
		t.Error("empty label should fall through to the controller's default")
	}
	if tc.SubtitleLabel != "Subs" {
		t.Errorf("subtitle label = %q", tc.SubtitleLabel)
	}
}
