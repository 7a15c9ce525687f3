package ui

import (
	"testing"

	"github.com/five82/intake/internal/audio"
	"github.com/five82/intake/internal/notice"
)

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	if len(names) != 3 {
		t.Fatalf("ThemeNames() returned %d names, want 3", len(names))
	}
	if names[0] != "Nightfox" {
		t.Fatalf("ThemeNames()[0] = %q, want Nightfox", names[0])
	}
}

func TestNextTheme(t *testing.T) {
	if got := NextTheme("Nightfox"); got != "Kanagawa" {
		t.Fatalf("NextTheme(Nightfox) = %q, want Kanagawa", got)
	}
	if got := NextTheme("Slate"); got != "Nightfox" {
		t.Fatalf("NextTheme(Slate) = %q, want Nightfox", got)
	}
	if got := NextTheme("Unknown"); got != "Nightfox" {
		t.Fatalf("NextTheme(Unknown) = %q, want Nightfox", got)
	}
}

func TestGetTheme(t *testing.T) {
	if got := GetTheme("Slate").Name; got != "Slate" {
		t.Fatalf("GetTheme(Slate).Name = %q, want Slate", got)
	}
	if got := GetTheme("Dracula").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(Dracula).Name = %q, want Nightfox (fallback)", got)
	}
}

func TestThemesColorEveryBadge(t *testing.T) {
	keys := []string{
		string(notice.LevelInfo),
		string(notice.LevelSuccess),
		string(notice.LevelError),
		string(audio.StateIdle),
		string(audio.StateRecording),
		string(audio.StateCaptured),
		badgeBusy,
	}
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for _, k := range keys {
			if th.StatusColors[k] == "" {
				t.Errorf("theme %s has no color for %q", name, k)
			}
		}
	}
}
