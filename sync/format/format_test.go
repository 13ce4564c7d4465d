package format

import (
	"strings"
	"testing"
)

func TestCleanString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"plain", "Daft Punk", "Daft Punk"},
		{"featuring", "One More Time (feat. Romanthony)", "One More Time"},
		{"ft", "Song (ft. Someone)", "Song"},
		{"brackets", "Track [Monstercat Release]", "Track"},
		{"remix annotation", "Title (Club Remix)", "Title"},
		{"special chars", "AC/DC: Back!", "ACDC Back"},
		{"whitespace collapse", "a   b\t c", "a b c"},
		{"hyphen preserved", "twenty-one", "twenty-one"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanString(tt.input); got != tt.expected {
				t.Errorf("CleanString(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		name     string
		artist   string
		title    string
		album    string
		expected string
	}{
		{"no album", "Daft Punk", "One More Time", "", "Daft Punk - One More Time"},
		{"album differs", "Daft Punk", "One More Time", "Discovery", "Daft Punk - One More Time Discovery"},
		{"self-titled album dropped", "Burial", "Archangel", "Archangel", "Burial - Archangel"},
		{"album matches after cleaning", "X", "Song", "Song [Deluxe]", "X - Song"},
		{"featuring stripped from title", "Artist", "Hit (feat. Guest)", "", "Artist - Hit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildSearchQuery(tt.artist, tt.title, tt.album)
			if got != tt.expected {
				t.Errorf("BuildSearchQuery() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestCleanDisplayTitle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"official video", "Song Name (Official Video)", "Song Name"},
		{"official music video", "Song Name [Official Music Video]", "Song Name"},
		{"label variant caught by broad pattern", "Song Name [Monstercat Official Music Video]", "Song Name"},
		{"lyrics tag", "Song Name (Lyrics)", "Song Name"},
		{"hd tag", "Song Name [HD]", "Song Name"},
		{"official prefix", "Official: Song Name", "Song Name"},
		{"trailing dash", "Song Name - ", "Song Name"},
		{"plain passes through", "Plain Title", "Plain Title"},
		{"empty", "", "Unknown Track"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanDisplayTitle(tt.input); got != tt.expected {
				t.Errorf("CleanDisplayTitle(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCleanDisplayTitleIdempotent(t *testing.T) {
	inputs := []string{
		"Song Name (Official Video)",
		"Song Name [Monstercat Official Music Video]",
		"Official: Song Name (Lyrics)",
		"ab (Official Video)",
		"Plain Title",
		"A - B",
	}

	for _, input := range inputs {
		once := CleanDisplayTitle(input)
		twice := CleanDisplayTitle(once)
		if once != twice {
			t.Errorf("CleanDisplayTitle not idempotent for %q: once=%q twice=%q", input, once, twice)
		}
	}
}

func TestCleanDisplayTitleNeverDegenerate(t *testing.T) {
	// Stripping everything must fall back to the original title.
	inputs := []string{
		"(Official Video)",
		"HD [HD]",
		"ab (Lyrics)",
	}

	for _, input := range inputs {
		got := CleanDisplayTitle(input)
		if len([]rune(got)) < 3 && len([]rune(strings.TrimSpace(input))) >= 3 {
			t.Errorf("CleanDisplayTitle(%q) = %q, shorter than 3 characters", input, got)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"reserved chars", `AC/DC: "Back" <in> Black?`, "AC_DC_ _Back_ _in_ Black"},
		{"collapse underscores", "a//b", "a_b"},
		{"trim underscores", "/name/", "name"},
		{"empty becomes fallback", "", "unknown_file"},
		{"only reserved becomes fallback", `///`, "unknown_file"},
		{"clean passes through", "Artist - Title", "Artist - Title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFilename(tt.input); got != tt.expected {
				t.Errorf("SanitizeFilename(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSanitizeFilenameProperties(t *testing.T) {
	inputs := []string{"", "???", `a<b>c:d"e/f\g|h?i*j`, "  ", "normal name"}
	reserved := `<>:"/\|?*`

	for _, input := range inputs {
		got := SanitizeFilename(input)
		if got == "" {
			t.Errorf("SanitizeFilename(%q) returned empty string", input)
		}
		if strings.ContainsAny(got, reserved) {
			t.Errorf("SanitizeFilename(%q) = %q still contains reserved characters", input, got)
		}
	}
}
