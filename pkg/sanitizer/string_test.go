package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trim spaces", "  Nur-Sultan  ", "Nur-Sultan"},
		{"multiple spaces between words", "New    York", "New York"},
		{"tabs and newlines", "Saint\t\nPetersburg", "Saint Petersburg"},
		{"empty string", "", ""},
		{"only whitespace", "   \t\n  ", ""},
		{"preserve special characters", " Zürich & Co ", "Zürich & Co"},
		{"cyrillic characters", " Алматы ", "Алматы"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := TrimAndNormalize(got); again != got {
				t.Errorf("not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestSanitizeClock(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"14:00", "14:00"},
		{" 9:30 ", "09:30"},
		{"14:00:00", "14:00"},
		{"09:05:59", "09:05"},
		{"9:60", "9:60"},
		{"noon", "noon"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SanitizeClock(tt.input); got != tt.want {
				t.Errorf("SanitizeClock(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeEnum(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{" Caregiver  for Elderly ", "caregiver for elderly"},
		{"PENDING", "pending"},
		{"babysitter", "babysitter"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SanitizeEnum(tt.input); got != tt.want {
				t.Errorf("SanitizeEnum(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  Aruzhan  ", "Aruzhan"},
		{"Anna\u200b Maria", "Anna Maria"},
		{"Jean\x00-Luc", "Jean-Luc"},
		{"O'Brien", "O'Brien"},
		{"\t\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := NormalizeName(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := NormalizeName(got); again != got {
				t.Errorf("not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestNormalizeCity(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{" Almaty, ", "Almaty"},
		{"St. Louis", "St. Louis"},
		{"Nur-Sultan;", "Nur-Sultan"},
		{"  ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeCity(tt.input); got != tt.want {
				t.Errorf("NormalizeCity(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeText_KeepsLineBreaks(t *testing.T) {
	got := NormalizeText("  No shoes indoors.\r\n\nQuiet after 21:00\x07  ")
	want := "No shoes indoors.\n\nQuiet after 21:00"
	if got != want {
		t.Errorf("NormalizeText() = %q, want %q", got, want)
	}
}

func TestSanitizeID(t *testing.T) {
	if got := SanitizeID("  665f1c2ab3e4d5f6a7b8c9d0 \n"); got != "665f1c2ab3e4d5f6a7b8c9d0" {
		t.Errorf("SanitizeID() = %q", got)
	}
}
