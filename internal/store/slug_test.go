package store

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		expected string
	}{
		{"punctuation collapsed", "Flamengo vence! (de virada)", "flamengo-vence-de-virada"},
		{"accents stripped", "Atuações do Flamengo: João brilha", "atuacoes-do-flamengo-joao-brilha"},
		{"already clean", "flamengo-empata", "flamengo-empata"},
		{"edge separators", "--- Flamengo ---", "flamengo"},
		{"numbers kept", "Flamengo 3 x 1 Vasco", "flamengo-3-x-1-vasco"},
		{"cedilla", "Reforço chega à Gávea", "reforco-chega-a-gavea"},
		{"empty", "", ""},
		{"only punctuation", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.title); got != tt.expected {
				t.Fatalf("Slugify(%q) = %q, want %q", tt.title, got, tt.expected)
			}
		})
	}
}
