package names

import "testing"

func TestRemoveDiacritics(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Gül", "Gul"},
		{"Çağrı", "Cagrı"},
		{"Jiří", "Jiri"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		if got := RemoveDiacritics(tt.in); got != tt.want {
			t.Errorf("RemoveDiacritics(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Ada_Lovelace", "ada lovelace"},
		{"Jean-Luc  Picard", "jean luc picard"},
		{"  Gül  Yılmaz ", "gul yılmaz"},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitFull(t *testing.T) {
	tests := []struct {
		in    string
		first string
		last  string
	}{
		{"Ada_Lovelace", "Ada", "Lovelace"},
		{"Anne Marie Curie", "Anne Marie", "Curie"},
		{"Plato", "Plato", ""},
		{"", "", ""},
	}

	for _, tt := range tests {
		first, last := SplitFull(tt.in)
		if first != tt.first || last != tt.last {
			t.Errorf("SplitFull(%q) = %q, %q, want %q, %q", tt.in, first, last, tt.first, tt.last)
		}
	}
}
