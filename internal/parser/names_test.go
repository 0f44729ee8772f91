package parser

import "testing"

func TestCleanName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Alice Smith", "Alice Smith"},
		{"Role filled by Alice Smith", "Alice Smith"},
		{"role FILLED by Bob", "Bob"},
		{"Carol White [DTM]", "Carol White"},
		{"Dan Brown Path: Presentation Mastery", "Dan Brown"},
		{"Eve (Level 2 Path Innovative Planning)", "Eve"},
		{"Bob Jones (Path: Dynamic Leadership)", "Bob Jones"},
		{"  ", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := CleanName(tt.in); got != tt.want {
				t.Errorf("CleanName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMatchMember(t *testing.T) {
	members := []string{"Alice Smith", "Alicia Keys", "Bob Jones "}

	tests := []struct {
		in   string
		want string
	}{
		{"alice smith", "Alice Smith"},
		{"Bob", "Bob Jones"},
		{"Alic", "Alice Smith"},
		{"Alicia", "Alicia Keys"},
		{"Zed [VC1]", "Zed"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := MatchMember(tt.in, members); got != tt.want {
				t.Errorf("MatchMember(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
