package filter

import "testing"

func TestCompose_EmptyFragment(t *testing.T) {
	b := NewBuilder("")

	tests := []struct {
		name     string
		fragment string
	}{
		{"empty string", ""},
		{"whitespace only", "   "},
		{"tabs and newlines", "\t\n "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := b.Compose(tt.fragment)
			if got != DefaultExclusion {
				t.Errorf("Compose(%q) = %q, want exclusion predicate alone", tt.fragment, got)
			}
		})
	}
}

func TestCompose_NonEmptyFragment(t *testing.T) {
	b := NewBuilder("")

	tests := []struct {
		name     string
		fragment string
		want     string
	}{
		{
			name:     "simple fragment",
			fragment: `elements HAS "Si"`,
			want:     `( elements HAS "Si" ) AND ( ` + DefaultExclusion + ` )`,
		},
		{
			name:     "fragment with OR",
			fragment: `chemical_formula_descriptive CONTAINS "Al" OR nelements=2`,
			want:     `( chemical_formula_descriptive CONTAINS "Al" OR nelements=2 ) AND ( ` + DefaultExclusion + ` )`,
		},
		{
			name:     "surrounding whitespace trimmed",
			fragment: `  nelements=3  `,
			want:     `( nelements=3 ) AND ( ` + DefaultExclusion + ` )`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := b.Compose(tt.fragment)
			if got != tt.want {
				t.Errorf("Compose(%q) = %q, want %q", tt.fragment, got, tt.want)
			}
		})
	}
}

func TestNewBuilder_CustomExclusion(t *testing.T) {
	custom := `NOT structure_features HAS ANY "assemblies"`
	b := NewBuilder(custom)

	if b.Exclusion() != custom {
		t.Errorf("Exclusion() = %q, want %q", b.Exclusion(), custom)
	}

	got := b.Compose("nelements=1")
	want := `( nelements=1 ) AND ( ` + custom + ` )`
	if got != want {
		t.Errorf("Compose() = %q, want %q", got, want)
	}
}

func TestCompose_NoSyntaxValidation(t *testing.T) {
	b := NewBuilder("")

	// Malformed fragments pass through untouched; the remote service
	// reports the syntax error.
	got := b.Compose("((((")
	want := `( (((( ) AND ( ` + DefaultExclusion + ` )`
	if got != want {
		t.Errorf("Compose() = %q, want %q", got, want)
	}
}
