package resumetext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "collapses whitespace",
			in:   "  Jane\t Doe \n\n Senior   Engineer ",
			want: "jane doe senior engineer",
		},
		{
			name: "lowercases",
			in:   "PYTHON Go SQL",
			want: "python go sql",
		},
		{
			name: "folds typographic punctuation",
			in:   "Led “Platform” team — 2019–2023",
			want: `led "platform" team - 2019-2023`,
		},
		{
			name: "drops control and replacement runes",
			in:   "foo\x00bar baz�qux",
			want: "foo bar bazqux",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
		{
			name: "whitespace only",
			in:   " \n\t ",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	in := "Résumé — “Jane Doe”\n\nSkills:\tGo, SQL…"
	first := Normalize(in)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Normalize(in))
	}
}
