package resumetext

import (
	"strings"
	"unicode"
)

// Normalize produces the searchable form of extracted resume text.
// The transform is deterministic: the same input always yields the same
// output, which downstream matching relies on.
//
// Rules: drop control and replacement runes, fold common typographic
// punctuation to ASCII, lowercase, collapse all runs of whitespace to a
// single space, trim.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range s {
		switch {
		case r == '�':
			// replacement char from bad encoding, drop
		case unicode.IsControl(r):
			b.WriteRune(' ')
		default:
			if folded, ok := punctFold[r]; ok {
				b.WriteString(folded)
			} else {
				b.WriteRune(unicode.ToLower(r))
			}
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

var punctFold = map[rune]string{
	'‘': "'",  // left single quote
	'’': "'",  // right single quote
	'“': `"`,  // left double quote
	'”': `"`,  // right double quote
	'–': "-",  // en dash
	'—': "-",  // em dash
	'•': "*",  // bullet
	' ': " ",  // nbsp
	'…': "...",
}
