package persian

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/npillmayer/ocrgen/core"
	"github.com/npillmayer/uax/grapheme"
)

// zwnj is the zero width non-joiner, which ends a run of connected letters.
const zwnj = '\u200c'

// UnknownCharacterError is returned if a text contains a character not covered
// by the letter table. It matches core.ErrUnknownCharacter with errors.Is.
type UnknownCharacterError struct {
	Char rune
	Text string
}

func (e UnknownCharacterError) Error() string {
	return fmt.Sprintf("unknown character %q (U+%04X) in %q", e.Char, e.Char, e.Text)
}

func (e UnknownCharacterError) Unwrap() error {
	return core.ErrUnknownCharacter
}

// ErrorCode is EUNKNOWNCHAR.
func (e UnknownCharacterError) ErrorCode() int {
	return core.EUNKNOWNCHAR
}

// UserMessage is part of core.AppError.
func (e UnknownCharacterError) UserMessage() string {
	return fmt.Sprintf("character %q is not in the letter table", e.Char)
}

var _ core.AppError = UnknownCharacterError{}

func init() {
	grapheme.SetupGraphemeClasses()
}

// cluster is a grapheme cluster of the input: a base character followed by
// combining marks or format characters, which are transparent for joining.
type cluster struct {
	text    string
	base    rune
	letter  Letter
	known   bool
	nonJoin bool // ends with a ZWNJ
}

func (t *Table) clusters(text string) []cluster {
	gstr := grapheme.StringFromString(text)
	l := gstr.Len()
	cc := make([]cluster, 0, l)
	for i := 0; i < l; i++ {
		g := gstr.Nth(i)
		if g == "" {
			continue
		}
		c := cluster{text: g}
		c.base, _ = utf8.DecodeRuneInString(g)
		c.letter, c.known = t.letters[c.base]
		c.nonJoin = strings.ContainsRune(g, zwnj)
		cc = append(cc, c)
	}
	return cc
}

// isTransparent is true for runes riding on a base letter.
func isTransparent(r rune) bool {
	return r == zwnj || unicode.In(r, unicode.Mn, unicode.Me, unicode.Cf)
}

// shapeClusters resolves the glyph of every cluster. Marks are kept after the
// shaped base letter.
func (t *Table) shapeClusters(text string, cc []cluster, rejectUnknown bool) ([]string, error) {
	shaped := make([]string, len(cc))
	for i, c := range cc {
		if !c.known {
			if rejectUnknown && !isTransparent(c.base) {
				tracer().Debugf("unknown character %q in %q", c.base, text)
				return nil, UnknownCharacterError{Char: c.base, Text: text}
			}
			shaped[i] = c.text
			continue
		}
		var sides JoinSide
		if i+1 < len(cc) && !c.nonJoin {
			next := cc[i+1]
			if next.known && c.letter.CanJoin(Front) && next.letter.CanJoin(Back) {
				sides |= Front
			}
		}
		if i > 0 {
			prev := cc[i-1]
			if prev.known && !prev.nonJoin && c.letter.CanJoin(Back) && prev.letter.CanJoin(Front) {
				sides |= Back
			}
		}
		glyph, _ := c.letter.ConnectedForm(sides)
		_, sz := utf8.DecodeRuneInString(c.text)
		shaped[i] = string(glyph) + c.text[sz:]
	}
	return shaped, nil
}

// ShapeString replaces every letter of text by its positional presentation
// form. Characters not in the table are either copied unchanged or, if
// rejectUnknown is set, reported as an UnknownCharacterError.
// Characters outside the table never connect to their neighbours.
func (t *Table) ShapeString(text string, rejectUnknown bool) (string, error) {
	cc := t.clusters(text)
	shaped, err := t.shapeClusters(text, cc, rejectUnknown)
	if err != nil {
		return "", err
	}
	return strings.Join(shaped, ""), nil
}

// Covers reports whether every letter of text is in the table.
func (t *Table) Covers(text string) bool {
	for _, r := range text {
		if !t.Contains(r) && !isTransparent(r) {
			return false
		}
	}
	return text != ""
}
