package persian

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"unicode/utf8"

	"github.com/npillmayer/ocrgen/core"
)

// JoinSide is a set of sides a letter connects to. Back is the logically
// preceding letter (visually to the right), Front the logically following one.
type JoinSide uint8

const (
	None  JoinSide = 0
	Back  JoinSide = 1
	Front JoinSide = 2
	Both           = Back | Front
)

// Form is one of the four positional forms of a letter.
type Form int

const (
	Isolated Form = iota
	Initial
	Medial
	Final
)

func (f Form) String() string {
	switch f {
	case Isolated:
		return "isolated"
	case Initial:
		return "initial"
	case Medial:
		return "medial"
	case Final:
		return "final"
	}
	return "unknown-form"
}

// Letter is a logical letter together with its presentation forms.
// A form rune of 0 denotes a form the letter does not have.
type Letter struct {
	Char        rune
	Description string
	Isolated    rune
	Initial     rune
	Medial      rune
	Final       rune
}

// CanJoin reports whether a letter is able to connect to side.
// Joining the previous letter needs a final form, joining the next one
// needs an initial form.
func (l Letter) CanJoin(side JoinSide) bool {
	switch side {
	case Back:
		return l.Final != 0
	case Front:
		return l.Initial != 0
	case Both:
		return l.Final != 0 && l.Initial != 0
	}
	return true
}

// ConnectedForm returns the glyph for a letter connecting to sides.
func (l Letter) ConnectedForm(sides JoinSide) (rune, Form) {
	if sides == Both && l.Medial != 0 {
		return l.Medial, Medial
	}
	if sides&Back != 0 && l.Final != 0 {
		return l.Final, Final
	}
	if sides&Front != 0 && l.Initial != 0 {
		return l.Initial, Initial
	}
	return l.Isolated, Isolated
}

// Table is a read-only lookup table of letters. It is safe for concurrent use.
type Table struct {
	letters map[rune]Letter
	forms   map[rune]Form
}

type letterEntry struct {
	Character   string `json:"character"`
	Description string `json:"description,omitempty"`
	Isolated    string `json:"isolated"`
	Initial     string `json:"initial,omitempty"`
	Medial      string `json:"medial,omitempty"`
	Final       string `json:"final,omitempty"`
}

type tableFile struct {
	Letters []letterEntry `json:"letters"`
}

//go:embed letters.json
var defaultLetters []byte

var defaultTable *Table
var defaultTableLoading sync.Once

// Default returns the table of the Persian alphabet, including a couple of
// Arabic variants frequently found in Persian text. It is always present.
func Default() *Table {
	defaultTableLoading.Do(func() {
		t, err := ParseTable(defaultLetters)
		if err != nil {
			panic("cannot load default letter table: " + err.Error()) // this cannot happen
		}
		defaultTable = t
	})
	return defaultTable
}

// LoadTable reads a letter table in JSON format from r.
func LoadTable(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseTable(data)
}

// LoadTableFile reads a letter table from a JSON file.
func LoadTableFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "letter table not found: %s", path)
	}
	defer f.Close()
	return LoadTable(f)
}

// ParseTable creates a table from JSON data.
func ParseTable(data []byte) (*Table, error) {
	var tf tableFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return nil, core.WrapError(err, core.EINVALID, "letter table is not valid JSON")
	}
	t := &Table{
		letters: make(map[rune]Letter, len(tf.Letters)),
		forms:   make(map[rune]Form, 4*len(tf.Letters)),
	}
	for i, e := range tf.Letters {
		l, err := e.letter()
		if err != nil {
			return nil, core.WrapError(err, core.EINVALID, "letter table entry #%d invalid", i)
		}
		if _, dup := t.letters[l.Char]; dup {
			return nil, core.Error(core.EINVALID, "letter table has duplicate entry for %q", l.Char)
		}
		t.letters[l.Char] = l
		t.forms[l.Isolated] = Isolated
		for form, r := range map[Form]rune{Initial: l.Initial, Medial: l.Medial, Final: l.Final} {
			if r != 0 {
				t.forms[r] = form
			}
		}
	}
	tracer().Debugf("letter table with %d letters loaded", len(t.letters))
	return t, nil
}

func (e letterEntry) letter() (Letter, error) {
	l := Letter{Description: e.Description}
	var err error
	if l.Char, err = singleRune(e.Character, true); err != nil {
		return l, fmt.Errorf("character: %w", err)
	}
	if l.Isolated, err = singleRune(e.Isolated, true); err != nil {
		return l, fmt.Errorf("isolated form of %q: %w", l.Char, err)
	}
	if l.Initial, err = singleRune(e.Initial, false); err != nil {
		return l, fmt.Errorf("initial form of %q: %w", l.Char, err)
	}
	if l.Medial, err = singleRune(e.Medial, false); err != nil {
		return l, fmt.Errorf("medial form of %q: %w", l.Char, err)
	}
	if l.Final, err = singleRune(e.Final, false); err != nil {
		return l, fmt.Errorf("final form of %q: %w", l.Char, err)
	}
	return l, nil
}

func singleRune(s string, required bool) (rune, error) {
	if s == "" {
		if required {
			return 0, fmt.Errorf("missing")
		}
		return 0, nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("%q is not a single code-point", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

// Letter looks up a logical letter.
func (t *Table) Letter(r rune) (Letter, bool) {
	l, ok := t.letters[r]
	return l, ok
}

// Contains is true if r is a logical letter of the table.
func (t *Table) Contains(r rune) bool {
	_, ok := t.letters[r]
	return ok
}

// Len returns the number of letters in the table.
func (t *Table) Len() int {
	return len(t.letters)
}

// Letters returns the logical letters of the table, ordered by code-point.
func (t *Table) Letters() []rune {
	rr := make([]rune, 0, len(t.letters))
	for r := range t.letters {
		rr = append(rr, r)
	}
	sort.Slice(rr, func(i, j int) bool { return rr[i] < rr[j] })
	return rr
}

// Forms returns every presentation form of every letter, ordered by code-point.
func (t *Table) Forms() []rune {
	rr := make([]rune, 0, len(t.forms))
	for r := range t.forms {
		rr = append(rr, r)
	}
	sort.Slice(rr, func(i, j int) bool { return rr[i] < rr[j] })
	return rr
}

// FormOf tells which positional form a presentation glyph is.
func (t *Table) FormOf(glyph rune) (Form, bool) {
	f, ok := t.forms[glyph]
	return f, ok
}

// MarshalJSON writes the table in the format LoadTable reads.
func (t *Table) MarshalJSON() ([]byte, error) {
	tf := tableFile{Letters: make([]letterEntry, 0, len(t.letters))}
	str := func(r rune) string {
		if r == 0 {
			return ""
		}
		return string(r)
	}
	for _, r := range t.Letters() {
		l := t.letters[r]
		tf.Letters = append(tf.Letters, letterEntry{
			Character:   string(l.Char),
			Description: l.Description,
			Isolated:    str(l.Isolated),
			Initial:     str(l.Initial),
			Medial:      str(l.Medial),
			Final:       str(l.Final),
		})
	}
	return json.Marshal(tf)
}
