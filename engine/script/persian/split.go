package persian

import "fmt"

// Span is a labeled unit of a text: a single letter (with its marks) or an
// exception ligature. Start and End are grapheme cluster positions in the
// logical text, End exclusive.
type Span struct {
	Source string // logical characters
	Shaped string // presentation forms as rendered
	Start  int
	End    int
}

func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)%q", s.Start, s.End, s.Shaped)
}

// SplitIntoCharacters shapes text and splits it into labeled units, in
// logical order. Concatenating the Source of all spans yields text exactly.
// Text is not normalized; a decomposed mark rides on its base letter.
//
// Ligatures are detected on the logical text; ligs may be nil.
func (t *Table) SplitIntoCharacters(text string, ligs *Ligatures, rejectUnknown bool) ([]Span, error) {
	cc := t.clusters(text)
	shaped, err := t.shapeClusters(text, cc, rejectUnknown)
	if err != nil {
		return nil, err
	}
	spans := make([]Span, len(cc))
	for i, c := range cc {
		spans[i] = Span{Source: c.text, Shaped: shaped[i], Start: i, End: i + 1}
	}
	matches := ligs.find(cc)
	// merge back to front, so that indices of earlier spans stay valid
	for k := len(matches) - 1; k >= 0; k-- {
		m := matches[k]
		merged := Span{Start: spans[m.start].Start, End: spans[m.end-1].End}
		for _, s := range spans[m.start:m.end] {
			merged.Source += s.Source
			merged.Shaped += s.Shaped
		}
		spans = append(spans[:m.start+1], spans[m.end:]...)
		spans[m.start] = merged
	}
	return spans, nil
}

// Shaped concatenates the presentation forms of spans.
func Shaped(spans []Span) string {
	var s string
	for _, sp := range spans {
		s += sp.Shaped
	}
	return s
}

// Labels returns the presentation forms of spans, one per span.
func Labels(spans []Span) []string {
	ll := make([]string, len(spans))
	for i, sp := range spans {
		ll[i] = sp.Shaped
	}
	return ll
}
