package persian

import (
	"strings"

	"github.com/derekparker/trie"
	"golang.org/x/text/unicode/norm"
)

// DefaultLigatures are letter sequences which are labeled as a single unit.
var DefaultLigatures = []string{"لا", "لله", "ریال"}

// Ligatures is a set of exception ligatures. Ligatures are matched on the
// logical (unshaped) text, left to right, without overlap. At any position the
// longest ligature wins.
//
// A Ligatures set must not be modified once it is shared between goroutines.
type Ligatures struct {
	trie *trie.Trie
	list []string
}

// NewLigatures creates a ligature set from a list of letter sequences.
// Empty strings and duplicates are ignored; the first occurence counts.
func NewLigatures(ligs ...string) *Ligatures {
	l := &Ligatures{trie: trie.New()}
	for _, lig := range ligs {
		l.Add(lig)
	}
	return l
}

// Add appends a ligature to the set.
func (l *Ligatures) Add(lig string) {
	lig = norm.NFC.String(strings.TrimSpace(lig))
	if lig == "" {
		return
	}
	if _, exists := l.trie.Find(lig); exists {
		tracer().Debugf("ligature %q configured twice, ignoring", lig)
		return
	}
	l.trie.Add(lig, len(l.list))
	l.list = append(l.list, lig)
}

// List returns the ligatures in configuration order.
func (l *Ligatures) List() []string {
	if l == nil {
		return nil
	}
	return append([]string(nil), l.list...)
}

// Len returns the number of ligatures in the set.
func (l *Ligatures) Len() int {
	if l == nil {
		return 0
	}
	return len(l.list)
}

// match is a ligature found in a cluster sequence, covering clusters
// [start, end).
type match struct {
	start, end int
	index      int // configuration index of the ligature
}

// find returns all non-overlapping ligature matches, ordered by start.
func (l *Ligatures) find(cc []cluster) []match {
	if l.Len() == 0 {
		return nil
	}
	var matches []match
	for i := 0; i < len(cc); {
		var best match
		var key strings.Builder
		for j := i; j < len(cc); j++ {
			key.WriteString(cc[j].text)
			k := key.String()
			if node, ok := l.trie.Find(k); ok {
				best = match{start: i, end: j + 1, index: node.Meta().(int)}
			}
			if !l.trie.HasKeysWithPrefix(k) {
				break
			}
		}
		if best.end > best.start+1 {
			tracer().Debugf("ligature #%d matched at [%d,%d)", best.index, best.start, best.end)
			matches = append(matches, best)
			i = best.end
			continue
		}
		i++
	}
	return matches
}
