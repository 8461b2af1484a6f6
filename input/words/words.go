package words

import (
	"bufio"
	"io"
	"math/rand"
	"os"
	"strings"

	"github.com/npillmayer/ocrgen/core"
	"github.com/npillmayer/ocrgen/engine/script/persian"
)

// Generator produces texts to render.
type Generator interface {
	// Words returns up to n texts.
	Words(n int) []string
}

// --- Dictionary ------------------------------------------------------------

// Dictionary is a list of words, all of which are covered by a shaping table.
type Dictionary struct {
	words []string
	rng   *rand.Rand
}

var _ Generator = &Dictionary{}

// LoadDictionary reads a word list with one word per line. If a line holds
// comma separated fields, the first one is taken. Words with characters not
// in table are dropped.
func LoadDictionary(r io.Reader, table *persian.Table, rng *rand.Rand) (*Dictionary, error) {
	d := &Dictionary{rng: rng}
	scanner := bufio.NewScanner(r)
	dropped := 0
	for scanner.Scan() {
		word := scanner.Text()
		if i := strings.IndexByte(word, ','); i >= 0 {
			word = word[:i]
		}
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}
		if !table.Covers(word) {
			dropped++
			continue
		}
		d.words = append(d.words, word)
	}
	if err := scanner.Err(); err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot read dictionary")
	}
	tracer().Debugf("dictionary has %d words, %d dropped", len(d.words), dropped)
	if len(d.words) == 0 {
		return nil, core.Error(core.EMISSING, "dictionary has no usable words")
	}
	return d, nil
}

// LoadDictionaryFile reads a dictionary from a file.
func LoadDictionaryFile(path string, table *persian.Table, rng *rand.Rand) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "cannot open dictionary %s", path)
	}
	defer f.Close()
	return LoadDictionary(f, table, rng)
}

// Len returns the number of words in the dictionary.
func (d *Dictionary) Len() int {
	return len(d.words)
}

// Sample draws n words with replacement.
func (d *Dictionary) Sample(rng *rand.Rand, n int) []string {
	words := make([]string, n)
	for i := range words {
		words[i] = d.words[rng.Intn(len(d.words))]
	}
	return words
}

// Words draws n words with replacement.
func (d *Dictionary) Words(n int) []string {
	return d.Sample(d.rng, n)
}

// --- Random words ----------------------------------------------------------

// Alphabet returns the letters of table as strings. If allForms is set, it
// returns every positional form instead, plus the lam-alef ligature.
func Alphabet(table *persian.Table, allForms bool) []string {
	var runes []rune
	if allForms {
		runes = table.Forms()
	} else {
		runes = table.Letters()
	}
	letters := make([]string, 0, len(runes)+1)
	for _, r := range runes {
		letters = append(letters, string(r))
	}
	if allForms {
		letters = append(letters, "لا")
	}
	return letters
}

// Equal generates batch random words of the given length over the letters
// of table. Every letter has the same weight. If occurrence is positive, no
// letter appears more than occurrence times in a word. Duplicates are
// removed, so fewer than batch words may result.
func Equal(table *persian.Table, rng *rand.Rand, length, batch, occurrence int) []string {
	return random(Alphabet(table, false), rng, length, batch, occurrence)
}

// AllForms generates batch random strings of the given length over all the
// positional forms of table. The strings are not words of any language; they
// exercise every glyph form in every neighbourhood.
func AllForms(table *persian.Table, rng *rand.Rand, length, batch int) []string {
	return random(Alphabet(table, true), rng, length, batch, 0)
}

func random(letters []string, rng *rand.Rand, length, batch, occurrence int) []string {
	if length <= 0 || batch <= 0 || len(letters) == 0 {
		return nil
	}
	if occurrence > 0 && occurrence*len(letters) < length {
		occurrence = 0
	}
	seen := make(map[string]bool, batch)
	words := make([]string, 0, batch)
	count := make(map[int]int, length)
	for i := 0; i < batch; i++ {
		var sb strings.Builder
		for k := range count {
			delete(count, k)
		}
		for j := 0; j < length; j++ {
			k := rng.Intn(len(letters))
			for occurrence > 0 && count[k] >= occurrence {
				k = rng.Intn(len(letters))
			}
			count[k]++
			sb.WriteString(letters[k])
		}
		if w := sb.String(); !seen[w] {
			seen[w] = true
			words = append(words, w)
		}
	}
	return words
}

// Random is a generator for random words with a length in [Min, Max].
type Random struct {
	Table      *persian.Table
	Min, Max   int
	Occurrence int
	AllForms   bool // draw from all positional forms instead of letters
	rng        *rand.Rand
}

var _ Generator = &Random{}

// NewRandom creates a generator for random words of length min…max.
func NewRandom(table *persian.Table, min, max int, rng *rand.Rand) *Random {
	if max < min {
		min, max = max, min
	}
	return &Random{Table: table, Min: min, Max: max, rng: rng}
}

// Words generates n random words, each with its own length. Duplicates are
// removed.
func (g *Random) Words(n int) []string {
	seen := make(map[string]bool, n)
	words := make([]string, 0, n)
	for i := 0; i < n; i++ {
		length := g.Min + g.rng.Intn(g.Max-g.Min+1)
		var batch []string
		if g.AllForms {
			batch = AllForms(g.Table, g.rng, length, 1)
		} else {
			batch = Equal(g.Table, g.rng, length, 1, g.Occurrence)
		}
		for _, w := range batch {
			if !seen[w] {
				seen[w] = true
				words = append(words, w)
			}
		}
	}
	tracer().Debugf("generated %d random words", len(words))
	return words
}
