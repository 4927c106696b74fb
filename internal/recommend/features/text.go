// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package features

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// tokenPattern matches runs of two or more word characters.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Tokenize lowercases text and returns its tokens with stop words removed,
// in order of appearance.
func Tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	tokens := raw[:0]
	for _, t := range raw {
		if _, stop := stopWords[t]; !stop {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// TFIDF is a fitted term-frequency / inverse-document-frequency model.
type TFIDF struct {
	Vocabulary []string
	index      map[string]int
	idf        []float64
}

// FitTFIDF builds the vocabulary and idf weights over docs. The vocabulary
// is sorted; an empty vocabulary is returned as a model with no columns.
func FitTFIDF(docs []string) *TFIDF {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, t := range Tokenize(doc) {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			df[t]++
		}
	}

	vocab := make([]string, 0, len(df))
	for t := range df {
		vocab = append(vocab, t)
	}
	sort.Strings(vocab)

	n := float64(len(docs))
	m := &TFIDF{
		Vocabulary: vocab,
		index:      make(map[string]int, len(vocab)),
		idf:        make([]float64, len(vocab)),
	}
	for i, t := range vocab {
		m.index[t] = i
		m.idf[i] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}
	return m
}

// Transform encodes docs as L2-normalized tf-idf rows. Unknown terms are
// ignored and a document without known terms is an all-zero row.
func (m *TFIDF) Transform(docs []string) *CSR {
	b := newCSRBuilder(len(m.Vocabulary), len(docs))
	for _, doc := range docs {
		idx, val := m.vectorize(doc)
		b.addRow(idx, val)
	}
	return b.build()
}

func (m *TFIDF) vectorize(doc string) ([]int, []float64) {
	counts := make(map[int]float64)
	for _, t := range Tokenize(doc) {
		if j, ok := m.index[t]; ok {
			counts[j]++
		}
	}

	idx := make([]int, 0, len(counts))
	for j := range counts {
		idx = append(idx, j)
	}
	sort.Ints(idx)

	val := make([]float64, len(idx))
	var norm float64
	for k, j := range idx {
		v := counts[j] * m.idf[j]
		val[k] = v
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for k := range val {
			val[k] /= norm
		}
	}
	return idx, val
}

// CosineSparse returns the cosine similarity of two rows given as sorted
// index/value pairs.
func CosineSparse(ai []int, av []float64, bi []int, bv []float64) float64 {
	var dot, na, nb float64
	for _, v := range av {
		na += v * v
	}
	for _, v := range bv {
		nb += v * v
	}
	if na == 0 || nb == 0 {
		return 0
	}
	for i, j := 0, 0; i < len(ai) && j < len(bi); {
		switch {
		case ai[i] == bi[j]:
			dot += av[i] * bv[j]
			i++
			j++
		case ai[i] < bi[j]:
			i++
		default:
			j++
		}
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// stopWords is the standard English stop word list used for synopsis text.
var stopWords = func() map[string]struct{} {
	words := strings.Fields(`
a about above across after afterwards again against all almost alone along
already also although always am among amongst amoungst amount an and another
any anyhow anyone anything anyway anywhere are around as at back be became
because become becomes becoming been before beforehand behind being below
beside besides between beyond bill both bottom but by call can cannot cant co
con could couldnt cry de describe detail do done down due during each eg eight
either eleven else elsewhere empty enough etc even ever every everyone
everything everywhere except few fifteen fifty fill find fire first five for
former formerly forty found four from front full further get give go had has
hasnt have he hence her here hereafter hereby herein hereupon hers herself him
himself his how however hundred i ie if in inc indeed interest into is it its
itself keep last latter latterly least less ltd made many may me meanwhile
might mill mine more moreover most mostly move much must my myself name namely
neither never nevertheless next nine no nobody none noone nor not nothing now
nowhere of off often on once one only onto or other others otherwise our ours
ourselves out over own part per perhaps please put rather re same see seem
seemed seeming seems serious several she should show side since sincere six
sixty so some somehow someone something sometime sometimes somewhere still
such system take ten than that the their them themselves then thence there
thereafter thereby therefore therein thereupon these they thick thin third
this those though three through throughout thru thus to together too top
toward towards twelve twenty two un under until up upon us very via was we
well were what whatever when whence whenever where whereafter whereas whereby
wherein whereupon wherever whether which while whither who whoever whole whom
whose why will with within without would yet you your yours yourself
yourselves`)
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()
