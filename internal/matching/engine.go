package matching

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/tlemaire/jobmarket/internal/domain/models"
	"github.com/tlemaire/jobmarket/internal/normalize"
)

// Weights control how many times each field is repeated inside the
// composite document of an offer. A field left empty contributes
// nothing regardless of its weight.
type Weights struct {
	Title       int
	Location    int
	Description int
}

// Match is one scored offer. Score is the cosine similarity between the
// query vector and the offer's composite document, in [0, 1].
type Match struct {
	Offer models.CanonicalOffer
	Score float64
}

// Engine is an immutable tf-idf vector space over one batch of offers.
// Rebuilding on a new batch means constructing a new Engine and swapping
// the pointer; a built Engine is safe for concurrent readers.
type Engine struct {
	offers  []models.CanonicalOffer
	vocab   map[string]int
	idf     []float64
	vectors []map[int]float64
}

var tokenPattern = regexp.MustCompile(`\b\w\w+\b`)

func tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// NewEngine fits the vector space: composite documents are tokenized,
// idf uses smoothing so unseen terms never divide by zero, and every
// document vector is L2-normalized so cosine similarity reduces to a
// dot product.
func NewEngine(offers []models.CanonicalOffer, weights Weights) *Engine {

	e := &Engine{
		offers: offers,
		vocab:  map[string]int{},
	}

	docs := make([][]string, len(offers))
	for i, offer := range offers {
		tokens := tokenize(compositeDocument(offer, weights))
		docs[i] = tokens
		for _, token := range tokens {
			if _, ok := e.vocab[token]; !ok {
				e.vocab[token] = len(e.vocab)
			}
		}
	}

	docFreq := make([]int, len(e.vocab))
	for _, tokens := range docs {
		seen := map[int]bool{}
		for _, token := range tokens {
			seen[e.vocab[token]] = true
		}
		for term := range seen {
			docFreq[term]++
		}
	}

	n := float64(len(docs))
	e.idf = make([]float64, len(e.vocab))
	for term, df := range docFreq {
		e.idf[term] = math.Log((1+n)/(1+float64(df))) + 1
	}

	e.vectors = make([]map[int]float64, len(docs))
	for i, tokens := range docs {
		e.vectors[i] = e.vectorize(tokens)
	}

	return e
}

// compositeDocument concatenates the normalized fields, each repeated
// per its weight.
func compositeDocument(offer models.CanonicalOffer, weights Weights) string {

	var parts []string
	repeat := func(text string, times int) {
		if text == "" || times <= 0 {
			return
		}
		for i := 0; i < times; i++ {
			parts = append(parts, text)
		}
	}

	repeat(normalize.Lexical(offer.Title), weights.Title)
	repeat(normalize.Lexical(offer.Location), weights.Location)
	repeat(normalize.Lexical(offer.Description), weights.Description)

	return strings.Join(parts, " ")
}

// vectorize builds an L2-normalized sparse tf-idf vector. Tokens outside
// the vocabulary are dropped.
func (e *Engine) vectorize(tokens []string) map[int]float64 {

	vector := map[int]float64{}
	for _, token := range tokens {
		term, ok := e.vocab[token]
		if !ok {
			continue
		}
		vector[term]++
	}

	var sumSquares float64
	for term, tf := range vector {
		weighted := tf * e.idf[term]
		vector[term] = weighted
		sumSquares += weighted * weighted
	}

	if sumSquares == 0 {
		return vector
	}
	norm := math.Sqrt(sumSquares)
	for term := range vector {
		vector[term] /= norm
	}
	return vector
}

// Search scores every offer against the query, keeps scores at or above
// threshold, orders them best first, truncates to topN, and finally
// drops offers without a resolved location. The order of equal scores
// follows document order.
func (e *Engine) Search(query string, topN int, threshold float64) []Match {

	queryVector := e.vectorize(tokenize(normalize.Lexical(query)))

	var matches []Match
	for i, docVector := range e.vectors {
		score := dot(queryVector, docVector)
		if score >= threshold {
			matches = append(matches, Match{Offer: e.offers[i], Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if topN > 0 && len(matches) > topN {
		matches = matches[:topN]
	}

	located := matches[:0]
	for _, match := range matches {
		if match.Offer.Location != "" {
			located = append(located, match)
		}
	}
	return located
}

func dot(a, b map[int]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for term, weight := range a {
		sum += weight * b[term]
	}
	return sum
}

// Offers returns the batch this engine was built on, in document order.
func (e *Engine) Offers() []models.CanonicalOffer {
	return e.offers
}

func (e *Engine) Size() int {
	return len(e.offers)
}
