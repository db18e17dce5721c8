package domain

import (
	"math"
	"sort"
	"strings"
)

// Cosine returns the cosine similarity of two vectors, computed over the
// first min(len(a), len(b)) dimensions. Differing lengths are not an error;
// the longer vector is silently truncated. When either vector has zero
// magnitude the denominator is guarded to 1, so the result is 0 rather than
// a division by zero. The accumulation runs in float64 for precision.
func Cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, na, nb float64
	for i := 0; i < n; i++ {
		av := float64(a[i])
		bv := float64(b[i])
		dot += av * bv
		na += av * av
		nb += bv * bv
	}

	denom := math.Sqrt(na) * math.Sqrt(nb)
	if denom == 0 {
		denom = 1
	}
	return dot / denom
}

// RankedDocument pairs a candidate document with its similarity score
// against a query vector.
type RankedDocument struct {
	Document Document
	Score    float64
}

// RankBySimilarity scores every candidate against the query vector, orders
// them by descending score, and truncates to at most k results. Documents
// with a missing embedding score 0 and sort to the bottom but are not
// filtered out. The relative order of equal scores is not defined; it falls
// out of sort.Slice, which is not stable.
func RankBySimilarity(query []float32, docs []Document, k int) []RankedDocument {
	ranked := make([]RankedDocument, len(docs))
	for i, d := range docs {
		ranked[i] = RankedDocument{Document: d, Score: Cosine(query, d.Embedding)}
	}

	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if k >= 0 && len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}

// BuildContext assembles the context block handed to the answer synthesiser:
// one "# <title>\n<content>" section per document, separated by blank lines,
// in the given order.
func BuildContext(docs []Document) string {
	var b strings.Builder
	for i, d := range docs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("# ")
		b.WriteString(d.Title)
		b.WriteString("\n")
		b.WriteString(d.Content)
	}
	return b.String()
}

// RoundScore rounds a similarity score to four decimal places for reporting.
func RoundScore(s float64) float64 {
	return math.Round(s*10000) / 10000
}
