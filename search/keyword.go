package search

import (
	"regexp"
	"sort"
	"strings"

	"github.com/poiesic/docquery/core"
)

// Terms shorter than this are too ambiguous to match on.
const minTermLength = 3

// Excerpt blocks at or below this length carry too little context to show.
const minExcerptLength = 50

var blankLines = regexp.MustCompile(`\n{2,}`)

// KeywordResult is a document matched by keyword search.
type KeywordResult struct {
	// Document is the matched document.
	Document *core.Document

	// Score is the total number of query term occurrences in the document.
	Score int

	// Excerpts are up to three paragraph-sized blocks containing query terms,
	// in document order.
	Excerpts []string
}

// KeywordSearch ranks documents by query term frequency. It is the retrieval
// tier used when query embeddings are unavailable.
//
// Query terms are the lowercased whitespace-separated words of at least
// three characters. A document's score is the total occurrence count of all
// terms in its lowercased content; documents scoring zero are omitted.
// Excerpts are the document's blank-line-separated blocks longer than 50
// characters that contain a term, capped at three per document. Results are
// ordered by score descending (ties in document list order), capped at limit.
func KeywordSearch(query string, documents []*core.Document, limit int) []*KeywordResult {
	terms := queryTerms(query)
	if len(terms) == 0 || limit < 1 {
		return nil
	}

	results := make([]*KeywordResult, 0, len(documents))
	for _, document := range documents {
		if document == nil || document.Content == "" {
			continue
		}

		content := strings.ToLower(document.Content)
		blocks := excerptBlocks(document.Content)

		score := 0
		var excerpts []string
		for _, term := range terms {
			score += strings.Count(content, term)

			for _, block := range blocks {
				if strings.Contains(strings.ToLower(block), term) && !containsString(excerpts, block) {
					excerpts = append(excerpts, block)
				}
			}
		}

		if score > 0 {
			if len(excerpts) > 3 {
				excerpts = excerpts[:3]
			}
			results = append(results, &KeywordResult{
				Document: document,
				Score:    score,
				Excerpts: excerpts,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// queryTerms extracts the searchable terms from a query.
func queryTerms(query string) []string {
	words := strings.Fields(strings.ToLower(query))
	terms := make([]string, 0, len(words))
	for _, word := range words {
		if len(word) >= minTermLength {
			terms = append(terms, word)
		}
	}
	return terms
}

// excerptBlocks splits content into paragraph blocks suitable as excerpts.
func excerptBlocks(content string) []string {
	parts := blankLines.Split(content, -1)
	blocks := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if len(trimmed) > minExcerptLength {
			blocks = append(blocks, trimmed)
		}
	}
	return blocks
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
