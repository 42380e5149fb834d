// Package questions selects technical questions from a candidate's declared
// tech stack by keyword matching.
package questions

import (
	"strings"
)

// MaxQuestions caps how many questions a candidate is asked.
const MaxQuestions = 5

// Provider returns the ordered technical questions for a tech stack answer.
type Provider interface {
	Questions(techstack string) []string
}

// Bucket is a group of questions triggered by any of its keywords.
type Bucket struct {
	Name      string
	Keywords  []string
	Questions []string
}

func (b Bucket) matches(normalized string) bool {
	for _, kw := range b.Keywords {
		if strings.Contains(normalized, kw) {
			return true
		}
	}
	return false
}

// KeywordProvider matches lowercase substrings against an ordered bucket table.
type KeywordProvider struct {
	buckets  []Bucket
	fallback []string
	limit    int
}

// NewKeywordProvider builds a provider over buckets, in priority order.
// fallback is used when no bucket matches; limit <= 0 means MaxQuestions.
func NewKeywordProvider(buckets []Bucket, fallback []string, limit int) *KeywordProvider {
	if limit <= 0 {
		limit = MaxQuestions
	}
	return &KeywordProvider{
		buckets:  buckets,
		fallback: fallback,
		limit:    limit,
	}
}

// Default returns the provider backed by the built-in question table.
func Default() *KeywordProvider {
	return NewKeywordProvider(DefaultBuckets, GenericQuestions, MaxQuestions)
}

// Questions implements Provider.
func (p *KeywordProvider) Questions(techstack string) []string {
	normalized := strings.ToLower(techstack)

	var out []string
	for _, b := range p.buckets {
		if b.matches(normalized) {
			out = append(out, b.Questions...)
		}
	}
	if len(out) == 0 {
		out = append(out, p.fallback...)
	}
	if len(out) > p.limit {
		out = out[:p.limit]
	}
	return out
}

// Ensure KeywordProvider implements Provider.
var _ Provider = (*KeywordProvider)(nil)
