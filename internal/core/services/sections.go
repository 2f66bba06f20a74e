package services

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/custodia-labs/filings-cli/internal/core/domain"
)

// sectionRule is a compiled boundary pattern.
type sectionRule struct {
	pattern domain.SectionPattern
	re      *regexp.Regexp
	order   int
}

// SectionMatcher finds section boundaries in cleaned filing text.
type SectionMatcher struct {
	rules []sectionRule
}

// NewSectionMatcher compiles the boundary table. Table order breaks ties
// between patterns that match at the same offset.
func NewSectionMatcher(patterns []domain.SectionPattern) (*SectionMatcher, error) {
	rules := make([]sectionRule, 0, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: section %s: %v", domain.ErrInvalidConfig, p.Tag, err)
		}
		rules = append(rules, sectionRule{pattern: p, re: re, order: i})
	}
	return &SectionMatcher{rules: rules}, nil
}

type boundary struct {
	offset int
	order  int
	tag    string
}

// Detect splits text into tagged spans covering all of it, in order.
// Text before the first boundary is tagged UNSECTIONED. Text with no
// boundaries yields a single UNSECTIONED span.
func (m *SectionMatcher) Detect(text, filingType string) []domain.SectionSpan {
	if text == "" {
		return nil
	}

	var bounds []boundary
	for _, r := range m.rules {
		if !r.pattern.AppliesTo(filingType) {
			continue
		}
		for _, loc := range r.re.FindAllStringIndex(text, -1) {
			bounds = append(bounds, boundary{offset: loc[0], order: r.order, tag: r.pattern.Tag})
		}
	}

	sort.Slice(bounds, func(i, j int) bool {
		if bounds[i].offset != bounds[j].offset {
			return bounds[i].offset < bounds[j].offset
		}
		return bounds[i].order < bounds[j].order
	})

	var spans []domain.SectionSpan
	start, tag := 0, domain.Unsectioned
	claimed := false
	for _, b := range bounds {
		if b.offset == start {
			// The first pattern in table order owns a shared offset.
			if !claimed {
				tag, claimed = b.tag, true
			}
			continue
		}
		spans = append(spans, domain.SectionSpan{Tag: tag, Start: start, End: b.offset})
		start, tag, claimed = b.offset, b.tag, true
	}
	spans = append(spans, domain.SectionSpan{Tag: tag, Start: start, End: len(text)})

	return spans
}
