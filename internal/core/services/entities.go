package services

import (
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/filings-cli/internal/core/domain"
)

var queryYear = regexp.MustCompile(`\b(?:199\d|20\d{2})\b`)

// EntityDetector finds configured companies mentioned in a question.
type EntityDetector struct {
	entities []entityRule
}

type entityRule struct {
	id string
	re *regexp.Regexp
}

// NewEntityDetector builds word-boundary matchers for every entity. The
// identifier itself always counts as an alias.
func NewEntityDetector(entities []domain.EntitySettings) *EntityDetector {
	d := &EntityDetector{}
	for _, e := range entities {
		id := strings.TrimSpace(e.ID)
		if id == "" {
			continue
		}
		alts := []string{regexp.QuoteMeta(id)}
		for _, a := range e.Aliases {
			if a = strings.TrimSpace(a); a != "" {
				alts = append(alts, regexp.QuoteMeta(a))
			}
		}
		d.entities = append(d.entities, entityRule{
			id: strings.ToUpper(id),
			re: regexp.MustCompile(`(?i)\b(?:` + strings.Join(alts, "|") + `)\b`),
		})
	}
	return d
}

// Detect returns the IDs of entities in text, ordered by first mention.
func (d *EntityDetector) Detect(text string) []string {
	type hit struct {
		id  string
		pos int
	}
	var hits []hit
	for _, e := range d.entities {
		if loc := e.re.FindStringIndex(text); loc != nil {
			hits = append(hits, hit{id: e.id, pos: loc[0]})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	seen := make(map[string]bool, len(hits))
	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		if !seen[h.id] {
			seen[h.id] = true
			ids = append(ids, h.id)
		}
	}
	return ids
}

// DetectYears returns the distinct four-digit years in text, in order.
func DetectYears(text string) []string {
	var years []string
	seen := make(map[string]bool)
	for _, y := range queryYear.FindAllString(text, -1) {
		if !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	return years
}
