package services

import (
	"math"

	"github.com/custodia-labs/filings-cli/internal/core/domain"
)

// EvidenceConfidence scores a pooled evidence set before it is capped.
//
// The top score is scaled by a base of 0.4, up to 0.3 for diversity of
// (company, section) pairs and up to 0.3 for evidence volume, then by the
// share of sub-queries that succeeded. An empty pool scores 0.
func EvidenceConfidence(pooled []domain.EvidenceItem, succeeded, issued int) float64 {
	if len(pooled) == 0 || issued <= 0 || succeeded <= 0 {
		return 0
	}

	top := 0.0
	chunks := make(map[string]bool, len(pooled))
	pairs := make(map[[2]string]bool)
	for _, item := range pooled {
		top = math.Max(top, item.Score)
		chunks[item.ChunkID] = true
		pairs[[2]string{item.Metadata.Company, item.Metadata.SectionTag}] = true
	}

	s := domain.ClampConfidence(top)
	n := float64(len(chunks))
	d := float64(len(pairs))
	c := float64(succeeded) / float64(issued)

	diversity := 1 - math.Pow(0.5, d)
	volume := n / (n + 2)

	return domain.ClampConfidence(s * (0.4 + 0.3*diversity + 0.3*volume) * c)
}
