package enrichment

import (
	"fmt"
	"net/url"
	"strings"

	types "github.com/yungbote/wandergraph-backend/internal/domain"
)

// Validate checks a merged record against the field contracts. Violations
// are collected as strings rather than raised: a bad field should not block
// ingestion of the fields that are fine.
func Validate(m types.MergedEnrichment) []string {
	var errs []string

	if m.Rating != nil && (*m.Rating < 0 || *m.Rating > 5) {
		errs = append(errs, fmt.Sprintf("rating out of range [0,5]: %v", *m.Rating))
	}
	if m.PriceLevel != nil && (*m.PriceLevel < 0 || *m.PriceLevel > 4) {
		errs = append(errs, fmt.Sprintf("price_level out of range [0,4]: %d", *m.PriceLevel))
	}
	if m.Confidence < 0 || m.Confidence > 1 {
		errs = append(errs, fmt.Sprintf("confidence out of range [0,1]: %v", m.Confidence))
	}
	if m.Website != "" && !isAbsoluteURL(m.Website) {
		errs = append(errs, fmt.Sprintf("website is not an absolute URL: %s", m.Website))
	}

	return errs
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return u.IsAbs() && u.Host != ""
}
