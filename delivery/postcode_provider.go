package delivery

import (
	"context"
	"sort"
	"strings"

	"takeaway-backend/models"
	"takeaway-backend/postcode"
)

// PostcodeProvider charges the fee of the longest postcode prefix that matches.
type PostcodeProvider struct{}

func (PostcodeProvider) Quote(_ context.Context, cfg *models.StoreConfig, req Request) (Decision, error) {
	return quotePostcode(cfg.PostcodeRules, req), nil
}

func quotePostcode(rules models.PostcodeRules, req Request) Decision {
	normalized := strings.ToUpper(strings.TrimSpace(req.Postcode))
	if rules.NormalizeUKPostcode {
		normalized = postcode.Normalize(req.Postcode)
	}

	debug := map[string]any{
		"engine":              string(models.RuleTypePostcode),
		"normalized_postcode": normalized,
	}

	if !postcode.IsValidFormat(normalized) {
		return rejected(ReasonInvalidPostcode, debug)
	}

	minOrderPence := toPence(rules.DefaultMinOrderThreshold)

	area, ok := longestPrefixMatch(rules.Areas, normalized)
	if !ok {
		d := rejected(ReasonOutOfArea, debug)
		d.MinOrderPence = minOrderPence
		return d
	}

	fee := toPence(area.Fee)
	var surcharge int64
	if fromPence(req.SubtotalPence).LessThan(rules.DefaultMinOrderThreshold) {
		surcharge = toPence(rules.DefaultExtraFeeIfBelowThreshold)
	}

	debug["matched_pattern"] = area.Pattern
	debug["base_fee_pence"] = fee
	debug["surcharge_pence"] = surcharge

	zone := area.Pattern
	return Decision{
		IsDeliverable: true,
		FeePence:      fee + surcharge,
		MinOrderPence: minOrderPence,
		Zone:          &zone,
		Debug:         debug,
	}
}

// longestPrefixMatch returns the most specific area whose pattern prefixes pc.
// Patterns of equal length keep their configured order.
func longestPrefixMatch(areas []models.PostcodeArea, pc string) (models.PostcodeArea, bool) {
	sorted := make([]models.PostcodeArea, len(areas))
	copy(sorted, areas)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Pattern) > len(sorted[j].Pattern)
	})

	for _, a := range sorted {
		if strings.HasPrefix(pc, strings.ToUpper(a.Pattern)) {
			return a, true
		}
	}
	return models.PostcodeArea{}, false
}
