// Package matchengine implements the matching core: the CompanyMatcher
// scoring rule, the bounded worker pool that fans comparisons out, and the
// SourcesMatcher that drives the cartesian product of two sources through
// it.
package matchengine

import (
	"github.com/sells-group/entity-resolver/internal/criteria"
	"github.com/sells-group/entity-resolver/internal/matchmodel"
)

// CompanyMatcher aggregates a list of criteria into a weighted score for
// one pair of companies.
type CompanyMatcher struct {
	criteria []criteria.Criterion
	strict   bool
}

// NewCompanyMatcher builds a matcher over the given criteria. strict
// selects the denominator policy documented in §4.3: strict counts every
// criterion including undetermined ones, non-strict counts only
// agree/disagree. A nil criteria slice falls back to criteria.DefaultSet.
func NewCompanyMatcher(criterionSet []criteria.Criterion, strict bool) *CompanyMatcher {
	if criterionSet == nil {
		criterionSet = criteria.DefaultSet()
	}
	return &CompanyMatcher{criteria: criterionSet, strict: strict}
}

// Match scores one pair. The second return value is false when the
// denominator is zero — every criterion was undetermined in non-strict
// mode — in which case the CompanyMatch is meaningless and the caller must
// treat the pair as skipped rather than read Score.
func (m *CompanyMatcher) Match(one, two matchmodel.Company) (matchmodel.CompanyMatch, bool) {
	var totalWeight, successWeight int
	var successes []string

	for _, c := range m.criteria {
		verdict := c.Match(one, two)

		if m.strict || verdict != matchmodel.Undetermined {
			totalWeight += c.Weight()
		}
		if verdict == matchmodel.Agree {
			successWeight += c.Weight()
			successes = append(successes, c.Name())
		}
	}

	if totalWeight == 0 {
		return matchmodel.CompanyMatch{}, false
	}

	return matchmodel.CompanyMatch{
		CompanyA:        one,
		CompanyB:        two,
		Score:           float64(successWeight) / float64(totalWeight),
		SuccessCriteria: successes,
	}, true
}
