package criteria

import "github.com/sells-group/entity-resolver/internal/matchmodel"

// AddressCriterion is a match only if all four of its children — address
// line, postal code, city, and country — agree. Any child reporting
// Disagree or Undetermined is propagated unchanged: an address is stricter
// evidence than its parts, but it still respects the missing-data-is-not-
// disagreement policy the rest of the package follows.
type AddressCriterion struct {
	weight   int
	children []Criterion
}

// NewAddressCriterion builds the composite address criterion. Default
// weight 3; each child carries weight 1 internally but only the parent's
// weight is counted by the matcher, since children never appear in
// success_criteria on their own.
func NewAddressCriterion(weight int) *AddressCriterion {
	return &AddressCriterion{
		weight: weight,
		children: []Criterion{
			newAddressFieldCriterion(1),
			NewPostalCodeCriterion(1),
			newCityFieldCriterion(1),
			newCountryFieldCriterion(1),
		},
	}
}

func (a *AddressCriterion) Name() string { return "AddressCriterion" }
func (a *AddressCriterion) Weight() int  { return a.weight }

func (a *AddressCriterion) Match(one, two matchmodel.Company) matchmodel.Verdict {
	for _, child := range a.children {
		if v := child.Match(one, two); v != matchmodel.Agree {
			return v
		}
	}
	return matchmodel.Agree
}
