package criteria

// DefaultSet returns the five-criterion configuration documented as the
// production default: domain 5, name 3, address 3, phone 3, name-contained
// 1. Callers that want a different name weight (3-5 is the documented
// range) or a custom criterion list construct their own slice instead of
// calling this.
func DefaultSet() []Criterion {
	return []Criterion{
		NewDomainNameCriterion(5),
		NewNameCriterion(3),
		NewAddressCriterion(3),
		NewPhoneCriterion(3),
		NewNameContainedCriterion(1),
	}
}
