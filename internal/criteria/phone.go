package criteria

import (
	"github.com/sells-group/entity-resolver/internal/matchmodel"
	"github.com/sells-group/entity-resolver/internal/normalize"
)

// PhoneCriterion compares the E.164 form of each company's phone number,
// using the company's country field as a parse hint when a bare
// international parse fails. Default weight 3.
type PhoneCriterion struct {
	weight int
}

// NewPhoneCriterion builds the phone criterion.
func NewPhoneCriterion(weight int) *PhoneCriterion {
	return &PhoneCriterion{weight: weight}
}

func (p *PhoneCriterion) Name() string { return "PhoneCriterion" }
func (p *PhoneCriterion) Weight() int  { return p.weight }

func (p *PhoneCriterion) Match(one, two matchmodel.Company) matchmodel.Verdict {
	na, ok := p.normalized(one)
	if !ok {
		return matchmodel.Undetermined
	}
	nb, ok := p.normalized(two)
	if !ok {
		return matchmodel.Undetermined
	}
	if na == nb {
		return matchmodel.Agree
	}
	return matchmodel.Disagree
}

func (p *PhoneCriterion) normalized(c matchmodel.Company) (string, bool) {
	if c.Phone == "" {
		return "", false
	}
	e164, err := normalize.Phone(c.Phone, c.Country)
	if err != nil {
		return "", false
	}
	return e164, true
}
