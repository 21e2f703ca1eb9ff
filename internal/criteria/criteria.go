// Package criteria implements the three-valued comparison tests the
// matching engine aggregates into a score. Every criterion fails with
// Undetermined when a field is missing on either side, never with
// Disagree — missing data must not be read as a mismatch.
package criteria

import (
	"strings"

	"github.com/sells-group/entity-resolver/internal/matchmodel"
	"github.com/sells-group/entity-resolver/internal/normalize"
)

// Criterion is the capability every matching test implements: a stable
// Name used in CompanyMatch.SuccessCriteria, a positive Weight, and a Match
// operation returning one of {Agree, Disagree, Undetermined}.
type Criterion interface {
	Name() string
	Weight() int
	Match(a, b matchmodel.Company) matchmodel.Verdict
}

// FieldExtractor pulls one text field off a Company.
type FieldExtractor func(c matchmodel.Company) string

// Comparator decides whether two normalized field values agree. It is
// given already-normalized strings.
type Comparator func(one, two string) bool

// equalComparator is the default agreement rule: normalized equality.
func equalComparator(one, two string) bool { return one == two }

// FieldCriterion is a generic "extract one field, normalize it, compare"
// criterion parameterized by field accessor, normalizer, and comparator.
// NameContainedCriterion and PostalCodeCriterion are built on top of it
// rather than duplicating the extraction/undetermined plumbing; composition
// over a class hierarchy is the approach this package follows throughout.
type FieldCriterion struct {
	name      string
	weight    int
	extract   FieldExtractor
	normalize func(string) string
	compare   Comparator
}

// NewFieldCriterion builds a FieldCriterion that compares a single field
// for normalized equality.
func NewFieldCriterion(name string, weight int, extract FieldExtractor) *FieldCriterion {
	return &FieldCriterion{
		name:      name,
		weight:    weight,
		extract:   extract,
		normalize: normalize.Text,
		compare:   equalComparator,
	}
}

// WithNormalizer overrides the default text normalizer (used by
// PostalCodeCriterion for its trailing-".0" stripping).
func (f *FieldCriterion) WithNormalizer(n func(string) string) *FieldCriterion {
	f.normalize = n
	return f
}

// WithComparator overrides the default equality comparator (used by
// NameContainedCriterion for its substring rule).
func (f *FieldCriterion) WithComparator(c Comparator) *FieldCriterion {
	f.compare = c
	return f
}

func (f *FieldCriterion) Name() string { return f.name }
func (f *FieldCriterion) Weight() int  { return f.weight }

func (f *FieldCriterion) Match(a, b matchmodel.Company) matchmodel.Verdict {
	va, ok := f.extractNormalized(a)
	if !ok {
		return matchmodel.Undetermined
	}
	vb, ok := f.extractNormalized(b)
	if !ok {
		return matchmodel.Undetermined
	}
	if f.compare(va, vb) {
		return matchmodel.Agree
	}
	return matchmodel.Disagree
}

func (f *FieldCriterion) extractNormalized(c matchmodel.Company) (string, bool) {
	raw := f.extract(c)
	if raw == "" {
		return "", false
	}
	return f.normalize(raw), true
}

// NewNameCriterion builds the name-equality criterion ("FieldCriterion:name"
// in the original nomenclature): compares the normalized company name.
// Weight defaults to 3 but is commonly configured up to 5.
func NewNameCriterion(weight int) *FieldCriterion {
	return NewFieldCriterion("FieldCriterion:name", weight, func(c matchmodel.Company) string { return c.Name })
}

// NewNameContainedCriterion matches when one normalized company name is a
// substring of the other. Default weight 1.
func NewNameContainedCriterion(weight int) *FieldCriterion {
	f := NewFieldCriterion("NameContainedCriterion", weight, func(c matchmodel.Company) string { return c.Name })
	return f.WithComparator(func(one, two string) bool {
		return strings.Contains(one, two) || strings.Contains(two, one)
	})
}

// NewPostalCodeCriterion compares normalized postal codes. Default weight 1.
func NewPostalCodeCriterion(weight int) *FieldCriterion {
	f := NewFieldCriterion("PostalCodeCriterion", weight, func(c matchmodel.Company) string { return c.PostalCode })
	return f.WithNormalizer(normalize.PostalCode)
}

// newAddressFieldCriterion builds the bare "address" line field used as one
// of AddressCriterion's four children. It has no stable name of its own in
// success_criteria since it only ever appears nested inside AddressCriterion.
func newAddressFieldCriterion(weight int) *FieldCriterion {
	return NewFieldCriterion("AddressCriterion:address", weight, func(c matchmodel.Company) string { return c.Address })
}

func newCityFieldCriterion(weight int) *FieldCriterion {
	return NewFieldCriterion("AddressCriterion:city", weight, func(c matchmodel.Company) string { return c.City })
}

func newCountryFieldCriterion(weight int) *FieldCriterion {
	return NewFieldCriterion("AddressCriterion:country", weight, func(c matchmodel.Company) string { return c.Country })
}

// NewDomainNameCriterion compares the registrable domain extracted from the
// website field. Default weight 5.
func NewDomainNameCriterion(weight int) *FieldCriterion {
	f := NewFieldCriterion("DomainNameCriterion", weight, func(c matchmodel.Company) string { return c.Website })
	return f.WithNormalizer(normalize.Domain)
}
