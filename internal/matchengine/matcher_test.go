package matchengine

import (
	"testing"

	"github.com/sells-group/entity-resolver/internal/criteria"
	"github.com/sells-group/entity-resolver/internal/matchmodel"
)

func twoAgreeOneDisagreeOneUndetermined() []criteria.Criterion {
	return []criteria.Criterion{
		constCriterion{name: "a", weight: 2, verdict: matchmodel.Agree},
		constCriterion{name: "b", weight: 3, verdict: matchmodel.Agree},
		constCriterion{name: "c", weight: 1, verdict: matchmodel.Disagree},
		constCriterion{name: "d", weight: 4, verdict: matchmodel.Undetermined},
	}
}

// constCriterion is a test double that always returns the configured
// verdict regardless of its inputs, so scoring arithmetic can be tested
// without depending on real field comparisons.
type constCriterion struct {
	name    string
	weight  int
	verdict matchmodel.Verdict
}

func (c constCriterion) Name() string   { return c.name }
func (c constCriterion) Weight() int    { return c.weight }
func (c constCriterion) Match(_, _ matchmodel.Company) matchmodel.Verdict {
	return c.verdict
}

func TestCompanyMatcher_NonStrictExcludesUndeterminedFromDenominator(t *testing.T) {
	m := NewCompanyMatcher(twoAgreeOneDisagreeOneUndetermined(), false)
	result, ok := m.Match(matchmodel.Company{}, matchmodel.Company{})
	if !ok {
		t.Fatal("expected a scored match")
	}
	// total = 2+3+1 = 6 (undetermined's weight 4 excluded); success = 2+3 = 5
	want := 5.0 / 6.0
	if result.Score != want {
		t.Errorf("Score = %v, want %v", result.Score, want)
	}
	if len(result.SuccessCriteria) != 2 {
		t.Errorf("SuccessCriteria = %v, want 2 entries", result.SuccessCriteria)
	}
}

func TestCompanyMatcher_StrictIncludesUndeterminedInDenominator(t *testing.T) {
	m := NewCompanyMatcher(twoAgreeOneDisagreeOneUndetermined(), true)
	result, ok := m.Match(matchmodel.Company{}, matchmodel.Company{})
	if !ok {
		t.Fatal("expected a scored match")
	}
	// total = 2+3+1+4 = 10; success = 2+3 = 5
	want := 5.0 / 10.0
	if result.Score != want {
		t.Errorf("Score = %v, want %v", result.Score, want)
	}
}

func TestCompanyMatcher_NonStrictAllUndeterminedYieldsNoMatch(t *testing.T) {
	m := NewCompanyMatcher([]criteria.Criterion{
		constCriterion{name: "a", weight: 1, verdict: matchmodel.Undetermined},
	}, false)
	_, ok := m.Match(matchmodel.Company{}, matchmodel.Company{})
	if ok {
		t.Fatal("expected no match when every criterion is undetermined in non-strict mode")
	}
}

func TestCompanyMatcher_StrictAllUndeterminedStillScoresZero(t *testing.T) {
	m := NewCompanyMatcher([]criteria.Criterion{
		constCriterion{name: "a", weight: 1, verdict: matchmodel.Undetermined},
	}, true)
	result, ok := m.Match(matchmodel.Company{}, matchmodel.Company{})
	if !ok {
		t.Fatal("expected a scored (zero) match in strict mode")
	}
	if result.Score != 0 {
		t.Errorf("Score = %v, want 0", result.Score)
	}
}

func TestCompanyMatcher_IdenticalRecordsScoreOne(t *testing.T) {
	m := NewCompanyMatcher(criteria.DefaultSet(), false)
	c := matchmodel.Company{
		Name: "Acme Corp", Website: "https://acme.com", Phone: "+14155552671",
		Address: "1 Market St", City: "San Francisco", PostalCode: "94105", Country: "US",
	}
	result, ok := m.Match(c, c)
	if !ok {
		t.Fatal("expected a scored match")
	}
	if result.Score != 1 {
		t.Errorf("Score for identical records = %v, want 1", result.Score)
	}
}

func TestCompanyMatcher_ScoreIsSymmetric(t *testing.T) {
	m := NewCompanyMatcher(criteria.DefaultSet(), false)
	a := matchmodel.Company{Name: "Acme Corp", Website: "https://acme.com"}
	b := matchmodel.Company{Name: "Acme Corporation", Website: "https://acme.com"}

	ab, okAB := m.Match(a, b)
	ba, okBA := m.Match(b, a)
	if okAB != okBA {
		t.Fatalf("matched flag differs by argument order: %v vs %v", okAB, okBA)
	}
	if ab.Score != ba.Score {
		t.Errorf("Score not symmetric: Match(a,b)=%v Match(b,a)=%v", ab.Score, ba.Score)
	}
}

func TestCompanyMatcher_MoreAgreementScoresHigher(t *testing.T) {
	m := NewCompanyMatcher(criteria.DefaultSet(), true)
	base := matchmodel.Company{Name: "Acme Corp", Website: "https://acme.com", Phone: "+14155552671"}

	weakMatch, ok := m.Match(base, matchmodel.Company{Name: "Acme Corp"})
	if !ok {
		t.Fatal("expected a scored match for weakMatch")
	}
	strongMatch, ok := m.Match(base, base)
	if !ok {
		t.Fatal("expected a scored match for strongMatch")
	}
	if strongMatch.Score <= weakMatch.Score {
		t.Errorf("expected stronger agreement to score higher: weak=%v strong=%v", weakMatch.Score, strongMatch.Score)
	}
}
