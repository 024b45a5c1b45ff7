package verify

import (
	"context"

	"veridoc/internal/domain"
)

// ConsistencyChecker compares a passport record against a drivers license
// record for same-person consistency.
type ConsistencyChecker struct {
	names NameMatcher
}

// NewConsistencyChecker creates a checker using the given name matcher; nil
// selects the exact token-set matcher.
func NewConsistencyChecker(names NameMatcher) *ConsistencyChecker {
	if names == nil {
		names = ExactTokenSetMatcher{}
	}
	return &ConsistencyChecker{names: names}
}

// Check emits exactly two outcomes: consistency:name and consistency:dob.
// Names pass when the configured matcher accepts them; dates of birth pass
// when both sides parse under the flexible format list and are
// calendar-equal.
func (c *ConsistencyChecker) Check(ctx context.Context, passport, license domain.FieldRecord) []domain.CheckResult {
	nameStatus := domain.CheckFail
	if c.names.Match(ctx, passport.Get(domain.FieldName), license.Get(domain.FieldName)) {
		nameStatus = domain.CheckPass
	}

	dobStatus := domain.CheckFail
	pDOB, pOK := parseFlexibleDate(passport.Get(domain.FieldDOB))
	lDOB, lOK := parseFlexibleDate(license.Get(domain.FieldDOB))
	if pOK && lOK && sameDay(pDOB, lDOB) {
		dobStatus = domain.CheckPass
	}

	return []domain.CheckResult{
		{Name: "consistency:name", Status: nameStatus},
		{Name: "consistency:dob", Status: dobStatus},
	}
}
