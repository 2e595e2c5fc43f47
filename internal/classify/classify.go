// Package classify decides public-domain eligibility for parsed candidates.
package classify

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/openshelf/gutenlist/internal/model"
)

// Verifier confirms public-domain status from a remote source. Implementations
// are best-effort: an error or a false result both leave the candidate
// unconfirmed.
type Verifier interface {
	Confirm(ctx context.Context, id string) (bool, error)
}

// Classifier applies the eligibility rule. A nil Verifier disables fallback
// verification entirely; no remote call is ever made without one.
type Classifier struct {
	CutoffYear int
	Verifier   Verifier
}

// Result is the outcome of classifying one candidate.
type Result struct {
	Eligible        bool
	RightsConfirmed bool
}

// Classify evaluates the rule in order: an explicit rights statement wins
// outright, then the year cutoff, then (when enabled) fallback verification.
// Verifier failures are non-fatal and fall through to Ineligible; no retry.
func (c *Classifier) Classify(ctx context.Context, cand model.Candidate) Result {
	if rightsConfirmed(cand.RightsTexts) {
		return Result{Eligible: true, RightsConfirmed: true}
	}

	if cand.Year != nil && *cand.Year <= c.CutoffYear {
		return Result{Eligible: true}
	}

	if c.Verifier != nil {
		ok, err := c.Verifier.Confirm(ctx, cand.ID)
		if err != nil {
			zap.L().Debug("classify: fallback verification failed",
				zap.String("id", cand.ID),
				zap.Error(err),
			)
		} else if ok {
			return Result{Eligible: true, RightsConfirmed: true}
		}
	}

	return Result{}
}

// rightsConfirmed scans the rights statements for an explicit public-domain
// declaration.
func rightsConfirmed(texts []string) bool {
	for _, t := range texts {
		if strings.Contains(strings.ToLower(t), "public domain") {
			return true
		}
	}
	return false
}
