package usecase

import "github.com/compliancelens/backend/internal/domain"

// nonCompliantBelow is the confidence percentage under which a defective
// record is labelled Non-Compliant rather than Partial-Compliant
const nonCompliantBelow = 50

// Label combines the raw issues field and the predicted probability.
// A record with no issues is Compliant whatever the model says; otherwise
// the probability decides between Non-Compliant and Partial-Compliant.
func Label(issues string, probability float64) domain.ComplianceStatus {
	switch {
	case issues == domain.IssuesOK:
		return domain.StatusCompliant
	case probability*100 < nonCompliantBelow:
		return domain.StatusNonCompliant
	default:
		return domain.StatusPartialCompliant
	}
}
