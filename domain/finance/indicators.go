package finance

import (
	"portfolio/domain"
)

type AlertStatus string

const (
	AlertNormal   AlertStatus = "NORMAL"
	AlertWarning  AlertStatus = "WARNING"
	AlertCritical AlertStatus = "CRITICAL"
)

// Indicator is a derived reporting view over the entry's cumulative monetary
// fields. It is recomputed on every read and never persisted.
type Indicator struct {
	TotalValue float64 `json:"totalValue"`

	RemainingImplementation float64 `json:"remainingImplementation"`
	RemainingAcceptance     float64 `json:"remainingAcceptance"`
	RemainingDisbursement   float64 `json:"remainingDisbursement"`
	RemainingPayment        float64 `json:"remainingPayment"`

	ImplementationProgressRatio float64 `json:"implementationProgressRatio"`
	AcceptanceProgressRatio     float64 `json:"acceptanceProgressRatio"`
	DisbursementProgressRatio   float64 `json:"disbursementProgressRatio"`
	PaymentProgressRatio        float64 `json:"paymentProgressRatio"`

	BudgetAlertStatus  AlertStatus `json:"budgetAlertStatus"`
	PaymentAlertStatus AlertStatus `json:"paymentAlertStatus"`
}

// ComputeIndicator is total for non-negative inputs; negative inputs are clamped
// to zero since the cumulative fields are externally owned ledger data, not ours
// to reject.
func ComputeIndicator(entry *domain.CatalogEntry, thresholds AlertThresholds) Indicator {
	total := clamp(entry.TotalValue)
	implementation := clamp(entry.CumulativeImplementation)
	acceptance := clamp(entry.CumulativeAcceptance)
	disbursement := clamp(entry.CumulativeDisbursement)
	payment := clamp(entry.CumulativePayment)

	ind := Indicator{
		TotalValue: total,

		RemainingImplementation: remaining(total, implementation),
		RemainingAcceptance:     remaining(total, acceptance),
		RemainingDisbursement:   remaining(total, disbursement),
		RemainingPayment:        remaining(total, payment),

		ImplementationProgressRatio: ratio(implementation, total),
		AcceptanceProgressRatio:     ratio(acceptance, total),
		DisbursementProgressRatio:   ratio(disbursement, total),
		PaymentProgressRatio:        ratio(payment, total),
	}
	ind.BudgetAlertStatus = thresholds.StatusOf(ind.DisbursementProgressRatio)
	ind.PaymentAlertStatus = thresholds.StatusOf(ind.PaymentProgressRatio)
	return ind
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// over-execution clamps to zero remaining, the excess is not modeled
func remaining(total, cumulative float64) float64 {
	r := total - cumulative
	if r < 0 {
		return 0
	}
	return r
}

// ratio reports 0 when the total is zero, never an error
func ratio(cumulative, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return cumulative / total * 100
}
