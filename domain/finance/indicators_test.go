package finance_test

import (
	"portfolio/domain"
	"portfolio/domain/finance"
	"testing"

	. "github.com/onsi/gomega"
)

func TestComputeIndicator(t *testing.T) {
	RegisterTestingT(t)

	thresholds := finance.DefaultThresholds

	t.Run("should compute remaining values and progress ratios", func(t *testing.T) {
		entry := &domain.CatalogEntry{
			TotalValue:               1000,
			CumulativeImplementation: 250,
			CumulativeAcceptance:     100,
			CumulativeDisbursement:   800,
			CumulativePayment:        950,
		}
		ind := finance.ComputeIndicator(entry, thresholds)

		Expect(ind.TotalValue).To(Equal(float64(1000)))
		Expect(ind.RemainingImplementation).To(Equal(float64(750)))
		Expect(ind.RemainingAcceptance).To(Equal(float64(900)))
		Expect(ind.RemainingDisbursement).To(Equal(float64(200)))
		Expect(ind.RemainingPayment).To(Equal(float64(50)))

		Expect(ind.ImplementationProgressRatio).To(Equal(float64(25)))
		Expect(ind.AcceptanceProgressRatio).To(Equal(float64(10)))
		Expect(ind.DisbursementProgressRatio).To(Equal(float64(80)))
		Expect(ind.PaymentProgressRatio).To(Equal(float64(95)))

		Expect(ind.BudgetAlertStatus).To(Equal(finance.AlertWarning))
		Expect(ind.PaymentAlertStatus).To(Equal(finance.AlertCritical))
	})

	t.Run("over-executed entry should clamp remaining to zero, not negative", func(t *testing.T) {
		entry := &domain.CatalogEntry{TotalValue: 100, CumulativeDisbursement: 150}
		ind := finance.ComputeIndicator(entry, thresholds)

		Expect(ind.RemainingDisbursement).To(Equal(float64(0)))
		Expect(ind.DisbursementProgressRatio).To(Equal(float64(150)))
		Expect(ind.BudgetAlertStatus).To(Equal(finance.AlertCritical))
	})

	t.Run("zero total should yield zero ratios, never a division error", func(t *testing.T) {
		entry := &domain.CatalogEntry{TotalValue: 0, CumulativePayment: 500}
		ind := finance.ComputeIndicator(entry, thresholds)

		Expect(ind.PaymentProgressRatio).To(Equal(float64(0)))
		Expect(ind.RemainingPayment).To(Equal(float64(0)))
		Expect(ind.BudgetAlertStatus).To(Equal(finance.AlertNormal))
		Expect(ind.PaymentAlertStatus).To(Equal(finance.AlertNormal))
	})

	t.Run("negative ledger inputs should be clamped to zero", func(t *testing.T) {
		entry := &domain.CatalogEntry{TotalValue: -100, CumulativeImplementation: -50}
		ind := finance.ComputeIndicator(entry, thresholds)

		Expect(ind.TotalValue).To(Equal(float64(0)))
		Expect(ind.RemainingImplementation).To(Equal(float64(0)))
		Expect(ind.ImplementationProgressRatio).To(Equal(float64(0)))
	})
}

func TestStatusOf(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should map ratio to alert status with inclusive boundaries", func(t *testing.T) {
		thresholds := finance.AlertThresholds{Warning: 80, Critical: 95}
		Expect(thresholds.StatusOf(0)).To(Equal(finance.AlertNormal))
		Expect(thresholds.StatusOf(79.99)).To(Equal(finance.AlertNormal))
		Expect(thresholds.StatusOf(80)).To(Equal(finance.AlertWarning))
		Expect(thresholds.StatusOf(94.99)).To(Equal(finance.AlertWarning))
		Expect(thresholds.StatusOf(95)).To(Equal(finance.AlertCritical))
		Expect(thresholds.StatusOf(120)).To(Equal(finance.AlertCritical))
	})
}

func TestActiveThresholds(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should fall back to defaults", func(t *testing.T) {
		finance.ThresholdsReset()
		defer finance.ThresholdsReset()

		Expect(finance.ActiveThresholds()).To(Equal(finance.AlertThresholds{Warning: 80, Critical: 95}))
	})

	t.Run("should load configured thresholds once and cache them", func(t *testing.T) {
		finance.ThresholdsReset()
		origin := finance.LoadThresholdsFunc
		invocations := 0
		finance.LoadThresholdsFunc = func() finance.AlertThresholds {
			invocations++
			return finance.AlertThresholds{Warning: 60, Critical: 85}
		}
		defer func() {
			finance.LoadThresholdsFunc = origin
			finance.ThresholdsReset()
		}()

		Expect(finance.ActiveThresholds()).To(Equal(finance.AlertThresholds{Warning: 60, Critical: 85}))
		Expect(finance.ActiveThresholds()).To(Equal(finance.AlertThresholds{Warning: 60, Critical: 85}))
		Expect(invocations).To(Equal(1))
	})
}
