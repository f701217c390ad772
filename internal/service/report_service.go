package service

import (
	"context"
	"errors"

	"yardpos/internal/dto"
	"yardpos/internal/model"
	"yardpos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"time"
)

// Variance outcomes printed on the closing slip.
const (
	VarianceMatch    = "CONFERE" // counted equals expected
	VarianceSurplus  = "SOBRA"   // counted exceeds expected
	VarianceShortage = "FALTA"   // counted falls short of expected
)

var ErrRegisterNotFound = errors.New("cash register not found")

// ReportService reconciles a register's ledger against its completed orders.
// It only reads; everything it reports is derivable from persisted state so
// the same report can be regenerated at any time.
type ReportService interface {
	// ClosingReport builds the reconciliation report for a register. For an
	// open register the variance section is left empty — there is no counted
	// amount to compare against yet.
	ClosingReport(ctx context.Context, registerID uuid.UUID) (*dto.ClosingReport, error)
}

type reportService struct {
	registers repository.RegisterRepository
	orders    repository.OrderRepository
}

func NewReportService(registers repository.RegisterRepository, orders repository.OrderRepository) ReportService {
	return &reportService{registers: registers, orders: orders}
}

func (s *reportService) ClosingReport(ctx context.Context, registerID uuid.UUID) (*dto.ClosingReport, error) {
	reg, err := s.registers.FindByID(ctx, registerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegisterNotFound
		}
		return nil, &StoreUnavailableError{Op: "closing report", Err: err}
	}

	orders, err := s.orders.ListCompletedInWindow(ctx, reg.OperatorID, reg.OpenedAt, reg.ClosedAt)
	if err != nil {
		return nil, &StoreUnavailableError{Op: "closing report", Err: err}
	}

	report := &dto.ClosingReport{
		RegisterID:       reg.ID.String(),
		OpenedAt:         reg.OpenedAt.Format(time.RFC3339),
		InitialAmount:    reg.InitialAmount,
		FinalAmount:      reg.FinalAmount,
		TransactionCount: len(reg.Transactions),
	}
	if reg.ClosedAt != nil {
		t := reg.ClosedAt.Format(time.RFC3339)
		report.ClosedAt = &t
	}

	for _, o := range orders {
		// Cancelled orders stay out of every aggregate; their ledger effect
		// was compensated by a reversal entry (or the register was already
		// closed, in which case the flag alone excludes them here).
		if o.Cancelled {
			continue
		}
		weight := decimal.Zero
		for _, item := range o.Items {
			weight = weight.Add(item.Quantity)
		}
		switch o.Type {
		case model.OrderPurchase:
			addToBreakdown(&report.Purchases, o.Payment, o.Total)
			report.WeightPurchased = report.WeightPurchased.Add(weight)
		case model.OrderSale:
			addToBreakdown(&report.Sales, o.Payment, o.Total)
			report.WeightSold = report.WeightSold.Add(weight)
		}
	}

	// Expected cash is reconstructed from the ledger, not read from the
	// running balance, so a report can prove the balance is consistent.
	report.ExpectedAmount = expectedAmount(reg)

	if reg.FinalAmount != nil {
		report.Variance, report.Difference = classifyVariance(report.ExpectedAmount, *reg.FinalAmount)
	}
	return report, nil
}

// addToBreakdown attributes an order total to its payment method. Orders
// that completed without a payment record count as cash: the drawer is the
// only place their money could have gone.
func addToBreakdown(b *dto.PaymentBreakdown, p *model.OrderPayment, total decimal.Decimal) {
	method := model.PayCash
	if p != nil {
		method = p.Method
	}
	switch method {
	case model.PayPix:
		b.Pix = b.Pix.Add(total)
	case model.PayDebit:
		b.Debit = b.Debit.Add(total)
	case model.PayCredit:
		b.Credit = b.Credit.Add(total)
	default:
		b.Cash = b.Cash.Add(total)
	}
	b.Total = b.Total.Add(total)
}

// expectedAmount folds the signed ledger over the initial float.
func expectedAmount(reg *model.CashRegister) decimal.Decimal {
	expected := reg.InitialAmount
	for _, t := range reg.Transactions {
		expected = expected.Add(t.SignedAmount())
	}
	return expected
}

// classifyVariance compares what the operator counted against what the
// ledger says should be in the drawer. Difference is always non-negative.
func classifyVariance(expected, counted decimal.Decimal) (string, decimal.Decimal) {
	switch counted.Cmp(expected) {
	case 0:
		return VarianceMatch, decimal.Zero
	case 1:
		return VarianceSurplus, counted.Sub(expected)
	default:
		return VarianceShortage, expected.Sub(counted)
	}
}
