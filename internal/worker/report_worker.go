package worker

// report_worker.go
// Processes closing-report jobs: rebuilds the reconciliation report for a
// just-closed register and chains an email job with the rendered text.

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"yardpos/internal/dto"
	"yardpos/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ClosingReportPayload is the job envelope sent to QueueClosingReport.
type ClosingReportPayload struct {
	RegisterID string `json:"register_id"`
}

// ReportWorker processes closing-report jobs from QueueClosingReport.
type ReportWorker struct {
	reports     service.ReportService
	dispatcher  *Dispatcher
	reportEmail string
}

func NewReportWorker(reports service.ReportService, dispatcher *Dispatcher, reportEmail string) *ReportWorker {
	return &ReportWorker{reports: reports, dispatcher: dispatcher, reportEmail: reportEmail}
}

func (w *ReportWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ClosingReportPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("report_worker: invalid payload")
		return nil
	}
	registerID, err := uuid.Parse(payload.RegisterID)
	if err != nil {
		log.Error().Str("register_id", payload.RegisterID).Msg("report_worker: invalid register_id")
		return nil
	}

	report, err := w.reports.ClosingReport(ctx, registerID)
	if err != nil {
		log.Error().Err(err).Str("register_id", payload.RegisterID).
			Msg("report_worker: failed to build closing report")
		return err
	}

	if w.reportEmail == "" {
		log.Debug().Msg("report_worker: no report email configured, report not mailed")
		return nil
	}

	job := EmailJobPayload{
		ToEmail: w.reportEmail,
		Subject: fmt.Sprintf("Register closing report — %s", payload.RegisterID[:8]),
		Body:    renderReport(report),
	}
	if err := w.dispatcher.EnqueueEmail(ctx, job); err != nil {
		log.Error().Err(err).Msg("report_worker: failed to enqueue email")
		return err
	}
	return nil
}

// renderReport produces the plain-text closing slip.
func renderReport(r *dto.ClosingReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CLOSING REPORT\n")
	fmt.Fprintf(&b, "Register: %s\n", r.RegisterID)
	fmt.Fprintf(&b, "Opened:   %s\n", r.OpenedAt)
	if r.ClosedAt != nil {
		fmt.Fprintf(&b, "Closed:   %s\n", *r.ClosedAt)
	}
	fmt.Fprintf(&b, "\nInitial amount: %s\n", r.InitialAmount.StringFixed(2))

	fmt.Fprintf(&b, "\nPURCHASES (weight %s kg)\n", r.WeightPurchased.StringFixed(3))
	renderBreakdown(&b, r.Purchases)
	fmt.Fprintf(&b, "\nSALES (weight %s kg)\n", r.WeightSold.StringFixed(3))
	renderBreakdown(&b, r.Sales)

	fmt.Fprintf(&b, "\nExpected in drawer: %s\n", r.ExpectedAmount.StringFixed(2))
	if r.FinalAmount != nil {
		fmt.Fprintf(&b, "Counted:            %s\n", r.FinalAmount.StringFixed(2))
		fmt.Fprintf(&b, "Result: %s", r.Variance)
		if r.Variance != service.VarianceMatch {
			fmt.Fprintf(&b, " (%s)", r.Difference.StringFixed(2))
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nLedger entries: %d\n", r.TransactionCount)
	return b.String()
}

func renderBreakdown(b *strings.Builder, pb dto.PaymentBreakdown) {
	fmt.Fprintf(b, "  cash:   %s\n", pb.Cash.StringFixed(2))
	fmt.Fprintf(b, "  pix:    %s\n", pb.Pix.StringFixed(2))
	fmt.Fprintf(b, "  debit:  %s\n", pb.Debit.StringFixed(2))
	fmt.Fprintf(b, "  credit: %s\n", pb.Credit.StringFixed(2))
	fmt.Fprintf(b, "  total:  %s\n", pb.Total.StringFixed(2))
}
