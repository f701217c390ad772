package worker

import (
	"context"
	"encoding/json"
	"testing"

	"yardpos/internal/dto"
	"yardpos/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestRenderReportShowsVarianceWithDifference(t *testing.T) {
	counted := dec("140.00")
	closedAt := "2026-08-30T18:00:00Z"
	report := &dto.ClosingReport{
		RegisterID:     "3f1d2a40-0000-0000-0000-000000000000",
		OpenedAt:       "2026-08-30T08:00:00Z",
		ClosedAt:       &closedAt,
		InitialAmount:  dec("100.00"),
		ExpectedAmount: dec("150.00"),
		FinalAmount:    &counted,
		Variance:       service.VarianceShortage,
		Difference:     dec("10.00"),
	}

	out := renderReport(report)

	assert.Contains(t, out, "Expected in drawer: 150.00")
	assert.Contains(t, out, "Counted:            140.00")
	assert.Contains(t, out, "Result: FALTA (10.00)")
}

func TestRenderReportMatchOmitsDifference(t *testing.T) {
	counted := dec("150.00")
	report := &dto.ClosingReport{
		RegisterID:     "3f1d2a40-0000-0000-0000-000000000000",
		OpenedAt:       "2026-08-30T08:00:00Z",
		InitialAmount:  dec("100.00"),
		ExpectedAmount: dec("150.00"),
		FinalAmount:    &counted,
		Variance:       service.VarianceMatch,
	}

	out := renderReport(report)

	assert.Contains(t, out, "Result: CONFERE\n")
	assert.NotContains(t, out, "(0.00)")
}

func TestRenderReportOpenRegisterSkipsCountSection(t *testing.T) {
	report := &dto.ClosingReport{
		RegisterID:     "3f1d2a40-0000-0000-0000-000000000000",
		OpenedAt:       "2026-08-30T08:00:00Z",
		InitialAmount:  dec("100.00"),
		ExpectedAmount: dec("100.00"),
	}

	out := renderReport(report)

	assert.NotContains(t, out, "Counted:")
	assert.NotContains(t, out, "Result:")
}

func TestEmailWorkerSkipsMalformedPayload(t *testing.T) {
	w := NewEmailWorker(nil)

	// Malformed payloads would fail forever; they are dropped, not retried.
	assert.NoError(t, w.Process(context.Background(), json.RawMessage(`{broken`)))
	assert.NoError(t, w.Process(context.Background(), json.RawMessage(`{"to_email":""}`)))
}

func TestEmailWorkerFailsWithoutMailer(t *testing.T) {
	w := NewEmailWorker(nil)
	raw, _ := json.Marshal(EmailJobPayload{ToEmail: "yard@example.com", Subject: "s", Body: "b"})
	assert.Error(t, w.Process(context.Background(), raw))
}

func TestReportWorkerDropsInvalidPayload(t *testing.T) {
	w := NewReportWorker(nil, nil, "yard@example.com")

	assert.NoError(t, w.Process(context.Background(), json.RawMessage(`{broken`)))
	assert.NoError(t, w.Process(context.Background(), json.RawMessage(`{"register_id":"not-a-uuid"}`)))
}
