package jobs

import (
	"context"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/meridianfm/meridian-erp/internal/accounting/journals"
)

type fakeJournalRepo struct {
	companies  []int64
	unbalanced map[int64][]journals.JournalEntry
	scanned    []int64
}

func (f *fakeJournalRepo) List(_ context.Context, _ int64) ([]journals.JournalEntry, error) {
	return nil, nil
}

func (f *fakeJournalRepo) GetWithLines(_ context.Context, _, _ int64) (journals.JournalEntry, error) {
	return journals.JournalEntry{}, nil
}

func (f *fakeJournalRepo) ListCompanyIDs(_ context.Context) ([]int64, error) {
	return f.companies, nil
}

func (f *fakeJournalRepo) ListUnbalanced(_ context.Context, companyID int64) ([]journals.JournalEntry, error) {
	f.scanned = append(f.scanned, companyID)
	return f.unbalanced[companyID], nil
}

func TestIntegrityScanSingleCompany(t *testing.T) {
	repo := &fakeJournalRepo{unbalanced: map[int64][]journals.JournalEntry{}}
	scanner := NewIntegrityScanner(repo, nil, nil)

	require.NoError(t, scanner.Scan(context.Background(), 3))
	require.Equal(t, []int64{3}, repo.scanned)
}

func TestIntegrityScanAllCompanies(t *testing.T) {
	repo := &fakeJournalRepo{
		companies:  []int64{1, 2, 3},
		unbalanced: map[int64][]journals.JournalEntry{},
	}
	scanner := NewIntegrityScanner(repo, nil, nil)

	require.NoError(t, scanner.Scan(context.Background(), 0))
	require.Len(t, repo.scanned, 3)
}

func TestIntegrityScanReportsUnbalancedEntries(t *testing.T) {
	repo := &fakeJournalRepo{
		unbalanced: map[int64][]journals.JournalEntry{
			1: {{
				ID: 9, EntryNumber: "JE-2026-000009",
				TotalDebit:  decimal.RequireFromString("100.00"),
				TotalCredit: decimal.RequireFromString("90.00"),
			}},
		},
	}
	scanner := NewIntegrityScanner(repo, nil, nil)

	// Findings are logged, never an error: the scan must visit every
	// company even when one has corrupt entries.
	require.NoError(t, scanner.Scan(context.Background(), 1))
}

func TestIntegrityScanHandlerRejectsMalformedPayload(t *testing.T) {
	scanner := NewIntegrityScanner(&fakeJournalRepo{}, nil, nil)
	task := asynq.NewTask(TaskGLIntegrityScan, []byte("not json"))

	err := scanner.Handle(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)
}
