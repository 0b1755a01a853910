package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/paperflow/internal/featuregate/domain"
	plancatalogdomain "github.com/smallbiznis/paperflow/internal/plancatalog/domain"
	quotadomain "github.com/smallbiznis/paperflow/internal/quota/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type quotaStub struct {
	record quotadomain.QuotaRecord
	err    error
}

func (s *quotaStub) CreateRecord(ctx context.Context, req quotadomain.CreateRecordRequest) (quotadomain.QuotaRecord, error) {
	return quotadomain.QuotaRecord{}, nil
}

func (s *quotaStub) GetRecord(ctx context.Context, tenantID snowflake.ID) (quotadomain.QuotaRecord, error) {
	if s.err != nil {
		return quotadomain.QuotaRecord{}, s.err
	}
	return s.record, nil
}

func (s *quotaStub) CheckExceeded(ctx context.Context, tenantID snowflake.ID, kind quotadomain.ResourceKind) (bool, error) {
	return false, nil
}

func (s *quotaStub) Increment(ctx context.Context, tenantID snowflake.ID, kind quotadomain.ResourceKind, amount int64) error {
	return nil
}

func (s *quotaStub) Decrement(ctx context.Context, tenantID snowflake.ID, kind quotadomain.ResourceKind, amount int64) error {
	return nil
}

func (s *quotaStub) ResetPeriodicCounters(ctx context.Context, tenantID snowflake.ID) error {
	return nil
}

func (s *quotaStub) UpdateStatus(ctx context.Context, tenantID snowflake.ID, status quotadomain.RecordStatus) error {
	return nil
}

func newGate(stub *quotaStub) domain.Service {
	return NewService(ServiceParam{
		Log:   zap.NewNop(),
		Quota: stub,
	})
}

func recordOnPlan(planID string) quotadomain.QuotaRecord {
	tpl, ok := plancatalogdomain.BuiltinTemplate(planID)
	if !ok {
		panic("unknown plan " + planID)
	}
	record := quotadomain.QuotaRecord{PlanID: planID}
	record.ApplyTemplate(tpl)
	return record
}

func TestDocumentAccessBasicAllowList(t *testing.T) {
	gate := newGate(&quotaStub{record: recordOnPlan(plancatalogdomain.PlanFree)})
	ctx := context.Background()

	cases := []struct {
		docType domain.DocumentType
		allowed bool
	}{
		{domain.DocumentQuotation, true},
		{domain.DocumentReceipt, true},
		{domain.DocumentInvoice, true},
		{domain.DocumentTaxInvoice, false},
		{domain.DocumentBillingNote, false},
		{domain.DocumentCreditNote, false},
	}
	for _, tc := range cases {
		allowed, err := gate.DocumentAccessAllows(ctx, 1, tc.docType)
		require.NoError(t, err)
		assert.Equal(t, tc.allowed, allowed, "document type %s", tc.docType)
	}
}

func TestDocumentAccessFullAllowsEverything(t *testing.T) {
	gate := newGate(&quotaStub{record: recordOnPlan(plancatalogdomain.PlanStarter)})
	ctx := context.Background()

	for _, docType := range []domain.DocumentType{
		domain.DocumentQuotation,
		domain.DocumentTaxInvoice,
		domain.DocumentBillingNote,
		domain.DocumentCreditNote,
	} {
		allowed, err := gate.DocumentAccessAllows(ctx, 1, docType)
		require.NoError(t, err)
		assert.True(t, allowed, "document type %s", docType)
	}
}

func TestDocumentAccessPropagatesLookupError(t *testing.T) {
	gate := newGate(&quotaStub{err: quotadomain.ErrRecordNotFound})

	_, err := gate.DocumentAccessAllows(context.Background(), 1, domain.DocumentInvoice)
	assert.ErrorIs(t, err, quotadomain.ErrRecordNotFound)
}

func TestCanExportPDFUnlimited(t *testing.T) {
	record := recordOnPlan(plancatalogdomain.PlanEnterprise)
	record.CurrentPDFExports = 1 << 32
	gate := newGate(&quotaStub{record: record})

	budget, err := gate.CanExportPDF(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, budget.Allowed)
	assert.Equal(t, int64(-1), budget.Remaining)
}

func TestCanExportPDFCapped(t *testing.T) {
	record := recordOnPlan(plancatalogdomain.PlanFree) // 10 exports per month
	record.CurrentPDFExports = 7
	gate := newGate(&quotaStub{record: record})

	budget, err := gate.CanExportPDF(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, budget.Allowed)
	assert.Equal(t, int64(3), budget.Remaining)

	record.CurrentPDFExports = 10
	gate = newGate(&quotaStub{record: record})
	budget, err = gate.CanExportPDF(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, budget.Allowed)
	assert.Equal(t, int64(0), budget.Remaining)
}
