package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"

	"github.com/iho/wealthengine/internal/domain"
	"github.com/iho/wealthengine/internal/engine"
	"github.com/iho/wealthengine/internal/usecase"
	"github.com/iho/wealthengine/internal/usecase/mocks"
)

type holdingMocks struct {
	txMgr    *mocks.MockTransactionManager
	tx       *mocks.MockTransaction
	holdings *mocks.MockHoldingRepository
	rates    *mocks.MockRateProvider
	audit    *mocks.MockAuditRepository
	idGen    *mocks.MockIDGenerator
}

func newHoldingMocks(ctrl *gomock.Controller) holdingMocks {
	return holdingMocks{
		txMgr:    mocks.NewMockTransactionManager(ctrl),
		tx:       mocks.NewMockTransaction(ctrl),
		holdings: mocks.NewMockHoldingRepository(ctrl),
		rates:    mocks.NewMockRateProvider(ctrl),
		audit:    mocks.NewMockAuditRepository(ctrl),
		idGen:    mocks.NewMockIDGenerator(ctrl),
	}
}

func (m holdingMocks) useCase(retrier usecase.Retrier) *usecase.HoldingUseCase {
	return usecase.NewHoldingUseCase(
		m.txMgr, m.holdings, m.rates, retrier, m.audit, m.idGen,
		engine.DefaultTolerance, nil, zerolog.Nop(),
	)
}

// expectTx wires a transaction that is always rolled back and optionally committed.
func (m holdingMocks) expectTx(commit bool) {
	m.txMgr.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
	if commit {
		m.tx.EXPECT().Commit(gomock.Any()).Return(nil)
	}
}

func TestHoldingUseCase_ApplyLot(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newHoldingMocks(ctrl)
	m.rates.EXPECT().Latest(gomock.Any(), "u-1").Return(testRates("u-1"), nil)
	m.expectTx(true)
	m.holdings.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, "h-1").
		Return(unitHolding("h-1", "u-1", "10", "100", "110", "1100"), nil)

	var stored *domain.Holding
	m.holdings.EXPECT().Update(gomock.Any(), m.tx, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ usecase.Transaction, h *domain.Holding) error {
			stored = h
			return nil
		})

	m.idGen.EXPECT().Generate().Return("audit-1")
	var logged *domain.AuditLog
	m.audit.EXPECT().CreateTx(gomock.Any(), m.tx, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ usecase.Transaction, log *domain.AuditLog) error {
			logged = log
			return nil
		})

	ctx := domain.WithActor(context.Background(), "alice")
	h, err := m.useCase(nil).ApplyLot(ctx, usecase.ApplyLotInput{
		UserID:    "u-1",
		HoldingID: "h-1",
		Quantity:  dec("10"),
		UnitPrice: dec("120"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !h.Quantity.Equal(dec("20")) {
		t.Errorf("expected quantity 20, got %s", h.Quantity)
	}
	if !h.UnitCost.Equal(dec("110")) {
		t.Errorf("expected unit cost 110, got %s", h.UnitCost)
	}
	if !h.Value.Equal(dec("2200")) {
		t.Errorf("expected value 2200 at current price, got %s", h.Value)
	}
	if !h.ValueSGD.Equal(dec("2933.26")) {
		t.Errorf("expected SGD value 2933.26, got %s", h.ValueSGD)
	}
	if !h.CurrentUnitPrice.Equal(dec("110")) {
		t.Errorf("lot must not move the current price, got %s", h.CurrentUnitPrice)
	}
	if stored == nil || !stored.Quantity.Equal(dec("20")) {
		t.Fatalf("expected updated holding to be stored, got %+v", stored)
	}

	if logged == nil {
		t.Fatal("expected audit log")
	}
	if logged.Action != domain.AuditActionLotApply || logged.Actor != "alice" || logged.ID != "audit-1" {
		t.Errorf("unexpected audit log: %+v", logged)
	}
	if logged.BeforeState == nil || logged.AfterState == nil {
		t.Errorf("expected before and after state in audit log")
	}
}

func TestHoldingUseCase_ApplyLot_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   usecase.ApplyLotInput
		setup   func(m holdingMocks)
		wantErr []error
	}{
		{
			name:    "invalid lot rejected before any lookup",
			input:   usecase.ApplyLotInput{UserID: "u-1", HoldingID: "h-1", Quantity: dec("0"), UnitPrice: dec("10")},
			setup:   func(m holdingMocks) {},
			wantErr: []error{domain.ErrInvalidLot},
		},
		{
			name:  "missing rates",
			input: usecase.ApplyLotInput{UserID: "u-1", HoldingID: "h-1", Quantity: dec("1"), UnitPrice: dec("10")},
			setup: func(m holdingMocks) {
				m.rates.EXPECT().Latest(gomock.Any(), "u-1").Return(nil, domain.ErrRatesNotFound)
			},
			wantErr: []error{domain.ErrRatesNotFound},
		},
		{
			name:  "holding of another user",
			input: usecase.ApplyLotInput{UserID: "u-1", HoldingID: "h-1", Quantity: dec("1"), UnitPrice: dec("10")},
			setup: func(m holdingMocks) {
				m.rates.EXPECT().Latest(gomock.Any(), "u-1").Return(testRates("u-1"), nil)
				m.expectTx(false)
				m.holdings.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, "h-1").
					Return(unitHolding("h-1", "u-2", "1", "1", "1", "1"), nil)
			},
			wantErr: []error{domain.ErrHoldingNotFound},
		},
		{
			name:  "value-only holding",
			input: usecase.ApplyLotInput{UserID: "u-1", HoldingID: "cash", Quantity: dec("1"), UnitPrice: dec("10")},
			setup: func(m holdingMocks) {
				m.rates.EXPECT().Latest(gomock.Any(), "u-1").Return(testRates("u-1"), nil)
				m.expectTx(false)
				m.holdings.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, "cash").
					Return(&domain.Holding{ID: "cash", UserID: "u-1", Currency: domain.CurrencySGD, Value: dec("5000")}, nil)
			},
			wantErr: []error{domain.ErrInvalidLot, domain.ErrValueOnlyHolding},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := newHoldingMocks(ctrl)
			tt.setup(m)

			_, err := m.useCase(nil).ApplyLot(context.Background(), tt.input)
			for _, want := range tt.wantErr {
				if !errors.Is(err, want) {
					t.Errorf("expected %v, got %v", want, err)
				}
			}
		})
	}
}

func TestHoldingUseCase_ApplyLot_RunsInsideRetrier(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newHoldingMocks(ctrl)
	retrier := mocks.NewMockRetrier(ctrl)

	m.rates.EXPECT().Latest(gomock.Any(), "u-1").Return(testRates("u-1"), nil)
	retrier.EXPECT().Retry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, op func() error) error {
			return op()
		})
	m.expectTx(true)
	m.holdings.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, "h-1").
		Return(unitHolding("h-1", "u-1", "0", "0", "50", "0"), nil)
	m.holdings.EXPECT().Update(gomock.Any(), m.tx, gomock.Any()).Return(nil)
	m.idGen.EXPECT().Generate().Return("audit-1")
	m.audit.EXPECT().CreateTx(gomock.Any(), m.tx, gomock.Any()).Return(nil)

	h, err := m.useCase(retrier).ApplyLot(context.Background(), usecase.ApplyLotInput{
		UserID:    "u-1",
		HoldingID: "h-1",
		Quantity:  dec("4"),
		UnitPrice: dec("45"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !h.UnitCost.Equal(dec("45")) {
		t.Errorf("first lot sets unit cost, got %s", h.UnitCost)
	}
	if !h.Value.Equal(dec("200")) {
		t.Errorf("expected value 200, got %s", h.Value)
	}
}

func TestHoldingUseCase_SetPrice(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newHoldingMocks(ctrl)
	m.rates.EXPECT().Latest(gomock.Any(), "u-1").Return(testRates("u-1"), nil)
	m.expectTx(true)
	m.holdings.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, "h-1").
		Return(unitHolding("h-1", "u-1", "10", "100", "110", "1100"), nil)
	m.holdings.EXPECT().Update(gomock.Any(), m.tx, gomock.Any()).Return(nil)
	m.idGen.EXPECT().Generate().Return("audit-1")
	m.audit.EXPECT().CreateTx(gomock.Any(), m.tx, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ usecase.Transaction, log *domain.AuditLog) error {
			if log.Action != domain.AuditActionPriceSet {
				t.Errorf("expected price set action, got %s", log.Action)
			}
			if log.Actor != usecase.SystemActor {
				t.Errorf("expected system actor, got %s", log.Actor)
			}
			return nil
		})

	h, err := m.useCase(nil).SetPrice(context.Background(), usecase.SetPriceInput{
		UserID:    "u-1",
		HoldingID: "h-1",
		UnitPrice: dec("150"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !h.CurrentUnitPrice.Equal(dec("150")) {
		t.Errorf("expected price 150, got %s", h.CurrentUnitPrice)
	}
	if !h.UnitCost.Equal(dec("100")) || !h.Quantity.Equal(dec("10")) {
		t.Errorf("price update must not touch cost basis: qty=%s cost=%s", h.Quantity, h.UnitCost)
	}
	if !h.Value.Equal(dec("1500")) {
		t.Errorf("expected value 1500, got %s", h.Value)
	}
	if h.PriceSource != domain.PriceSourceManual || h.PriceUpdatedAt == nil {
		t.Errorf("expected manual source with timestamp, got %s %v", h.PriceSource, h.PriceUpdatedAt)
	}
}

func TestHoldingUseCase_SetPrice_RejectsNegative(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newHoldingMocks(ctrl)
	_, err := m.useCase(nil).SetPrice(context.Background(), usecase.SetPriceInput{
		UserID:    "u-1",
		HoldingID: "h-1",
		UnitPrice: dec("-1"),
	})
	if !errors.Is(err, domain.ErrInvalidPrice) {
		t.Fatalf("expected ErrInvalidPrice, got %v", err)
	}
}

func TestHoldingUseCase_Reconcile(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newHoldingMocks(ctrl)
	m.holdings.EXPECT().ListByUser(gomock.Any(), "u-1").Return([]*domain.Holding{
		unitHolding("ok", "u-1", "10", "100", "110", "1100"),
		unitHolding("drifted", "u-1", "10", "100", "110", "1300"),
		{ID: "cash", UserID: "u-1", Currency: domain.CurrencySGD, Value: dec("5000")},
	}, nil)

	reports, err := m.useCase(nil).Reconcile(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reports) != 3 {
		t.Fatalf("expected 3 reports, got %d", len(reports))
	}

	if !reports[0].Consistent || !reports[0].Checkable {
		t.Errorf("expected consistent report, got %+v", reports[0])
	}
	if reports[1].Consistent {
		t.Errorf("expected drifted holding to be flagged, got %+v", reports[1])
	}
	if !reports[1].Delta.Equal(dec("200")) {
		t.Errorf("expected delta 200, got %s", reports[1].Delta)
	}
	if reports[2].Checkable {
		t.Errorf("value-only holding is not checkable")
	}
}

func TestHoldingUseCase_FixValue(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newHoldingMocks(ctrl)
	m.rates.EXPECT().Latest(gomock.Any(), "u-1").Return(testRates("u-1"), nil)
	m.expectTx(true)
	m.holdings.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, "h-1").
		Return(unitHolding("h-1", "u-1", "10", "100", "110", "1300"), nil)
	m.holdings.EXPECT().Update(gomock.Any(), m.tx, gomock.Any()).Return(nil)
	m.idGen.EXPECT().Generate().Return("audit-1")
	m.audit.EXPECT().CreateTx(gomock.Any(), m.tx, gomock.Any()).Return(nil)

	h, report, err := m.useCase(nil).FixValue(context.Background(), "u-1", "h-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !h.Value.Equal(dec("1100")) {
		t.Errorf("expected fixed value 1100, got %s", h.Value)
	}
	if !h.ValueINR.Equal(dec("91300")) {
		t.Errorf("expected INR value 91300, got %s", h.ValueINR)
	}
	if !report.StoredValue.Equal(dec("1300")) || report.Consistent {
		t.Errorf("report should describe the pre-fix state, got %+v", report)
	}
}

func TestHoldingUseCase_History(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newHoldingMocks(ctrl)
	m.holdings.EXPECT().GetByID(gomock.Any(), "h-1").Return(&domain.Holding{ID: "h-1", UserID: "u-1"}, nil)
	m.audit.EXPECT().List(gomock.Any(), domain.AuditFilter{
		UserID:       "u-1",
		ResourceType: "holding",
		ResourceID:   "h-1",
		Limit:        usecase.DefaultAuditLimit,
	}).Return([]*domain.AuditLog{{ID: "a-1"}}, nil)

	logs, err := m.useCase(nil).History(context.Background(), "u-1", "h-1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(logs) != 1 {
		t.Errorf("expected 1 log, got %d", len(logs))
	}
}

func TestHoldingUseCase_History_OtherUsersHolding(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newHoldingMocks(ctrl)
	m.holdings.EXPECT().GetByID(gomock.Any(), "h-1").Return(&domain.Holding{ID: "h-1", UserID: "u-2"}, nil)

	_, err := m.useCase(nil).History(context.Background(), "u-1", "h-1", 10)
	if !errors.Is(err, domain.ErrHoldingNotFound) {
		t.Fatalf("expected ErrHoldingNotFound, got %v", err)
	}
}

func TestHoldingUseCase_History_UnknownHolding(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newHoldingMocks(ctrl)
	m.holdings.EXPECT().GetByID(gomock.Any(), "missing").Return(nil, domain.ErrHoldingNotFound)

	_, err := m.useCase(nil).History(context.Background(), "u-1", "missing", 10)
	if !errors.Is(err, domain.ErrHoldingNotFound) {
		t.Fatalf("expected ErrHoldingNotFound, got %v", err)
	}
}
