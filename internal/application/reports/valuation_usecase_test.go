package reports_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcastro/kardex-api/internal/application/ledger"
	"github.com/dcastro/kardex-api/internal/application/reports"
	"github.com/dcastro/kardex-api/internal/domain/entity"
	"github.com/dcastro/kardex-api/internal/domain/repository"
	"github.com/dcastro/kardex-api/internal/infrastructure/memory"
)

func seedValuation(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore(time.Second)
	err := store.Run(context.Background(), func(
		accounts repository.StockAccountRepository,
		_ repository.StockMovementRepository,
		_ repository.CostHistoryRepository,
		items repository.ItemRepository,
		_ repository.SourceLineRepository,
	) error {
		for _, item := range []*entity.Item{
			{ID: "a1", SKU: "SKU-A", Name: "Alfa", TrackStock: true},
			{ID: "a2", SKU: "SKU-B", Name: "Beta", TrackStock: true},
			{ID: "svc", SKU: "SKU-S", Name: "Servicio", TrackStock: false},
		} {
			if err := items.Create(item); err != nil {
				return err
			}
		}
		if err := accounts.Upsert(&entity.StockAccount{ItemID: "a1", Quantity: 10, AverageCost: 300}); err != nil {
			return err
		}
		return accounts.Upsert(&entity.StockAccount{ItemID: "a2", Quantity: 5, AverageCost: 200})
	})
	require.NoError(t, err)
	return store
}

func TestValuation_CalculaValorYParticipacion(t *testing.T) {
	store := seedValuation(t)
	uc := reports.NewValuationUseCase(store.Accounts())

	report, err := uc.GetValuation(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Items, 2, "los artículos sin seguimiento no se valorizan")

	// 10*300 = 3000 y 5*200 = 1000, total 4000; orden por valor descendente.
	assert.True(t, report.TotalValue.Equal(decimal.NewFromInt(4000)))
	assert.Equal(t, "a1", report.Items[0].ItemID)
	assert.True(t, report.Items[0].StockValue.Equal(decimal.NewFromInt(3000)))
	assert.True(t, report.Items[0].SharePct.Equal(decimal.NewFromInt(75)))
	assert.Equal(t, "a2", report.Items[1].ItemID)
	assert.True(t, report.Items[1].SharePct.Equal(decimal.NewFromInt(25)))
}

func TestValuation_VacioSinDividirPorCero(t *testing.T) {
	store := memory.NewStore(time.Second)
	uc := reports.NewValuationUseCase(store.Accounts())

	report, err := uc.GetValuation(context.Background())
	require.NoError(t, err)
	assert.True(t, report.TotalValue.IsZero())
	assert.Empty(t, report.Items)
}

func TestValuation_ReflejaLasMutacionesDelLibro(t *testing.T) {
	store := seedValuation(t)
	l := ledger.NewStockLedger(store)
	uc := reports.NewValuationUseCase(store.Accounts())
	ctx := context.Background()

	// Una venta reduce el valor en libros del artículo.
	res, err := l.ReduceStock(ctx, ledger.ReduceStockInput{
		ItemID: "a1", Quantity: 5, SourceType: entity.SourceSale,
	})
	require.NoError(t, err)
	require.True(t, res.Success)

	report, err := uc.GetValuation(ctx)
	require.NoError(t, err)
	// a1: 5*300 = 1500, a2: 1000 → total 2500
	assert.True(t, report.TotalValue.Equal(decimal.NewFromInt(2500)))
}
