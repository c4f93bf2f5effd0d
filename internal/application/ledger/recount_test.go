package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcastro/kardex-api/internal/application/ledger"
	"github.com/dcastro/kardex-api/internal/domain"
	"github.com/dcastro/kardex-api/internal/domain/entity"
	"github.com/dcastro/kardex-api/internal/domain/repository"
	"github.com/dcastro/kardex-api/internal/infrastructure/memory"
	"github.com/dcastro/kardex-api/pkg/logger"
)

// seedSourceLine inserta una línea origen directamente (como si un documento
// la hubiera dejado).
func seedSourceLine(t *testing.T, store *memory.Store, line *entity.SourceLine) {
	t.Helper()
	err := store.Run(context.Background(), func(
		_ repository.StockAccountRepository,
		_ repository.StockMovementRepository,
		_ repository.CostHistoryRepository,
		_ repository.ItemRepository,
		sources repository.SourceLineRepository,
	) error {
		return sources.Create(line)
	})
	require.NoError(t, err)
}

func TestRecount_RequiereConfirmacion(t *testing.T) {
	store := newStore()
	l := ledger.NewStockLedger(store)
	engine := ledger.NewRecountEngine(store, l, logger.Nop())

	_, err := engine.Recount(context.Background(), false)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRecount_ReconstruyeElMismoEstado(t *testing.T) {
	store := newStore()
	seedItem(t, store, trackedItem("a1"))
	l := ledger.NewStockLedger(store)
	engine := ledger.NewRecountEngine(store, l, logger.Nop())
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	doc1, doc2, doc3 := "doc-1", "doc-2", "doc-3"
	seedSourceLine(t, store, &entity.SourceLine{
		DocumentID: doc1, Kind: entity.SourcePurchase, Direction: entity.DirectionIn,
		ItemID: "a1", Quantity: 10, UnitCost: 50000, OccurredAt: base,
	})
	seedSourceLine(t, store, &entity.SourceLine{
		DocumentID: doc2, Kind: entity.SourcePurchase, Direction: entity.DirectionIn,
		ItemID: "a1", Quantity: 5, UnitCost: 60000, OccurredAt: base.Add(time.Hour),
	})
	seedSourceLine(t, store, &entity.SourceLine{
		DocumentID: doc3, Kind: entity.SourceSale, Direction: entity.DirectionOut,
		ItemID: "a1", Quantity: 3, UnitCost: 53334, OccurredAt: base.Add(2 * time.Hour),
	})

	summary, err := engine.Recount(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Processed)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, int64(3), summary.Movements)
	assert.Equal(t, int64(2), summary.CostEntries)

	account := mustAccount(t, store, "a1")
	assert.Equal(t, int64(12), account.Quantity)
	assert.Equal(t, int64(53334), account.AverageCost)

	// Los movimientos regenerados conservan el timestamp de negocio original.
	movements, err := store.Movements().ListByItem("a1", nil, nil, 0, 0)
	require.NoError(t, err)
	require.Len(t, movements, 3)
	assert.True(t, movements[0].CreatedAt.Equal(base.Add(2*time.Hour)), "más reciente primero")
	assert.True(t, movements[2].CreatedAt.Equal(base))

	// Las filas de costo regeneradas llevan el trigger de recuento.
	entries, err := store.Costs().ListByItem("a1", 0, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, entity.TriggerRecount, e.TriggerType)
	}
}

func TestRecount_EsReproducible(t *testing.T) {
	store := newStore()
	seedItem(t, store, trackedItem("a1"))
	l := ledger.NewStockLedger(store)
	engine := ledger.NewRecountEngine(store, l, logger.Nop())
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	seedSourceLine(t, store, &entity.SourceLine{
		DocumentID: "d1", Kind: entity.SourcePurchase, Direction: entity.DirectionIn,
		ItemID: "a1", Quantity: 7, UnitCost: 333, OccurredAt: base,
	})
	seedSourceLine(t, store, &entity.SourceLine{
		DocumentID: "d2", Kind: entity.SourceSale, Direction: entity.DirectionOut,
		ItemID: "a1", Quantity: 2, UnitCost: 333, OccurredAt: base.Add(time.Minute),
	})

	first, err := engine.Recount(ctx, true)
	require.NoError(t, err)
	firstAccount := mustAccount(t, store, "a1")

	second, err := engine.Recount(ctx, true)
	require.NoError(t, err)
	secondAccount := mustAccount(t, store, "a1")

	assert.Equal(t, first.Processed, second.Processed)
	assert.Equal(t, first.Movements, second.Movements)
	assert.Equal(t, firstAccount.Quantity, secondAccount.Quantity)
	assert.Equal(t, firstAccount.AverageCost, secondAccount.AverageCost)
}

func TestRecount_LineaMalaSeCuentaYElLoteSigue(t *testing.T) {
	store := newStore()
	seedItem(t, store, trackedItem("a1"))
	l := ledger.NewStockLedger(store)
	engine := ledger.NewRecountEngine(store, l, logger.Nop())
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	// Línea de un artículo que ya no existe: rechazo de datos, no de infraestructura.
	seedSourceLine(t, store, &entity.SourceLine{
		DocumentID: "d1", Kind: entity.SourcePurchase, Direction: entity.DirectionIn,
		ItemID: "borrado", Quantity: 3, UnitCost: 10, OccurredAt: base,
	})
	// Salida sin stock previo: insuficiencia, también se salta.
	seedSourceLine(t, store, &entity.SourceLine{
		DocumentID: "d2", Kind: entity.SourceSale, Direction: entity.DirectionOut,
		ItemID: "a1", Quantity: 99, UnitCost: 10, OccurredAt: base.Add(time.Minute),
	})
	seedSourceLine(t, store, &entity.SourceLine{
		DocumentID: "d3", Kind: entity.SourcePurchase, Direction: entity.DirectionIn,
		ItemID: "a1", Quantity: 4, UnitCost: 10, OccurredAt: base.Add(2 * time.Minute),
	})

	summary, err := engine.Recount(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 2, summary.Failed)

	account := mustAccount(t, store, "a1")
	assert.Equal(t, int64(4), account.Quantity)
}
