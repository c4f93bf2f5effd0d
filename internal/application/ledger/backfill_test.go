package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcastro/kardex-api/internal/application/ledger"
	"github.com/dcastro/kardex-api/internal/domain/entity"
	"github.com/dcastro/kardex-api/internal/domain/repository"
	"github.com/dcastro/kardex-api/internal/infrastructure/memory"
	"github.com/dcastro/kardex-api/pkg/logger"
)

func seedForBackfill(t *testing.T) *memory.Store {
	t.Helper()
	store := newStore()
	// Cuenta sin costo: candidata al backfill.
	item := trackedItem("a1")
	item.PurchasePrice = 2500
	seedItem(t, store, item)
	// Artículo sin precio de compra configurado: se salta.
	free := trackedItem("a2")
	free.PurchasePrice = 0
	seedItem(t, store, free)
	// Artículo sin seguimiento: nunca participa.
	seedItem(t, store, &entity.Item{ID: "svc", SKU: "SVC-1", Name: "Servicio", PurchasePrice: 900})
	return store
}

func TestBackfill_SiembraDesdeElPrecioDeCompra(t *testing.T) {
	store := seedForBackfill(t)
	init := ledger.NewCostInitializer(store, logger.Nop())

	summary, err := init.Backfill(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Seeded)
	assert.Equal(t, 1, summary.Skipped, "la cuenta sin precio de compra se salta")

	account := mustAccount(t, store, "a1")
	assert.Equal(t, int64(2500), account.AverageCost)
	require.NotNil(t, account.AverageCostUpdatedAt)

	entries, err := store.Costs().ListByItem("a1", 0, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entity.TriggerInit, entries[0].TriggerType)
	assert.Equal(t, int64(0), entries[0].OldAverageCost)
	assert.Equal(t, int64(2500), entries[0].NewAverageCost)
}

func TestBackfill_SaltaCuentasHuerfanas(t *testing.T) {
	store := seedForBackfill(t)
	// Cuenta sin artículo asociado: no aborta la corrida, solo se salta.
	err := store.Run(context.Background(), func(
		accounts repository.StockAccountRepository,
		_ repository.StockMovementRepository,
		_ repository.CostHistoryRepository,
		_ repository.ItemRepository,
		_ repository.SourceLineRepository,
	) error {
		return accounts.Upsert(&entity.StockAccount{ItemID: "huerfana"})
	})
	require.NoError(t, err)

	init := ledger.NewCostInitializer(store, logger.Nop())
	summary, err := init.Backfill(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Seeded)
	assert.Equal(t, 2, summary.Skipped, "la huérfana y la cuenta sin precio")
}

func TestBackfill_EsIdempotente(t *testing.T) {
	store := seedForBackfill(t)
	init := ledger.NewCostInitializer(store, logger.Nop())
	ctx := context.Background()

	_, err := init.Backfill(ctx, false)
	require.NoError(t, err)

	second, err := init.Backfill(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Seeded, "la segunda corrida no debe sembrar nada")

	entries, err := store.Costs().ListByItem("a1", 0, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "sin historial nuevo en la segunda corrida")
}

func TestBackfill_NoTocaCuentasConCosto(t *testing.T) {
	store := seedForBackfill(t)
	l := ledger.NewStockLedger(store)
	init := ledger.NewCostInitializer(store, logger.Nop())
	ctx := context.Background()

	// La cuenta ya tiene costo derivado de una compra real.
	_, err := l.AddStock(ctx, ledger.AddStockInput{
		ItemID: "a1", Quantity: 10, SourceType: entity.SourcePurchase, UnitCost: 4000,
	})
	require.NoError(t, err)

	_, err = init.Backfill(ctx, false)
	require.NoError(t, err)

	account := mustAccount(t, store, "a1")
	assert.Equal(t, int64(4000), account.AverageCost, "el costo real no debe ser pisado")
}

func TestBackfill_ResetAllSobreescribe(t *testing.T) {
	store := seedForBackfill(t)
	l := ledger.NewStockLedger(store)
	init := ledger.NewCostInitializer(store, logger.Nop())
	ctx := context.Background()

	_, err := l.AddStock(ctx, ledger.AddStockInput{
		ItemID: "a1", Quantity: 10, SourceType: entity.SourcePurchase, UnitCost: 4000,
	})
	require.NoError(t, err)

	summary, err := init.Backfill(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Seeded)

	account := mustAccount(t, store, "a1")
	assert.Equal(t, int64(2500), account.AverageCost, "reset_all vuelve al precio de compra")

	// reset_all con el costo ya igual al precio no siembra de nuevo.
	again, err := init.Backfill(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Seeded)
}
