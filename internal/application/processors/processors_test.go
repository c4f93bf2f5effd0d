package processors_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcastro/kardex-api/internal/application/ledger"
	"github.com/dcastro/kardex-api/internal/application/processors"
	"github.com/dcastro/kardex-api/internal/domain"
	"github.com/dcastro/kardex-api/internal/domain/entity"
	"github.com/dcastro/kardex-api/internal/domain/repository"
	"github.com/dcastro/kardex-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	store  *memory.Store
	ledger *ledger.StockLedger
}

func newFixture(t *testing.T, items ...*entity.Item) *fixture {
	t.Helper()
	store := memory.NewStore(2 * time.Second)
	err := store.Run(context.Background(), func(
		accounts repository.StockAccountRepository,
		_ repository.StockMovementRepository,
		_ repository.CostHistoryRepository,
		repo repository.ItemRepository,
		_ repository.SourceLineRepository,
	) error {
		for _, item := range items {
			if err := repo.Create(item); err != nil {
				return err
			}
			if !item.TrackStock {
				continue
			}
			if err := accounts.Upsert(&entity.StockAccount{ItemID: item.ID}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	return &fixture{store: store, ledger: ledger.NewStockLedger(store)}
}

func tracked(id string, price int64) *entity.Item {
	return &entity.Item{ID: id, SKU: "SKU-" + id, Name: "Artículo " + id, PurchasePrice: price, TrackStock: true}
}

func (f *fixture) account(t *testing.T, itemID string) *entity.StockAccount {
	t.Helper()
	account, err := f.store.Accounts().Get(itemID)
	require.NoError(t, err)
	return account
}

func (f *fixture) buy(t *testing.T, itemID string, qty, unitCost int64) {
	t.Helper()
	_, err := f.ledger.AddStock(context.Background(), ledger.AddStockInput{
		ItemID: itemID, Quantity: qty, SourceType: entity.SourcePurchase, UnitCost: unitCost,
	})
	require.NoError(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Compras
// ──────────────────────────────────────────────────────────────────────────────

func TestPurchase_AplicaTodasLasLineasYDejaRastro(t *testing.T) {
	f := newFixture(t, tracked("a1", 0), tracked("a2", 0))
	proc := processors.NewPurchaseProcessor(f.store, f.ledger)

	result, err := proc.Process(context.Background(), processors.PurchaseInput{
		Lines: []processors.PurchaseLine{
			{ItemID: "a2", Quantity: 3, UnitCost: 200},
			{ItemID: "a1", Quantity: 10, UnitCost: 100},
		},
		ActorID: "u1",
	})
	require.NoError(t, err)
	require.Len(t, result.Lines, 2)
	// Las líneas se procesan en orden ascendente de item id (orden de bloqueo).
	assert.Equal(t, "a1", result.Lines[0].ItemID)
	assert.Equal(t, "a2", result.Lines[1].ItemID)

	assert.Equal(t, int64(10), f.account(t, "a1").Quantity)
	assert.Equal(t, int64(3), f.account(t, "a2").Quantity)

	sources, err := f.store.Sources().ListByDocument(result.DocumentID)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, entity.SourcePurchase, sources[0].Kind)
	assert.Equal(t, entity.DirectionIn, sources[0].Direction)
}

func TestPurchase_LineaInvalidaRevierteElDocumento(t *testing.T) {
	f := newFixture(t, tracked("a1", 0))
	proc := processors.NewPurchaseProcessor(f.store, f.ledger)

	_, err := proc.Process(context.Background(), processors.PurchaseInput{
		Lines: []processors.PurchaseLine{
			{ItemID: "a1", Quantity: 10, UnitCost: 100},
			{ItemID: "a1", Quantity: -1, UnitCost: 100},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Equal(t, int64(0), f.account(t, "a1").Quantity, "todo-o-nada: la primera línea también se revierte")
	n, err := f.store.Movements().Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ventas
// ──────────────────────────────────────────────────────────────────────────────

func TestSale_NoEstricta_SaltaLineasSinStock(t *testing.T) {
	f := newFixture(t, tracked("a1", 0), tracked("a2", 0))
	f.buy(t, "a1", 10, 500)
	proc := processors.NewSaleProcessor(f.store, f.ledger)

	result, err := proc.Process(context.Background(), processors.SaleInput{
		Lines: []processors.SaleLine{
			{ItemID: "a1", Quantity: 4},
			{ItemID: "a2", Quantity: 1}, // sin stock
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, int64(2000), result.TotalCOGS)

	assert.Equal(t, int64(6), f.account(t, "a1").Quantity)
	assert.Equal(t, int64(0), f.account(t, "a2").Quantity)

	// La línea fallida no deja rastro para el recuento.
	sources, err := f.store.Sources().ListByDocument(result.DocumentID)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "a1", sources[0].ItemID)
	assert.Equal(t, int64(500), sources[0].UnitCost, "costo realmente aplicado")
}

func TestSale_Estricta_RevierteTodoAnteUnaFalla(t *testing.T) {
	f := newFixture(t, tracked("a1", 0), tracked("a2", 0))
	f.buy(t, "a1", 10, 500)
	proc := processors.NewSaleProcessor(f.store, f.ledger)

	_, err := proc.Process(context.Background(), processors.SaleInput{
		Strict: true,
		Lines: []processors.SaleLine{
			{ItemID: "a1", Quantity: 4},
			{ItemID: "a2", Quantity: 1},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(10), f.account(t, "a1").Quantity, "modo estricto: nada se aplica")
}

func TestSale_LiberaLaReservaDelCarrito(t *testing.T) {
	f := newFixture(t, tracked("a1", 0))
	f.buy(t, "a1", 10, 100)
	require.NoError(t, f.ledger.Reserve(context.Background(), "a1", 4))
	proc := processors.NewSaleProcessor(f.store, f.ledger)

	_, err := proc.Process(context.Background(), processors.SaleInput{
		Lines: []processors.SaleLine{{ItemID: "a1", Quantity: 4}},
	})
	require.NoError(t, err)

	account := f.account(t, "a1")
	assert.Equal(t, int64(6), account.Quantity)
	assert.Equal(t, int64(0), account.Reserved)
}

// ──────────────────────────────────────────────────────────────────────────────
// Devoluciones
// ──────────────────────────────────────────────────────────────────────────────

func TestReturn_EntradaConBaseDeCosto(t *testing.T) {
	f := newFixture(t, tracked("a1", 0))
	f.buy(t, "a1", 10, 100)
	proc := processors.NewReturnProcessor(f.store, f.ledger)

	result, err := proc.Process(context.Background(), processors.ReturnInput{
		Direction: entity.DirectionIn,
		Lines:     []processors.ReturnLine{{ItemID: "a1", Quantity: 5, UnitCost: 160}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Failed)

	account := f.account(t, "a1")
	assert.Equal(t, int64(15), account.Quantity)
	// ceil((10*100 + 5*160)/15) = ceil(1800/15) = 120
	assert.Equal(t, int64(120), account.AverageCost)
}

func TestReturn_DireccionInvalida(t *testing.T) {
	f := newFixture(t, tracked("a1", 0))
	proc := processors.NewReturnProcessor(f.store, f.ledger)

	_, err := proc.Process(context.Background(), processors.ReturnInput{
		Direction: "sideways",
		Lines:     []processors.ReturnLine{{ItemID: "a1", Quantity: 1, UnitCost: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReturn_SalidaSinStockSeCuentaComoFallida(t *testing.T) {
	f := newFixture(t, tracked("a1", 0))
	proc := processors.NewReturnProcessor(f.store, f.ledger)

	result, err := proc.Process(context.Background(), processors.ReturnInput{
		Direction: entity.DirectionOut,
		Lines:     []processors.ReturnLine{{ItemID: "a1", Quantity: 2, UnitCost: 50}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, int64(0), f.account(t, "a1").Quantity)
}

// ──────────────────────────────────────────────────────────────────────────────
// Conteo físico (opname)
// ──────────────────────────────────────────────────────────────────────────────

func TestAudit_VariacionPositivaEntraAlPrecioDeCompra(t *testing.T) {
	f := newFixture(t, tracked("a1", 900))
	f.buy(t, "a1", 10, 500)
	proc := processors.NewAuditProcessor(f.store, f.ledger)

	result, err := proc.Process(context.Background(), processors.AuditInput{
		Lines: []processors.AuditLine{{ItemID: "a1", CountedQty: 14}},
	})
	require.NoError(t, err)
	require.Len(t, result.Adjustments, 1)
	adj := result.Adjustments[0]
	assert.Equal(t, int64(10), adj.SystemQty)
	assert.Equal(t, int64(4), adj.Variance)
	require.NotEmpty(t, adj.MovementID)

	account := f.account(t, "a1")
	assert.Equal(t, int64(14), account.Quantity)
	// ceil((10*500 + 4*900)/14) = ceil(8600/14) = 615
	assert.Equal(t, int64(615), account.AverageCost)
}

func TestAudit_VariacionNegativaSaleAlCostoPromedio(t *testing.T) {
	f := newFixture(t, tracked("a1", 900))
	f.buy(t, "a1", 10, 500)
	proc := processors.NewAuditProcessor(f.store, f.ledger)

	result, err := proc.Process(context.Background(), processors.AuditInput{
		Lines: []processors.AuditLine{{ItemID: "a1", CountedQty: 7}},
	})
	require.NoError(t, err)
	adj := result.Adjustments[0]
	assert.Equal(t, int64(-3), adj.Variance)

	account := f.account(t, "a1")
	assert.Equal(t, int64(7), account.Quantity)
	assert.Equal(t, int64(500), account.AverageCost, "la salida de ajuste no toca el promedio")

	// La línea origen registra la base de costo de la salida.
	sources, err := f.store.Sources().ListByDocument(result.DocumentID)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, entity.DirectionOut, sources[0].Direction)
	assert.Equal(t, int64(3), sources[0].Quantity)
	assert.Equal(t, int64(500), sources[0].UnitCost)
}

func TestAudit_VariacionCeroNoGeneraMovimiento(t *testing.T) {
	f := newFixture(t, tracked("a1", 900))
	f.buy(t, "a1", 10, 500)
	proc := processors.NewAuditProcessor(f.store, f.ledger)

	result, err := proc.Process(context.Background(), processors.AuditInput{
		Lines: []processors.AuditLine{{ItemID: "a1", CountedQty: 10}},
	})
	require.NoError(t, err)
	assert.Empty(t, result.Adjustments[0].MovementID)

	n, err := f.store.Movements().Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "solo la compra inicial")
}

func TestAudit_RechazaConteoNegativo(t *testing.T) {
	f := newFixture(t, tracked("a1", 900))
	proc := processors.NewAuditProcessor(f.store, f.ledger)

	_, err := proc.Process(context.Background(), processors.AuditInput{
		Lines: []processors.AuditLine{{ItemID: "a1", CountedQty: -1}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
