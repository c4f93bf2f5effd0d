package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/dcastro/kardex-api/internal/domain/entity"
)

// ValuationRow es una fila del reporte de valorización: cantidad por costo
// promedio como NUMERIC para no perder precisión en los agregados.
type ValuationRow struct {
	ItemID      string
	SKU         string
	Name        string
	Quantity    int64
	AverageCost int64
	StockValue  decimal.Decimal
}

// StockAccountRepository define el puerto para la cuenta de stock por artículo.
// Get/Upsert se usan fuera y dentro de transacciones; GetForUpdate bloquea la
// fila (SELECT FOR UPDATE) y solo tiene sentido dentro de una transacción.
type StockAccountRepository interface {
	Get(itemID string) (*entity.StockAccount, error)
	GetForUpdate(itemID string) (*entity.StockAccount, error)
	Upsert(account *entity.StockAccount) error
	// List lista ordenado por item_id; limit <= 0 lista todo.
	List(limit, offset int) ([]*entity.StockAccount, error)
	// ListZeroCost devuelve las cuentas con costo promedio cero o nunca inicializado (backfill).
	ListZeroCost() ([]*entity.StockAccount, error)
	// ResetAll deja todas las cuentas en cero (solo recuento total).
	ResetAll() error
	// ListValuation devuelve la valorización del inventario por artículo.
	ListValuation(ctx context.Context) ([]ValuationRow, error)
}
