// Package reports contiene los casos de uso de lectura para el operador.
// Solo observan estado confirmado: jamás toman bloqueos de escritura.
package reports

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/dcastro/kardex-api/internal/application/dto"
	"github.com/dcastro/kardex-api/internal/domain/repository"
)

// ValuationUseCase genera el reporte de valorización del inventario: el valor
// en libros por artículo (cantidad × costo promedio) y su participación sobre
// el total. Los agregados se calculan en decimal para no perder precisión en
// los porcentajes.
type ValuationUseCase struct {
	accounts repository.StockAccountRepository
}

// NewValuationUseCase construye el caso de uso.
func NewValuationUseCase(accounts repository.StockAccountRepository) *ValuationUseCase {
	return &ValuationUseCase{accounts: accounts}
}

// GetValuation devuelve la valorización por artículo ordenada por valor
// descendente, junto con el total general.
func (uc *ValuationUseCase) GetValuation(ctx context.Context) (*dto.ValuationReportDTO, error) {
	rows, err := uc.accounts.ListValuation(ctx)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.StockValue)
	}

	hundred := decimal.NewFromInt(100)
	items := make([]dto.ValuationItemDTO, 0, len(rows))
	for _, row := range rows {
		sharePct := decimal.Zero
		if total.GreaterThan(decimal.Zero) {
			sharePct = row.StockValue.Div(total).Mul(hundred).Round(2)
		}
		items = append(items, dto.ValuationItemDTO{
			ItemID:      row.ItemID,
			SKU:         row.SKU,
			Name:        row.Name,
			Quantity:    row.Quantity,
			AverageCost: row.AverageCost,
			StockValue:  row.StockValue,
			SharePct:    sharePct,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].StockValue.GreaterThan(items[j].StockValue)
	})

	return &dto.ValuationReportDTO{
		TotalValue: total,
		Items:      items,
	}, nil
}
