package ledger

import (
	"context"
	"time"

	"github.com/dcastro/kardex-api/internal/domain"
	"github.com/dcastro/kardex-api/internal/domain/costing"
	"github.com/dcastro/kardex-api/internal/domain/entity"
	"github.com/dcastro/kardex-api/internal/domain/repository"
)

// StockLedger es el motor de mutación del inventario perpetuo: AddStock y
// ReduceStock son los únicos escritores de StockAccount, StockMovement y
// CostHistory. Cada operación bloquea la fila de la cuenta (SELECT FOR UPDATE)
// por toda la transacción, de modo que haya a lo sumo una mutación en vuelo por
// artículo y el recálculo del costo promedio sea libre de carreras.
type StockLedger struct {
	txRunner TxRunner
}

// NewStockLedger construye el servicio.
func NewStockLedger(txRunner TxRunner) *StockLedger {
	return &StockLedger{txRunner: txRunner}
}

// AddStockInput entrada para registrar una entrada de inventario.
// OccurredAt fija el timestamp de los registros generados (lo usa el recuento
// para conservar las fechas de negocio originales); nil = ahora.
// CostTrigger reescribe el trigger del historial de costo; vacío = SourceType.
type AddStockInput struct {
	ItemID      string
	Quantity    int64
	SourceType  string
	SourceID    *string
	Note        string
	ActorID     string
	UnitCost    int64
	OccurredAt  *time.Time
	CostTrigger string
}

// ReduceStockInput entrada para registrar una salida de inventario.
// UnitCostOverride reemplaza el costo promedio vigente como base del COGS
// (nil = costo promedio). ReleaseReserved libera primero la reserva de la
// operación que se está confirmando, dentro del mismo alcance de bloqueo.
type ReduceStockInput struct {
	ItemID           string
	Quantity         int64
	SourceType       string
	SourceID         *string
	Note             string
	ActorID          string
	UnitCostOverride *int64
	ReleaseReserved  bool
	OccurredAt       *time.Time
}

// ReduceStockResult resultado explícito de una salida. La insuficiencia de
// stock no es un error del llamado: se reporta en Success/Err para que un
// orquestador por lotes decida si aborta o continúa.
type ReduceStockResult struct {
	Success    bool
	MovementID string
	COGS       int64
	Err        error
}

// AddStock registra una entrada en su propia transacción y devuelve el id del
// movimiento generado. Rechaza con domain.ErrInvalidInput antes de escribir
// nada si la cantidad no es positiva, el costo es negativo o el tipo de
// documento no admite entradas.
func (l *StockLedger) AddStock(ctx context.Context, in AddStockInput) (string, error) {
	var movementID string
	err := l.txRunner.Run(ctx, func(
		accounts repository.StockAccountRepository,
		movements repository.StockMovementRepository,
		costs repository.CostHistoryRepository,
		items repository.ItemRepository,
		_ repository.SourceLineRepository,
	) error {
		id, err := l.AddStockInTx(accounts, movements, costs, items, in)
		if err != nil {
			return err
		}
		movementID = id
		return nil
	})
	if err != nil {
		return "", err
	}
	return movementID, nil
}

// AddStockInTx ejecuta la entrada usando repositorios ya atados a la
// transacción del llamador (documentos multilínea y recuento). El llamador es
// responsable de procesar sus líneas en orden ascendente de item id para que
// los bloqueos se adquieran siempre en el mismo orden.
func (l *StockLedger) AddStockInTx(
	accounts repository.StockAccountRepository,
	movements repository.StockMovementRepository,
	costs repository.CostHistoryRepository,
	items repository.ItemRepository,
	in AddStockInput,
) (string, error) {
	if in.Quantity <= 0 || in.UnitCost < 0 {
		return "", domain.ErrInvalidInput
	}
	if !entity.ValidSourceForDirection(in.SourceType, entity.DirectionIn) {
		return "", domain.ErrInvalidInput
	}
	if err := l.checkItem(items, in.ItemID); err != nil {
		return "", err
	}

	// Bloquea la fila de la cuenta: nadie más lee ni recalcula hasta el commit.
	account, err := accounts.GetForUpdate(in.ItemID)
	if err != nil {
		return "", err
	}

	ts := time.Now().UTC()
	if in.OccurredAt != nil {
		ts = *in.OccurredAt
	}

	newAverage := costing.WeightedAverage(account.Quantity, account.AverageCost, in.Quantity, in.UnitCost)
	before := account.Quantity
	account.Quantity += in.Quantity
	account.ClampReserved()
	account.UpdatedAt = ts

	movement := &entity.StockMovement{
		ItemID:         in.ItemID,
		Direction:      entity.DirectionIn,
		Quantity:       in.Quantity,
		QuantityBefore: before,
		QuantityAfter:  account.Quantity,
		SourceType:     in.SourceType,
		SourceID:       in.SourceID,
		Note:           in.Note,
		ActorID:        in.ActorID,
		CreatedAt:      ts,
	}
	if err := movements.Create(movement); err != nil {
		return "", err
	}

	// Historial de costo: solo si la entrada cambió el promedio.
	if newAverage != account.AverageCost {
		trigger := in.SourceType
		if in.CostTrigger != "" {
			trigger = in.CostTrigger
		}
		if err := costs.Create(&entity.CostHistory{
			ItemID:         in.ItemID,
			OldAverageCost: account.AverageCost,
			NewAverageCost: newAverage,
			TriggerType:    trigger,
			SourceID:       in.SourceID,
			CreatedAt:      ts,
		}); err != nil {
			return "", err
		}
		account.AverageCost = newAverage
		account.AverageCostUpdatedAt = &ts
	}

	if err := accounts.Upsert(account); err != nil {
		return "", err
	}
	return movement.ID, nil
}

// ReduceStock registra una salida en su propia transacción. La insuficiencia de
// stock se devuelve en el resultado (Success=false), no como error, y no deja
// ninguna escritura. Las salidas jamás tocan el costo promedio.
func (l *StockLedger) ReduceStock(ctx context.Context, in ReduceStockInput) (ReduceStockResult, error) {
	var result ReduceStockResult
	err := l.txRunner.Run(ctx, func(
		accounts repository.StockAccountRepository,
		movements repository.StockMovementRepository,
		costs repository.CostHistoryRepository,
		items repository.ItemRepository,
		_ repository.SourceLineRepository,
	) error {
		res, err := l.ReduceStockInTx(accounts, movements, items, in)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return ReduceStockResult{Err: err}, err
	}
	return result, nil
}

// ReduceStockInTx ejecuta la salida con repositorios atados a la transacción
// del llamador. Mismo contrato de orden de bloqueo que AddStockInTx.
func (l *StockLedger) ReduceStockInTx(
	accounts repository.StockAccountRepository,
	movements repository.StockMovementRepository,
	items repository.ItemRepository,
	in ReduceStockInput,
) (ReduceStockResult, error) {
	if in.Quantity <= 0 {
		return ReduceStockResult{}, domain.ErrInvalidInput
	}
	if in.UnitCostOverride != nil && *in.UnitCostOverride < 0 {
		return ReduceStockResult{}, domain.ErrInvalidInput
	}
	if !entity.ValidSourceForDirection(in.SourceType, entity.DirectionOut) {
		return ReduceStockResult{}, domain.ErrInvalidInput
	}
	item, err := items.GetByID(in.ItemID)
	if err != nil {
		return ReduceStockResult{}, err
	}
	if !item.TrackStock {
		return ReduceStockResult{}, domain.ErrItemNotTracked
	}

	account, err := accounts.GetForUpdate(in.ItemID)
	if err != nil {
		return ReduceStockResult{}, err
	}

	ts := time.Now().UTC()
	if in.OccurredAt != nil {
		ts = *in.OccurredAt
	}

	// La operación que se confirma devuelve primero su reserva; así el chequeo
	// de disponibilidad no descuenta dos veces las mismas unidades.
	if in.ReleaseReserved {
		released := in.Quantity
		if released > account.Reserved {
			released = account.Reserved
		}
		account.Reserved -= released
	}

	if !item.AllowBackorder && account.Available() < in.Quantity {
		return ReduceStockResult{Success: false, Err: domain.ErrInsufficientStock}, nil
	}

	// El COGS sale del costo promedio vigente (u override explícito); la salida
	// nunca recalcula el promedio.
	unitCost := account.AverageCost
	if in.UnitCostOverride != nil {
		unitCost = *in.UnitCostOverride
	}
	cogs := costing.COGS(in.Quantity, unitCost)

	before := account.Quantity
	account.Quantity -= in.Quantity
	account.ClampReserved()
	account.UpdatedAt = ts

	movement := &entity.StockMovement{
		ItemID:         in.ItemID,
		Direction:      entity.DirectionOut,
		Quantity:       in.Quantity,
		QuantityBefore: before,
		QuantityAfter:  account.Quantity,
		SourceType:     in.SourceType,
		SourceID:       in.SourceID,
		Note:           in.Note,
		ActorID:        in.ActorID,
		CreatedAt:      ts,
	}
	if err := movements.Create(movement); err != nil {
		return ReduceStockResult{}, err
	}
	if err := accounts.Upsert(account); err != nil {
		return ReduceStockResult{}, err
	}
	return ReduceStockResult{Success: true, MovementID: movement.ID, COGS: cogs}, nil
}

// Reserve aparta qty unidades contra una operación aún no confirmada (carrito
// en espera). Falla con ErrInsufficientStock si no hay disponible suficiente;
// la reserva nunca excede la cantidad en mano.
func (l *StockLedger) Reserve(ctx context.Context, itemID string, qty int64) error {
	if qty <= 0 {
		return domain.ErrInvalidInput
	}
	return l.txRunner.Run(ctx, func(
		accounts repository.StockAccountRepository,
		_ repository.StockMovementRepository,
		_ repository.CostHistoryRepository,
		items repository.ItemRepository,
		_ repository.SourceLineRepository,
	) error {
		if err := l.checkItem(items, itemID); err != nil {
			return err
		}
		account, err := accounts.GetForUpdate(itemID)
		if err != nil {
			return err
		}
		if account.Available() < qty {
			return domain.ErrInsufficientStock
		}
		account.Reserved += qty
		account.UpdatedAt = time.Now().UTC()
		return accounts.Upsert(account)
	})
}

// Release devuelve qty unidades reservadas al disponible (operación abandonada
// o expirada). Liberar más de lo reservado deja la reserva en cero.
func (l *StockLedger) Release(ctx context.Context, itemID string, qty int64) error {
	if qty <= 0 {
		return domain.ErrInvalidInput
	}
	return l.txRunner.Run(ctx, func(
		accounts repository.StockAccountRepository,
		_ repository.StockMovementRepository,
		_ repository.CostHistoryRepository,
		items repository.ItemRepository,
		_ repository.SourceLineRepository,
	) error {
		if err := l.checkItem(items, itemID); err != nil {
			return err
		}
		account, err := accounts.GetForUpdate(itemID)
		if err != nil {
			return err
		}
		account.Reserved -= qty
		if account.Reserved < 0 {
			account.Reserved = 0
		}
		account.UpdatedAt = time.Now().UTC()
		return accounts.Upsert(account)
	})
}

// checkItem valida que el artículo exista y maneje inventario.
func (l *StockLedger) checkItem(items repository.ItemRepository, itemID string) error {
	item, err := items.GetByID(itemID)
	if err != nil {
		return err
	}
	if !item.TrackStock {
		return domain.ErrItemNotTracked
	}
	return nil
}
