package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dcastro/kardex-api/internal/domain"
	"github.com/dcastro/kardex-api/internal/domain/entity"
	"github.com/dcastro/kardex-api/internal/domain/repository"
)

var (
	_ repository.ItemRepository         = (*ItemRepo)(nil)
	_ repository.StockAccountRepository = (*StockAccountRepo)(nil)
	_ repository.StockMovementRepository = (*StockMovementRepo)(nil)
	_ repository.CostHistoryRepository  = (*CostHistoryRepo)(nil)
	_ repository.SourceLineRepository   = (*SourceLineRepo)(nil)
)

// ItemRepo implementación en memoria de ItemRepository.
type ItemRepo struct{ b binding }

func (r *ItemRepo) Create(item *entity.Item) error {
	var err error
	r.b.mutate(func(st *state) {
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		for _, existing := range st.items {
			if existing.SKU == item.SKU {
				err = domain.ErrDuplicate
				return
			}
		}
		now := time.Now()
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}
		item.UpdatedAt = now
		cp := *item
		st.items[item.ID] = &cp
	})
	return err
}

func (r *ItemRepo) GetByID(id string) (*entity.Item, error) {
	var item *entity.Item
	r.b.view(func(st *state) {
		if it, ok := st.items[id]; ok {
			cp := *it
			item = &cp
		}
	})
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (r *ItemRepo) GetBySKU(sku string) (*entity.Item, error) {
	var item *entity.Item
	r.b.view(func(st *state) {
		for _, it := range st.items {
			if it.SKU == sku {
				cp := *it
				item = &cp
				return
			}
		}
	})
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (r *ItemRepo) List(limit, offset int) ([]*entity.Item, error) {
	var list []*entity.Item
	r.b.view(func(st *state) {
		for _, it := range st.items {
			cp := *it
			list = append(list, &cp)
		}
	})
	sort.Slice(list, func(i, j int) bool { return list[i].SKU < list[j].SKU })
	return paginate(list, limit, offset), nil
}

// StockAccountRepo implementación en memoria de StockAccountRepository.
type StockAccountRepo struct{ b binding }

func (r *StockAccountRepo) Get(itemID string) (*entity.StockAccount, error) {
	var acc *entity.StockAccount
	r.b.view(func(st *state) {
		if a, ok := st.accounts[itemID]; ok {
			cp := *a
			acc = &cp
		}
	})
	if acc == nil {
		// Igual que el adaptador postgres: cuenta inexistente = cuenta en cero.
		return &entity.StockAccount{ItemID: itemID}, nil
	}
	return acc, nil
}

// GetForUpdate en memoria equivale a Get: el semáforo del Store ya serializa
// las transacciones, no hay fila que bloquear.
func (r *StockAccountRepo) GetForUpdate(itemID string) (*entity.StockAccount, error) {
	return r.Get(itemID)
}

func (r *StockAccountRepo) Upsert(account *entity.StockAccount) error {
	r.b.mutate(func(st *state) {
		account.UpdatedAt = time.Now()
		cp := *account
		if account.AverageCostUpdatedAt != nil {
			t := *account.AverageCostUpdatedAt
			cp.AverageCostUpdatedAt = &t
		}
		st.accounts[account.ItemID] = &cp
	})
	return nil
}

func (r *StockAccountRepo) List(limit, offset int) ([]*entity.StockAccount, error) {
	var list []*entity.StockAccount
	r.b.view(func(st *state) {
		for _, a := range st.accounts {
			cp := *a
			list = append(list, &cp)
		}
	})
	sort.Slice(list, func(i, j int) bool { return list[i].ItemID < list[j].ItemID })
	return paginate(list, limit, offset), nil
}

func (r *StockAccountRepo) ListZeroCost() ([]*entity.StockAccount, error) {
	var list []*entity.StockAccount
	r.b.view(func(st *state) {
		for _, a := range st.accounts {
			if a.AverageCost == 0 || a.AverageCostUpdatedAt == nil {
				cp := *a
				list = append(list, &cp)
			}
		}
	})
	sort.Slice(list, func(i, j int) bool { return list[i].ItemID < list[j].ItemID })
	return list, nil
}

func (r *StockAccountRepo) ResetAll() error {
	r.b.mutate(func(st *state) {
		now := time.Now()
		for _, a := range st.accounts {
			a.Quantity = 0
			a.Reserved = 0
			a.AverageCost = 0
			a.AverageCostUpdatedAt = nil
			a.UpdatedAt = now
		}
	})
	return nil
}

func (r *StockAccountRepo) ListValuation(ctx context.Context) ([]repository.ValuationRow, error) {
	var rows []repository.ValuationRow
	r.b.view(func(st *state) {
		for _, a := range st.accounts {
			item, ok := st.items[a.ItemID]
			if !ok || !item.TrackStock {
				continue
			}
			rows = append(rows, repository.ValuationRow{
				ItemID:      a.ItemID,
				SKU:         item.SKU,
				Name:        item.Name,
				Quantity:    a.Quantity,
				AverageCost: a.AverageCost,
				StockValue:  decimal.NewFromInt(a.Quantity).Mul(decimal.NewFromInt(a.AverageCost)),
			})
		}
	})
	sort.Slice(rows, func(i, j int) bool { return rows[i].StockValue.GreaterThan(rows[j].StockValue) })
	return rows, nil
}

// StockMovementRepo implementación en memoria de StockMovementRepository.
type StockMovementRepo struct{ b binding }

func (r *StockMovementRepo) Create(movement *entity.StockMovement) error {
	r.b.mutate(func(st *state) {
		if movement.ID == "" {
			movement.ID = uuid.New().String()
		}
		if movement.CreatedAt.IsZero() {
			movement.CreatedAt = time.Now()
		}
		cp := *movement
		st.movements = append(st.movements, &cp)
	})
	return nil
}

func (r *StockMovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	var mov *entity.StockMovement
	r.b.view(func(st *state) {
		for _, m := range st.movements {
			if m.ID == id {
				cp := *m
				mov = &cp
				return
			}
		}
	})
	if mov == nil {
		return nil, domain.ErrNotFound
	}
	return mov, nil
}

func (r *StockMovementRepo) ListByItem(itemID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	var list []*entity.StockMovement
	r.b.view(func(st *state) {
		for _, m := range st.movements {
			if m.ItemID != itemID {
				continue
			}
			if from != nil && m.CreatedAt.Before(*from) {
				continue
			}
			if to != nil && m.CreatedAt.After(*to) {
				continue
			}
			cp := *m
			list = append(list, &cp)
		}
	})
	// Más reciente primero, igual que el ORDER BY created_at DESC de postgres.
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return paginate(list, limit, offset), nil
}

func (r *StockMovementRepo) Count() (int64, error) {
	var n int64
	r.b.view(func(st *state) { n = int64(len(st.movements)) })
	return n, nil
}

func (r *StockMovementRepo) Truncate() error {
	r.b.mutate(func(st *state) { st.movements = nil })
	return nil
}

// CostHistoryRepo implementación en memoria de CostHistoryRepository.
type CostHistoryRepo struct{ b binding }

func (r *CostHistoryRepo) Create(entry *entity.CostHistory) error {
	r.b.mutate(func(st *state) {
		if entry.ID == "" {
			entry.ID = uuid.New().String()
		}
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = time.Now()
		}
		cp := *entry
		st.costs = append(st.costs, &cp)
	})
	return nil
}

func (r *CostHistoryRepo) ListByItem(itemID string, limit, offset int) ([]*entity.CostHistory, error) {
	var list []*entity.CostHistory
	r.b.view(func(st *state) {
		for _, c := range st.costs {
			if c.ItemID == itemID {
				cp := *c
				list = append(list, &cp)
			}
		}
	})
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return paginate(list, limit, offset), nil
}

func (r *CostHistoryRepo) Count() (int64, error) {
	var n int64
	r.b.view(func(st *state) { n = int64(len(st.costs)) })
	return n, nil
}

func (r *CostHistoryRepo) Truncate() error {
	r.b.mutate(func(st *state) { st.costs = nil })
	return nil
}

// SourceLineRepo implementación en memoria de SourceLineRepository.
type SourceLineRepo struct{ b binding }

func (r *SourceLineRepo) Create(line *entity.SourceLine) error {
	r.b.mutate(func(st *state) {
		if line.ID == "" {
			line.ID = uuid.New().String()
		}
		if line.CreatedAt.IsZero() {
			line.CreatedAt = line.OccurredAt
		}
		cp := *line
		st.sources = append(st.sources, &cp)
	})
	return nil
}

func (r *SourceLineRepo) ListByDocument(documentID string) ([]*entity.SourceLine, error) {
	var list []*entity.SourceLine
	r.b.view(func(st *state) {
		for _, l := range st.sources {
			if l.DocumentID == documentID {
				cp := *l
				list = append(list, &cp)
			}
		}
	})
	sort.SliceStable(list, func(i, j int) bool { return list[i].ItemID < list[j].ItemID })
	return list, nil
}

func (r *SourceLineRepo) ListChronological() ([]*entity.SourceLine, error) {
	var list []*entity.SourceLine
	r.b.view(func(st *state) {
		for _, l := range st.sources {
			cp := *l
			list = append(list, &cp)
		}
	})
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if !a.OccurredAt.Equal(b.OccurredAt) {
			return a.OccurredAt.Before(b.OccurredAt)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return list, nil
}

// paginate aplica limit/offset al estilo SQL: limit <= 0 devuelve todo.
func paginate[T any](list []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(list) {
			return nil
		}
		list = list[offset:]
	}
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
