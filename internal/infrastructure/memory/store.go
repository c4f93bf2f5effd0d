// Package memory implementa los puertos de persistencia sobre mapas en
// memoria. Se usa en tests y como driver de desarrollo (STORE_DRIVER=memory):
// mismo contrato que postgres, incluyendo serialización de transacciones y
// timeout de bloqueo.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dcastro/kardex-api/internal/application/ledger"
	"github.com/dcastro/kardex-api/internal/domain"
	"github.com/dcastro/kardex-api/internal/domain/entity"
	"github.com/dcastro/kardex-api/internal/domain/repository"
)

var _ ledger.TxRunner = (*Store)(nil)

// state es el contenido completo del almacén. Los movimientos, el historial de
// costos y las líneas origen son append-only; las cuentas y artículos se
// copian en profundidad al clonar porque sí se mutan.
type state struct {
	items     map[string]*entity.Item
	accounts  map[string]*entity.StockAccount
	movements []*entity.StockMovement
	costs     []*entity.CostHistory
	sources   []*entity.SourceLine
}

func newState() *state {
	return &state{
		items:    make(map[string]*entity.Item),
		accounts: make(map[string]*entity.StockAccount),
	}
}

// clone produce una copia sobre la que una transacción puede escribir sin
// tocar el estado confirmado. Si fn devuelve error el clon se descarta.
func (st *state) clone() *state {
	c := &state{
		items:     make(map[string]*entity.Item, len(st.items)),
		accounts:  make(map[string]*entity.StockAccount, len(st.accounts)),
		movements: append([]*entity.StockMovement(nil), st.movements...),
		costs:     append([]*entity.CostHistory(nil), st.costs...),
		sources:   append([]*entity.SourceLine(nil), st.sources...),
	}
	for id, it := range st.items {
		cp := *it
		c.items[id] = &cp
	}
	for id, acc := range st.accounts {
		cp := *acc
		if acc.AverageCostUpdatedAt != nil {
			t := *acc.AverageCostUpdatedAt
			cp.AverageCostUpdatedAt = &t
		}
		c.accounts[id] = &cp
	}
	return c
}

// Store almacén en memoria. Un semáforo de capacidad 1 serializa las
// transacciones, con el mismo timeout configurable que el lock_timeout de
// postgres; el mutex protege las lecturas directas fuera de transacción.
type Store struct {
	mu          sync.RWMutex
	sem         chan struct{}
	lockTimeout time.Duration
	st          *state
}

// NewStore crea un almacén vacío. lockTimeout <= 0 desactiva el timeout
// (la transacción espera indefinidamente).
func NewStore(lockTimeout time.Duration) *Store {
	return &Store{
		sem:         make(chan struct{}, 1),
		lockTimeout: lockTimeout,
		st:          newState(),
	}
}

// Run ejecuta fn con los repositorios ligados a un clon del estado y confirma
// el clon solo si fn no devuelve error. Si otra transacción mantiene el
// semáforo más allá del timeout, devuelve ErrConcurrencyTimeout igual que el
// adaptador postgres cuando expira lock_timeout.
func (s *Store) Run(ctx context.Context, fn func(
	accounts repository.StockAccountRepository,
	movements repository.StockMovementRepository,
	costs repository.CostHistoryRepository,
	items repository.ItemRepository,
	sources repository.SourceLineRepository,
) error) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer func() { <-s.sem }()

	s.mu.RLock()
	draft := s.st.clone()
	s.mu.RUnlock()

	b := binding{s: s, st: draft}
	err := fn(
		&StockAccountRepo{b},
		&StockMovementRepo{b},
		&CostHistoryRepo{b},
		&ItemRepo{b},
		&SourceLineRepo{b},
	)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.st = draft
	s.mu.Unlock()
	return nil
}

func (s *Store) acquire(ctx context.Context) error {
	if s.lockTimeout <= 0 {
		select {
		case s.sem <- struct{}{}:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	timer := time.NewTimer(s.lockTimeout)
	defer timer.Stop()
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-timer.C:
		return domain.ErrConcurrencyTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Items repositorio de artículos sobre el estado confirmado (lecturas fuera de tx).
func (s *Store) Items() *ItemRepo { return &ItemRepo{binding{s: s}} }

// Accounts repositorio de cuentas de stock sobre el estado confirmado.
func (s *Store) Accounts() *StockAccountRepo { return &StockAccountRepo{binding{s: s}} }

// Movements repositorio de movimientos sobre el estado confirmado.
func (s *Store) Movements() *StockMovementRepo { return &StockMovementRepo{binding{s: s}} }

// Costs repositorio de historial de costos sobre el estado confirmado.
func (s *Store) Costs() *CostHistoryRepo { return &CostHistoryRepo{binding{s: s}} }

// Sources repositorio de líneas origen sobre el estado confirmado.
func (s *Store) Sources() *SourceLineRepo { return &SourceLineRepo{binding{s: s}} }

// binding liga un repositorio al borrador de una transacción (st != nil) o al
// estado confirmado bajo mutex (st == nil). Dentro de una transacción no hace
// falta lock: el semáforo ya serializa.
type binding struct {
	s  *Store
	st *state
}

func (b binding) view(fn func(*state)) {
	if b.st != nil {
		fn(b.st)
		return
	}
	b.s.mu.RLock()
	defer b.s.mu.RUnlock()
	fn(b.s.st)
}

func (b binding) mutate(fn func(*state)) {
	if b.st != nil {
		fn(b.st)
		return
	}
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	fn(b.s.st)
}
