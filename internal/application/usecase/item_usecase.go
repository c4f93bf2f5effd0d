package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dcastro/kardex-api/internal/application/dto"
	"github.com/dcastro/kardex-api/internal/application/ledger"
	"github.com/dcastro/kardex-api/internal/domain"
	"github.com/dcastro/kardex-api/internal/domain/entity"
	"github.com/dcastro/kardex-api/internal/domain/repository"
)

// ItemUseCase casos de uso para artículos del catálogo. Registrar un artículo
// con seguimiento crea al mismo tiempo su cuenta de stock en cero; de ahí en
// adelante la cuenta solo la muta el StockLedger.
type ItemUseCase struct {
	txRunner ledger.TxRunner
	repo     repository.ItemRepository
}

// NewItemUseCase construye el caso de uso.
func NewItemUseCase(txRunner ledger.TxRunner, repo repository.ItemRepository) *ItemUseCase {
	return &ItemUseCase{txRunner: txRunner, repo: repo}
}

// Create registra un artículo nuevo y su cuenta de stock cero-valuada.
func (uc *ItemUseCase) Create(ctx context.Context, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	if in.SKU == "" || in.Name == "" || in.PurchasePrice < 0 {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.repo.GetBySKU(in.SKU)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	now := time.Now().UTC()
	item := &entity.Item{
		ID:             uuid.New().String(),
		SKU:            in.SKU,
		Name:           in.Name,
		PurchasePrice:  in.PurchasePrice,
		TrackStock:     in.TrackStock,
		AllowBackorder: in.AllowBackorder,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = uc.txRunner.Run(ctx, func(
		accounts repository.StockAccountRepository,
		_ repository.StockMovementRepository,
		_ repository.CostHistoryRepository,
		items repository.ItemRepository,
		_ repository.SourceLineRepository,
	) error {
		if err := items.Create(item); err != nil {
			return err
		}
		if !item.TrackStock {
			return nil
		}
		return accounts.Upsert(&entity.StockAccount{ItemID: item.ID, UpdatedAt: now})
	})
	if err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// GetByID obtiene un artículo por ID.
func (uc *ItemUseCase) GetByID(id string) (*dto.ItemResponse, error) {
	item, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// List lista artículos con paginación.
func (uc *ItemUseCase) List(limit, offset int) (*dto.ItemListResponse, error) {
	list, err := uc.repo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ItemResponse, 0, len(list))
	for _, it := range list {
		items = append(items, *toItemResponse(it))
	}
	return &dto.ItemListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func toItemResponse(it *entity.Item) *dto.ItemResponse {
	if it == nil {
		return nil
	}
	return &dto.ItemResponse{
		ID:             it.ID,
		SKU:            it.SKU,
		Name:           it.Name,
		PurchasePrice:  it.PurchasePrice,
		TrackStock:     it.TrackStock,
		AllowBackorder: it.AllowBackorder,
		CreatedAt:      it.CreatedAt,
		UpdatedAt:      it.UpdatedAt,
	}
}
