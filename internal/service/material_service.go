package service

import (
	"context"
	"errors"

	"yardpos/internal/dto"
	"yardpos/internal/model"
	"yardpos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var ErrMaterialNotFound = errors.New("material not found")

// MaterialService manages the yard's price list. Stock figures come from the
// external aggregator and are attached best-effort: a down aggregator never
// blocks price-list reads.
type MaterialService interface {
	Create(ctx context.Context, req dto.CreateMaterialRequest) (*dto.MaterialResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.MaterialResponse, error)
	List(ctx context.Context, includeInactive bool) ([]dto.MaterialResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateMaterialRequest) (*dto.MaterialResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type materialService struct {
	repo  repository.MaterialRepository
	stock StockProvider
}

func NewMaterialService(repo repository.MaterialRepository, stock StockProvider) MaterialService {
	return &materialService{repo: repo, stock: stock}
}

func (s *materialService) Create(ctx context.Context, req dto.CreateMaterialRequest) (*dto.MaterialResponse, error) {
	unit := req.Unit
	if unit == "" {
		unit = "kg"
	}
	m := &model.Material{
		Name:           req.Name,
		Unit:           unit,
		ReferencePrice: req.ReferencePrice,
		Active:         true,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return s.toResponse(ctx, m), nil
}

func (s *materialService) Get(ctx context.Context, id uuid.UUID) (*dto.MaterialResponse, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrMaterialNotFound
	}
	return s.toResponse(ctx, m), nil
}

func (s *materialService) List(ctx context.Context, includeInactive bool) ([]dto.MaterialResponse, error) {
	ms, err := s.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.MaterialResponse, 0, len(ms))
	for i := range ms {
		resp = append(resp, *s.toResponse(ctx, &ms[i]))
	}
	return resp, nil
}

func (s *materialService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateMaterialRequest) (*dto.MaterialResponse, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrMaterialNotFound
	}
	if req.Name != "" {
		m.Name = req.Name
	}
	if req.Unit != "" {
		m.Unit = req.Unit
	}
	if req.ReferencePrice != nil {
		m.ReferencePrice = *req.ReferencePrice
	}
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	return s.toResponse(ctx, m), nil
}

func (s *materialService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.repo.Deactivate(ctx, id)
}

func (s *materialService) toResponse(ctx context.Context, m *model.Material) *dto.MaterialResponse {
	resp := &dto.MaterialResponse{
		ID:             m.ID.String(),
		Name:           m.Name,
		Unit:           m.Unit,
		ReferencePrice: m.ReferencePrice,
		Active:         m.Active,
	}
	if s.stock != nil {
		if qty, err := s.stock.CurrentStock(ctx, m.Name); err == nil {
			resp.CurrentStock = &qty
		} else {
			log.Debug().Err(err).Str("material", m.Name).Msg("stock lookup failed")
		}
	}
	return resp
}
