package services

import (
	"context"

	"go.uber.org/zap"

	"ticket-system/internal/entities"
	"ticket-system/internal/repositories"
	"ticket-system/pkg/types"
)

type ProformaServiceInterface interface {
	ListAccepted(ctx context.Context, filter types.Filter) ([]entities.Proforma, uint64, error)
}

type ProformaService struct {
	repo   repositories.ProformaRepositoryInterface
	logger *zap.Logger
}

func NewProformaService(repo repositories.ProformaRepositoryInterface, logger *zap.Logger) ProformaServiceInterface {
	return &ProformaService{repo: repo, logger: logger}
}

// ListAccepted - проформы, из которых можно создать заявку.
func (s *ProformaService) ListAccepted(ctx context.Context, filter types.Filter) ([]entities.Proforma, uint64, error) {
	return s.repo.ListAccepted(ctx, filter)
}
