package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ticket-system/internal/entities"
	db "ticket-system/internal/infrastructure/bd"
	apperrors "ticket-system/pkg/errors"
	"ticket-system/pkg/types"
)

const (
	proformaTable  = "proformas"
	proformaFields = `id, proforma_number, proforma_date, customer_name, vehicle_info, status, subtotal, vat_rate,
		vat_amount, total_amount, notes, created_at`
	proformaItemFields = "id, proforma_id, description, quantity, unit_price, total"
)

var allowedProformaFields = map[string]string{
	"proforma_number": "proforma_number",
	"proforma_date":   "proforma_date",
	"customer_name":   "customer_name",
	"total_amount":    "total_amount",
	"created_at":      "created_at",
}

type ProformaRepositoryInterface interface {
	FindByID(ctx context.Context, tx pgx.Tx, id int64) (*entities.Proforma, error)
	ListAccepted(ctx context.Context, filter types.Filter) ([]entities.Proforma, uint64, error)
}

type proformaRepository struct {
	storage *pgxpool.Pool
}

func NewProformaRepository(storage *pgxpool.Pool) ProformaRepositoryInterface {
	return &proformaRepository{storage: storage}
}

func (r *proformaRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func (r *proformaRepository) FindByID(ctx context.Context, tx pgx.Tx, id int64) (*entities.Proforma, error) {
	q := r.getQuerier(tx)
	query, args, err := psql.Select(proformaFields).From(proformaTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL проформы: %w", err)
	}
	p, err := collectOne[entities.Proforma](ctx, q, query, args...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrProformaNotFound
		}
		return nil, fmt.Errorf("ошибка поиска проформы %d: %w", id, err)
	}

	items, err := r.fetchItems(ctx, q, []int64{id})
	if err != nil {
		return nil, err
	}
	p.Items = items[id]
	if p.Items == nil {
		p.Items = []entities.ProformaItem{}
	}
	return p, nil
}

// ListAccepted - только проформы со статусом Accepted, с позициями.
func (r *proformaRepository) ListAccepted(ctx context.Context, filter types.Filter) ([]entities.Proforma, uint64, error) {
	where := sq.Eq{"status": entities.ProformaStatusAccepted}

	countQuery, countArgs, err := db.ApplyFilters(psql.Select("COUNT(*)").From(proformaTable).Where(where), filter, allowedProformaFields).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки SQL подсчета проформ: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета проформ: %w", err)
	}
	if total == 0 {
		return []entities.Proforma{}, 0, nil
	}

	builder := db.ApplyListParams(psql.Select(proformaFields).From(proformaTable).Where(where), filter, allowedProformaFields).
		OrderBy("proforma_date DESC", "id DESC")
	proformas, err := collect[entities.Proforma](ctx, r.storage, builder)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения проформ: %w", err)
	}

	ids := make([]int64, 0, len(proformas))
	for _, p := range proformas {
		ids = append(ids, p.ID)
	}
	items, err := r.fetchItems(ctx, r.storage, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range proformas {
		proformas[i].Items = items[proformas[i].ID]
		if proformas[i].Items == nil {
			proformas[i].Items = []entities.ProformaItem{}
		}
	}
	return proformas, total, nil
}

func (r *proformaRepository) fetchItems(ctx context.Context, q Querier, ids []int64) (map[int64][]entities.ProformaItem, error) {
	out := make(map[int64][]entities.ProformaItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	builder := psql.Select(proformaItemFields).From("proforma_items").Where(sq.Eq{"proforma_id": ids}).OrderBy("id")
	items, err := collect[entities.ProformaItem](ctx, q, builder)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения позиций проформ: %w", err)
	}
	for _, it := range items {
		out[it.ProformaID] = append(out[it.ProformaID], it)
	}
	return out, nil
}
