package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ticket-system/internal/entities"
	apperrors "ticket-system/pkg/errors"
)

const vehicleFields = "id, customer_id, customer_type, make, model, year, license_plate, image_url, created_at"

type VehicleRepositoryInterface interface {
	Ensure(ctx context.Context, tx pgx.Tx, v entities.Vehicle) (int64, error)
	FindByID(ctx context.Context, id int64) (*entities.Vehicle, error)
}

type vehicleRepository struct {
	storage *pgxpool.Pool
}

func NewVehicleRepository(storage *pgxpool.Pool) VehicleRepositoryInterface {
	return &vehicleRepository{storage: storage}
}

// Ensure возвращает id автомобиля клиента с данным номером, создавая запись при необходимости.
func (r *vehicleRepository) Ensure(ctx context.Context, tx pgx.Tx, v entities.Vehicle) (int64, error) {
	query, args, err := psql.Insert("vehicles").
		Columns("customer_id", "customer_type", "make", "model", "year", "license_plate", "image_url").
		Values(v.CustomerID, v.CustomerType, v.Make, v.Model, v.Year, v.LicensePlate, v.ImageURL).
		Suffix(`ON CONFLICT (customer_id, license_plate) DO UPDATE SET
			make = COALESCE(EXCLUDED.make, vehicles.make),
			model = COALESCE(EXCLUDED.model, vehicles.model),
			year = COALESCE(EXCLUDED.year, vehicles.year),
			image_url = COALESCE(EXCLUDED.image_url, vehicles.image_url)
			RETURNING id`).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки SQL автомобиля: %w", err)
	}
	var id int64
	if err := tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("ошибка сохранения автомобиля %s: %w", v.LicensePlate, err)
	}
	return id, nil
}

func (r *vehicleRepository) FindByID(ctx context.Context, id int64) (*entities.Vehicle, error) {
	query, args, err := psql.Select(vehicleFields).From("vehicles").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL автомобиля: %w", err)
	}
	v, err := collectOne[entities.Vehicle](ctx, r.storage, query, args...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка поиска автомобиля %d: %w", id, err)
	}
	return v, nil
}
