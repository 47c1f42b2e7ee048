package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"ticket-system/internal/entities"
)

type InsuranceRepositoryInterface interface {
	Upsert(ctx context.Context, tx pgx.Tx, rec entities.InsuranceRecord) (*entities.InsuranceRecord, error)
}

type insuranceRepository struct{}

func NewInsuranceRepository() InsuranceRepositoryInterface {
	return &insuranceRepository{}
}

// Upsert: на заявку не более одной записи, повторный вызов обновляет существующую.
func (r *insuranceRepository) Upsert(ctx context.Context, tx pgx.Tx, rec entities.InsuranceRecord) (*entities.InsuranceRecord, error) {
	query, args, err := psql.Insert(insuranceQuery.table).
		Columns("ticket_number", "customer_type", "customer_id", "owner_name", "phone", "email", "vehicle_info",
			"license_plate", "insurance_company", "policy_number", "accident_date", "accident_location",
			"description", "status").
		Values(rec.TicketNumber, rec.CustomerType, rec.CustomerID, rec.OwnerName, rec.Phone, rec.Email, rec.VehicleInfo,
			rec.LicensePlate, rec.InsuranceCompany, rec.PolicyNumber, rec.AccidentDate, rec.AccidentLocation,
			rec.Description, rec.Status).
		Suffix(`ON CONFLICT (ticket_number) DO UPDATE SET
			owner_name = EXCLUDED.owner_name,
			phone = EXCLUDED.phone,
			email = EXCLUDED.email,
			vehicle_info = EXCLUDED.vehicle_info,
			license_plate = EXCLUDED.license_plate,
			insurance_company = EXCLUDED.insurance_company,
			policy_number = EXCLUDED.policy_number,
			accident_date = EXCLUDED.accident_date,
			accident_location = EXCLUDED.accident_location,
			description = EXCLUDED.description,
			updated_at = NOW()
			RETURNING ` + insuranceQuery.fields).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL страховой записи: %w", err)
	}
	saved, err := collectOne[entities.InsuranceRecord](ctx, tx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка сохранения страховой записи %s: %w", rec.TicketNumber, err)
	}
	return saved, nil
}
