package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"ticket-system/internal/entities"
)

type CustomerRepositoryInterface interface {
	UpsertIndividual(ctx context.Context, tx pgx.Tx, c entities.IndividualCustomer) error
	UpsertCompany(ctx context.Context, tx pgx.Tx, c entities.CompanyCustomer) error
}

type customerRepository struct{}

func NewCustomerRepository() CustomerRepositoryInterface {
	return &customerRepository{}
}

// UpsertIndividual создает профиль или обновляет непустые поля существующего.
func (r *customerRepository) UpsertIndividual(ctx context.Context, tx pgx.Tx, c entities.IndividualCustomer) error {
	query, args, err := psql.Insert("individual_customers").
		Columns("customer_id", "name", "phone", "email", "address").
		Values(c.CustomerID, c.Name, c.Phone, c.Email, c.Address).
		Suffix(`ON CONFLICT (customer_id) DO UPDATE SET
			name = EXCLUDED.name,
			phone = COALESCE(EXCLUDED.phone, individual_customers.phone),
			email = COALESCE(EXCLUDED.email, individual_customers.email),
			address = COALESCE(EXCLUDED.address, individual_customers.address),
			updated_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки SQL профиля клиента: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("ошибка сохранения профиля клиента %s: %w", c.CustomerID, err)
	}
	return nil
}

func (r *customerRepository) UpsertCompany(ctx context.Context, tx pgx.Tx, c entities.CompanyCustomer) error {
	query, args, err := psql.Insert("company_customers").
		Columns("customer_id", "company_name", "contact_person", "phone", "email", "address").
		Values(c.CustomerID, c.CompanyName, c.ContactPerson, c.Phone, c.Email, c.Address).
		Suffix(`ON CONFLICT (customer_id) DO UPDATE SET
			company_name = EXCLUDED.company_name,
			contact_person = COALESCE(EXCLUDED.contact_person, company_customers.contact_person),
			phone = COALESCE(EXCLUDED.phone, company_customers.phone),
			email = COALESCE(EXCLUDED.email, company_customers.email),
			address = COALESCE(EXCLUDED.address, company_customers.address),
			updated_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки SQL профиля компании: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("ошибка сохранения профиля компании %s: %w", c.CustomerID, err)
	}
	return nil
}
