package seeders

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// SeedInventory наполняет склад инструментов. Повторный запуск не создает дублей.
func SeedInventory(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("▶️  Наполнение склада инструментов...")
	query := `INSERT INTO tools (name, category, total_quantity, available_quantity)
		SELECT $1, $2, $3, $3 WHERE NOT EXISTS (SELECT 1 FROM tools WHERE name = $1)`

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	for _, t := range toolsData {
		if _, err := tx.Exec(ctx, query, t.Name, t.Category, t.Quantity); err != nil {
			return fmt.Errorf("инструмент %q: %w", t.Name, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	log.Printf("✅ Склад инструментов: %d позиций", len(toolsData))
	return nil
}

// SeedProformas создает тестовые проформы со строками. Большая часть в статусе Accepted,
// чтобы из них можно было создавать заявки.
func SeedProformas(ctx context.Context, db *pgxpool.Pool, count int) error {
	log.Printf("▶️  Создание %d тестовых проформ...", count)
	faker := gofakeit.New(0)
	vat := decimal.NewFromInt(12)

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := 0; i < count; i++ {
		type item struct {
			description string
			quantity    int
			price       decimal.Decimal
		}
		items := make([]item, faker.Number(1, 4))
		subtotal := decimal.Zero
		for j := range items {
			items[j] = item{
				description: faker.ProductName(),
				quantity:    faker.Number(1, 4),
				price:       decimal.NewFromFloat(faker.Price(10, 999)).Round(2),
			}
			subtotal = subtotal.Add(items[j].price.Mul(decimal.NewFromInt(int64(items[j].quantity))))
		}
		vatAmount := subtotal.Mul(vat).Div(decimal.NewFromInt(100)).Round(2)

		var proformaID int64
		err := tx.QueryRow(ctx, `
			INSERT INTO proformas (proforma_number, customer_name, vehicle_info, status, subtotal, vat_rate, vat_amount, total_amount)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (proforma_number) DO NOTHING
			RETURNING id`,
			fmt.Sprintf("PF-%s", faker.DigitN(6)),
			faker.Name(),
			faker.CarMaker()+" "+faker.CarModel(),
			proformaStatuses[faker.Number(0, len(proformaStatuses)-1)],
			subtotal, vat, vatAmount, subtotal.Add(vatAmount),
		).Scan(&proformaID)
		if errors.Is(err, pgx.ErrNoRows) {
			// номер совпал с существующим, пропускаем
			continue
		}
		if err != nil {
			return err
		}

		for _, it := range items {
			if _, err := tx.Exec(ctx,
				`INSERT INTO proforma_items (proforma_id, description, quantity, unit_price, total) VALUES ($1, $2, $3, $4, $5)`,
				proformaID, it.description, it.quantity, it.price, it.price.Mul(decimal.NewFromInt(int64(it.quantity))),
			); err != nil {
				return err
			}
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	log.Println("✅ Тестовые проформы созданы")
	return nil
}
