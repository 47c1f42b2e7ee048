package customvalidator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	CustomerType string          `validate:"omitempty,customer_type"`
	Type         string          `validate:"omitempty,ticket_type"`
	Amount       decimal.Decimal `validate:"positive_decimal"`
	Rate         decimal.Decimal `validate:"non_negative_decimal"`
}

func newValidator(t *testing.T) *validator.Validate {
	v := validator.New()
	require.NoError(t, RegisterCustomValidations(v))
	return v
}

func TestCustomValidations(t *testing.T) {
	v := newValidator(t)
	one := decimal.NewFromInt(1)

	tests := []struct {
		name  string
		in    sample
		field string
	}{
		{"валидно", sample{CustomerType: "Company", Type: "INSURANCE", Amount: one, Rate: decimal.Zero}, ""},
		{"тип клиента", sample{CustomerType: "state", Amount: one}, "CustomerType"},
		{"тип заявки", sample{Type: "warranty", Amount: one}, "Type"},
		{"нулевая сумма", sample{Amount: decimal.Zero}, "Amount"},
		{"отрицательная ставка", sample{Amount: one, Rate: decimal.NewFromInt(-5)}, "Rate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.in)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			require.Len(t, verrs, 1)
			assert.Equal(t, tt.field, verrs[0].Field())
		})
	}
}
