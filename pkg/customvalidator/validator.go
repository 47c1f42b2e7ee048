// Файл: pkg/customvalidator/validator.go

package customvalidator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"ticket-system/internal/entities"
	"ticket-system/internal/workflow"
)

// RegisterCustomValidations регистрирует все кастомные правила валидации.
func RegisterCustomValidations(v *validator.Validate) error {
	// decimal.Decimal - структура, валидатор должен видеть ее как значение
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})

	if err := v.RegisterValidation("customer_type", isCustomerType); err != nil {
		return err
	}
	if err := v.RegisterValidation("ticket_type", isTicketType); err != nil {
		return err
	}
	if err := v.RegisterValidation("positive_decimal", isPositiveDecimal); err != nil {
		return err
	}
	if err := v.RegisterValidation("non_negative_decimal", isNonNegativeDecimal); err != nil {
		return err
	}
	return nil
}

func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.String()
	}
	return nil
}

func isCustomerType(fl validator.FieldLevel) bool {
	s := strings.ToLower(strings.TrimSpace(fl.Field().String()))
	return s == entities.CustomerTypeIndividual || s == entities.CustomerTypeCompany
}

func isTicketType(fl validator.FieldLevel) bool {
	s := strings.ToLower(strings.TrimSpace(fl.Field().String()))
	return s == string(workflow.TicketTypeService) || s == string(workflow.TicketTypeInsurance)
}

func parseDecimal(fl validator.FieldLevel) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func isPositiveDecimal(fl validator.FieldLevel) bool {
	d, ok := parseDecimal(fl)
	return ok && d.IsPositive()
}

func isNonNegativeDecimal(fl validator.FieldLevel) bool {
	d, ok := parseDecimal(fl)
	return ok && !d.IsNegative()
}
