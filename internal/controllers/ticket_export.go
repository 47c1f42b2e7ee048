package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"ticket-system/internal/dto"
	"ticket-system/pkg/utils"
)

const exportSheet = "Заявки"

var exportHeaders = []string{
	"Номер заявки", "Тип", "Статус", "Приоритет", "Клиент", "Тип клиента", "Автомобиль", "Госномер",
	"Заголовок", "Описание", "Создана", "Завершена", "Механики", "Запчасти (шт.)", "Проверок",
	"Последняя проверка", "Страховая компания", "Полис",
}

// выгрузка читает представление целиком, без пагинации
const exportTimeout = 60 * time.Second

// ExportTickets отдает представление в xlsx. Выборка строгая: при ошибке файл не формируется.
func (c *TicketController) ExportTickets(ctx echo.Context) error {
	reqCtx, cancel := utils.ContextWithTimeout(ctx, exportTimeout)
	defer cancel()
	view := ctx.QueryParam("view")
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	c.logger.Debug("Выгрузка заявок", zap.String("view", view), zap.Any("filter", filter))

	tickets, err := c.ticketService.ExportTickets(reqCtx, view, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return c.respondWithXLSX(ctx, view, tickets)
}

func exportRow(t dto.AggregatedTicketDTO) []interface{} {
	dateFmt := "02.01.2006 15:04"
	var completedAt string
	if t.CompletedAt != nil {
		completedAt = t.CompletedAt.Format(dateFmt)
	}

	mechanics := make([]string, 0, len(t.MechanicAssignments))
	for _, m := range t.MechanicAssignments {
		mechanics = append(mechanics, m.MechanicName)
	}
	parts := 0
	for _, p := range t.OrderedParts {
		parts += p.Quantity
	}
	var lastInspection string
	if len(t.Inspections) > 0 {
		lastInspection = t.Inspections[0].InspectionStatus
	}
	var insurer, policy string
	if t.Insurance != nil {
		insurer = t.Insurance.InsuranceCompany.String
		policy = t.Insurance.PolicyNumber.String
	}

	return []interface{}{
		t.TicketNumber, string(t.Type), string(t.Status), t.Priority, t.CustomerName, t.CustomerType,
		t.VehicleInfo, t.LicensePlate, t.Title, t.Description, t.CreatedAt.Format(dateFmt), completedAt,
		strings.Join(mechanics, ", "), parts, len(t.Inspections), lastInspection, insurer, policy,
	}
}

func (c *TicketController) respondWithXLSX(ctx echo.Context, view string, tickets []dto.AggregatedTicketDTO) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			c.logger.Warn("Ошибка закрытия xlsx", zap.Error(err))
		}
	}()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeaders); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	style, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	lastCol, _ := excelize.ColumnNumberToName(len(exportHeaders))
	_ = f.SetCellStyle(exportSheet, "A1", lastCol+"1", style)

	for i, t := range tickets {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := exportRow(t)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return utils.ErrorResponse(ctx, err, c.logger)
		}
	}
	_ = f.SetColWidth(exportSheet, "A", "A", 22)
	_ = f.SetColWidth(exportSheet, "E", "E", 25)
	_ = f.SetColWidth(exportSheet, "G", "G", 25)
	_ = f.SetColWidth(exportSheet, "I", "J", 40)
	_ = f.SetColWidth(exportSheet, "M", "M", 30)

	if view == "" {
		view = "active"
	}
	fileName := fmt.Sprintf("tickets_%s_%s.xlsx", view, time.Now().Format("2006-01-02"))
	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().Header().Set("Content-Disposition", "attachment; filename="+fileName)
	ctx.Response().WriteHeader(http.StatusOK)
	return f.Write(ctx.Response().Writer)
}
