package services

import (
	"strings"

	"github.com/aarondl/null/v8"

	"ticket-system/internal/dto"
	"ticket-system/internal/entities"
	"ticket-system/internal/workflow"
)

var (
	truthy = map[string]struct{}{
		"true": {}, "yes": {}, "y": {}, "1": {}, "ok": {}, "good": {}, "pass": {}, "passed": {}, "checked": {},
	}
	falsy = map[string]struct{}{
		"false": {}, "no": {}, "n": {}, "0": {}, "bad": {}, "fail": {}, "failed": {}, "unchecked": {},
	}
)

// ParseBoolish: nil, если значение пустое или не распознано.
func ParseBoolish(v null.String) *bool {
	if !v.Valid {
		return nil
	}
	s := strings.ToLower(strings.TrimSpace(v.String))
	if _, ok := truthy[s]; ok {
		t := true
		return &t
	}
	if _, ok := falsy[s]; ok {
		f := false
		return &f
	}
	return nil
}

// ProjectInspection переводит плоскую строку inspections во вложенный чек-лист.
func ProjectInspection(i entities.Inspection) dto.InspectionDTO {
	return dto.InspectionDTO{
		ID:                 i.ID,
		TicketNumber:       i.TicketNumber,
		MainIssueResolved:  ParseBoolish(i.MainIssueResolved),
		ReassemblyVerified: ParseBoolish(i.ReassemblyVerified),
		GeneralCondition:   i.GeneralCondition.Ptr(),
		Notes:              i.Notes.Ptr(),
		InspectionStatus:   i.InspectionStatus.String,
		InspectionDate:     i.InspectionDate,
		Checklist: dto.InspectionChecklist{
			OilLevel:           ParseBoolish(i.OilLevel),
			OilCondition:       ParseBoolish(i.OilCondition),
			BrakeFluid:         ParseBoolish(i.BrakeFluid),
			Coolant:            ParseBoolish(i.Coolant),
			PowerSteeringFluid: ParseBoolish(i.PowerSteeringFluid),
			TirePressure:       ParseBoolish(i.TirePressure),
			TireTread:          ParseBoolish(i.TireTread),
			Lights:             ParseBoolish(i.Lights),
			Battery:            ParseBoolish(i.Battery),
			Wipers:             ParseBoolish(i.Wipers),
		},
	}
}

// inspectionPassed решает исход проверки по inspection_status. Регистр, пробелы и '_'
// не важны: "Inspection Failed" и "inspection_failed" - один исход.
func inspectionPassed(status string) (passed bool, known bool) {
	if b := ParseBoolish(null.StringFrom(status)); b != nil {
		return *b, true
	}
	switch workflow.Normalize(status) {
	case workflow.StatusSuccessfulInspection:
		return true, true
	case workflow.StatusInspectionFailed:
		return false, true
	}
	switch workflow.Key(status) {
	case "success", "inspection-successful":
		return true, true
	case "rejected":
		return false, true
	}
	return false, false
}
