package services

import (
	"ticket-system/internal/dto"
	"ticket-system/internal/workflow"
)

// DescribeWorkflow - справочник статусов, переходов и представлений для клиента.
func DescribeWorkflow() dto.WorkflowDTO {
	m := workflow.Default
	statuses := workflow.AllStatuses()

	out := dto.WorkflowDTO{
		Statuses: make([]dto.StatusInfoDTO, 0, len(statuses)),
		Views:    make([]dto.ViewInfoDTO, 0, len(workflow.Views())),
	}
	for _, s := range statuses {
		out.Statuses = append(out.Statuses, dto.StatusInfoDTO{
			Status:   s,
			Terminal: s.IsTerminal(),
			Next:     emptyIfNil(m.Next(s, workflow.TicketTypeService)),
			NextIns:  emptyIfNil(m.Next(s, workflow.TicketTypeInsurance)),
		})
	}
	for _, v := range workflow.Views() {
		out.Views = append(out.Views, dto.ViewInfoDTO{
			Name:        v.Name,
			Description: v.Description,
			Statuses:    v.Statuses(),
		})
	}
	return out
}

func emptyIfNil(s []workflow.Status) []workflow.Status {
	if s == nil {
		return []workflow.Status{}
	}
	return s
}
