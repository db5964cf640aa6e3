package ports

import "aid-portal/internal/domain"

type WorkflowMetrics interface {
	Submitted()
	Transitioned(from, to domain.Status, action domain.Action)
	Refused(action domain.Action, reason string)
}
