package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"aid-portal/internal/domain"
	"aid-portal/internal/ports"

	"github.com/google/uuid"
)

const (
	maxIDAttempts     = 3
	maxUpdateAttempts = 3
)

type noopMetrics struct{}

func (noopMetrics) Submitted() {}

func (noopMetrics) Transitioned(domain.Status, domain.Status, domain.Action) {}

func (noopMetrics) Refused(domain.Action, string) {}

type noopLogger struct{}

func (noopLogger) Info(context.Context, string, ...any) {}

func (noopLogger) Error(context.Context, string, ...any) {}

func (noopLogger) Warn(context.Context, string, ...any) {}

func (noopLogger) Debug(context.Context, string, ...any) {}

type WorkflowService struct {
	repo     ports.ApplicationRepository
	pipeline *domain.Pipeline
	metrics  ports.WorkflowMetrics
	logger   ports.Logger
	now      func() time.Time
	newID    func(time.Time) string
}

func NewWorkflowService(repo ports.ApplicationRepository, pipeline *domain.Pipeline, metrics ports.WorkflowMetrics, logger ports.Logger) *WorkflowService {
	if pipeline == nil {
		pipeline = domain.DefaultPipeline()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &WorkflowService{
		repo:     repo,
		pipeline: pipeline,
		metrics:  metrics,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    newTrackerID,
	}
}

func (s *WorkflowService) Pipeline() *domain.Pipeline {
	return s.pipeline
}

func newTrackerID(at time.Time) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "TRK-" + at.Format("20060102") + "-" + strings.ToUpper(raw[:8])
}

// SubmitApplication stores a new application at the first review stage and
// returns its tracker id.
func (s *WorkflowService) SubmitApplication(ctx context.Context, sub domain.Submission) (string, error) {
	sub.ApplicantName = strings.TrimSpace(sub.ApplicantName)
	sub.Email = strings.TrimSpace(sub.Email)
	if sub.ApplicantName == "" || sub.Email == "" || sub.AmountRequested <= 0 {
		return "", domain.ErrInvalidInput
	}
	if sub.Beneficiaries != nil && *sub.Beneficiaries < 0 {
		return "", domain.ErrInvalidInput
	}
	now := s.now()
	first := s.pipeline.First()
	app := domain.Application{
		ApplicantName:   sub.ApplicantName,
		Email:           sub.Email,
		Phone:           strings.TrimSpace(sub.Phone),
		ProjectTitle:    strings.TrimSpace(sub.ProjectTitle),
		Description:     sub.Description,
		AmountRequested: sub.AmountRequested,
		Beneficiaries:   sub.Beneficiaries,
		Status:          first.Status,
		CurrentReviewer: first.Role,
		History:         []domain.HistoryEntry{},
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	var err error
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		app.ID = s.newID(now)
		err = s.repo.Create(ctx, app)
		if err == nil {
			s.metrics.Submitted()
			s.logger.Info(ctx, "application submitted", "tracker_id", app.ID, "status", app.Status)
			return app.ID, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return "", err
		}
	}
	return "", fmt.Errorf("allocate tracker id: %w", err)
}

func (s *WorkflowService) GetApplication(ctx context.Context, id string) (domain.Application, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Application{}, domain.ErrInvalidInput
	}
	return s.repo.GetByID(ctx, strings.TrimSpace(id))
}

// GetApplicationsForRole lists the applications currently waiting on the
// given actor, oldest first.
func (s *WorkflowService) GetApplicationsForRole(ctx context.Context, role domain.Role, email string) ([]domain.Application, error) {
	if !role.Valid() {
		return nil, domain.ErrInvalidInput
	}
	out := []domain.Application{}
	for _, status := range s.pipeline.StatusesFor(role) {
		apps, err := s.repo.ListByStatus(ctx, status)
		if err != nil {
			return nil, err
		}
		for _, app := range apps {
			if s.pipeline.AwaitsActor(app, role, email) {
				out = append(out, app)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Advance applies action on behalf of actor and returns the stored result.
// The actor must carry the role that owns the application's current stage.
// A concurrent writer causes the read-validate-write cycle to be retried.
func (s *WorkflowService) Advance(ctx context.Context, id string, action domain.Action, actor domain.Actor, comment string) (domain.Application, error) {
	return s.advance(ctx, id, action, actor, comment, true)
}

func (s *WorkflowService) advance(ctx context.Context, id string, action domain.Action, actor domain.Actor, comment string, checkActor bool) (domain.Application, error) {
	if strings.TrimSpace(id) == "" || !action.Valid() {
		return domain.Application{}, domain.ErrInvalidInput
	}
	comment = strings.TrimSpace(comment)
	if action == domain.ActionRequestEdit && comment == "" {
		return domain.Application{}, fmt.Errorf("request_edit needs a comment: %w", domain.ErrInvalidInput)
	}
	var err error
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		var app domain.Application
		app, err = s.advanceOnce(ctx, id, action, actor, comment, checkActor)
		if err == nil {
			return app, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			s.metrics.Refused(action, refusalReason(err))
			return domain.Application{}, err
		}
		s.logger.Warn(ctx, "concurrent update, retrying", "tracker_id", id, "attempt", attempt+1)
	}
	s.metrics.Refused(action, refusalReason(err))
	return domain.Application{}, err
}

func (s *WorkflowService) advanceOnce(ctx context.Context, id string, action domain.Action, actor domain.Actor, comment string, checkActor bool) (domain.Application, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Application{}, err
	}
	if checkActor {
		if actor.Role == "" {
			return domain.Application{}, fmt.Errorf("caller has no role: %w", domain.ErrPermissionDeny)
		}
		if _, open := s.pipeline.ResponsibleRole(current.Status); open && !s.pipeline.AwaitsActor(current, actor.Role, actor.Email) {
			return domain.Application{}, fmt.Errorf("%s cannot act on %s application: %w", actor.Role, current.Status, domain.ErrPermissionDeny)
		}
	}
	nextStatus, nextRole, err := s.pipeline.Transition(current, action)
	if err != nil {
		return domain.Application{}, err
	}
	now := s.now()
	updated := current.Clone()
	updated.History = append(updated.History, domain.HistoryEntry{
		ActorEmail: actor.Email,
		ActorName:  actor.Name,
		Action:     action,
		Comment:    comment,
		FromStatus: current.Status,
		ToStatus:   nextStatus,
		CreatedAt:  now,
	})
	updated.Status = nextStatus
	updated.CurrentReviewer = nextRole
	updated.Version = current.Version + 1
	updated.UpdatedAt = now
	if err := s.repo.Update(ctx, updated, current.Version); err != nil {
		return domain.Application{}, err
	}
	s.metrics.Transitioned(current.Status, nextStatus, action)
	s.logger.Info(ctx, "application advanced",
		"tracker_id", id,
		"action", action,
		"from", current.Status,
		"to", nextStatus,
		"actor", actor.Email,
	)
	return updated, nil
}

// UpdateApplicationWorkflow is the boolean form of Advance for trusted
// callers that carry no role. Failures are logged and reported as false; the
// caller decides what to show the user.
func (s *WorkflowService) UpdateApplicationWorkflow(ctx context.Context, id string, action domain.Action, actorEmail, actorName, comment string) bool {
	_, err := s.advance(ctx, id, action, domain.Actor{Email: actorEmail, Name: actorName}, comment, false)
	if err != nil {
		s.logger.Warn(ctx, "workflow update refused", "tracker_id", id, "action", action, "error", err)
		return false
	}
	return true
}

// StrandedApplications counts stored applications whose status has no stage
// in the current pipeline. Nobody can see or move them until the hierarchy
// brings the status back.
func (s *WorkflowService) StrandedApplications(ctx context.Context) (map[domain.Status]int, error) {
	stranded := map[domain.Status]int{}
	for _, status := range domain.AllStatuses() {
		if s.pipeline.HasStage(status) {
			continue
		}
		apps, err := s.repo.ListByStatus(ctx, status)
		if err != nil {
			return nil, err
		}
		if len(apps) > 0 {
			stranded[status] = len(apps)
		}
	}
	return stranded, nil
}

// WarnStranded logs one warning per status left without a stage.
func (s *WorkflowService) WarnStranded(ctx context.Context) {
	stranded, err := s.StrandedApplications(ctx)
	if err != nil {
		s.logger.Warn(ctx, "stranded application check failed", "error", err)
		return
	}
	for status, count := range stranded {
		s.logger.Warn(ctx, "applications stranded outside the review hierarchy", "status", status, "count", count)
	}
}

func refusalReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrIllegalTransition):
		return "illegal_transition"
	case errors.Is(err, domain.ErrPermissionDeny):
		return "permission_denied"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}
