package domain

import (
	"fmt"
	"strings"
)

// Stage is one step of the review pipeline. Assignees, when non-empty,
// narrows the stage to the listed reviewer emails.
type Stage struct {
	Status    Status
	Role      Role
	Assignees []string
}

// Pipeline is the ordered reviewer hierarchy. The zero value is unusable;
// build one with NewPipeline.
type Pipeline struct {
	stages []Stage
	index  map[Status]int
}

func NewPipeline(stages []Stage) (*Pipeline, error) {
	if len(stages) == 0 {
		return nil, fmt.Errorf("pipeline needs at least one stage: %w", ErrInvalidInput)
	}
	p := &Pipeline{stages: make([]Stage, 0, len(stages)), index: make(map[Status]int, len(stages))}
	for i, st := range stages {
		if !st.Status.Valid() || st.Status.Terminal() || st.Status == StatusPending {
			return nil, fmt.Errorf("stage %d: status %q cannot be a review stage: %w", i, st.Status, ErrInvalidInput)
		}
		if !st.Role.Valid() || st.Role == RoleApplicant {
			return nil, fmt.Errorf("stage %d: role %q cannot review: %w", i, st.Role, ErrInvalidInput)
		}
		if _, dup := p.index[st.Status]; dup {
			return nil, fmt.Errorf("stage %d: duplicate status %q: %w", i, st.Status, ErrInvalidInput)
		}
		assignees := make([]string, 0, len(st.Assignees))
		for _, email := range st.Assignees {
			if email = normalizeEmail(email); email != "" {
				assignees = append(assignees, email)
			}
		}
		p.index[st.Status] = i
		p.stages = append(p.stages, Stage{Status: st.Status, Role: st.Role, Assignees: assignees})
	}
	return p, nil
}

func DefaultPipeline() *Pipeline {
	p, _ := NewPipeline([]Stage{
		{Status: StatusNewSubmission, Role: RoleProjectOfficer},
		{Status: StatusUnderReview, Role: RoleProgramManager},
		{Status: StatusManagerReview, Role: RoleFinanceDirector},
	})
	return p
}

// FullHierarchyPipeline routes through every level of the organisation,
// ending with the founders.
func FullHierarchyPipeline(founders ...string) *Pipeline {
	p, _ := NewPipeline([]Stage{
		{Status: StatusNewSubmission, Role: RoleProjectOfficer},
		{Status: StatusUnderReview, Role: RoleProgramManager},
		{Status: StatusManagerReview, Role: RoleFinanceDirector},
		{Status: StatusPendingApproval, Role: RoleHospitalDirector},
		{Status: StatusExecutiveReview, Role: RoleExecutive},
		{Status: StatusFounderReview, Role: RoleFounder, Assignees: founders},
	})
	return p
}

func (p *Pipeline) Stages() []Stage {
	out := make([]Stage, len(p.stages))
	copy(out, p.stages)
	return out
}

func (p *Pipeline) First() Stage {
	return p.stages[0]
}

// Transition returns the status and reviewer an application moves to when
// action is applied. It never mutates app.
func (p *Pipeline) Transition(app Application, action Action) (Status, Role, error) {
	if app.Status.Terminal() {
		return "", "", fmt.Errorf("%s from %s: %w", action, app.Status, ErrIllegalTransition)
	}
	if app.Status == StatusPending {
		if action != ActionResubmit {
			return "", "", fmt.Errorf("%s from %s: %w", action, app.Status, ErrIllegalTransition)
		}
		st := p.returnStage(app)
		return st.Status, st.Role, nil
	}
	i, ok := p.index[app.Status]
	if !ok {
		return "", "", fmt.Errorf("status %q is not part of the pipeline: %w", app.Status, ErrIllegalTransition)
	}
	switch action {
	case ActionApprove:
		if i == len(p.stages)-1 {
			return StatusApproved, "", nil
		}
		next := p.stages[i+1]
		return next.Status, next.Role, nil
	case ActionReject:
		return StatusRejected, "", nil
	case ActionRequestEdit:
		return StatusPending, p.stages[i].Role, nil
	default:
		return "", "", fmt.Errorf("%s from %s: %w", action, app.Status, ErrIllegalTransition)
	}
}

// returnStage is the stage that asked for the edit. Applications without a
// usable request_edit entry fall back to the reviewer's first stage, then to
// the start of the pipeline.
func (p *Pipeline) returnStage(app Application) Stage {
	for i := len(app.History) - 1; i >= 0; i-- {
		h := app.History[i]
		if h.Action != ActionRequestEdit || h.ToStatus != StatusPending {
			continue
		}
		if idx, ok := p.index[h.FromStatus]; ok {
			return p.stages[idx]
		}
		break
	}
	for _, st := range p.stages {
		if st.Role == app.CurrentReviewer {
			return st
		}
	}
	return p.First()
}

// HasStage reports whether status is reachable by some actor. Statuses
// dropped from the hierarchy leave their applications stranded.
func (p *Pipeline) HasStage(status Status) bool {
	_, ok := p.ResponsibleRole(status)
	return ok || status.Terminal()
}

// ResponsibleRole reports who must act on an application in status.
func (p *Pipeline) ResponsibleRole(status Status) (Role, bool) {
	if status == StatusPending {
		return RoleApplicant, true
	}
	if i, ok := p.index[status]; ok {
		return p.stages[i].Role, true
	}
	return "", false
}

// StatusesFor is the inverse of ResponsibleRole.
func (p *Pipeline) StatusesFor(role Role) []Status {
	if role == RoleApplicant {
		return []Status{StatusPending}
	}
	var out []Status
	for _, st := range p.stages {
		if st.Role == role {
			out = append(out, st.Status)
		}
	}
	return out
}

// AwaitsActor reports whether app is waiting on the given actor. Applicants
// only see their own applications; assigned stages only match listed emails.
func (p *Pipeline) AwaitsActor(app Application, role Role, email string) bool {
	responsible, ok := p.ResponsibleRole(app.Status)
	if !ok || responsible != role {
		return false
	}
	email = normalizeEmail(email)
	if role == RoleApplicant {
		return email != "" && normalizeEmail(app.Email) == email
	}
	st := p.stages[p.index[app.Status]]
	if len(st.Assignees) == 0 {
		return true
	}
	for _, assignee := range st.Assignees {
		if assignee == email {
			return true
		}
	}
	return false
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
