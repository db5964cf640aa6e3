package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"aid-portal/internal/domain"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkflowRecorder_Counts(t *testing.T) {
	r := NewWorkflowRecorder()
	r.Submitted()
	r.Submitted()
	r.Transitioned(domain.StatusNewSubmission, domain.StatusUnderReview, domain.ActionApprove)
	r.Refused(domain.ActionApprove, "not_found")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.submissions))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.transitions.WithLabelValues("new_submission", "under_review", "approve")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.refusals.WithLabelValues("approve", "not_found")))
}

func TestWorkflowRecorder_Handler(t *testing.T) {
	r := NewWorkflowRecorder()
	r.Submitted()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "aid_portal_workflow_submissions_total 1")
}
