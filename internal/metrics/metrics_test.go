package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveRemoteCall(t *testing.T) {
	before := testutil.ToFloat64(RemoteCalls.WithLabelValues("check_user", "ok"))
	ObserveRemoteCall(" Check_User ", "OK", 120*time.Millisecond)
	require.Equal(t, before+1, testutil.ToFloat64(RemoteCalls.WithLabelValues("check_user", "ok")))
}

func TestIncWorkflowOutcomeNormalizesEmptyLabels(t *testing.T) {
	before := testutil.ToFloat64(WorkflowOutcomes.WithLabelValues("unknown", "blocked"))
	IncWorkflowOutcome("", "Blocked")
	require.Equal(t, before+1, testutil.ToFloat64(WorkflowOutcomes.WithLabelValues("unknown", "blocked")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	IncPaymentVerification("ok")
	MustRegister()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "fixlab_web_payment_verifications_total")
}
