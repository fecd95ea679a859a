package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		WorkflowOutcomes,
		PaymentVerifications,
		StateWriteFailures,
	)
}

var (
	// Where a registration attempt came to rest.
	// state: idle|blocked|confirming|redirecting|failed
	WorkflowOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fixlab_web_workflow_outcomes_total",
			Help: "Registration workflow results by action and resting state.",
		},
		[]string{"action", "state"},
	)

	// result: ok|fail|missing_reference|network
	PaymentVerifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fixlab_web_payment_verifications_total",
			Help: "Payment-return verifications by result.",
		},
		[]string{"result"},
	)

	// store: session|draft
	StateWriteFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fixlab_web_state_write_failures_total",
			Help: "Session or draft cookies that could not be written.",
		},
		[]string{"store"},
	)
)

// IncWorkflowOutcome counts a registration attempt resting in state.
func IncWorkflowOutcome(action, state string) {
	WorkflowOutcomes.WithLabelValues(norm(action), norm(state)).Inc()
}

// IncPaymentVerification counts one verification result.
func IncPaymentVerification(result string) {
	PaymentVerifications.WithLabelValues(norm(result)).Inc()
}

// IncStateWriteFailure counts a session or draft that could not be stored.
func IncStateWriteFailure(store string) {
	StateWriteFailures.WithLabelValues(norm(store)).Inc()
}
