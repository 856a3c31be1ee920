package types

// Event types published after a mutating operation commits. The off-chain
// analytics service subscribes to the query subjects; dashboards consume the
// whole stream.
const (
	EventDeploymentRequested     = "DeploymentRequested"
	EventDeploymentStatusChanged = "DeploymentStatusChanged"
	EventDeploymentCompleted     = "DeploymentCompleted"
	EventMCPServerConfigured     = "MCPServerConfigured"
	EventAnalyticsQuerySubmitted = "AnalyticsQuerySubmitted"
	EventAnalyticsQueryCompleted = "AnalyticsQueryCompleted"
	EventQueryStatusChanged      = "QueryStatusChanged"
	EventMEVInsightsGenerated    = "MEVInsightsGenerated"
	EventFeeScheduleUpdated      = "FeeScheduleUpdated"
)

const (
	SubjectQuerySubmitted   = "coordination.query.submitted"
	SubjectQueryCompleted   = "coordination.query.completed"
	SubjectQueryStatus      = "coordination.query.status"
	SubjectDeployment       = "coordination.deployment"
	SubjectInsightRecorded  = "coordination.insight.recorded"
	SubjectConfigChanged    = "coordination.config.changed"
	SubjectWildcard         = "coordination.>"
	CoordinationEventStream = "coordination_events"
)

// Event is the envelope published to NATS and fanned out over the websocket
// feed. Payload is one of the typed payload structs below.
type Event struct {
	Id         string `json:"id"`
	Type       string `json:"type"`
	OccurredAt int64  `json:"occurred_at"`
	Payload    any    `json:"payload"`
}

// Subject maps an event type to its NATS subject.
func (e Event) Subject() string {
	switch e.Type {
	case EventAnalyticsQuerySubmitted:
		return SubjectQuerySubmitted
	case EventAnalyticsQueryCompleted:
		return SubjectQueryCompleted
	case EventQueryStatusChanged:
		return SubjectQueryStatus
	case EventDeploymentRequested, EventDeploymentStatusChanged, EventDeploymentCompleted:
		return SubjectDeployment
	case EventMEVInsightsGenerated:
		return SubjectInsightRecorded
	case EventMCPServerConfigured, EventFeeScheduleUpdated:
		return SubjectConfigChanged
	default:
		return SubjectConfigChanged
	}
}

type QuerySubmittedPayload struct {
	QueryId   string `json:"query_id"`
	Requester string `json:"requester"`
	QueryType string `json:"query_type"`
	FeePaid   string `json:"fee_paid"`
}

type QueryCompletedPayload struct {
	QueryId       string `json:"query_id"`
	ResultPointer string `json:"result_pointer"`
	LatencyMs     int64  `json:"latency_ms"`
}

type QueryStatusPayload struct {
	QueryId string      `json:"query_id"`
	Status  QueryStatus `json:"status"`
}

type DeploymentPayload struct {
	ExplorerName string           `json:"explorer_name"`
	ChainId      int64            `json:"chain_id"`
	Status       DeploymentStatus `json:"status"`
}

type InsightRecordedPayload struct {
	PoolId        string `json:"pool_id"`
	Seq           int64  `json:"seq"`
	ReportPointer string `json:"report_pointer"`
}

type ConfigChangedPayload struct {
	What string `json:"what"`
}
