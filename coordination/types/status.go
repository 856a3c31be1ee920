package types

// QueryStatus is the lifecycle state of an AnalyticsQuery. Terminal states are
// absorbing: once COMPLETED, FAILED or EXPIRED a query never changes again.
type QueryStatus string

const (
	QueryStatusSubmitted  QueryStatus = "SUBMITTED"
	QueryStatusProcessing QueryStatus = "PROCESSING"
	QueryStatusCompleted  QueryStatus = "COMPLETED"
	QueryStatusFailed     QueryStatus = "FAILED"
	QueryStatusExpired    QueryStatus = "EXPIRED"
)

func (s QueryStatus) IsTerminal() bool {
	return s == QueryStatusCompleted || s == QueryStatusFailed || s == QueryStatusExpired
}

// CanTransitionTo reports whether the edge s -> next is part of the query
// state machine. EXPIRED is reachable only from SUBMITTED: a claimed query
// belongs to its responder and ends in COMPLETED or FAILED.
func (s QueryStatus) CanTransitionTo(next QueryStatus) bool {
	switch s {
	case QueryStatusSubmitted:
		return next == QueryStatusProcessing || next.IsTerminal()
	case QueryStatusProcessing:
		return next == QueryStatusCompleted || next == QueryStatusFailed
	default:
		return false
	}
}

// DeploymentStatus is the lifecycle state of the singleton explorer
// deployment record.
type DeploymentStatus string

const (
	DeploymentStatusPending   DeploymentStatus = "PENDING"
	DeploymentStatusDeploying DeploymentStatus = "DEPLOYING"
	DeploymentStatusActive    DeploymentStatus = "ACTIVE"
	DeploymentStatusUpdating  DeploymentStatus = "UPDATING"
	DeploymentStatusFailed    DeploymentStatus = "FAILED"
	DeploymentStatusSuspended DeploymentStatus = "SUSPENDED"
)

// CanTransitionTo reports whether the edge s -> next is part of the
// deployment state machine:
//
//	PENDING -> DEPLOYING -> ACTIVE
//	ACTIVE  -> UPDATING  -> ACTIVE
//	DEPLOYING | ACTIVE | UPDATING -> FAILED
//	ACTIVE  -> SUSPENDED -> DEPLOYING
func (s DeploymentStatus) CanTransitionTo(next DeploymentStatus) bool {
	switch s {
	case DeploymentStatusPending:
		return next == DeploymentStatusDeploying
	case DeploymentStatusDeploying:
		return next == DeploymentStatusActive || next == DeploymentStatusFailed
	case DeploymentStatusActive:
		return next == DeploymentStatusUpdating || next == DeploymentStatusFailed || next == DeploymentStatusSuspended
	case DeploymentStatusUpdating:
		return next == DeploymentStatusActive || next == DeploymentStatusFailed
	case DeploymentStatusSuspended:
		return next == DeploymentStatusDeploying
	default:
		return false
	}
}

// Supersedable reports whether a new deployment request may replace a record
// in this state. A live deployment must be suspended or failed first.
func (s DeploymentStatus) Supersedable() bool {
	return s == DeploymentStatusFailed || s == DeploymentStatusSuspended
}
