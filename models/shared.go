package models

// ReconcilePayload is the task body for post-event booking reconciliation.
type ReconcilePayload struct {
	OccurrenceID string `json:"occurrenceId"`
	FireDate     string `json:"fireDate"` // RFC3339, informational
}

// ReconcileResult counts what a reconciliation pass changed.
type ReconcileResult struct {
	Completed int `json:"completed"`
	NoShow    int `json:"noShow"`
	Pending   int `json:"pending"`
}
