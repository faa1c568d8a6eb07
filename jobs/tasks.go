// Package jobs contains the background tasks run by the worker: the
// ledger integrity scan and landed-cost reallocation.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskGLIntegrityScan verifies posted entries still balance.
	TaskGLIntegrityScan = "gl:integrity_scan"
	// TaskLandedCostReallocation recomputes a GRN's landed costs after
	// its extra costs changed.
	TaskLandedCostReallocation = "grn:reallocate_costs"
)

// GLIntegrityScanPayload scopes a scan. A zero CompanyID scans every
// company.
type GLIntegrityScanPayload struct {
	CompanyID int64 `json:"company_id"`
}

// NewGLIntegrityScanTask constructs the integrity-scan task.
func NewGLIntegrityScanTask(payload GLIntegrityScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGLIntegrityScan, data, asynq.Queue(QueueDefault)), nil
}

// LandedCostReallocationPayload identifies the GRN to recompute.
type LandedCostReallocationPayload struct {
	CompanyID int64 `json:"company_id"`
	GRNID     int64 `json:"grn_id"`
}

// NewLandedCostReallocationTask constructs the reallocation task.
func NewLandedCostReallocationTask(payload LandedCostReallocationPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLandedCostReallocation, data, asynq.Queue(QueueDefault)), nil
}
