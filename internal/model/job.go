package model //import "github.com/Xunop/e-library/internal/model"

type JobType string

const (
	// JobTypeOverdueScan reports loans past their due date.
	JobTypeOverdueScan JobType = "OVERDUE_SCAN"
)

type JobStatus string

const (
	JobStatusPending JobStatus = "pending"
	JobStatusRunning JobStatus = "running"
	JobStatusDone    JobStatus = "done"
	JobStatusFailed  JobStatus = "failed"
)

type Job struct {
	ID        int       `json:"id"`
	Type      JobType   `json:"type"`
	Status    JobStatus `json:"status"`
	Result    string    `json:"result"`
	CreatedTs int64     `json:"created_ts"`
	UpdatedTs int64     `json:"updated_ts"`
}

type FindJob struct {
	ID     *int
	Type   *JobType
	Status *JobStatus
	Limit  *int
}

type UpdateJob struct {
	ID     int
	Status JobStatus
	Result *string
}
