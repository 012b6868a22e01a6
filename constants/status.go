package constants

// LogStatus is the outcome stored in order_log.status.
type LogStatus string

// Stable values (store these exact strings in DB).
const (
	LogStatusProcessed LogStatus = "processed" // shipment row inserted
	LogStatusRejected  LogStatus = "rejected"  // insert failed or too few fields
)

// JobStatus tracks a document while it moves through the pipeline.
type JobStatus string

const (
	JobStatusQueued  JobStatus = "QUEUED"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusTextOK  JobStatus = "TEXT_OK" // stage 1 completed (text extracted)
	JobStatusParsed  JobStatus = "PARSED"  // stage 2 completed (fields extracted)
	JobStatusFailed  JobStatus = "FAILED"  // terminal failure
)
