package domain

import "errors"

var (
	// ErrRunNotFound is returned when a run id is unknown.
	ErrRunNotFound = errors.New("run not found")
	// ErrRunInProgress is returned when a run exists but has no result yet.
	ErrRunInProgress = errors.New("run still in progress")
	// ErrRunFailed is returned when a run terminated without a result.
	ErrRunFailed = errors.New("run failed")
	// ErrRunExists is returned when a run id is registered twice.
	ErrRunExists = errors.New("run already exists")
	// ErrResultExists is returned on a second result write for a run.
	ErrResultExists = errors.New("result already stored")
	// ErrSubscriberActive is returned when a run's stream already has a consumer.
	ErrSubscriberActive = errors.New("run already has an active subscriber")
	// ErrQueryRequired is returned when a run is started without a query.
	ErrQueryRequired = errors.New("query is required")
)
