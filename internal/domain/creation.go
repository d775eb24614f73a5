package domain

// CreationState tracks the lifecycle of an in-progress derived asset.
type CreationState string

const (
	CreationIdle     CreationState = "idle"
	CreationCreating CreationState = "creating"
	CreationCreated  CreationState = "created"
	CreationSaving   CreationState = "saving"
	CreationError    CreationState = "error"
)

// CreationType names the derived-asset workflow that produced a creation.
type CreationType string

const (
	CreationCollage   CreationType = "collage"
	CreationAnimation CreationType = "animation"
	CreationColorPop  CreationType = "color-pop"
)

// Creation is the single in-flight derived-asset workflow instance. URL is
// only set once the state reaches CreationCreated. Err carries the failure
// message in the error state, and also on a created slot whose save failed
// and rolled back for retry.
type Creation struct {
	State CreationState `json:"state"`
	Type  CreationType  `json:"type"`
	URL   string        `json:"url,omitempty"`
	Err   string        `json:"error,omitempty"`
}
