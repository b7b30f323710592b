package models

// Conflict is a time overlap between two sessions sharing one resource.
type Conflict struct {
	ResourceType ResourceType `json:"resource_type"`
	ResourceID   string       `json:"resource_id"`
	SessionA     Session      `json:"session_a"`
	SessionB     Session      `json:"session_b"`
	OverlapStart TimeOfDay    `json:"overlap_start"`
	OverlapEnd   TimeOfDay    `json:"overlap_end"`
}

// Recommendation reason codes.
const (
	ReasonAvailable           = "AVAILABLE"
	ReasonSpecializationMatch = "SPECIALIZATION_MATCH"
	ReasonExperience          = "EXPERIENCE"
	ReasonPriorUsage          = "PRIOR_USAGE"
	ReasonCapacityOK          = "CAPACITY_OK"
)

// Recommendation ranks one resource for a candidate session.
type Recommendation struct {
	ResourceID  string   `json:"resource_id"`
	Name        string   `json:"name"`
	Score       float64  `json:"score"`
	ReasonCodes []string `json:"reason_codes"`
}

// ConflictSetError carries the conflicts that blocked a write.
type ConflictSetError struct {
	Message   string     `json:"message"`
	Conflicts []Conflict `json:"conflicts"`
}

// Error implements the error interface for blocked writes.
func (e *ConflictSetError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
