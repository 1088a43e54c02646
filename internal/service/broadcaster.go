package service

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToAssessment(assessmentID string, msgType string, payload interface{})
}

// Event types sent to assessment subscribers
const (
	EventAssessmentStarted   = "assessment_started"
	EventAssessmentUpdated   = "assessment_updated"
	EventAssessmentCompleted = "assessment_completed"
)

type nopBroadcaster struct{}

func (nopBroadcaster) BroadcastToAssessment(string, string, interface{}) {}
