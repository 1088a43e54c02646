package service

// Recorder receives service metrics. metrics.Collector implements it.
type Recorder interface {
	AssessmentStarted(mode string)
	AssessmentCompleted(mode string, customerLeverage int)
	RequirementsFetch(outcome string)
	ArtifactPersist(sink, outcome string)
	NormalizationFallback(field string)
}

// Fetch and persist outcomes
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeHeld     = "held"
	OutcomeNotFound = "not_found"
)

type nopRecorder struct{}

func (nopRecorder) AssessmentStarted(string) {}
func (nopRecorder) AssessmentCompleted(string, int) {}
func (nopRecorder) RequirementsFetch(string) {}
func (nopRecorder) ArtifactPersist(string, string) {}
func (nopRecorder) NormalizationFallback(string) {}

// NopRecorder discards every metric
func NopRecorder() Recorder { return nopRecorder{} }
