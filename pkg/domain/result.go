package domain

// Stage is a pipeline state.
type Stage string

const (
	StageStart       Stage = "Start"
	StageClassified  Stage = "Classified"
	StageAcquired    Stage = "Acquired"
	StageTranscribed Stage = "Transcribed"
	StageFailed      Stage = "Failed"
)

// PipelineResult is the outcome of one run. Exactly one of Transcript and
// Failure is set.
type PipelineResult struct {
	// Stage is the terminal state, Transcribed or Failed.
	Stage Stage

	// Reached is the last state entered before the run ended.
	Reached Stage

	Source     SourceURL
	Audio      *AcquiredAudio
	Transcript *Transcript
	Failure    *Failure
}

// OK reports whether the run produced a transcript.
func (r PipelineResult) OK() bool {
	return r.Failure == nil && r.Transcript != nil
}
