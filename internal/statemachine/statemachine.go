// Package statemachine owns the project status enum, phase ordering and the
// resume mapping that turns a persisted status back into the correct
// pipeline entry point.
package statemachine

// Project statuses. Rendering completes or fails asynchronously;
// render_complete and failed are terminal.
const (
	StatusUploaded          = "uploaded"
	StatusAnalyzingFrames   = "analyzing_frames"
	StatusTranscribing      = "transcribing"
	StatusSelectingSegments = "selecting_segments"
	StatusSegmentsReady     = "segments_ready"
	StatusRendering         = "rendering"
	StatusRenderComplete    = "render_complete"
	StatusFailed            = "failed"
)

// ResumeAction tells a re-attaching client what to do with a project in a
// given persisted status.
type ResumeAction string

const (
	// ActionShowResult: terminal success, show the rendered reel.
	ActionShowResult ResumeAction = "show_result"
	// ActionEditSegments: fetch segments and open the editor.
	ActionEditSegments ResumeAction = "edit_segments"
	// ActionResumePolling: a render is in flight, resume status polling.
	ActionResumePolling ResumeAction = "resume_polling"
	// ActionRunAnalysis: re-run the full analysis pipeline from phase 1.
	// Analysis phases only write final results, so restarting is idempotent
	// and cheaper than fine-grained checkpoints.
	ActionRunAnalysis ResumeAction = "run_analysis"
	// ActionShowFailure: show the stored error with a retry option.
	ActionShowFailure ResumeAction = "show_failure"
)

// IsTerminal reports whether no pipeline work remains for the status.
func IsTerminal(status string) bool {
	return status == StatusRenderComplete || status == StatusFailed
}

// IsKnown reports whether the status is one of the defined states.
func IsKnown(status string) bool {
	switch status {
	case StatusUploaded, StatusAnalyzingFrames, StatusTranscribing,
		StatusSelectingSegments, StatusSegmentsReady, StatusRendering,
		StatusRenderComplete, StatusFailed:
		return true
	}
	return false
}

// ResumeActionFor maps a persisted status to exactly one resume action.
// The mapping is total: unknown or malformed statuses fall through to the
// failure view rather than guessing at pipeline state.
func ResumeActionFor(status string) ResumeAction {
	switch status {
	case StatusRenderComplete:
		return ActionShowResult
	case StatusSegmentsReady:
		return ActionEditSegments
	case StatusRendering:
		return ActionResumePolling
	case StatusUploaded, StatusAnalyzingFrames, StatusTranscribing, StatusSelectingSegments:
		return ActionRunAnalysis
	default:
		return ActionShowFailure
	}
}

// CanRetry reports whether a user-initiated retry is available. Retry is
// only offered from the failed terminal state and only while the uploaded
// source is still referenced.
func CanRetry(status string, hasSource bool) bool {
	return status == StatusFailed && hasSource
}

// AnalysisOrder lists the statuses the analysis pipeline moves through, in
// order, ending at segments_ready.
var AnalysisOrder = []string{
	StatusUploaded,
	StatusAnalyzingFrames,
	StatusTranscribing,
	StatusSelectingSegments,
	StatusSegmentsReady,
}
