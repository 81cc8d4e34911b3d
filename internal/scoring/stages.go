// Package scoring derives risk values, health scores, and dashboard alerts
// from project, task, and risk records. All computations are pure functions
// over immutable snapshots; the Service facade adds the read-only data fetch.
package scoring

// Stages is the canonical ordered sequence of project stages. Health
// scoring, alert classification, and progress display all share this single
// definition.
var Stages = []string{
	"requirements",
	"structural_design",
	"electronic_design",
	"system_design",
	"software_design",
	"production",
	"debugging",
	"shipping",
}

// StageIndex returns the position of stageID in the canonical sequence,
// or -1 when the stage is unknown.
func StageIndex(stageID string) int {
	for i, s := range Stages {
		if s == stageID {
			return i
		}
	}
	return -1
}

// StageProgress converts a project's current stage to percent complete.
// Unknown stages count as zero progress.
func StageProgress(stageID string) float64 {
	idx := StageIndex(stageID)
	if idx < 0 {
		return 0
	}
	return float64(idx+1) / float64(len(Stages)) * 100
}
