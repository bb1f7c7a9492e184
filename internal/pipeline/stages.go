package pipeline

import (
	"fmt"

	"github.com/mshears713/Research-Body/internal/mission"
)

// stageStep fixes one stage's place in the pipeline: its numbered console
// line, its progress checkpoint, and the message emitted when it begins.
type stageStep struct {
	stage   mission.Stage
	number  int
	percent float64
	message string
}

// stageSequence is the execution order. Checkpoint percents follow the
// 0/10/25/50/60/75/90/100 progress scale; the 100 mark is reserved for the
// terminal completed/failed message.
var stageSequence = []stageStep{
	{mission.StagePlanning, 1, 10, "Planning mission"},
	{mission.StageFetching, 2, 25, "Fetching sources"},
	{mission.StageCleaning, 3, 50, "Cleaning content"},
	{mission.StageScoring, 4, 60, "Scoring content"},
	{mission.StageSummarizing, 5, 75, "Summarizing content"},
	{mission.StageStoring, 6, 90, "Storing results"},
	{mission.StageLogging, 7, 100, "Logging mission"},
}

func stageFor(stage mission.Stage) (stageStep, bool) {
	for _, s := range stageSequence {
		if s.stage == stage {
			return s, true
		}
	}
	return stageStep{}, false
}

// beginStage advances the result to the given stage, prints its numbered
// step line, and emits the stage's progress checkpoint. detail replaces the
// generic stage message on the console line when set.
func (o *Orchestrator) beginStage(result *mission.Result, stage mission.Stage, detail string) {
	info, ok := stageFor(stage)
	if !ok {
		return
	}

	result.Stage = stage
	if detail == "" {
		detail = info.message
	}
	fmt.Fprintf(o.out, "Step %d/%d: %s...\n", info.number, len(stageSequence), detail)

	if info.percent < 100 {
		o.emit(stage, info.message, info.percent)
	}
}
