package services

import (
	"time"

	"podium/models"
)

// StageSpec describes one stage of the fixed debate format.
type StageSpec struct {
	ID           models.Stage
	Duration     time.Duration
	TurnOwner    models.Role
	Next         models.Stage
	Announcement string
	// CrossExam stages advance immediately after a single accepted message
	// instead of waiting for the timer.
	CrossExam bool
}

// stageTable is the complete 13-stage debate format. waiting, verdict_pending
// and ended have no duration and no turn owner; waiting advances when both
// debaters are present, verdict_pending when the verdict lands, and ended is
// terminal.
var stageTable = []StageSpec{
	{
		ID:           models.StageWaiting,
		Next:         models.StageOpeningPro,
		Announcement: "Waiting for both debaters to join.",
	},
	{
		ID:           models.StageOpeningPro,
		Duration:     180 * time.Second,
		TurnOwner:    models.RoleHost,
		Next:         models.StageOpeningCon,
		Announcement: "The debate begins. Host, please deliver your opening statement.",
	},
	{
		ID:           models.StageOpeningCon,
		Duration:     180 * time.Second,
		TurnOwner:    models.RoleOpponent,
		Next:         models.StageCrossConAsk,
		Announcement: "Opponent, please deliver your opening statement.",
	},
	{
		ID:           models.StageCrossConAsk,
		Duration:     60 * time.Second,
		TurnOwner:    models.RoleOpponent,
		Next:         models.StageCrossProAnswer,
		Announcement: "Cross-examination: opponent, ask your question.",
		CrossExam:    true,
	},
	{
		ID:           models.StageCrossProAnswer,
		Duration:     60 * time.Second,
		TurnOwner:    models.RoleHost,
		Next:         models.StageCrossProAsk,
		Announcement: "Host, answer the question.",
		CrossExam:    true,
	},
	{
		ID:           models.StageCrossProAsk,
		Duration:     60 * time.Second,
		TurnOwner:    models.RoleHost,
		Next:         models.StageCrossConAnswer,
		Announcement: "Cross-examination: host, ask your question.",
		CrossExam:    true,
	},
	{
		ID:           models.StageCrossConAnswer,
		Duration:     60 * time.Second,
		TurnOwner:    models.RoleOpponent,
		Next:         models.StageRebuttalCon,
		Announcement: "Opponent, answer the question.",
		CrossExam:    true,
	},
	{
		ID:           models.StageRebuttalCon,
		Duration:     120 * time.Second,
		TurnOwner:    models.RoleOpponent,
		Next:         models.StageRebuttalPro,
		Announcement: "Rebuttals: opponent first.",
	},
	{
		ID:           models.StageRebuttalPro,
		Duration:     120 * time.Second,
		TurnOwner:    models.RoleHost,
		Next:         models.StageClosingCon,
		Announcement: "Host, your rebuttal.",
	},
	{
		ID:           models.StageClosingCon,
		Duration:     90 * time.Second,
		TurnOwner:    models.RoleOpponent,
		Next:         models.StageClosingPro,
		Announcement: "Closing statements: opponent first.",
	},
	{
		ID:           models.StageClosingPro,
		Duration:     90 * time.Second,
		TurnOwner:    models.RoleHost,
		Next:         models.StageVerdictPending,
		Announcement: "Host, your closing statement.",
	},
	{
		ID:           models.StageVerdictPending,
		Next:         models.StageEnded,
		Announcement: "The debate is over. The moderator is preparing the verdict.",
	},
	{
		ID:           models.StageEnded,
		Announcement: "This debate has ended.",
	},
}

var stageIndex = buildStageIndex()

func buildStageIndex() map[models.Stage]*StageSpec {
	idx := make(map[models.Stage]*StageSpec, len(stageTable))
	for i := range stageTable {
		idx[stageTable[i].ID] = &stageTable[i]
	}
	return idx
}

// Stages returns the ordered stage descriptors.
func Stages() []StageSpec {
	out := make([]StageSpec, len(stageTable))
	copy(out, stageTable)
	return out
}

// StageSpecFor looks up the descriptor for a stage.
func StageSpecFor(stage models.Stage) (StageSpec, bool) {
	spec, ok := stageIndex[stage]
	if !ok {
		return StageSpec{}, false
	}
	return *spec, true
}

// NextStage returns the successor of a stage. Only ended has none.
func NextStage(stage models.Stage) (models.Stage, bool) {
	spec, ok := stageIndex[stage]
	if !ok || spec.Next == "" {
		return "", false
	}
	return spec.Next, true
}

// StageDuration resolves a stage's duration, honoring the room's per-stage
// overrides. Zero-duration stages cannot be overridden.
func StageDuration(room *models.Room, spec StageSpec) time.Duration {
	if spec.Duration == 0 {
		return 0
	}
	if secs, ok := room.Settings.StageSeconds[string(spec.ID)]; ok && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return spec.Duration
}
