package orchestration

import (
	"sort"

	"github.com/gauntlet-dev/gauntlet/internal/depgraph"
	"github.com/gauntlet-dev/gauntlet/internal/models"
)

// PlanLevel is one concurrency barrier of an execution plan.
type PlanLevel struct {
	Level int                `json:"level"`
	Tasks []models.CheckTask `json:"tasks"`
}

// ExecutionPlan describes how a batch would be scheduled without
// running anything.
type ExecutionPlan struct {
	Levels      []PlanLevel `json:"levels"`
	MaxParallel int         `json:"max_parallel"`
}

// BuildPlan resolves the batch into ordered levels with the same
// priority ordering the orchestrator uses at run time.
func BuildPlan(tasks []models.CheckTask, maxParallel int) (*ExecutionPlan, error) {
	levels, err := depgraph.Levels(tasks)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]models.CheckTask, len(tasks))
	for _, t := range tasks {
		byName[t.Name] = t
	}

	plan := &ExecutionPlan{MaxParallel: maxParallel}
	for level := 0; level < len(levels); level++ {
		group := make([]models.CheckTask, 0, len(levels[level]))
		for _, name := range levels[level] {
			group = append(group, byName[name])
		}
		sort.SliceStable(group, func(i, j int) bool { return group[i].Priority > group[j].Priority })
		plan.Levels = append(plan.Levels, PlanLevel{Level: level, Tasks: group})
	}
	return plan, nil
}
