package orchestration

import (
	"fmt"

	"github.com/gauntlet-dev/gauntlet/internal/models"
)

// FilterBySelection expands selected task names with every transitive
// dependency and returns the matching tasks in their original order.
// Unknown names in the selection are an error.
func FilterBySelection(tasks []models.CheckTask, selected []string) ([]models.CheckTask, error) {
	if len(selected) == 0 {
		return tasks, nil
	}

	byName := make(map[string]models.CheckTask, len(tasks))
	for _, t := range tasks {
		byName[t.Name] = t
	}

	wanted := make(map[string]struct{})
	queue := make([]string, 0, len(selected))
	for _, name := range selected {
		if _, ok := byName[name]; !ok {
			return nil, fmt.Errorf("unknown task %q in selection", name)
		}
		queue = append(queue, name)
	}

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if _, seen := wanted[name]; seen {
			continue
		}
		wanted[name] = struct{}{}
		for _, dep := range byName[name].Dependencies {
			if _, ok := byName[dep]; ok {
				queue = append(queue, dep)
			}
		}
	}

	filtered := make([]models.CheckTask, 0, len(wanted))
	for _, t := range tasks {
		if _, ok := wanted[t.Name]; ok {
			filtered = append(filtered, t)
		}
	}
	return filtered, nil
}
