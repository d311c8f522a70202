package root

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zhang-san-er/task-tools/internal/engine"
)

// resolveTask finds a task by its board position ("3"), full id, or a
// unique id prefix of at least four characters.
func resolveTask(svc *engine.Service, ref string) (engine.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return engine.Task{}, fmt.Errorf("task reference is required")
	}
	if n, err := strconv.Atoi(ref); err == nil {
		for _, t := range svc.Tasks() {
			if t.Order != nil && *t.Order == n {
				return t, nil
			}
		}
		return engine.Task{}, fmt.Errorf("no task at position %d", n)
	}
	if t, ok := svc.Task(ref); ok {
		return t, nil
	}
	if len(ref) < 4 {
		return engine.Task{}, fmt.Errorf("task %q not found", ref)
	}
	var found []engine.Task
	for _, t := range svc.Tasks() {
		if strings.HasPrefix(t.ID, ref) {
			found = append(found, t)
		}
	}
	switch len(found) {
	case 0:
		return engine.Task{}, fmt.Errorf("task %q not found", ref)
	case 1:
		return found[0], nil
	default:
		return engine.Task{}, fmt.Errorf("task prefix %q is ambiguous (%d matches)", ref, len(found))
	}
}

// resolvePrefix matches id against ids by exact value or unique prefix.
func resolvePrefix(kind, ref string, ids []string) (string, error) {
	var found []string
	for _, id := range ids {
		if id == ref {
			return id, nil
		}
		if len(ref) >= 4 && strings.HasPrefix(id, ref) {
			found = append(found, id)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("%s %q not found", kind, ref)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("%s prefix %q is ambiguous (%d matches)", kind, ref, len(found))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func taskLabel(t engine.Task) string {
	pos := "-"
	if t.Order != nil {
		pos = strconv.Itoa(*t.Order)
	}
	return fmt.Sprintf("#%s %q", pos, t.Name)
}
