package openmod

import (
	"log"
	"slices"
)

var TaskComparator = func(a, b *Task) int {
	return a.Compare(b)
}

type TaskFunc func(*OpenContext, *log.Logger) error

// Task is one named phase of a host operation, ordered by priority and
// chained through its dependencies.
type Task struct {
	Name     string
	Func     TaskFunc
	Priority int

	DependsOn  []*Task
	AfterTasks []*Task
}

func (t *Task) Compare(other *Task) int {
	if t.Priority == other.Priority {
		return 0
	} else if t.Priority > other.Priority {
		return 1
	} else {
		return -1
	}
}

func (t *Task) Depends() []*Task {
	t.sort()
	return t.DependsOn
}

func (t *Task) After() []*Task {
	t.sort()
	return t.AfterTasks
}

func (t *Task) sort() {
	slices.SortFunc(t.DependsOn, TaskComparator)
	slices.SortFunc(t.AfterTasks, TaskComparator)
}
