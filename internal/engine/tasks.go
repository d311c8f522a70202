package engine

import (
	"sort"
	"time"
)

// TaskBoard owns the task set and its order keys. Orders are 1-based and kept
// contiguous by insert, move and remove.
type TaskBoard struct {
	tasks []Task
}

func NewTaskBoard(tasks []Task) *TaskBoard {
	b := &TaskBoard{tasks: make([]Task, 0, len(tasks))}
	for _, t := range tasks {
		b.tasks = append(b.tasks, t.clone())
	}
	return b
}

func (b *TaskBoard) Len() int { return len(b.tasks) }

func (b *TaskBoard) Get(id string) (Task, bool) {
	i := b.index(id)
	if i < 0 {
		return Task{}, false
	}
	return b.tasks[i].clone(), true
}

// List returns the tasks in display order: ordered tasks by order, then any
// unordered ones by creation time.
func (b *TaskBoard) List() []Task {
	out := b.snapshot()
	sort.SliceStable(out, func(i, j int) bool {
		oi, oj := out[i].Order, out[j].Order
		switch {
		case oi != nil && oj != nil:
			return *oi < *oj
		case oi != nil:
			return true
		case oj != nil:
			return false
		default:
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
	})
	return out
}

func (b *TaskBoard) filter(keep func(Task) bool) []Task {
	var out []Task
	for _, t := range b.List() {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// Active returns claimed tasks that are not completed.
func (b *TaskBoard) Active() []Task {
	return b.filter(func(t Task) bool { return t.IsClaimed && !t.IsCompleted })
}

// Expired returns incomplete tasks whose deadline day has passed.
func (b *TaskBoard) Expired(now time.Time) []Task {
	return b.filter(func(t Task) bool { return t.IsExpired(now) })
}

// DueToday returns tasks whose deadline falls on now's calendar day.
func (b *TaskBoard) DueToday(now time.Time) []Task {
	return b.filter(func(t Task) bool { return t.ExpiresAt != nil && SameDay(*t.ExpiresAt, now) })
}

func (b *TaskBoard) ByKind(kind TaskKind) []Task {
	return b.filter(func(t Task) bool { return t.Kind == kind })
}

func (b *TaskBoard) index(id string) int {
	for i := range b.tasks {
		if b.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (b *TaskBoard) maxOrder() int {
	max := 0
	for _, t := range b.tasks {
		if t.Order != nil && *t.Order > max {
			max = *t.Order
		}
	}
	return max
}

// insert adds t. An explicit order is a list insert at that position: every
// task at or after it shifts down by one. Without one, t goes last.
func (b *TaskBoard) insert(t Task) Task {
	max := b.maxOrder()
	pos := max + 1
	if t.Order != nil {
		pos = clampOrder(*t.Order, max+1)
		b.shift(func(o int) bool { return o >= pos }, +1)
	}
	t.Order = &pos
	b.tasks = append(b.tasks, t.clone())
	return t
}

// replace stores t over the task with the same id.
func (b *TaskBoard) replace(t Task) {
	if i := b.index(t.ID); i >= 0 {
		b.tasks[i] = t.clone()
	}
}

// remove deletes the task and closes the gap it leaves in the order.
func (b *TaskBoard) remove(id string) (Task, bool) {
	i := b.index(id)
	if i < 0 {
		return Task{}, false
	}
	removed := b.tasks[i]
	b.tasks = append(b.tasks[:i], b.tasks[i+1:]...)
	if removed.Order != nil {
		old := *removed.Order
		b.shift(func(o int) bool { return o > old }, -1)
	}
	return removed, true
}

// move relocates a task to position `to`, renumbering around it.
func (b *TaskBoard) move(id string, to int) (Task, bool) {
	t, ok := b.remove(id)
	if !ok {
		return Task{}, false
	}
	t.Order = &to
	return b.insert(t), true
}

func (b *TaskBoard) shift(match func(order int) bool, delta int) {
	for i := range b.tasks {
		if o := b.tasks[i].Order; o != nil && match(*o) {
			v := *o + delta
			b.tasks[i].Order = &v
		}
	}
}

// EnsureAllTasksHaveOrder gives every unordered task an order after the
// current maximum: incomplete tasks first, completed ones by completion time,
// ties by creation time. It returns how many tasks were numbered; a second
// call returns 0.
func (b *TaskBoard) EnsureAllTasksHaveOrder() int {
	var missing []int
	for i := range b.tasks {
		if b.tasks[i].Order == nil {
			missing = append(missing, i)
		}
	}
	if len(missing) == 0 {
		return 0
	}

	sort.SliceStable(missing, func(x, y int) bool {
		a, c := b.tasks[missing[x]], b.tasks[missing[y]]
		if a.IsCompleted != c.IsCompleted {
			return !a.IsCompleted
		}
		if a.IsCompleted {
			ta, tc := completedTime(a), completedTime(c)
			if !ta.Equal(tc) {
				return ta.Before(tc)
			}
		}
		return a.CreatedAt.Before(c.CreatedAt)
	})

	next := b.maxOrder() + 1
	for _, i := range missing {
		v := next
		b.tasks[i].Order = &v
		next++
	}
	return len(missing)
}

func completedTime(t Task) time.Time {
	if t.CompletedAt == nil {
		return time.Time{}
	}
	return *t.CompletedAt
}

func (b *TaskBoard) snapshot() []Task {
	out := make([]Task, len(b.tasks))
	for i := range b.tasks {
		out[i] = b.tasks[i].clone()
	}
	return out
}

func (b *TaskBoard) restore(tasks []Task) {
	b.tasks = tasks
}

func clampOrder(pos, max int) int {
	if pos < 1 {
		return 1
	}
	if pos > max {
		return max
	}
	return pos
}
