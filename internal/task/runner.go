// Package task runs timed per-frame jobs: fades, delayed one-shots and
// debounces. A task is a record keyed by name; starting a task under a key
// that is already running replaces it, and cancelling removes the record.
package task

import (
	"sort"
	"strings"
)

// Task describes one timed job. Step receives progress in [0, 1] once per
// Advance while the task runs; Done runs once after the final Step.
type Task struct {
	Key      string
	Delay    float64
	Duration float64
	Step     func(progress float64)
	Done     func()
}

type record struct {
	Task
	start float64
	seq   int
	dead  bool
}

// Runner drives tasks from a single per-frame tick. It is not safe for
// concurrent use.
type Runner struct {
	tasks map[string]*record
	seq   int
	now   float64
}

func NewRunner() *Runner {
	return &Runner{tasks: make(map[string]*record)}
}

// Start schedules t at now. A task already running under t.Key is
// cancelled first. A task with no delay takes its first step immediately.
func (r *Runner) Start(now float64, t Task) {
	if old := r.tasks[t.Key]; old != nil {
		old.dead = true
	}
	r.seq++
	rec := &record{Task: t, start: now + t.Delay, seq: r.seq}
	r.tasks[t.Key] = rec
	if t.Delay <= 0 && t.Step != nil {
		t.Step(0)
	}
}

// After runs fn once, delay seconds after now.
func (r *Runner) After(now, delay float64, key string, fn func()) {
	r.Start(now, Task{Key: key, Delay: delay, Done: fn})
}

// Cancel removes the task under key. The task's Done does not run.
func (r *Runner) Cancel(key string) bool {
	rec := r.tasks[key]
	if rec == nil {
		return false
	}
	rec.dead = true
	delete(r.tasks, key)
	return true
}

// CancelPrefix removes every task whose key starts with prefix.
func (r *Runner) CancelPrefix(prefix string) int {
	n := 0
	for key := range r.tasks {
		if strings.HasPrefix(key, prefix) {
			r.Cancel(key)
			n++
		}
	}
	return n
}

func (r *Runner) Running(key string) bool {
	_, ok := r.tasks[key]
	return ok
}

func (r *Runner) Len() int { return len(r.tasks) }

// Keys lists the running task keys in start order.
func (r *Runner) Keys() []string {
	recs := r.ordered()
	keys := make([]string, len(recs))
	for i, rec := range recs {
		keys[i] = rec.Key
	}
	return keys
}

func (r *Runner) ordered() []*record {
	recs := make([]*record, 0, len(r.tasks))
	for _, rec := range r.tasks {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq < recs[j].seq })
	return recs
}

// Advance steps every due task to now, in start order. Tasks started or
// cancelled from a callback take effect immediately; new tasks first run on
// the next Advance.
func (r *Runner) Advance(now float64) {
	r.now = now
	for _, rec := range r.ordered() {
		if rec.dead || now < rec.start {
			continue
		}
		progress := 1.0
		if rec.Duration > 0 {
			progress = (now - rec.start) / rec.Duration
			if progress > 1 {
				progress = 1
			}
		}
		if rec.Step != nil {
			rec.Step(progress)
		}
		if rec.dead || progress < 1 {
			continue
		}
		rec.dead = true
		if r.tasks[rec.Key] == rec {
			delete(r.tasks, rec.Key)
		}
		if rec.Done != nil {
			rec.Done()
		}
	}
}
