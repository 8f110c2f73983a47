package host

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/scenesync/pkg/engine"
	"github.com/matzehuels/scenesync/pkg/errors"
)

// Env is shared by every component of a tree.
type Env struct {
	Engine engine.Factory
	Logger *log.Logger

	idle   idleQueue
	issues []Issue
}

// Issue is an error a component reported while the tree was reconciled.
type Issue struct {
	Kind    string      `json:"kind"`
	Path    string      `json:"path"`
	Code    errors.Code `json:"code"`
	Field   string      `json:"field,omitempty"`
	Message string      `json:"message"`
}

// maxIssues bounds the issues kept between two TakeIssues calls.
const maxIssues = 256

func (e *Env) record(in *Instance, err error) {
	if len(e.issues) >= maxIssues {
		return
	}
	e.issues = append(e.issues, Issue{
		Kind:    in.Kind,
		Path:    in.Path,
		Code:    errors.GetCode(err),
		Field:   errors.GetField(err),
		Message: errors.UserMessage(err),
	})
}

// TakeIssues returns the issues reported since the last call and forgets
// them.
func (e *Env) TakeIssues() []Issue {
	out := e.issues
	e.issues = nil
	return out
}

// NewEnv returns an environment for eng. A nil logger discards output.
func NewEnv(eng engine.Factory, logger *log.Logger) *Env {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Env{Engine: eng, Logger: logger}
}

// Defer schedules fn to run on the next flush under key. A later Defer with
// the same key replaces the pending function and keeps its place in line;
// the return value reports whether such a replacement happened.
func (e *Env) Defer(key any, fn func()) (coalesced bool) {
	return e.idle.push(key, fn)
}

// Pending returns the number of deferred functions waiting for a flush.
func (e *Env) Pending() int {
	return len(e.idle.order)
}

// idleQueue runs deferred work once per key, in first-request order.
type idleQueue struct {
	order []any
	fns   map[any]func()
}

func (q *idleQueue) push(key any, fn func()) bool {
	if q.fns == nil {
		q.fns = make(map[any]func())
	}
	_, exists := q.fns[key]
	if !exists {
		q.order = append(q.order, key)
	}
	q.fns[key] = fn
	return exists
}

// maxFlushRounds bounds work that keeps re-deferring itself during a flush.
const maxFlushRounds = 16

// drain runs queued functions until the queue is empty. Functions deferred
// while draining run in a later round of the same drain.
func (q *idleQueue) drain() int {
	ran := 0
	for round := 0; round < maxFlushRounds && len(q.order) > 0; round++ {
		order, fns := q.order, q.fns
		q.order, q.fns = nil, nil
		for _, k := range order {
			fns[k]()
			ran++
		}
	}
	return ran
}
