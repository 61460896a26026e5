// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

package flow

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/hashicorp/go-multierror"
)

// Task is a unit of work with an id, a payload function and the set of tasks
// it depends on.
type Task struct {
	Name         string
	Fn           TaskFn
	SkipIf       bool
	Dependencies TaskIDs
}

// Graph is a builder for a Flow.
type Graph struct {
	name  string
	order TaskIDSlice
	tasks map[TaskID]Task
}

// NewGraph returns a new Graph with the given name.
func NewGraph(name string) *Graph {
	return &Graph{name: name, tasks: make(map[TaskID]Task)}
}

// Name returns the name of the graph.
func (g *Graph) Name() string {
	return g.name
}

// Add adds the given task to the graph and returns its TaskID. It panics if a
// task with the same name was already added or a dependency is unknown.
func (g *Graph) Add(task Task) TaskID {
	id := TaskID(task.Name)
	if _, ok := g.tasks[id]; ok {
		panic(fmt.Sprintf("graph %q already contains task %q", g.name, id))
	}
	for dependency := range task.Dependencies {
		if _, ok := g.tasks[dependency]; !ok {
			panic(fmt.Sprintf("graph %q: task %q depends on unknown task %q", g.name, id, dependency))
		}
	}

	g.tasks[id] = task
	g.order = append(g.order, id)
	return id
}

// Compile compiles the graph into an executable Flow. Tasks run in insertion
// order, which the builder guarantees to be a valid topological order.
func (g *Graph) Compile() *Flow {
	return &Flow{name: g.name, order: g.order, tasks: g.tasks}
}

// Opts are the options for a Flow execution.
type Opts struct {
	// Log is used to log task progress.
	Log logr.Logger
}

// Flow is a compiled graph of tasks.
type Flow struct {
	name  string
	order TaskIDSlice
	tasks map[TaskID]Task
}

// Name returns the name of the flow.
func (f *Flow) Name() string {
	return f.name
}

// Len returns the number of tasks in the flow.
func (f *Flow) Len() int {
	return len(f.order)
}

// Run executes the tasks one by one. A failing task does not abort the flow:
// only its transitive dependents are skipped, everything else still runs. The
// returned error aggregates all task errors.
func (f *Flow) Run(ctx context.Context, opts Opts) error {
	var (
		log    = opts.Log.WithValues("flow", f.name)
		failed = NewTaskIDs()
		result error
	)

	for _, id := range f.order {
		task := f.tasks[id]

		if task.SkipIf {
			log.V(1).Info("Skipping task", "task", id)
			continue
		}

		if dependency, ok := failedDependency(task, failed); ok {
			log.Info("Skipping task because a dependency failed", "task", id, "failedDependency", dependency)
			failed.Insert(id)
			continue
		}

		if err := ctx.Err(); err != nil {
			return multierror.Append(result, fmt.Errorf("flow %q interrupted: %w", f.name, err))
		}

		log.V(1).Info("Running task", "task", id)
		if err := task.Fn(ctx); err != nil {
			log.Error(err, "Task failed", "task", id)
			failed.Insert(id)
			result = multierror.Append(result, &TaskError{TaskID: id, err: err})
		}
	}

	return result
}

func failedDependency(task Task, failed TaskIDs) (TaskID, bool) {
	for dependency := range task.Dependencies {
		if failed.Has(dependency) {
			return dependency, true
		}
	}
	return "", false
}

// TaskError annotates a task payload error with the id of the failed task.
type TaskError struct {
	TaskID TaskID

	err error
}

// Error implements error.
func (e *TaskError) Error() string {
	return fmt.Sprintf("task %q failed: %v", e.TaskID, e.err)
}

// Unwrap returns the payload error.
func (e *TaskError) Unwrap() error {
	return e.err
}
