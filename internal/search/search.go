// Package search implements a budgeted best-first search over states that
// are expanded by applying transitions.
package search

import (
	"container/heap"
)

// Identifiable states carry a unique id used to break cost ties.
type Identifiable interface {
	ID() int
}

// Visitor supplies the domain: how to expand, cost and score states.
type Visitor[S Identifiable, T any] interface {
	IsFinal(state S) bool
	Transitions(state S) []T
	Apply(iteration int, state S, transition T) S
	TransitionCost(source, destination S, transition T) int
	Score(state S) int
}

// Search explores at most MaxIterations expansions.
type Search struct {
	MaxIterations int
}

// Result holds the transition path to the best final state. Found is false
// when no final state was popped within the budget.
type Result[S Identifiable, T any] struct {
	Transitions []T
	Final       S
	Found       bool
	Iterations  int
}

type node[S Identifiable] struct {
	id         int
	cost       int
	score      int
	state      S
	transition int
}

type edge[T any] struct {
	parent     int
	transition T
}

type frontier[S Identifiable] []node[S]

func (f frontier[S]) Len() int { return len(f) }

func (f frontier[S]) Less(i, j int) bool {
	if f[i].cost != f[j].cost {
		return f[i].cost < f[j].cost
	}
	return f[i].id < f[j].id
}

func (f frontier[S]) Swap(i, j int) { f[i], f[j] = f[j], f[i] }

func (f *frontier[S]) Push(x any) { *f = append(*f, x.(node[S])) }

func (f *frontier[S]) Pop() any {
	old := *f
	n := len(old)
	item := old[n-1]
	*f = old[:n-1]
	return item
}

const noTransition = -1

// Perform runs the search from initial. The best final state is the one with
// the highest score among the final states popped; earlier pops win ties.
func Perform[S Identifiable, T any](s Search, initial S, visitor Visitor[S, T]) Result[S, T] {
	var (
		iterations int
		edges      []edge[T]
		best       *node[S]
	)
	open := &frontier[S]{{
		id:         initial.ID(),
		score:      visitor.Score(initial),
		state:      initial,
		transition: noTransition,
	}}

	for open.Len() > 0 {
		current := heap.Pop(open).(node[S])
		if (best == nil || best.score < current.score) && visitor.IsFinal(current.state) {
			found := current
			best = &found
		}
		if iterations >= s.MaxIterations {
			break
		}
		iterations++
		for _, transition := range visitor.Transitions(current.state) {
			next := visitor.Apply(iterations, current.state, transition)
			heap.Push(open, node[S]{
				id:         next.ID(),
				cost:       current.cost + visitor.TransitionCost(current.state, next, transition),
				score:      visitor.Score(next),
				state:      next,
				transition: len(edges),
			})
			edges = append(edges, edge[T]{parent: current.transition, transition: transition})
		}
	}

	result := Result[S, T]{Iterations: iterations}
	if best == nil {
		return result
	}
	result.Final = best.state
	result.Found = true
	result.Transitions = reconstruct(edges, best.transition)
	return result
}

func reconstruct[T any](edges []edge[T], last int) []T {
	var path []T
	for current := last; current != noTransition; current = edges[current].parent {
		path = append(path, edges[current].transition)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// IDGenerator hands out increasing state ids.
type IDGenerator struct {
	next int
}

func (g *IDGenerator) Next() int {
	g.next++
	return g.next
}
