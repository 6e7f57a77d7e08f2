// Package dag is the execution layer of the task runner. It turns the task
// registry into a Directed Acyclic Graph of typed node handles, rejects
// cycles at construction time, and executes the transitive closure of the
// requested tasks on a bounded worker pool.
//
// Execution rules:
//   - a task runs only after all of its prerequisites completed successfully;
//   - a task runs at most once per Run call, however many paths lead to it;
//   - independent tasks run concurrently;
//   - a failure never cancels sibling tasks, it only skips the failed task's
//     dependents.
//
// The graph itself holds no execution state, so the same graph may be run
// any number of times, including concurrently.
package dag
