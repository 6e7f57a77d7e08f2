// Package reload implements the watch/reload cycle of the dev workflow.
//
// A Controller routes file change events to bindings (a glob plus the task
// that rebuilds what the glob covers). Each binding is a small state machine
// with two states, Idle and Rebuilding. A change while Idle starts a rebuild;
// a change while Rebuilding marks one pending rerun, which starts as soon as
// the in-flight rebuild finishes. Any number of changes during a rebuild
// collapse into that single rerun, so at most one rebuild per binding is ever
// in flight.
//
// Signal is the late-bound handle through which tasks ask connected browsers
// to reload. It is a no-op until a dev server attaches itself.
package reload
