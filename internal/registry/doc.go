// Package registry provides the central "glue" for the task system.
//
// Every module registers its named tasks here, each with an ordered list of
// prerequisite task names and an optional body. The registry is populated
// once at startup and validated so that a misspelled prerequisite is caught
// before anything runs. The dag package then turns the registry into an
// executable graph.
package registry
