// Package app contains the core application logic. It wires the loaded
// settings, the task modules and the executor together, decoupled from any
// specific entrypoint like a CLI.
package app
