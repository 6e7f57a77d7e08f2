// Package devserver serves the build directory during development and
// pushes reload events to connected browsers over socket.io.
//
// Every HTML response gets a small client snippet injected before the
// closing body tag. The snippet connects back to the server's socket.io
// endpoint and reloads the page when a "reload" event arrives.
package devserver
