// Package pipeline holds the pieces shared by the script and style
// pipelines: an in-memory File with an optional source map, the Stage
// interface and its sequential runner, concatenation, the esbuild transform
// stage, and writing a bundle with its map to disk.
package pipeline
