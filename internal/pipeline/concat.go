package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// mapBuilder accumulates a combined source map with deduplicated sources.
type mapBuilder struct {
	sources  []string
	contents []string
	index    map[string]int
	names    []string
	nameIdx  map[string]int
	lines    [][]segment
}

func newMapBuilder() *mapBuilder {
	return &mapBuilder{index: make(map[string]int), nameIdx: make(map[string]int)}
}

func (b *mapBuilder) source(name, content string) int {
	if i, ok := b.index[name]; ok {
		return i
	}
	b.index[name] = len(b.sources)
	b.sources = append(b.sources, name)
	b.contents = append(b.contents, content)
	return b.index[name]
}

func (b *mapBuilder) name(n string) int {
	if i, ok := b.nameIdx[n]; ok {
		return i
	}
	b.nameIdx[n] = len(b.names)
	b.names = append(b.names, n)
	return b.nameIdx[n]
}

// addIdentity maps each of n lines to column 0 of the same line of src.
func (b *mapBuilder) addIdentity(src, n int) {
	for line := 0; line < n; line++ {
		b.lines = append(b.lines, []segment{{source: src, line: line, nfields: 4}})
	}
}

// addMapped appends n generated lines described by an existing map.
func (b *mapBuilder) addMapped(sm *sourceMap, n int) error {
	decoded, err := decodeMappings(sm.Mappings)
	if err != nil {
		return err
	}
	srcIdx := make([]int, len(sm.Sources))
	for i, s := range sm.Sources {
		content := ""
		if i < len(sm.SourcesContent) {
			content = sm.SourcesContent[i]
		}
		srcIdx[i] = b.source(s, content)
	}
	for line := 0; line < n; line++ {
		var segs []segment
		if line < len(decoded) {
			for _, seg := range decoded[line] {
				if seg.nfields >= 4 {
					if seg.source >= len(srcIdx) {
						return fmt.Errorf("mapping references unknown source %d", seg.source)
					}
					seg.source = srcIdx[seg.source]
				}
				if seg.nfields >= 5 {
					if seg.name >= len(sm.Names) {
						seg.nfields = 4
					} else {
						seg.name = b.name(sm.Names[seg.name])
					}
				}
				segs = append(segs, seg)
			}
		}
		b.lines = append(b.lines, segs)
	}
	return nil
}

func (b *mapBuilder) encode(file string) ([]byte, error) {
	return json.Marshal(sourceMap{
		Version:        3,
		File:           file,
		Sources:        append([]string{}, b.sources...),
		SourcesContent: b.contents,
		Names:          append([]string{}, b.names...),
		Mappings:       encodeMappings(b.lines),
	})
}

// Concat joins files into a single file named name, separated by newlines.
// The result carries a source map pointing back at the original sources:
// inputs with a map contribute their mappings, inputs without one are
// mapped line by line.
func Concat(name string, files []File) (File, error) {
	var buf bytes.Buffer
	mb := newMapBuilder()

	for i, f := range files {
		if i > 0 {
			buf.WriteByte('\n')
		}
		body := bytes.TrimSuffix(f.Contents, []byte{'\n'})
		buf.Write(body)
		n := countLines(body)

		if f.Map == nil {
			mb.addIdentity(mb.source(f.Path, string(f.Contents)), n)
			continue
		}
		sm, err := parseMap(f.Map)
		if err != nil {
			return File{}, fmt.Errorf("%s: %w", f.Path, err)
		}
		if err := mb.addMapped(sm, n); err != nil {
			return File{}, fmt.Errorf("%s: %w", f.Path, err)
		}
	}
	buf.WriteByte('\n')

	m, err := mb.encode(name)
	if err != nil {
		return File{}, fmt.Errorf("encoding source map for %s: %w", name, err)
	}
	return File{Path: name, Contents: buf.Bytes(), Map: m}, nil
}

// ConcatStage is a Stage wrapping Concat.
type ConcatStage struct {
	Output string
}

// Name implements Stage.
func (s ConcatStage) Name() string { return "concat" }

// Transform implements Stage. An empty input stays empty.
func (s ConcatStage) Transform(_ context.Context, files []File) ([]File, error) {
	if len(files) == 0 {
		return nil, nil
	}
	f, err := Concat(s.Output, files)
	if err != nil {
		return nil, err
	}
	return []File{f}, nil
}
