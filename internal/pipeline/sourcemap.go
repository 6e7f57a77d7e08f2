package pipeline

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// sourceMap is the subset of the version 3 source map format this package
// reads and writes.
type sourceMap struct {
	Version        int      `json:"version"`
	File           string   `json:"file,omitempty"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent,omitempty"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

// segment is one decoded mapping with absolute values. A segment with
// fields == 1 maps a generated column to nothing.
type segment struct {
	genCol  int
	source  int
	line    int
	col     int
	name    int
	nfields int
}

const base64Digits = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

var base64Values = func() [256]int {
	var t [256]int
	for i := range t {
		t[i] = -1
	}
	for i := 0; i < len(base64Digits); i++ {
		t[base64Digits[i]] = i
	}
	return t
}()

// writeVLQ appends the base64 VLQ encoding of v.
func writeVLQ(b *strings.Builder, v int) {
	u := v << 1
	if v < 0 {
		u = (-v << 1) | 1
	}
	for {
		digit := u & 31
		u >>= 5
		if u > 0 {
			digit |= 32
		}
		b.WriteByte(base64Digits[digit])
		if u == 0 {
			return
		}
	}
}

// readVLQ decodes one value from s, returning it and the rest of s.
func readVLQ(s string) (int, string, error) {
	value, shift := 0, 0
	for i := 0; i < len(s); i++ {
		digit := base64Values[s[i]]
		if digit < 0 {
			return 0, "", fmt.Errorf("invalid base64 digit %q", s[i])
		}
		value |= (digit & 31) << shift
		shift += 5
		if digit&32 == 0 {
			if value&1 == 1 {
				return -(value >> 1), s[i+1:], nil
			}
			return value >> 1, s[i+1:], nil
		}
	}
	return 0, "", fmt.Errorf("truncated VLQ value")
}

// decodeMappings turns a mappings string into absolute segments per
// generated line.
func decodeMappings(mappings string) ([][]segment, error) {
	var lines [][]segment
	var source, line, col, name int

	for _, l := range strings.Split(mappings, ";") {
		var segs []segment
		genCol := 0
		for _, raw := range strings.Split(l, ",") {
			if raw == "" {
				continue
			}
			var fields []int
			for rest := raw; rest != ""; {
				v, r, err := readVLQ(rest)
				if err != nil {
					return nil, err
				}
				fields = append(fields, v)
				rest = r
			}
			seg := segment{nfields: len(fields)}
			genCol += fields[0]
			seg.genCol = genCol
			if len(fields) >= 4 {
				source += fields[1]
				line += fields[2]
				col += fields[3]
				seg.source, seg.line, seg.col = source, line, col
			}
			if len(fields) >= 5 {
				name += fields[4]
				seg.name = name
			}
			segs = append(segs, seg)
		}
		lines = append(lines, segs)
	}
	return lines, nil
}

// encodeMappings is the inverse of decodeMappings.
func encodeMappings(lines [][]segment) string {
	var b strings.Builder
	var source, line, col, name int

	for i, segs := range lines {
		if i > 0 {
			b.WriteByte(';')
		}
		genCol := 0
		for j, seg := range segs {
			if j > 0 {
				b.WriteByte(',')
			}
			writeVLQ(&b, seg.genCol-genCol)
			genCol = seg.genCol
			if seg.nfields < 4 {
				continue
			}
			writeVLQ(&b, seg.source-source)
			writeVLQ(&b, seg.line-line)
			writeVLQ(&b, seg.col-col)
			source, line, col = seg.source, seg.line, seg.col
			if seg.nfields >= 5 {
				writeVLQ(&b, seg.name-name)
				name = seg.name
			}
		}
	}
	return b.String()
}

func countLines(data []byte) int {
	if len(data) == 0 {
		return 1
	}
	return bytes.Count(data, []byte{'\n'}) + 1
}

// inlineMapComment returns a sourceMappingURL comment carrying m as a data
// URL, in the comment syntax of the given language.
func inlineMapComment(m []byte, css bool) string {
	url := "data:application/json;base64," + base64.StdEncoding.EncodeToString(m)
	if css {
		return "\n/*# sourceMappingURL=" + url + " */\n"
	}
	return "\n//# sourceMappingURL=" + url + "\n"
}

func parseMap(m []byte) (*sourceMap, error) {
	var sm sourceMap
	if err := json.Unmarshal(m, &sm); err != nil {
		return nil, fmt.Errorf("decoding source map: %w", err)
	}
	if sm.Version != 3 {
		return nil, fmt.Errorf("unsupported source map version %d", sm.Version)
	}
	return &sm, nil
}
