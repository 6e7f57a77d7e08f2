package pipeline

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcat(t *testing.T) {
	t.Run("plain inputs map line by line", func(t *testing.T) {
		// --- Arrange ---
		files := []File{
			{Path: "src/a.js", Contents: []byte("var a = 1;\nvar b = 2;\n")},
			{Path: "src/b.js", Contents: []byte("var c = 3;")},
		}

		// --- Act ---
		out, err := Concat("index.min.js", files)

		// --- Assert ---
		require.NoError(t, err)
		assert.Equal(t, "index.min.js", out.Path)
		assert.Equal(t, "var a = 1;\nvar b = 2;\nvar c = 3;\n", string(out.Contents))

		sm, err := parseMap(out.Map)
		require.NoError(t, err)
		assert.Equal(t, []string{"src/a.js", "src/b.js"}, sm.Sources)
		assert.Equal(t, "AAAA;AACA;ACDA", sm.Mappings)
		assert.Equal(t, "var c = 3;", sm.SourcesContent[1])
	})

	t.Run("existing maps are rebased", func(t *testing.T) {
		// --- Arrange ---
		inner := []byte(`{"version":3,"sources":["src/x.css"],"sourcesContent":["a{}"],"names":[],"mappings":"AAAA;AACA"}`)
		files := []File{
			{Path: "src/top.css", Contents: []byte("b{}")},
			{Path: "src/x.css", Contents: []byte("a {\n}\n"), Map: inner},
		}

		// --- Act ---
		out, err := Concat("index.min.css", files)

		// --- Assert ---
		require.NoError(t, err)
		sm, err := parseMap(out.Map)
		require.NoError(t, err)
		assert.Equal(t, []string{"src/top.css", "src/x.css"}, sm.Sources)
		lines, err := decodeMappings(sm.Mappings)
		require.NoError(t, err)
		require.Len(t, lines, 3)
		want := []segment{{source: 1, line: 1, nfields: 4}}
		if diff := cmp.Diff(want, lines[2], cmp.AllowUnexported(segment{})); diff != "" {
			t.Errorf("third line mapping mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("broken map is an error", func(t *testing.T) {
		_, err := Concat("out.js", []File{{Path: "a.js", Contents: []byte("x"), Map: []byte("{")}})
		assert.ErrorContains(t, err, "a.js: decoding source map")
	})
}

func TestConcatStage(t *testing.T) {
	s := ConcatStage{Output: "all.js"}

	out, err := s.Transform(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = s.Transform(context.Background(), []File{{Path: "a.js", Contents: []byte("1")}})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "all.js", out[0].Path)
}
