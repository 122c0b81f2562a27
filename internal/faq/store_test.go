package faq

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoad_JSONKeepsDocumentOrder(t *testing.T) {
	p := writeFile(t, "faq.json", `{
		"watering": "water twice daily",
		"contamination": "remove green mould",
		"water": "use clean water"
	}`)

	s, err := Load(p)
	require.NoError(t, err)

	want := []Entry{
		{Fragment: "watering", Answer: "water twice daily"},
		{Fragment: "contamination", Answer: "remove green mould"},
		{Fragment: "water", Answer: "use clean water"},
	}
	if diff := cmp.Diff(want, s.Entries()); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_YAML(t *testing.T) {
	p := writeFile(t, "faq.yaml", "watering: water twice daily\nspawn: buy from a lab\n")

	s, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())
	assert.Equal(t, "spawn", s.Entries()[1].Fragment)
}

func TestLoad_TOMLKeepsDocumentOrder(t *testing.T) {
	p := writeFile(t, "faq.toml", "watering = \"water twice daily\"\n\"green mould\" = \"isolate the bag\"\nspawn = \"buy from a lab\"\n")

	s, err := Load(p)
	require.NoError(t, err)

	want := []Entry{
		{Fragment: "watering", Answer: "water twice daily"},
		{Fragment: "green mould", Answer: "isolate the bag"},
		{Fragment: "spawn", Answer: "buy from a lab"},
	}
	if diff := cmp.Diff(want, s.Entries()); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_TOMLTableIsMalformed(t *testing.T) {
	p := writeFile(t, "faq.toml", "[section]\nwatering = \"water twice daily\"\n")

	s, err := Load(p)
	require.Error(t, err)
	assert.Equal(t, 0, s.Len())
}

func TestLoad_MissingFileYieldsEmptyStore(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	require.NotNil(t, s)
	assert.Equal(t, 0, s.Len())

	_, ok := s.Lookup("anything at all")
	assert.False(t, ok)
}

func TestLoad_MalformedYieldsEmptyStore(t *testing.T) {
	cases := map[string]string{
		"broken.json":   `{"watering": `,
		"array.json":    `["watering"]`,
		"number.json":   `{"watering": 3}`,
		"trailing.json": `{"a":"b"} {"c":"d"}`,
		"list.yaml":     "- watering\n- spawn\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			s, err := Load(writeFile(t, name, content))
			require.Error(t, err)
			assert.Equal(t, 0, s.Len())
		})
	}
}

func TestLookup(t *testing.T) {
	s := New([]Entry{
		{Fragment: "Watering", Answer: "water twice daily"},
		{Fragment: "water", Answer: "use clean water"},
		{Fragment: "", Answer: "never"},
	})

	ans, ok := s.Lookup("How should I handle WATERING?")
	require.True(t, ok)
	assert.Equal(t, "water twice daily", ans, "first match in load order wins")

	ans, ok = s.Lookup("is tap water fine")
	require.True(t, ok)
	assert.Equal(t, "use clean water", ans)

	_, ok = s.Lookup("spawn suppliers")
	assert.False(t, ok, "empty fragment must not match everything")
}

func TestNew_DuplicateKeepsFirstPosition(t *testing.T) {
	s := New([]Entry{
		{Fragment: "a", Answer: "1"},
		{Fragment: "b", Answer: "2"},
		{Fragment: "a", Answer: "3"},
	})
	want := []Entry{{Fragment: "a", Answer: "3"}, {Fragment: "b", Answer: "2"}}
	if diff := cmp.Diff(want, s.Entries()); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestNilStore(t *testing.T) {
	var s *Store
	_, ok := s.Lookup("x")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}
