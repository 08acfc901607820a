package bulletins

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `
bulletins:
  - id: 2025-w22
    title: Spreads grind tighter
    sort_date: 2025-05-30
    path: bulletins/2025-w22.pdf
  - id: 2025-w23
    title: Curve steepens into payrolls
    sort_date: 6/6/2025
    path: bulletins/2025-w23.pdf
    tags: [rates, credit]
  - id: 2025-w21
    title: Quiet week
    sort_date: "45800"
`

func TestParse(t *testing.T) {
	catalog, err := Parse([]byte(sampleManifest))
	require.NoError(t, err)
	require.Equal(t, 3, catalog.Len())

	list := catalog.List()
	assert.Equal(t, []string{"2025-w23", "2025-w22", "2025-w21"}, []string{list[0].ID, list[1].ID, list[2].ID})

	latest, ok := catalog.Latest()
	require.True(t, ok)
	assert.Equal(t, "2025-w23", latest.ID)
	assert.Equal(t, time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC), latest.SortDate)
	assert.Equal(t, []string{"rates", "credit"}, latest.Tags)

	b, err := catalog.Get("2025-w22")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 5, 30, 0, 0, 0, 0, time.UTC), b.SortDate)

	serial, err := catalog.Get("2025-w21")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 5, 23, 0, 0, 0, 0, time.UTC), serial.SortDate)

	_, err = catalog.Get("2024-w01")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
	}{
		{name: "missing title", manifest: "bulletins:\n  - id: a\n    sort_date: 2025-01-03\n"},
		{name: "missing date", manifest: "bulletins:\n  - id: a\n    title: A\n"},
		{name: "bad date", manifest: "bulletins:\n  - id: a\n    title: A\n    sort_date: someday\n"},
		{name: "duplicate id", manifest: "bulletins:\n  - {id: a, title: A, sort_date: 2025-01-03}\n  - {id: a, title: B, sort_date: 2025-01-10}\n"},
		{name: "malformed", manifest: "bulletins: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.manifest))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bulletins.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleManifest), 0644))

	catalog, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, catalog.Len())

	empty, err := Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	_, ok := empty.Latest()
	assert.False(t, ok)
	assert.Empty(t, empty.List())
}

func TestCatalog_ListIsCopy(t *testing.T) {
	catalog, err := Parse([]byte(sampleManifest))
	require.NoError(t, err)

	list := catalog.List()
	list[0].Title = "changed"

	latest, _ := catalog.Latest()
	assert.Equal(t, "Curve steepens into payrolls", latest.Title)
}
