package dataprocessing

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"marketdesk/pkg/contracts/domain"
)

// TestReadWorkbookRows ensures serial dates come back as raw numbers and
// trailing blanks are trimmed.
func TestReadWorkbookRows(t *testing.T) {
	tmpDir := t.TempDir()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Date", "1 MO", "3 MO"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{45672, 4.5, 4.75}))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]interface{}{45673, 4.51, ""}))

	path := filepath.Join(tmpDir, "treasury.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	rows, err := ReadWorkbookRows(path, "")
	require.NoError(t, err)
	require.Len(t, rows, 3, "empty row 3 should be dropped")
	assert.Equal(t, []string{"Date", "1 MO", "3 MO"}, rows[0])
	assert.Equal(t, "45672", rows[1][0])
	assert.Len(t, rows[2], 2, "trailing empty cell should be trimmed")

	series := ParseWideRows(rows, WideSpec{Columns: map[string]domain.InstrumentKey{
		"1 MO": "US1M",
		"3 MO": "US3M",
	}})
	require.Contains(t, series, domain.InstrumentKey("US1M"))
	assert.Equal(t, 2, series["US1M"].Len())
	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), series["US1M"].At(0).Time)
}

func TestReadWorkbookRows_MissingSheet(t *testing.T) {
	tmpDir := t.TempDir()
	f := excelize.NewFile()
	path := filepath.Join(tmpDir, "empty.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	_, err := ReadWorkbookRows(path, "Nope")
	assert.Error(t, err)
}

func TestReadRows_UnsupportedFormat(t *testing.T) {
	_, err := ReadRows(filepath.Join(t.TempDir(), "data.json"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
