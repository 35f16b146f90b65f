package spreadsheet

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, cells ...string) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, c := range cells {
		require.NoError(t, f.SetCellValue(sheet, fmt.Sprintf("A%d", i+1), c))
	}
	require.NoError(t, f.SetCellValue(sheet, "B1", "ignored"))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParseWords(t *testing.T) {
	t.Parallel()

	got, err := ParseWords(workbook(t, "Word", " apple ", "", "Jump"))
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "Jump"}, got)
}

func TestParseWords_NoHeader(t *testing.T) {
	t.Parallel()

	got, err := ParseWords(workbook(t, "cat", "dog"))
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "dog"}, got)
}

func TestParseWords_NotAWorkbook(t *testing.T) {
	t.Parallel()

	_, err := ParseWords(strings.NewReader("apple,banana"))
	assert.Error(t, err)
}
