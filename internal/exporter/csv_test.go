package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Setup test environment
func setupTestEnv(t *testing.T) (*CSVWriter, string) {
	t.Helper()

	tempDir := t.TempDir()
	return NewCSVWriter(tempDir, nil), tempDir
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestNewCSVWriter(t *testing.T) {
	writer := NewCSVWriter("/base", nil)

	assert.NotNil(t, writer)
	assert.Equal(t, "/base", writer.baseDir)
	assert.NotNil(t, writer.logger)
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	tests := []struct {
		name     string
		options  WriteOptions
		expected [][]string
		checkBOM bool
	}{
		{
			name: "headers and records",
			options: WriteOptions{
				Headers: []string{"utm_source", "acquisition_volume"},
				Records: [][]string{{"google", "3"}, {"unknown", "1"}},
			},
			expected: [][]string{{"utm_source", "acquisition_volume"}, {"google", "3"}, {"unknown", "1"}},
		},
		{
			name: "headers only",
			options: WriteOptions{
				Headers: []string{"utm_source", "acquisition_volume"},
			},
			expected: [][]string{{"utm_source", "acquisition_volume"}},
		},
		{
			name: "with BOM prefix",
			options: WriteOptions{
				Headers:   []string{"utm_source"},
				Records:   [][]string{{"google"}},
				BOMPrefix: true,
			},
			expected: [][]string{{"utm_source"}, {"google"}},
			checkBOM: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writer, tempDir := setupTestEnv(t)

			err := writer.WriteCSV("out/table.csv", tt.options)
			require.NoError(t, err)

			path := filepath.Join(tempDir, "out", "table.csv")
			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.checkBOM, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}))

			assert.Equal(t, tt.expected, readCSV(t, path))
		})
	}
}

func TestCSVWriter_WriteCSV_ReplacesExisting(t *testing.T) {
	writer, tempDir := setupTestEnv(t)
	path := filepath.Join(tempDir, "table.csv")

	require.NoError(t, writer.WriteCSV("table.csv", WriteOptions{
		Headers: []string{"a"},
		Records: [][]string{{"1"}, {"2"}, {"3"}},
	}))
	require.NoError(t, writer.WriteCSV("table.csv", WriteOptions{
		Headers: []string{"a"},
		Records: [][]string{{"9"}},
	}))

	assert.Equal(t, [][]string{{"a"}, {"9"}}, readCSV(t, path))

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files are left behind")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
}

func TestCSVWriter_ResolvePath(t *testing.T) {
	tests := []struct {
		name     string
		baseDir  string
		input    string
		expected string
	}{
		{"relative joined", "/base", "out/a.csv", filepath.Join("/base", "out/a.csv")},
		{"absolute kept", "/base", "/tmp/a.csv", "/tmp/a.csv"},
		{"no base dir", "", "out/a.csv", "out/a.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writer := NewCSVWriter(tt.baseDir, nil)
			assert.Equal(t, tt.expected, writer.resolvePath(tt.input))
		})
	}
}

func TestCSVWriter_SpecialCharacters(t *testing.T) {
	writer, tempDir := setupTestEnv(t)

	records := [][]string{
		{"comma, inside", "quote \"here\""},
		{"line\nbreak", "العربية"},
	}
	require.NoError(t, writer.WriteCSV("special.csv", WriteOptions{
		Headers: []string{"a", "b"},
		Records: records,
	}))

	got := readCSV(t, filepath.Join(tempDir, "special.csv"))
	require.Len(t, got, 3)
	assert.Equal(t, records, got[1:])
}

func TestCSVWriter_WriteTable(t *testing.T) {
	writer, tempDir := setupTestEnv(t)

	table := Table{
		Name:    TableUTM,
		Headers: []string{"Contact ID", "utm_source"},
		Records: [][]string{{"1", "google"}},
	}
	require.NoError(t, writer.WriteTable("utm.csv", table, false))

	assert.Equal(t, [][]string{{"Contact ID", "utm_source"}, {"1", "google"}},
		readCSV(t, filepath.Join(tempDir, "utm.csv")))
}

func TestCSVWriter_ConcurrentWrites(t *testing.T) {
	writer, tempDir := setupTestEnv(t)

	names := []string{"a.csv", "b.csv", "c.csv", "d.csv"}
	var wg sync.WaitGroup
	errs := make([]error, len(names))
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			errs[i] = writer.WriteCSV(name, WriteOptions{
				Headers: []string{"name"},
				Records: [][]string{{name}},
			})
		}(i, name)
	}
	wg.Wait()

	for i, name := range names {
		require.NoError(t, errs[i])
		assert.Equal(t, [][]string{{"name"}, {name}}, readCSV(t, filepath.Join(tempDir, name)))
	}
}
