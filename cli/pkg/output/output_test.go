package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func captureStdout(f func()) string {
	color.NoColor = true
	var out bytes.Buffer
	restore := SetOutput(&out, &bytes.Buffer{})
	defer restore()

	f()
	return out.String()
}

func captureStderr(f func()) string {
	color.NoColor = true
	var errOut bytes.Buffer
	restore := SetOutput(&bytes.Buffer{}, &errOut)
	defer restore()

	f()
	return errOut.String()
}

func TestSuccess(t *testing.T) {
	output := captureStdout(func() {
		Success("Loaded %d classes", 3)
	})

	assert.Equal(t, "✓ Loaded 3 classes\n", output)
}

func TestError(t *testing.T) {
	output := captureStderr(func() {
		Error("Failed to connect to %s on port %d", "server", 8090)
	})

	assert.Contains(t, output, "✗")
	assert.Contains(t, output, "Failed to connect to server on port 8090")
}

func TestInfo(t *testing.T) {
	output := captureStdout(func() {
		Info("Information message")
	})

	assert.Contains(t, output, "Information message")
	assert.NotContains(t, output, "✓")
	assert.NotContains(t, output, "✗")
}

func TestWarn(t *testing.T) {
	output := captureStdout(func() {
		Warn("Disk usage is %d%%", 95)
	})

	assert.Contains(t, output, "⚠")
	assert.Contains(t, output, "Disk usage is 95%")
}

func TestJSON_Indented(t *testing.T) {
	data := map[string]any{
		"class": map[string]any{
			"name": "process_activity",
			"uid":  1007,
		},
	}

	output := captureStdout(func() {
		require.NoError(t, JSON(data))
	})

	assert.Contains(t, output, "  \"class\":")
	assert.Contains(t, output, "    \"name\":")

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &parsed))
}

func TestYAML(t *testing.T) {
	type row struct {
		Name string `yaml:"event_name"`
		ID   int    `yaml:"event_id"`
	}

	output := captureStdout(func() {
		require.NoError(t, YAML([]row{{Name: "Process Activity", ID: 1007}}))
	})

	assert.Contains(t, output, "event_name: Process Activity")

	var parsed []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(output), &parsed))
	assert.Equal(t, 1007, parsed[0]["event_id"])
}

func TestStructured(t *testing.T) {
	tests := []struct {
		format  string
		handled bool
		prefix  string
	}{
		{FormatJSON, true, "{"},
		{FormatYAML, true, "a: 1"},
		{FormatTable, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var handled bool
			output := captureStdout(func() {
				var err error
				handled, err = Structured(tt.format, map[string]int{"a": 1})
				require.NoError(t, err)
			})
			assert.Equal(t, tt.handled, handled)
			assert.True(t, strings.HasPrefix(output, tt.prefix), output)
		})
	}
}

func TestValidFormat(t *testing.T) {
	assert.True(t, ValidFormat("table"))
	assert.True(t, ValidFormat("json"))
	assert.True(t, ValidFormat("yaml"))
	assert.False(t, ValidFormat("xml"))
	assert.False(t, ValidFormat(""))
}

func TestTable_AddRow(t *testing.T) {
	table := NewTable([]string{"Col1", "Col2"})

	table.AddRow([]string{"val1", "val2"})
	table.AddRow([]string{"val3", "val4"})

	assert.Len(t, table.rows, 2)
	assert.Equal(t, []string{"val3", "val4"}, table.rows[1])
}

func TestTable_Render_Empty(t *testing.T) {
	table := NewTable([]string{"Name", "Status"})

	output := captureStdout(func() {
		table.Render()
	})

	assert.Contains(t, output, "Name")
	assert.Contains(t, output, "Status")
	assert.Contains(t, output, "----")
}

func TestTable_Render_ColumnAlignment(t *testing.T) {
	table := NewTable([]string{"ID", "Name"})
	table.AddRow([]string{"1007", "Process Activity"})
	table.AddRow([]string{"3002", "Authentication"})

	output := captureStdout(func() {
		table.Render()
	})

	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	require.Len(t, lines, 4)

	assert.Equal(t, "ID    Name              ", lines[0])
	assert.Equal(t, "----  ----------------  ", lines[1])
	assert.Equal(t, "1007  Process Activity  ", lines[2])
	assert.Equal(t, "3002  Authentication    ", lines[3])
}

func TestTable_Render_ShortRow(t *testing.T) {
	table := NewTable([]string{"Name", "Value"})
	table.AddRow([]string{"only"})
	table.AddRow([]string{"", "value", "extra"})

	output := captureStdout(func() {
		table.Render()
	})

	assert.Contains(t, output, "only")
	assert.Contains(t, output, "value")
	assert.NotContains(t, output, "extra")
}
