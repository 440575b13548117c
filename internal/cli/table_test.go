package cli

import (
	"strings"
	"testing"
)

func TestTableAddRow(t *testing.T) {
	table := NewTable([]string{"Slot", "Hex"})

	table.AddRow("0", "#ff0000")
	table.AddRow("1")
	table.AddRow("2", "#00ff00", "extra")

	if table.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", table.Len())
	}
	if len(table.rows[1]) != 2 || table.rows[1][1] != "" {
		t.Errorf("short row = %q, want padded to 2 columns", table.rows[1])
	}
	if len(table.rows[2]) != 2 {
		t.Errorf("long row = %q, want truncated to 2 columns", table.rows[2])
	}
}

func TestTableRender(t *testing.T) {
	table := NewTable([]string{"Slot", "Pixels"})
	table.AlignRight(1)
	table.AddRow("0", "1024")
	table.AddRow("17", "3")

	want := strings.Join([]string{
		"Slot  Pixels",
		"----  ------",
		"0       1024",
		"17         3",
		"",
	}, "\n")

	if got := table.Render(); got != want {
		t.Errorf("Render() =\n%s\nwant\n%s", got, want)
	}
}

func TestTableRenderEmpty(t *testing.T) {
	if got := NewTable(nil).Render(); got != "" {
		t.Errorf("Render() = %q, want empty", got)
	}
}
