package archiver

import (
	"fmt"
	"regexp"
	"strings"
)

// DictEntry is one key-value pair of a text dictionary.
type DictEntry struct {
	Key   string
	Value string
}

// WriteDict renders a list of entries as an aligned text dictionary, one
// '* key : value' line per entry. This is the lossless rendering used for
// the on-disk log artifact and the summary info section.
func WriteDict(entries []DictEntry) string {

	if len(entries) == 0 {
		return "\n"
	}

	length := 0
	for _, entry := range entries {
		if len(entry.Key) > length {
			length = len(entry.Key)
		}
	}

	var b strings.Builder
	for _, entry := range entries {
		fmt.Fprintf(&b, "* %-*s :   %s\n", length, entry.Key, entry.Value)
	}

	return b.String()
}

var dictLine = regexp.MustCompile(`^\* (\w(?: *\w+)*) *: *(.*)$`)

// ReadDict parses a text dictionary back into its key-value pairs.
func ReadDict(text string) (map[string]string, error) {

	entries := make(map[string]string)

	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {

		groups := dictLine.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if groups == nil {
			return nil, fmt.Errorf("cannot parse text dictionary line '%s'", line)
		}

		entries[groups[1]] = strings.TrimSpace(groups[2])
	}

	return entries, nil
}

// Table renders rows of cells as an aligned text table, used for the files
// and acquisitions sections of the summary artifact.
type Table struct {
	rows [][]string
}

// AppendRow adds one row to the table.
func (t *Table) AppendRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *Table) String() string {

	if len(t.rows) == 0 {
		return ""
	}

	lengths := make([]int, len(t.rows[0]))
	for _, row := range t.rows {
		for i, cell := range row {
			if len(cell) > lengths[i] {
				lengths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	for _, row := range t.rows {
		padded := make([]string, len(row))
		for i, cell := range row {
			padded[i] = fmt.Sprintf("%-*s", lengths[i], cell)
		}
		b.WriteString(strings.TrimRight(strings.Join(padded, " | "), " "))
		b.WriteString("\n")
	}

	return b.String()
}
