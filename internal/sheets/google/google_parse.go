package google

import (
	"fmt"
	"strings"
)

// parseIDColumn maps transaction ids found in column A to their 1-based row
// numbers and returns the number of rows the column spans. The header row and
// cleared rows are counted but not indexed.
func parseIDColumn(values [][]any) (map[string]int, int) {
	index := make(map[string]int, len(values))
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		id := strings.TrimSpace(fmt.Sprint(row[0]))
		if id == "" || strings.EqualFold(id, "id") {
			continue
		}
		if _, dup := index[id]; dup {
			// keep the first occurrence; later duplicates are left alone
			continue
		}
		index[id] = i + 1
	}
	return index, len(values)
}
