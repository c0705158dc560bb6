package gradebook

import (
	"bufio"
	"io"
	"strings"
)

// ImportStudents reads a roster from CSV-ish text: one student per non-blank
// line, fields split on ',' or ';', name in the first field and surname in
// the second. Lines with fewer than two fields are skipped. A first line
// whose leading field mentions "name" or "nombre" is treated as a header row
// and dropped. There is no quoting or escaping support; rosters exported
// from spreadsheets as plain CSV don't need it.
//
// It returns the number of students added.
func ImportStudents(c *Course, r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	count := 0
	lineNo := 0
	for scanner.Scan() {
		line := scanner.Text()
		lineNo++
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(strings.ReplaceAll(line, ";", ","), ",")
		if len(fields) < 2 {
			continue
		}
		if lineNo == 1 && isHeaderField(fields[0]) {
			continue
		}
		c.AddStudent(strings.TrimSpace(fields[0]), strings.TrimSpace(fields[1]))
		count++
	}
	if err := scanner.Err(); err != nil {
		return count, err
	}
	return count, nil
}

func isHeaderField(field string) bool {
	f := strings.ToLower(field)
	return strings.Contains(f, "nombre") || strings.Contains(f, "name")
}
