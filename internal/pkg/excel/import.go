// Package excel reads and writes the student and attendance workbooks.
package excel

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"github.com/yigit/registrar/internal/pkg/apperrors"
)

// Canonical sex values stored in mystudent.sex
const (
	SexMale   = "Male"
	SexFemale = "Female"
)

// headerAliases maps trimmed sheet headers (English and Khmer) to fields.
var headerAliases = map[string]string{
	"លរ":       "list_id",
	"No.":      "list_id",
	"ឈ្មោះ":    "name",
	"Name":     "name",
	"ភេទ":      "sex",
	"Sex":      "sex",
	"ពិន្ទុ":   "score",
	"Score":    "score",
	"អ៊ីមែល":   "email",
	"Email":    "email",
	"ទូរស័ព្ទ": "phone",
	"Phone":    "phone",
}

var (
	maleValues   = []string{"ប", "ប្រុស", "MALE", "M"}
	femaleValues = []string{"ស", "ស្រី", "FEMALE", "F"}
)

// NormalizeSex maps the accepted spellings to Male/Female.
func NormalizeSex(v string) (string, bool) {
	v = strings.ToUpper(strings.TrimSpace(v))
	for _, m := range maleValues {
		if v == m {
			return SexMale, true
		}
	}
	for _, f := range femaleValues {
		if v == f {
			return SexFemale, true
		}
	}
	return "", false
}

// StudentRecord is a valid row of an import sheet
type StudentRecord struct {
	// Row is the 1-based sheet row
	Row   int
	Name  string
	Sex   string
	Score float64
	Email *string
	Phone *string
}

// ParseResult holds the valid records and a message per skipped row
type ParseResult struct {
	Records []StudentRecord
	Skipped []string
}

// ParseStudents reads the first sheet of an .xlsx workbook. The first row is
// the header; name and sex columns are required.
func ParseStudents(r io.Reader) (*ParseResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("cannot read excel file: %v", err))
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet: %w", err)
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrMissingColumns
	}

	cols := headerIndex(rows[0])
	if _, ok := cols["name"]; !ok {
		return nil, apperrors.ErrMissingColumns
	}
	if _, ok := cols["sex"]; !ok {
		return nil, apperrors.ErrMissingColumns
	}

	result := &ParseResult{}
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		cell := func(field string) string {
			idx, ok := cols[field]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		name := cell("name")
		if name == "" {
			continue
		}

		rawSex := cell("sex")
		sex, ok := NormalizeSex(rawSex)
		if !ok {
			result.Skipped = append(result.Skipped,
				fmt.Sprintf("Row %d: Invalid gender '%s' for student '%s'", i+1, rawSex, name))
			continue
		}

		score, err := strconv.ParseFloat(cell("score"), 64)
		if err != nil {
			score = 0
		}

		result.Records = append(result.Records, StudentRecord{
			Row:   i + 1,
			Name:  name,
			Sex:   sex,
			Score: score,
			Email: optional(cell("email")),
			Phone: optional(cell("phone")),
		})
	}

	return result, nil
}

// headerIndex returns the column of each known field; the first occurrence wins.
func headerIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		field, ok := headerAliases[strings.TrimSpace(h)]
		if !ok {
			continue
		}
		if _, seen := cols[field]; !seen {
			cols[field] = i
		}
	}
	return cols
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
