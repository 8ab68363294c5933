package spreadsheet

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/phenrril/psucalc/internal/domain"
)

var header = []any{"name", "power", "type"}

// Write renders the catalog as one sheet per category, named after its slug.
// Categories without records still get a sheet with the header row.
func Write(w io.Writer, components []domain.Component) error {
	f := excelize.NewFile()
	defer f.Close()

	byCat := map[domain.Category][]domain.Component{}
	for _, c := range components {
		byCat[c.Category] = append(byCat[c.Category], c)
	}

	for i, cat := range domain.Categories {
		sheet := string(cat)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return err
		}
		for j, c := range byCat[cat] {
			cell, _ := excelize.CoordinatesToCellName(1, j+2)
			row := []any{c.Name, c.Power, c.Type}
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return err
			}
		}
	}
	_, err := f.WriteTo(w)
	return err
}

// Read parses a workbook written by Write or by hand. Sheets whose name is not
// a category are ignored; a leading "name" header row is skipped. Rows without
// a name are counted in skipped.
func Read(r io.Reader) (rows []domain.Component, skipped int, err error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, 0, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	for _, sh := range f.GetSheetList() {
		cat, ok := domain.ParseCategory(sh)
		if !ok {
			continue
		}
		data, err := f.GetRows(sh)
		if err != nil {
			return nil, 0, fmt.Errorf("read sheet %s: %w", sh, err)
		}
		for i, cols := range data {
			name := cell(cols, 0)
			if i == 0 && strings.EqualFold(name, "name") {
				continue
			}
			if name == "" {
				if strings.Join(cols, "") != "" {
					skipped++
				}
				continue
			}
			rows = append(rows, domain.Component{
				Category: cat,
				Name:     name,
				Power:    cell(cols, 1),
				Type:     cell(cols, 2),
			})
		}
	}
	return rows, skipped, nil
}

func cell(cols []string, i int) string {
	if i >= len(cols) {
		return ""
	}
	return strings.TrimSpace(cols[i])
}
