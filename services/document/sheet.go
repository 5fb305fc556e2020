package docsvc

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/signquick/signquick/core/sign"
)

const materialSheet = "Materials"

var (
	ErrNoSheet = errors.New("the workbook has no sheet")

	materialHeader  = []interface{}{"category", "subcategory", "name", "calc_type", "unit_price", "note"}
	materialExample = []interface{}{"현수막", "일반 현수막", "현수막 (일반)", "m2", 8000, "example row, replace it"}
)

// SheetCodec reads and writes the material import workbook.
type SheetCodec struct{}

var _ sign.SheetCodec = SheetCodec{} // interface compliance check

func NewSheetCodec() SheetCodec {
	return SheetCodec{}
}

// ReadMaterialRows parses the first sheet: the header row is skipped and blank rows are dropped.
func (SheetCodec) ReadMaterialRows(r io.Reader) ([]sign.ImportRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "opening workbook")
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheet
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrap(err, "reading rows")
	}

	items := make([]sign.ImportRow, 0, len(rows))
	for i, row := range rows {
		if i == 0 || blank(row) {
			continue
		}
		col := func(n int) sign.Cell {
			if n < len(row) {
				return sign.Cell(strings.TrimSpace(row[n]))
			}
			return ""
		}
		items = append(items, sign.ImportRow{
			CategoryName:    col(0),
			SubcategoryName: col(1),
			Name:            col(2),
			CalcType:        sign.Cell(strings.ToLower(string(col(3)))),
			UnitPrice:       sign.Cell(strings.ReplaceAll(string(col(4)), ",", "")),
			Note:            col(5),
		})
	}
	return items, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// MaterialTemplate returns a workbook with the import header and an example row.
func (SheetCodec) MaterialTemplate() ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", materialSheet); err != nil {
		return nil, errors.Wrap(err, "naming sheet")
	}
	if err := f.SetSheetRow(materialSheet, "A1", &materialHeader); err != nil {
		return nil, errors.Wrap(err, "writing header")
	}
	if err := f.SetSheetRow(materialSheet, "A2", &materialExample); err != nil {
		return nil, errors.Wrap(err, "writing example")
	}
	if err := f.SetColWidth(materialSheet, "A", "F", 18); err != nil {
		return nil, errors.Wrap(err, "sizing columns")
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "writing xlsx")
	}
	return buf.Bytes(), nil
}
