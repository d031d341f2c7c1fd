package docxlsx

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/goliatone/go-docgen/docgen"
	"github.com/xuri/excelize/v2"
)

// Sheet names.
const (
	AttendanceSheet = "Kehadiran"
	ActionSheet     = "Tindakan"
)

var (
	attendanceHeaders = []string{"BIL", "NAMA", "JAWATAN", "TANDATANGAN"}
	attendanceWidths  = []float64{6, 40, 28, 24}
	actionHeaders     = []string{"BIL", "PERKARA", "TINDAKAN"}
	actionWidths      = []float64{6, 60, 24}
)

// AttendanceXLSX renders the attendance register. It satisfies
// docgen.MinitRenderer so it registers under docgen.FormatXLSX.
type AttendanceXLSX struct {
	// SignatureRowHeight leaves room to sign, in points.
	SignatureRowHeight float64
}

// NewAttendanceXLSX creates a register renderer.
func NewAttendanceXLSX() *AttendanceXLSX {
	return &AttendanceXLSX{SignatureRowHeight: 28}
}

// RenderMinit writes the workbook to w.
func (r *AttendanceXLSX) RenderMinit(ctx context.Context, doc docgen.MinitDocument, assets docgen.MinitAssets, w io.Writer) error {
	if r == nil {
		return docgen.NewError(docgen.KindInternal, "xlsx renderer is nil", nil)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	file := excelize.NewFile()
	defer func() {
		_ = file.Close()
	}()
	file.SetSheetName(file.GetSheetName(0), AttendanceSheet)
	if _, err := file.NewSheet(ActionSheet); err != nil {
		return renderError(err)
	}

	styles, err := buildStyles(file, assets.Font)
	if err != nil {
		return renderError(err)
	}
	if err := r.writeAttendance(file, styles, doc); err != nil {
		return renderError(err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := writeActions(file, styles, doc); err != nil {
		return renderError(err)
	}
	file.SetActiveSheet(0)

	if _, err := file.WriteTo(w); err != nil {
		return renderError(err)
	}
	return nil
}

type sheetStyles struct {
	title  int
	meta   int
	header int
	cell   int
	number int
}

func buildStyles(file *excelize.File, font docgen.Font) (sheetStyles, error) {
	family := "Times New Roman"
	if font == docgen.FontCalibri {
		family = "Calibri"
	}
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	center := &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true}
	left := &excelize.Alignment{Vertical: "center", WrapText: true}

	var s sheetStyles
	var err error
	defs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&s.title, &excelize.Style{Font: &excelize.Font{Family: family, Bold: true, Size: 14}, Alignment: center}},
		{&s.meta, &excelize.Style{Font: &excelize.Font{Family: family, Bold: true, Size: 11}, Alignment: center}},
		{&s.header, &excelize.Style{
			Font:      &excelize.Font{Family: family, Bold: true, Size: 11},
			Alignment: center,
			Border:    border,
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D9D9D9"}},
		}},
		{&s.cell, &excelize.Style{Font: &excelize.Font{Family: family, Size: 11}, Alignment: left, Border: border}},
		{&s.number, &excelize.Style{Font: &excelize.Font{Family: family, Size: 11}, Alignment: center, Border: border}},
	}
	for _, d := range defs {
		if *d.dst, err = file.NewStyle(d.style); err != nil {
			return sheetStyles{}, err
		}
	}
	return s, nil
}

func (r *AttendanceXLSX) writeAttendance(file *excelize.File, styles sheetStyles, doc docgen.MinitDocument) error {
	stream, err := file.NewStreamWriter(AttendanceSheet)
	if err != nil {
		return err
	}
	for i, width := range attendanceWidths {
		if err := stream.SetColWidth(i+1, i+1, width); err != nil {
			return err
		}
	}

	lastCol := columnName(len(attendanceHeaders))
	row := 1
	banner := append([]string{doc.Title, doc.Organization, doc.Subtitle}, doc.Meta...)
	for i, text := range banner {
		style := styles.meta
		if i < 2 {
			style = styles.title
		}
		if err := stream.SetRow(cellName(1, row), []any{excelize.Cell{StyleID: style, Value: text}}); err != nil {
			return err
		}
		if err := stream.MergeCell(cellName(1, row), lastCol+strconv.Itoa(row)); err != nil {
			return err
		}
		row++
	}
	row++

	if err := stream.SetRow(cellName(1, row), headerCells(attendanceHeaders, styles.header)); err != nil {
		return err
	}
	row++

	opts := excelize.RowOpts{Height: r.SignatureRowHeight}
	for _, a := range doc.Attendance {
		cells := []any{
			excelize.Cell{StyleID: styles.number, Value: a.Number},
			excelize.Cell{StyleID: styles.cell, Value: a.Name},
			excelize.Cell{StyleID: styles.cell, Value: a.Position},
			excelize.Cell{StyleID: styles.cell, Value: ""},
		}
		if err := stream.SetRow(cellName(1, row), cells, opts); err != nil {
			return err
		}
		row++
	}
	return stream.Flush()
}

func writeActions(file *excelize.File, styles sheetStyles, doc docgen.MinitDocument) error {
	stream, err := file.NewStreamWriter(ActionSheet)
	if err != nil {
		return err
	}
	for i, width := range actionWidths {
		if err := stream.SetColWidth(i+1, i+1, width); err != nil {
			return err
		}
	}
	if err := stream.SetRow("A1", headerCells(actionHeaders, styles.header)); err != nil {
		return err
	}
	row := 2
	for _, section := range doc.Sections {
		if section.Action == "" {
			continue
		}
		cells := []any{
			excelize.Cell{StyleID: styles.number, Value: section.Number},
			excelize.Cell{StyleID: styles.cell, Value: section.Title},
			excelize.Cell{StyleID: styles.cell, Value: section.Action},
		}
		if err := stream.SetRow(cellName(1, row), cells); err != nil {
			return err
		}
		row++
	}
	return stream.Flush()
}

func headerCells(headers []string, style int) []any {
	cells := make([]any, len(headers))
	for i, h := range headers {
		cells[i] = excelize.Cell{StyleID: style, Value: h}
	}
	return cells
}

func cellName(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Sprintf("A%d", row)
	}
	return name
}

func columnName(col int) string {
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return "A"
	}
	return name
}

func renderError(err error) error {
	return docgen.NewError(docgen.KindRender, "write attendance xlsx", err)
}
