package grid

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

// LoadWorkbook reads an xlsx file into a RawGrid. The sheet is chosen by
// name when given, otherwise the first sheet carrying any data wins.
// An unreadable file or a workbook with no non-empty sheet is the one
// structural failure of the pipeline; no partial grid is returned.
func LoadWorkbook(path, sheet string) (*RawGrid, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return gridFromFile(f, sheet)
}

// LoadWorkbookReader reads an xlsx stream into a RawGrid. Used by the
// HTTP upload path where no file ever touches disk.
func LoadWorkbookReader(r io.Reader, sheet string) (*RawGrid, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return gridFromFile(f, sheet)
}

func gridFromFile(f *excelize.File, sheet string) (*RawGrid, error) {
	name := sheet
	if name == "" {
		for _, candidate := range f.GetSheetList() {
			rows, err := f.GetRows(candidate)
			if err == nil && len(rows) > 0 {
				name = candidate
				break
			}
		}
	}
	if name == "" {
		return nil, fmt.Errorf("workbook contains no sheet with data")
	}

	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", name)
	}

	merges, err := mergeRanges(f, name)
	if err != nil {
		return nil, fmt.Errorf("read merge ranges of %q: %w", name, err)
	}

	slog.Debug("loaded workbook sheet",
		slog.String("sheet", name),
		slog.Int("rows", len(rows)),
		slog.Int("merges", len(merges)))

	return &RawGrid{Cells: rows, Merges: merges}, nil
}

func mergeRanges(f *excelize.File, sheet string) ([]MergeRange, error) {
	cells, err := f.GetMergeCells(sheet)
	if err != nil {
		return nil, err
	}
	merges := make([]MergeRange, 0, len(cells))
	for _, mc := range cells {
		startCol, startRow, err := excelize.CellNameToCoordinates(mc.GetStartAxis())
		if err != nil {
			return nil, err
		}
		endCol, endRow, err := excelize.CellNameToCoordinates(mc.GetEndAxis())
		if err != nil {
			return nil, err
		}
		merges = append(merges, MergeRange{
			StartRow: startRow - 1,
			StartCol: startCol - 1,
			EndRow:   endRow - 1,
			EndCol:   endCol - 1,
		})
	}
	return merges, nil
}

// LoadCSV reads a delimited file into a RawGrid. CSV carries no merge
// ranges, so the merge list is always empty.
func LoadCSV(path string, comma rune) (*RawGrid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return LoadCSVReader(f, comma)
}

// LoadCSVReader reads delimited data from a stream into a RawGrid.
func LoadCSVReader(r io.Reader, comma rune) (*RawGrid, error) {
	reader := csv.NewReader(r)
	if comma != 0 {
		reader.Comma = comma
	}
	reader.FieldsPerRecord = -1

	var cells [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		cells = append(cells, record)
	}
	if len(cells) == 0 {
		return nil, fmt.Errorf("csv input is empty")
	}
	return &RawGrid{Cells: cells}, nil
}

// LoadFile dispatches on the file extension: .xlsx/.xlsm go through
// excelize, .tsv is read tab-separated, everything else is treated as
// comma-separated CSV.
func LoadFile(path, sheet string) (*RawGrid, error) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".xlsx"), strings.HasSuffix(lower, ".xlsm"):
		return LoadWorkbook(path, sheet)
	case strings.HasSuffix(lower, ".tsv"):
		return LoadCSV(path, '\t')
	default:
		return LoadCSV(path, ',')
	}
}
