package main

import (
	"fmt"

	"github.com/andresuchdata/workshop-dashboard/internal/view"
	"github.com/urfave/cli/v2"
	"github.com/xuri/excelize/v2"
)

func runExport(c *cli.Context) error {
	v, err := buildView(c)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := v.Title
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := writeSheet(f, sheet, labels(v.Columns), v.Table); err != nil {
		return err
	}

	if c.Bool("queue") {
		if _, err := f.NewSheet("Uploads"); err != nil {
			return fmt.Errorf("failed to add uploads sheet: %w", err)
		}
		if err := writeSheet(f, "Uploads", labels(v.QueueColumns), v.QueueTable); err != nil {
			return err
		}
	}

	if err := f.SaveAs(c.String("out")); err != nil {
		return fmt.Errorf("failed to write %s: %w", c.String("out"), err)
	}
	fmt.Fprintf(c.App.Writer, "wrote %d rows to %s\n", v.RowCount, c.String("out"))
	return nil
}

// writeSheet stores raw cell values so numbers stay numeric in the workbook.
func writeSheet(f *excelize.File, sheet string, header []string, table [][]view.Cell) error {
	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for r, row := range table {
		values := make([]interface{}, len(row))
		for i, cell := range row {
			values[i] = exportValue(cell)
		}
		axis, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, axis, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r+1, err)
		}
	}
	return nil
}

func exportValue(cell view.Cell) interface{} {
	switch v := cell.Value.(type) {
	case int:
		return v
	case interface{ InexactFloat64() float64 }:
		return v.InexactFloat64()
	}
	return cell.Display
}
