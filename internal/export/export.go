// Package export renders fax job listings as CSV or XLSX downloads.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/ahmethakanbesel/fax-api/internal/faxjob"
)

const sheet = "FaxJobs"

var headers = []string{
	"ID",
	"Status",
	"Fax Number",
	"File Name",
	"File URL",
	"Request User",
	"Order Destination",
	"Error Message",
	"Converted PDF",
	"Created At",
	"Updated At",
	"Processing Minutes",
}

func row(j *faxjob.Job) []string {
	minutes := ""
	if m, ok := j.ProcessingTimeMinutes(); ok {
		minutes = strconv.FormatInt(m, 10)
	}
	return []string{
		j.ID,
		j.StatusLabel(),
		j.FaxNumber,
		j.FileName,
		j.FileURL,
		j.RequestUser,
		j.OrderDestination,
		j.ErrorMessage,
		j.ConvertedPDFPath,
		j.FormattedCreatedAt(),
		j.FormattedUpdatedAt(),
		minutes,
	}
}

func WriteCSV(w io.Writer, jobs []faxjob.Job) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("csv header: %w", err)
	}
	for i := range jobs {
		if err := cw.Write(row(&jobs[i])); err != nil {
			return fmt.Errorf("csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// XLSX returns a single-sheet workbook with one row per job.
func XLSX(jobs []faxjob.Job) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	write := func(col, r int, v any) error {
		cell, err := excelize.CoordinatesToCellName(col, r)
		if err != nil {
			return err
		}
		return f.SetCellValue(sheet, cell, v)
	}

	for i, h := range headers {
		if err := write(i+1, 1, h); err != nil {
			return nil, fmt.Errorf("xlsx header: %w", err)
		}
	}
	for n := range jobs {
		for i, v := range row(&jobs[n]) {
			if err := write(i+1, n+2, v); err != nil {
				return nil, fmt.Errorf("xlsx row: %w", err)
			}
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 38) // id
	_ = f.SetColWidth(sheet, "B", "B", 12) // status
	_ = f.SetColWidth(sheet, "C", "G", 24)
	_ = f.SetColWidth(sheet, "H", "I", 40)
	_ = f.SetColWidth(sheet, "J", "K", 22) // timestamps

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
