package handlers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"
)

// ExportExcel runs the same view query as Browse and streams the result as a
// spreadsheet. Grouped queries render one section per group.
func (h *ViewHandler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	result, ok := h.runForExport(w, r)
	if !ok {
		return
	}

	excelFile, err := createViewExcel(result)
	if err != nil {
		log.Printf("export excel %s: %v", result.Axis, err)
		http.Error(w, "Failed to generate Excel file", http.StatusInternalServerError)
		return
	}

	buffer, err := excelFile.WriteToBuffer()
	if err != nil {
		log.Printf("export excel %s: %v", result.Axis, err)
		http.Error(w, "Failed to write Excel file", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("%s_%s.xlsx", sanitizeFilename(result.Axis), time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buffer.Len()))

	w.WriteHeader(http.StatusOK)
	w.Write(buffer.Bytes())
}

// ExportCSV streams the view result as CSV.
func (h *ViewHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	result, ok := h.runForExport(w, r)
	if !ok {
		return
	}

	csvData, err := createViewCSV(result)
	if err != nil {
		log.Printf("export csv %s: %v", result.Axis, err)
		http.Error(w, "Failed to generate CSV file", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("%s_%s.csv", sanitizeFilename(result.Axis), time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(csvData)))

	w.WriteHeader(http.StatusOK)
	w.Write(csvData)
}

func (h *ViewHandler) runForExport(w http.ResponseWriter, r *http.Request) (*ViewResult, bool) {
	q, err := parseViewQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	result, err := h.engine.Execute(r.Context(), q)
	if err != nil {
		if errors.Is(err, errUnknownAxis) || errors.Is(err, errBadDimension) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return nil, false
		}
		log.Printf("export %s: %v", q.Axis, err)
		http.Error(w, "could not run view query", http.StatusInternalServerError)
		return nil, false
	}
	return result, true
}

// createViewExcel generates a styled workbook from a view result.
func createViewExcel(result *ViewResult) (*excelize.File, error) {
	f := excelize.NewFile()
	sheetName := "Data"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
			Size: 16,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "left",
			Vertical:   "center",
		},
	})
	f.SetCellValue(sheetName, "A1", result.Axis)
	f.SetCellStyle(sheetName, "A1", "A1", titleStyle)
	f.SetRowHeight(sheetName, 1, 30)

	f.SetCellValue(sheetName, "A2", fmt.Sprintf("Generated: %s", result.Meta.GeneratedAt.Format("2006-01-02 15:04:05")))

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#4472C4"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	groupStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#D9E1F2"},
			Pattern: 1,
		},
	})

	rowNum := 4
	writeHeaderRow := func() {
		for colIdx, header := range result.Headers {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowNum)
			f.SetCellValue(sheetName, cell, header.Label)
			f.SetCellStyle(sheetName, cell, cell, headerStyle)
			f.SetColWidth(sheetName, columnIndexToLetter(colIdx+1), columnIndexToLetter(colIdx+1), 20)
		}
		rowNum++
	}
	writeDataRows := func(rows [][]string) {
		for _, row := range rows {
			for colIdx, value := range row {
				cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowNum)
				f.SetCellValue(sheetName, cell, value)
			}
			rowNum++
		}
	}

	if len(result.Groups) > 0 {
		for _, group := range result.Groups {
			cell, _ := excelize.CoordinatesToCellName(1, rowNum)
			f.SetCellValue(sheetName, cell, fmt.Sprintf("%s (%d)", group.Key, group.Count))
			f.SetCellStyle(sheetName, cell, cell, groupStyle)
			rowNum++
			writeHeaderRow()
			writeDataRows(group.Rows)
			rowNum++
		}
	} else {
		writeHeaderRow()
		writeDataRows(result.Rows)
	}

	if len(result.Summary) > 0 {
		rowNum += 2
		summaryStyle, _ := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{
				Bold: true,
			},
			Fill: excelize.Fill{
				Type:    "pattern",
				Color:   []string{"#E7E6E6"},
				Pattern: 1,
			},
		})

		cell, _ := excelize.CoordinatesToCellName(1, rowNum)
		f.SetCellValue(sheetName, cell, "Summary")
		f.SetCellStyle(sheetName, cell, cell, summaryStyle)

		rowNum++
		for key, value := range result.Summary {
			keyCell, _ := excelize.CoordinatesToCellName(1, rowNum)
			valueCell, _ := excelize.CoordinatesToCellName(2, rowNum)
			f.SetCellValue(sheetName, keyCell, key)
			f.SetCellValue(sheetName, valueCell, value)
			rowNum++
		}
	}

	f.DeleteSheet("Sheet1")
	return f, nil
}

// createViewCSV generates a CSV document from a view result.
func createViewCSV(result *ViewResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	labels := make([]string, len(result.Headers))
	for i, header := range result.Headers {
		labels[i] = header.Label
	}

	if len(result.Groups) > 0 {
		for _, group := range result.Groups {
			writer.Write([]string{fmt.Sprintf("%s (%d)", group.Key, group.Count)})
			writer.Write(labels)
			for _, row := range group.Rows {
				writer.Write(row)
			}
			writer.Write([]string{})
		}
	} else {
		writer.Write(labels)
		for _, row := range result.Rows {
			writer.Write(row)
		}
	}

	if len(result.Summary) > 0 {
		writer.Write([]string{})
		writer.Write([]string{"Summary"})
		for key, value := range result.Summary {
			writer.Write([]string{key, fmt.Sprintf("%v", value)})
		}
	}

	writer.Flush()
	return buf.Bytes(), writer.Error()
}

// sanitizeFilename replaces characters that are unsafe in download names.
func sanitizeFilename(filename string) string {
	replacements := map[rune]rune{
		'/':  '_',
		'\\': '_',
		':':  '_',
		'*':  '_',
		'?':  '_',
		'"':  '_',
		'<':  '_',
		'>':  '_',
		'|':  '_',
		' ':  '_',
	}

	result := []rune{}
	for _, char := range filename {
		if replacement, exists := replacements[char]; exists {
			result = append(result, replacement)
		} else {
			result = append(result, char)
		}
	}
	return string(result)
}

func columnIndexToLetter(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+(col%26))) + result
		col /= 26
	}
	return result
}
