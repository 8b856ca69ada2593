// Package handler: export.go implements GET /export.
// Returns every tracked and logbook flight as a flat table.
// Supports ?format=json (default), ?format=csv and ?format=xlsx.
package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/pkordes/flightlog/internal/domain"
)

const (
	formatJSON = "json"
	formatCSV  = "csv"
	formatXLSX = "xlsx"

	xlsxSheet       = "Flights"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// exportHeaders defines the column names written as the first row of CSV and
// XLSX exports.
var exportHeaders = []string{
	"source", "id", "airline", "flight_number", "date", "tail_number",
	"aircraft_type", "age_years", "route", "status", "error",
}

// ExportRow is the JSON view of a domain.ExportRow.
// Empty strings are omitted.
type ExportRow struct {
	Source       string   `json:"source"`
	ID           string   `json:"id"`
	Airline      string   `json:"airline,omitempty"`
	FlightNumber string   `json:"flightNumber"`
	Date         string   `json:"date,omitempty"`
	TailNumber   string   `json:"tailNumber,omitempty"`
	AircraftType string   `json:"aircraftType,omitempty"`
	AgeYears     *float64 `json:"ageYears,omitempty"`
	Route        string   `json:"route,omitempty"`
	Status       string   `json:"status,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// GetExport handles GET /export.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = formatJSON
	}
	if format != formatJSON && format != formatCSV && format != formatXLSX {
		writeError(w, http.StatusUnprocessableEntity, codeValidation, "format must be one of json, csv, xlsx")
		return
	}

	rows, err := s.export.Export(r.Context())
	if err != nil {
		writeInternal(w, r, err)
		return
	}

	switch format {
	case formatCSV:
		writeBody(w, "text/csv", "flights.csv", buildCSV(rows))
	case formatXLSX:
		body, err := buildXLSX(rows)
		if err != nil {
			writeInternal(w, r, err)
			return
		}
		writeBody(w, xlsxContentType, "flights.xlsx", body)
	default:
		out := make([]ExportRow, len(rows))
		for i, row := range rows {
			out[i] = ExportRow(row)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func writeBody(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// buildCSV encodes rows as CSV with a header line.
func buildCSV(rows []domain.ExportRow) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	w.Write(exportHeaders)
	for _, r := range rows {
		//nolint:errcheck
		w.Write(rowToRecord(r))
	}
	w.Flush()
	return buf.Bytes()
}

// buildXLSX writes rows to a single "Flights" sheet. Age is stored as a
// number with one decimal so spreadsheets can sort and sum it.
func buildXLSX(rows []domain.ExportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return nil, fmt.Errorf("handler.buildXLSX: rename sheet: %w", err)
	}

	header := make([]any, len(exportHeaders))
	for i, h := range exportHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("handler.buildXLSX: header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("handler.buildXLSX: %w", err)
		}
		values := make([]any, 0, len(exportHeaders))
		for j, v := range rowToRecord(r) {
			if j == ageColumn && r.AgeYears != nil {
				values = append(values, *r.AgeYears)
				continue
			}
			values = append(values, v)
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("handler.buildXLSX: row %d: %w", i+2, err)
		}
	}

	if len(rows) > 0 {
		numFmt := "0.0"
		style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
		if err != nil {
			return nil, fmt.Errorf("handler.buildXLSX: style: %w", err)
		}
		col, err := excelize.ColumnNumberToName(ageColumn + 1)
		if err != nil {
			return nil, fmt.Errorf("handler.buildXLSX: %w", err)
		}
		last := fmt.Sprintf("%s%d", col, len(rows)+1)
		if err := f.SetCellStyle(xlsxSheet, col+"2", last, style); err != nil {
			return nil, fmt.Errorf("handler.buildXLSX: age style: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("handler.buildXLSX: write: %w", err)
	}
	return buf.Bytes(), nil
}

// ageColumn is the zero-based index of age_years in exportHeaders.
const ageColumn = 7

// rowToRecord encodes a domain.ExportRow as a flat string slice.
// A nil age is an empty cell.
func rowToRecord(r domain.ExportRow) []string {
	age := ""
	if r.AgeYears != nil {
		age = strconv.FormatFloat(*r.AgeYears, 'f', 1, 64)
	}
	return []string{
		r.Source,
		r.ID,
		r.Airline,
		r.FlightNumber,
		r.Date,
		r.TailNumber,
		r.AircraftType,
		age,
		r.Route,
		r.Status,
		r.Error,
	}
}
