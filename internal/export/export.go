package export

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Format selects the rendering backend for an export download.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

var ErrInvalidFormat = errors.New("invalid_format")

func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatCSV, "":
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	case FormatPDF:
		return FormatPDF, nil
	}
	return "", ErrInvalidFormat
}

// Column maps a row key to a rendered header. Width only matters for
// the XLSX and PDF backends.
type Column struct {
	Key    string
	Header string
	Width  float64
}

type Row map[string]any

type Result struct {
	ContentType string
	Filename    string
	Data        []byte
}

// Generate renders rows with the given column layout in the requested
// format. The entity name becomes the download filename.
func Generate(format Format, entity string, columns []Column, rows []Row) (Result, error) {
	switch format {
	case FormatCSV:
		data, err := generateCSV(columns, rows)
		if err != nil {
			return Result{}, err
		}
		return Result{
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("%s_export.csv", entity),
			Data:        data,
		}, nil
	case FormatXLSX:
		data, err := generateXLSX(entity, columns, rows)
		if err != nil {
			return Result{}, err
		}
		return Result{
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Filename:    fmt.Sprintf("%s_export.xlsx", entity),
			Data:        data,
		}, nil
	case FormatPDF:
		data, err := generatePDF(entity, columns, rows)
		if err != nil {
			return Result{}, err
		}
		return Result{
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("%s_export.pdf", entity),
			Data:        data,
		}, nil
	}
	return Result{}, ErrInvalidFormat
}

func formatCell(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case *string:
		if v == nil {
			return ""
		}
		return *v
	case bool:
		if v {
			return "Sim"
		}
		return "Não"
	case time.Time:
		return v.Format("2006-01-02 15:04:05")
	case *time.Time:
		if v == nil {
			return ""
		}
		return v.Format("2006-01-02 15:04:05")
	case float64:
		return strconv.FormatFloat(v, 'f', 2, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', 2, 32)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
