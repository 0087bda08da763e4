package report

import (
	"archive/zip"
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/qhuube/vatreport/internal/core"
)

// MIME types of the produced artifacts.
const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF  = "application/pdf"
	ContentTypeZIP  = "application/zip"
)

// Artifact is one generated file ready for download or attachment.
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
}

// BaseName strips the extension from an uploaded file name for use in
// artifact names.
func BaseName(fileName string) string {
	base := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	if base == "" {
		return "report"
	}
	return base
}

// Bundle builds the four report artifacts for an enriched report and packs
// them into a single ZIP named after the uploaded file.
func Bundle(fileName string, rep *core.Report, labels map[string]string) (Artifact, error) {
	base := BaseName(fileName)

	reportXLSX, err := VATReportWorkbook(rep, labels)
	if err != nil {
		return Artifact{}, fmt.Errorf("build vat report workbook: %w", err)
	}
	summaryXLSX, err := SummaryWorkbook(rep)
	if err != nil {
		return Artifact{}, fmt.Errorf("build summary workbook: %w", err)
	}
	reportPDF, err := VATReportPDF(rep, labels)
	if err != nil {
		return Artifact{}, fmt.Errorf("build vat report pdf: %w", err)
	}
	summaryPDF, err := SummaryPDF(rep)
	if err != nil {
		return Artifact{}, fmt.Errorf("build summary pdf: %w", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	entries := []Artifact{
		{Name: base + "_VAT_Report.xlsx", ContentType: ContentTypeXLSX, Data: reportXLSX},
		{Name: base + "_Summary.xlsx", ContentType: ContentTypeXLSX, Data: summaryXLSX},
		{Name: base + "_VAT_Report.pdf", ContentType: ContentTypePDF, Data: reportPDF},
		{Name: base + "_Summary.pdf", ContentType: ContentTypePDF, Data: summaryPDF},
	}
	for _, entry := range entries {
		w, err := zw.Create(entry.Name)
		if err != nil {
			return Artifact{}, fmt.Errorf("add %s to bundle: %w", entry.Name, err)
		}
		if _, err := w.Write(entry.Data); err != nil {
			return Artifact{}, fmt.Errorf("write %s to bundle: %w", entry.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return Artifact{}, fmt.Errorf("finish bundle: %w", err)
	}

	return Artifact{
		Name:        base + "_VAT_Reports.zip",
		ContentType: ContentTypeZIP,
		Data:        buf.Bytes(),
	}, nil
}
