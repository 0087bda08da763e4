package mail

import (
	"fmt"
	"html"
	"strings"

	"github.com/qhuube/vatreport/internal/core"
	"github.com/qhuube/vatreport/internal/report"
	"github.com/qhuube/vatreport/internal/schema"
)

// ReportMessage builds the user-facing email carrying the finished report
// bundle.
func ReportMessage(to, fileName string, bundle report.Artifact) Message {
	text := fmt.Sprintf(
		"Hello,\n\nThe VAT report for %s is attached as a ZIP archive.\n"+
			"It contains the enriched report and the per-country summary, each as a spreadsheet and a PDF.\n",
		fileName)
	htmlBody := fmt.Sprintf(
		"<p>Hello,</p><p>The VAT report for <strong>%s</strong> is attached as a ZIP archive.</p>"+
			"<p>It contains the enriched report and the per-country summary, each as a spreadsheet and a PDF.</p>",
		html.EscapeString(fileName))

	return Message{
		To:          to,
		Subject:     fmt.Sprintf("VAT report for %s", fileName),
		HTMLBody:    htmlBody,
		TextBody:    text,
		Attachments: []report.Artifact{bundle},
	}
}

// ManualReviewMessage builds the admin notification for a batch that was
// blocked because some rows matched no VAT rule. The body lists each
// affected row with its product type and country, and the workbook with the
// full table is attached.
func ManualReviewMessage(to, fileName string, set *core.ManualReviewSet, workbook report.Artifact) Message {
	t := set.Table
	productCol := t.ColumnIndex(schema.FieldProductType)
	countryCol := t.ColumnIndex(schema.FieldCountry)

	var lines []string
	for _, idx := range set.Indexes {
		lines = append(lines, fmt.Sprintf("Row %d: product type %q, country %q",
			core.DisplayRow(idx), t.Cell(idx, productCol), t.Cell(idx, countryCol)))
	}
	detail := strings.Join(lines, "\n")

	text := fmt.Sprintf(
		"The upload %s was blocked: %d of %d rows matched no VAT rule and need manual review.\n\n%s\n",
		fileName, set.Count(), len(t.Rows), detail)

	var htmlLines strings.Builder
	for _, line := range lines {
		htmlLines.WriteString("<li>" + html.EscapeString(line) + "</li>")
	}
	htmlBody := fmt.Sprintf(
		"<p>The upload <strong>%s</strong> was blocked: %d of %d rows matched no VAT rule and need manual review.</p><ul>%s</ul>",
		html.EscapeString(fileName), set.Count(), len(t.Rows), htmlLines.String())

	return Message{
		To:          to,
		Subject:     fmt.Sprintf("Manual review required: %s", fileName),
		HTMLBody:    htmlBody,
		TextBody:    text,
		Attachments: []report.Artifact{workbook},
	}
}

// QuarterIssuesMessage builds the admin digest for order dates outside the
// accepted quarter, with the highlighted workbook and the original upload
// attached.
func QuarterIssuesMessage(to, fileName string, issue *core.Issue, attachments []report.Artifact) Message {
	var lines []string
	for _, v := range issue.Quarter {
		lines = append(lines, fmt.Sprintf("Row %d: %s (%s)", v.Row, v.Value, v.Reason))
	}
	detail := strings.Join(lines, "\n")

	text := fmt.Sprintf(
		"The upload %s contains %d order dates outside the accepted previous quarter.\n\n%s\n",
		fileName, issue.Count, detail)

	var htmlLines strings.Builder
	for _, line := range lines {
		htmlLines.WriteString("<li>" + html.EscapeString(line) + "</li>")
	}
	htmlBody := fmt.Sprintf(
		"<p>The upload <strong>%s</strong> contains %d order dates outside the accepted previous quarter.</p><ul>%s</ul>",
		html.EscapeString(fileName), issue.Count, htmlLines.String())

	return Message{
		To:          to,
		Subject:     fmt.Sprintf("Quarter date issues in %s", fileName),
		HTMLBody:    htmlBody,
		TextBody:    text,
		Attachments: attachments,
	}
}
