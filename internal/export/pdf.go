package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/rotisserie/eris"
)

const (
	pdfMargin    = 15.0
	pdfLineH     = 6.0
	pdfSectionH  = 8.0
	pdfBodyWidth = 180.0
)

// RenderPDF renders the policy report. Hangul text needs a UTF-8 TTF font
// configured via export.font_path; without one the built-in core fonts are
// used and non-Latin characters will not render.
func (e *Exporter) RenderPDF(pkg *Package) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)

	family := "Helvetica"
	if e.fontPath != "" {
		family = "report"
		pdf.AddUTF8Font(family, "", e.fontPath)
		pdf.AddUTF8Font(family, "B", e.fontPath)
	}

	pdf.AddPage()

	pdf.SetFont(family, "B", 18)
	pdf.MultiCell(pdfBodyWidth, 10, pkg.Policy.Title, "", "C", false)
	pdf.Ln(4)

	pdf.SetFont(family, "", 11)
	meta := [][2]string{
		{"카테고리", pkg.Policy.Category},
		{"대상", string(pkg.Policy.TargetAudience)},
		{"상태", string(pkg.Policy.Status)},
		{"생성일", pkg.Policy.CreatedAt.Format("2006-01-02 15:04")},
	}
	for _, row := range meta {
		pdf.SetFont(family, "B", 11)
		pdf.CellFormat(35, pdfLineH, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont(family, "", 11)
		pdf.MultiCell(pdfBodyWidth-35, pdfLineH, row[1], "", "L", false)
	}
	pdf.Ln(4)

	writeSection(pdf, family, "정책 설명")
	pdf.MultiCell(pdfBodyWidth, pdfLineH, pkg.Policy.Description, "", "L", false)
	pdf.Ln(2)

	if plan := pkg.Plan(); plan != nil {
		writeSection(pdf, family, "정책 기획")
		if obj := plan.PolicyPlanning.Objective; obj != "" {
			pdf.MultiCell(pdfBodyWidth, pdfLineH, obj, "", "L", false)
		}
		writeBullets(pdf, family, plan.PolicyPlanning.KeyStrategies)
		pdf.Ln(2)

		if len(plan.ExecutionPlan.ActionItems) > 0 {
			writeSection(pdf, family, "실행 계획")
			for i, item := range plan.ExecutionPlan.ActionItems {
				line := fmt.Sprintf("%d. [%s] %s", i+1, item.Phase, item.Action)
				if item.Timeline != "" {
					line += " (" + item.Timeline + ")"
				}
				pdf.MultiCell(pdfBodyWidth, pdfLineH, line, "", "L", false)
			}
			pdf.Ln(2)
		}

		if len(plan.CommunicationStrategy.KeyMessages) > 0 {
			writeSection(pdf, family, "핵심 메시지")
			writeBullets(pdf, family, plan.CommunicationStrategy.KeyMessages)
			pdf.Ln(2)
		}

		if len(plan.PerformanceMetrics.KPIFramework) > 0 {
			writeSection(pdf, family, "성과 지표")
			var names []string
			for _, kpi := range plan.PerformanceMetrics.KPIFramework {
				names = append(names, kpi.Metric)
			}
			pdf.MultiCell(pdfBodyWidth, pdfLineH, strings.Join(names, ", "), "", "L", false)
			pdf.Ln(2)
		}
	}

	writeSection(pdf, family, "첨부")
	pdf.MultiCell(pdfBodyWidth, pdfLineH,
		fmt.Sprintf("생성 이미지 %d건, 영상 프롬프트 세트 %d건", len(pkg.Images), len(pkg.VideoPrompts)),
		"", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, eris.Wrap(err, "export: render pdf")
	}
	return buf.Bytes(), nil
}

func writeSection(pdf *fpdf.Fpdf, family, title string) {
	pdf.SetFont(family, "B", 13)
	pdf.CellFormat(pdfBodyWidth, pdfSectionH, title, "", 1, "L", false, 0, "")
	pdf.SetFont(family, "", 11)
}

func writeBullets(pdf *fpdf.Fpdf, family string, items []string) {
	pdf.SetFont(family, "", 11)
	for _, it := range items {
		pdf.MultiCell(pdfBodyWidth, pdfLineH, "- "+it, "", "L", false)
	}
}
