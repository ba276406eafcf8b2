package plans

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/jung-kurt/gofpdf"
)

// A4 portrait layout in millimeters.
const (
	pageWidth    = 210.0
	marginLeft   = 20.0
	marginTop    = 20.0
	marginRight  = 20.0
	marginBottom = 20.0
	contentWidth = pageWidth - marginLeft - marginRight
)

type lineClass int

const (
	lineBody lineClass = iota
	lineHeading
	lineSubheading
	lineBullet
	lineNumbered
)

var (
	headingKeywords = []string{"Semaine", "Module", "Étape", "Phase", "Partie", "Chapitre", "Jour", "Objectif"}
	reNumberedLine  = regexp.MustCompile(`^\d+[.)]`)
)

// classifyLine decides which visual style a plan line gets. The rules
// mirror how the generator structures its output: section keywords and
// short shouted lines are headings, short colon-terminated lines are
// subheadings, the rest follow their list markers.
func classifyLine(line string) lineClass {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return lineBody
	}

	for _, kw := range headingKeywords {
		if strings.HasPrefix(trimmed, kw) {
			return lineHeading
		}
	}
	if len([]rune(trimmed)) < 40 && isAllCaps(trimmed) {
		return lineHeading
	}
	if len([]rune(trimmed)) < 60 && strings.HasSuffix(trimmed, ":") {
		return lineSubheading
	}
	if strings.HasPrefix(trimmed, "•") || strings.HasPrefix(trimmed, "-") || strings.HasPrefix(trimmed, "*") {
		return lineBullet
	}
	if reNumberedLine.MatchString(trimmed) {
		return lineNumbered
	}
	return lineBody
}

// isAllCaps reports whether the line contains at least one letter and
// no lowercase ones.
func isAllCaps(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

// RenderPDF lays a plan out as a printable A4 document and returns the
// bytes along with the suggested download filename.
func RenderPDF(plan *LearningPlan) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(true, marginBottom)
	pdf.AliasNbPages("")

	generated := fmt.Sprintf("Généré par LearnAI - %s", time.Now().Format("02/01/2006"))
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(contentWidth/2, 10, tr(generated), "", 0, "L", false, 0, "")
		pdf.CellFormat(contentWidth/2, 10,
			tr(fmt.Sprintf("Page %d / {nb}", pdf.PageNo())), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()

	// Header band.
	pdf.SetFillColor(254, 198, 161)
	pdf.Rect(0, 0, pageWidth, 50, "F")
	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetTextColor(40, 40, 40)
	pdf.SetXY(marginLeft, 15)
	pdf.CellFormat(contentWidth, 10, tr("Plan d'apprentissage personnalisé"), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 13)
	pdf.SetX(marginLeft)
	pdf.CellFormat(contentWidth, 8, tr(plan.Subject), "", 1, "C", false, 0, "")

	// Profile panel.
	pdf.SetY(58)
	pdf.SetFillColor(245, 245, 245)
	info := []string{
		fmt.Sprintf("Âge: %s ans", plan.Age),
		fmt.Sprintf("Niveau: %s", SchoolLevelLabel(plan.SchoolLevel)),
	}
	if plan.AverageGrade != "" {
		info = append(info, fmt.Sprintf("Moyenne: %s/20", plan.AverageGrade))
	}
	if plan.LearningDifficulties != "" {
		info = append(info, fmt.Sprintf("Difficultés: %s", plan.LearningDifficulties))
	}
	if plan.SpecificRequests != "" {
		info = append(info, fmt.Sprintf("Demandes: %s", plan.SpecificRequests))
	}
	panelHeight := float64(len(info))*7 + 6
	pdf.Rect(marginLeft, pdf.GetY(), contentWidth, panelHeight, "F")
	pdf.SetY(pdf.GetY() + 3)
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(60, 60, 60)
	for _, row := range info {
		pdf.SetX(marginLeft + 4)
		pdf.CellFormat(contentWidth-8, 7, tr(row), "", 1, "L", false, 0, "")
	}

	// Separator.
	pdf.SetY(pdf.GetY() + 6)
	pdf.SetDrawColor(254, 198, 161)
	pdf.SetLineWidth(0.6)
	pdf.Line(marginLeft, pdf.GetY(), pageWidth-marginRight, pdf.GetY())
	pdf.SetY(pdf.GetY() + 6)

	// Plan body, one styled block per source line. Normalize is
	// idempotent, so rows stored before the pipeline existed render the
	// same as fresh ones.
	for _, raw := range strings.Split(Normalize(plan.GeneratedPlan), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			pdf.Ln(3)
			continue
		}

		switch classifyLine(line) {
		case lineHeading:
			pdf.Ln(3)
			pdf.SetFont("Helvetica", "B", 14)
			pdf.SetTextColor(200, 90, 30)
			writeWrapped(pdf, tr, line, 7)
			pdf.Ln(1)
		case lineSubheading:
			pdf.Ln(2)
			pdf.SetFont("Helvetica", "B", 11)
			pdf.SetTextColor(40, 40, 40)
			writeWrapped(pdf, tr, line, 6)
		case lineBullet:
			pdf.SetFont("Helvetica", "", 10)
			pdf.SetTextColor(60, 60, 60)
			text := "• " + strings.TrimSpace(strings.TrimLeft(line, "•-* "))
			writeIndented(pdf, tr, text, 6, 4)
		case lineNumbered:
			pdf.SetFont("Helvetica", "", 10)
			pdf.SetTextColor(60, 60, 60)
			writeIndented(pdf, tr, line, 6, 4)
		default:
			pdf.SetFont("Helvetica", "", 10)
			pdf.SetTextColor(60, 60, 60)
			writeWrapped(pdf, tr, line, 6)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), pdfFilename(plan.Subject, time.Now()), nil
}

func writeWrapped(pdf *gofpdf.Fpdf, tr func(string) string, text string, height float64) {
	lines := pdf.SplitText(tr(text), contentWidth)
	for _, l := range lines {
		pdf.SetX(marginLeft)
		pdf.CellFormat(contentWidth, height, l, "", 1, "L", false, 0, "")
	}
}

func writeIndented(pdf *gofpdf.Fpdf, tr func(string) string, text string, height, indent float64) {
	lines := pdf.SplitText(tr(text), contentWidth-indent)
	for _, l := range lines {
		pdf.SetX(marginLeft + indent)
		pdf.CellFormat(contentWidth-indent, height, l, "", 1, "L", false, 0, "")
	}
}

var reNonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// pdfFilename builds the suggested download name from the subject and
// the export date, with anything outside ASCII alphanumerics folded to
// underscores.
func pdfFilename(subject string, now time.Time) string {
	s := reNonAlnum.ReplaceAllString(subject, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		s = "plan"
	}
	return fmt.Sprintf("Plan_%s_%s.pdf", s, now.Format("2006-01-02"))
}
