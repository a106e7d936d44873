package stubserver

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/chemviz/chemviz/internal/model"
)

// BuildReport renders the latest summary as a single-page PDF. With no
// uploads it still returns a valid PDF carrying a notice, mirroring the
// backend contract (the report endpoint never answers with JSON).
func BuildReport(rec *model.UploadRecord) []byte {
	lines := []string{"CSV Report", ""}

	if rec == nil {
		lines = append(lines, "No uploads yet.")
		return renderPDF(lines)
	}

	s := rec.Summary
	lines = append(lines,
		fmt.Sprintf("Latest file: %s", rec.Filename),
		fmt.Sprintf("Uploaded at: %s", rec.UploadedAt.Format("2006-01-02 15:04:05 MST")),
		"",
		"Latest Summary",
		fmt.Sprintf("Total equipment: %s", model.FormatMetric(s.TotalEquipment)),
		fmt.Sprintf("Avg flowrate: %s", model.FormatMetric(s.AvgFlowrate)),
		fmt.Sprintf("Avg pressure: %s", model.FormatMetric(s.AvgPressure)),
		fmt.Sprintf("Avg temperature: %s", model.FormatMetric(s.AvgTemperature)),
		"",
		"Type Distribution",
	)

	if len(s.TypeDistribution) == 0 {
		lines = append(lines, "No type distribution found.")
	} else {
		types := make([]string, 0, len(s.TypeDistribution))
		for typ := range s.TypeDistribution {
			types = append(types, typ)
		}
		sort.Strings(types)
		for _, typ := range types {
			lines = append(lines, fmt.Sprintf("  %s: %d", typ, s.TypeDistribution[typ]))
		}
	}

	return renderPDF(lines)
}

// renderPDF assembles a one-page A4 PDF with the given text lines in
// Helvetica. Offsets in the xref table are computed from the actual byte
// positions, so the output is well-formed for strict readers.
func renderPDF(lines []string) []byte {
	var content bytes.Buffer
	content.WriteString("BT\n/F1 12 Tf\n16 TL\n50 780 Td\n")
	for i, line := range lines {
		if i > 0 {
			content.WriteString("T*\n")
		}
		fmt.Fprintf(&content, "(%s) Tj\n", escapePDFText(line))
	}
	content.WriteString("ET\n")

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", content.Len(), content.String()),
	}

	var out bytes.Buffer
	out.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = out.Len()
		fmt.Fprintf(&out, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xrefStart := out.Len()
	fmt.Fprintf(&out, "xref\n0 %d\n", len(objects)+1)
	out.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&out, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&out, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xrefStart)

	return out.Bytes()
}

func escapePDFText(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return replacer.Replace(s)
}
