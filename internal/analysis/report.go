package analysis

import (
	"fmt"
	"strings"

	"github.com/discochess/hotpath/internal/registry"
)

// GenerateReport analyzes rep and renders the full text report: hot path,
// method impact table, recommendations and the detailed metrics dump.
func (a *Analyzer) GenerateReport(rep registry.Report) string {
	return Render(a.Analyze(rep), rep)
}

// Render formats an existing analysis of rep.
func Render(an HotPathAnalysis, rep registry.Report) string {
	var b strings.Builder
	rule := strings.Repeat("-", 40)

	b.WriteString(strings.Repeat("=", 80) + "\n")
	b.WriteString("PERFORMANCE ANALYSIS REPORT\n")
	b.WriteString(strings.Repeat("=", 80) + "\n\n")

	b.WriteString("HOT PATH ANALYSIS\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Hottest method: %s\n", an.HottestMethod)
	fmt.Fprintf(&b, "File I/O time percentage: %.1f%%\n", an.FileIOTimeSharePercent)
	fmt.Fprintf(&b, "String operations time percentage: %.1f%%\n\n", an.StringOpsTimeSharePercent)

	b.WriteString("METHOD IMPACT ANALYSIS\n")
	b.WriteString(rule + "\n")
	for _, m := range an.ImpactsDescending() {
		fmt.Fprintf(&b, "%-30s: %8.2f ms total impact\n", m.Name, m.ImpactMs)
	}
	b.WriteString("\n")

	b.WriteString("OPTIMIZATION RECOMMENDATIONS\n")
	b.WriteString(rule + "\n")
	for _, r := range an.Recommendations {
		b.WriteString(r.String())
		b.WriteString("\n")
	}

	b.WriteString("DETAILED METRICS\n")
	b.WriteString(rule + "\n")
	b.WriteString(rep.String())

	return b.String()
}
