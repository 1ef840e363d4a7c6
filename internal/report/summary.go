package report

import (
	"fmt"
	"strings"

	"ranked-progress/internal/domain"
)

const (
	header     = "**📊 Ranked Progress Update (All Players)**"
	markPass   = "✅"
	markFail   = "❌"
	dateLayout = "2006-01-02"
)

// Format renders results in the order given.
func Format(results []domain.AggregateResult) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteByte('\n')

	for _, r := range results {
		fmt.Fprintf(&b, "**%s** – %d games – %s\n", r.Player.String(), r.Total, r.Status)
		if r.Failed() {
			continue
		}

		for _, bc := range r.Buckets {
			fmt.Fprintf(&b, "• %s: %d/%d %s\n", bc.Bucket.Name, bc.Count, bc.Bucket.Requirement, mark(bc.Met))
		}
		if r.TotalRequirement > 0 {
			fmt.Fprintf(&b, "• Total: %d/%d %s\n", r.Total, r.TotalRequirement, mark(r.TotalMet))
		}
		if len(r.Buckets) == 1 && !r.FirstMatch.IsZero() {
			fmt.Fprintf(&b, "• %s → %s\n", r.FirstMatch.Format(dateLayout), r.LastMatch.Format(dateLayout))
		}
	}

	return b.String()
}

func mark(ok bool) string {
	if ok {
		return markPass
	}
	return markFail
}
