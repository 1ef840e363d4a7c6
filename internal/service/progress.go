package service

import (
	"fmt"
	"strings"

	"ranked-progress/internal/domain"
)

const (
	StatusComplete = "✅ Completed"
	StatusError    = "❌ Error"
	statusMissing  = "❌ "
)

type Progress struct {
	Buckets          []domain.BucketCount
	Total            int
	TotalRequirement int
	TotalMet         bool
	Complete         bool
	Status           string
}

// Evaluate checks counts (aligned with buckets) against each bucket's
// requirement and the overall total requirement. A zero requirement is
// always met.
func Evaluate(counts []int, buckets []domain.Bucket, totalRequirement int) Progress {
	p := Progress{
		Buckets:          make([]domain.BucketCount, len(buckets)),
		TotalRequirement: totalRequirement,
		Complete:         true,
	}

	var missing []string
	for i, b := range buckets {
		count := 0
		if i < len(counts) {
			count = counts[i]
		}
		p.Total += count

		met := count >= b.Requirement
		p.Buckets[i] = domain.BucketCount{Bucket: b, Count: count, Met: met}
		if !met {
			p.Complete = false
			missing = append(missing, shortfall(b.Name, b.Requirement, count, len(buckets) == 1 && totalRequirement == 0))
		}
	}

	p.TotalMet = p.Total >= totalRequirement
	if !p.TotalMet {
		p.Complete = false
		missing = append(missing, shortfall("Total", totalRequirement, p.Total, false))
	}

	if p.Complete {
		p.Status = StatusComplete
	} else {
		p.Status = statusMissing + strings.Join(missing, ", ")
	}
	return p
}

func shortfall(label string, requirement, actual int, bare bool) string {
	n := max(requirement-actual, 0)
	if bare {
		return fmt.Sprintf("missing %d", n)
	}
	return fmt.Sprintf("%s: missing %d", label, n)
}
