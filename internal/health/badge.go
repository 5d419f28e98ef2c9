package health

import "fmt"

// Band is the qualitative label printed next to a score.
type Band struct {
	Label       string
	Description string
	Color       string
}

// BandFor returns the band for a score. Thresholds match GradeFor.
func BandFor(score int) Band {
	switch {
	case score >= 85:
		return Band{"Excellent", "Minimal risk, well-structured codebase.", "brightgreen"}
	case score >= 70:
		return Band{"Good", "Some issues present, manageable with planned improvements.", "yellow"}
	case score >= 50:
		return Band{"Fair", "Multiple risks detected; remediation recommended.", "orange"}
	default:
		return Band{"Poor", "High-risk codebase; immediate action required.", "red"}
	}
}

// BadgeURL returns a shields.io badge for the score.
func BadgeURL(score int) string {
	return fmt.Sprintf("https://img.shields.io/badge/Repo%%20Health-%d%%25-%s", score, BandFor(score).Color)
}
