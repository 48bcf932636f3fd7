package candidates

import "github.com/jonathan/hr-console/internal/types"

// MaxSkillBadges is how many skills are listed before the rest are
// summarised as "+N more".
const MaxSkillBadges = 7

// DateLayout is the display layout for creation dates.
const DateLayout = "Jan 2, 2006"

// FormatDate renders a candidate's creation time for display.
func FormatDate(c types.Candidate) string {
	if c.CreatedAt == "" {
		return "Date not available"
	}
	t, ok := c.Created()
	if !ok {
		return "Invalid date"
	}
	return t.Format(DateLayout)
}

// SkillBadges returns the first MaxSkillBadges combined skills and how many
// more there are.
func SkillBadges(c types.Candidate) ([]string, int) {
	skills := c.Skills()
	if len(skills) <= MaxSkillBadges {
		return skills, 0
	}
	return skills[:MaxSkillBadges], len(skills) - MaxSkillBadges
}
