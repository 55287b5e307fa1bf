// Package priority holds the deterministic orderings used when collapsing
// duplicate teams and sorting award groups for display.
package priority

import "regexp"

// Grade priorities, highest first. Sorting teams ascending by this value
// and taking the last entry yields the College record when a number is
// shared across divisions.
var gradeOrder = map[string]int{
	"College":           4,
	"High School":       3,
	"Middle School":     2,
	"Elementary School": 1,
}

// Grade returns the tie-break priority of a competition grade.
// Unknown grades rank lowest.
func Grade(grade string) int {
	return gradeOrder[grade]
}

// Award name patterns, most prestigious first.
var awardOrder = []*regexp.Regexp{
	regexp.MustCompile(`^World`),
	regexp.MustCompile(`^Division`),
	regexp.MustCompile(`^Tournament`),
	regexp.MustCompile(`^Robot Skills`),
	regexp.MustCompile(`Award$`),
}

// Award returns a sort weight for an award name; higher means more
// prestigious. Names matching no pattern weigh zero.
func Award(name string) int {
	for i, pattern := range awardOrder {
		if pattern.MatchString(name) {
			return len(awardOrder) - i
		}
	}
	return 0
}
