package course

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	semesterPattern = regexp.MustCompile(`(\d+)(?:st|nd|rd|th)?\s*sem`)
	yearPattern     = regexp.MustCompile(`(\d+)(?:st|nd|rd|th)?\s*year`)
)

// finalLevel sorts behind every numbered year or semester.
const finalLevel = 99

// ParseYearSemester extracts the numeric order of a year_semester label:
// "1st Sem" -> 1, "2nd Year" -> 2, "fy" -> 1, "final year" -> 99.
// The second return is false when the label cannot be ordered.
func ParseYearSemester(yearSemester string) (int, bool) {
	yearSemester = strings.ToLower(strings.TrimSpace(yearSemester))
	if yearSemester == "" {
		return 0, false
	}

	if m := semesterPattern.FindStringSubmatch(yearSemester); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n, true
	}
	if m := yearPattern.FindStringSubmatch(yearSemester); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n, true
	}
	if n, err := strconv.Atoi(yearSemester); err == nil {
		return n, true
	}

	switch yearSemester {
	case "fy":
		return 1, true
	case "sy":
		return 2, true
	case "ty":
		return 3, true
	case "final", "final year":
		return finalLevel, true
	}
	return 0, false
}

// OrderProgression sorts offerings by their parsed year/semester and returns
// the ordered offering names. Offerings whose label cannot be ordered are
// left out.
func OrderProgression(details []CourseDetail) []string {
	type level struct {
		order int
		name  string
	}

	var levels []level
	for _, d := range details {
		if order, ok := ParseYearSemester(d.YearSemester); ok {
			levels = append(levels, level{order: order, name: d.FullName})
		}
	}

	sort.SliceStable(levels, func(i, j int) bool { return levels[i].order < levels[j].order })

	names := make([]string, 0, len(levels))
	for _, l := range levels {
		names = append(names, l.name)
	}
	return names
}
