// Package academic derives group attributes from the academic calendar.
package academic

import "github.com/noah-isme/campus-registry/internal/models"

// Accepted bounds for group enrollment year and programme duration.
const (
	MinEnrollmentYear = 2018
	MaxEnrollmentYear = 2042
	MinDuration       = 2
	MaxDuration       = 6
)

// Calendar computes course and status relative to the current academic year.
type Calendar struct {
	CurrentYear int
}

// NewCalendar returns a calendar anchored at the given academic year.
func NewCalendar(currentYear int) Calendar {
	return Calendar{CurrentYear: currentYear}
}

// Course returns the year of study for a group enrolled in year with the
// given duration, clamped to [1, duration].
func (c Calendar) Course(year, duration int) int {
	course := c.rawCourse(year)
	if course < 1 {
		return 1
	}
	if course > duration {
		return duration
	}
	return course
}

// Status reports whether the group is still studying or has graduated.
func (c Calendar) Status(year, duration int) string {
	if c.Graduated(year, duration) {
		return models.GroupStatusGraduated
	}
	return models.GroupStatusActive
}

// Graduated is true when the unclamped course exceeds the duration.
func (c Calendar) Graduated(year, duration int) bool {
	return c.rawCourse(year) > duration
}

// Apply recomputes the derived fields of group in place.
func (c Calendar) Apply(group *models.Group) {
	group.Course = c.Course(group.Year, group.Duration)
	group.Status = c.Status(group.Year, group.Duration)
}

func (c Calendar) rawCourse(year int) int {
	return c.CurrentYear - year + 1
}
