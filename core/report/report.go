// Package report derives display statistics (grades, attendance percentages,
// pending work) from academic records. Everything in this file is a pure
// function: inputs are never mutated and identical inputs always produce
// identical outputs.
package report

import (
	"time"

	"github.com/shulehq/shule/core/assignment"
	"github.com/shulehq/shule/core/record"
)

// Letter grades.
const (
	GradeA  Grade = "A"
	GradeB  Grade = "B"
	GradeC  Grade = "C"
	GradeD  Grade = "D"
	GradeF  Grade = "F"
	GradeNA Grade = "N/A" // no marks present
)

type Grade string

// ResultEntry is a single exam-type cell in a student's result row.
type ResultEntry struct {
	Marks float64    `json:"marks"`
	Date  *time.Time `json:"date,omitempty"`
}

// GradeFor maps the arithmetic mean of the present marks to a letter grade.
// Missing exam types are excluded from the mean, not treated as zero.
func GradeFor(marks map[record.ExamType]float64) Grade {
	if len(marks) == 0 {
		return GradeNA
	}
	var sum float64
	for _, m := range marks {
		sum += m
	}
	avg := sum / float64(len(marks))
	switch {
	case avg >= 90:
		return GradeA
	case avg >= 80:
		return GradeB
	case avg >= 70:
		return GradeC
	case avg >= 60:
		return GradeD
	}
	return GradeF
}

// ResultsByExamType folds a student's results into one entry per exam type;
// when duplicates exist the later row wins.
func ResultsByExamType(results []record.Result) map[record.ExamType]ResultEntry {
	entries := make(map[record.ExamType]ResultEntry, len(record.AllExamTypes))
	for _, res := range results {
		entries[res.ExamType] = ResultEntry{Marks: res.Marks, Date: res.Date}
	}
	return entries
}

// GradeForResults is GradeFor over a raw result slice.
func GradeForResults(results []record.Result) Grade {
	entries := ResultsByExamType(results)
	marks := make(map[record.ExamType]float64, len(entries))
	for et, entry := range entries {
		marks[et] = entry.Marks
	}
	return GradeFor(marks)
}

// AttendancePercent returns 100 * present / total, or 0 for no records.
func AttendancePercent(records []record.Attendance) float64 {
	if len(records) == 0 {
		return 0
	}
	var present int
	for _, att := range records {
		if att.Status == record.StatusPresent {
			present++
		}
	}
	return 100 * float64(present) / float64(len(records))
}

// PendingAssignments returns the IDs of assignments the student has not
// submitted to. Computed as a set difference so input ordering is irrelevant.
func PendingAssignments(assignments []assignment.Assignment, submissions []assignment.Submission) []string {
	submitted := make(map[string]struct{}, len(submissions))
	for _, sub := range submissions {
		submitted[sub.AssignmentID] = struct{}{}
	}
	var pending []string
	for _, asg := range assignments {
		if _, ok := submitted[asg.ID]; !ok {
			pending = append(pending, asg.ID)
		}
	}
	return pending
}

// EnrollmentCount counts distinct students with at least one attendance
// record. There is no enrollment entity; attendance history is a known-weak
// proxy for it.
func EnrollmentCount(records []record.Attendance) int {
	students := make(map[string]struct{}, len(records))
	for _, att := range records {
		students[att.StudentID] = struct{}{}
	}
	return len(students)
}

// Averages splits results into internals (CA-I, CA-II) and finals (MSE) and
// returns the mean of each plus the overall average, which is the mean of the
// two category averages (0 when both are 0).
func Averages(results []record.Result) (avgInternal, avgFinal, overall float64) {
	var internalSum, finalSum float64
	var internalCnt, finalCnt int
	for _, res := range results {
		if res.ExamType.IsInternal() {
			internalSum += res.Marks
			internalCnt++
		} else {
			finalSum += res.Marks
			finalCnt++
		}
	}
	if internalCnt > 0 {
		avgInternal = internalSum / float64(internalCnt)
	}
	if finalCnt > 0 {
		avgFinal = finalSum / float64(finalCnt)
	}
	if avgInternal+avgFinal > 0 {
		overall = (avgInternal + avgFinal) / 2
	}
	return avgInternal, avgFinal, overall
}

// MeanMarks is the plain mean over all result rows (profile page stat).
func MeanMarks(results []record.Result) float64 {
	if len(results) == 0 {
		return 0
	}
	var sum float64
	for _, res := range results {
		sum += res.Marks
	}
	return sum / float64(len(results))
}
