package report

import (
	"math/rand"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/shulehq/shule/core/assignment"
	"github.com/shulehq/shule/core/record"
)

func TestGradeFor(t *testing.T) {
	tests := []struct {
		name  string
		marks map[record.ExamType]float64
		want  Grade
	}{
		{"no marks", nil, GradeNA},
		{"empty map", map[record.ExamType]float64{}, GradeNA},
		{"single A", map[record.ExamType]float64{record.ExamCAI: 95}, GradeA},
		{"boundary A", map[record.ExamType]float64{record.ExamCAI: 90}, GradeA},
		{"just below A", map[record.ExamType]float64{record.ExamCAI: 89.9}, GradeB},
		{"two internals averaging D", map[record.ExamType]float64{record.ExamCAI: 60, record.ExamCAII: 60}, GradeD},
		{"mixed average C", map[record.ExamType]float64{record.ExamCAI: 80, record.ExamMSE: 60}, GradeC},
		{"failing", map[record.ExamType]float64{record.ExamCAI: 59.9}, GradeF},
		{"zero marks", map[record.ExamType]float64{record.ExamMSE: 0}, GradeF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GradeFor(tt.marks); got != tt.want {
				t.Errorf("GradeFor(%v) = %v; want %v", tt.marks, got, tt.want)
			}
		})
	}
}

// Raising any single mark must never lower the grade.
func TestGradeForMonotonic(t *testing.T) {
	rank := map[Grade]int{GradeF: 0, GradeD: 1, GradeC: 2, GradeB: 3, GradeA: 4}
	rnd := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		marks := make(map[record.ExamType]float64)
		for _, et := range record.AllExamTypes {
			if rnd.Intn(2) == 0 {
				marks[et] = rnd.Float64() * 100
			}
		}
		if len(marks) == 0 {
			continue
		}
		before := GradeFor(marks)

		bumped := make(map[record.ExamType]float64, len(marks))
		for et, m := range marks {
			bumped[et] = m
		}
		for et := range bumped {
			bumped[et] += rnd.Float64() * 20
			break
		}
		after := GradeFor(bumped)

		if rank[after] < rank[before] {
			t.Fatalf("grade dropped from %v to %v after raising a mark (marks %v -> %v)", before, after, marks, bumped)
		}
	}
}

func TestAttendancePercent(t *testing.T) {
	present := record.Attendance{Status: record.StatusPresent}
	absent := record.Attendance{Status: record.StatusAbsent}

	tests := []struct {
		name    string
		records []record.Attendance
		want    float64
	}{
		{"no records", nil, 0},
		{"all present", []record.Attendance{present, present}, 100},
		{"all absent", []record.Attendance{absent, absent, absent}, 0},
		{"half", []record.Attendance{present, absent, present, absent}, 50},
		{"one of three", []record.Attendance{present, absent, absent}, 100.0 / 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AttendancePercent(tt.records); got != tt.want {
				t.Errorf("AttendancePercent() = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestPendingAssignments(t *testing.T) {
	asgs := []assignment.Assignment{{ID: "a1"}, {ID: "a2"}, {ID: "a3"}}
	subs := []assignment.Submission{{AssignmentID: "a2"}}

	got := PendingAssignments(asgs, subs)
	want := []string{"a1", "a3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PendingAssignments() = %v; want %v", got, want)
	}

	// submission ordering must not matter
	shuffled := []assignment.Submission{{AssignmentID: "a2"}, {AssignmentID: "a2"}, {AssignmentID: "unknown"}}
	again := PendingAssignments(asgs, shuffled)
	sort.Strings(again)
	if !reflect.DeepEqual(again, want) {
		t.Errorf("PendingAssignments() with shuffled submissions = %v; want %v", again, want)
	}

	if pending := PendingAssignments(nil, subs); pending != nil {
		t.Errorf("PendingAssignments(nil, subs) = %v; want nil", pending)
	}
}

func TestEnrollmentCount(t *testing.T) {
	records := []record.Attendance{
		{StudentID: "s1", CourseID: "c1"},
		{StudentID: "s1", CourseID: "c1"},
		{StudentID: "s2", CourseID: "c1"},
	}
	if got := EnrollmentCount(records); got != 2 {
		t.Errorf("EnrollmentCount() = %d; want 2", got)
	}
	if got := EnrollmentCount(nil); got != 0 {
		t.Errorf("EnrollmentCount(nil) = %d; want 0", got)
	}
}

func TestAverages(t *testing.T) {
	results := []record.Result{
		{ExamType: record.ExamCAI, Marks: 80},
		{ExamType: record.ExamCAII, Marks: 60},
		{ExamType: record.ExamMSE, Marks: 90},
	}
	avgInternal, avgFinal, overall := Averages(results)
	if avgInternal != 70 {
		t.Errorf("avgInternal = %v; want 70", avgInternal)
	}
	if avgFinal != 90 {
		t.Errorf("avgFinal = %v; want 90", avgFinal)
	}
	if overall != 80 {
		t.Errorf("overall = %v; want 80", overall)
	}

	avgInternal, avgFinal, overall = Averages(nil)
	if avgInternal != 0 || avgFinal != 0 || overall != 0 {
		t.Errorf("Averages(nil) = %v, %v, %v; want zeros", avgInternal, avgFinal, overall)
	}
}

func TestResultsByExamTypeLastWins(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	results := []record.Result{
		{ExamType: record.ExamCAI, Marks: 40},
		{ExamType: record.ExamCAI, Marks: 75, Date: &day},
	}
	entries := ResultsByExamType(results)
	if len(entries) != 1 {
		t.Fatalf("got %d entries; want 1", len(entries))
	}
	if entry := entries[record.ExamCAI]; entry.Marks != 75 || entry.Date == nil {
		t.Errorf("entry = %+v; want the later row", entry)
	}
}

// The aggregation functions must not mutate their inputs.
func TestPurity(t *testing.T) {
	results := []record.Result{
		{ExamType: record.ExamCAI, Marks: 50},
		{ExamType: record.ExamMSE, Marks: 70},
	}
	orig := make([]record.Result, len(results))
	copy(orig, results)

	GradeForResults(results)
	Averages(results)
	MeanMarks(results)

	if !reflect.DeepEqual(results, orig) {
		t.Errorf("inputs mutated: %v != %v", results, orig)
	}

	first := GradeForResults(results)
	for i := 0; i < 10; i++ {
		if got := GradeForResults(results); got != first {
			t.Fatalf("GradeForResults not deterministic: %v then %v", first, got)
		}
	}
}
