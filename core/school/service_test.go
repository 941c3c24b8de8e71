package school

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"

	"github.com/escolalab/secretaria/core"
)

// fakeDirectory is an in-memory Directory standing in for the remote API.
// It records every mutating call so tests can assert on ordering.
type fakeDirectory struct {
	courses  []Raw
	classes  []Raw
	students []Raw
	teachers []Raw
	grades   []Raw

	calls  []string
	failOn string // method name that fails with errRemote
	nextID int
}

var errRemote = errors.New("remote API down")

func (d *fakeDirectory) call(name string) error {
	d.calls = append(d.calls, name)
	if d.failOn == name {
		return errRemote
	}
	return nil
}

func (d *fakeDirectory) newID(prefix string) string {
	d.nextID++
	return fmt.Sprintf("%s%d", prefix, d.nextID)
}

func (d *fakeDirectory) ListCourses() ([]Raw, error) {
	if d.failOn == "ListCourses" {
		return nil, errRemote
	}
	return d.courses, nil
}

func (d *fakeDirectory) CreateCourse(payload map[string]interface{}) (Raw, error) {
	if err := d.call("CreateCourse"); err != nil {
		return nil, err
	}
	rec := Raw{"id": d.newID("course")}
	for k, v := range payload {
		rec[k] = v
	}
	d.courses = append(d.courses, rec)
	return rec, nil
}

func (d *fakeDirectory) UpdateCourse(id string, payload map[string]interface{}) (Raw, error) {
	if err := d.call("UpdateCourse " + id); err != nil {
		return nil, err
	}
	for _, rec := range d.courses {
		if ResolveID(rec) == id {
			for k, v := range payload {
				rec[k] = v
			}
			return rec, nil
		}
	}
	return nil, errRemote
}

func (d *fakeDirectory) DeleteCourse(id string) error {
	if err := d.call("DeleteCourse " + id); err != nil {
		return err
	}
	d.courses = removeRaw(d.courses, id)
	return nil
}

func (d *fakeDirectory) ListClasses() ([]Raw, error) { return d.classes, nil }

func (d *fakeDirectory) CreateClass(payload map[string]interface{}) (Raw, error) {
	if err := d.call("CreateClass"); err != nil {
		return nil, err
	}
	rec := Raw{"id": d.newID("class")}
	for k, v := range payload {
		rec[k] = v
	}
	d.classes = append(d.classes, rec)
	return rec, nil
}

func (d *fakeDirectory) UpdateClass(id string, payload map[string]interface{}) (Raw, error) {
	if err := d.call("UpdateClass " + id); err != nil {
		return nil, err
	}
	return payload, nil
}

func (d *fakeDirectory) DeleteClass(id string) error {
	if err := d.call("DeleteClass " + id); err != nil {
		return err
	}
	d.classes = removeRaw(d.classes, id)
	return nil
}

func (d *fakeDirectory) ListStudents() ([]Raw, error) { return d.students, nil }

func (d *fakeDirectory) GetStudent(id string) (Raw, error) {
	for _, rec := range d.students {
		if ResolveID(rec) == id {
			return rec, nil
		}
	}
	return nil, errRemote
}

func (d *fakeDirectory) CreateStudent(payload map[string]interface{}) (Raw, error) {
	if err := d.call("CreateStudent"); err != nil {
		return nil, err
	}
	rec := Raw{"id": d.newID("student")}
	for k, v := range payload {
		rec[k] = v
	}
	d.students = append(d.students, rec)
	return rec, nil
}

func (d *fakeDirectory) UpdateStudent(id string, payload map[string]interface{}) (Raw, error) {
	if err := d.call("UpdateStudent " + id); err != nil {
		return nil, err
	}
	for _, rec := range d.students {
		if ResolveID(rec) == id {
			for k, v := range payload {
				rec[k] = v
			}
			return rec, nil
		}
	}
	return nil, errRemote
}

func (d *fakeDirectory) DeleteStudent(id string) error {
	if err := d.call("DeleteStudent " + id); err != nil {
		return err
	}
	d.students = removeRaw(d.students, id)
	return nil
}

func (d *fakeDirectory) ListTeachers() ([]Raw, error) { return d.teachers, nil }

func (d *fakeDirectory) GetTeacher(id string) (Raw, error) {
	for _, rec := range d.teachers {
		if ResolveID(rec) == id {
			return rec, nil
		}
	}
	return nil, errRemote
}

func (d *fakeDirectory) CreateTeacher(payload map[string]interface{}) (Raw, error) {
	if err := d.call("CreateTeacher"); err != nil {
		return nil, err
	}
	rec := Raw{"id": d.newID("teacher")}
	for k, v := range payload {
		rec[k] = v
	}
	d.teachers = append(d.teachers, rec)
	return rec, nil
}

func (d *fakeDirectory) UpdateTeacher(id string, payload map[string]interface{}) (Raw, error) {
	if err := d.call("UpdateTeacher " + id); err != nil {
		return nil, err
	}
	return payload, nil
}

func (d *fakeDirectory) DeleteTeacher(id string) error {
	if err := d.call("DeleteTeacher " + id); err != nil {
		return err
	}
	d.teachers = removeRaw(d.teachers, id)
	return nil
}

func (d *fakeDirectory) ListGrades() ([]Raw, error) { return d.grades, nil }

func (d *fakeDirectory) ListClassGrades(classID string) ([]Raw, error) {
	var out []Raw
	for _, rec := range d.grades {
		if ResolveID(rec["classId"]) == classID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (d *fakeDirectory) CreateGrade(payload map[string]interface{}) (Raw, error) {
	if err := d.call(fmt.Sprintf("CreateGrade %v", payload["type"])); err != nil {
		return nil, err
	}
	rec := Raw{"id": d.newID("grade")}
	for k, v := range payload {
		rec[k] = v
	}
	d.grades = append(d.grades, rec)
	return rec, nil
}

func (d *fakeDirectory) UpdateGrade(id string, payload map[string]interface{}) (Raw, error) {
	if err := d.call(fmt.Sprintf("UpdateGrade %s %v", id, payload["value"])); err != nil {
		return nil, err
	}
	for _, rec := range d.grades {
		if ResolveID(rec) == id {
			for k, v := range payload {
				rec[k] = v
			}
			return rec, nil
		}
	}
	return nil, errRemote
}

func removeRaw(raws []Raw, id string) []Raw {
	out := raws[:0]
	for _, rec := range raws {
		if ResolveID(rec) != id {
			out = append(out, rec)
		}
	}
	return out
}

var _ Directory = (*fakeDirectory)(nil)

func TestServiceCoursesMutationsRefetch(t *testing.T) {
	dir := &fakeDirectory{courses: []Raw{{"id": "c1", "title": "História"}}}
	svc := NewService(dir)

	courses, err := svc.CreateCourse(CourseForm{Title: "Matemática"})
	assert.NoError(t, err)
	assert.Len(t, courses, 2)
	assert.Equal(t, "Matemática", courses[1].Title)

	courses, err = svc.DeleteCourse("c1")
	assert.NoError(t, err)
	assert.Len(t, courses, 1)
	assert.Equal(t, "Matemática", courses[0].Title)
}

func TestServiceStudentsNormalized(t *testing.T) {
	dir := &fakeDirectory{students: []Raw{
		{"id": "s1", "firstName": "Ana", "lastName": "Silva", "classId": "c1"},
		{"_id": "s2", "name": "Bruno Costa", "turma": map[string]interface{}{"id": "c2"}},
		{"id": "s3", "email": "x@example.com"},
	}}
	svc := NewService(dir)

	students, err := svc.Students()
	assert.NoError(t, err)
	assert.Len(t, students, 3)

	assert.Equal(t, "Ana Silva", students[0].FullName)
	assert.Equal(t, "c1", students[0].ClassID.String)

	assert.Equal(t, "s2", students[1].ID)
	assert.Equal(t, "Bruno Costa", students[1].FullName)
	assert.Equal(t, "c2", students[1].ClassID.String)

	// no name data degrades to empty, never errors; the student's own id must
	// not leak into the class reference
	assert.Equal(t, "", students[2].FullName)
	assert.False(t, students[2].ClassID.Valid)
}

func TestServiceClassScores(t *testing.T) {
	dir := &fakeDirectory{
		students: []Raw{
			{"id": "s1", "name": "Ana Silva", "classId": "c1"},
			{"id": "s2", "name": "Bruno Costa", "classId": "c2"},
		},
		grades: []Raw{
			{"id": "g1", "studentId": "s1", "classId": "c1", "assessment": "Prova", "score": float64(8)},
		},
	}
	svc := NewService(dir)

	rows, err := svc.ClassScores("c1")
	assert.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, "Ana Silva", rows[0].Student.FullName)
	assert.Equal(t, 8.0, rows[0].Scores.Exam.Float64)
	assert.False(t, rows[0].Scores.Assignment.Valid)
}

func TestServiceSaveScoresUpdateVsCreate(t *testing.T) {
	dir := &fakeDirectory{
		students: []Raw{{"id": "s1", "name": "Ana Silva", "classId": "c1"}},
		grades: []Raw{
			{"id": "g1", "studentId": "s1", "classId": "c1", "type": "Prova", "value": float64(5)},
		},
	}
	svc := NewService(dir)

	// an existing exam record is updated; the missing assignment record is
	// created, strictly after the exam write
	rows, err := svc.SaveScores("c1", "s1", GradeEntry{
		Exam:       null.Float64From(7),
		Assignment: null.Float64From(9),
	})
	assert.NoError(t, err)
	assert.Equal(t, []string{"UpdateGrade g1 7", "CreateGrade Trabalho"}, dir.calls)

	assert.Len(t, rows, 1)
	assert.Equal(t, 7.0, rows[0].Scores.Exam.Float64)
	assert.Equal(t, 9.0, rows[0].Scores.Assignment.Float64)
}

func TestServiceSaveScoresSkipsEmptySlots(t *testing.T) {
	dir := &fakeDirectory{
		students: []Raw{{"id": "s1", "name": "Ana Silva", "classId": "c1"}},
	}
	svc := NewService(dir)

	rows, err := svc.SaveScores("c1", "s1", GradeEntry{Assignment: null.Float64From(6)})
	assert.NoError(t, err)
	assert.Equal(t, []string{"CreateGrade Trabalho"}, dir.calls)
	assert.False(t, rows[0].Scores.Exam.Valid)
	assert.Equal(t, 6.0, rows[0].Scores.Assignment.Float64)
}

func TestServiceSaveScoresFailurePartway(t *testing.T) {
	dir := &fakeDirectory{
		students: []Raw{{"id": "s1", "name": "Ana Silva", "classId": "c1"}},
		failOn:   "CreateGrade Trabalho",
	}
	svc := NewService(dir)

	_, err := svc.SaveScores("c1", "s1", GradeEntry{
		Exam:       null.Float64From(7),
		Assignment: null.Float64From(9),
	})
	assert.Error(t, err)
	assert.Equal(t, errRemote, errors.Cause(err))

	// the exam write was committed before the failure; the assignment write
	// was attempted once and no further writes were issued
	assert.Equal(t, []string{"CreateGrade Prova", "CreateGrade Trabalho"}, dir.calls)
	assert.Len(t, dir.grades, 1)
	assert.Equal(t, "Prova", dir.grades[0]["type"])
}

func TestServiceDashboard(t *testing.T) {
	dir := &fakeDirectory{
		courses: []Raw{{"id": "co1", "title": "Matemática"}},
		classes: []Raw{
			{"id": "c1", "name": "3A"},
			{"id": "c2", "room": "B2"},
		},
		students: []Raw{
			{"id": "s1", "name": "Ana Silva", "classId": "c1"},
			{"id": "s2", "name": "Bruno Costa", "classId": "c2"},
		},
		teachers: []Raw{{"id": "t1", "name": "Carlos Souza"}},
		grades: []Raw{
			{"id": "g1", "studentId": "s1", "classId": "c1", "assessment": "Prova", "score": float64(8)},
			{"id": "g2", "studentId": "s1", "classId": "c1", "assessment": "Trabalho", "score": float64(9)},
			{"id": "g3", "studentId": "s2", "classId": "c9", "assessment": "Prova", "score": float64(4)},
		},
	}
	svc := NewService(dir)

	stats, err := svc.Dashboard()
	assert.NoError(t, err)
	assert.Equal(t, 1, stats.Courses)
	assert.Equal(t, 2, stats.Classes)
	assert.Equal(t, 2, stats.Students)
	assert.Equal(t, 1, stats.Teachers)

	assert.Equal(t, []ClassAverage{
		{ClassID: "c1", Label: "3A", Average: 9}, // (8+9)/2 rounded up
		{ClassID: "c9", Label: "c9", Average: 4}, // unresolvable class keeps the raw id
	}, stats.ClassAverages)
}

func TestServiceMissingIDGuards(t *testing.T) {
	dir := &fakeDirectory{courses: []Raw{{"id": "c1", "title": "História"}}}
	svc := NewService(dir)

	_, err := svc.UpdateCourse("  ", CourseForm{Title: "Matemática"})
	assert.Error(t, err)
	_, ok := errors.Cause(err).(*core.ValidationError)
	assert.True(t, ok)
	assert.Equal(t, "missing record id", err.Error())

	_, err = svc.SaveScores("c1", "", GradeEntry{Exam: null.Float64From(7)})
	assert.Error(t, err)
	_, ok = errors.Cause(err).(*core.ValidationError)
	assert.True(t, ok)

	// no remote call may be issued for a guarded id
	assert.Empty(t, dir.calls)
}

func TestServiceUpdateStudentProfile(t *testing.T) {
	dir := &fakeDirectory{
		students: []Raw{{"id": "s1", "firstName": "Ana", "lastName": "Silva"}},
	}
	svc := NewService(dir)

	student, err := svc.UpdateStudentProfile("s1", StudentForm{
		Name:    "Ana Maria Silva",
		Email:   "ana@example.com",
		ClassID: "c1",
	})
	assert.NoError(t, err)
	assert.Equal(t, "Ana Maria Silva", student.FullName)
	assert.Equal(t, "ana@example.com", student.Email.String)
	assert.Equal(t, "c1", student.ClassID.String)
}
