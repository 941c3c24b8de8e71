package school

import (
	"math"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/escolalab/secretaria/core"
)

// Directory is the set of remote operations the service needs from the
// school records API. Implementations return raw records; all normalization
// happens in this package.
type Directory interface {
	ListCourses() ([]Raw, error)
	CreateCourse(payload map[string]interface{}) (Raw, error)
	UpdateCourse(id string, payload map[string]interface{}) (Raw, error)
	DeleteCourse(id string) error

	ListClasses() ([]Raw, error)
	CreateClass(payload map[string]interface{}) (Raw, error)
	UpdateClass(id string, payload map[string]interface{}) (Raw, error)
	DeleteClass(id string) error

	ListStudents() ([]Raw, error)
	GetStudent(id string) (Raw, error)
	CreateStudent(payload map[string]interface{}) (Raw, error)
	UpdateStudent(id string, payload map[string]interface{}) (Raw, error)
	DeleteStudent(id string) error

	ListTeachers() ([]Raw, error)
	GetTeacher(id string) (Raw, error)
	CreateTeacher(payload map[string]interface{}) (Raw, error)
	UpdateTeacher(id string, payload map[string]interface{}) (Raw, error)
	DeleteTeacher(id string) error

	ListGrades() ([]Raw, error)
	// ListClassGrades lists the grades of one class, filtered server-side.
	ListClassGrades(classID string) ([]Raw, error)
	CreateGrade(payload map[string]interface{}) (Raw, error)
	UpdateGrade(id string, payload map[string]interface{}) (Raw, error)
}

// Service implements the console-facing surface: one operation per entity
// kind and verb. Every mutation is followed by a wholesale re-fetch of the
// affected collection, so callers always render server-confirmed state;
// there is no cache invalidation finer than that.
type Service struct {
	dir Directory
}

func NewService(dir Directory) *Service {
	return &Service{dir: dir}
}

// requireID guards record-targeting operations before any remote call is
// issued; a blank id would otherwise hit the wrong upstream route.
func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return core.NewValidationError(errors.New("missing record id"))
	}
	return nil
}

// Courses

func (svc *Service) Courses() ([]Course, error) {
	raws, err := svc.dir.ListCourses()
	if err != nil {
		return nil, err
	}
	courses := make([]Course, 0, len(raws))
	for _, r := range raws {
		courses = append(courses, CourseFromRaw(r))
	}
	return courses, nil
}

func (svc *Service) CreateCourse(f CourseForm) ([]Course, error) {
	if _, err := svc.dir.CreateCourse(CoursePayload(f)); err != nil {
		return nil, errors.Wrap(err, "creating course")
	}
	return svc.Courses()
}

func (svc *Service) UpdateCourse(id string, f CourseForm) ([]Course, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	if _, err := svc.dir.UpdateCourse(id, CoursePayload(f)); err != nil {
		return nil, errors.Wrap(err, "updating course")
	}
	return svc.Courses()
}

func (svc *Service) DeleteCourse(id string) ([]Course, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	if err := svc.dir.DeleteCourse(id); err != nil {
		return nil, errors.Wrap(err, "deleting course")
	}
	return svc.Courses()
}

// Classes

func (svc *Service) Classes() ([]ClassSection, error) {
	raws, err := svc.dir.ListClasses()
	if err != nil {
		return nil, err
	}
	classes := make([]ClassSection, 0, len(raws))
	for _, r := range raws {
		classes = append(classes, ClassFromRaw(r))
	}
	return classes, nil
}

func (svc *Service) CreateClass(f ClassForm) ([]ClassSection, error) {
	if _, err := svc.dir.CreateClass(ClassPayload(f)); err != nil {
		return nil, errors.Wrap(err, "creating class")
	}
	return svc.Classes()
}

func (svc *Service) UpdateClass(id string, f ClassForm) ([]ClassSection, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	if _, err := svc.dir.UpdateClass(id, ClassPayload(f)); err != nil {
		return nil, errors.Wrap(err, "updating class")
	}
	return svc.Classes()
}

func (svc *Service) DeleteClass(id string) ([]ClassSection, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	if err := svc.dir.DeleteClass(id); err != nil {
		return nil, errors.Wrap(err, "deleting class")
	}
	return svc.Classes()
}

// Students

func (svc *Service) Students() ([]Student, error) {
	raws, err := svc.dir.ListStudents()
	if err != nil {
		return nil, err
	}
	students := make([]Student, 0, len(raws))
	for _, r := range raws {
		students = append(students, StudentFromRaw(r))
	}
	return students, nil
}

func (svc *Service) Student(id string) (Student, error) {
	if err := requireID(id); err != nil {
		return Student{}, err
	}
	r, err := svc.dir.GetStudent(id)
	if err != nil {
		return Student{}, err
	}
	return StudentFromRaw(r), nil
}

func (svc *Service) CreateStudent(f StudentForm) ([]Student, error) {
	if _, err := svc.dir.CreateStudent(StudentPayload(f)); err != nil {
		return nil, errors.Wrap(err, "creating student")
	}
	return svc.Students()
}

func (svc *Service) UpdateStudent(id string, f StudentForm) ([]Student, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	if _, err := svc.dir.UpdateStudent(id, StudentPayload(f)); err != nil {
		return nil, errors.Wrap(err, "updating student")
	}
	return svc.Students()
}

// UpdateStudentProfile saves the profile edit form and re-fetches the single
// student, mirroring the profile view's refresh.
func (svc *Service) UpdateStudentProfile(id string, f StudentForm) (Student, error) {
	if err := requireID(id); err != nil {
		return Student{}, err
	}
	if _, err := svc.dir.UpdateStudent(id, StudentPayload(f)); err != nil {
		return Student{}, errors.Wrap(err, "updating student profile")
	}
	return svc.Student(id)
}

func (svc *Service) DeleteStudent(id string) ([]Student, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	if err := svc.dir.DeleteStudent(id); err != nil {
		return nil, errors.Wrap(err, "deleting student")
	}
	return svc.Students()
}

// Teachers

func (svc *Service) Teachers() ([]Teacher, error) {
	raws, err := svc.dir.ListTeachers()
	if err != nil {
		return nil, err
	}
	teachers := make([]Teacher, 0, len(raws))
	for _, r := range raws {
		teachers = append(teachers, TeacherFromRaw(r))
	}
	return teachers, nil
}

func (svc *Service) Teacher(id string) (Teacher, error) {
	if err := requireID(id); err != nil {
		return Teacher{}, err
	}
	r, err := svc.dir.GetTeacher(id)
	if err != nil {
		return Teacher{}, err
	}
	return TeacherFromRaw(r), nil
}

func (svc *Service) CreateTeacher(f TeacherForm) ([]Teacher, error) {
	if _, err := svc.dir.CreateTeacher(TeacherPayload(f)); err != nil {
		return nil, errors.Wrap(err, "creating teacher")
	}
	return svc.Teachers()
}

func (svc *Service) UpdateTeacher(id string, f TeacherForm) ([]Teacher, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	if _, err := svc.dir.UpdateTeacher(id, TeacherPayload(f)); err != nil {
		return nil, errors.Wrap(err, "updating teacher")
	}
	return svc.Teachers()
}

func (svc *Service) DeleteTeacher(id string) ([]Teacher, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	if err := svc.dir.DeleteTeacher(id); err != nil {
		return nil, errors.Wrap(err, "deleting teacher")
	}
	return svc.Teachers()
}

// Grades

// ScoreRow pairs a student of the class with their current scores.
type ScoreRow struct {
	Student Student    `json:"student"`
	Scores  ScoreSlots `json:"scores"`
}

// ClassScores builds the score sheet of one class: its students joined to
// the reconciliation map of their grade records.
func (svc *Service) ClassScores(classID string) ([]ScoreRow, error) {
	students, err := svc.Students()
	if err != nil {
		return nil, err
	}
	sheet, err := svc.classSheet(classID)
	if err != nil {
		return nil, err
	}

	rows := make([]ScoreRow, 0, len(students))
	for _, s := range students {
		if !s.ClassID.Valid || s.ClassID.String != classID {
			continue
		}
		rows = append(rows, ScoreRow{Student: s, Scores: sheet.Slots(s.ID)})
	}
	return rows, nil
}

// SaveScores writes one student's edited scores. Writes are issued and
// awaited strictly in sequence (exam first, then assignment), so a failure
// partway leaves earlier writes committed and later ones not attempted.
// For each kind an existing record is updated in place; otherwise a new
// record is created. Empty slots are skipped. On success the refreshed score
// sheet of the class is returned.
func (svc *Service) SaveScores(classID, studentID string, entry GradeEntry) ([]ScoreRow, error) {
	if err := requireID(classID); err != nil {
		return nil, err
	}
	if err := requireID(studentID); err != nil {
		return nil, err
	}
	sheet, err := svc.classSheet(classID)
	if err != nil {
		return nil, err
	}

	entrySlots := ScoreSlots{Exam: entry.Exam, Assignment: entry.Assignment}
	for _, kind := range Kinds {
		slot := entrySlots.slot(kind)
		if !slot.Valid {
			continue
		}
		if rec, ok := sheet.Record(studentID, kind); ok {
			payload := GradePayload(rec.StudentID, rec.ClassID, rec.AssessmentKind, slot.Float64)
			if _, err := svc.dir.UpdateGrade(rec.ID, payload); err != nil {
				return nil, errors.Wrapf(err, "updating %s score", kind)
			}
		} else {
			payload := GradePayload(studentID, classID, kind, slot.Float64)
			if _, err := svc.dir.CreateGrade(payload); err != nil {
				return nil, errors.Wrapf(err, "creating %s score", kind)
			}
		}
	}
	return svc.ClassScores(classID)
}

func (svc *Service) classSheet(classID string) (ScoreSheet, error) {
	raws, err := svc.dir.ListClassGrades(classID)
	if err != nil {
		return ScoreSheet{}, err
	}
	return BuildScoreSheet(normalizeGrades(raws)), nil
}

func normalizeGrades(raws []Raw) []GradeRecord {
	records := make([]GradeRecord, 0, len(raws))
	for _, r := range raws {
		if rec, ok := GradeFromRaw(r); ok {
			records = append(records, rec)
		}
	}
	return records
}

// Dashboard

type ClassAverage struct {
	ClassID string  `json:"classId"`
	Label   string  `json:"label"`
	Average float64 `json:"average"`
}

type DashboardStats struct {
	Courses       int            `json:"courses"`
	Classes       int            `json:"classes"`
	Students      int            `json:"students"`
	Teachers      int            `json:"teachers"`
	ClassAverages []ClassAverage `json:"classAverages"`
}

// Dashboard aggregates entity counts and the rounded average score per
// class. Grades referencing a class the console cannot resolve keep the raw
// class id as their label; grades with no class id at all group under "N/A".
func (svc *Service) Dashboard() (DashboardStats, error) {
	courses, err := svc.Courses()
	if err != nil {
		return DashboardStats{}, err
	}
	classes, err := svc.Classes()
	if err != nil {
		return DashboardStats{}, err
	}
	students, err := svc.Students()
	if err != nil {
		return DashboardStats{}, err
	}
	teachers, err := svc.Teachers()
	if err != nil {
		return DashboardStats{}, err
	}
	gradeRaws, err := svc.dir.ListGrades()
	if err != nil {
		return DashboardStats{}, err
	}

	type agg struct {
		sum   float64
		count int
	}
	sums := make(map[string]*agg)
	for _, r := range gradeRaws {
		// every grade counts toward its class average, whichever label the
		// record carries
		cid := ResolveID(r["classId"])
		score, _ := gradeScore(r)
		a, ok := sums[cid]
		if !ok {
			a = &agg{}
			sums[cid] = a
		}
		a.sum += score
		a.count++
	}

	labels := make(map[string]string, len(classes))
	for _, c := range classes {
		labels[c.ID] = c.Label
	}

	averages := make([]ClassAverage, 0, len(sums))
	for cid, a := range sums {
		label := labels[cid]
		if label == "" {
			label = cid
		}
		if label == "" {
			label = "N/A"
		}
		var avg float64
		if a.count > 0 {
			avg = math.Round(a.sum / float64(a.count))
		}
		averages = append(averages, ClassAverage{ClassID: cid, Label: label, Average: avg})
	}
	sort.Slice(averages, func(i, j int) bool { return averages[i].ClassID < averages[j].ClassID })

	return DashboardStats{
		Courses:       len(courses),
		Classes:       len(classes),
		Students:      len(students),
		Teachers:      len(teachers),
		ClassAverages: averages,
	}, nil
}
