package school

import (
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/escolalab/secretaria/core"
)

// Canonical records: the normalized, UI-internal representation of the
// entities after resolving all wire-format variance. They are ephemeral
// view-layer snapshots; the school records API owns the source of truth.

type Course struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type ClassSection struct {
	ID        string      `json:"id"`
	Label     string      `json:"label"`
	CourseID  null.String `json:"courseId"`
	TeacherID null.String `json:"teacherId"`
	Semester  null.String `json:"semester"`
}

type Student struct {
	ID           string      `json:"id"`
	FullName     string      `json:"fullName"`
	Email        null.String `json:"email"`
	RegisteredAt null.String `json:"registeredAt"`
	ClassID      null.String `json:"classId"`
	AvatarURL    null.String `json:"avatarUrl"`
}

type Teacher struct {
	ID        string      `json:"id"`
	FullName  string      `json:"fullName"`
	Email     null.String `json:"email"`
	AvatarURL null.String `json:"avatarUrl"`
}

type GradeRecord struct {
	ID             string  `json:"id"`
	StudentID      string  `json:"studentId"`
	ClassID        string  `json:"classId"`
	AssessmentKind Kind    `json:"assessmentKind"`
	Score          float64 `json:"score"`
}

func CourseFromRaw(r Raw) Course {
	return Course{
		ID:    ResolveID(r),
		Title: firstField(r, "title", "name"),
	}
}

func ClassFromRaw(r Raw) ClassSection {
	return ClassSection{
		ID:        ResolveID(r),
		Label:     ClassLabel(r),
		CourseID:  optString(stringField(r, "courseId")),
		TeacherID: optString(stringField(r, "teacherId")),
		Semester:  optString(stringField(r, "semester")),
	}
}

func StudentFromRaw(r Raw) Student {
	return Student{
		ID:           ResolveID(r),
		FullName:     FullName(r),
		Email:        optString(stringField(r, "email")),
		RegisteredAt: optString(stringField(r, "registeredAt")),
		ClassID:      optString(classRefID(r)),
		AvatarURL:    optString(stringField(r, "avatarUrl")),
	}
}

func TeacherFromRaw(r Raw) Teacher {
	return Teacher{
		ID:        ResolveID(r),
		FullName:  FullName(r),
		Email:     optString(stringField(r, "email")),
		AvatarURL: optString(stringField(r, "avatarUrl")),
	}
}

// GradeFromRaw normalizes a grade record. ok is false when the record carries
// an assessment label outside the two kinds the console surfaces; such
// records are simply not represented.
func GradeFromRaw(r Raw) (GradeRecord, bool) {
	kind, ok := ParseKind(firstField(r, "assessment", "type"))
	if !ok {
		return GradeRecord{}, false
	}
	score, _ := gradeScore(r)
	return GradeRecord{
		ID:             ResolveID(r),
		StudentID:      ResolveID(r["studentId"]),
		ClassID:        ResolveID(r["classId"]),
		AssessmentKind: kind,
		Score:          score,
	}, true
}

// gradeScore reads the score, which the API has stored under both `score`
// and `value`.
func gradeScore(r Raw) (float64, bool) {
	if f, ok := numberField(r, "score"); ok {
		return f, true
	}
	return numberField(r, "value")
}

func optString(s string) null.String {
	if s == "" {
		return null.String{}
	}
	return null.StringFrom(s)
}

// Edit forms: the flat, human-entered shapes the console UI submits.

type CourseForm struct {
	Title string `json:"title" validate:"required"`
}

func (f *CourseForm) Validate(validate *validator.Validate) error {
	f.Title = core.CleanString(f.Title)
	return validate.Struct(f)
}

type ClassForm struct {
	Name      string `json:"name" validate:"required"`
	Semester  string `json:"semester"`
	Semestre  string `json:"semestre"` // older UI builds submit the localized spelling
	CourseID  string `json:"courseId"`
	TeacherID string `json:"teacherId"`
}

func (f *ClassForm) Validate(validate *validator.Validate) error {
	f.Name = core.CleanString(f.Name)
	f.Semester = core.CleanString(f.Semester)
	f.Semestre = core.CleanString(f.Semestre)
	return validate.Struct(f)
}

type StudentForm struct {
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"omitempty,email"`
	RegisteredAt string `json:"registeredAt"`
	AvatarURL    string `json:"avatarUrl"`

	// The class reference may arrive as a plain id, a nested class object or
	// under one of the localized aliases.
	ClassID interface{} `json:"classId"`
	Class   interface{} `json:"class"`
	Turma   interface{} `json:"turma"`
	TurmaID interface{} `json:"turmaId"`
}

func (f *StudentForm) Validate(validate *validator.Validate) error {
	f.Name = core.CleanString(f.Name)
	f.Email = core.CleanString(f.Email, true /* lower */)
	return validate.Struct(f)
}

// classRef resolves the submitted class reference; first present wins.
func (f *StudentForm) classRef() string {
	for _, v := range []interface{}{f.ClassID, f.Class, f.Turma, f.TurmaID} {
		if v != nil {
			return ResolveID(v)
		}
	}
	return ""
}

type TeacherForm struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"omitempty,email"`
	AvatarURL string `json:"avatarUrl"`
}

func (f *TeacherForm) Validate(validate *validator.Validate) error {
	f.Name = core.CleanString(f.Name)
	f.Email = core.CleanString(f.Email, true /* lower */)
	return validate.Struct(f)
}

// GradeEntry is the edit buffer for one student's scores. An invalid slot
// means the input was left empty and no write is issued for that kind.
type GradeEntry struct {
	Exam       null.Float64 `json:"exam"`
	Assignment null.Float64 `json:"assignment"`
}
