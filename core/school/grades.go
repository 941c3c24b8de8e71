package school

import (
	"strings"

	"github.com/volatiletech/null/v8"
)

// Kind is the console-internal assessment category. The API labels records
// with free-form display labels ("Prova", "Trabalho"); the console only ever
// surfaces these two kinds and matches labels case-insensitively.
type Kind string

const (
	KindExam       Kind = "exam"
	KindAssignment Kind = "assignment"
)

// Kinds lists the assessment kinds in the order writes are issued.
var Kinds = []Kind{KindExam, KindAssignment}

// Label returns the display label the API expects on write.
func (k Kind) Label() string {
	switch k {
	case KindExam:
		return "Prova"
	case KindAssignment:
		return "Trabalho"
	}
	return ""
}

// ParseKind maps an assessment label onto one of the two internal kinds,
// case-insensitively. Both the localized and the internal vocabularies have
// appeared on the wire. Unrecognized labels report ok=false and are dropped
// by callers rather than raised as errors.
func ParseKind(label string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "prova", "exam":
		return KindExam, true
	case "trabalho", "assignment":
		return KindAssignment, true
	}
	return "", false
}

// ScoreSlots holds a student's current scores, one slot per assessment kind;
// either may be absent.
type ScoreSlots struct {
	Exam       null.Float64 `json:"exam"`
	Assignment null.Float64 `json:"assignment"`
}

func (s ScoreSlots) slot(kind Kind) null.Float64 {
	if kind == KindExam {
		return s.Exam
	}
	return s.Assignment
}

// ScoreSheet is the reconciliation map: a per-student lookup of current
// scores by assessment kind, plus the backing records used to decide whether
// a save updates an existing record or creates a new one. It is rebuilt
// wholesale from server-confirmed state after every mutation.
type ScoreSheet struct {
	slots   map[string]ScoreSlots
	records map[string]map[Kind]GradeRecord
}

// BuildScoreSheet scans the grade records once and slots each into its
// student's exam or assignment slot. When duplicates exist for one
// (student, kind) pair the last score read wins for display while the first
// record found backs updates; the API carries no documented precedence rule,
// so the historical behavior is preserved.
func BuildScoreSheet(records []GradeRecord) ScoreSheet {
	sheet := ScoreSheet{
		slots:   make(map[string]ScoreSlots),
		records: make(map[string]map[Kind]GradeRecord),
	}
	for _, rec := range records {
		slots := sheet.slots[rec.StudentID]
		if rec.AssessmentKind == KindExam {
			slots.Exam = null.Float64From(rec.Score)
		} else {
			slots.Assignment = null.Float64From(rec.Score)
		}
		sheet.slots[rec.StudentID] = slots

		byKind, ok := sheet.records[rec.StudentID]
		if !ok {
			byKind = make(map[Kind]GradeRecord)
			sheet.records[rec.StudentID] = byKind
		}
		if _, exists := byKind[rec.AssessmentKind]; !exists {
			byKind[rec.AssessmentKind] = rec
		}
	}
	return sheet
}

// Slots returns the current scores for a student; both slots are absent for
// unknown students.
func (s ScoreSheet) Slots(studentID string) ScoreSlots {
	return s.slots[studentID]
}

// Record returns the existing grade record for (student, kind), if any.
func (s ScoreSheet) Record(studentID string, kind Kind) (GradeRecord, bool) {
	rec, ok := s.records[studentID][kind]
	return rec, ok
}
