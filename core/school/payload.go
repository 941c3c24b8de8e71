package school

import "strings"

// Payload builders translate UI edit forms into the exact JSON shapes the
// school records API expects for create/update requests. They are pure:
// no network calls, no input mutation, a fresh map on every call. Fields
// with no resolvable value are omitted rather than sent as null.

func CoursePayload(f CourseForm) map[string]interface{} {
	return map[string]interface{}{"title": f.Title}
}

// ClassPayload maps the single UI "name" field onto the API's "room" field;
// the API's terminology predates the console's.
func ClassPayload(f ClassForm) map[string]interface{} {
	p := map[string]interface{}{"room": f.Name}
	if sem := firstNonEmpty(f.Semester, f.Semestre); sem != "" {
		p["semester"] = sem
	}
	if f.CourseID != "" {
		p["courseId"] = f.CourseID
	}
	if f.TeacherID != "" {
		p["teacherId"] = f.TeacherID
	}
	return p
}

func StudentPayload(f StudentForm) map[string]interface{} {
	first, last := SplitName(f.Name)
	p := map[string]interface{}{"firstName": first}
	if last != "" {
		p["lastName"] = last
	}
	if f.Email != "" {
		p["email"] = f.Email
	}
	if f.RegisteredAt != "" {
		p["registeredAt"] = f.RegisteredAt
	}
	if id := f.classRef(); id != "" {
		p["classId"] = id
	}
	if f.AvatarURL != "" {
		p["avatarUrl"] = f.AvatarURL
	}
	return p
}

// TeacherPayload passes the combined name through unsplit; teacher records
// have only ever exposed a single name field on the wire.
func TeacherPayload(f TeacherForm) map[string]interface{} {
	p := map[string]interface{}{"name": f.Name}
	if f.Email != "" {
		p["email"] = f.Email
	}
	if f.AvatarURL != "" {
		p["avatarUrl"] = f.AvatarURL
	}
	return p
}

// GradePayload builds a grade write. The API stores the assessment under
// `type` and the score under `value`; the internal kind is translated to the
// API's display-label vocabulary.
func GradePayload(studentID, classID string, kind Kind, score float64) map[string]interface{} {
	return map[string]interface{}{
		"studentId": studentID,
		"classId":   classID,
		"type":      kind.Label(),
		"value":     score,
	}
}

// SplitName splits a combined display name into first and last parts at the
// first word boundary; the remainder, if any, becomes the last name.
func SplitName(name string) (first, last string) {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
