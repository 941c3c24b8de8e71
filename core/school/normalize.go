package school

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Raw is a record as returned by the school records API, before any
// normalization. The API's field names drifted across iterations (`id` vs
// `_id`, `name` vs `firstName`/`lastName`, class as id vs nested object), so
// every canonical field is derived here and nowhere else.
type Raw map[string]interface{}

// labelDelimiter separates the parts of a synthesized class label.
const labelDelimiter = " • "

// ResolveID derives a single string id from a value of unknown shape:
// a string id is returned verbatim, a number is rendered as a string, and an
// object is probed for `id` then `_id` (first present wins). Anything else
// resolves to "" (absent).
func ResolveID(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case json.Number:
		return val.String()
	case Raw:
		return idFromRecord(val)
	case map[string]interface{}:
		return idFromRecord(val)
	default:
		return ""
	}
}

func idFromRecord(m map[string]interface{}) string {
	for _, key := range []string{"id", "_id"} {
		if v, ok := m[key]; ok && v != nil {
			return ResolveID(v)
		}
	}
	return ""
}

// FullName derives a display name from a student- or teacher-like record.
// A non-blank combined `name` string wins; a `name` of any other shape carries
// no usable name data and falls through to the first and last name fields,
// joined with a single space (both camelCase and snake_case spellings have
// been seen on the wire). Returns "" when no name data exists.
func FullName(r Raw) string {
	if r == nil {
		return ""
	}
	if name, ok := r["name"].(string); ok {
		if name = strings.TrimSpace(name); name != "" {
			return name
		}
	}
	first := firstField(r, "firstName", "first_name")
	last := firstField(r, "lastName", "last_name")
	return strings.TrimSpace(first + " " + last)
}

// ClassID extracts a class reference from a student-like record, probing
// `classId`, `class`, `turma` and `turmaId` in order; the first present value
// wins and is resolved through ResolveID. When none of the fields is present
// the record itself is treated as a class reference, which covers callers
// passing a bare class object instead of a student.
func ClassID(r Raw) string {
	if r == nil {
		return ""
	}
	for _, key := range []string{"classId", "class", "turma", "turmaId"} {
		if v, ok := r[key]; ok && v != nil {
			return ResolveID(v)
		}
	}
	return ResolveID(r)
}

// classRefID is ClassID without the fall-back on the record itself; used when
// normalizing students, whose own id must not leak into the class reference.
func classRefID(r Raw) string {
	for _, key := range []string{"classId", "class", "turma", "turmaId"} {
		if v, ok := r[key]; ok && v != nil {
			return ResolveID(v)
		}
	}
	return ""
}

// ClassLabel derives the display label of a class. An explicit `name` or
// `title` wins; then `room`, which is where write payloads store the UI-level
// class name (see ClassPayload) — this keeps the name↔room mapping lossless.
// Failing all of those, a label is synthesized from the id and semester.
// A bare id string labels as "Turma <id>".
func ClassLabel(v interface{}) string {
	var r Raw
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		if val == "" {
			return ""
		}
		return "Turma " + val
	case Raw:
		r = val
	case map[string]interface{}:
		r = val
	default:
		return ""
	}

	if name := stringField(r, "name"); name != "" {
		return name
	}
	if title := stringField(r, "title"); title != "" {
		return title
	}
	if room := stringField(r, "room"); room != "" {
		return room
	}

	var parts []string
	if id := ResolveID(r); id != "" {
		parts = append(parts, "Turma "+id)
	}
	if sem := stringField(r, "semester"); sem != "" {
		parts = append(parts, sem)
	}
	return strings.Join(parts, labelDelimiter)
}

// stringField reads a field as a trimmed string; numbers are rendered
// (semesters have been seen as plain numbers), any other shape reads as "".
func stringField(r Raw, key string) string {
	switch v := r[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

func firstField(r Raw, keys ...string) string {
	for _, key := range keys {
		if s := stringField(r, key); s != "" {
			return s
		}
	}
	return ""
}

// numberField reads a field as a float64, accepting JSON numbers and numeric
// strings. The second return reports whether a usable number was found.
func numberField(r Raw, key string) (float64, bool) {
	switch v := r[key].(type) {
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
