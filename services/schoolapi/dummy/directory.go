// Package dummyapi provides an in-memory school.Directory for tests and for
// working on the console without the remote school records API.
package dummyapi

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/escolalab/secretaria/core/school"
	"github.com/escolalab/secretaria/services/schoolapi"
)

var errNotFound = &schoolapi.APIError{StatusCode: http.StatusNotFound, Body: "not found"}

type Directory struct {
	mu      sync.RWMutex
	tables  map[string][]school.Raw
	pkCount int
}

var _ school.Directory = (*Directory)(nil) // interface compliance check

func New() *Directory {
	return &Directory{tables: map[string][]school.Raw{}}
}

// Seed inserts a record into the named collection as-is, without assigning
// an id; tests control the exact record shapes.
func (d *Directory) Seed(collection string, recs ...school.Raw) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tables[collection] = append(d.tables[collection], recs...)
}

func (d *Directory) list(collection string) []school.Raw {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]school.Raw, len(d.tables[collection]))
	copy(out, d.tables[collection])
	return out
}

func (d *Directory) create(collection string, payload map[string]interface{}) (school.Raw, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pkCount++
	rec := school.Raw{"id": fmt.Sprintf("%s-%d", collection, d.pkCount)}
	for k, v := range payload {
		rec[k] = v
	}
	d.tables[collection] = append(d.tables[collection], rec)
	return rec, nil
}

func (d *Directory) get(collection, id string) (school.Raw, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, rec := range d.tables[collection] {
		if school.ResolveID(rec) == id {
			return rec, nil
		}
	}
	return nil, errNotFound
}

// update replaces the record body wholesale, keeping only the id; the remote
// API treats PUT as a full replace.
func (d *Directory) update(collection, id string, payload map[string]interface{}) (school.Raw, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, rec := range d.tables[collection] {
		if school.ResolveID(rec) == id {
			out := school.Raw{"id": school.ResolveID(rec)}
			for k, v := range payload {
				out[k] = v
			}
			d.tables[collection][i] = out
			return out, nil
		}
	}
	return nil, errNotFound
}

func (d *Directory) delete(collection, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	recs := d.tables[collection]
	for i, rec := range recs {
		if school.ResolveID(rec) == id {
			d.tables[collection] = append(recs[:i], recs[i+1:]...)
			return nil
		}
	}
	return errNotFound
}

func (d *Directory) ListCourses() ([]school.Raw, error) { return d.list("courses"), nil }

func (d *Directory) CreateCourse(payload map[string]interface{}) (school.Raw, error) {
	return d.create("courses", payload)
}

func (d *Directory) UpdateCourse(id string, payload map[string]interface{}) (school.Raw, error) {
	return d.update("courses", id, payload)
}

func (d *Directory) DeleteCourse(id string) error { return d.delete("courses", id) }

func (d *Directory) ListClasses() ([]school.Raw, error) { return d.list("classes"), nil }

func (d *Directory) CreateClass(payload map[string]interface{}) (school.Raw, error) {
	return d.create("classes", payload)
}

func (d *Directory) UpdateClass(id string, payload map[string]interface{}) (school.Raw, error) {
	return d.update("classes", id, payload)
}

func (d *Directory) DeleteClass(id string) error { return d.delete("classes", id) }

func (d *Directory) ListStudents() ([]school.Raw, error) { return d.list("students"), nil }

func (d *Directory) GetStudent(id string) (school.Raw, error) { return d.get("students", id) }

func (d *Directory) CreateStudent(payload map[string]interface{}) (school.Raw, error) {
	return d.create("students", payload)
}

func (d *Directory) UpdateStudent(id string, payload map[string]interface{}) (school.Raw, error) {
	return d.update("students", id, payload)
}

func (d *Directory) DeleteStudent(id string) error { return d.delete("students", id) }

func (d *Directory) ListTeachers() ([]school.Raw, error) { return d.list("teachers"), nil }

func (d *Directory) GetTeacher(id string) (school.Raw, error) { return d.get("teachers", id) }

func (d *Directory) CreateTeacher(payload map[string]interface{}) (school.Raw, error) {
	return d.create("teachers", payload)
}

func (d *Directory) UpdateTeacher(id string, payload map[string]interface{}) (school.Raw, error) {
	return d.update("teachers", id, payload)
}

func (d *Directory) DeleteTeacher(id string) error { return d.delete("teachers", id) }

func (d *Directory) ListGrades() ([]school.Raw, error) { return d.list("grades"), nil }

func (d *Directory) ListClassGrades(classID string) ([]school.Raw, error) {
	var out []school.Raw
	for _, rec := range d.list("grades") {
		if school.ResolveID(rec["classId"]) == classID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (d *Directory) CreateGrade(payload map[string]interface{}) (school.Raw, error) {
	return d.create("grades", payload)
}

func (d *Directory) UpdateGrade(id string, payload map[string]interface{}) (school.Raw, error) {
	return d.update("grades", id, payload)
}
