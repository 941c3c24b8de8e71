package schoolapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/escolalab/secretaria/core"
	"github.com/escolalab/secretaria/core/school"
)

// APIError is a non-success response from the school records API. The body
// text is carried verbatim; retry policy, if any, belongs to the caller.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API %d %s", e.StatusCode, e.Body)
}

// Client is a thin HTTP client for the school records API. It deliberately
// sets no client-side timeout; the remote service's own limits apply and each
// console action awaits a single request at a time.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ school.Directory = (*Client)(nil)

func NewClient(conf *core.Config) *Client {
	c := &Client{
		baseURL: strings.TrimRight(conf.SchoolAPI.BaseURL, "/"),
		http:    &http.Client{},
	}
	if conf.SchoolAPI.SendCookies {
		// the API sits on a different origin; cookies only when asked for
		jar, _ := cookiejar.New(nil)
		c.http.Jar = jar
	}
	return c
}

// request issues one HTTP request and decodes the JSON response. A 204
// returns nil without touching the body; any other non-2xx status reads the
// body as text and fails with an *APIError.
func (c *Client) request(method, path string, query url.Values, payload interface{}) (interface{}, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Wrapf(err, "encoding %s %s payload", method, path)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, u, body)
	if err != nil {
		return nil, errors.Wrapf(err, "building %s %s request", method, path)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, path)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if res.StatusCode < http.StatusOK || res.StatusCode > 299 {
		text, _ := io.ReadAll(res.Body)
		return nil, &APIError{StatusCode: res.StatusCode, Body: string(text)}
	}

	var out interface{}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, errors.Wrapf(err, "decoding %s %s response", method, path)
	}
	return out, nil
}

func (c *Client) list(path string, query url.Values) ([]school.Raw, error) {
	out, err := c.request(http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	items, ok := out.([]interface{})
	if !ok {
		// a collection endpoint answering with a non-array means we are not
		// talking to the API we think we are; stop serving rather than render
		// garbage
		return nil, core.NewShutdownError(fmt.Sprintf("GET %s: expected a JSON array, got %T", path, out))
	}
	raws := make([]school.Raw, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]interface{}); ok {
			raws = append(raws, school.Raw(m))
		}
	}
	return raws, nil
}

func (c *Client) record(out interface{}) school.Raw {
	if m, ok := out.(map[string]interface{}); ok {
		return school.Raw(m)
	}
	return nil
}

func (c *Client) create(path string, payload map[string]interface{}) (school.Raw, error) {
	out, err := c.request(http.MethodPost, path, nil, payload)
	if err != nil {
		return nil, err
	}
	return c.record(out), nil
}

func (c *Client) update(path, id string, payload map[string]interface{}) (school.Raw, error) {
	out, err := c.request(http.MethodPut, path+"/"+url.PathEscape(id), nil, payload)
	if err != nil {
		return nil, err
	}
	return c.record(out), nil
}

func (c *Client) delete(path, id string) error {
	_, err := c.request(http.MethodDelete, path+"/"+url.PathEscape(id), nil, nil)
	return err
}

func (c *Client) get(path, id string) (school.Raw, error) {
	out, err := c.request(http.MethodGet, path+"/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return nil, err
	}
	return c.record(out), nil
}

// Courses

func (c *Client) ListCourses() ([]school.Raw, error) { return c.list("/courses", nil) }

func (c *Client) CreateCourse(payload map[string]interface{}) (school.Raw, error) {
	return c.create("/courses", payload)
}

func (c *Client) UpdateCourse(id string, payload map[string]interface{}) (school.Raw, error) {
	return c.update("/courses", id, payload)
}

func (c *Client) DeleteCourse(id string) error { return c.delete("/courses", id) }

// Classes

func (c *Client) ListClasses() ([]school.Raw, error) { return c.list("/classes", nil) }

func (c *Client) CreateClass(payload map[string]interface{}) (school.Raw, error) {
	return c.create("/classes", payload)
}

func (c *Client) UpdateClass(id string, payload map[string]interface{}) (school.Raw, error) {
	return c.update("/classes", id, payload)
}

func (c *Client) DeleteClass(id string) error { return c.delete("/classes", id) }

// Students

func (c *Client) ListStudents() ([]school.Raw, error) { return c.list("/students", nil) }

func (c *Client) GetStudent(id string) (school.Raw, error) { return c.get("/students", id) }

func (c *Client) CreateStudent(payload map[string]interface{}) (school.Raw, error) {
	return c.create("/students", payload)
}

func (c *Client) UpdateStudent(id string, payload map[string]interface{}) (school.Raw, error) {
	return c.update("/students", id, payload)
}

func (c *Client) DeleteStudent(id string) error { return c.delete("/students", id) }

// Teachers

func (c *Client) ListTeachers() ([]school.Raw, error) { return c.list("/teachers", nil) }

func (c *Client) GetTeacher(id string) (school.Raw, error) { return c.get("/teachers", id) }

func (c *Client) CreateTeacher(payload map[string]interface{}) (school.Raw, error) {
	return c.create("/teachers", payload)
}

func (c *Client) UpdateTeacher(id string, payload map[string]interface{}) (school.Raw, error) {
	return c.update("/teachers", id, payload)
}

func (c *Client) DeleteTeacher(id string) error { return c.delete("/teachers", id) }

// Grades

func (c *Client) ListGrades() ([]school.Raw, error) { return c.list("/grades", nil) }

// ListClassGrades filters grades by class; the API compares the filter
// numerically, so numeric-looking ids are coerced.
func (c *Client) ListClassGrades(classID string) ([]school.Raw, error) {
	query := url.Values{}
	query.Set("classId", coerceNumeric(classID))
	return c.list("/grades", query)
}

func (c *Client) CreateGrade(payload map[string]interface{}) (school.Raw, error) {
	return c.create("/grades", payload)
}

func (c *Client) UpdateGrade(id string, payload map[string]interface{}) (school.Raw, error) {
	return c.update("/grades", id, payload)
}

func coerceNumeric(id string) string {
	if n, err := strconv.Atoi(strings.TrimSpace(id)); err == nil {
		return strconv.Itoa(n)
	}
	return id
}
