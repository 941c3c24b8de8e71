package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/escolalab/secretaria/core/school"
)

type schoolApi struct {
	svc      *school.Service
	validate *validator.Validate
}

func registerSchoolAPI(g *echo.Group, svc *school.Service, validate *validator.Validate) {
	api := schoolApi{svc: svc, validate: validate}

	g.GET("/dashboard", api.dashboard)

	cg := g.Group("/courses")
	cg.GET("", api.listCourses)
	cg.POST("", api.createCourse)
	cg.PUT("/:id", api.updateCourse)
	cg.DELETE("/:id", api.deleteCourse)

	clg := g.Group("/classes")
	clg.GET("", api.listClasses)
	clg.POST("", api.createClass)
	clg.PUT("/:id", api.updateClass)
	clg.DELETE("/:id", api.deleteClass)
	clg.GET("/:id/scores", api.classScores)
	clg.PUT("/:id/scores/:studentID", api.saveScores)

	sg := g.Group("/students")
	sg.GET("", api.listStudents)
	sg.POST("", api.createStudent)
	sg.GET("/:id", api.retrieveStudent)
	sg.PUT("/:id", api.updateStudent)
	sg.DELETE("/:id", api.deleteStudent)

	tg := g.Group("/teachers")
	tg.GET("", api.listTeachers)
	tg.POST("", api.createTeacher)
	tg.GET("/:id", api.retrieveTeacher)
	tg.PUT("/:id", api.updateTeacher)
	tg.DELETE("/:id", api.deleteTeacher)
}

// Dashboard

func (api *schoolApi) dashboard(ctx echo.Context) error {
	stats, err := api.svc.Dashboard()
	if err != nil {
		return errors.Wrap(err, "building dashboard")
	}
	return ctx.JSON(http.StatusOK, stats)
}

// Courses

func (api *schoolApi) listCourses(ctx echo.Context) error {
	courses, err := api.svc.Courses()
	if err != nil {
		return errors.Wrap(err, "listing courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *schoolApi) createCourse(ctx echo.Context) error {
	var data school.CourseForm
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CourseForm")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	courses, err := api.svc.CreateCourse(data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, courses)
}

func (api *schoolApi) updateCourse(ctx echo.Context) error {
	id := ctx.Param("id")
	var data school.CourseForm
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CourseForm")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	courses, err := api.svc.UpdateCourse(id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *schoolApi) deleteCourse(ctx echo.Context) error {
	courses, err := api.svc.DeleteCourse(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, courses)
}

// Classes

func (api *schoolApi) listClasses(ctx echo.Context) error {
	classes, err := api.svc.Classes()
	if err != nil {
		return errors.Wrap(err, "listing classes")
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *schoolApi) createClass(ctx echo.Context) error {
	var data school.ClassForm
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ClassForm")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	classes, err := api.svc.CreateClass(data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, classes)
}

func (api *schoolApi) updateClass(ctx echo.Context) error {
	id := ctx.Param("id")
	var data school.ClassForm
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ClassForm")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	classes, err := api.svc.UpdateClass(id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *schoolApi) deleteClass(ctx echo.Context) error {
	classes, err := api.svc.DeleteClass(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, classes)
}

// Scores

func (api *schoolApi) classScores(ctx echo.Context) error {
	rows, err := api.svc.ClassScores(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "building score sheet")
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (api *schoolApi) saveScores(ctx echo.Context) error {
	var data school.GradeEntry
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeEntry")
	}
	rows, err := api.svc.SaveScores(ctx.Param("id"), ctx.Param("studentID"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rows)
}

// Students

func (api *schoolApi) listStudents(ctx echo.Context) error {
	students, err := api.svc.Students()
	if err != nil {
		return errors.Wrap(err, "listing students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *schoolApi) retrieveStudent(ctx echo.Context) error {
	student, err := api.svc.Student(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, student)
}

func (api *schoolApi) createStudent(ctx echo.Context) error {
	var data school.StudentForm
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StudentForm")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	students, err := api.svc.CreateStudent(data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, students)
}

func (api *schoolApi) updateStudent(ctx echo.Context) error {
	id := ctx.Param("id")
	var data school.StudentForm
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StudentForm")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	// the profile view re-renders a single student; list views re-render the
	// whole collection
	if ctx.QueryParam("view") == "profile" {
		student, err := api.svc.UpdateStudentProfile(id, data)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, student)
	}
	students, err := api.svc.UpdateStudent(id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *schoolApi) deleteStudent(ctx echo.Context) error {
	students, err := api.svc.DeleteStudent(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, students)
}

// Teachers

func (api *schoolApi) listTeachers(ctx echo.Context) error {
	teachers, err := api.svc.Teachers()
	if err != nil {
		return errors.Wrap(err, "listing teachers")
	}
	return ctx.JSON(http.StatusOK, teachers)
}

func (api *schoolApi) retrieveTeacher(ctx echo.Context) error {
	teacher, err := api.svc.Teacher(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, teacher)
}

func (api *schoolApi) createTeacher(ctx echo.Context) error {
	var data school.TeacherForm
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TeacherForm")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	teachers, err := api.svc.CreateTeacher(data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, teachers)
}

func (api *schoolApi) updateTeacher(ctx echo.Context) error {
	id := ctx.Param("id")
	var data school.TeacherForm
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TeacherForm")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	teachers, err := api.svc.UpdateTeacher(id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, teachers)
}

func (api *schoolApi) deleteTeacher(ctx echo.Context) error {
	teachers, err := api.svc.DeleteTeacher(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, teachers)
}
