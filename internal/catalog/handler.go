package catalog

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"campushub/internal/apperr"
	"campushub/internal/auth"
)

// Handler exposes catalogue and registry endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates the handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func fail(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{"message": apperr.Message(err)})
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		fail(c, apperr.Validation("invalid "+name))
		return 0, false
	}
	return id, true
}

// -------- Departments --------

func (h *Handler) AddDepartment(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("name required"))
		return
	}
	d, err := h.svc.AddDepartment(c.Request.Context(), req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h *Handler) ListDepartments(c *gin.Context) {
	res, err := h.svc.ListDepartments(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	if res == nil {
		res = []Department{}
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) UpdateDepartment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("name required"))
		return
	}
	if err := h.svc.RenameDepartment(c.Request.Context(), id, req.Name); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "department updated"})
}

func (h *Handler) DeleteDepartment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.RemoveDepartment(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "department deleted"})
}

// -------- Courses --------

func (h *Handler) AddCourse(c *gin.Context) {
	var req struct {
		Name         string `json:"name" binding:"required"`
		DepartmentID int64  `json:"department_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("name and department_id required"))
		return
	}
	course, err := h.svc.AddCourse(c.Request.Context(), Course{Name: req.Name, DepartmentID: req.DepartmentID})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

func (h *Handler) ListCourses(c *gin.Context) {
	res, err := h.svc.ListCourses(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	if res == nil {
		res = []Course{}
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) UpdateCourse(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Name         string `json:"name" binding:"required"`
		DepartmentID int64  `json:"department_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("name and department_id required"))
		return
	}
	if err := h.svc.UpdateCourse(c.Request.Context(), Course{ID: id, Name: req.Name, DepartmentID: req.DepartmentID}); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "course updated"})
}

func (h *Handler) DeleteCourse(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.RemoveCourse(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "course deleted"})
}

// -------- Subjects --------

func (h *Handler) AddSubject(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Code     string `json:"code" binding:"required"`
		CourseID int64  `json:"course_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("name, code and course_id required"))
		return
	}
	sub, err := h.svc.AddSubject(c.Request.Context(), Subject{Name: req.Name, Code: req.Code, CourseID: req.CourseID})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *Handler) ListSubjects(c *gin.Context) {
	res, err := h.svc.ListSubjects(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	if res == nil {
		res = []Subject{}
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ListSubjectsByDepartment(c *gin.Context) {
	deptID, ok := pathID(c, "deptId")
	if !ok {
		return
	}
	res, err := h.svc.ListSubjectsByDepartment(c.Request.Context(), deptID)
	if err != nil {
		fail(c, err)
		return
	}
	if res == nil {
		res = []Subject{}
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) UpdateSubject(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Name     string `json:"name" binding:"required"`
		Code     string `json:"code" binding:"required"`
		CourseID int64  `json:"course_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("name, code and course_id required"))
		return
	}
	if err := h.svc.UpdateSubject(c.Request.Context(), Subject{ID: id, Name: req.Name, Code: req.Code, CourseID: req.CourseID}); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "subject updated"})
}

func (h *Handler) DeleteSubject(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.RemoveSubject(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "subject deleted"})
}

// -------- Registry --------

// EnrollStudents binds students to a subject (admin screen).
func (h *Handler) EnrollStudents(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		StudentIDs []int64 `json:"student_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("student_ids required"))
		return
	}
	if err := h.svc.Enroll(c.Request.Context(), id, req.StudentIDs); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "students enrolled"})
}

// AssignStaff binds lecturers/assistants to a subject (admin screen).
func (h *Handler) AssignStaff(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		UserIDs []int64 `json:"user_ids" binding:"required"`
		Role    string  `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("user_ids required"))
		return
	}
	if req.Role == "" {
		req.Role = AssignLecturer
	}
	if err := h.svc.Assign(c.Request.Context(), id, req.UserIDs, req.Role); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "staff assigned"})
}

// SelfAssign lets a lecturer pick up a subject from their department.
func (h *Handler) SelfAssign(c *gin.Context) {
	var req struct {
		LecturerID int64 `json:"lecturer_id" binding:"required"`
		SubjectID  int64 `json:"subject_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("lecturer_id and subject_id required"))
		return
	}
	if err := h.svc.Assign(c.Request.Context(), req.SubjectID, []int64{req.LecturerID}, AssignLecturer); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "subject assigned"})
}

// AssignedSubjects lists subjects a lecturer/assistant is assigned to.
func (h *Handler) AssignedSubjects(c *gin.Context) {
	id, ok := pathID(c, "lecturerId")
	if !ok {
		return
	}
	res, err := h.svc.ListAssignedSubjects(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if res == nil {
		res = []Subject{}
	}
	c.JSON(http.StatusOK, res)
}

// EnrollSelf enrolls a student in a subject (student screen).
func (h *Handler) EnrollSelf(c *gin.Context) {
	var req struct {
		StudentID int64 `json:"student_id" binding:"required"`
		SubjectID int64 `json:"subject_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("student_id and subject_id required"))
		return
	}
	if err := h.svc.Enroll(c.Request.Context(), req.SubjectID, []int64{req.StudentID}); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "enrolled"})
}

// UnenrollSelf drops a student's enrollment. The caller's own id is used
// unless studentId is supplied (admin screens).
func (h *Handler) UnenrollSelf(c *gin.Context) {
	subjectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	studentID := auth.CallerID(c)
	if v := c.Query("studentId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			fail(c, apperr.Validation("invalid studentId"))
			return
		}
		studentID = id
	}
	if err := h.svc.Unenroll(c.Request.Context(), subjectID, studentID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "enrollment removed"})
}

// EnrolledSubjects lists a student's enrolled subjects.
func (h *Handler) EnrolledSubjects(c *gin.Context) {
	id, ok := pathID(c, "studentId")
	if !ok {
		return
	}
	res, err := h.svc.ListEnrolledSubjects(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if res == nil {
		res = []Subject{}
	}
	c.JSON(http.StatusOK, res)
}

// AvailableSubjects lists subjects a student can still enroll in.
func (h *Handler) AvailableSubjects(c *gin.Context) {
	id, ok := pathID(c, "studentId")
	if !ok {
		return
	}
	res, err := h.svc.ListAvailableSubjects(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if res == nil {
		res = []Subject{}
	}
	c.JSON(http.StatusOK, res)
}
