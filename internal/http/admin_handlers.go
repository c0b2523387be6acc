package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"courseaca-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
)

type CreateCategoryRequest struct {
	Name string `json:"name"`
}

type CreateSubcategoryRequest struct {
	Name       string `json:"name"`
	CategoryID string `json:"categoryId"`
}

// AdminCreateCategory allocates the category directory before writing
// the row; an existing directory means the name is taken.
func (s *Server) AdminCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	name := strings.TrimSpace(req.Name)
	if err := services.ValidateSegment(name); err != nil {
		WriteServiceError(w, err)
		return
	}
	created, err := s.Paths.EnsureCategory(name)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if !created {
		WriteError(w, http.StatusConflict, "Category already exists")
		return
	}
	categoryID, err := s.Catalog.CreateCategoryRow(name)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"categoryId": categoryID})
}

func (s *Server) AdminCreateSubcategory(w http.ResponseWriter, r *http.Request) {
	var req CreateSubcategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	name := strings.TrimSpace(req.Name)
	if err := services.ValidateSegment(name); err != nil {
		WriteServiceError(w, err)
		return
	}
	categoryName, err := s.Catalog.CategoryName(req.CategoryID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	created, err := s.Paths.EnsureSubcategory(categoryName, name)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if !created {
		WriteError(w, http.StatusConflict, "Subcategory already exists")
		return
	}
	subcategoryID, err := s.Catalog.CreateSubcategoryRow(name, req.CategoryID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"subcategoryId": subcategoryID})
}

func (s *Server) AdminPendingCourses(w http.ResponseWriter, r *http.Request) {
	page := parseInt(r.URL.Query().Get("page"), 1)
	courses, err := s.Catalog.CoursesByStatus(services.StatusPending, page)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, courses)
}

func (s *Server) AdminDisapprovedCourses(w http.ResponseWriter, r *http.Request) {
	page := parseInt(r.URL.Query().Get("page"), 1)
	courses, err := s.Catalog.CoursesByStatus(services.StatusDisapproved, page)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, courses)
}

func (s *Server) AdminCourse(w http.ResponseWriter, r *http.Request) {
	course, err := s.Catalog.GetCourseIgnoringStatus(chi.URLParam(r, "courseId"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, course)
}

// AdminCourseSections lists sections of any course, approved or not.
func (s *Server) AdminCourseSections(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseId")
	if _, err := s.Catalog.GetCourseIgnoringStatus(courseID); err != nil {
		WriteServiceError(w, err)
		return
	}
	sections, err := s.Catalog.Sections(courseID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, sections)
}

type ChangeStatusRequest struct {
	Status int `json:"status"`
}

// AdminChangeCourseStatus moves a course between lifecycle states.
// Approved courses are final and reject any further change.
func (s *Server) AdminChangeCourseStatus(w http.ResponseWriter, r *http.Request) {
	var req ChangeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	target, err := services.ParseStatus(req.Status)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if err := services.TransitionCourse(s.DB, chi.URLParam(r, "courseId"), target); err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type AddCommentRequest struct {
	Comment string `json:"comment"`
}

func (s *Server) AdminAddComment(w http.ResponseWriter, r *http.Request) {
	var req AddCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if strings.TrimSpace(req.Comment) == "" {
		WriteError(w, http.StatusBadRequest, "Comment is empty")
		return
	}
	if len(req.Comment) > 255 {
		WriteError(w, http.StatusBadRequest, "Comment should be at most 255 characters")
		return
	}
	commentID, err := services.AttachComment(s.DB, chi.URLParam(r, "courseId"), req.Comment)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"commentId": commentID})
}

func (s *Server) AdminCourseComments(w http.ResponseWriter, r *http.Request) {
	comments, err := s.Catalog.Comments(chi.URLParam(r, "courseId"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, comments)
}

func (s *Server) AdminDeleteComment(w http.ResponseWriter, r *http.Request) {
	if err := services.DeleteComment(s.DB, chi.URLParam(r, "commentId")); err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
