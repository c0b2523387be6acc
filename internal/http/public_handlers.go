package httpapi

import (
	"mime"
	"net/http"
	"path/filepath"

	"courseaca-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
)

func (s *Server) PublicCategories(w http.ResponseWriter, r *http.Request) {
	tree, err := s.Catalog.CategoryTree()
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, tree)
}

func (s *Server) PublicCoursesBySubcategory(w http.ResponseWriter, r *http.Request) {
	page := parseInt(r.URL.Query().Get("page"), 1)
	courses, err := s.Catalog.CoursesBySubcategory(chi.URLParam(r, "subcategoryId"), page)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, courses)
}

func (s *Server) PublicPopularCourses(w http.ResponseWriter, r *http.Request) {
	page := parseInt(r.URL.Query().Get("page"), 1)
	courses, err := s.Catalog.PopularCourses(page)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, courses)
}

// PublicTeacherCourses lists a teacher's approved courses.
func (s *Server) PublicTeacherCourses(w http.ResponseWriter, r *http.Request) {
	page := parseInt(r.URL.Query().Get("page"), 1)
	courses, err := s.Catalog.ApprovedCoursesByTeacher(chi.URLParam(r, "teacherId"), page)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, courses)
}

func (s *Server) PublicCourse(w http.ResponseWriter, r *http.Request) {
	course, err := s.Catalog.GetCourse(chi.URLParam(r, "courseId"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, course)
}

func (s *Server) PublicCourseSections(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseId")
	if _, err := s.Catalog.GetCourse(courseID); err != nil {
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

// PublicSectionItems lists a section's items. Anonymous callers and
// non-buyers see only the public ones; buyers, the owning teacher and
// admins see everything.
func (s *Server) PublicSectionItems(w http.ResponseWriter, r *http.Request) {
	sectionID := chi.URLParam(r, "sectionId")
	courseID, err := s.Catalog.SectionCourseID(sectionID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	full, err := s.hasFullAccess(r, courseID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if full {
		items, err := s.Catalog.SectionItems(sectionID)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, items)
		return
	}
	course, err := s.Catalog.GetCourseIgnoringStatus(courseID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if !services.IsBrowsable(services.Status(course.Status)) {
		WriteError(w, http.StatusForbidden, "Not allowed")
		return
	}
	items, err := s.Catalog.PublicSectionItems(sectionID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, items)
}

func (s *Server) PublicCourseReviews(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseId")
	if _, err := s.Catalog.GetCourse(courseID); err != nil {
		WriteServiceError(w, err)
		return
	}
	reviews, err := s.Enrollment.Reviews(courseID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, reviews)
}

// ItemContent streams an item's file. Public items of approved courses
// are open; everything else requires a purchase, ownership, or the
// admin role.
func (s *Server) ItemContent(w http.ResponseWriter, r *http.Request) {
	loc, err := s.Catalog.ItemLocation(chi.URLParam(r, "itemId"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	open := loc.IsPublic && services.IsBrowsable(services.Status(loc.Status))
	if !open {
		full, err := s.hasFullAccess(r, loc.CourseID)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		if !full {
			WriteError(w, http.StatusForbidden, "Not allowed")
			return
		}
	}
	path, err := s.Paths.ItemPath(loc.Category, loc.Subcategory, loc.Course, loc.Section, loc.ResourceName)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	contentType := mime.TypeByExtension(filepath.Ext(loc.ResourceName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `inline; filename="`+loc.ResourceName+`"`)
	http.ServeFile(w, r, path)
}

// hasFullAccess reports whether the caller may read non-public content
// of the course: its owning teacher, any admin, or a buyer.
func (s *Server) hasFullAccess(r *http.Request, courseID string) (bool, error) {
	identity, ok := CurrentIdentity(r)
	if !ok {
		return false, nil
	}
	switch identity.Role {
	case services.RoleAdmin:
		return true, nil
	case services.RoleTeacher:
		teacherID, err := s.Catalog.CourseTeacherID(courseID)
		if err != nil {
			return false, err
		}
		return teacherID == identity.UserID, nil
	case services.RoleStudent:
		return s.Enrollment.IsPaid(identity.UserID, courseID)
	}
	return false, nil
}
