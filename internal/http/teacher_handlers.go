package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"courseaca-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
)

type CreateCourseRequest struct {
	Name          string  `json:"name"`
	SubcategoryID string  `json:"subcategoryId"`
	Price         float64 `json:"price"`
}

type CreateSectionRequest struct {
	Name string `json:"name"`
}

// TeacherCourses lists the caller's courses; an optional status query
// parameter narrows the list to one lifecycle state.
func (s *Server) TeacherCourses(w http.ResponseWriter, r *http.Request) {
	identity, _ := CurrentIdentity(r)
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := services.ParseStatus(parseInt(raw, 0))
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		page := parseInt(r.URL.Query().Get("page"), 1)
		courses, err := s.Catalog.CoursesByTeacherAndStatus(identity.UserID, status, page)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, courses)
		return
	}
	courses, err := s.Catalog.CoursesByTeacher(identity.UserID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, courses)
}

// TeacherCourseSections lists the course's sections regardless of the
// course status; the ownership guard has already run.
func (s *Server) TeacherCourseSections(w http.ResponseWriter, r *http.Request) {
	sections, err := s.Catalog.Sections(chi.URLParam(r, "courseId"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, sections)
}

func (s *Server) TeacherCourse(w http.ResponseWriter, r *http.Request) {
	course, err := s.Catalog.GetCourseIgnoringStatus(chi.URLParam(r, "courseId"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, course)
}

func (s *Server) TeacherCourseComments(w http.ResponseWriter, r *http.Request) {
	comments, err := s.Catalog.Comments(chi.URLParam(r, "courseId"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, comments)
}

// CreateCourse allocates the course directory first; the catalog row is
// written only after the directory was confirmed new.
func (s *Server) CreateCourse(w http.ResponseWriter, r *http.Request) {
	identity, _ := CurrentIdentity(r)
	var req CreateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	name := strings.TrimSpace(req.Name)
	if err := services.ValidateSegment(name); err != nil {
		WriteServiceError(w, err)
		return
	}
	if req.Price < 0 {
		WriteError(w, http.StatusBadRequest, "Price should not be negative")
		return
	}
	subcategoryName, err := s.Catalog.SubcategoryName(req.SubcategoryID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	categoryName, err := s.Catalog.SubcategoryCategoryName(req.SubcategoryID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	created, err := s.Paths.EnsureCourse(categoryName, subcategoryName, name)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if !created {
		WriteError(w, http.StatusConflict, "Course already exists")
		return
	}
	courseID, err := s.Catalog.CreateCourseRow(name, identity.UserID, req.SubcategoryID, req.Price)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"courseId": courseID})
}

func (s *Server) CreateSection(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseId")
	var req CreateSectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	name := strings.TrimSpace(req.Name)
	if err := services.ValidateSegment(name); err != nil {
		WriteServiceError(w, err)
		return
	}
	path, err := s.Catalog.CoursePathComponents(courseID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	created, err := s.Paths.EnsureSection(path.Category, path.Subcategory, path.Course, name)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if !created {
		WriteError(w, http.StatusConflict, "Section already exists")
		return
	}
	sectionID, err := s.Catalog.CreateSectionRow(name, courseID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"sectionId": sectionID})
}

// UploadItem accepts one multipart file and pushes it through the
// upload pipeline.
func (s *Server) UploadItem(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, services.MaxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		name = header.Filename
	}
	result, err := s.Uploads.Upload(services.UploadRequest{
		CourseID:  chi.URLParam(r, "courseId"),
		SectionID: chi.URLParam(r, "sectionId"),
		Name:      name,
		IsPublic:  r.FormValue("isPublic") == "true",
		FileName:  header.Filename,
		Size:      header.Size,
		Payload:   file,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"itemId":       result.ItemID,
		"resourceType": result.ResourceType,
	})
}

type UpdateDescriptionRequest struct {
	Description string `json:"description"`
}

type UpdatePriceRequest struct {
	Price float64 `json:"price"`
}

func (s *Server) UpdateCourseDescription(w http.ResponseWriter, r *http.Request) {
	var req UpdateDescriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if err := s.Catalog.SetDescription(chi.URLParam(r, "courseId"), req.Description); err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) UpdateCoursePrice(w http.ResponseWriter, r *http.Request) {
	var req UpdatePriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if req.Price < 0 {
		WriteError(w, http.StatusBadRequest, "Price should not be negative")
		return
	}
	if err := s.Catalog.SetPrice(chi.URLParam(r, "courseId"), req.Price); err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) TeacherCourseRequests(w http.ResponseWriter, r *http.Request) {
	identity, _ := CurrentIdentity(r)
	requests, err := s.Enrollment.CourseRequests(identity.UserID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, requests)
}

// ApproveCourseRequest converts a purchase request into a purchase.
// Only the teacher owning the requested course may approve it.
func (s *Server) ApproveCourseRequest(w http.ResponseWriter, r *http.Request) {
	identity, _ := CurrentIdentity(r)
	requestID := chi.URLParam(r, "requestId")
	teacherID, err := s.Enrollment.RequestTeacherID(requestID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if teacherID != identity.UserID {
		WriteError(w, http.StatusForbidden, "Course doesn't belong to this teacher")
		return
	}
	if err := s.Enrollment.ApproveRequest(requestID); err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
