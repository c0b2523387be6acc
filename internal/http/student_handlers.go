package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

func (s *Server) StudentRequestCourse(w http.ResponseWriter, r *http.Request) {
	identity, _ := CurrentIdentity(r)
	if err := s.Enrollment.RequestCourse(identity.UserID, chi.URLParam(r, "courseId")); err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) StudentRequestedCourses(w http.ResponseWriter, r *http.Request) {
	identity, _ := CurrentIdentity(r)
	courses, err := s.Enrollment.RequestedCourses(identity.UserID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, courses)
}

func (s *Server) StudentBoughtCourses(w http.ResponseWriter, r *http.Request) {
	identity, _ := CurrentIdentity(r)
	courses, err := s.Enrollment.BoughtCourses(identity.UserID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, courses)
}

type RatingRequest struct {
	Rating int `json:"rating"`
}

type ReviewRequest struct {
	Review string `json:"review"`
}

func (s *Server) StudentRateCourse(w http.ResponseWriter, r *http.Request) {
	identity, _ := CurrentIdentity(r)
	var req RatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if err := s.Enrollment.AddRating(identity.UserID, chi.URLParam(r, "courseId"), req.Rating); err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) StudentOwnReview(w http.ResponseWriter, r *http.Request) {
	identity, _ := CurrentIdentity(r)
	review, err := s.Enrollment.OwnReview(identity.UserID, chi.URLParam(r, "courseId"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, review)
}

func (s *Server) StudentReviewCourse(w http.ResponseWriter, r *http.Request) {
	identity, _ := CurrentIdentity(r)
	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if strings.TrimSpace(req.Review) == "" {
		WriteError(w, http.StatusBadRequest, "Review is empty")
		return
	}
	if err := s.Enrollment.AddReview(identity.UserID, chi.URLParam(r, "courseId"), req.Review); err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
