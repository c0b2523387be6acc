package httpapi

import (
	"context"
	"net/http"
	"time"

	"courseaca-backend-go/internal/config"
	"courseaca-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	DB         *sqlx.DB
	Config     config.Config
	Tokens     services.TokenService
	Paths      *services.PathAllocator
	Catalog    *services.Catalog
	Enrollment *services.Enrollment
	Uploads    *services.UploadPipeline
	MetricsHub *services.MetricsHub
}

func NewServer(db *sqlx.DB, cfg config.Config, paths *services.PathAllocator, store *services.ContentStore, hub *services.MetricsHub) *Server {
	tokens := services.TokenService{
		Secret:     []byte(cfg.JWTSecret),
		Issuer:     cfg.JWTIssuer,
		AccessTTL:  time.Duration(cfg.AccessTTLSeconds) * time.Second,
		RefreshTTL: time.Duration(cfg.RefreshTTLSeconds) * time.Second,
	}
	catalog := &services.Catalog{DB: db}
	return &Server{
		DB:         db,
		Config:     cfg,
		Tokens:     tokens,
		Paths:      paths,
		Catalog:    catalog,
		Enrollment: &services.Enrollment{DB: db},
		Uploads:    &services.UploadPipeline{Paths: paths, Store: store, Catalog: catalog},
		MetricsHub: hub,
	}
}

func (s *Server) Router(ctx context.Context) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger)
	if len(s.Config.CorsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.Config.CorsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/register", s.Register)
		api.Post("/auth/login", s.Login)
		api.Post("/auth/refresh", s.Refresh)
		api.Post("/auth/logout", s.Logout)
		api.With(WithAuth(s.Tokens)).Get("/auth/me", s.UserInfo)

		api.Route("/public", func(pub chi.Router) {
			pub.Use(WithOptionalAuth(s.Tokens))
			pub.Get("/categories", s.PublicCategories)
			pub.Get("/subcategories/{subcategoryId}/courses", s.PublicCoursesBySubcategory)
			pub.Get("/courses/popular", s.PublicPopularCourses)
			pub.Get("/teachers/{teacherId}/courses", s.PublicTeacherCourses)
			pub.Get("/courses/{courseId}", s.PublicCourse)
			pub.Get("/courses/{courseId}/sections", s.PublicCourseSections)
			pub.Get("/courses/{courseId}/reviews", s.PublicCourseReviews)
			pub.Get("/sections/{sectionId}/items", s.PublicSectionItems)
			pub.Get("/items/{itemId}/content", s.ItemContent)
		})

		api.Route("/student", func(student chi.Router) {
			student.Use(WithAuth(s.Tokens))
			student.Use(RequireRole(services.RoleStudent))
			student.Post("/courses/{courseId}/request", s.StudentRequestCourse)
			student.Get("/courses/requested", s.StudentRequestedCourses)
			student.Get("/courses/bought", s.StudentBoughtCourses)
			student.Post("/courses/{courseId}/rating", s.StudentRateCourse)
			student.Post("/courses/{courseId}/review", s.StudentReviewCourse)
			student.Get("/courses/{courseId}/review", s.StudentOwnReview)
		})

		api.Route("/teacher", func(teacher chi.Router) {
			teacher.Use(WithAuth(s.Tokens))
			teacher.Use(RequireRole(services.RoleTeacher))
			teacher.Get("/courses", s.TeacherCourses)
			teacher.Post("/courses", s.CreateCourse)
			teacher.Get("/requests", s.TeacherCourseRequests)
			teacher.Post("/requests/{requestId}/approve", s.ApproveCourseRequest)

			teacher.Route("/courses/{courseId}", func(course chi.Router) {
				course.Use(RequireCourseOwner(s.Catalog))
				course.Get("/", s.TeacherCourse)
				course.Get("/comments", s.TeacherCourseComments)
				course.Get("/sections", s.TeacherCourseSections)
				course.Post("/sections", s.CreateSection)
				course.Post("/sections/{sectionId}/items", s.UploadItem)
				course.Put("/description", s.UpdateCourseDescription)
				course.Put("/price", s.UpdateCoursePrice)
			})
		})

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(WithAuth(s.Tokens))
			admin.Use(RequireRole(services.RoleAdmin))
			admin.Post("/categories", s.AdminCreateCategory)
			admin.Post("/subcategories", s.AdminCreateSubcategory)
			admin.Get("/courses/pending", s.AdminPendingCourses)
			admin.Get("/courses/disapproved", s.AdminDisapprovedCourses)
			admin.Get("/courses/{courseId}", s.AdminCourse)
			admin.Get("/courses/{courseId}/sections", s.AdminCourseSections)
			admin.Put("/courses/{courseId}/status", s.AdminChangeCourseStatus)
			admin.Get("/courses/{courseId}/comments", s.AdminCourseComments)
			admin.Post("/courses/{courseId}/comments", s.AdminAddComment)
			admin.Delete("/comments/{commentId}", s.AdminDeleteComment)
			admin.Get("/metrics/history", s.MetricsHistory)
		})
	})

	r.Get("/ws/metrics", s.MetricsSocket)
	return r
}
