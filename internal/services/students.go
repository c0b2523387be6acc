package services

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Enrollment handles course requests, purchases, ratings and reviews.
type Enrollment struct {
	DB *sqlx.DB
}

// RequestCourse files a student's purchase request for a course. The
// course must be approved, and a student may hold at most one request
// per course.
func (e *Enrollment) RequestCourse(studentID, courseID string) error {
	var status int
	err := e.DB.Get(&status, `SELECT status FROM courses WHERE id = $1`, courseID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrIllegalParameter("Course id is incorrect")
	}
	if err != nil {
		return err
	}
	if !IsBrowsable(Status(status)) {
		return ErrIllegalParameter("Course id is incorrect")
	}

	var exists bool
	err = e.DB.Get(&exists, `
SELECT EXISTS (
  SELECT 1 FROM course_requests WHERE student_id = $1 AND course_id = $2
  UNION ALL
  SELECT 1 FROM purchases WHERE student_id = $1 AND course_id = $2
  LIMIT 1
)
`, studentID, courseID)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateResource("Course already requested")
	}
	_, err = e.DB.Exec(`
INSERT INTO course_requests (id, student_id, course_id, created_at)
VALUES ($1,$2,$3,$4)
`, uuid.NewString(), studentID, courseID, time.Now().UTC())
	return err
}

// RequestedCourses lists the courses a student is waiting on.
func (e *Enrollment) RequestedCourses(studentID string) ([]CourseCommon, error) {
	var courses []CourseCommon
	err := e.DB.Select(&courses, courseCommonSelect+`
JOIN course_requests cr ON cr.course_id = co.id
WHERE cr.student_id = $1
ORDER BY cr.created_at DESC
`, studentID)
	if err != nil {
		return nil, err
	}
	return fillHours(courses), nil
}

// BoughtCourses lists the courses a student has access to.
func (e *Enrollment) BoughtCourses(studentID string) ([]CourseCommon, error) {
	var courses []CourseCommon
	err := e.DB.Select(&courses, courseCommonSelect+`
JOIN purchases p ON p.course_id = co.id
WHERE p.student_id = $1
ORDER BY p.created_at DESC
`, studentID)
	if err != nil {
		return nil, err
	}
	return fillHours(courses), nil
}

type RequestInfo struct {
	ID          string    `db:"id" json:"requestId"`
	StudentName string    `db:"student_name" json:"studentName"`
	CourseID    string    `db:"course_id" json:"courseId"`
	CourseName  string    `db:"course_name" json:"courseName"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// CourseRequests lists pending purchase requests across a teacher's
// courses.
func (e *Enrollment) CourseRequests(teacherID string) ([]RequestInfo, error) {
	var requests []RequestInfo
	err := e.DB.Select(&requests, `
SELECT cr.id, u.first_name || ' ' || u.last_name AS student_name,
       co.id AS course_id, co.name AS course_name, cr.created_at
FROM course_requests cr
JOIN users u ON u.id = cr.student_id
JOIN courses co ON co.id = cr.course_id
WHERE co.teacher_id = $1
ORDER BY cr.created_at ASC
`, teacherID)
	if err != nil {
		return nil, err
	}
	if requests == nil {
		requests = []RequestInfo{}
	}
	return requests, nil
}

// RequestTeacherID resolves the teacher who owns the requested course,
// for the ownership check before approval.
func (e *Enrollment) RequestTeacherID(requestID string) (string, error) {
	var teacherID string
	err := e.DB.Get(&teacherID, `
SELECT co.teacher_id FROM course_requests cr
JOIN courses co ON co.id = cr.course_id
WHERE cr.id = $1
`, requestID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrIllegalParameter("Request id is incorrect")
	}
	return teacherID, err
}

// ApproveRequest converts a request into a purchase atomically.
func (e *Enrollment) ApproveRequest(requestID string) error {
	tx, err := e.DB.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var req struct {
		StudentID string `db:"student_id"`
		CourseID  string `db:"course_id"`
	}
	err = tx.Get(&req, `SELECT student_id, course_id FROM course_requests WHERE id = $1`, requestID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrIllegalParameter("Request id is incorrect")
	}
	if err != nil {
		return err
	}
	_, err = tx.Exec(`
INSERT INTO purchases (id, student_id, course_id, created_at)
VALUES ($1,$2,$3,$4)
`, uuid.NewString(), req.StudentID, req.CourseID, time.Now().UTC())
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM course_requests WHERE id = $1`, requestID); err != nil {
		return err
	}
	return tx.Commit()
}

// IsPaid reports whether the student has purchased the course.
func (e *Enrollment) IsPaid(studentID, courseID string) (bool, error) {
	var paid bool
	err := e.DB.Get(&paid, `
SELECT EXISTS (SELECT 1 FROM purchases WHERE student_id = $1 AND course_id = $2)
`, studentID, courseID)
	return paid, err
}

// AddRating records a 1-5 rating and recomputes the course average in
// one statement. Only buyers may rate.
func (e *Enrollment) AddRating(studentID, courseID string, rating int) error {
	if rating < 1 || rating > 5 {
		return ErrBadRequest("Rating should be 1 - 5")
	}
	if err := e.requirePurchase(studentID, courseID); err != nil {
		return err
	}
	result, err := e.DB.Exec(`
UPDATE purchases SET rating = $1 WHERE student_id = $2 AND course_id = $3
`, rating, studentID, courseID)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrForbidden("Course is not purchased")
	}
	_, err = e.DB.Exec(`
UPDATE courses SET
  rating = (SELECT COALESCE(AVG(rating), 0) FROM purchases WHERE course_id = $1 AND rating IS NOT NULL),
  review_count = (SELECT COUNT(*) FROM purchases WHERE course_id = $1 AND rating IS NOT NULL)
WHERE id = $1
`, courseID)
	return err
}

// AddReview attaches review text to the student's purchase.
func (e *Enrollment) AddReview(studentID, courseID, review string) error {
	if err := e.requirePurchase(studentID, courseID); err != nil {
		return err
	}
	_, err := e.DB.Exec(`
UPDATE purchases SET review = $1 WHERE student_id = $2 AND course_id = $3
`, review, studentID, courseID)
	return err
}

func (e *Enrollment) requirePurchase(studentID, courseID string) error {
	paid, err := e.IsPaid(studentID, courseID)
	if err != nil {
		return err
	}
	if !paid {
		return ErrForbidden("Course is not purchased")
	}
	return nil
}

type ReviewInfo struct {
	StudentName string  `db:"student_name" json:"studentName"`
	Rating      *int    `db:"rating" json:"rating"`
	Review      *string `db:"review" json:"review"`
}

// OwnReview returns the rating and review the student left on a
// purchased course.
func (e *Enrollment) OwnReview(studentID, courseID string) (ReviewInfo, error) {
	var review ReviewInfo
	err := e.DB.Get(&review, `
SELECT u.first_name || ' ' || u.last_name AS student_name, p.rating, p.review
FROM purchases p
JOIN users u ON u.id = p.student_id
WHERE p.student_id = $1 AND p.course_id = $2
`, studentID, courseID)
	if errors.Is(err, sql.ErrNoRows) {
		return ReviewInfo{}, ErrForbidden("Course is not purchased")
	}
	return review, err
}

// Reviews lists ratings and review texts left on a course.
func (e *Enrollment) Reviews(courseID string) ([]ReviewInfo, error) {
	var reviews []ReviewInfo
	err := e.DB.Select(&reviews, `
SELECT u.first_name || ' ' || u.last_name AS student_name, p.rating, p.review
FROM purchases p
JOIN users u ON u.id = p.student_id
WHERE p.course_id = $1 AND (p.rating IS NOT NULL OR p.review IS NOT NULL)
ORDER BY p.created_at DESC
`, courseID)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []ReviewInfo{}
	}
	return reviews, nil
}
