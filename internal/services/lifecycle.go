package services

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Course status values. Approved is a sink: once a course reaches it,
// neither its status nor its admin comments may change again.
type Status int

const (
	StatusApproved    Status = 1
	StatusDisapproved Status = 2
	StatusPending     Status = 3
)

func ParseStatus(raw int) (Status, error) {
	if raw < 1 || raw > 3 {
		return 0, ErrBadRequest("Status value should be 1 - 3")
	}
	return Status(raw), nil
}

// IsBrowsable reports whether the course is visible on anonymous and
// student-facing read paths.
func IsBrowsable(status Status) bool {
	return status == StatusApproved
}

// CanTransition reports whether the course may leave its current status.
func CanTransition(current Status) error {
	if current == StatusApproved {
		return ErrCourseLocked("Course is approved")
	}
	return nil
}

// CanComment mirrors CanTransition: approved courses take no new
// admin comments.
func CanComment(current Status) error {
	if current == StatusApproved {
		return ErrCourseLocked("Course is approved")
	}
	return nil
}

func CourseStatus(db *sqlx.DB, courseID string) (Status, error) {
	var status int
	err := db.Get(&status, `SELECT status FROM courses WHERE id = $1`, courseID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrIllegalParameter("Course id is incorrect")
	}
	if err != nil {
		return 0, err
	}
	return Status(status), nil
}

// TransitionCourse overwrites the course status. The approved lock is
// enforced inside the statement so a concurrent approval cannot slip a
// late transition through; the target is assumed range-checked at the
// boundary.
func TransitionCourse(db *sqlx.DB, courseID string, target Status) error {
	result, err := db.Exec(`
UPDATE courses SET status = $1 WHERE id = $2 AND status <> $3
`, int(target), courseID, int(StatusApproved))
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		current, err := CourseStatus(db, courseID)
		if err != nil {
			return err
		}
		return CanTransition(current)
	}
	return nil
}

// AttachComment inserts the comment only while its course is still
// unapproved, in one statement.
func AttachComment(db *sqlx.DB, courseID, comment string) (string, error) {
	commentID := uuid.NewString()
	result, err := db.Exec(`
INSERT INTO admin_comments (id, course_id, comment, created_at)
SELECT $1, $2, $3, $4
WHERE EXISTS (SELECT 1 FROM courses WHERE id = $2 AND status <> $5)
`, commentID, courseID, comment, time.Now().UTC(), int(StatusApproved))
	if err != nil {
		return "", err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return "", err
	}
	if rows == 0 {
		current, err := CourseStatus(db, courseID)
		if err != nil {
			return "", err
		}
		if err := CanComment(current); err != nil {
			return "", err
		}
		return "", ErrIllegalParameter("Course id is incorrect")
	}
	return commentID, nil
}

// DeleteComment removes an admin comment unless its course is already
// approved; comments freeze together with the status. The lock rides
// in the statement; the lookups below only classify a zero-row result.
func DeleteComment(db *sqlx.DB, commentID string) error {
	result, err := db.Exec(`
DELETE FROM admin_comments USING courses
WHERE admin_comments.id = $1
  AND courses.id = admin_comments.course_id
  AND courses.status <> $2
`, commentID, int(StatusApproved))
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}
	var courseID string
	err = db.Get(&courseID, `SELECT course_id FROM admin_comments WHERE id = $1`, commentID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound("Comment not found")
	}
	if err != nil {
		return err
	}
	current, err := CourseStatus(db, courseID)
	if err != nil {
		return err
	}
	return CanComment(current)
}
