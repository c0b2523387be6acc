package services

// Guards are pure interceptors: they run before the wrapped operation
// touches any state, and on failure the operation never runs. RoleGuard
// is always checked before OwnershipGuard where both apply.

// SessionResolver maps a bearer token to an identity.
type SessionResolver interface {
	ResolveIdentity(token string) (Identity, error)
}

// CourseOwners resolves the owning teacher of a course. Implementations
// return an IllegalParameter error when the course does not exist.
type CourseOwners interface {
	CourseTeacherID(courseID string) (string, error)
}

// RoleGuard admits callers whose role is in the allowed set.
type RoleGuard struct {
	Allowed []Role
}

func RequireRoles(roles ...Role) RoleGuard {
	return RoleGuard{Allowed: roles}
}

func (g RoleGuard) Check(id Identity) error {
	for _, role := range g.Allowed {
		if id.Role == role {
			return nil
		}
	}
	return ErrForbidden("Not allowed")
}

// OwnershipGuard admits a teacher acting on a course they own. Lookup
// failures surface as-is so callers can tell a malformed course id from
// a denial.
type OwnershipGuard struct {
	Courses CourseOwners
}

func (g OwnershipGuard) Check(id Identity, courseID string) error {
	if id.Role != RoleTeacher {
		return ErrForbidden("Not allowed")
	}
	teacherID, err := g.Courses.CourseTeacherID(courseID)
	if err != nil {
		return err
	}
	if teacherID != id.UserID {
		return ErrForbidden("Course doesn't belong to this teacher")
	}
	return nil
}
