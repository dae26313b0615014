package models

// StudentProfile holds student-only fields. TeacherName is the single source
// of truth for the student/teacher link; empty means no teacher assigned.
type StudentProfile struct {
	TeacherName string
}

// Role implements Profile.
func (p *StudentProfile) Role() UserRole { return RoleStudent }

// Assigned reports whether the student references a teacher.
func (p *StudentProfile) Assigned() bool { return p.TeacherName != "" }

func (p *StudentProfile) cloneProfile() Profile {
	cp := *p
	return &cp
}
