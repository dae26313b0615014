package models

// DefaultSubject is assigned to teachers that have no subject yet.
const DefaultSubject = "Не указан"

// TeacherProfile holds teacher-only fields. Students is derived by the
// directory resync and is never written by callers.
type TeacherProfile struct {
	Subject  string
	Students []string
}

// Role implements Profile.
func (p *TeacherProfile) Role() UserRole { return RoleTeacher }

func (p *TeacherProfile) cloneProfile() Profile {
	cp := *p
	cp.Students = append([]string{}, p.Students...)
	return &cp
}

func (p *TeacherProfile) normalize() {
	if p.Subject == "" {
		p.Subject = DefaultSubject
	}
	if p.Students == nil {
		p.Students = []string{}
	}
}
