package models

import (
	"encoding/json"
	"fmt"
)

// UserRole names the variant a user record belongs to.
type UserRole string

const (
	RoleTeacher UserRole = "teacher"
	RoleStudent UserRole = "student"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	return r == RoleTeacher || r == RoleStudent
}

// Profile is the role-specific half of a user. Only *TeacherProfile and
// *StudentProfile implement it, so a record can never mix both field sets.
type Profile interface {
	Role() UserRole
	cloneProfile() Profile
}

// User is a directory identity. Name doubles as the key students use to
// reference their teacher.
type User struct {
	ID      string
	Name    string
	Profile Profile
}

// NewTeacher builds a teacher record; an empty subject becomes DefaultSubject.
func NewTeacher(id, name, subject string) User {
	p := &TeacherProfile{Subject: subject, Students: []string{}}
	p.normalize()
	return User{ID: id, Name: name, Profile: p}
}

// NewStudent builds a student record; an empty teacherName means unassigned.
func NewStudent(id, name, teacherName string) User {
	return User{ID: id, Name: name, Profile: &StudentProfile{TeacherName: teacherName}}
}

// Role returns the role of the attached profile. A user without a profile is
// treated as a student.
func (u User) Role() UserRole {
	if u.Profile == nil {
		return RoleStudent
	}
	return u.Profile.Role()
}

// IsTeacher reports whether u carries a teacher profile.
func (u User) IsTeacher() bool {
	_, ok := u.Profile.(*TeacherProfile)
	return ok
}

// IsStudent reports whether u carries a student profile.
func (u User) IsStudent() bool {
	_, ok := u.Profile.(*StudentProfile)
	return ok
}

// Teacher returns the teacher profile, or nil for students.
func (u User) Teacher() *TeacherProfile {
	p, _ := u.Profile.(*TeacherProfile)
	return p
}

// Student returns the student profile, or nil for teachers.
func (u User) Student() *StudentProfile {
	p, _ := u.Profile.(*StudentProfile)
	return p
}

// WithRole returns a copy of u switched to role. Switching to the current role
// keeps the profile; switching away starts from a fresh profile of the new kind.
func (u User) WithRole(role UserRole) User {
	out := u.Clone()
	if out.Role() == role && out.Profile != nil {
		return out
	}
	switch role {
	case RoleTeacher:
		out.Profile = &TeacherProfile{Subject: DefaultSubject, Students: []string{}}
	default:
		out.Profile = &StudentProfile{}
	}
	return out
}

// Clone returns a deep copy safe to hand out of a store.
func (u User) Clone() User {
	out := u
	if u.Profile != nil {
		out.Profile = u.Profile.cloneProfile()
	}
	return out
}

type userJSON struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Role            UserRole  `json:"role"`
	Subject         *string   `json:"subject,omitempty"`
	Students        *[]string `json:"students,omitempty"`
	TeacherName     *string   `json:"teacher_name,omitempty"`
	TeacherAssigned *bool     `json:"teacher_assigned,omitempty"`
}

// MarshalJSON flattens the profile into role-specific fields.
func (u User) MarshalJSON() ([]byte, error) {
	out := userJSON{ID: u.ID, Name: u.Name, Role: u.Role()}
	switch p := u.Profile.(type) {
	case *TeacherProfile:
		subject := p.Subject
		students := append([]string{}, p.Students...)
		out.Subject = &subject
		out.Students = &students
	case *StudentProfile:
		assigned := p.Assigned()
		out.TeacherAssigned = &assigned
		if assigned {
			name := p.TeacherName
			out.TeacherName = &name
		}
	default:
		assigned := false
		out.TeacherAssigned = &assigned
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores the profile from the flat representation.
func (u *User) UnmarshalJSON(data []byte) error {
	var in userJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	u.ID = in.ID
	u.Name = in.Name
	switch in.Role {
	case RoleTeacher:
		p := &TeacherProfile{Students: []string{}}
		if in.Subject != nil {
			p.Subject = *in.Subject
		}
		if in.Students != nil {
			p.Students = append(p.Students, *in.Students...)
		}
		u.Profile = p
	case RoleStudent, "":
		p := &StudentProfile{}
		if in.TeacherName != nil {
			p.TeacherName = *in.TeacherName
		}
		u.Profile = p
	default:
		return fmt.Errorf("unknown role %q", in.Role)
	}
	return nil
}
