package service

import "github.com/noah-isme/tutorhub-api/internal/models"

// relationshipIndex is the derived view of the directory. It is rebuilt from
// scratch on every resync and never written any other way.
type relationshipIndex struct {
	rosters          map[string][]string // teacher id -> student names
	teacherOfStudent map[string]string   // student name -> teacher name
	teachers         int
	students         int
}

func (idx relationshipIndex) roster(teacherID string) []string {
	return append([]string{}, idx.rosters[teacherID]...)
}

// resyncRelationships normalizes users in place and derives the index.
//
// A student's TeacherName is the only stored link. It is cleared when it does
// not name an existing teacher exactly. Each teacher's Students becomes the
// de-duplicated names of students pointing at that teacher's current name, in
// directory order. Users sharing a name all match; see DESIGN.md.
func resyncRelationships(users []models.User) relationshipIndex {
	teacherNames := make(map[string]struct{})
	for i := range users {
		if users[i].Profile == nil {
			users[i].Profile = &models.StudentProfile{}
		}
		if users[i].IsTeacher() {
			teacherNames[users[i].Name] = struct{}{}
		}
	}

	idx := relationshipIndex{
		rosters:          make(map[string][]string),
		teacherOfStudent: make(map[string]string),
	}
	byTeacher := make(map[string][]string)
	seen := make(map[string]map[string]struct{})

	for i := range users {
		student := users[i].Student()
		if student == nil {
			continue
		}
		idx.students++
		if student.TeacherName == "" {
			continue
		}
		if _, ok := teacherNames[student.TeacherName]; !ok {
			student.TeacherName = ""
			continue
		}
		name := users[i].Name
		idx.teacherOfStudent[name] = student.TeacherName
		if seen[student.TeacherName] == nil {
			seen[student.TeacherName] = make(map[string]struct{})
		}
		if _, dup := seen[student.TeacherName][name]; dup {
			continue
		}
		seen[student.TeacherName][name] = struct{}{}
		byTeacher[student.TeacherName] = append(byTeacher[student.TeacherName], name)
	}

	for i := range users {
		teacher := users[i].Teacher()
		if teacher == nil {
			continue
		}
		idx.teachers++
		if teacher.Subject == "" {
			teacher.Subject = models.DefaultSubject
		}
		teacher.Students = append([]string{}, byTeacher[users[i].Name]...)
		idx.rosters[users[i].ID] = append([]string{}, teacher.Students...)
	}

	return idx
}
