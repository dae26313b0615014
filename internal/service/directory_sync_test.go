package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutorhub-api/internal/models"
)

func TestResyncRelationships(t *testing.T) {
	users := []models.User{
		models.NewTeacher("t1", "Ann", "Math"),
		models.NewTeacher("t2", "Dee", ""),
		models.NewStudent("s1", "Bo", "Ann"),
		models.NewStudent("s2", "Cy", "ann"),
		models.NewStudent("s3", "Ed", "Dee"),
		models.NewStudent("s4", "Bo", "Ann"),
		{ID: "s5", Name: "Fay"},
	}

	idx := resyncRelationships(users)

	assert.Equal(t, 2, idx.teachers)
	assert.Equal(t, 5, idx.students)
	assert.Equal(t, []string{"Bo"}, idx.roster("t1"))
	assert.Equal(t, []string{"Ed"}, idx.roster("t2"))
	assert.Equal(t, "Ann", idx.teacherOfStudent["Bo"])
	assert.NotContains(t, idx.teacherOfStudent, "Cy")

	assert.Equal(t, []string{"Bo"}, users[0].Teacher().Students)
	assert.Equal(t, models.DefaultSubject, users[1].Teacher().Subject)
	assert.Empty(t, users[3].Student().TeacherName, "case-sensitive match clears the link")
	require.True(t, users[6].IsStudent())
	assert.False(t, users[6].Student().Assigned())
}

func TestResyncRelationshipsSharedTeacherName(t *testing.T) {
	users := []models.User{
		models.NewTeacher("t1", "Ann", "Math"),
		models.NewTeacher("t2", "Ann", "Art"),
		models.NewStudent("s1", "Bo", "Ann"),
	}

	idx := resyncRelationships(users)

	assert.Equal(t, []string{"Bo"}, idx.roster("t1"))
	assert.Equal(t, []string{"Bo"}, idx.roster("t2"))
}

func TestResyncRelationshipsIsIdempotent(t *testing.T) {
	users := []models.User{
		models.NewTeacher("t1", "Ann", "Math"),
		models.NewStudent("s1", "Bo", "Ann"),
		models.NewStudent("s2", "Cy", "Ghost"),
	}

	first := resyncRelationships(users)
	snapshot := make([]models.User, len(users))
	for i := range users {
		snapshot[i] = users[i].Clone()
	}
	second := resyncRelationships(users)

	assert.Equal(t, first.rosters, second.rosters)
	assert.Equal(t, snapshot, users)
}

func TestRelationshipIndexRosterReturnsCopy(t *testing.T) {
	idx := resyncRelationships([]models.User{
		models.NewTeacher("t1", "Ann", "Math"),
		models.NewStudent("s1", "Bo", "Ann"),
	})

	roster := idx.roster("t1")
	roster[0] = "Changed"
	assert.Equal(t, []string{"Bo"}, idx.roster("t1"))
}
