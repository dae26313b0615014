package repository

import "github.com/noah-isme/tutorhub-api/internal/models"

// DefaultCurrentUserID is the seed identity treated as logged in.
const DefaultCurrentUserID = "user456"

// SeedUsers returns the demo directory. Student rosters are left empty; the
// directory derives them from each student's teacher name on first sync.
func SeedUsers() []models.User {
	return []models.User{
		models.NewTeacher("user123", "Алексей Петров", "Математика"),
		models.NewStudent("user456", "Иван Иванов", "Алексей Петров"),
		models.NewStudent("user789", "Мария Сидорова", "Алексей Петров"),
		models.NewTeacher("userABC", "Елена Васильева", "Физика"),
		models.NewStudent("userDEF", "Петр Алексеев", "Елена Васильева"),
		models.NewStudent("userGHI", "Ольга Павлова", ""),
		models.NewTeacher("userJKL", "Константин Смирнов", "Химия"),
		models.NewStudent("userMNO", "Сергей Николаев", ""),
		models.NewTeacher("userPQR", "Виктория Попова", "Информатика"),
		models.NewTeacher("userSTU", "Ирина Михайлова", "Биология"),
		models.NewTeacher("userVWX", "Дмитрий Фёдоров", "История"),
		models.NewTeacher("userYZA", "Анна Кузнецова", "Литература"),
		models.NewStudent("userBCD", "Максим Лебедев", ""),
	}
}
