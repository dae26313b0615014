package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tutorhub-api/internal/models"
	"github.com/noah-isme/tutorhub-api/internal/repository"
	appErrors "github.com/noah-isme/tutorhub-api/pkg/errors"
)

// Guest identity returned when the directory holds no users at all.
const (
	GuestUserID   = "guest-user"
	GuestUserName = "Гость"
)

type directoryRepository interface {
	List(ctx context.Context) ([]models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByName(ctx context.Context, name string) (*models.User, error)
	SaveAll(ctx context.Context, users []models.User) error
}

// UpdateUserRequest represents a self-edit of the current user.
type UpdateUserRequest struct {
	Name *string          `json:"name"`
	Role *models.UserRole `json:"role" validate:"omitempty,oneof=teacher student"`
}

// AddStudentRequest names a student to put on the current teacher's roster.
type AddStudentRequest struct {
	Name string `json:"name" validate:"required"`
}

// EnrollRequest carries the student side of an enrollment.
type EnrollRequest struct {
	StudentID string `json:"student_id" validate:"required"`
}

// SwitchUserRequest selects which stored user acts as the current identity.
type SwitchUserRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// DirectoryOptions carries optional collaborators for DirectoryService.
type DirectoryOptions struct {
	CurrentUserID string
	Latency       time.Duration
	NewStudentID  func() string
	Cache         *CacheService
	Metrics       *MetricsService
}

// DirectoryService owns the teacher/student directory. Every operation runs
// under one mutex, and every mutation ends with a full resync before it
// returns, so callers always observe a consistent directory.
type DirectoryService struct {
	repo         directoryRepository
	validator    *validator.Validate
	logger       *zap.Logger
	cache        *CacheService
	metrics      *MetricsService
	latency      time.Duration
	newStudentID func() string

	mu            sync.Mutex
	currentUserID string
	index         relationshipIndex
}

// NewDirectoryService constructs the service and runs the initial resync.
func NewDirectoryService(ctx context.Context, repo directoryRepository, validate *validator.Validate, logger *zap.Logger, opts DirectoryOptions) (*DirectoryService, error) {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.NewStudentID == nil {
		return nil, errors.New("directory: student id generator is required")
	}
	if opts.CurrentUserID == "" {
		opts.CurrentUserID = repository.DefaultCurrentUserID
	}
	s := &DirectoryService{
		repo:          repo,
		validator:     validate,
		logger:        logger,
		cache:         opts.Cache,
		metrics:       opts.Metrics,
		latency:       opts.Latency,
		newStudentID:  opts.NewStudentID,
		currentUserID: opts.CurrentUserID,
	}

	users, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.commit(ctx, users); err != nil {
		return nil, err
	}
	return s, nil
}

// GetCurrentUser returns the current identity. When the configured id no
// longer resolves it falls back to the first student, then the first teacher,
// and makes that user current; with an empty directory it returns a guest.
func (s *DirectoryService) GetCurrentUser(ctx context.Context) (*models.User, error) {
	if err := simulateLatency(ctx, s.latency); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.repo.FindByID(ctx, s.currentUserID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load current user")
	}

	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	if fallback := firstWithRole(users, models.RoleStudent, models.RoleTeacher); fallback != nil {
		s.logger.Warn("current user not found, falling back",
			zap.String("missing_id", s.currentUserID), zap.String("fallback_id", fallback.ID))
		s.currentUserID = fallback.ID
		return fallback, nil
	}

	s.logger.Warn("directory is empty, returning guest", zap.String("missing_id", s.currentUserID))
	guest := models.NewStudent(GuestUserID, GuestUserName, "")
	return &guest, nil
}

// SwitchCurrentUser makes the stored user with id the current identity.
func (s *DirectoryService) SwitchCurrentUser(ctx context.Context, req SwitchUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid identity payload")
	}
	if err := simulateLatency(ctx, s.latency); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.findUser(ctx, strings.TrimSpace(req.UserID), "user not found")
	if err != nil {
		return nil, err
	}
	s.currentUserID = user.ID
	s.logger.Info("current user switched", zap.String("user_id", user.ID), zap.String("role", string(user.Role())))
	return user, nil
}

// UpdateUser edits the current user's name and/or role. A teacher rename is
// carried to every student referencing the old name within the same call.
func (s *DirectoryService) UpdateUser(ctx context.Context, req UpdateUserRequest) (_ *models.User, err error) {
	defer func() { s.metrics.RecordDirectoryMutation("update_user", err) }()

	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}
	if err := simulateLatency(ctx, s.latency); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.repo.FindByID(ctx, s.currentUserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.logger.Error("current user missing during update", zap.String("user_id", s.currentUserID))
			return nil, appErrors.Wrap(err, appErrors.ErrCurrentUserMissing.Code, appErrors.ErrCurrentUserMissing.Status, appErrors.ErrCurrentUserMissing.Message)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load current user")
	}

	oldName, wasTeacher := current.Name, current.IsTeacher()
	updated := current.Clone()
	renamed := false
	if req.Name != nil {
		if name := strings.TrimSpace(*req.Name); name != "" && name != current.Name {
			updated.Name = name
			renamed = true
		}
	}
	if req.Role != nil {
		updated = updated.WithRole(*req.Role)
	}

	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	rewritten := 0
	for i := range users {
		if users[i].ID == updated.ID {
			users[i] = updated
			continue
		}
		if !renamed || !wasTeacher {
			continue
		}
		if student := users[i].Student(); student != nil && student.TeacherName == oldName {
			student.TeacherName = updated.Name
			rewritten++
		}
	}

	if err := s.commit(ctx, users); err != nil {
		return nil, err
	}

	result := findInList(users, updated.ID)
	s.logger.Info("user updated",
		zap.String("user_id", result.ID),
		zap.String("role", string(result.Role())),
		zap.Bool("renamed", renamed),
		zap.Int("students_relinked", rewritten))
	return result, nil
}

// GetStudentsForTeacher returns the derived roster for teacherID. Unknown ids
// and teachers without students yield an empty list.
func (s *DirectoryService) GetStudentsForTeacher(ctx context.Context, teacherID string) ([]string, error) {
	if err := simulateLatency(ctx, s.latency); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := cacheKeyRosterPrefix + teacherID
	var cached []string
	if s.cache.Get(ctx, key, &cached) {
		return append([]string{}, cached...), nil
	}
	roster := s.index.roster(teacherID)
	s.cache.Set(ctx, key, roster)
	return roster, nil
}

// AddStudentToTeacherList puts req.Name on the current teacher's roster. An
// existing student is reassigned to this teacher; an unknown name becomes a
// new student. Returns the teacher's updated roster.
func (s *DirectoryService) AddStudentToTeacherList(ctx context.Context, req AddStudentRequest) (_ []string, err error) {
	defer func() { s.metrics.RecordDirectoryMutation("add_student", err) }()

	if err := simulateLatency(ctx, s.latency); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	teacher, err := s.repo.FindByID(ctx, s.currentUserID)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load current user")
	}
	if teacher == nil || !teacher.IsTeacher() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "current user is not a teacher")
	}

	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "student name must not be empty")
	}
	name := req.Name

	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}

	existing, err := s.repo.FindByName(ctx, name)
	switch {
	case err == nil && existing.IsTeacher():
		return nil, appErrors.Clone(appErrors.ErrConflict, "user \""+name+"\" is a teacher and cannot be added as a student")
	case err == nil:
		findInListRef(users, existing.ID).Student().TeacherName = teacher.Name
		s.logger.Info("student reassigned", zap.String("student_id", existing.ID), zap.String("teacher_id", teacher.ID))
	case errors.Is(err, repository.ErrUserNotFound):
		student := models.NewStudent(s.newStudentID(), name, teacher.Name)
		users = append(users, student)
		s.logger.Info("student created", zap.String("student_id", student.ID), zap.String("teacher_id", teacher.ID))
	default:
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up student")
	}

	if err := s.commit(ctx, users); err != nil {
		return nil, err
	}
	return s.index.roster(teacher.ID), nil
}

// GetTeachers returns every teacher with their derived roster.
func (s *DirectoryService) GetTeachers(ctx context.Context) ([]models.User, error) {
	if err := simulateLatency(ctx, s.latency); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var cached []models.User
	if s.cache.Get(ctx, cacheKeyTeachers, &cached) {
		return cached, nil
	}

	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	teachers := make([]models.User, 0, s.index.teachers)
	for _, u := range users {
		if u.IsTeacher() {
			teachers = append(teachers, u)
		}
	}
	s.cache.Set(ctx, cacheKeyTeachers, teachers)
	return teachers, nil
}

// EnrollStudentWithTeacher links studentID to teacherID by writing the
// teacher's current name onto the student. Returns the updated student.
func (s *DirectoryService) EnrollStudentWithTeacher(ctx context.Context, studentID, teacherID string) (_ *models.User, err error) {
	defer func() { s.metrics.RecordDirectoryMutation("enroll", err) }()

	if err := simulateLatency(ctx, s.latency); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	student, err := s.findUser(ctx, studentID, "student not found")
	if err != nil {
		return nil, err
	}
	teacher, err := s.findUser(ctx, teacherID, "teacher not found")
	if err != nil {
		return nil, err
	}
	if !student.IsStudent() {
		return nil, appErrors.Clone(appErrors.ErrRoleMismatch, "only students can enroll with a teacher")
	}
	if !teacher.IsTeacher() {
		return nil, appErrors.Clone(appErrors.ErrRoleMismatch, "enrollment target must be a teacher")
	}

	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	findInListRef(users, student.ID).Student().TeacherName = teacher.Name

	if err := s.commit(ctx, users); err != nil {
		return nil, err
	}
	s.logger.Info("student enrolled", zap.String("student_id", student.ID), zap.String("teacher_id", teacher.ID))
	return findInList(users, student.ID), nil
}

// commit resyncs users, writes them back and swaps in the new index. Callers hold s.mu.
func (s *DirectoryService) commit(ctx context.Context, users []models.User) error {
	start := time.Now()
	idx := resyncRelationships(users)
	if err := s.repo.SaveAll(ctx, users); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save directory")
	}
	s.index = idx
	s.metrics.ObserveResync(time.Since(start), idx.teachers, idx.students)
	s.cache.Invalidate(ctx, cachePatternAll)
	return nil
}

func (s *DirectoryService) findUser(ctx context.Context, id, notFound string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, notFound)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

func firstWithRole(users []models.User, roles ...models.UserRole) *models.User {
	for _, role := range roles {
		for i := range users {
			if users[i].Role() == role {
				u := users[i].Clone()
				return &u
			}
		}
	}
	return nil
}

// findInListRef returns a pointer into users so the caller can edit in place.
func findInListRef(users []models.User, id string) *models.User {
	for i := range users {
		if users[i].ID == id {
			return &users[i]
		}
	}
	return nil
}

func findInList(users []models.User, id string) *models.User {
	ref := findInListRef(users, id)
	if ref == nil {
		return nil
	}
	cp := ref.Clone()
	return &cp
}
