package repository

import (
	"fmt"
	"strings"
	"sync"

	"gitlab.com/campusworks/claimflow/internal/models"
	"gitlab.com/campusworks/claimflow/internal/store"
)

// UserRepository reads the users container. The container format (including
// its plaintext passwords) is consumed as-is and not redesigned here.
type UserRepository struct {
	mu    sync.Mutex
	store *store.Store[models.User]
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(s *store.Store[models.User]) *UserRepository {
	return &UserRepository{store: s}
}

// GetByEmail returns the user with the given email, case-insensitively.
func (r *UserRepository) GetByEmail(email string) (*models.User, bool) {
	users := r.store.Load()
	for i := range users {
		if strings.EqualFold(users[i].Email, email) {
			return &users[i], true
		}
	}
	return nil, false
}

// GetAcademicManagers returns all active academic managers.
func (r *UserRepository) GetAcademicManagers() []models.User {
	var managers []models.User
	for _, u := range r.store.Load() {
		if u.UserType == models.UserTypeAcademicManager && u.IsActive {
			managers = append(managers, u)
		}
	}
	return managers
}

// Authenticate checks credentials against the stored account. Plaintext
// comparison matches the existing container contents.
func (r *UserRepository) Authenticate(email, password string) bool {
	user, ok := r.GetByEmail(email)
	if !ok {
		return false
	}
	return user.Password == password && user.IsActive
}

// Add registers a new account. Fails when the email is already taken.
func (r *UserRepository) Add(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users := r.store.Load()
	for i := range users {
		if strings.EqualFold(users[i].Email, user.Email) {
			return fmt.Errorf("user %s already exists", user.Email)
		}
	}
	users = append(users, *user)
	if err := r.store.Save(users); err != nil {
		return fmt.Errorf("failed to add user: %w", err)
	}
	return nil
}
