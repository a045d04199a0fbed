package repository

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"gitlab.com/campusworks/claimflow/internal/models"
	"gitlab.com/campusworks/claimflow/internal/store"
)

func setupUserTest(t *testing.T) *UserRepository {
	t.Helper()
	s := store.New[models.User](filepath.Join(t.TempDir(), "users.json"), "users")
	repo := NewUserRepository(s)

	require.NoError(t, s.Save([]models.User{
		{
			Email:    "manager@university.ac.za",
			Name:     "A. Manager",
			Password: "manager123",
			UserType: models.UserTypeAcademicManager,
			IsActive: true,
		},
		{
			Email:    "lecturer@university.ac.za",
			Name:     "T. Lecturer",
			Password: "lecturer123",
			UserType: models.UserTypeLecturer,
			IsActive: true,
		},
		{
			Email:    "retired@university.ac.za",
			Name:     "R. Etired",
			Password: "retired123",
			UserType: models.UserTypeAcademicManager,
			IsActive: false,
		},
	}))
	return repo
}

func TestUserRepository_GetByEmail(t *testing.T) {
	repo := setupUserTest(t)

	t.Run("matches case-insensitively", func(t *testing.T) {
		user, ok := repo.GetByEmail("Manager@University.ac.za")
		require.True(t, ok)
		require.Equal(t, "A. Manager", user.Name)
	})

	t.Run("reports missing users", func(t *testing.T) {
		_, ok := repo.GetByEmail("nobody@university.ac.za")
		require.False(t, ok)
	})
}

func TestUserRepository_GetAcademicManagers(t *testing.T) {
	repo := setupUserTest(t)

	managers := repo.GetAcademicManagers()
	require.Len(t, managers, 1)
	require.Equal(t, "manager@university.ac.za", managers[0].Email)
}

func TestUserRepository_Authenticate(t *testing.T) {
	repo := setupUserTest(t)

	t.Run("accepts matching credentials", func(t *testing.T) {
		require.True(t, repo.Authenticate("lecturer@university.ac.za", "lecturer123"))
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		require.False(t, repo.Authenticate("lecturer@university.ac.za", "wrong"))
	})

	t.Run("rejects inactive accounts", func(t *testing.T) {
		require.False(t, repo.Authenticate("retired@university.ac.za", "retired123"))
	})

	t.Run("rejects unknown accounts", func(t *testing.T) {
		require.False(t, repo.Authenticate("nobody@university.ac.za", "anything"))
	})
}

func TestUserRepository_Add(t *testing.T) {
	repo := setupUserTest(t)

	t.Run("registers a new account", func(t *testing.T) {
		err := repo.Add(&models.User{
			Email:    "new@university.ac.za",
			Name:     "N. Ew",
			Password: "newpass1",
			UserType: models.UserTypeLecturer,
			IsActive: true,
		})
		require.NoError(t, err)

		_, ok := repo.GetByEmail("new@university.ac.za")
		require.True(t, ok)
	})

	t.Run("rejects duplicate emails regardless of case", func(t *testing.T) {
		err := repo.Add(&models.User{Email: "Lecturer@University.ac.za"})
		require.Error(t, err)
	})
}
