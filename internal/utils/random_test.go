package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/task-tracker/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

func TestGenerateRandomOTP(t *testing.T) {
	for i := 0; i < 100; i++ {
		otp := GenerateRandomOTP()
		require.Len(t, otp, 6)
		for _, c := range otp {
			assert.True(t, c >= '0' && c <= '9', otp)
		}
	}
}

func TestGenerateRandomUser(t *testing.T) {
	user, err := GenerateRandomUser("Passw0rd", "example.com")
	require.NoError(t, err)

	assert.Regexp(t, `^[a-z]+[0-9]{2,4}$`, user.Username)
	assert.Equal(t, user.Username+"@example.com", user.Email)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("Passw0rd")))
}

func TestGenerateRandomTask(t *testing.T) {
	creator := &domain.User{ID: 1}
	candidates := []*domain.User{{ID: 2}, {ID: 3}}

	for i := 0; i < 50; i++ {
		task := GenerateRandomTask(creator, candidates)
		assert.Equal(t, int64(1), task.CreatedBy)
		assert.NotEmpty(t, task.Title)
		assert.LessOrEqual(t, len(task.Title), 100)
		assert.Contains(t, domain.TaskStatuses, task.Status)
		assert.Contains(t, domain.TaskPriorities, task.Priority)
		if task.AssignedTo != nil {
			assert.Contains(t, []int64{2, 3}, *task.AssignedTo)
		}
	}

	task := GenerateRandomTask(creator, nil)
	assert.Nil(t, task.AssignedTo)
}
