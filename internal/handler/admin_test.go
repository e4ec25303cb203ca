package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/task-tracker/backend/internal/domain"
)

func TestAdminEndpoints(t *testing.T) {
	w := newTaskWorld(t)
	w.store.AddTask("assigned", w.u1.ID, &w.u2.ID)
	w.store.AddTask("solo", w.u2.ID, nil)

	for _, path := range []string{"/api/v1/admin/users", "/api/v1/admin/tasks"} {
		status, _ := w.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, status, path)

		status, env := w.do(t, http.MethodGet, path, w.u1Token, nil)
		assert.Equal(t, http.StatusForbidden, status, path)
		assert.Equal(t, "Access denied. Admin privileges required", env.Message)
	}

	status, env := w.do(t, http.MethodGet, "/api/v1/admin/users", w.aTok, nil)
	require.Equal(t, http.StatusOK, status)
	users := decodeData[struct {
		Users []domain.User `json:"users"`
	}](t, env).Users
	assert.Len(t, users, 3)
	assert.NotContains(t, string(env.Data), "passwordHash")

	status, env = w.do(t, http.MethodGet, "/api/v1/admin/tasks", w.aTok, nil)
	require.Equal(t, http.StatusOK, status)
	tasks := decodeData[struct {
		Tasks []struct {
			Title          string              `json:"title"`
			CreatedByUser  *domain.UserSummary `json:"createdByUser"`
			AssignedToUser *domain.UserSummary `json:"assignedToUser"`
		} `json:"tasks"`
	}](t, env).Tasks
	require.Len(t, tasks, 2)

	assert.Equal(t, "assigned", tasks[0].Title)
	require.NotNil(t, tasks[0].CreatedByUser)
	assert.Equal(t, "alice", tasks[0].CreatedByUser.Username)
	require.NotNil(t, tasks[0].AssignedToUser)
	assert.Equal(t, "bob", tasks[0].AssignedToUser.Username)

	assert.Equal(t, "solo", tasks[1].Title)
	assert.Nil(t, tasks[1].AssignedToUser)
}

func TestAdminRevokedTokenIsUnauthenticated(t *testing.T) {
	w := newTaskWorld(t)

	status, _ := w.do(t, http.MethodPost, "/api/v1/auth/logout", w.aTok, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = w.do(t, http.MethodGet, "/api/v1/admin/users", w.aTok, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}
