package utils

import (
	crand "crypto/rand"
	"fmt"
	"math/big"
	"math/rand"
	"time"

	"github.com/sysu-ecnc-dev/task-tracker/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var firstNames = []string{
	"alice", "bob", "carol", "dave", "erin", "frank", "grace", "heidi", "ivan", "judy",
	"mallory", "niaj", "olivia", "peggy", "rupert", "sybil", "trent", "victor", "walter", "yuki",
}

var digits = "0123456789"

func GenerateRandomUsername() string {
	username := firstNames[rand.Intn(len(firstNames))]

	digitsLength := rand.Intn(3) + 2
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	username := GenerateRandomUsername()
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		Email:        username + "@" + emailDomainName,
		Role:         domain.RoleUser,
	}

	return user, nil
}

// GenerateRandomOTP returns a six digit code from crypto/rand; it guards a
// password reset.
func GenerateRandomOTP() string {
	n, err := crand.Int(crand.Reader, big.NewInt(1000000))
	if err != nil {
		// crypto/rand does not fail on supported platforms
		panic(err)
	}
	return fmt.Sprintf("%06d", n.Int64())
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")

func GenerateRandomID(letterLength int, digitLength int) string {
	random_id := make([]rune, letterLength+digitLength)
	for i := range random_id {
		if i < letterLength {
			random_id[i] = letters[rand.Intn(len(letters))]
		} else {
			random_id[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(random_id)
}

var verbs = []string{"Write", "Review", "Fix", "Plan", "Test", "Deploy", "Document", "Refactor"}
var subjects = []string{"login page", "release notes", "database backup", "API docs", "invoice export", "search index"}

// GenerateRandomTask creates a task owned by creator, assigned to one of the
// candidates about half of the time.
func GenerateRandomTask(creator *domain.User, candidates []*domain.User) *domain.Task {
	task := &domain.Task{
		Title:       verbs[rand.Intn(len(verbs))] + " " + subjects[rand.Intn(len(subjects))],
		Description: "Task description " + GenerateRandomID(12, 4),
		Status:      domain.TaskStatuses[rand.Intn(len(domain.TaskStatuses))],
		Priority:    domain.TaskPriorities[rand.Intn(len(domain.TaskPriorities))],
		CreatedBy:   creator.ID,
	}

	if rand.Intn(3) > 0 {
		due := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, rand.Intn(30)+1)
		task.DueDate = &due
	}

	if len(candidates) > 0 && rand.Intn(2) == 0 {
		assignee := candidates[rand.Intn(len(candidates))]
		task.AssignedTo = &assignee.ID
	}

	return task
}
