package domain

const (
	MailTypeWelcome       = "welcome"
	MailTypeResetPassword = "reset_password"
	MailTypeTaskAssigned  = "task_assigned"
)

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type WelcomeMailData struct {
	Username string `json:"username"`
}

type ResetPasswordMailData struct {
	Username   string `json:"username"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}

type TaskAssignedMailData struct {
	Username   string `json:"username"`
	AssignedBy string `json:"assignedBy"`
	TaskID     int64  `json:"taskId"`
	TaskTitle  string `json:"taskTitle"`
}
