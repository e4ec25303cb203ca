package validation

const (
	msgEmail          = "Please provide a valid email"
	msgPasswordLength = "Password must be at least 6 characters long"
	msgPasswordStrong = "Password must contain at least one lowercase letter, one uppercase letter, and one number"
)

var (
	RegisterRules = NewRuleSet("register",
		Field("username").
			Check("min=3,max=30", "Username must be between 3 and 30 characters").
			Check("alphanum", "Username must be alphanumeric"),
		Field("email").
			Check("email", msgEmail).
			NormalizeEmail(),
		Field("password").
			Check("min=6", msgPasswordLength).
			Check("strongpassword", msgPasswordStrong),
	)

	// LoginRules never checks password strength, so a failed login tells
	// nothing about the registration policy.
	LoginRules = NewRuleSet("login",
		Field("email").
			Check("email", msgEmail).
			NormalizeEmail(),
		Field("password").
			Check("required", "Password is required"),
	)

	TaskRules = NewRuleSet("task",
		Field("title").
			Trim().
			Check("min=1,max=100", "Title must be between 1 and 100 characters"),
		Field("description").
			Trim().
			Check("min=1,max=1000", "Description must be between 1 and 1000 characters"),
		Field("status").
			Check("oneof=pending in-progress completed", "Invalid status"),
		Field("priority").
			Check("oneof=low medium high", "Invalid priority"),
		Field("dueDate").
			Optional().
			Trim().
			Check("iso8601", "Invalid date format"),
	)

	ResetPasswordRequireRules = NewRuleSet("reset-password-require",
		Field("email").
			Check("email", msgEmail).
			NormalizeEmail(),
	)

	ResetPasswordConfirmRules = NewRuleSet("reset-password-confirm",
		Field("email").
			Check("email", msgEmail).
			NormalizeEmail(),
		Field("otp").
			Check("len=6,numeric", ""),
		Field("password").
			Check("min=6", msgPasswordLength).
			Check("strongpassword", msgPasswordStrong),
	)
)
