package authserver

import "errors"

var (
	ErrUsernameTaken      = errors.New("username already exists")
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrInvalidToken       = errors.New("could not validate token")
	ErrUserNotFound       = errors.New("user not found")
)

// ValidationError lists the request fields that failed validation.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return "invalid request"
	}
	return e.Problems[0]
}

// Detail strings sent to clients.
var details = map[error]string{
	ErrUsernameTaken:      "Username already exists",
	ErrEmailTaken:         "Email already exists",
	ErrInvalidCredentials: "Incorrect username or password",
	ErrInvalidToken:       "Could not validate tokens",
	ErrUserNotFound:       "User not found",
}
