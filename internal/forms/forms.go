// Package forms holds the client-side state of the registration and login
// forms. Input is validated with the same rules the server applies, so an
// invalid form never reaches the network.
package forms

import (
	"context"
	"log"
	"net/http"

	"github.com/mrlokans/accounts/internal/auth"
	"github.com/mrlokans/accounts/internal/client"
	"github.com/mrlokans/accounts/internal/entities"
	"github.com/mrlokans/accounts/internal/policy"
)

// Messages shown near the submit control.
const (
	MsgEmailRegistered  = "The provided email address is already registered."
	MsgInvalidLogin     = "Invalid login credentials"
	MsgSomethingWrong   = "Oops! Something went wrong. Please try again later."
	MsgConfirmTooShort  = "Confirm Password must be at least 6 characters long"
	MsgEmailRequired    = "Email is required"
	MsgPasswordRequired = "Password is required"
)

// Where a successful submission sends the user.
const (
	RedirectSignupSuccess = "/?signup=success"
	RedirectSignInSuccess = "/?signin=success"
)

// API is the server surface the forms submit to. *client.Client implements it.
type API interface {
	Register(ctx context.Context, in auth.RegisterInput) (*entities.Summary, error)
	SignIn(ctx context.Context, email, password string) (auth.SignInResult, error)
}

// state is shared by both forms.
type state struct {
	Loading     bool
	Error       string
	FieldErrors policy.FieldErrors
	// Status is the HTTP status of the last failed response, 0 when none was received.
	Status int
}

func (s *state) begin() {
	s.Loading = true
	s.Error = ""
	s.FieldErrors = nil
	s.Status = 0
}

// signInError maps a failed sign-in to the message shown to the user.
// Only 401 means the credentials were wrong.
func signInError(result auth.SignInResult) string {
	switch result.Status {
	case http.StatusUnauthorized:
		return MsgInvalidLogin
	case http.StatusLocked, http.StatusTooManyRequests:
		if result.Message != "" {
			return result.Message
		}
		return MsgSomethingWrong
	default:
		return MsgSomethingWrong
	}
}

func inputType(visible bool) string {
	if visible {
		return "text"
	}
	return "password"
}

// RegisterForm is one session of the registration form.
type RegisterForm struct {
	state

	Name            string
	Email           string
	Password        string
	ConfirmPassword string

	PasswordVisible        bool
	ConfirmPasswordVisible bool

	api API
}

func NewRegisterForm(api API) *RegisterForm {
	return &RegisterForm{api: api}
}

func (f *RegisterForm) TogglePasswordVisibility() {
	f.PasswordVisible = !f.PasswordVisible
}

func (f *RegisterForm) ToggleConfirmPasswordVisibility() {
	f.ConfirmPasswordVisible = !f.ConfirmPasswordVisible
}

// PasswordInputType is "text" while the password is shown, else "password".
func (f *RegisterForm) PasswordInputType() string {
	return inputType(f.PasswordVisible)
}

func (f *RegisterForm) ConfirmPasswordInputType() string {
	return inputType(f.ConfirmPasswordVisible)
}

// Validate returns every field violation, or nil when the form can be submitted.
func (f *RegisterForm) Validate() policy.FieldErrors {
	fields := policy.FieldErrors{}
	if verr := policy.ValidateRegistration(policy.Registration{
		Name:     f.Name,
		Email:    f.Email,
		Password: f.Password,
	}); verr != nil {
		fields = verr.Fields
	}

	if len([]rune(f.ConfirmPassword)) < policy.MinPasswordLength {
		fields.Add(policy.FieldConfirmPassword, MsgConfirmTooShort)
	}
	if msg := policy.ValidateConfirmation(f.Password, f.ConfirmPassword); msg != "" {
		fields.Add(policy.FieldConfirmPassword, msg)
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}

// Submit registers the account and signs it in. It returns the redirect
// target on success and an empty string otherwise, leaving the reason in
// Error or FieldErrors.
func (f *RegisterForm) Submit(ctx context.Context) string {
	if fields := f.Validate(); fields != nil {
		f.Error = ""
		f.FieldErrors = fields
		return ""
	}

	f.begin()
	defer func() { f.Loading = false }()

	_, err := f.api.Register(ctx, auth.RegisterInput{
		Name:     f.Name,
		Email:    f.Email,
		Password: f.Password,
	})
	if err != nil {
		f.applyRegisterError(err)
		return ""
	}

	result, err := f.api.SignIn(ctx, f.Email, f.Password)
	if err != nil {
		log.Printf("sign-in after registration failed: %v", err)
		f.Error = MsgSomethingWrong
		return ""
	}
	if result.Status != http.StatusOK {
		f.Status = result.Status
		f.Error = signInError(result)
		return ""
	}
	return RedirectSignupSuccess
}

func (f *RegisterForm) applyRegisterError(err error) {
	apiErr, ok := client.AsAPIError(err)
	if !ok {
		log.Printf("registration request failed: %v", err)
		f.Error = MsgSomethingWrong
		return
	}

	f.Status = apiErr.Status
	switch apiErr.Status {
	case http.StatusConflict:
		f.FieldErrors = policy.FieldErrors{}
		f.FieldErrors.Add(policy.FieldEmail, MsgEmailRegistered)
	case http.StatusBadRequest:
		if len(apiErr.Fields) > 0 {
			f.FieldErrors = apiErr.Fields
			return
		}
		f.Error = MsgSomethingWrong
	default:
		f.Error = MsgSomethingWrong
	}
}

// LoginForm is one session of the login form.
type LoginForm struct {
	state

	Email    string
	Password string

	PasswordVisible bool

	api API
}

func NewLoginForm(api API) *LoginForm {
	return &LoginForm{api: api}
}

func (f *LoginForm) TogglePasswordVisibility() {
	f.PasswordVisible = !f.PasswordVisible
}

func (f *LoginForm) PasswordInputType() string {
	return inputType(f.PasswordVisible)
}

// Validate only requires both fields. Format rules are not applied at login.
func (f *LoginForm) Validate() policy.FieldErrors {
	fields := policy.FieldErrors{}
	if f.Email == "" {
		fields.Add(policy.FieldEmail, MsgEmailRequired)
	}
	if f.Password == "" {
		fields.Add(policy.FieldPassword, MsgPasswordRequired)
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// Submit signs in and returns the redirect target, or an empty string with
// the reason left in Error.
func (f *LoginForm) Submit(ctx context.Context) string {
	if fields := f.Validate(); fields != nil {
		f.Error = ""
		f.FieldErrors = fields
		return ""
	}

	f.begin()
	defer func() { f.Loading = false }()

	result, err := f.api.SignIn(ctx, f.Email, f.Password)
	if err != nil {
		log.Printf("sign-in request failed: %v", err)
		f.Error = MsgSomethingWrong
		return ""
	}
	if result.Status != http.StatusOK {
		f.Status = result.Status
		f.Error = signInError(result)
		return ""
	}
	return RedirectSignInSuccess
}
