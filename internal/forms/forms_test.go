package forms

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/accounts/internal/auth"
	"github.com/mrlokans/accounts/internal/client"
	"github.com/mrlokans/accounts/internal/entities"
	"github.com/mrlokans/accounts/internal/policy"
)

type fakeAPI struct {
	registerErr  error
	signInResult auth.SignInResult
	signInErr    error

	registerCalls int
	signInCalls   int

	// loadingSeen records the form's Loading flag while a call was in flight.
	loadingSeen []bool
	loading     func() bool
}

func (f *fakeAPI) Register(_ context.Context, in auth.RegisterInput) (*entities.Summary, error) {
	f.registerCalls++
	f.observe()
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &entities.Summary{ID: "id-1", Name: in.Name, Email: in.Email}, nil
}

func (f *fakeAPI) SignIn(_ context.Context, email, _ string) (auth.SignInResult, error) {
	f.signInCalls++
	f.observe()
	if f.signInErr != nil {
		return auth.SignInResult{}, f.signInErr
	}
	return f.signInResult, nil
}

func (f *fakeAPI) observe() {
	if f.loading != nil {
		f.loadingSeen = append(f.loadingSeen, f.loading())
	}
}

var signedIn = auth.SignInResult{
	Status: http.StatusOK,
	User:   &entities.Summary{ID: "id-1", Name: "randomuser", Email: "randomuser@gmail.com"},
}

func validRegisterForm(api *fakeAPI) *RegisterForm {
	f := NewRegisterForm(api)
	f.Name = "randomuser"
	f.Email = "randomuser@gmail.com"
	f.Password = "P@ssword01"
	f.ConfirmPassword = "P@ssword01"
	return f
}

func TestRegisterForm_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(f *RegisterForm)
		wantField string
		wantMsg   string
	}{
		{"short name", func(f *RegisterForm) { f.Name = "abcd" }, policy.FieldName, policy.MsgNameTooShort},
		{"bad email", func(f *RegisterForm) { f.Email = "nope" }, policy.FieldEmail, policy.MsgEmailInvalid},
		{"no number", func(f *RegisterForm) { f.Password, f.ConfirmPassword = "P@ssword", "P@ssword" }, policy.FieldPassword, policy.MsgPasswordNoNumber},
		{"no special", func(f *RegisterForm) { f.Password, f.ConfirmPassword = "Password01", "Password01" }, policy.FieldPassword, policy.MsgPasswordNoSpecial},
		{"no uppercase", func(f *RegisterForm) { f.Password, f.ConfirmPassword = "p@ssword01", "p@ssword01" }, policy.FieldPassword, policy.MsgPasswordNoUpper},
		{"short confirmation", func(f *RegisterForm) { f.ConfirmPassword = "P@s1" }, policy.FieldConfirmPassword, MsgConfirmTooShort},
		{"mismatch", func(f *RegisterForm) { f.ConfirmPassword = "P@ssword02" }, policy.FieldConfirmPassword, policy.MsgPasswordsDontMatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{}
			f := validRegisterForm(api)
			tt.mutate(f)

			assert.Empty(t, f.Submit(context.Background()))
			assert.Contains(t, f.FieldErrors[tt.wantField], tt.wantMsg)
			assert.Zero(t, api.registerCalls, "invalid input must not reach the network")
			assert.False(t, f.Loading)
		})
	}
}

func TestRegisterForm_ValidInputHasNoErrors(t *testing.T) {
	assert.Nil(t, validRegisterForm(&fakeAPI{}).Validate())
}

func TestRegisterForm_SubmitSuccess(t *testing.T) {
	api := &fakeAPI{signInResult: signedIn}
	f := validRegisterForm(api)
	f.Error = "stale"
	api.loading = func() bool { return f.Loading }

	redirect := f.Submit(context.Background())

	assert.Equal(t, RedirectSignupSuccess, redirect)
	assert.Equal(t, 1, api.registerCalls)
	assert.Equal(t, 1, api.signInCalls)
	assert.Equal(t, []bool{true, true}, api.loadingSeen)
	assert.False(t, f.Loading)
	assert.Empty(t, f.Error)
}

func TestRegisterForm_SubmitFailures(t *testing.T) {
	tests := []struct {
		name         string
		registerErr  error
		signInResult auth.SignInResult
		signInErr    error
		wantError    string
		wantEmailErr string
	}{
		{
			name:         "conflict",
			registerErr:  &client.APIError{Status: http.StatusConflict, Message: auth.MsgEmailExists},
			wantEmailErr: MsgEmailRegistered,
		},
		{
			name:        "server error",
			registerErr: &client.APIError{Status: http.StatusInternalServerError, Message: auth.MsgUnexpected},
			wantError:   MsgSomethingWrong,
		},
		{
			name:        "network failure",
			registerErr: &client.NetworkError{Op: "POST /auth/register", Err: errors.New("connection refused")},
			wantError:   MsgSomethingWrong,
		},
		{
			name:      "sign-in transport failure",
			signInErr: &client.NetworkError{Op: "POST /auth/session", Err: errors.New("connection reset")},
			wantError: MsgSomethingWrong,
		},
		{
			name:         "sign-in rejected",
			signInResult: auth.SignInResult{Status: http.StatusUnauthorized, Message: auth.MsgInvalidCredentials},
			wantError:    MsgInvalidLogin,
		},
		{
			name:         "sign-in forbidden",
			signInResult: auth.SignInResult{Status: http.StatusForbidden, Message: "Forbidden - CSRF token invalid"},
			wantError:    MsgSomethingWrong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{registerErr: tt.registerErr, signInResult: tt.signInResult, signInErr: tt.signInErr}
			f := validRegisterForm(api)

			assert.Empty(t, f.Submit(context.Background()))
			assert.Equal(t, tt.wantError, f.Error)
			if tt.wantEmailErr != "" {
				assert.Equal(t, []string{tt.wantEmailErr}, f.FieldErrors[policy.FieldEmail])
			}
			assert.False(t, f.Loading, "submit control must be re-enabled")
		})
	}
}

func TestRegisterForm_ServerFieldErrors(t *testing.T) {
	fields := policy.FieldErrors{policy.FieldName: {policy.MsgNameTooShort}}
	api := &fakeAPI{registerErr: &client.APIError{Status: http.StatusBadRequest, Fields: fields}}
	f := validRegisterForm(api)

	assert.Empty(t, f.Submit(context.Background()))
	assert.Equal(t, fields, f.FieldErrors)
	assert.Empty(t, f.Error)
}

func TestRegisterForm_PasswordVisibility(t *testing.T) {
	f := NewRegisterForm(&fakeAPI{})
	assert.Equal(t, "password", f.PasswordInputType())
	assert.Equal(t, "password", f.ConfirmPasswordInputType())

	f.TogglePasswordVisibility()
	assert.Equal(t, "text", f.PasswordInputType())
	assert.Equal(t, "password", f.ConfirmPasswordInputType(), "toggles are independent")

	f.ToggleConfirmPasswordVisibility()
	f.TogglePasswordVisibility()
	assert.Equal(t, "password", f.PasswordInputType())
	assert.Equal(t, "text", f.ConfirmPasswordInputType())
}

func TestLoginForm_Submit(t *testing.T) {
	tests := []struct {
		name         string
		signInResult auth.SignInResult
		signInErr    error
		wantRedirect string
		wantError    string
		wantStatus   int
	}{
		{name: "success", signInResult: signedIn, wantRedirect: RedirectSignInSuccess},
		{
			name:         "invalid credentials",
			signInResult: auth.SignInResult{Status: http.StatusUnauthorized, Message: auth.MsgInvalidCredentials},
			wantError:    MsgInvalidLogin,
			wantStatus:   http.StatusUnauthorized,
		},
		{
			name:         "locked shows provider message",
			signInResult: auth.SignInResult{Status: http.StatusLocked, Message: auth.MsgAccountLocked},
			wantError:    auth.MsgAccountLocked,
			wantStatus:   http.StatusLocked,
		},
		{
			name:         "throttled shows provider message",
			signInResult: auth.SignInResult{Status: http.StatusTooManyRequests, Message: auth.MsgTooManyAttempts},
			wantError:    auth.MsgTooManyAttempts,
			wantStatus:   http.StatusTooManyRequests,
		},
		{
			name:         "throttled without message",
			signInResult: auth.SignInResult{Status: http.StatusTooManyRequests},
			wantError:    MsgSomethingWrong,
			wantStatus:   http.StatusTooManyRequests,
		},
		{
			name:         "csrf rejection is not a credentials error",
			signInResult: auth.SignInResult{Status: http.StatusForbidden, Message: "Forbidden - CSRF token invalid"},
			wantError:    MsgSomethingWrong,
			wantStatus:   http.StatusForbidden,
		},
		{
			name:         "bad request",
			signInResult: auth.SignInResult{Status: http.StatusBadRequest, Message: "invalid request body"},
			wantError:    MsgSomethingWrong,
			wantStatus:   http.StatusBadRequest,
		},
		{
			name:         "server error",
			signInResult: auth.SignInResult{Status: http.StatusInternalServerError, Message: auth.MsgUnexpected},
			wantError:    MsgSomethingWrong,
			wantStatus:   http.StatusInternalServerError,
		},
		{
			name:      "network failure",
			signInErr: &client.NetworkError{Op: "POST /auth/session", Err: errors.New("no route to host")},
			wantError: MsgSomethingWrong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{signInResult: tt.signInResult, signInErr: tt.signInErr}
			f := NewLoginForm(api)
			f.Email = "randomuser@gmail.com"
			f.Password = "P@ssword01"
			f.Error = "previous error"
			api.loading = func() bool { return f.Loading }

			assert.Equal(t, tt.wantRedirect, f.Submit(context.Background()))
			assert.Equal(t, tt.wantError, f.Error)
			assert.Equal(t, tt.wantStatus, f.Status)
			assert.Equal(t, []bool{true}, api.loadingSeen)
			assert.False(t, f.Loading)
		})
	}
}

func TestLoginForm_RequiresBothFields(t *testing.T) {
	api := &fakeAPI{}
	f := NewLoginForm(api)

	assert.Empty(t, f.Submit(context.Background()))
	require.NotNil(t, f.FieldErrors)
	assert.Equal(t, []string{MsgEmailRequired}, f.FieldErrors[policy.FieldEmail])
	assert.Equal(t, []string{MsgPasswordRequired}, f.FieldErrors[policy.FieldPassword])
	assert.Zero(t, api.signInCalls)
}

func TestLoginForm_PasswordVisibility(t *testing.T) {
	f := NewLoginForm(&fakeAPI{})
	assert.Equal(t, "password", f.PasswordInputType())
	f.TogglePasswordVisibility()
	assert.Equal(t, "text", f.PasswordInputType())
}
