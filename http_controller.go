package accounts

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
	"github.com/nyaruka/phonenumbers"
)

// AccountController exposes the account lifecycle over HTTP. Every
// handler binds a payload, runs its validation rules, delegates to a
// command handler, and maps the outcome onto the response envelope.
type AccountController struct {
	Debug  bool
	Logger Logger

	guard *RouteGuard

	register *RegisterUserHandler
	verify   *VerifyAccountHandler
	login    *LoginHandler
	logout   *LogoutHandler
	forgot   *ForgotPasswordHandler
	confirm  *ConfirmPasswordHandler
	reset    *ResetPasswordHandler

	repo RepositoryManager
}

type AccountControllerOption func(*AccountController) *AccountController

func WithControllerLogger(l Logger) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		if l != nil {
			c.Logger = l
		}
		return c
	}
}

func WithControllerDebug(debug bool) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.Debug = debug
		return c
	}
}

func NewAccountController(
	repo RepositoryManager,
	guard *RouteGuard,
	register *RegisterUserHandler,
	verify *VerifyAccountHandler,
	login *LoginHandler,
	logout *LogoutHandler,
	forgot *ForgotPasswordHandler,
	confirm *ConfirmPasswordHandler,
	reset *ResetPasswordHandler,
	opts ...AccountControllerOption,
) *AccountController {
	c := &AccountController{
		Logger:   defLogger{},
		repo:     repo,
		guard:    guard,
		register: register,
		verify:   verify,
		login:    login,
		logout:   logout,
		forgot:   forgot,
		confirm:  confirm,
		reset:    reset,
	}

	for _, opt := range opts {
		c = opt(c)
	}

	return c
}

// RegisterAccountRoutes mounts the account API on the app.
func RegisterAccountRoutes(app *fiber.App, c *AccountController) {
	app.Get("/", c.Home)

	auth := app.Group("/api/auth")
	auth.Post("/signup", c.Signup)
	auth.Post("/verify", c.Verify)
	auth.Get("/verify/:uid/:token", c.VerifyLink)
	auth.Post("/login", c.Login)
	auth.Post("/password/forgot", c.ForgotPassword)
	auth.Post("/password/confirm", c.ConfirmPassword)

	protected := c.guard.Protect(ResourceUsers)
	auth.Post("/logout", protected, c.Logout)
	auth.Post("/password/reset", protected, c.ResetPassword)

	me := app.Group("/api/me", protected)
	me.Get("/", c.Profile)
	me.Post("/", c.UpdateProfile)
	me.Put("/", c.UpdateProfile)
}

// Home is a plain liveness banner.
func (a *AccountController) Home(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString("<h1>Welcome to Accounts</h1>")
}

// SignupPayload is the registration request body.
type SignupPayload struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Password   string `json:"password"`
	DeviceType string `json:"device_type"`
}

func (r SignupPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.LastName, validation.Length(0, 100)),
		validation.Field(&r.Email, validation.Required, EmailFormat),
		validation.Field(&r.Phone, validation.By(validatePhone)),
		validation.Field(&r.Password, validation.Required, PasswordStrength),
		validation.Field(&r.DeviceType, validation.In(
			DeviceAndroid,
			DeviceIOS,
			DeviceWeb,
		)),
	)
}

func (a *AccountController) Signup(c *fiber.Ctx) error {
	payload := new(SignupPayload)

	if err := c.BodyParser(payload); err != nil {
		return Failure(c, fiber.StatusBadRequest, MsgBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return ValidationFailure(c, err)
	}

	if a.Debug {
		fmt.Println("======= ACCOUNT SIGNUP ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=============================")
	}

	msg := RegisterUserMessage{
		FirstName:  payload.FirstName,
		LastName:   payload.LastName,
		Email:      payload.Email,
		Phone:      payload.Phone,
		Password:   payload.Password,
		DeviceType: payload.DeviceType,
	}

	if err := a.register.Execute(c.UserContext(), msg); err != nil {
		return FailureFromError(c, err)
	}

	return Success(c, fiber.StatusOK, MsgNewUserCreated, fiber.Map{
		"email": payload.Email,
	})
}

// VerifyPayload carries the uid and token from the verification link.
type VerifyPayload struct {
	UID   string `json:"uid"`
	Token string `json:"token"`
}

func (r VerifyPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UID, validation.Required),
		validation.Field(&r.Token, validation.Required),
	)
}

func (a *AccountController) Verify(c *fiber.Ctx) error {
	payload := new(VerifyPayload)

	if err := c.BodyParser(payload); err != nil {
		return Failure(c, fiber.StatusBadRequest, MsgBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return ValidationFailure(c, err)
	}

	return a.verifyAccount(c, payload.UID, payload.Token)
}

// VerifyLink serves the GET form of the emailed verification URL.
func (a *AccountController) VerifyLink(c *fiber.Ctx) error {
	return a.verifyAccount(c, c.Params("uid"), c.Params("token"))
}

func (a *AccountController) verifyAccount(c *fiber.Ctx, uid, token string) error {
	var out *VerifyAccountResponse

	msg := VerifyAccountMessage{
		UID:   uid,
		Token: token,
		OnResponse: func(resp *VerifyAccountResponse) {
			out = resp
		},
	}

	if err := a.verify.Execute(c.UserContext(), msg); err != nil {
		return FailureFromError(c, err)
	}

	if out != nil && out.AlreadyVerified {
		return Success(c, fiber.StatusOK, MsgAlreadyVerified, nil)
	}

	return Success(c, fiber.StatusOK, MsgAccountVerified, nil)
}

// LoginPayload is the credential pair.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AccountController) Login(c *fiber.Ctx) error {
	payload := new(LoginPayload)

	if err := c.BodyParser(payload); err != nil {
		return Failure(c, fiber.StatusBadRequest, MsgBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return ValidationFailure(c, err)
	}

	var out *LoginResponse

	msg := LoginMessage{
		Email:    payload.Email,
		Password: payload.Password,
		OnResponse: func(resp *LoginResponse) {
			out = resp
		},
	}

	if err := a.login.Execute(c.UserContext(), msg); err != nil {
		return FailureFromError(c, err)
	}

	if out == nil || out.Token == nil {
		return Failure(c, fiber.StatusInternalServerError, MsgInternalServerError)
	}

	return Success(c, fiber.StatusOK, MsgUserLoggedIn, fiber.Map{
		"token":      out.Token.Key,
		"user_id":    out.User.ID,
		"user_type":  out.User.Role,
		"email":      out.User.Email,
		"first_name": out.User.FirstName,
		"last_name":  out.User.LastName,
		"photo":      out.User.ProfilePhoto,
	})
}

func (a *AccountController) Logout(c *fiber.Ctx) error {
	user, ok := UserFromFiber(c)
	if !ok {
		return Failure(c, fiber.StatusUnauthorized, MsgUnauthorized)
	}

	msg := LogoutMessage{User: user}

	if err := a.logout.Execute(c.UserContext(), msg); err != nil {
		return FailureFromError(c, err)
	}

	return Success(c, fiber.StatusOK, MsgUserLoggedOut, nil)
}

// ForgotPasswordPayload starts the recovery flow.
type ForgotPasswordPayload struct {
	Email string `json:"email"`
}

func (r ForgotPasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (a *AccountController) ForgotPassword(c *fiber.Ctx) error {
	payload := new(ForgotPasswordPayload)

	if err := c.BodyParser(payload); err != nil {
		return Failure(c, fiber.StatusBadRequest, MsgBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return ValidationFailure(c, err)
	}

	msg := ForgotPasswordMessage{Email: payload.Email}

	if err := a.forgot.Execute(c.UserContext(), msg); err != nil {
		return FailureFromError(c, err)
	}

	return Success(c, fiber.StatusCreated, MsgMailSent, nil)
}

// ConfirmPasswordPayload completes the recovery flow.
type ConfirmPasswordPayload struct {
	Email       string `json:"email"`
	OTP         int    `json:"otp"`
	NewPassword string `json:"new_password"`
}

func (r ConfirmPasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.OTP, validation.Required),
		validation.Field(&r.NewPassword, validation.Required),
	)
}

func (a *AccountController) ConfirmPassword(c *fiber.Ctx) error {
	payload := new(ConfirmPasswordPayload)

	if err := c.BodyParser(payload); err != nil {
		return Failure(c, fiber.StatusBadRequest, MsgBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return ValidationFailure(c, err)
	}

	msg := ConfirmPasswordMessage{
		Email:       payload.Email,
		OTP:         payload.OTP,
		NewPassword: payload.NewPassword,
	}

	if err := a.confirm.Execute(c.UserContext(), msg); err != nil {
		return FailureFromError(c, err)
	}

	return Success(c, fiber.StatusOK, MsgPasswordUpdated, nil)
}

// ResetPasswordPayload is the authenticated password change.
type ResetPasswordPayload struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (r ResetPasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OldPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required),
	)
}

func (a *AccountController) ResetPassword(c *fiber.Ctx) error {
	user, ok := UserFromFiber(c)
	if !ok {
		return Failure(c, fiber.StatusUnauthorized, MsgUnauthorized)
	}

	payload := new(ResetPasswordPayload)

	if err := c.BodyParser(payload); err != nil {
		return Failure(c, fiber.StatusBadRequest, MsgBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return ValidationFailure(c, err)
	}

	msg := ResetPasswordMessage{
		User:        user,
		OldPassword: payload.OldPassword,
		NewPassword: payload.NewPassword,
	}

	if err := a.reset.Execute(c.UserContext(), msg); err != nil {
		return FailureFromError(c, err)
	}

	return Success(c, fiber.StatusCreated, MsgPasswordUpdated, nil)
}

func (a *AccountController) Profile(c *fiber.Ctx) error {
	user, ok := UserFromFiber(c)
	if !ok {
		return Failure(c, fiber.StatusUnauthorized, MsgUnauthorized)
	}

	return Success(c, fiber.StatusOK, MsgDetailsFetched, user)
}

// UpdateProfilePayload is a partial profile update; empty fields keep
// their stored values.
type UpdateProfilePayload struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Phone        string `json:"phone"`
	ProfilePhoto string `json:"profile_photo"`
	Gender       string `json:"gender"`
	DateOfBirth  string `json:"date_of_birth"`
	DeviceType   string `json:"device_type"`
}

func (r UpdateProfilePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Length(0, 100)),
		validation.Field(&r.LastName, validation.Length(0, 100)),
		validation.Field(&r.Phone, validation.By(validatePhone)),
		validation.Field(&r.Gender, validation.In(
			GenderMale,
			GenderFemale,
			GenderOther,
			GenderUnknown,
		)),
		validation.Field(&r.DateOfBirth, validation.Date("2006-01-02")),
		validation.Field(&r.DeviceType, validation.In(
			DeviceAndroid,
			DeviceIOS,
			DeviceWeb,
		)),
	)
}

func (a *AccountController) UpdateProfile(c *fiber.Ctx) error {
	user, ok := UserFromFiber(c)
	if !ok {
		return Failure(c, fiber.StatusUnauthorized, MsgUnauthorized)
	}

	payload := new(UpdateProfilePayload)

	if err := c.BodyParser(payload); err != nil {
		return Failure(c, fiber.StatusBadRequest, MsgBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return ValidationFailure(c, err)
	}

	record := &User{
		ID:           user.ID,
		FirstName:    payload.FirstName,
		LastName:     payload.LastName,
		Phone:        payload.Phone,
		ProfilePhoto: payload.ProfilePhoto,
		Gender:       payload.Gender,
		DeviceType:   payload.DeviceType,
	}

	if payload.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", payload.DateOfBirth)
		if err != nil {
			return Failure(c, fiber.StatusBadRequest, MsgBadRequest)
		}
		record.DateOfBirth = &dob
	}

	updated, err := a.repo.Users().UpdateProfile(c.UserContext(), record)
	if err != nil {
		return FailureFromError(c, err)
	}

	return Success(c, fiber.StatusOK, MsgDetailsUpdated, updated)
}

// validatePhone accepts E.164-ish numbers in any region the parser
// recognizes. Empty means "not provided".
func validatePhone(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}

	num, err := phonenumbers.Parse(s, "US")
	if err != nil {
		return fmt.Errorf("invalid phone number")
	}

	if !phonenumbers.IsValidNumber(num) {
		return fmt.Errorf("invalid phone number")
	}

	return nil
}
