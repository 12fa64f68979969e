package account

import (
	goerr "errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/ondo-app/account/social"
)

// Controller exposes the account use cases over HTTP.
type Controller struct {
	Logger   Logger
	Service  *AccountService
	Sessions *SessionAuthority
	Provider social.Provider
}

type ControllerOption func(*Controller) *Controller

func NewController(opts ...ControllerOption) *Controller {
	c := &Controller{
		Logger: defLogger{},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Service == nil {
		panic("Missing AccountService in controller...")
	}

	if c.Sessions == nil {
		panic("Missing SessionAuthority in controller...")
	}

	return c
}

func WithControllerLogger(logger Logger) ControllerOption {
	return func(c *Controller) *Controller {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerService(svc *AccountService) ControllerOption {
	return func(c *Controller) *Controller {
		c.Service = svc
		return c
	}
}

func WithControllerSessions(sessions *SessionAuthority) ControllerOption {
	return func(c *Controller) *Controller {
		c.Sessions = sessions
		return c
	}
}

func WithControllerProvider(provider social.Provider) ControllerOption {
	return func(c *Controller) *Controller {
		c.Provider = provider
		return c
	}
}

// RegisterRoutes mounts the account API under /user.
func (a *Controller) RegisterRoutes(app *fiber.App) {
	user := app.Group("/user")

	user.Post("/signup", a.Signup)
	user.Get("/dup_check/:id", a.DupCheck)
	user.Post("/login", a.Login)
	user.Post("/find/id", a.FindID)
	user.Post("/check/inform", a.CheckInform)
	user.Put("/find/password", a.FindPassword)

	if a.Provider != nil {
		user.Get("/oauth/kakao", a.OAuthLogin)
		user.Post("/oauth/signup", a.OAuthSignup)
	}

	guard := RequireSession(a.Sessions)

	user.Get("/token", guard, a.CheckToken)
	user.Put("/reset/password", guard, a.ResetPassword)
	user.Put("/reset/phone", guard, a.ResetPhone)
	user.Post("/check/pw", guard, a.CheckPassword)
	user.Delete("/withdrawal", guard, a.Withdrawal)
	user.Get("/notifications", guard, a.ListNotifications)
	user.Put("/notification/:id/enable", guard, a.EnableNotification)
	user.Put("/notification/:id/disable", guard, a.DisableNotification)
	user.Post("/device/token", guard, a.RegisterDeviceToken)
}

// SignupPayload is the local registration body.
type SignupPayload struct {
	ID       string `json:"id"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Gender   string `json:"gender"`
	Birth    string `json:"birth"`
	Phone    string `json:"phone"`
}

func (r SignupPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required, validation.Length(4, 100)),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Phone, validation.Required, validation.Length(10, 11), is.Digit),
	)
}

func (a *Controller) Signup(c *fiber.Ctx) error {
	payload := new(SignupPayload)
	if err := parseAndValidate(c, payload); err != nil {
		return err
	}

	if err := a.Service.Signup(c.UserContext(), SignupInput{
		LoginID:  payload.ID,
		Password: payload.Password,
		Name:     payload.Name,
		Gender:   payload.Gender,
		Birth:    payload.Birth,
		Phone:    payload.Phone,
	}); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "signup success",
	})
}

func (a *Controller) DupCheck(c *fiber.Ctx) error {
	taken, err := a.Service.IsLoginIDTaken(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": taken})
}

// LoginPayload is the credential login body.
type LoginPayload struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *Controller) Login(c *fiber.Ctx) error {
	payload := new(LoginPayload)
	if err := parseAndValidate(c, payload); err != nil {
		return err
	}

	tokens, err := a.Service.Login(c.UserContext(), payload.ID, payload.Password)
	if err != nil {
		return err
	}

	return c.JSON(tokens)
}

// FindIDPayload identifies an account by profile attributes.
type FindIDPayload struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func (r FindIDPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Phone, validation.Required, is.Digit),
	)
}

func (a *Controller) FindID(c *fiber.Ctx) error {
	payload := new(FindIDPayload)
	if err := parseAndValidate(c, payload); err != nil {
		return err
	}

	loginID, err := a.Service.FindLoginID(c.UserContext(), payload.Name, payload.Phone)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": loginID})
}

// CheckInformPayload verifies a (login id, phone) pair before a reset
// token is handed out.
type CheckInformPayload struct {
	ID    string `json:"id"`
	Phone string `json:"phone"`
}

func (r CheckInformPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required),
		validation.Field(&r.Phone, validation.Required, is.Digit),
	)
}

// CheckInform returns a reset token when the pair matches. A mismatch is
// answered with {message: false} rather than an error so the response
// never says which field was wrong.
func (a *Controller) CheckInform(c *fiber.Ctx) error {
	payload := new(CheckInformPayload)
	if err := parseAndValidate(c, payload); err != nil {
		return err
	}

	token, ok, err := a.Service.RequestPasswordReset(c.UserContext(), payload.ID, payload.Phone)
	if err != nil {
		return err
	}

	if !ok {
		return c.JSON(fiber.Map{"message": false})
	}

	return c.JSON(fiber.Map{"message": true, "token": token})
}

// PasswordPayload carries a single new password.
type PasswordPayload struct {
	Password string `json:"password"`
}

func (r PasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
	)
}

// FindPassword finishes the unauthenticated recovery flow. The reset
// token arrives as a query parameter and is consumed here.
func (a *Controller) FindPassword(c *fiber.Ctx) error {
	payload := new(PasswordPayload)
	if err := parseAndValidate(c, payload); err != nil {
		return err
	}

	token := c.Query("token")
	if token == "" {
		return ErrResetTokenInvalid
	}

	if err := a.Service.FindPassword(c.UserContext(), token, payload.Password); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "password changed"})
}

func (a *Controller) CheckToken(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "token is valid"})
}

// ResetPassword changes the password for the authenticated identity.
func (a *Controller) ResetPassword(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}

	payload := new(PasswordPayload)
	if err := parseAndValidate(c, payload); err != nil {
		return err
	}

	if err := a.Service.UpdatePassword(c.UserContext(), identity.ID, payload.Password); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "password changed"})
}

// PhonePayload carries a replacement phone number.
type PhonePayload struct {
	Phone string `json:"phone"`
}

func (r PhonePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Phone, validation.Required, validation.Length(10, 11), is.Digit),
	)
}

func (a *Controller) ResetPhone(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}

	payload := new(PhonePayload)
	if err := parseAndValidate(c, payload); err != nil {
		return err
	}

	if err := a.Service.UpdatePhone(c.UserContext(), identity.ID, payload.Phone); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "phone changed"})
}

// CheckPassword confirms the current password before sensitive actions.
func (a *Controller) CheckPassword(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}

	payload := new(PasswordPayload)
	if err := parseAndValidate(c, payload); err != nil {
		return err
	}

	match, err := a.Service.CheckPassword(c.UserContext(), identity.ID, payload.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": match})
}

func (a *Controller) Withdrawal(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}

	if err := a.Service.Withdraw(c.UserContext(), identity.ID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "withdrawal success"})
}

func (a *Controller) ListNotifications(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}

	settings, err := a.Service.ListNotificationSettings(c.UserContext(), identity.ID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"notifications": settings})
}

func (a *Controller) EnableNotification(c *fiber.Ctx) error {
	return a.setNotification(c, true)
}

func (a *Controller) DisableNotification(c *fiber.Ctx) error {
	return a.setNotification(c, false)
}

func (a *Controller) setNotification(c *fiber.Ctx, enabled bool) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}

	notificationID, err := c.ParamsInt("id")
	if err != nil {
		return goerrors.New("invalid notification id", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest)
	}

	if err := a.Service.SetNotificationEnabled(c.UserContext(), identity.ID, notificationID, enabled); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "notification updated"})
}

// DeviceTokenPayload registers a push token for the device.
type DeviceTokenPayload struct {
	DeviceToken string `json:"device_token"`
}

func (r DeviceTokenPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.DeviceToken, validation.Required),
	)
}

func (a *Controller) RegisterDeviceToken(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}

	payload := new(DeviceTokenPayload)
	if err := parseAndValidate(c, payload); err != nil {
		return err
	}

	if err := a.Service.UpdateDeviceToken(c.UserContext(), identity.ID, payload.DeviceToken); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "device token registered"})
}

// OAuthLogin exchanges the provider authorization code. A linked account
// gets a session; a first visit registers the identity and reports
// registered=true so the client can finish signup.
func (a *Controller) OAuthLogin(c *fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		return goerrors.New("missing authorization code", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest)
	}

	result, err := a.Service.OAuthLogin(c.UserContext(), a.Provider, code)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

// OAuthSignupPayload completes the profile for a first OAuth login.
type OAuthSignupPayload struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Gender string `json:"gender"`
	Birth  string `json:"birth"`
	Phone  string `json:"phone"`
}

func (r OAuthSignupPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Required, is.UUID),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Phone, validation.Required, validation.Length(10, 11), is.Digit),
	)
}

func (a *Controller) OAuthSignup(c *fiber.Ctx) error {
	payload := new(OAuthSignupPayload)
	if err := parseAndValidate(c, payload); err != nil {
		return err
	}

	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		return goerrors.New("invalid user id", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest)
	}

	if err := a.Service.CompleteOAuthSignup(c.UserContext(), OAuthSignupInput{
		UserID: userID,
		Name:   payload.Name,
		Gender: payload.Gender,
		Birth:  payload.Birth,
		Phone:  payload.Phone,
	}); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "signup success",
	})
}

type validatable interface {
	Validate() error
}

func parseAndValidate(c *fiber.Ctx, payload validatable) error {
	if err := c.BodyParser(payload); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse request body").
			WithCode(goerrors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, err.Error()).
			WithCode(goerrors.CodeBadRequest)
	}

	return nil
}

func requireIdentity(c *fiber.Ctx) (*User, error) {
	identity, ok := IdentityFromFiber(c)
	if !ok {
		return nil, ErrTokenNotFound
	}
	return identity, nil
}

// ErrorHandler converts rich errors into the JSON {message} body with the
// status split the clients depend on: expired access 403, other token
// failures 401, business failures 400-class.
func ErrorHandler(logger Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = defLogger{}
	}

	return func(c *fiber.Ctx, err error) error {
		var rich *goerrors.Error
		if goerrors.As(err, &rich) {
			status := rich.Code
			if status < fiber.StatusBadRequest {
				status = fiber.StatusInternalServerError
			}
			if status >= fiber.StatusInternalServerError {
				logger.Error("request failed: %v", err)
			}
			return c.Status(status).JSON(fiber.Map{
				"message": rich.Message,
			})
		}

		var fiberErr *fiber.Error
		if goerr.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"message": fiberErr.Message,
			})
		}

		logger.Error("unhandled error: %v", err)

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "internal server error",
		})
	}
}
