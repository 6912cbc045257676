package user

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/Treasure123-school/THS/core"
)

var (
	// errors
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")

	recentUsersLimit = 5
)

type (
	// Repository is implemented by user stores.
	// CreateUser and UpdateUser enforce email uniqueness atomically and return ErrEmailExists.
	Repository interface {
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUser(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		QueryUsers(ctx context.Context, filter QueryFilter, ordering ...core.Ordering) ([]User, error)
		UpdateUser(ctx context.Context, id string, patch Patch) (User, error)
		DeleteUser(ctx context.Context, id string) (bool, error)
	}

	Service interface {
		Create(ctx context.Context, nu NewUser) (User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		Authenticate(ctx context.Context, email, pwd string) (User, error)
		Query(ctx context.Context, filter QueryFilter, ordering ...core.Ordering) ([]User, error)
		Update(ctx context.Context, id string, uu UpdateUser) (User, error)
		Delete(ctx context.Context, id string) (bool, error)
		Stats(ctx context.Context) (Stats, error)
		RequestPasswordReset(ctx context.Context, email string) error
		ResetPassword(ctx context.Context, rp ResetUserPassword) error
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
		tokens  tokenGenerator
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) Service {
	return newService(repo, mailSvc, conf)
}

func newService(repo Repository, mailSvc core.EmailService, conf *core.Config) *service {
	return &service{
		repo:    repo,
		mailSvc: mailSvc,
		conf:    conf,
		tokens:  newTokenGenerator(conf.SecretKey, conf.PasswordResetTimeoutDelta),
	}
}

// Create persists a validated NewUser.
// Accounts created without a password receive an invitation to set one.
func (svc *service) Create(ctx context.Context, nu NewUser) (User, error) {
	usr, err := svc.create(ctx, nu)
	if err != nil {
		return User{}, err
	}
	if nu.Password == "" {
		go svc.sendPasswordResetMail(usr, "account_created")
	}
	return usr, nil
}

func (svc *service) create(ctx context.Context, nu NewUser) (User, error) {
	now := core.NowFunc()
	usr := User{
		Name:      nu.Name,
		Email:     nu.Email,
		Role:      nu.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if nu.Password != "" {
		if err := usr.SetPassword(nu.Password); err != nil {
			return User{}, errors.Wrap(err, "setting password")
		}
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	return usr, errors.Wrap(err, "creating user")
}

func (svc *service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUser(ctx, id)
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

// Authenticate returns the account matching the credentials, or ErrNotFound.
// An unknown email and a wrong password are indistinguishable to the caller.
func (svc *service) Authenticate(ctx context.Context, email, pwd string) (User, error) {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, ErrNotFound
	}
	return usr, nil
}

func (svc *service) Query(ctx context.Context, filter QueryFilter, ordering ...core.Ordering) ([]User, error) {
	return svc.repo.QueryUsers(ctx, filter, ordering...)
}

// Update applies a validated UpdateUser.
func (svc *service) Update(ctx context.Context, id string, uu UpdateUser) (User, error) {
	var patch Patch
	if uu.Name != "" {
		patch.Name = &uu.Name
	}
	if uu.Email != "" {
		patch.Email = &uu.Email
	}
	if uu.Role != "" {
		patch.Role = &uu.Role
	}
	if uu.Password != "" {
		var tmp User
		if err := tmp.SetPassword(uu.Password); err != nil {
			return User{}, errors.Wrap(err, "setting password")
		}
		patch.PasswordHash = tmp.PasswordHash
	}
	return svc.repo.UpdateUser(ctx, id, patch)
}

func (svc *service) Delete(ctx context.Context, id string) (bool, error) {
	return svc.repo.DeleteUser(ctx, id)
}

func (svc *service) Stats(ctx context.Context) (Stats, error) {
	users, err := svc.repo.QueryUsers(ctx, QueryFilter{}, core.Ordering{Field: "createdAt"})
	if err != nil {
		return Stats{}, errors.Wrap(err, "querying users")
	}

	stats := Stats{TotalUsers: len(users), RecentUsers: make([]User, 0, recentUsersLimit)}
	for _, usr := range users {
		switch usr.Role {
		case RoleAdmin:
			stats.TotalAdmins++
		case RoleTeacher:
			stats.TotalTeachers++
		case RoleStudent:
			stats.TotalStudents++
		case RoleParent:
			stats.TotalParents++
		}
	}
	for i := len(users) - 1; i >= 0 && len(stats.RecentUsers) < recentUsersLimit; i-- {
		stats.RecentUsers = append(stats.RecentUsers, users[i])
	}
	return stats, nil
}

// RequestPasswordReset emails a reset link to the account owning email.
// It returns ErrNotFound for unknown emails; callers must not leak that to clients.
func (svc *service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	go svc.sendPasswordResetMail(usr, "password_reset")
	return nil
}

func (svc *service) sendPasswordResetMail(usr User, tmpl string) {
	token, err := svc.tokens.makeToken(usr)
	if err != nil {
		return
	}

	subject := "Password Reset"
	if tmpl == "account_created" {
		subject = "Your account is ready"
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      subject,
		TemplateName: tmpl,
		TemplateData: passwordResetData{
			AppName:  svc.conf.AppName,
			Name:     usr.Name,
			Link:     svc.conf.FrontendBaseURL + "/reset-password/" + token,
			ValidFor: humanizeDuration(svc.conf.PasswordResetTimeoutDelta),
		},
	})
}

// ResetPassword sets a new password for the account a valid reset token was issued for.
func (svc *service) ResetPassword(ctx context.Context, rp ResetUserPassword) error {
	invalidToken := core.NewFieldValidationError("token", "invalid value")

	uid, err := svc.tokens.tokenSubject(rp.Token)
	if err != nil {
		return invalidToken
	}
	usr, err := svc.repo.GetUser(ctx, uid)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return invalidToken
		}
		return errors.Wrap(err, "finding user by ID")
	}
	if err = svc.tokens.verifyToken(usr, rp.Token); err != nil {
		return invalidToken
	}

	if err = usr.SetPassword(rp.Password); err != nil {
		return errors.Wrap(err, "setting password")
	}
	if _, err = svc.repo.UpdateUser(ctx, usr.ID, Patch{PasswordHash: usr.PasswordHash}); err != nil {
		return errors.Wrap(err, "updating password")
	}
	return nil
}

type passwordResetData struct {
	AppName  string
	Name     string
	Link     string
	ValidFor string
}

func humanizeDuration(d time.Duration) string {
	if h := int(d.Hours()); h >= 24 && h%24 == 0 {
		if h == 24 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", h/24)
	}
	if h := int(d.Hours()); h >= 1 {
		if h == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", h)
	}
	return fmt.Sprintf("%d minutes", int(d.Minutes()))
}

// Validate cleans then validates the NewUser.
func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Clean()
	return validate.Struct(nu)
}

// Validate cleans then validates the UpdateUser against the User being updated.
func (uu *UpdateUser) Validate(origUsr User, validate *validator.Validate) error {
	uu.Clean(origUsr)
	return validate.Struct(uu)
}

func (rp *ResetUserPassword) Validate(validate *validator.Validate) error {
	return validate.Struct(rp)
}
