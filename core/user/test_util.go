package user

import (
	"context"

	"github.com/Treasure123-school/THS/core"
)

type serviceMock struct {
	*service
}

// NewServiceMock returns a Service sending its emails synchronously.
func NewServiceMock(repo Repository, mailSvc core.EmailService, conf *core.Config) Service {
	return &serviceMock{service: newService(repo, mailSvc, conf)}
}

func (svc *serviceMock) Create(ctx context.Context, nu NewUser) (User, error) {
	usr, err := svc.create(ctx, nu)
	if err != nil {
		return User{}, err
	}
	if nu.Password == "" {
		// run synchronously
		svc.sendPasswordResetMail(usr, "account_created")
	}
	return usr, nil
}

func (svc *serviceMock) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	// run synchronously
	svc.sendPasswordResetMail(usr, "password_reset")
	return nil
}

// MakeResetToken exposes reset token generation to tests.
func MakeResetToken(usr User, conf *core.Config) (string, error) {
	return newTokenGenerator(conf.SecretKey, conf.PasswordResetTimeoutDelta).makeToken(usr)
}
