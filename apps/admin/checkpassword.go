package main

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/Treasure123-school/THS/core"
	"github.com/Treasure123-school/THS/core/user"
)

var errPasswordRejected = errors.New("password rejected")

// checkPassword applies the account password policy to pwd, as if the named user were choosing it.
func (cli *commandLine) checkPassword(name, email, pwd string) error {
	uu := user.UpdateUser{Password: pwd, PasswordConfirm: pwd}
	err := uu.Validate(user.User{Name: name, Email: email}, cli.validate)
	if err == nil {
		_, _ = fmt.Fprintln(cli.out, "password is valid")
		return nil
	}

	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return err
	}
	msgs := make([]string, 0, len(vErrs))
	for _, fErr := range core.TranslateValidationErrors(vErrs, cli.translator) {
		msgs = append(msgs, fErr.Error)
	}
	return fmt.Errorf("%w: %s", errPasswordRejected, strings.Join(msgs, "; "))
}
