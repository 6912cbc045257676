package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Treasure123-school/THS/core/contact"
	"github.com/Treasure123-school/THS/core/user"
	emailsvc "github.com/Treasure123-school/THS/services/email"
	"github.com/Treasure123-school/THS/testutil"
)

func Test_contactApi_submit(t *testing.T) {
	env := setup(t)

	runHttpTests(t, env.app, []httpTest{
		{
			name: "required fields", method: http.MethodPost, path: "/api/contact", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr(codeValidation, "validation failed", map[string]string{
				"name":    "this field is required",
				"email":   "this field is required",
				"message": "this field is required",
			})),
		},
		{
			name: "invalid values", method: http.MethodPost, path: "/api/contact", wantCode: http.StatusBadRequest,
			body: marchallObj(t, contact.NewMessage{Name: "Mama Ngozi", Email: "lol", Message: "Hello"}),
			wantData: marchallObj(t, httpErr(codeValidation, "validation failed", map[string]string{
				"email":   "email must be a valid email address",
				"message": "message must be at least 10 characters in length",
			})),
		},
	})

	t.Run("submitted & office notified", func(t *testing.T) {
		emailsvc.ResetSentMessages()

		req, rec := newRequest(http.MethodPost, "/api/contact",
			marchallObj(t, contact.NewMessage{Name: " Mama Ngozi ", Email: "Ngozi@Mail.ng", Message: "When does the new term start?"}))
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp ContactResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, contactThanks, resp.Message)
		assert.False(t, resp.SubmittedAt.IsZero())

		require.Len(t, emailsvc.SentMessages, 1)
		msg := emailsvc.SentMessages[0]
		assert.Equal(t, env.conf.ContactRecipients, msg.To)
		if assert.NotNil(t, msg.ReplyTo) {
			assert.Equal(t, "ngozi@mail.ng", msg.ReplyTo.Address)
			assert.Equal(t, "Mama Ngozi", msg.ReplyTo.Name)
		}
		assert.Contains(t, msg.TextContent, "When does the new term start?")
	})
}

func Test_contactApi_query(t *testing.T) {
	env := setup(t)
	testutil.CreateUser(t, env.usrRepo, "Admin", "admin@test.ng", validPwd, user.RoleAdmin)
	testutil.CreateUser(t, env.usrRepo, "Teacher", "teacher@test.ng", validPwd, user.RoleTeacher)
	adminCookie := testutil.Login(t, env.app, "admin@test.ng", validPwd)

	for _, nm := range []contact.NewMessage{
		{Name: "First", Email: "first@mail.ng", Message: "First message here"},
		{Name: "Second", Email: "second@mail.ng", Message: "Second message here"},
	} {
		req, rec := newRequest(http.MethodPost, "/api/contact", marchallObj(t, nm))
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	runHttpTests(t, env.app, []httpTest{
		{
			name: "auth required", method: http.MethodGet, path: "/api/admin/contact-messages",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errUnauthenticated),
		},
		{
			name: "admin required", method: http.MethodGet, path: "/api/admin/contact-messages",
			cookie:   testutil.Login(t, env.app, "teacher@test.ng", validPwd),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errAdminOnly(user.RoleTeacher)),
		},
	})

	req, rec := newAuthRequest(http.MethodGet, "/api/admin/contact-messages", adminCookie)
	env.app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var msgs []contact.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msgs))
	require.Len(t, msgs, 2)
	assert.Equal(t, "Second", msgs[0].Name)
	assert.Equal(t, "First", msgs[1].Name)
}
