package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Treasure123-school/THS/core"
	"github.com/Treasure123-school/THS/core/announcement"
	"github.com/Treasure123-school/THS/core/user"
	"github.com/Treasure123-school/THS/testutil"
)

var invalidAudienceText = "invalid audience values: everyone. Valid values: all, students, parents, staff"

func decodeAnnouncement(t *testing.T, data []byte) announcement.Announcement {
	var a announcement.Announcement
	if err := json.Unmarshal(data, &a); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}
	return a
}

func Test_announcementApi_query(t *testing.T) {
	env := setup(t)
	teacher := testutil.CreateUser(t, env.usrRepo, "Teacher", "teacher@test.ng", validPwd, user.RoleTeacher)

	now := time.Now()
	a1 := testutil.CreateAnnouncement(t, env.annRepo, "Sports day", announcement.AudienceList{announcement.AudienceAll}, teacher.ID, now.Add(1*time.Hour))
	a2 := testutil.CreateAnnouncement(t, env.annRepo, "PTA meeting", announcement.AudienceList{announcement.AudienceParents}, teacher.ID, now.Add(2*time.Hour))
	a3 := testutil.CreateAnnouncement(t, env.annRepo, "Exams", announcement.AudienceList{announcement.AudienceStudents, announcement.AudienceParents}, teacher.ID, now.Add(3*time.Hour))

	runHttpTests(t, env.app, []httpTest{
		{name: "newest first", method: http.MethodGet, path: "/api/announcements", wantData: marchallList(t, a3, a2, a1)},
		{name: "audience=parents", method: http.MethodGet, path: "/api/announcements?audience=parents", wantData: marchallList(t, a3, a2)},
		{name: "audience=students", method: http.MethodGet, path: "/api/announcements?audience=students", wantData: marchallList(t, a3)},
		{name: "audience=all", method: http.MethodGet, path: "/api/announcements?audience=all", wantData: marchallList(t, a3, a2, a1)},
		{name: "audience=staff", method: http.MethodGet, path: "/api/announcements?audience=staff", wantData: marchallList(t)},
		{name: "retrieve", method: http.MethodGet, path: "/api/announcements/" + a2.ID, wantData: marchallObj(t, a2)},
		{
			name: "retrieve (unknown)", method: http.MethodGet, path: "/api/announcements/lol", wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr(codeNotFound, "The requested announcement does not exist")),
		},
	})
}

func Test_announcementApi_queryEmpty(t *testing.T) {
	env := setup(t)
	runHttpTests(t, env.app, []httpTest{
		{name: "empty list", method: http.MethodGet, path: "/api/announcements", wantData: []byte("[]")},
	})
}

func Test_announcementApi_create(t *testing.T) {
	env := setup(t)
	testutil.CreateUser(t, env.usrRepo, "Teacher", "teacher@test.ng", validPwd, user.RoleTeacher)
	testutil.CreateUser(t, env.usrRepo, "Hero", "hero@test.ng", validPwd, user.RoleStudent)
	teacherCookie := testutil.Login(t, env.app, "teacher@test.ng", validPwd)
	studentCookie := testutil.Login(t, env.app, "hero@test.ng", validPwd)

	var published []announcement.Event
	env.events.subscribe(core.TopicAnnouncementCreated, func(payload []byte) error {
		var evt announcement.Event
		if err := json.Unmarshal(payload, &evt); err != nil {
			return err
		}
		published = append(published, evt)
		return nil
	})

	tests := []httpTest{
		{
			name: "auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errUnauthenticated),
			body: marchallObj(t, map[string]interface{}{"title": "t", "content": "c", "audience": "all"}),
		},
		{
			name: "staff required", cookie: studentCookie, wantCode: http.StatusForbidden,
			body:     marchallObj(t, map[string]interface{}{"title": "t", "content": "c", "audience": "all"}),
			wantData: marchallObj(t, errStaffOnly(user.RoleStudent)),
		},
		{
			name: "required fields", cookie: teacherCookie, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr(codeValidation, "validation failed", map[string]string{
				"title":    "this field is required",
				"content":  "this field is required",
				"audience": "this field is required",
			})),
		},
		{
			name: "invalid audience", cookie: teacherCookie, wantCode: http.StatusBadRequest,
			body: marchallObj(t, map[string]interface{}{"title": "Trip", "content": "Zoo trip", "audience": []string{"everyone"}}),
			wantData: marchallObj(t, httpErr(codeValidation, "audience: "+invalidAudienceText, map[string]string{
				"audience": invalidAudienceText,
			})),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/announcements"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.cookie, tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// rejected requests leave the store untouched
	stored, err := env.annRepo.QueryAnnouncements(context.Background(), announcement.QueryFilter{})
	require.NoError(t, err)
	assert.Empty(t, stored)
	assert.Empty(t, published)

	t.Run("single audience string", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/announcements", teacherCookie,
			marchallObj(t, map[string]interface{}{"title": " Trip ", "content": "Zoo trip", "audience": " Students "}))
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		a := decodeAnnouncement(t, rec.Body.Bytes())
		assert.NotEmpty(t, a.ID)
		assert.Equal(t, "Trip", a.Title)
		assert.Equal(t, announcement.AudienceList{announcement.AudienceStudents}, a.Audience)
		if assert.Len(t, published, 1) {
			assert.Equal(t, core.TopicAnnouncementCreated, published[0].Type)
			assert.Equal(t, a.ID, published[0].Announcement.ID)
		}
	})

	t.Run("audience list", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/announcements", teacherCookie,
			marchallObj(t, map[string]interface{}{"title": "Fees", "content": "Fees are due", "audience": []string{"parents", "staff"}}))
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		a := decodeAnnouncement(t, rec.Body.Bytes())
		assert.Equal(t, announcement.AudienceList{announcement.AudienceParents, announcement.AudienceStaff}, a.Audience)
	})
}

func Test_announcementApi_update(t *testing.T) {
	env := setup(t)
	owner := testutil.CreateUser(t, env.usrRepo, "Owner", "owner@test.ng", validPwd, user.RoleTeacher)
	testutil.CreateUser(t, env.usrRepo, "Other", "other@test.ng", validPwd, user.RoleTeacher)
	testutil.CreateUser(t, env.usrRepo, "Admin", "admin@test.ng", validPwd, user.RoleAdmin)
	ownerCookie := testutil.Login(t, env.app, "owner@test.ng", validPwd)
	otherCookie := testutil.Login(t, env.app, "other@test.ng", validPwd)
	adminCookie := testutil.Login(t, env.app, "admin@test.ng", validPwd)

	a := testutil.CreateAnnouncement(t, env.annRepo, "Sports day", announcement.AudienceList{announcement.AudienceAll}, owner.ID)
	path := "/api/announcements/" + a.ID

	runHttpTests(t, env.app, []httpTest{
		{
			name: "not the author", method: http.MethodPut, path: path, cookie: otherCookie, wantCode: http.StatusForbidden,
			body:     marchallObj(t, map[string]interface{}{"title": "Hijacked"}),
			wantData: marchallObj(t, httpErr(codeForbidden, "You can only edit your own announcements")),
		},
		{
			name: "unknown", method: http.MethodPut, path: "/api/announcements/lol", cookie: adminCookie, wantCode: http.StatusNotFound,
			body:     marchallObj(t, map[string]interface{}{"title": "Edited"}),
			wantData: marchallObj(t, httpErr(codeNotFound, "The requested announcement does not exist")),
		},
		{
			name: "blank title", method: http.MethodPut, path: path, cookie: ownerCookie, wantCode: http.StatusBadRequest,
			body: marchallObj(t, map[string]interface{}{"title": "   "}),
			wantData: marchallObj(t, httpErr(codeValidation, "invalid announcement", map[string]string{
				"title": "this field cannot be blank",
			})),
		},
		{
			name: "invalid audience", method: http.MethodPut, path: path, cookie: ownerCookie, wantCode: http.StatusBadRequest,
			body: marchallObj(t, map[string]interface{}{"audience": []string{"everyone"}}),
			wantData: marchallObj(t, httpErr(codeValidation, "audience: "+invalidAudienceText, map[string]string{
				"audience": invalidAudienceText,
			})),
		},
	})

	unchanged, err := env.annRepo.GetAnnouncement(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, a, unchanged)

	t.Run("author edits", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, path, ownerCookie, marchallObj(t, map[string]interface{}{"title": "Sports week"}))
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		got := decodeAnnouncement(t, rec.Body.Bytes())
		assert.Equal(t, "Sports week", got.Title)
		assert.Equal(t, a.Content, got.Content)
		assert.Equal(t, a.Audience, got.Audience)
		assert.Equal(t, owner.ID, got.CreatedBy)
	})

	t.Run("admin edits anyone's", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, path, adminCookie, marchallObj(t, map[string]interface{}{"audience": "staff"}))
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		got := decodeAnnouncement(t, rec.Body.Bytes())
		assert.Equal(t, "Sports week", got.Title)
		assert.Equal(t, announcement.AudienceList{announcement.AudienceStaff}, got.Audience)
		assert.Equal(t, owner.ID, got.CreatedBy)
	})
}

func Test_announcementApi_destroy(t *testing.T) {
	env := setup(t)
	teacher := testutil.CreateUser(t, env.usrRepo, "Teacher", "teacher@test.ng", validPwd, user.RoleTeacher)
	testutil.CreateUser(t, env.usrRepo, "Admin", "admin@test.ng", validPwd, user.RoleAdmin)
	teacherCookie := testutil.Login(t, env.app, "teacher@test.ng", validPwd)
	adminCookie := testutil.Login(t, env.app, "admin@test.ng", validPwd)

	a := testutil.CreateAnnouncement(t, env.annRepo, "Sports day", announcement.AudienceList{announcement.AudienceAll}, teacher.ID)
	path := "/api/announcements/" + a.ID
	notFound := marchallObj(t, httpErr(codeNotFound, "The requested announcement does not exist"))

	runHttpTests(t, env.app, []httpTest{
		{name: "auth required", method: http.MethodDelete, path: path, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errUnauthenticated)},
		{
			name: "admin required", method: http.MethodDelete, path: path, cookie: teacherCookie, wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errAdminOnly(user.RoleTeacher)),
		},
		{
			name: "deleted", method: http.MethodDelete, path: path, cookie: adminCookie,
			wantData: marchallObj(t, MessageResponse{Message: announcementDeleted}),
		},
		{name: "delete again", method: http.MethodDelete, path: path, cookie: adminCookie, wantCode: http.StatusNotFound, wantData: notFound},
		{name: "gone", method: http.MethodGet, path: path, wantCode: http.StatusNotFound, wantData: notFound},
	})
}

// A teacher signs up, publishes an announcement, cannot delete it, and an admin can.
func Test_announcementApi_teacherLifecycle(t *testing.T) {
	env := setup(t)
	testutil.CreateUser(t, env.usrRepo, "Admin", "admin@test.ng", validPwd, user.RoleAdmin)

	req, rec := newRequest(http.MethodPost, "/api/auth/signup",
		marchallObj(t, user.NewUser{Name: "A", Email: "a@x.com", Password: validPwd, Role: user.RoleTeacher}))
	env.app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	cookie := testutil.Login(t, env.app, "a@x.com", validPwd)
	req, rec = newAuthRequest(http.MethodPost, "/api/announcements", cookie,
		marchallObj(t, map[string]interface{}{"title": "Homework", "content": "Read chapter 3", "audience": "students"}))
	env.app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	a := decodeAnnouncement(t, rec.Body.Bytes())

	path := "/api/announcements/" + a.ID
	runHttpTests(t, env.app, []httpTest{
		{
			name: "teacher cannot delete", method: http.MethodDelete, path: path, cookie: cookie, wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr(codeForbidden, "Access denied. Required roles: admin. Your role: teacher")),
		},
		{
			name: "admin deletes", method: http.MethodDelete, path: path, cookie: testutil.Login(t, env.app, "admin@test.ng", validPwd),
			wantData: marchallObj(t, MessageResponse{Message: announcementDeleted}),
		},
	})
}

func Test_announcementApi_feed(t *testing.T) {
	env := setup(t)
	testutil.CreateUser(t, env.usrRepo, "Teacher", "teacher@test.ng", validPwd, user.RoleTeacher)
	testutil.CreateUser(t, env.usrRepo, "Parent", "parent@test.ng", validPwd, user.RoleParent)
	teacherCookie := testutil.Login(t, env.app, "teacher@test.ng", validPwd)
	parentCookie := testutil.Login(t, env.app, "parent@test.ng", validPwd)

	runHttpTests(t, env.app, []httpTest{
		{
			name: "auth required", method: http.MethodGet, path: "/api/announcements/feed",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errUnauthenticated),
		},
	})

	srv := httptest.NewServer(env.app)
	defer srv.Close()

	header := http.Header{}
	header.Set("Origin", env.conf.Server.AllowedOrigin)
	header.Set("Cookie", parentCookie.Name+"="+parentCookie.Value)
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/announcements/feed", header)
	require.NoError(t, err)
	//goland:noinspection GoUnhandledErrorResult
	defer conn.Close()
	require.Eventually(t, func() bool { return env.hub.Len() == 1 }, time.Second, 5*time.Millisecond)

	create := func(title string, audience interface{}) {
		req, rec := newAuthRequest(http.MethodPost, "/api/announcements", teacherCookie,
			marchallObj(t, map[string]interface{}{"title": title, "content": title + " content", "audience": audience}))
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	create("Staff only", "staff")
	create("PTA meeting", []string{"parents"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var evt announcement.Event
	require.NoError(t, json.Unmarshal(data, &evt))
	assert.Equal(t, core.TopicAnnouncementCreated, evt.Type)
	assert.Equal(t, "PTA meeting", evt.Announcement.Title)
}
