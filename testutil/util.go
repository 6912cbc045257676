// Package testutil holds fixtures shared by the test suites.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Treasure123-school/THS/core/announcement"
	"github.com/Treasure123-school/THS/core/gallery"
	"github.com/Treasure123-school/THS/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd string,
	role user.Role,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
		usr.PasswordHash = hash
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateAnnouncement(
	t *testing.T,
	repo announcement.Repository,
	title string,
	audience announcement.AudienceList,
	createdBy string,
	createdAt ...time.Time,
) announcement.Announcement {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	a, err := repo.CreateAnnouncement(context.Background(), announcement.Announcement{
		Title:     title,
		Content:   title + " content",
		Audience:  audience,
		CreatedBy: createdBy,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateAnnouncement() failed: %v", err)
	}
	return a
}

func CreateGalleryItem(
	t *testing.T,
	repo gallery.Repository,
	title, fileURL, uploadedBy string,
	uploadedAt ...time.Time,
) gallery.Item {
	tstamp := time.Now().UTC()
	if len(uploadedAt) > 0 {
		tstamp = uploadedAt[0].UTC()
	}
	item, err := repo.CreateItem(context.Background(), gallery.Item{
		Title:      title,
		FileURL:    fileURL,
		UploadedBy: uploadedBy,
		UploadedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateGalleryItem() failed: %v", err)
	}
	return item
}

// Login signs in through the API and returns the session cookie it sets.
func Login(t *testing.T, h http.Handler, email, pwd string) *http.Cookie {
	body, err := json.Marshal(map[string]string{"email": email, "password": pwd})
	if err != nil {
		t.Fatalf("Login() failed: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Login(%s) failed: code = %d; body %s", email, rec.Code, rec.Body.String())
	}
	for _, c := range rec.Result().Cookies() {
		if c.Value != "" {
			return c
		}
	}
	t.Fatalf("Login(%s) failed: no session cookie", email)
	return nil
}
