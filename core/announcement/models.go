package announcement

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Treasure123-school/THS/core"
	"github.com/Treasure123-school/THS/core/user"
)

// Audience is the closed set of announcement target groups.
type Audience string

const (
	AudienceAll      Audience = "all"
	AudienceStudents Audience = "students"
	AudienceParents  Audience = "parents"
	AudienceStaff    Audience = "staff"
)

var Audiences = []Audience{AudienceAll, AudienceStudents, AudienceParents, AudienceStaff}

func (a Audience) IsValid() bool {
	switch a {
	case AudienceAll, AudienceStudents, AudienceParents, AudienceStaff:
		return true
	}
	return false
}

// Includes reports whether members of the audience hold role.
func (a Audience) Includes(role user.Role) bool {
	switch a {
	case AudienceAll:
		return true
	case AudienceStudents:
		return role == user.RoleStudent
	case AudienceParents:
		return role == user.RoleParent
	case AudienceStaff:
		return role == user.RoleAdmin || role == user.RoleTeacher
	}
	return false
}

// AudienceList decodes from either a single JSON string or an array of strings.
type AudienceList []Audience

func (l *AudienceList) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var single Audience
	if err := json.Unmarshal(b, &single); err == nil {
		*l = AudienceList{single}
		return nil
	}
	var list []Audience
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	*l = list
	return nil
}

func (l AudienceList) Clean() AudienceList {
	if l == nil {
		return nil
	}
	cleaned := make(AudienceList, 0, len(l))
	for _, a := range l {
		cleaned = append(cleaned, Audience(core.CleanString(string(a), true /* lower */)))
	}
	return cleaned
}

func (l AudienceList) Contains(a Audience) bool {
	for _, x := range l {
		if x == a {
			return true
		}
	}
	return false
}

// check returns a field error when any value is outside the closed set.
func (l AudienceList) check() error {
	var invalid []string
	for _, a := range l {
		if !a.IsValid() {
			invalid = append(invalid, string(a))
		}
	}
	if len(invalid) == 0 {
		return nil
	}
	valid := make([]string, 0, len(Audiences))
	for _, a := range Audiences {
		valid = append(valid, string(a))
	}
	return core.NewFieldValidationError("audience", fmt.Sprintf(
		"invalid audience values: %s. Valid values: %s", strings.Join(invalid, ", "), strings.Join(valid, ", "),
	))
}

type Announcement struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Content   string       `json:"content"`
	Audience  AudienceList `json:"audience"`
	CreatedBy string       `json:"createdBy"`
	CreatedAt time.Time    `json:"createdAt"` // UTC
	UpdatedAt time.Time    `json:"updatedAt"` // UTC
}

// VisibleTo reports whether a user holding role is part of the announcement's audience.
func (a Announcement) VisibleTo(role user.Role) bool {
	for _, aud := range a.Audience {
		if aud.Includes(role) {
			return true
		}
	}
	return false
}

// Patch lists the fields an update may change. Nil fields are left untouched.
type Patch struct {
	Title    *string
	Content  *string
	Audience AudienceList
}

type NewAnnouncement struct {
	Title    string       `json:"title" validate:"required,notblank"`
	Content  string       `json:"content" validate:"required,notblank"`
	Audience AudienceList `json:"audience" validate:"required,min=1"`
}

// UpdateAnnouncement holds the optional fields of an update.
type UpdateAnnouncement struct {
	ID       string       `param:"id" json:"-"`
	Title    *string      `json:"title"`
	Content  *string      `json:"content"`
	Audience AudienceList `json:"audience" validate:"omitempty,min=1"`
}

func (ua UpdateAnnouncement) patch() Patch {
	return Patch{Title: ua.Title, Content: ua.Content, Audience: ua.Audience}
}

// QueryFilter narrows a listing to announcements addressed to one audience.
// AudienceAll, or no audience, lists everything.
type QueryFilter struct {
	Audience Audience `query:"audience"`
}

func (qf QueryFilter) Match(a Announcement) bool {
	if qf.Audience == "" || qf.Audience == AudienceAll {
		return true
	}
	return a.Audience.Contains(qf.Audience)
}
