package inmemdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Treasure123-school/THS/core/announcement"
)

func TestAnnouncementRepository_QueryOrdering(t *testing.T) {
	ctx := context.Background()
	repo := NewAnnouncementRepository(Open())

	t1 := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	t3 := t2.Add(time.Hour)

	create := func(title string, createdAt time.Time, audience ...announcement.Audience) announcement.Announcement {
		a, err := repo.CreateAnnouncement(ctx, announcement.Announcement{
			Title: title, Content: "content", Audience: audience, CreatedBy: "author", CreatedAt: createdAt,
		})
		if err != nil {
			t.Fatalf("CreateAnnouncement(): %v", err)
		}
		return a
	}
	a1 := create("first", t1, announcement.AudienceAll)
	a3 := create("third", t3, announcement.AudienceStaff)
	a2 := create("second", t2, announcement.AudienceParents, announcement.AudienceStudents)
	// same timestamp as a2, inserted later
	a2bis := create("second bis", t2, announcement.AudienceStudents)

	tests := []struct {
		name   string
		filter announcement.QueryFilter
		want   []announcement.Announcement
	}{
		{name: "newest first, ties in insertion order", want: []announcement.Announcement{a3, a2, a2bis, a1}},
		{name: "audience=all lists everything", filter: announcement.QueryFilter{Audience: announcement.AudienceAll}, want: []announcement.Announcement{a3, a2, a2bis, a1}},
		{name: "audience=students", filter: announcement.QueryFilter{Audience: announcement.AudienceStudents}, want: []announcement.Announcement{a2, a2bis}},
		{name: "audience=staff", filter: announcement.QueryFilter{Audience: announcement.AudienceStaff}, want: []announcement.Announcement{a3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.QueryAnnouncements(ctx, tt.filter)
			if err != nil {
				t.Fatalf("QueryAnnouncements(): %v", err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAnnouncementRepository_UpdateDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewAnnouncementRepository(Open())

	t0 := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	a, _ := repo.CreateAnnouncement(ctx, announcement.Announcement{
		Title: "Title", Content: "Content", Audience: announcement.AudienceList{announcement.AudienceAll}, CreatedBy: "author", CreatedAt: t0,
	})

	t1 := t0.Add(time.Hour)
	mockNow(t, t1)

	title := "New title"
	got, err := repo.UpdateAnnouncement(ctx, a.ID, announcement.Patch{Title: &title})
	if err != nil {
		t.Fatalf("UpdateAnnouncement(): %v", err)
	}
	want := a
	want.Title = title
	want.UpdatedAt = t1
	assert.Equal(t, want, got)

	if _, err = repo.UpdateAnnouncement(ctx, "unknown", announcement.Patch{Title: &title}); err != announcement.ErrNotFound {
		t.Errorf("UpdateAnnouncement(unknown) error = %v; want %v", err, announcement.ErrNotFound)
	}

	if deleted, _ := repo.DeleteAnnouncement(ctx, a.ID); !deleted {
		t.Error("DeleteAnnouncement() = false; want true")
	}
	if deleted, _ := repo.DeleteAnnouncement(ctx, a.ID); deleted {
		t.Error("DeleteAnnouncement() twice = true; want false")
	}
	if _, err = repo.GetAnnouncement(ctx, a.ID); err != announcement.ErrNotFound {
		t.Errorf("GetAnnouncement(deleted) error = %v; want %v", err, announcement.ErrNotFound)
	}
}
