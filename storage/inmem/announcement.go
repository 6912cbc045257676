package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/Treasure123-school/THS/core"
	"github.com/Treasure123-school/THS/core/announcement"
)

type announcementRepository struct {
	db *announcementTable
}

var _ announcement.Repository = (*announcementRepository)(nil)

func NewAnnouncementRepository(db *DB) announcement.Repository {
	return &announcementRepository{db: db.announcement}
}

func (repo *announcementRepository) CreateAnnouncement(_ context.Context, a announcement.Announcement) (announcement.Announcement, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	a.ID = newID(func(id string) bool { _, ok := repo.db.table[id]; return ok })
	if a.CreatedAt.IsZero() {
		a.CreatedAt = core.NowFunc()
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}
	a.Audience = append(announcement.AudienceList(nil), a.Audience...)

	repo.db.seq++
	repo.db.table[a.ID] = &announcementRow{Announcement: a, seq: repo.db.seq}
	return a, nil
}

func (repo *announcementRepository) GetAnnouncement(_ context.Context, id string) (announcement.Announcement, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if row, ok := repo.db.table[id]; ok {
		return row.Announcement, nil
	}
	return announcement.Announcement{}, announcement.ErrNotFound
}

func (repo *announcementRepository) QueryAnnouncements(_ context.Context, filter announcement.QueryFilter) ([]announcement.Announcement, error) {
	repo.db.RLock()
	rows := make([]announcementRow, 0, len(repo.db.table))
	for _, row := range repo.db.table {
		if filter.Match(row.Announcement) {
			rows = append(rows, *row)
		}
	}
	repo.db.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		if c := compareTimes(rows[i].CreatedAt, rows[j].CreatedAt); c != 0 {
			return c > 0
		}
		return rows[i].seq < rows[j].seq
	})

	list := make([]announcement.Announcement, 0, len(rows))
	for _, row := range rows {
		list = append(list, row.Announcement)
	}
	return list, nil
}

func (repo *announcementRepository) UpdateAnnouncement(_ context.Context, id string, patch announcement.Patch) (announcement.Announcement, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// only save set fields
	row, ok := repo.db.table[id]
	if !ok {
		return announcement.Announcement{}, announcement.ErrNotFound
	}
	a := row.Announcement
	if patch.Title != nil {
		a.Title = *patch.Title
	}
	if patch.Content != nil {
		a.Content = *patch.Content
	}
	if patch.Audience != nil {
		a.Audience = append(announcement.AudienceList(nil), patch.Audience...)
	}
	a.UpdatedAt = core.NowFunc()

	row.Announcement = a
	return a, nil
}

func (repo *announcementRepository) DeleteAnnouncement(_ context.Context, id string) (bool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return false, nil
	}
	delete(repo.db.table, id)
	return true, nil
}

func compareTimes(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}
