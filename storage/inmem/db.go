// Package inmemdb is a volatile store keeping every collection in memory.
// Each collection is guarded by its own lock; nothing survives a restart.
package inmemdb

import (
	"sync"

	"github.com/google/uuid"

	"github.com/Treasure123-school/THS/core/announcement"
	"github.com/Treasure123-school/THS/core/contact"
	"github.com/Treasure123-school/THS/core/gallery"
	"github.com/Treasure123-school/THS/core/session"
	"github.com/Treasure123-school/THS/core/user"
)

type (
	DB struct {
		user         *userTable
		announcement *announcementTable
		gallery      *galleryTable
		contact      *contactTable
		session      *sessionTable
	}

	// rows remember their insertion order to break timestamp ties
	userRow struct {
		user.User
		seq uint64
	}
	announcementRow struct {
		announcement.Announcement
		seq uint64
	}
	galleryRow struct {
		gallery.Item
		seq uint64
	}

	userTable struct {
		sync.RWMutex
		table map[string]*userRow
		seq   uint64
	}

	announcementTable struct {
		sync.RWMutex
		table map[string]*announcementRow
		seq   uint64
	}

	galleryTable struct {
		sync.RWMutex
		table map[string]*galleryRow
		seq   uint64
	}

	contactTable struct {
		sync.RWMutex
		log []contact.Message
	}

	sessionTable struct {
		sync.RWMutex
		table map[string]session.Session
	}
)

func Open() *DB {
	return &DB{
		user:         &userTable{table: make(map[string]*userRow)},
		announcement: &announcementTable{table: make(map[string]*announcementRow)},
		gallery:      &galleryTable{table: make(map[string]*galleryRow)},
		contact:      &contactTable{},
		session:      &sessionTable{table: make(map[string]session.Session)},
	}
}

// Reset empties every collection.
func (db *DB) Reset() {
	db.user.Lock()
	db.user.table, db.user.seq = make(map[string]*userRow), 0
	db.user.Unlock()

	db.announcement.Lock()
	db.announcement.table, db.announcement.seq = make(map[string]*announcementRow), 0
	db.announcement.Unlock()

	db.gallery.Lock()
	db.gallery.table, db.gallery.seq = make(map[string]*galleryRow), 0
	db.gallery.Unlock()

	db.contact.Lock()
	db.contact.log = nil
	db.contact.Unlock()

	db.session.Lock()
	db.session.table = make(map[string]session.Session)
	db.session.Unlock()
}

// newID returns a fresh UUID absent from taken.
func newID(taken func(id string) bool) string {
	for {
		if id := uuid.NewString(); !taken(id) {
			return id
		}
	}
}
