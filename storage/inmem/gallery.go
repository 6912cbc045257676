package inmemdb

import (
	"context"
	"sort"

	"github.com/Treasure123-school/THS/core"
	"github.com/Treasure123-school/THS/core/gallery"
)

type galleryRepository struct {
	db *galleryTable
}

var _ gallery.Repository = (*galleryRepository)(nil)

func NewGalleryRepository(db *DB) gallery.Repository {
	return &galleryRepository{db: db.gallery}
}

func (repo *galleryRepository) CreateItem(_ context.Context, item gallery.Item) (gallery.Item, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	item.ID = newID(func(id string) bool { _, ok := repo.db.table[id]; return ok })
	if item.UploadedAt.IsZero() {
		item.UploadedAt = core.NowFunc()
	}

	repo.db.seq++
	repo.db.table[item.ID] = &galleryRow{Item: item, seq: repo.db.seq}
	return item, nil
}

func (repo *galleryRepository) GetItem(_ context.Context, id string) (gallery.Item, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if row, ok := repo.db.table[id]; ok {
		return row.Item, nil
	}
	return gallery.Item{}, gallery.ErrNotFound
}

func (repo *galleryRepository) QueryItems(_ context.Context) ([]gallery.Item, error) {
	repo.db.RLock()
	rows := make([]galleryRow, 0, len(repo.db.table))
	for _, row := range repo.db.table {
		rows = append(rows, *row)
	}
	repo.db.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		if c := compareTimes(rows[i].UploadedAt, rows[j].UploadedAt); c != 0 {
			return c > 0
		}
		return rows[i].seq < rows[j].seq
	})

	items := make([]gallery.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.Item)
	}
	return items, nil
}

func (repo *galleryRepository) DeleteItem(_ context.Context, id string) (bool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return false, nil
	}
	delete(repo.db.table, id)
	return true, nil
}
