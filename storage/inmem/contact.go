package inmemdb

import (
	"context"

	"github.com/Treasure123-school/THS/core/contact"
)

type contactRepository struct {
	db *contactTable
}

var _ contact.Repository = (*contactRepository)(nil)

func NewContactRepository(db *DB) contact.Repository {
	return &contactRepository{db: db.contact}
}

func (repo *contactRepository) AppendMessage(_ context.Context, msg contact.Message) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.log = append(repo.db.log, msg)
	return nil
}

func (repo *contactRepository) QueryMessages(_ context.Context) ([]contact.Message, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	msgs := make([]contact.Message, 0, len(repo.db.log))
	for i := len(repo.db.log) - 1; i >= 0; i-- {
		msgs = append(msgs, repo.db.log[i])
	}
	return msgs, nil
}
