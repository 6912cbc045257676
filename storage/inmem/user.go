package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/Treasure123-school/THS/core"
	"github.com/Treasure123-school/THS/core/user"
)

var defaultUserOrdering = []core.Ordering{{Field: "createdAt", Ascending: false}}

type userRepository struct {
	db *userTable
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db.user}
}

func (repo *userRepository) emailTaken(email, exclID string) bool {
	for id, row := range repo.db.table {
		if row.Email == email && id != exclID {
			return true
		}
	}
	return false
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.emailTaken(usr.Email, "") {
		return user.User{}, user.ErrEmailExists
	}
	usr.ID = newID(func(id string) bool { _, ok := repo.db.table[id]; return ok })
	now := core.NowFunc()
	if usr.CreatedAt.IsZero() {
		usr.CreatedAt = now
	}
	if usr.UpdatedAt.IsZero() {
		usr.UpdatedAt = usr.CreatedAt
	}

	repo.db.seq++
	repo.db.table[usr.ID] = &userRow{User: usr, seq: repo.db.seq}
	return usr, nil
}

func (repo *userRepository) GetUser(_ context.Context, id string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if row, ok := repo.db.table[id]; ok {
		return row.User, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	email = strings.ToLower(email)
	for _, row := range repo.db.table {
		if row.Email == email {
			return row.User, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) QueryUsers(_ context.Context, filter user.QueryFilter, ordering ...core.Ordering) ([]user.User, error) {
	repo.db.RLock()
	rows := make([]userRow, 0, len(repo.db.table))
	for _, row := range repo.db.table {
		if filter.IsEmpty() || filter.Match(row.User) {
			rows = append(rows, *row)
		}
	}
	repo.db.RUnlock()

	if len(ordering) == 0 {
		ordering = defaultUserOrdering
	}
	sort.Slice(rows, func(i, j int) bool {
		for _, ord := range ordering {
			if c := compareUsers(rows[i].User, rows[j].User, ord.Field); c != 0 {
				if ord.Ascending {
					return c < 0
				}
				return c > 0
			}
		}
		return rows[i].seq < rows[j].seq
	})

	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.User)
	}
	return users, nil
}

func (repo *userRepository) UpdateUser(_ context.Context, id string, patch user.Patch) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// only save set fields
	row, ok := repo.db.table[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	usr := row.User
	if patch.Name != nil {
		usr.Name = *patch.Name
	}
	if patch.Email != nil {
		if repo.emailTaken(*patch.Email, id) {
			return user.User{}, user.ErrEmailExists
		}
		usr.Email = *patch.Email
	}
	if patch.Role != nil {
		usr.Role = *patch.Role
	}
	if patch.PasswordHash != nil {
		usr.PasswordHash = patch.PasswordHash
	}
	usr.UpdatedAt = core.NowFunc()

	row.User = usr
	return usr, nil
}

func (repo *userRepository) DeleteUser(_ context.Context, id string) (bool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return false, nil
	}
	delete(repo.db.table, id)
	return true, nil
}

// compareUsers returns -1, 0 or 1. Unknown fields compare equal.
func compareUsers(a, b user.User, field string) int {
	switch field {
	case "createdAt":
		return compareTimes(a.CreatedAt, b.CreatedAt)
	case "updatedAt":
		return compareTimes(a.UpdatedAt, b.UpdatedAt)
	case "name":
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	case "email":
		return strings.Compare(a.Email, b.Email)
	case "role":
		return strings.Compare(string(a.Role), string(b.Role))
	}
	return 0
}
