package accounts

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Groups manages role groups and user membership.
type Groups interface {
	repository.Repository[*Group]

	GetOrCreateByName(ctx context.Context, name string) (*Group, error)
	GetOrCreateByNameTx(ctx context.Context, tx bun.IDB, name string) (*Group, error)
	Assign(ctx context.Context, user *User, group *Group) error
	AssignTx(ctx context.Context, tx bun.IDB, user *User, group *Group) error
}

type groups struct {
	repository.Repository[*Group]
	db *bun.DB
}

var _ Groups = (*groups)(nil)

func NewGroupsRepository(db *bun.DB) Groups {
	repo := repository.NewRepository[*Group](db, repository.ModelHandlers[*Group]{
		NewRecord: func() *Group { return &Group{} },
		GetID: func(g *Group) uuid.UUID {
			if g == nil {
				return uuid.Nil
			}
			return g.ID
		},
		SetID: func(g *Group, id uuid.UUID) {
			if g != nil {
				g.ID = id
			}
		},
		GetIdentifier: func() string {
			return "name"
		},
	})

	return &groups{
		Repository: repo,
		db:         db,
	}
}

func (a *groups) GetOrCreateByName(ctx context.Context, name string) (*Group, error) {
	return a.GetOrCreateByNameTx(ctx, a.db, name)
}

func (a *groups) GetOrCreateByNameTx(ctx context.Context, tx bun.IDB, name string) (*Group, error) {
	record := &Group{}

	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.name = ?", name).
		Limit(1).
		Scan(ctx)

	if err == nil {
		return record, nil
	}

	if !repository.IsRecordNotFound(err) {
		return nil, err
	}

	record = &Group{
		ID:   uuid.New(),
		Name: name,
	}

	return a.Repository.CreateTx(ctx, tx, record)
}

func (a *groups) Assign(ctx context.Context, user *User, group *Group) error {
	return a.AssignTx(ctx, a.db, user, group)
}

// AssignTx adds the user to the group. Re-assigning an existing member
// is a no-op.
func (a *groups) AssignTx(ctx context.Context, tx bun.IDB, user *User, group *Group) error {
	membership := &GroupMembership{
		UserID:  user.ID,
		GroupID: group.ID,
	}

	_, err := tx.NewInsert().
		Model(membership).
		On("CONFLICT (user_id, group_id) DO NOTHING").
		Exec(ctx)

	return err
}
