package mongo

import (
	"context"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// userDoc is the persisted shape of a domain.User.
type userDoc struct {
	ID           string    `bson:"_id"`
	FullName     string    `bson:"full_name"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	Role         string    `bson:"role"`
	Status       string    `bson:"status"`
	Version      int64     `bson:"version"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func toDoc(u domain.User) userDoc {
	return userDoc{
		ID:           u.ID,
		FullName:     u.FullName,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Status:       string(u.Status),
		Version:      u.Version,
		CreatedAt:    u.CreatedAt.UTC(),
		UpdatedAt:    u.UpdatedAt.UTC(),
	}
}

func (d userDoc) user() domain.User {
	return domain.User{
		ID:           d.ID,
		FullName:     d.FullName,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         domain.Role(d.Role),
		Status:       domain.Status(d.Status),
		Version:      d.Version,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

type usersRepo struct {
	col *mongo.Collection
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.col.InsertOne(ctx, toDoc(u))
	return wrapError(err)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	d, err := findOne[userDoc](ctx, r.col, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return domain.User{}, err
	}
	return d.user(), nil
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	d, err := findOne[userDoc](ctx, r.col, bson.D{{Key: "email", Value: email}})
	if err != nil {
		return domain.User{}, err
	}
	return d.user(), nil
}

func (r *usersRepo) GetUserByEmailExcluding(ctx context.Context, email, excludeID string) (domain.User, error) {
	d, err := findOne[userDoc](ctx, r.col, bson.D{
		{Key: "email", Value: email},
		{Key: "_id", Value: bson.D{{Key: "$ne", Value: excludeID}}},
	})
	if err != nil {
		return domain.User{}, err
	}
	return d.user(), nil
}

func (r *usersRepo) SaveUser(ctx context.Context, u domain.User) (domain.User, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)

	res, err := r.col.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: u.ID}, {Key: "version", Value: u.Version}},
		bson.D{
			{Key: "$set", Value: bson.D{
				{Key: "full_name", Value: u.FullName},
				{Key: "email", Value: u.Email},
				{Key: "password_hash", Value: u.PasswordHash},
				{Key: "status", Value: string(u.Status)},
				{Key: "updated_at", Value: now},
			}},
			{Key: "$inc", Value: bson.D{{Key: "version", Value: int64(1)}}},
		},
	)
	if err != nil {
		return domain.User{}, wrapError(err)
	}

	if res.MatchedCount == 0 {
		n, err := r.col.CountDocuments(ctx, bson.D{{Key: "_id", Value: u.ID}})
		if err != nil {
			return domain.User{}, wrapError(err)
		}
		if n == 0 {
			return domain.User{}, store.ErrNotFound
		}
		return domain.User{}, store.ErrConflict
	}

	u.Version++
	u.UpdatedAt = now
	return u, nil
}

func (r *usersRepo) CountUsers(ctx context.Context) (int64, error) {
	n, err := r.col.CountDocuments(ctx, bson.D{})
	return n, wrapError(err)
}

func (r *usersRepo) ListUsers(ctx context.Context, skip, limit int) ([]domain.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	docs, err := findMany[userDoc](ctx, r.col, bson.D{}, opts)
	if err != nil {
		return nil, err
	}

	out := make([]domain.User, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.user())
	}
	return out, nil
}
