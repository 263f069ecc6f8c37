package database

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"waypoint/internal/domain/model"
	dbRepository "waypoint/internal/domain/repository/database"
)

type UserStore struct {
	db *Database
}

func NewUserStore(db *Database) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, user *model.User) error {
	ctx, cancel := context.WithTimeout(ctx, s.db.QueryTimeout)
	defer cancel()

	_, err := s.db.collection(UserCollection).InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return dbRepository.ErrDuplicate
	}

	return err
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *UserStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.db.QueryTimeout)
	defer cancel()

	var user model.User
	if err := s.db.collection(UserCollection).FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, dbRepository.ErrNotFound
		}

		return nil, err
	}

	return &user, nil
}
