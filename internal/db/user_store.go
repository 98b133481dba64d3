package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wuwenbin0122/wwb.blog/internal/auth"
	"github.com/wuwenbin0122/wwb.blog/internal/models"
)

const (
	emailField        = "personal_info.email"
	usernameField     = "personal_info.username"
	emailIndexName    = "personal_info.email_1"
	usernameIndexName = "personal_info.username_1"

	duplicateKeyCode = 11000
)

type personalInfo struct {
	FullName     string `bson:"fullname"`
	Email        string `bson:"email"`
	Password     string `bson:"password"`
	Username     string `bson:"username"`
	ProfileImage string `bson:"profile_img,omitempty"`
}

type userDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	PersonalInfo personalInfo       `bson:"personal_info"`
	JoinedAt     time.Time          `bson:"joinedAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func (d userDocument) toModel() *models.User {
	return &models.User{
		ID:           d.ID.Hex(),
		FullName:     d.PersonalInfo.FullName,
		Username:     d.PersonalInfo.Username,
		Email:        d.PersonalInfo.Email,
		PasswordHash: d.PersonalInfo.Password,
		ProfileImage: d.PersonalInfo.ProfileImage,
		CreatedAt:    d.JoinedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// MongoUserStore implements auth.UserStore on a MongoDB collection whose
// unique indexes are created by Mongo.EnsureCollections.
type MongoUserStore struct {
	users     *mongo.Collection
	collation *options.Collation
}

func NewMongoUserStore(users *mongo.Collection, emailCaseInsensitive bool) *MongoUserStore {
	store := &MongoUserStore{users: users}
	if emailCaseInsensitive {
		store.collation = caseInsensitiveCollation()
	}
	return store
}

func (s *MongoUserStore) Create(ctx context.Context, user *models.User) (*models.User, error) {
	now := time.Now().UTC()
	doc := userDocument{
		PersonalInfo: personalInfo{
			FullName:     user.FullName,
			Email:        user.Email,
			Password:     user.PasswordHash,
			Username:     user.Username,
			ProfileImage: user.ProfileImage,
		},
		JoinedAt:  now,
		UpdatedAt: now,
	}

	res, err := s.users.InsertOne(ctx, doc)
	if err != nil {
		return nil, classifyWriteError(err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("mongo: unexpected inserted id type %T", res.InsertedID)
	}
	doc.ID = id

	return doc.toModel(), nil
}

func (s *MongoUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	opts := options.FindOne()
	if s.collation != nil {
		opts.SetCollation(s.collation)
	}

	var doc userDocument
	err := s.users.FindOne(ctx, bson.M{emailField: email}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, auth.ErrNotFound
		}
		return nil, fmt.Errorf("mongo: find user by email: %w", err)
	}

	return doc.toModel(), nil
}

func (s *MongoUserStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	opts := options.FindOne().SetProjection(bson.M{"_id": 1})

	err := s.users.FindOne(ctx, bson.M{usernameField: username}, opts).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("mongo: check username: %w", err)
	}

	return true, nil
}

// classifyWriteError maps a duplicate key error to the store error of the
// index that rejected the insert.
func classifyWriteError(err error) error {
	var serverErr mongo.ServerError
	if !errors.As(err, &serverErr) || !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("mongo: insert user: %w", err)
	}

	switch {
	case serverErr.HasErrorCodeWithMessage(duplicateKeyCode, emailField):
		return auth.ErrEmailTaken
	case serverErr.HasErrorCodeWithMessage(duplicateKeyCode, usernameField):
		return auth.ErrUsernameTaken
	default:
		return fmt.Errorf("mongo: insert user: %w", err)
	}
}
