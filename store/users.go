package store

import (
	"context"
	"fmt"
	"time"

	"seva-kendra/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserStore persists accounts in the users collection
type UserStore struct {
	coll    *mongo.Collection
	vendors *mongo.Collection
	track   tracker
}

// CountByEmail returns how many accounts use email
func (s *UserStore) CountByEmail(ctx context.Context, email string) (int64, error) {
	defer s.track.op("count_users_by_email")(time.Now())
	n, err := s.coll.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return 0, fmt.Errorf("count users by email: %w", err)
	}
	return n, nil
}

// Create inserts u and returns its generated id
func (s *UserStore) Create(ctx context.Context, u *models.User) (primitive.ObjectID, error) {
	defer s.track.op("insert_user")(time.Now())
	res, err := s.coll.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, ErrDuplicateEmail
		}
		return primitive.NilObjectID, fmt.Errorf("insert user: %w", err)
	}
	id, _ := res.InsertedID.(primitive.ObjectID)
	u.ID = id
	return id, nil
}

// FindByEmailAndType looks up the account used for login
func (s *UserStore) FindByEmailAndType(ctx context.Context, email, userType string) (*models.User, error) {
	defer s.track.op("find_user_by_email")(time.Now())
	var u models.User
	err := s.coll.FindOne(ctx, bson.M{"email": email, "userType": userType}).Decode(&u)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// FindByID returns the account with the given id
func (s *UserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	defer s.track.op("find_user_by_id")(time.Now())
	var u models.User
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// Delete removes a single account
func (s *UserStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer s.track.op("delete_user")(time.Now())
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// CountByName counts accounts registered under an exact name
func (s *UserStore) CountByName(ctx context.Context, name string) (int64, error) {
	defer s.track.op("count_users_by_name")(time.Now())
	n, err := s.coll.CountDocuments(ctx, bson.M{"name": name})
	if err != nil {
		return 0, fmt.Errorf("count users by name: %w", err)
	}
	return n, nil
}

// DeleteByName removes every account with an exact name together with
// their vendor documents. It returns the number of users deleted.
func (s *UserStore) DeleteByName(ctx context.Context, name string) (int64, error) {
	defer s.track.op("delete_users_by_name")(time.Now())
	cursor, err := s.coll.Find(ctx, bson.M{"name": name})
	if err != nil {
		return 0, fmt.Errorf("find users by name: %w", err)
	}
	var matched []models.User
	if err := cursor.All(ctx, &matched); err != nil {
		return 0, fmt.Errorf("decode users: %w", err)
	}
	if len(matched) == 0 {
		return 0, nil
	}

	ids := make([]primitive.ObjectID, 0, len(matched))
	for _, u := range matched {
		ids = append(ids, u.ID)
	}
	if _, err := s.vendors.DeleteMany(ctx, bson.M{"userId": bson.M{"$in": ids}}); err != nil {
		return 0, fmt.Errorf("delete vendors: %w", err)
	}
	res, err := s.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, fmt.Errorf("delete users: %w", err)
	}
	return res.DeletedCount, nil
}

// unnormalizedEmail matches addresses with upper-case letters or
// surrounding whitespace, written before emails were normalized
var unnormalizedEmail = bson.M{"email": bson.M{"$regex": `[A-Z]|^\s|\s$`}}

// UnnormalizedEmails returns the accounts whose stored email is not
// trimmed and lower-cased. Only id, name and email are loaded.
func (s *UserStore) UnnormalizedEmails(ctx context.Context) ([]models.User, error) {
	defer s.track.op("find_unnormalized_emails")(time.Now())
	opts := options.Find().
		SetProjection(bson.M{"_id": 1, "name": 1, "email": 1}).
		SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := s.coll.Find(ctx, unnormalizedEmail, opts)
	if err != nil {
		return nil, fmt.Errorf("find unnormalized emails: %w", err)
	}
	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

// SetEmail replaces the email of one account. An address already used by
// another account yields ErrDuplicateEmail.
func (s *UserStore) SetEmail(ctx context.Context, id primitive.ObjectID, email string) error {
	defer s.track.op("set_user_email")(time.Now())
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"email": email}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("set user email: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
