package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"seva-kendra/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// VendorStore persists vendor applications in the vendors collection
type VendorStore struct {
	coll  *mongo.Collection
	track tracker
}

// Create inserts the vendor document of a freshly registered user
func (s *VendorStore) Create(ctx context.Context, v *models.Vendor) (primitive.ObjectID, error) {
	defer s.track.op("insert_vendor")(time.Now())
	res, err := s.coll.InsertOne(ctx, v)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, ErrDuplicateVendor
		}
		return primitive.NilObjectID, fmt.Errorf("insert vendor: %w", err)
	}
	id, _ := res.InsertedID.(primitive.ObjectID)
	v.ID = id
	return id, nil
}

// FindByUserID returns the vendor document owned by a user
func (s *VendorStore) FindByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Vendor, error) {
	defer s.track.op("find_vendor_by_user")(time.Now())
	var v models.Vendor
	if err := s.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&v); err != nil {
		return nil, notFound(err)
	}
	return &v, nil
}

// UpdateStatus overwrites the verification status of the vendor whose
// document id or owning user id is id. The current status is not checked.
// A rejection reason is stored only when rejecting; any other update clears it.
func (s *VendorStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status, reason string) (*models.Vendor, error) {
	defer s.track.op("update_vendor_status")(time.Now())

	set := bson.M{
		"verificationStatus": status,
		"updatedAt":          time.Now().UTC(),
	}
	update := bson.M{"$set": set}
	if status == models.VendorStatusRejected && reason != "" {
		set["rejectionReason"] = reason
	} else {
		update["$unset"] = bson.M{"rejectionReason": ""}
	}

	filter := bson.M{"$or": bson.A{
		bson.M{"_id": id},
		bson.M{"userId": id},
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var v models.Vendor
	err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&v)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update vendor status: %w", err)
	}
	return &v, nil
}

// CountByStatus counts vendors with a verification status
func (s *VendorStore) CountByStatus(ctx context.Context, status string) (int64, error) {
	defer s.track.op("count_vendors_by_status")(time.Now())
	n, err := s.coll.CountDocuments(ctx, bson.M{"verificationStatus": status})
	if err != nil {
		return 0, fmt.Errorf("count vendors by status: %w", err)
	}
	return n, nil
}
