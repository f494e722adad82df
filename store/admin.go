package store

import (
	"context"
	"fmt"
	"time"

	"seva-kendra/database"
	"seva-kendra/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// AdminStore builds the joined views and counters of the admin console
type AdminStore struct {
	users    *mongo.Collection
	vendors  *mongo.Collection
	services *mongo.Collection
	track    tracker
}

// UsersWithVendors joins every user with its optional vendor document,
// newest first. Passwords are projected out.
func (s *AdminStore) UsersWithVendors(ctx context.Context) ([]models.UserWithVendor, error) {
	defer s.track.op("aggregate_users")(time.Now())
	pipeline := mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: database.VendorsCollection},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "userId"},
			{Key: "as", Value: "vendorInfo"},
		}}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "serviceType", Value: bson.D{{Key: "$arrayElemAt", Value: bson.A{"$vendorInfo.serviceType", 0}}}},
			{Key: "verificationStatus", Value: bson.D{{Key: "$arrayElemAt", Value: bson.A{"$vendorInfo.verificationStatus", 0}}}},
			{Key: "vendorAppliedDate", Value: bson.D{{Key: "$arrayElemAt", Value: bson.A{"$vendorInfo.createdAt", 0}}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "vendorInfo", Value: 0},
			{Key: "password", Value: 0},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
	}

	cursor, err := s.users.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate users: %w", err)
	}
	users := []models.UserWithVendor{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

// VendorsWithUsers joins vendors with their owning user, newest first.
// Vendors whose user no longer exists are dropped. An empty status
// returns every vendor.
func (s *AdminStore) VendorsWithUsers(ctx context.Context, status string) ([]models.VendorWithUser, error) {
	defer s.track.op("aggregate_vendors")(time.Now())
	pipeline := mongo.Pipeline{}
	if status != "" {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.D{{Key: "verificationStatus", Value: status}}}})
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: database.UsersCollection},
			{Key: "localField", Value: "userId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "userInfo"},
		}}},
		bson.D{{Key: "$unwind", Value: "$userInfo"}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 1},
			{Key: "userId", Value: 1},
			{Key: "serviceType", Value: 1},
			{Key: "verificationStatus", Value: 1},
			{Key: "rejectionReason", Value: 1},
			{Key: "createdAt", Value: 1},
			{Key: "userInfo._id", Value: 1},
			{Key: "userInfo.name", Value: 1},
			{Key: "userInfo.email", Value: 1},
			{Key: "userInfo.phone", Value: 1},
			{Key: "userInfo.address", Value: 1},
			{Key: "userInfo.category", Value: 1},
			{Key: "userInfo.createdAt", Value: 1},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
	)

	cursor, err := s.vendors.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate vendors: %w", err)
	}
	vendors := []models.VendorWithUser{}
	if err := cursor.All(ctx, &vendors); err != nil {
		return nil, fmt.Errorf("decode vendors: %w", err)
	}
	return vendors, nil
}

// RegistrationStats runs independent counts; the numbers are not a snapshot.
func (s *AdminStore) RegistrationStats(ctx context.Context) (models.RegistrationStats, error) {
	defer s.track.op("registration_stats")(time.Now())
	var stats models.RegistrationStats
	counts := []struct {
		dst    *int64
		coll   *mongo.Collection
		filter bson.M
	}{
		{&stats.TotalRegistrations, s.users, bson.M{}},
		{&stats.TotalUsers, s.users, bson.M{"userType": models.UserTypeUser}},
		{&stats.TotalVendors, s.users, bson.M{"userType": models.UserTypeVendor}},
		{&stats.ApprovedVendors, s.vendors, bson.M{"verificationStatus": models.VendorStatusApproved}},
		{&stats.PendingVendors, s.vendors, bson.M{"verificationStatus": models.VendorStatusPending}},
		{&stats.RejectedVendors, s.vendors, bson.M{"verificationStatus": models.VendorStatusRejected}},
	}
	for _, c := range counts {
		n, err := c.coll.CountDocuments(ctx, c.filter)
		if err != nil {
			return models.RegistrationStats{}, fmt.Errorf("count %s: %w", c.coll.Name(), err)
		}
		*c.dst = n
	}
	return stats, nil
}

// DashboardStats returns the platform counters of the admin dashboard
func (s *AdminStore) DashboardStats(ctx context.Context) (models.DashboardStats, error) {
	defer s.track.op("dashboard_stats")(time.Now())
	var stats models.DashboardStats
	var err error
	if stats.TotalUsers, err = s.users.CountDocuments(ctx, bson.M{"userType": models.UserTypeUser}); err != nil {
		return stats, fmt.Errorf("count users: %w", err)
	}
	if stats.TotalVendors, err = s.users.CountDocuments(ctx, bson.M{"userType": models.UserTypeVendor}); err != nil {
		return stats, fmt.Errorf("count vendors: %w", err)
	}
	if stats.ActiveServices, err = s.services.CountDocuments(ctx, bson.M{"status": "in-progress"}); err != nil {
		return stats, fmt.Errorf("count services: %w", err)
	}
	return stats, nil
}
