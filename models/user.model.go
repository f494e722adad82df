package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User types accepted at registration
const (
	UserTypeUser   = "user"
	UserTypeVendor = "vendor"
)

// DefaultCategory is stored when a user registers without a category
const DefaultCategory = "individual-user"

// AccountStatusActive is the only account status ever written
const AccountStatusActive = "active"

// User represents a registered account in the users collection
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Phone     string             `bson:"phone" json:"phone"`
	Password  string             `bson:"password,omitempty" json:"-"`
	Address   string             `bson:"address" json:"address"`
	Category  string             `bson:"category" json:"category"`
	UserType  string             `bson:"userType" json:"userType"`
	Status    string             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// IsVendor reports whether the account registered as a service provider
func (u *User) IsVendor() bool {
	return u.UserType == UserTypeVendor
}

// UserSummary is the account view returned by login and /me
type UserSummary struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	UserType     string  `json:"userType"`
	VendorStatus *string `json:"vendorStatus"`
}

// Summary builds the client view of the user. vendor may be nil.
func (u *User) Summary(vendor *Vendor) UserSummary {
	s := UserSummary{
		ID:       u.ID.Hex(),
		Name:     u.Name,
		Email:    u.Email,
		UserType: u.UserType,
	}
	if vendor != nil {
		status := vendor.VerificationStatus
		s.VendorStatus = &status
	}
	return s
}
