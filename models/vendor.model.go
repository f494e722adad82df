package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Verification statuses of a vendor application
const (
	VendorStatusPending  = "pending"
	VendorStatusApproved = "approved"
	VendorStatusRejected = "rejected"
)

// IsDecisionStatus reports whether status is a valid admin decision
func IsDecisionStatus(status string) bool {
	return status == VendorStatusApproved || status == VendorStatusRejected
}

// BusinessProfile holds the optional service-provider details
type BusinessProfile struct {
	BusinessName    string `bson:"businessName,omitempty" json:"businessName,omitempty"`
	BusinessAddress string `bson:"businessAddress,omitempty" json:"businessAddress,omitempty"`
	Experience      string `bson:"experience,omitempty" json:"experience,omitempty"`
	Rate            string `bson:"rate,omitempty" json:"rate,omitempty"`
	LicenseNumber   string `bson:"licenseNumber,omitempty" json:"licenseNumber,omitempty"`
	Description     string `bson:"description,omitempty" json:"description,omitempty"`
}

// Vendor is the one-to-one companion document of a vendor-type User
type Vendor struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID             primitive.ObjectID `bson:"userId" json:"userId"`
	ServiceType        string             `bson:"serviceType" json:"serviceType"`
	VerificationStatus string             `bson:"verificationStatus" json:"verificationStatus"`
	RejectionReason    string             `bson:"rejectionReason,omitempty" json:"rejectionReason,omitempty"`
	BusinessProfile    `bson:",inline"`
	CreatedAt          time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}
