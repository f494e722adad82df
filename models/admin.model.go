package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserWithVendor is a users row joined with its optional vendor document
type UserWithVendor struct {
	ID                 primitive.ObjectID `bson:"_id"`
	Name               string             `bson:"name"`
	Email              string             `bson:"email"`
	Phone              string             `bson:"phone"`
	Address            string             `bson:"address"`
	Category           string             `bson:"category"`
	UserType           string             `bson:"userType"`
	Status             string             `bson:"status"`
	CreatedAt          time.Time          `bson:"createdAt"`
	ServiceType        *string            `bson:"serviceType,omitempty"`
	VerificationStatus *string            `bson:"verificationStatus,omitempty"`
	VendorAppliedDate  *time.Time         `bson:"vendorAppliedDate,omitempty"`
}

// AdminUserRow is the JSON row of GET /api/admin/users
type AdminUserRow struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Email              string     `json:"email"`
	Phone              string     `json:"phone"`
	Address            string     `json:"address"`
	Category           string     `json:"category"`
	UserType           string     `json:"user_type"`
	Status             string     `json:"status"`
	CreatedAt          time.Time  `json:"created_at"`
	ServiceType        *string    `json:"service_type,omitempty"`
	VerificationStatus *string    `json:"verification_status,omitempty"`
	VendorAppliedDate  *time.Time `json:"vendor_applied_date,omitempty"`
}

// Row flattens the joined document for the admin console
func (u UserWithVendor) Row() AdminUserRow {
	return AdminUserRow{
		ID:                 u.ID.Hex(),
		Name:               u.Name,
		Email:              u.Email,
		Phone:              u.Phone,
		Address:            u.Address,
		Category:           u.Category,
		UserType:           u.UserType,
		Status:             u.Status,
		CreatedAt:          u.CreatedAt,
		ServiceType:        u.ServiceType,
		VerificationStatus: u.VerificationStatus,
		VendorAppliedDate:  u.VendorAppliedDate,
	}
}

// VendorOwner is the subset of the owning user embedded in a vendor view
type VendorOwner struct {
	ID        primitive.ObjectID `bson:"_id"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Phone     string             `bson:"phone"`
	Address   string             `bson:"address"`
	Category  string             `bson:"category"`
	CreatedAt time.Time          `bson:"createdAt"`
}

// VendorWithUser is a vendors row joined with its owning user
type VendorWithUser struct {
	ID                 primitive.ObjectID `bson:"_id"`
	UserID             primitive.ObjectID `bson:"userId"`
	ServiceType        string             `bson:"serviceType"`
	VerificationStatus string             `bson:"verificationStatus"`
	RejectionReason    string             `bson:"rejectionReason,omitempty"`
	CreatedAt          time.Time          `bson:"createdAt"`
	UserInfo           VendorOwner        `bson:"userInfo"`
}

// AdminVendorRow is the JSON row of GET /api/admin/vendors
type AdminVendorRow struct {
	ID                 string    `json:"id"`
	VendorID           string    `json:"vendor_id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	Phone              string    `json:"phone"`
	Address            string    `json:"address"`
	Category           string    `json:"category"`
	RegisteredDate     time.Time `json:"registered_date"`
	ServiceType        string    `json:"service_type"`
	VerificationStatus string    `json:"verification_status"`
	ApplicationDate    time.Time `json:"application_date"`
	RejectionReason    string    `json:"rejection_reason,omitempty"`
}

// Row flattens the joined document for the admin console. The id is the
// owning user's id, which is what the console sends back on status updates.
func (v VendorWithUser) Row() AdminVendorRow {
	id := v.UserInfo.ID
	if id.IsZero() {
		id = v.UserID
	}
	return AdminVendorRow{
		ID:                 id.Hex(),
		VendorID:           v.ID.Hex(),
		Name:               v.UserInfo.Name,
		Email:              v.UserInfo.Email,
		Phone:              v.UserInfo.Phone,
		Address:            v.UserInfo.Address,
		Category:           v.UserInfo.Category,
		RegisteredDate:     v.UserInfo.CreatedAt,
		ServiceType:        v.ServiceType,
		VerificationStatus: v.VerificationStatus,
		ApplicationDate:    v.CreatedAt,
		RejectionReason:    v.RejectionReason,
	}
}

// RegistrationStats are the counters shown above the admin tables
type RegistrationStats struct {
	TotalRegistrations int64 `json:"total_registrations"`
	TotalUsers         int64 `json:"total_users"`
	TotalVendors       int64 `json:"total_vendors"`
	ApprovedVendors    int64 `json:"approved_vendors"`
	PendingVendors     int64 `json:"pending_vendors"`
	RejectedVendors    int64 `json:"rejected_vendors"`
}

// DashboardStats are the platform counters of the admin dashboard
type DashboardStats struct {
	TotalUsers     int64 `json:"totalUsers"`
	TotalVendors   int64 `json:"totalVendors"`
	ActiveServices int64 `json:"activeServices"`
}
