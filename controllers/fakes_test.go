package controllers

import (
	"context"
	"sync"
	"time"

	"seva-kendra/models"
	"seva-kendra/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore keeps users and vendors in memory and behaves like the Mongo store
type memStore struct {
	mu      sync.Mutex
	users   []*models.User
	vendors []*models.Vendor

	vendorCreateErr error
	services        int64
}

func newMemStore() *memStore { return &memStore{} }

type memUsers struct{ s *memStore }
type memVendors struct{ s *memStore }
type memViews struct{ s *memStore }

func (m *memStore) Users() *memUsers     { return &memUsers{m} }
func (m *memStore) Vendors() *memVendors { return &memVendors{m} }
func (m *memStore) Views() *memViews     { return &memViews{m} }

func (u *memUsers) CountByEmail(_ context.Context, email string) (int64, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	var n int64
	for _, x := range u.s.users {
		if x.Email == email {
			n++
		}
	}
	return n, nil
}

func (u *memUsers) Create(_ context.Context, user *models.User) (primitive.ObjectID, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for _, x := range u.s.users {
		if x.Email == user.Email {
			return primitive.NilObjectID, store.ErrDuplicateEmail
		}
	}
	user.ID = primitive.NewObjectID()
	cp := *user
	u.s.users = append(u.s.users, &cp)
	return user.ID, nil
}

func (u *memUsers) FindByEmailAndType(_ context.Context, email, userType string) (*models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for _, x := range u.s.users {
		if x.Email == email && x.UserType == userType {
			cp := *x
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (u *memUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for _, x := range u.s.users {
		if x.ID == id {
			cp := *x
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (u *memUsers) Delete(_ context.Context, id primitive.ObjectID) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for i, x := range u.s.users {
		if x.ID == id {
			u.s.users = append(u.s.users[:i], u.s.users[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (v *memVendors) Create(_ context.Context, vendor *models.Vendor) (primitive.ObjectID, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if v.s.vendorCreateErr != nil {
		return primitive.NilObjectID, v.s.vendorCreateErr
	}
	for _, x := range v.s.vendors {
		if x.UserID == vendor.UserID {
			return primitive.NilObjectID, store.ErrDuplicateVendor
		}
	}
	vendor.ID = primitive.NewObjectID()
	cp := *vendor
	v.s.vendors = append(v.s.vendors, &cp)
	return vendor.ID, nil
}

func (v *memVendors) FindByUserID(_ context.Context, userID primitive.ObjectID) (*models.Vendor, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, x := range v.s.vendors {
		if x.UserID == userID {
			cp := *x
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (v *memVendors) UpdateStatus(_ context.Context, id primitive.ObjectID, status, reason string) (*models.Vendor, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, x := range v.s.vendors {
		if x.ID == id || x.UserID == id {
			x.VerificationStatus = status
			x.RejectionReason = ""
			if status == models.VendorStatusRejected {
				x.RejectionReason = reason
			}
			x.UpdatedAt = time.Now().UTC()
			cp := *x
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (a *memViews) UsersWithVendors(_ context.Context) ([]models.UserWithVendor, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	out := make([]models.UserWithVendor, 0, len(a.s.users))
	for i := len(a.s.users) - 1; i >= 0; i-- {
		u := a.s.users[i]
		row := models.UserWithVendor{
			ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone, Address: u.Address,
			Category: u.Category, UserType: u.UserType, Status: u.Status, CreatedAt: u.CreatedAt,
		}
		for _, v := range a.s.vendors {
			if v.UserID == u.ID {
				st, vs, at := v.ServiceType, v.VerificationStatus, v.CreatedAt
				row.ServiceType, row.VerificationStatus, row.VendorAppliedDate = &st, &vs, &at
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func (a *memViews) VendorsWithUsers(_ context.Context, status string) ([]models.VendorWithUser, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	var out []models.VendorWithUser
	for i := len(a.s.vendors) - 1; i >= 0; i-- {
		v := a.s.vendors[i]
		if status != "" && v.VerificationStatus != status {
			continue
		}
		for _, u := range a.s.users {
			if u.ID != v.UserID {
				continue
			}
			out = append(out, models.VendorWithUser{
				ID: v.ID, UserID: v.UserID, ServiceType: v.ServiceType,
				VerificationStatus: v.VerificationStatus, RejectionReason: v.RejectionReason,
				CreatedAt: v.CreatedAt,
				UserInfo: models.VendorOwner{
					ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone,
					Address: u.Address, Category: u.Category, CreatedAt: u.CreatedAt,
				},
			})
		}
	}
	return out, nil
}

func (a *memViews) RegistrationStats(_ context.Context) (models.RegistrationStats, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	var st models.RegistrationStats
	st.TotalRegistrations = int64(len(a.s.users))
	st.TotalUsers, st.TotalVendors = a.s.countByType()
	for _, v := range a.s.vendors {
		switch v.VerificationStatus {
		case models.VendorStatusApproved:
			st.ApprovedVendors++
		case models.VendorStatusPending:
			st.PendingVendors++
		case models.VendorStatusRejected:
			st.RejectedVendors++
		}
	}
	return st, nil
}

func (a *memViews) DashboardStats(_ context.Context) (models.DashboardStats, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	users, vendors := a.s.countByType()
	return models.DashboardStats{
		TotalUsers:     users,
		TotalVendors:   vendors,
		ActiveServices: a.s.services,
	}, nil
}

func (m *memStore) countByType() (users, vendors int64) {
	for _, u := range m.users {
		switch u.UserType {
		case models.UserTypeUser:
			users++
		case models.UserTypeVendor:
			vendors++
		}
	}
	return users, vendors
}

// recordingPublisher remembers published subjects
type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	payloads []interface{}
}

func (p *recordingPublisher) Publish(_ context.Context, subject string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

// recordingSender remembers outgoing mail
type recordingSender struct {
	mu   sync.Mutex
	sent []sentMail
}

type sentMail struct{ to, subject, body string }

func (s *recordingSender) Send(to, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentMail{to, subject, body})
	return nil
}

// fixedLimiter allows a fixed number of calls per key
type fixedLimiter struct {
	mu    sync.Mutex
	limit int
	seen  map[string]int
}

func (l *fixedLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.seen == nil {
		l.seen = map[string]int{}
	}
	l.seen[key]++
	return l.seen[key] <= l.limit, nil
}
