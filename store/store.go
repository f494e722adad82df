package store

import (
	"errors"
	"time"

	"seva-kendra/database"
	"seva-kendra/metrics"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound        = errors.New("document not found")
	ErrDuplicateEmail  = errors.New("email already registered")
	ErrDuplicateVendor = errors.New("vendor profile already exists for user")
)

// Store bundles the repositories of one database
type Store struct {
	Users   *UserStore
	Vendors *VendorStore
	Admin   *AdminStore
}

// New builds repositories over db. m may be nil.
func New(db *mongo.Database, m *metrics.Metrics) *Store {
	t := tracker{m: m}
	users := db.Collection(database.UsersCollection)
	vendors := db.Collection(database.VendorsCollection)
	return &Store{
		Users:   &UserStore{coll: users, vendors: vendors, track: t},
		Vendors: &VendorStore{coll: vendors, track: t},
		Admin: &AdminStore{
			users:    users,
			vendors:  vendors,
			services: db.Collection(database.ServicesCollection),
			track:    t,
		},
	}
}

type tracker struct {
	m *metrics.Metrics
}

func (t tracker) op(name string) func(time.Time) {
	if t.m == nil {
		return func(time.Time) {}
	}
	return t.m.TrackDBOperation(name)
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
