package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"seva-kendra/apperrors"
	"seva-kendra/events"
	"seva-kendra/logger"
	"seva-kendra/metrics"
	"seva-kendra/models"
	"seva-kendra/ratelimit"
	"seva-kendra/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// UserRepository is the users collection as seen by the handlers
type UserRepository interface {
	CountByEmail(ctx context.Context, email string) (int64, error)
	Create(ctx context.Context, u *models.User) (primitive.ObjectID, error)
	FindByEmailAndType(ctx context.Context, email, userType string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// VendorRepository is the vendors collection as seen by the handlers
type VendorRepository interface {
	Create(ctx context.Context, v *models.Vendor) (primitive.ObjectID, error)
	FindByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Vendor, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status, reason string) (*models.Vendor, error)
}

// AdminRepository serves the joined admin views
type AdminRepository interface {
	UsersWithVendors(ctx context.Context) ([]models.UserWithVendor, error)
	VendorsWithUsers(ctx context.Context, status string) ([]models.VendorWithUser, error)
	RegistrationStats(ctx context.Context) (models.RegistrationStats, error)
	DashboardStats(ctx context.Context) (models.DashboardStats, error)
}

// Services are the collaborators shared by all controllers
type Services struct {
	Tokens    *utils.TokenManager
	Email     *utils.EmailService
	Events    events.Publisher
	Limiter   ratelimit.Limiter
	Metrics   *metrics.Metrics
	DBTimeout time.Duration

	// Background runs fire-and-forget work. Defaults to a new goroutine;
	// the server passes BackgroundTasks.Go so shutdown can wait for it.
	Background func(func())
}

// BackgroundTasks tracks fire-and-forget work such as outgoing mail
type BackgroundTasks struct {
	wg sync.WaitGroup
}

// Go runs f on its own goroutine
func (t *BackgroundTasks) Go(f func()) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		f()
	}()
}

// Wait blocks until every task has returned or ctx is done
func (t *BackgroundTasks) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s Services) withDefaults() Services {
	if s.Events == nil {
		s.Events = events.NoopPublisher{}
	}
	if s.Limiter == nil {
		s.Limiter = ratelimit.Unlimited{}
	}
	if s.Metrics == nil {
		s.Metrics = metrics.New("seva")
	}
	if s.DBTimeout == 0 {
		s.DBTimeout = 5 * time.Second
	}
	if s.Background == nil {
		s.Background = func(f func()) { go f() }
	}
	return s
}

// dbContext bounds the storage calls of one request
func (s Services) dbContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.DBTimeout)
}

// publish emits an event; failures are logged and never reach the client
func (s Services) publish(ctx context.Context, subject string, payload interface{}) {
	if err := s.Events.Publish(ctx, subject, payload); err != nil {
		logger.FromContext(ctx).Warn("Failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}

// sendEmail runs send in the background and logs its failure
func (s Services) sendEmail(log *zap.Logger, to string, send func() error) {
	if s.Email == nil {
		return
	}
	s.Background(func() {
		if err := send(); err != nil {
			log.Error("Failed to send email", zap.String("to", to), zap.Error(err))
		}
	})
}

func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.ErrInvalidBody
	}
	return nil
}
