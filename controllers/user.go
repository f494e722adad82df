package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"seva-kendra/apperrors"
	"seva-kendra/events"
	"seva-kendra/logger"
	"seva-kendra/middleware"
	"seva-kendra/models"
	"seva-kendra/store"
	"seva-kendra/utils"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	errInvalidUserType    = apperrors.BadRequest("Invalid user type")
	errInvalidServiceType = apperrors.BadRequest("Invalid service type")
	errInvalidEmail       = apperrors.BadRequest("Invalid email address")
	errPasswordTooLong    = apperrors.BadRequest("Password is too long")
	errUserNotFound       = apperrors.NotFound("User not found")
)

// UserController handles registration, login and the current account
type UserController struct {
	Users    UserRepository
	Vendors  VendorRepository
	svc      Services
	validate *validator.Validate
}

// NewUserController creates a new UserController
func NewUserController(users UserRepository, vendors VendorRepository, svc Services) *UserController {
	return &UserController{
		Users:    users,
		Vendors:  vendors,
		svc:      svc.withDefaults(),
		validate: newValidator(),
	}
}

type registerRequest struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"required"`
	Password    string `json:"password" validate:"required"`
	Address     string `json:"address" validate:"required"`
	UserType    string `json:"userType" validate:"required,oneof=user vendor"`
	Category    string `json:"category"`
	ServiceType string `json:"serviceType" validate:"omitempty,servicetype"`
	models.BusinessProfile
}

func (req *registerRequest) normalize() {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Address = strings.TrimSpace(req.Address)
	req.UserType = strings.TrimSpace(req.UserType)
	req.Category = strings.TrimSpace(req.Category)
	req.ServiceType = strings.TrimSpace(req.ServiceType)
}

// Register handles user registration
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	req.normalize()
	if err := uc.validate.Struct(&req); err != nil {
		utils.WriteError(w, registerValidationError(err))
		return
	}

	ctx, cancel := uc.svc.dbContext(r)
	defer cancel()

	// Check if user already exists
	count, err := uc.Users.CountByEmail(ctx, req.Email)
	if err != nil {
		log.Error("Failed to check existing email", zap.Error(err))
		utils.WriteError(w, err)
		return
	}
	if count > 0 {
		utils.WriteError(w, apperrors.ErrEmailTaken)
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if errors.Is(err, utils.ErrPasswordTooLong) {
		utils.WriteError(w, errPasswordTooLong)
		return
	}
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		utils.WriteError(w, err)
		return
	}

	category := req.Category
	if category == "" {
		category = models.DefaultCategory
	}
	now := time.Now().UTC()
	user := &models.User{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  hashedPassword,
		Address:   req.Address,
		Category:  category,
		UserType:  req.UserType,
		Status:    models.AccountStatusActive,
		CreatedAt: now,
	}
	userID, err := uc.Users.Create(ctx, user)
	if err != nil {
		// the unique email index catches registrations racing past the count
		if errors.Is(err, store.ErrDuplicateEmail) {
			utils.WriteError(w, apperrors.ErrEmailTaken)
			return
		}
		log.Error("Failed to create user", zap.Error(err))
		utils.WriteError(w, err)
		return
	}

	var vendor *models.Vendor
	if user.IsVendor() && req.ServiceType != "" {
		vendor = &models.Vendor{
			UserID:             userID,
			ServiceType:        req.ServiceType,
			VerificationStatus: models.VendorStatusPending,
			BusinessProfile:    req.BusinessProfile,
			CreatedAt:          now,
		}
		if _, err := uc.Vendors.Create(ctx, vendor); err != nil {
			log.Error("Failed to create vendor, removing user", zap.String("user_id", userID.Hex()), zap.Error(err))
			if delErr := uc.Users.Delete(ctx, userID); delErr != nil {
				log.Error("Failed to remove user after vendor insert failure", zap.String("user_id", userID.Hex()), zap.Error(delErr))
			}
			utils.WriteError(w, err)
			return
		}
	}

	uc.svc.Metrics.Registrations.WithLabelValues(user.UserType).Inc()
	subject := events.SubjectUserRegistered
	payload := events.UserRegistered{UserID: userID.Hex(), UserType: user.UserType, OccurredAt: now}
	if vendor != nil {
		subject = events.SubjectVendorRegistered
		payload.ServiceType = vendor.ServiceType
	}
	uc.svc.publish(r.Context(), subject, payload)
	uc.svc.sendEmail(log, user.Email, func() error { return uc.svc.Email.SendWelcomeEmail(user) })

	log.Info("User registered", zap.String("user_id", userID.Hex()), zap.String("user_type", user.UserType))
	utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"success":  true,
		"message":  "Registration successful! Your account has been created.",
		"userId":   userID.Hex(),
		"userType": user.UserType,
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	UserType string `json:"userType" validate:"required"`
}

// Login handles user authentication
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	m := uc.svc.Metrics
	m.AuthAttempts.Inc()

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		m.RecordAuthError("invalid_request")
		utils.WriteError(w, err)
		return
	}
	req.Email = normalizeEmail(req.Email)
	req.UserType = strings.TrimSpace(req.UserType)
	if err := uc.validate.Struct(&req); err != nil {
		m.RecordAuthError("missing_fields")
		utils.WriteError(w, apperrors.ErrMissingFields)
		return
	}

	allowed, err := uc.svc.Limiter.Allow(r.Context(), req.Email)
	if err != nil {
		log.Warn("Login rate limiter unavailable", zap.Error(err))
	}
	if !allowed {
		m.RecordAuthError("rate_limited")
		utils.WriteError(w, apperrors.ErrTooManyAttempts)
		return
	}

	ctx, cancel := uc.svc.dbContext(r)
	defer cancel()

	user, err := uc.Users.FindByEmailAndType(ctx, req.Email, req.UserType)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			m.RecordAuthError("user_not_found")
			log.Warn("Login failed", zap.String("email", req.Email))
			utils.WriteError(w, apperrors.ErrInvalidCredentials)
			return
		}
		log.Error("Failed to look up user", zap.Error(err))
		utils.WriteError(w, err)
		return
	}

	if !utils.CheckPassword(user.Password, req.Password) {
		m.RecordAuthError("invalid_password")
		log.Warn("Login failed", zap.String("email", req.Email))
		utils.WriteError(w, apperrors.ErrInvalidCredentials)
		return
	}

	vendor, err := uc.vendorFor(ctx, user)
	if err != nil {
		log.Error("Failed to look up vendor", zap.String("user_id", user.ID.Hex()), zap.Error(err))
		utils.WriteError(w, err)
		return
	}

	token, err := uc.svc.Tokens.GenerateJWT(user.ID.Hex(), user.Email, user.UserType)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		m.RecordAuthError("token_generation_failed")
		utils.WriteError(w, err)
		return
	}

	m.AuthSuccess.Inc()
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Login successful!",
		"token":   token,
		"user":    user.Summary(vendor),
	})
}

// GetProfile returns the account of the bearer token
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		utils.WriteError(w, apperrors.Unauthorized("Unauthorized"))
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		utils.WriteError(w, apperrors.Unauthorized("Invalid token"))
		return
	}

	ctx, cancel := uc.svc.dbContext(r)
	defer cancel()

	user, err := uc.Users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.WriteError(w, errUserNotFound)
			return
		}
		log.Error("Failed to load profile", zap.Error(err))
		utils.WriteError(w, err)
		return
	}

	vendor, err := uc.vendorFor(ctx, user)
	if err != nil {
		log.Error("Failed to look up vendor", zap.String("user_id", user.ID.Hex()), zap.Error(err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    user.Summary(vendor),
	})
}

// vendorFor returns the vendor document of a vendor account, or nil
func (uc *UserController) vendorFor(ctx context.Context, user *models.User) (*models.Vendor, error) {
	if !user.IsVendor() {
		return nil, nil
	}
	vendor, err := uc.Vendors.FindByUserID(ctx, user.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return vendor, err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("servicetype", func(fl validator.FieldLevel) bool {
		return models.IsServiceType(fl.Field().String())
	})
	return v
}

// registerValidationError reports missing fields before any format problem
func registerValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.ErrInvalidBody
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return apperrors.ErrMissingFields
		}
	}
	switch verrs[0].Field() {
	case "UserType":
		return errInvalidUserType
	case "ServiceType":
		return errInvalidServiceType
	case "Email":
		return errInvalidEmail
	}
	return apperrors.ErrInvalidBody
}
