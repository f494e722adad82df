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
	"seva-kendra/models"
	"seva-kendra/store"
	"seva-kendra/utils"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	errInvalidVendorID    = apperrors.BadRequest("Invalid vendor ID")
	errInvalidStatus      = apperrors.BadRequest("Invalid status")
	errInvalidStatusQuery = apperrors.BadRequest("Invalid status filter")
	errVendorNotFound     = apperrors.NotFound("Vendor not found")
)

// AdminController serves the admin console
type AdminController struct {
	Users   UserRepository
	Vendors VendorRepository
	Views   AdminRepository
	svc     Services
}

// NewAdminController creates a new AdminController
func NewAdminController(users UserRepository, vendors VendorRepository, views AdminRepository, svc Services) *AdminController {
	return &AdminController{
		Users:   users,
		Vendors: vendors,
		Views:   views,
		svc:     svc.withDefaults(),
	}
}

// GetUsers lists every registration joined with its vendor application
func (ac *AdminController) GetUsers(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	ctx, cancel := ac.svc.dbContext(r)
	defer cancel()

	users, err := ac.Views.UsersWithVendors(ctx)
	if err != nil {
		log.Error("Failed to list users", zap.Error(err))
		utils.WriteError(w, err)
		return
	}
	stats, err := ac.Views.RegistrationStats(ctx)
	if err != nil {
		log.Error("Failed to compute registration stats", zap.Error(err))
		utils.WriteError(w, err)
		return
	}

	rows := make([]models.AdminUserRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, u.Row())
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"users":   rows,
		"stats":   stats,
	})
}

// GetVendors lists vendor applications joined with their owner, optionally by status
func (ac *AdminController) GetVendors(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	status := strings.TrimSpace(r.URL.Query().Get("status"))
	if status != "" && status != models.VendorStatusPending && !models.IsDecisionStatus(status) {
		utils.WriteError(w, errInvalidStatusQuery)
		return
	}

	ctx, cancel := ac.svc.dbContext(r)
	defer cancel()

	rows, err := ac.vendorRows(ctx, status)
	if err != nil {
		log.Error("Failed to list vendors", zap.Error(err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"vendors": rows,
	})
}

// GetDashboard returns the platform counters and the pending applications
func (ac *AdminController) GetDashboard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	ctx, cancel := ac.svc.dbContext(r)
	defer cancel()

	stats, err := ac.Views.DashboardStats(ctx)
	if err != nil {
		log.Error("Failed to compute dashboard stats", zap.Error(err))
		utils.WriteError(w, err)
		return
	}
	pending, err := ac.vendorRows(ctx, models.VendorStatusPending)
	if err != nil {
		log.Error("Failed to list pending vendors", zap.Error(err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"stats":          stats,
		"pendingVendors": pending,
	})
}

func (ac *AdminController) vendorRows(ctx context.Context, status string) ([]models.AdminVendorRow, error) {
	vendors, err := ac.Views.VendorsWithUsers(ctx, status)
	if err != nil {
		return nil, err
	}
	rows := make([]models.AdminVendorRow, 0, len(vendors))
	for _, v := range vendors {
		rows = append(rows, v.Row())
	}
	return rows, nil
}

type vendorStatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// UpdateVendorStatus approves or rejects a vendor application. The id may be
// the vendor document id or the owning user id. The previous status is not
// checked, so a decision can be overwritten by a later one.
func (ac *AdminController) UpdateVendorStatus(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.WriteError(w, errInvalidVendorID)
		return
	}

	var req vendorStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	req.Status = strings.TrimSpace(req.Status)
	req.Reason = strings.TrimSpace(req.Reason)
	if !models.IsDecisionStatus(req.Status) {
		utils.WriteError(w, errInvalidStatus)
		return
	}

	ctx, cancel := ac.svc.dbContext(r)
	defer cancel()

	vendor, err := ac.Vendors.UpdateStatus(ctx, id, req.Status, req.Reason)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.WriteError(w, errVendorNotFound)
			return
		}
		log.Error("Failed to update vendor status", zap.String("id", id.Hex()), zap.Error(err))
		utils.WriteError(w, err)
		return
	}

	ac.svc.Metrics.VendorStatusTransitions.WithLabelValues(vendor.VerificationStatus).Inc()
	ac.svc.publish(r.Context(), events.SubjectVendorStatusChanged, events.VendorStatusChanged{
		VendorID:   vendor.ID.Hex(),
		UserID:     vendor.UserID.Hex(),
		Status:     vendor.VerificationStatus,
		Reason:     vendor.RejectionReason,
		OccurredAt: time.Now().UTC(),
	})
	ac.notifyVendor(ctx, log, vendor)

	log.Info("Vendor status updated",
		zap.String("vendor_id", vendor.ID.Hex()),
		zap.String("status", vendor.VerificationStatus),
	)
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Vendor " + vendor.VerificationStatus + " successfully",
		"status":  vendor.VerificationStatus,
	})
}

// notifyVendor emails the owner of vendor; a missing owner is only logged
func (ac *AdminController) notifyVendor(ctx context.Context, log *zap.Logger, vendor *models.Vendor) {
	if ac.svc.Email == nil {
		return
	}
	owner, err := ac.Users.FindByID(ctx, vendor.UserID)
	if err != nil {
		log.Warn("Cannot notify vendor, owner lookup failed", zap.String("user_id", vendor.UserID.Hex()), zap.Error(err))
		return
	}
	ac.svc.sendEmail(log, owner.Email, func() error {
		return ac.svc.Email.SendVendorDecisionEmail(owner, vendor)
	})
}
