package controllers

import (
	"net/http"

	"seva-kendra/models"
	"seva-kendra/utils"
)

// GetCatalog returns the service types and user categories offered at registration
func GetCatalog(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"serviceTypes": models.ServiceTypes,
		"categories":   models.Categories(),
	})
}
