package controllers

import (
	"errors"
	"net/http"

	"qa-release-api/middleware"
	"qa-release-api/services"

	"github.com/gin-gonic/gin"
)

// GetReleaseVerifications is the team-scoped listing: callers must be active
// members of the QA testing team, then the historical loose visibility filter
// applies.
func GetReleaseVerifications(c *gin.Context) {
	caller, ok := middleware.CurrentUserName(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	}

	filter := services.ListFilter{
		FromDate:    c.Query("fromDate"),
		ToDate:      c.Query("toDate"),
		ReleaseType: c.Query("releaseType"),
	}

	rows, err := workflow.TeamScopedList(caller, filter)
	if err != nil {
		storeError(c, err, "Failed to load data")
		return
	}

	c.JSON(http.StatusOK, rows)
}

// SaveReleaseVerification is the team-scoped batch save; same overwrite
// semantics as the tester save.
func SaveReleaseVerification(c *gin.Context) {
	caller, ok := middleware.CurrentUserName(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	}

	var items []services.TesterSaveItem
	if err := c.ShouldBindJSON(&items); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No data to save"})
		return
	}

	if err := workflow.TesterSave(items, caller); err != nil {
		if errors.Is(err, services.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		storeError(c, err, "Save failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Verification saved successfully"})
}
