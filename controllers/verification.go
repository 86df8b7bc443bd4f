package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"qa-release-api/middleware"
	"qa-release-api/services"

	"github.com/gin-gonic/gin"
)

// GetTesterVerifications lists the records visible to the calling tester for
// a date range: their name in the tester list, or an empty tester list.
func GetTesterVerifications(c *gin.Context) {
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

	rows, err := workflow.TesterList(caller, filter)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		storeError(c, err, "Failed to load data")
		return
	}

	c.JSON(http.StatusOK, rows)
}

// SaveTesterVerification applies a tester batch save: working status, remarks
// and an optional attachment per CRF. Re-saves overwrite.
func SaveTesterVerification(c *gin.Context) {
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

	c.JSON(http.StatusOK, gin.H{"message": "Saved successfully"})
}

// GetTLVerifications lists records owned by the calling tech lead that still
// need a decision.
func GetTLVerifications(c *gin.Context) {
	caller, ok := middleware.CurrentUserName(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	}

	var filter services.ListFilter
	if err := c.ShouldBindJSON(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fromDate and toDate are required"})
		return
	}

	rows, err := workflow.TLList(caller, filter)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		storeError(c, err, "Failed to load TL data")
		return
	}

	c.JSON(http.StatusOK, rows)
}

// SaveTLAction applies a batch of CONFIRM/RETURN decisions. Each decision
// updates the verify status and the downstream release status together.
func SaveTLAction(c *gin.Context) {
	caller, ok := middleware.CurrentUserName(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	}

	var items []services.TLActionItem
	if err := c.ShouldBindJSON(&items); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No data to save"})
		return
	}

	if err := workflow.TLApply(items, caller); err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			storeError(c, err, "TL action failed")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "TL action completed successfully"})
}

// GetCompletedList lists terminal (TL approved) records.
func GetCompletedList(c *gin.Context) {
	var filter services.ListFilter
	if err := c.ShouldBindJSON(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fromDate and toDate are required"})
		return
	}

	rows, err := workflow.CompletedList(filter)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		storeError(c, err, "Failed to load completed list")
		return
	}

	c.JSON(http.StatusOK, rows)
}

// GetAttachment streams the stored attachment for a CRF/release-date pair.
// A record with an empty blob renders a placeholder page instead of a 404.
func GetAttachment(c *gin.Context) {
	crfID := c.Param("crfId")
	releaseDate := c.Param("releaseDate")
	if crfID == "" || releaseDate == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid parameters"})
		return
	}

	blob, err := workflow.Attachment(crfID, releaseDate)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Attachment not found"})
			return
		}
		storeError(c, err, "Error retrieving attachment")
		return
	}

	if len(blob.Data) == 0 {
		placeholder := fmt.Sprintf(
			"<div style='padding:40px;text-align:center;'><h3>No Attachment Found</h3><p>CRF ID: %s, Release Date: %s</p></div>",
			crfID, releaseDate)
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(placeholder))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", blob.Filename))
	c.Data(http.StatusOK, blob.Mime, blob.Data)
}

// GetDashboardCounts returns the five dashboard counters for the caller.
func GetDashboardCounts(c *gin.Context) {
	caller, ok := middleware.CurrentUserName(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	}

	counts, err := dashboard.Counts(caller)
	if err != nil {
		storeError(c, err, "Failed to calculate dashboard counts")
		return
	}

	c.JSON(http.StatusOK, counts)
}

// GetHistory lists the audit trail of a CRF/request pair.
func GetHistory(c *gin.Context) {
	crfID := c.Query("crfId")
	requestID := c.Query("requestId")
	if crfID == "" || requestID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "crfId and requestId are required"})
		return
	}

	rows, err := workflow.History(crfID, requestID)
	if err != nil {
		storeError(c, err, "Failed to load history")
		return
	}

	c.JSON(http.StatusOK, rows)
}
