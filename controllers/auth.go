package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"qa-release-api/config"
	"qa-release-api/services"

	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	EmpCode  string `json:"empCode" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles the two-step QA portal login: credential check, then the QA
// module entitlement check. Both 401 outcomes share the status code; only the
// message text differs.
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "EmpCode and Password are required."})
		return
	}

	empCode, err := strconv.Atoi(strings.TrimSpace(req.EmpCode))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid EmpCode or Password."})
		return
	}

	emp, err := gate.Authenticate(empCode, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid EmpCode or Password."})
		case errors.Is(err, services.ErrNotEntitled):
			c.JSON(http.StatusUnauthorized, gin.H{"message": "You are not authorized to access the QA Portal."})
		default:
			storeError(c, err, "Login failed.")
		}
		return
	}

	empCodeStr := strconv.Itoa(emp.EmpCode)
	token, _, err := tokens.Issue(empCodeStr, emp.EmpName)
	if err != nil {
		storeError(c, err, "Login failed.")
		return
	}

	// The cookie is the session: same 8-hour expiry as the token, reissued on
	// every login, never refreshed silently.
	cfg := config.App()
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(cfg.CookieName, token, int(tokens.TTL().Seconds()), "/", cfg.CookieDomain, true, true)

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"empName": emp.EmpName,
		"empCode": empCodeStr,
	})
}

// TestAccess is an operator diagnostic: raw entitlement code plus an employee
// snapshot. Gated by the operator token, not by a session.
func TestAccess(c *gin.Context) {
	if c.Query("token") != config.App().OperatorToken || config.App().OperatorToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	empCode, err := strconv.Atoi(strings.TrimSpace(c.Query("empCode")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empCode is required"})
		return
	}

	accessCode, err := gate.ModuleAccessCode(empCode)
	if err != nil {
		storeError(c, err, "Access check failed")
		return
	}

	employeeInfo := gin.H{"found": false}
	if emp, err := gate.FindEmployee(empCode); err == nil && emp != nil {
		employeeInfo = gin.H{
			"found":        true,
			"empCode":      emp.EmpCode,
			"empName":      emp.EmpName,
			"departmentId": emp.DepartmentID,
			"statusId":     emp.StatusID,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"moduleAccessResult": accessCode,
		"isQAMember":         accessCode == "111",
		"employeeInfo":       employeeInfo,
	})
}
