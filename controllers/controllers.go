package controllers

import (
	"errors"
	"net/http"

	"qa-release-api/config"
	"qa-release-api/services"

	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"
)

var (
	gate      *services.AccessGate
	tokens    *services.TokenService
	resolver  *services.TeamResolver
	workflow  *services.WorkflowEngine
	dashboard *services.DashboardAggregator
)

// Init wires the service layer from the process-wide configuration. Call once
// from main after config.LoadAppConfig and config.InitDB.
func Init() {
	cfg := config.App()

	var verifier services.CredentialVerifier = services.PlaintextVerifier{}
	if cfg.AuthBcrypt {
		verifier = services.BcryptVerifier{}
	}

	gate = services.NewAccessGate(config.DB, verifier)
	tokens = services.NewTokenService(cfg.JWT)
	resolver = services.NewTeamResolver(config.DB, cfg.Roster)
	workflow = services.NewWorkflowEngine(config.DB, resolver, services.NewMailNotifier(cfg.NotifyTo))
	dashboard = services.NewDashboardAggregator(config.DB, resolver)
}

// storeError renders a 500. The store detail (and mysql error number when
// present) is exposed only behind the DEBUG_ERRORS operator flag.
func storeError(c *gin.Context, err error, message string) {
	body := gin.H{"error": message}
	if config.App().DebugErrors {
		body["details"] = err.Error()
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) {
			body["errorCode"] = mysqlErr.Number
		}
	}
	c.JSON(http.StatusInternalServerError, body)
}
