package services

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// DashboardCounts are the per-user dashboard figures. TL and team counters
// stay zero for anyone not on the tech-lead roster.
type DashboardCounts struct {
	IsTechLead    bool `json:"isTechLead"`
	TesterPending int  `json:"testerPendingCount"`
	TLPending     int  `json:"tlPendingCount"`
	TLVerified    int  `json:"tlVerifiedCount"`
	TeamPending   int  `json:"teamPendingCount"`
	TeamCompleted int  `json:"teamCompletedCount"`
}

// DashboardAggregator composes workflow queries into the dashboard counters.
type DashboardAggregator struct {
	db       *gorm.DB
	resolver *TeamResolver
}

func NewDashboardAggregator(db *gorm.DB, resolver *TeamResolver) *DashboardAggregator {
	return &DashboardAggregator{db: db, resolver: resolver}
}

// Counts builds the five dashboard counters for the user. Tester pending is
// counted distinct on (crf, release date) so multiple tester rows against the
// same release event are not double-counted. Non-tech-leads get zeroed TL and
// team counters, never an error.
func (a *DashboardAggregator) Counts(userName string) (*DashboardCounts, error) {
	counts := &DashboardCounts{
		IsTechLead: a.resolver.IsTechLead(userName),
	}

	upperName := strings.ToUpper(strings.TrimSpace(userName))

	// Assigned released CRFs with no TL approval yet.
	var testerPending int
	err := a.db.Raw(
		`SELECT COUNT(DISTINCT CONCAT(n.crf_id, DATE_FORMAT(n.updated_on, '%d-%b-%Y'))) AS cnt
		 FROM srm_dailyrelease_updn n
		 WHERE EXISTS (
		     SELECT 1
		     FROM srm_test_assign ts
		     JOIN employee_master e ON ts.assign_to = e.emp_code
		     WHERE ts.request_id = n.request_id
		       AND UPPER(TRIM(e.emp_name)) = ?
		       AND e.status_id = 1
		 )
		 AND NOT EXISTS (
		     SELECT 1
		     FROM tbl_daily_release_verify v
		     WHERE UPPER(TRIM(v.crf_id)) = UPPER(TRIM(n.crf_id))
		       AND DATE(v.release_dt) = DATE(n.updated_on)
		       AND v.status = 2
		 )`, upperName).Scan(&testerPending).Error
	if err != nil {
		return nil, fmt.Errorf("tester pending count: %w", err)
	}
	counts.TesterPending = testerPending

	if !counts.IsTechLead {
		return counts, nil
	}

	var tlPending int
	err = a.db.Raw(
		`SELECT COUNT(*) AS cnt FROM tbl_daily_release_verify v
		 WHERE UPPER(TRIM(v.techlead_name)) = ? AND v.status IN (1, 4)`,
		upperName).Scan(&tlPending).Error
	if err != nil {
		return nil, fmt.Errorf("tl pending count: %w", err)
	}

	var tlVerified int
	err = a.db.Raw(
		`SELECT COUNT(*) AS cnt FROM tbl_daily_release_verify v
		 WHERE UPPER(TRIM(v.techlead_name)) = ? AND v.status = 2`,
		upperName).Scan(&tlVerified).Error
	if err != nil {
		return nil, fmt.Errorf("tl verified count: %w", err)
	}

	counts.TLPending = tlPending
	counts.TLVerified = tlVerified
	counts.TeamPending = tlPending
	counts.TeamCompleted = tlVerified
	return counts, nil
}
