package services

import (
	"errors"
	"fmt"
	"strings"

	"qa-release-api/config"
	"qa-release-api/utils"

	"gorm.io/gorm"
)

// ErrNotAMember means the caller is not an active member of the QA testing
// team. This is a workflow-level denial, not an authentication failure.
var ErrNotAMember = errors.New("not a member of the QA testing team")

// TeamResolver maps employees onto the QA testing team: which tech lead owns
// a sub-team, whether a name is a tech lead at all, and which sub-team an
// active tester belongs to.
type TeamResolver struct {
	db     *gorm.DB
	roster config.Roster
}

func NewTeamResolver(db *gorm.DB, roster config.Roster) *TeamResolver {
	return &TeamResolver{db: db, roster: roster}
}

// LeadFor returns the tech lead owning the sub-team.
func (r *TeamResolver) LeadFor(subTeam int) (string, bool) {
	name, ok := r.roster[subTeam]
	return name, ok
}

// IsTechLead reports whether the name appears in the roster, trimmed and
// case-insensitive. The roster names must match the employee directory
// verbatim for this to work.
func (r *TeamResolver) IsTechLead(name string) bool {
	for _, lead := range r.roster {
		if utils.SameName(lead, name) {
			return true
		}
	}
	return false
}

// SubTeamOf resolves the sub-team of an active QA tester by name, cross-
// checking the team membership table. Unknown or inactive names fail closed
// with ErrNotAMember.
func (r *TeamResolver) SubTeamOf(testerName string) (int, error) {
	var subTeam int
	tx := r.db.Raw(
		`SELECT t.sub_team
		 FROM srm_it_team_members t
		 JOIN employee_master e ON t.member_id = e.emp_code
		 WHERE t.team_id = 6
		   AND e.status_id = 1
		   AND UPPER(TRIM(e.emp_name)) = ?`,
		strings.ToUpper(strings.TrimSpace(testerName))).Scan(&subTeam)
	if tx.Error != nil {
		return 0, fmt.Errorf("sub-team lookup: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return 0, ErrNotAMember
	}
	return subTeam, nil
}
