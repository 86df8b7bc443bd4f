package models

// TeamMember links an employee to an IT team and a sub-team partition.
type TeamMember struct {
	TeamID   int `gorm:"column:team_id" json:"team_id"`
	SubTeam  int `gorm:"column:sub_team" json:"sub_team"`
	MemberID int `gorm:"column:member_id" json:"member_id"`
}

// QATestersTeamID is the fixed team id of the QA testing team. Its members
// are partitioned into sub-teams 1-6, each owned by one tech lead.
const QATestersTeamID = 6

func (TeamMember) TableName() string {
	return "srm_it_team_members"
}
