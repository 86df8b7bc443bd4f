package models

import "time"

// Verification status codes. Status only moves through the workflow engine:
// tester save sets 1 (or 4 after a return), TL confirm closes with 2,
// TL return loops back with 3.
const (
	StatusTesterSubmitted = 1
	StatusTLApproved      = 2
	StatusTLReturned      = 3
	StatusResubmitted     = 4
)

// Downstream release-status codes written to srm_dailyrelease_updn alongside
// a TL transition. The pair (verify status, release status) is applied in one
// transaction.
const (
	ReleaseStatusVerified = 16
	ReleaseStatusReturned = 4
)

// VerificationRecord is one CRF release verification row.
// tester_name holds a comma-separated list; several testers may share a CRF.
type VerificationRecord struct {
	VerifyID           int        `gorm:"primaryKey;column:verify_id" json:"verify_id"`
	CrfID              string     `gorm:"column:crf_id" json:"crf_id"`
	RequestID          string     `gorm:"column:request_id" json:"request_id"`
	CrfName            string     `gorm:"column:crf_name" json:"crf_name"`
	ReleaseDate        *time.Time `gorm:"column:release_dt" json:"release_date"`
	ReleaseType        string     `gorm:"column:release_type" json:"release_type"`
	TechleadName       string     `gorm:"column:techlead_name" json:"techlead_name"`
	DeveloperName      string     `gorm:"column:developer_name" json:"developer_name"`
	TesterTLName       string     `gorm:"column:tester_tl_name" json:"tester_tl_name"`
	TesterName         string     `gorm:"column:tester_name" json:"tester_name"`
	WorkingStatus      int        `gorm:"column:working_status" json:"working_status"`
	Remarks            string     `gorm:"column:remarks" json:"remarks"`
	TLRemarks          string     `gorm:"column:tl_remarks" json:"tl_remarks"`
	Attachment         []byte     `gorm:"column:attachment" json:"-"`
	AttachmentFilename string     `gorm:"column:attachment_filename" json:"attachment_filename"`
	AttachmentMime     string     `gorm:"column:attachment_mimetype" json:"attachment_mimetype"`
	Status             int        `gorm:"column:status" json:"status"`
	VerifiedBy         string     `gorm:"column:verified_by" json:"verified_by"`
	VerifiedOn         *time.Time `gorm:"column:verified_on" json:"verified_on"`
	ApprovedBy         string     `gorm:"column:approved_by" json:"approved_by"`
	ApprovedOn         *time.Time `gorm:"column:approved_on" json:"approved_on"`
}

// ReleaseUpdate is a row of the downstream release-status table maintained by
// the release-management process. The workflow engine only touches its status
// column, and only for the latest sequence of a CRF/request pair.
type ReleaseUpdate struct {
	SeqRR     int        `gorm:"primaryKey;column:seq_rr" json:"seq_rr"`
	CrfID     string     `gorm:"column:crf_id" json:"crf_id"`
	RequestID string     `gorm:"column:request_id" json:"request_id"`
	Status    int        `gorm:"column:status" json:"status"`
	UpdatedOn *time.Time `gorm:"column:updated_on" json:"updated_on"`
}

// VerificationHistory is an audit row appended on every tester save and TL
// action.
type VerificationHistory struct {
	HistID    int        `gorm:"primaryKey;column:hist_id" json:"hist_id"`
	CrfID     string     `gorm:"column:crf_id" json:"crf_id"`
	RequestID string     `gorm:"column:request_id" json:"request_id"`
	Action    string     `gorm:"column:action" json:"action"`
	Actor     string     `gorm:"column:actor" json:"actor"`
	Remarks   string     `gorm:"column:remarks" json:"remarks"`
	LoggedOn  *time.Time `gorm:"column:logged_on" json:"logged_on"`
}

func (VerificationRecord) TableName() string {
	return "tbl_daily_release_verify"
}

func (ReleaseUpdate) TableName() string {
	return "srm_dailyrelease_updn"
}

func (VerificationHistory) TableName() string {
	return "tbl_daily_release_verify_hist"
}
