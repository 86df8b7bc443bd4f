package services

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"qa-release-api/models"
	"qa-release-api/utils"

	"gorm.io/gorm"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("record not found")
)

// Tech-lead actions. Anything else is rejected before any row is touched.
const (
	ActionConfirm = "CONFIRM"
	ActionReturn  = "RETURN"
)

// ReturnNotifier is told about CRFs a tech lead sent back for rework.
// Implementations must be best-effort; a notice must never fail a transition.
type ReturnNotifier interface {
	ReturnNotice(crfID, tlRemarks, actor string)
}

// VerificationRow is the list shape returned to the UI. Dates are already
// formatted as upper-case DD-MON-YYYY strings.
type VerificationRow struct {
	VerifyID       int    `gorm:"column:verify_id" json:"verifyId"`
	CrfID          string `gorm:"column:crf_id" json:"crfId"`
	RequestID      string `gorm:"column:request_id" json:"requestId"`
	CrfName        string `gorm:"column:crf_name" json:"crfName"`
	ReleaseDate    string `gorm:"column:release_date" json:"releaseDate"`
	ReleaseType    string `gorm:"column:release_type" json:"releaseType"`
	TechleadName   string `gorm:"column:techlead_name" json:"techLeadName"`
	DeveloperName  string `gorm:"column:developer_name" json:"developerName"`
	TesterTLName   string `gorm:"column:tester_tl_name" json:"testerTlName"`
	TesterName     string `gorm:"column:tester_name" json:"testerName"`
	WorkingStatus  int    `gorm:"column:working_status" json:"workingStatus"`
	Remarks        string `gorm:"column:remarks" json:"remarks"`
	TLRemarks      string `gorm:"column:tl_remarks" json:"tlRemarks"`
	AttachmentName string `gorm:"column:attachment_filename" json:"attachmentName"`
	VerifiedBy     string `gorm:"column:verified_by" json:"verifiedBy"`
	VerifiedOn     string `gorm:"column:verified_on" json:"verifiedOn"`
	ApprovedBy     string `gorm:"column:approved_by" json:"approvedBy"`
	ApprovedOn     string `gorm:"column:approved_on" json:"approvedOn"`
	VerifyStatus   int    `gorm:"column:status" json:"verifyStatus"`
}

// TesterSaveItem is one entry of a tester batch save.
type TesterSaveItem struct {
	CrfID            string `json:"crfId" binding:"required"`
	RequestID        string `json:"requestId"`
	WorkingStatus    int    `json:"workingStatus"`
	Remarks          string `json:"remarks"`
	AttachmentName   string `json:"attachmentName"`
	AttachmentBase64 string `json:"attachmentBase64"`
	AttachmentMime   string `json:"attachmentMime"`
}

// TLActionItem is one entry of a tech-lead batch decision.
type TLActionItem struct {
	VerifyID    int    `json:"verifyId" binding:"required"`
	CrfID       string `json:"crfId"`
	ReleaseDate string `json:"releaseDate"`
	Action      string `json:"action" binding:"required"`
	TLRemarks   string `json:"tlRemarks"`
}

// ListFilter bounds a verification listing.
type ListFilter struct {
	FromDate    string `json:"fromDate"`
	ToDate      string `json:"toDate"`
	ReleaseType string `json:"releaseType"`
	TesterName  string `json:"testerName"`
}

// AttachmentBlob is a stored attachment ready for binary passthrough.
type AttachmentBlob struct {
	Data     []byte
	Filename string
	Mime     string
}

// HistoryRow is one audit entry for a CRF/request pair.
type HistoryRow struct {
	CrfID     string `gorm:"column:crf_id" json:"crfId"`
	RequestID string `gorm:"column:request_id" json:"requestId"`
	Action    string `gorm:"column:action" json:"action"`
	Actor     string `gorm:"column:actor" json:"actor"`
	Remarks   string `gorm:"column:remarks" json:"remarks"`
	LoggedOn  string `gorm:"column:logged_on" json:"loggedOn"`
}

// WorkflowEngine owns the verification status state machine and its
// visibility rules. Status moves tester submit (1/4) -> TL confirm (2,
// terminal) or TL return (3) -> tester re-submit (4).
type WorkflowEngine struct {
	db       *gorm.DB
	resolver *TeamResolver
	notifier ReturnNotifier
}

func NewWorkflowEngine(db *gorm.DB, resolver *TeamResolver, notifier ReturnNotifier) *WorkflowEngine {
	return &WorkflowEngine{db: db, resolver: resolver, notifier: notifier}
}

const listSelect = `SELECT v.verify_id, v.crf_id, v.request_id, v.crf_name,
 UPPER(DATE_FORMAT(v.release_dt, '%d-%b-%Y')) AS release_date,
 v.release_type, v.techlead_name, v.developer_name, v.tester_tl_name,
 v.tester_name, v.working_status, v.remarks, v.tl_remarks,
 v.attachment_filename, v.verified_by,
 DATE_FORMAT(v.verified_on, '%d-%b-%Y %H:%i') AS verified_on,
 v.approved_by,
 DATE_FORMAT(v.approved_on, '%d-%b-%Y %H:%i') AS approved_on,
 v.status
 FROM tbl_daily_release_verify v`

const dateRangeWhere = ` WHERE v.release_dt BETWEEN STR_TO_DATE(?, '%d-%b-%Y') AND STR_TO_DATE(?, '%d-%b-%Y')`

// TesterList returns the records in the date range that the calling tester
// may see: their name is in the tester list, or the list is empty.
func (w *WorkflowEngine) TesterList(caller string, filter ListFilter) ([]VerificationRow, error) {
	if filter.FromDate == "" || filter.ToDate == "" {
		return nil, fmt.Errorf("%w: fromDate and toDate are required", ErrValidation)
	}

	rows, err := w.fetchRange(filter, "")
	if err != nil {
		return nil, err
	}

	visible := make([]VerificationRow, 0, len(rows))
	for _, r := range rows {
		if visibleToTester(r.TesterName, caller) {
			visible = append(visible, r)
		}
	}
	return visible, nil
}

// TLList returns records owned by the calling tech lead that are still in the
// tester/TL loop, optionally narrowed to one tester.
func (w *WorkflowEngine) TLList(caller string, filter ListFilter) ([]VerificationRow, error) {
	if filter.FromDate == "" || filter.ToDate == "" {
		return nil, fmt.Errorf("%w: fromDate and toDate are required", ErrValidation)
	}

	rows, err := w.fetchRange(filter, " AND UPPER(TRIM(v.techlead_name)) = ? AND v.status <> 2",
		strings.ToUpper(strings.TrimSpace(caller)))
	if err != nil {
		return nil, err
	}

	if filter.TesterName == "" {
		return rows, nil
	}
	narrowed := make([]VerificationRow, 0, len(rows))
	for _, r := range rows {
		if utils.NameListContains(r.TesterName, filter.TesterName) {
			narrowed = append(narrowed, r)
		}
	}
	return narrowed, nil
}

// CompletedList returns terminal (TL approved) records in the range.
func (w *WorkflowEngine) CompletedList(filter ListFilter) ([]VerificationRow, error) {
	if filter.FromDate == "" || filter.ToDate == "" {
		return nil, fmt.Errorf("%w: fromDate and toDate are required", ErrValidation)
	}
	return w.fetchRange(filter, " AND v.status = 2")
}

// TeamScopedList is the release-verification listing. Membership in the QA
// testing team is required (fail closed); within the team the filter is the
// historical loose one: a CRF hides only when its tester list is non-empty
// and... in practice never, because any named tester keeps it visible.
func (w *WorkflowEngine) TeamScopedList(caller string, filter ListFilter) ([]VerificationRow, error) {
	if filter.FromDate == "" {
		filter.FromDate = "01-JAN-2024"
	}
	if filter.ToDate == "" {
		filter.ToDate = "07-JAN-2026"
	}

	if _, err := w.resolver.SubTeamOf(caller); err != nil {
		if errors.Is(err, ErrNotAMember) {
			// Not on the team: nothing to show rather than an error page.
			return []VerificationRow{}, nil
		}
		return nil, err
	}

	rows, err := w.fetchRange(filter, "")
	if err != nil {
		return nil, err
	}

	visible := make([]VerificationRow, 0, len(rows))
	for _, r := range rows {
		testers := utils.SplitNames(r.TesterName)
		inScope := false
		if len(testers) > 0 {
			if utils.NameListContains(r.TesterName, caller) {
				inScope = true
			} else {
				// Drop this assignment for a strict sub-team check.
				inScope = true
			}
		}
		if inScope || len(testers) == 0 {
			visible = append(visible, r)
		}
	}
	return visible, nil
}

func (w *WorkflowEngine) fetchRange(filter ListFilter, extraWhere string, extraArgs ...interface{}) ([]VerificationRow, error) {
	from := utils.NormalizeReleaseDate(filter.FromDate)
	to := utils.NormalizeReleaseDate(filter.ToDate)
	if !utils.ValidReleaseDate(from) || !utils.ValidReleaseDate(to) {
		return nil, fmt.Errorf("%w: dates must be in DD-MON-YYYY form", ErrValidation)
	}

	sql := listSelect + dateRangeWhere
	args := []interface{}{from, to}
	sql += extraWhere
	args = append(args, extraArgs...)
	if filter.ReleaseType != "" {
		sql += " AND v.release_type = ?"
		args = append(args, filter.ReleaseType)
	}
	sql += " ORDER BY v.release_dt DESC, v.crf_id"

	var rows []VerificationRow
	if err := w.db.Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("verification fetch: %w", err)
	}
	return rows, nil
}

// TesterSave upserts a batch of tester submissions in one transaction.
// Saves are keyed on (crf_id, request_id): a repeated save overwrites the
// prior payload, it never appends. Status becomes 4 when re-submitting after
// a TL return, 1 otherwise; an approved record (status 2) rejects the save.
func (w *WorkflowEngine) TesterSave(items []TesterSaveItem, updatedBy string) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: no data to save", ErrValidation)
	}
	for _, item := range items {
		if strings.TrimSpace(item.CrfID) == "" {
			return fmt.Errorf("%w: crfId is required", ErrValidation)
		}
	}

	return w.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			if err := w.saveOne(tx, item, updatedBy); err != nil {
				return err
			}
		}
		return nil
	})
}

func (w *WorkflowEngine) saveOne(tx *gorm.DB, item TesterSaveItem, updatedBy string) error {
	blob, filename, mime, err := decodeAttachment(item)
	if err != nil {
		return err
	}

	crfKey := strings.ToUpper(strings.TrimSpace(item.CrfID))

	var existing struct {
		VerifyID int `gorm:"column:verify_id"`
		Status   int `gorm:"column:status"`
	}
	res := tx.Raw(
		`SELECT verify_id, status FROM tbl_daily_release_verify
		 WHERE UPPER(TRIM(crf_id)) = ? AND request_id = ?`, crfKey, item.RequestID).Scan(&existing)
	if res.Error != nil {
		return fmt.Errorf("tester save lookup: %w", res.Error)
	}

	if res.RowsAffected > 0 {
		// Status 2 is terminal; a tester save must never reopen an approved
		// record.
		if existing.Status == models.StatusTLApproved {
			return fmt.Errorf("%w: %s is already approved and cannot be re-saved", ErrValidation, crfKey)
		}
		status := nextTesterStatus(existing.Status)
		if err := tx.Exec(
			`UPDATE tbl_daily_release_verify
			 SET working_status = ?, remarks = ?, status = ?,
			     verified_by = ?, verified_on = NOW(),
			     attachment = ?, attachment_filename = ?, attachment_mimetype = ?
			 WHERE verify_id = ?`,
			item.WorkingStatus, item.Remarks, status,
			updatedBy, blob, filename, mime, existing.VerifyID).Error; err != nil {
			return fmt.Errorf("tester save update: %w", err)
		}
	} else {
		if err := tx.Exec(
			`INSERT INTO tbl_daily_release_verify
			 (crf_id, request_id, working_status, remarks, status,
			  verified_by, verified_on, attachment, attachment_filename, attachment_mimetype)
			 VALUES (?, ?, ?, ?, ?, ?, NOW(), ?, ?, ?)`,
			item.CrfID, item.RequestID, item.WorkingStatus, item.Remarks,
			models.StatusTesterSubmitted, updatedBy, blob, filename, mime).Error; err != nil {
			return fmt.Errorf("tester save insert: %w", err)
		}
	}

	return w.logHistory(tx, item.CrfID, item.RequestID, "SAVE", updatedBy, item.Remarks)
}

// TLApply applies a batch of tech-lead decisions. For every record the verify
// status and the downstream release status move together inside the batch
// transaction: CONFIRM is 2/16, RETURN is 3/4. A failure on any record rolls
// back the whole batch; partial application would be a correctness violation.
func (w *WorkflowEngine) TLApply(items []TLActionItem, updatedBy string) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: no data to save", ErrValidation)
	}
	for _, item := range items {
		if _, _, err := transitionFor(item.Action); err != nil {
			return err
		}
	}

	var returned []TLActionItem
	err := w.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			verifyStatus, releaseStatus, _ := transitionFor(item.Action)

			// The stored row keys the downstream update and the audit trail;
			// the crf_id in the request body is never trusted for either.
			var rec struct {
				CrfID     string `gorm:"column:crf_id"`
				RequestID string `gorm:"column:request_id"`
			}
			res := tx.Raw(
				`SELECT crf_id, request_id FROM tbl_daily_release_verify WHERE verify_id = ?`,
				item.VerifyID).Scan(&rec)
			if res.Error != nil {
				return fmt.Errorf("tl action lookup: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: verify id %d", ErrNotFound, item.VerifyID)
			}

			if err := tx.Exec(
				`UPDATE tbl_daily_release_verify
				 SET status = ?, tl_remarks = ?, approved_by = ?, approved_on = NOW()
				 WHERE verify_id = ?`,
				verifyStatus, item.TLRemarks, updatedBy, item.VerifyID).Error; err != nil {
				return fmt.Errorf("tl action update: %w", err)
			}

			// Only the latest release row of the CRF/request pair carries the
			// downstream status.
			if err := tx.Exec(
				`UPDATE srm_dailyrelease_updn n
				 JOIN (SELECT MAX(seq_rr) AS seq_rr FROM srm_dailyrelease_updn
				       WHERE crf_id = ? AND request_id = ?) m ON n.seq_rr = m.seq_rr
				 SET n.status = ?, n.updated_on = NOW()`,
				rec.CrfID, rec.RequestID, releaseStatus).Error; err != nil {
				return fmt.Errorf("release status update: %w", err)
			}

			if err := w.logHistory(tx, rec.CrfID, rec.RequestID, item.Action, updatedBy, item.TLRemarks); err != nil {
				return err
			}

			if verifyStatus == models.StatusTLReturned {
				item.CrfID = rec.CrfID
				returned = append(returned, item)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if w.notifier != nil {
		for _, item := range returned {
			w.notifier.ReturnNotice(item.CrfID, item.TLRemarks, updatedBy)
		}
	}
	return nil
}

// Attachment fetches the stored blob for a CRF/release-date pair. ErrNotFound
// means no verification row; an existing row may still carry an empty blob.
func (w *WorkflowEngine) Attachment(crfID, releaseDate string) (*AttachmentBlob, error) {
	var row struct {
		Attachment         []byte `gorm:"column:attachment"`
		AttachmentFilename string `gorm:"column:attachment_filename"`
		AttachmentMime     string `gorm:"column:attachment_mimetype"`
	}
	res := w.db.Raw(
		`SELECT attachment, attachment_filename, attachment_mimetype
		 FROM tbl_daily_release_verify
		 WHERE UPPER(TRIM(crf_id)) = ?
		   AND UPPER(DATE_FORMAT(release_dt, '%d-%b-%Y')) = ?`,
		strings.ToUpper(strings.TrimSpace(crfID)),
		utils.NormalizeReleaseDate(releaseDate)).Scan(&row)
	if res.Error != nil {
		return nil, fmt.Errorf("attachment fetch: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	blob := &AttachmentBlob{
		Data:     row.Attachment,
		Filename: row.AttachmentFilename,
		Mime:     row.AttachmentMime,
	}
	if blob.Filename == "" {
		blob.Filename = "attachment"
	}
	if blob.Mime == "" {
		blob.Mime = "application/octet-stream"
	}
	return blob, nil
}

// History returns the audit trail of a CRF/request pair, oldest first.
func (w *WorkflowEngine) History(crfID, requestID string) ([]HistoryRow, error) {
	var rows []HistoryRow
	err := w.db.Raw(
		`SELECT crf_id, request_id, action, actor, remarks,
		        DATE_FORMAT(logged_on, '%d-%b-%Y %H:%i') AS logged_on
		 FROM tbl_daily_release_verify_hist
		 WHERE UPPER(TRIM(crf_id)) = ? AND request_id = ?
		 ORDER BY logged_on`,
		strings.ToUpper(strings.TrimSpace(crfID)), requestID).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("history fetch: %w", err)
	}
	return rows, nil
}

func (w *WorkflowEngine) logHistory(tx *gorm.DB, crfID, requestID, action, actor, remarks string) error {
	if err := tx.Exec(
		`INSERT INTO tbl_daily_release_verify_hist
		 (crf_id, request_id, action, actor, remarks, logged_on)
		 VALUES (?, ?, ?, ?, ?, NOW())`,
		crfID, requestID, action, actor, remarks).Error; err != nil {
		return fmt.Errorf("history insert: %w", err)
	}
	return nil
}

// visibleToTester implements the tester visibility rule: split the stored
// comma list, trim, match case-insensitively. An empty list is visible to
// every tester (fail-open, kept as observed in production).
func visibleToTester(testerList, caller string) bool {
	if len(utils.SplitNames(testerList)) == 0 {
		return true
	}
	return utils.NameListContains(testerList, caller)
}

// nextTesterStatus promotes a record on tester save: a record the TL returned
// re-enters the queue as 4, everything else submits as 1.
func nextTesterStatus(prev int) int {
	if prev == models.StatusTLReturned {
		return models.StatusResubmitted
	}
	return models.StatusTesterSubmitted
}

// transitionFor maps a TL action onto the (verify status, release status)
// pair. No other status values are reachable from a TL action.
func transitionFor(action string) (int, int, error) {
	switch strings.ToUpper(strings.TrimSpace(action)) {
	case ActionConfirm:
		return models.StatusTLApproved, models.ReleaseStatusVerified, nil
	case ActionReturn:
		return models.StatusTLReturned, models.ReleaseStatusReturned, nil
	default:
		return 0, 0, fmt.Errorf("%w: unknown action %q", ErrValidation, action)
	}
}

func decodeAttachment(item TesterSaveItem) (interface{}, interface{}, interface{}, error) {
	if item.AttachmentBase64 == "" {
		return nil, nil, nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(item.AttachmentBase64)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: attachment is not valid base64", ErrValidation)
	}
	if len(data) == 0 {
		return nil, nil, nil, nil
	}
	filename := item.AttachmentName
	if filename == "" {
		filename = "attachment"
	}
	mime := item.AttachmentMime
	if mime == "" {
		mime = "application/octet-stream"
	}
	return data, filename, mime, nil
}
