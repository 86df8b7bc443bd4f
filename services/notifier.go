package services

import (
	"fmt"
	"log"

	"qa-release-api/config"
)

// MailNotifier emails the QA distribution list when a tech lead returns a CRF
// for rework. Delivery is best-effort: failures are logged and swallowed so a
// mail outage can never block a workflow transition.
type MailNotifier struct {
	to []string
}

func NewMailNotifier(to []string) *MailNotifier {
	return &MailNotifier{to: to}
}

func (n *MailNotifier) ReturnNotice(crfID, tlRemarks, actor string) {
	if len(n.to) == 0 || !config.MailConfigured() {
		return
	}

	subject := fmt.Sprintf("CRF %s returned for rework", crfID)
	body := fmt.Sprintf(
		"<p>CRF <b>%s</b> was returned for rework by %s.</p><p>TL remarks: %s</p>",
		crfID, actor, tlRemarks)

	if err := config.SendMail(n.to, subject, body); err != nil {
		log.Printf("Warning: return notice for CRF %s not sent: %v", crfID, err)
	}
}
