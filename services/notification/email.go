package notifsvc

import (
	"fmt"
	"net/mail"

	"github.com/kymani/udahili/core"
)

var eventTexts = map[core.NotificationEvent]string{
	core.EventVerified:   "your application has been verified by the admissions office.",
	core.EventUnverified: "your application verification has been withdrawn pending further review.",
	core.EventRejected:   "we are sorry to inform you that your application has been rejected.",
	core.EventUnrejected: "your application has been moved back to the pending list for review.",
}

type emailDispatcher struct {
	mailSvc core.EmailService
}

var _ core.NotificationDispatcher = (*emailDispatcher)(nil)

// NewEmailDispatcher notifies applicants by email. Delivery is handled
// asynchronously by the underlying email service.
func NewEmailDispatcher(mailSvc core.EmailService) core.NotificationDispatcher {
	return &emailDispatcher{mailSvc: mailSvc}
}

func (d *emailDispatcher) Dispatch(notifications ...core.Notification) {
	msgs := make([]*core.EmailMessage, 0, len(notifications))
	for _, n := range notifications {
		text, ok := eventTexts[n.Event]
		if !ok {
			continue
		}
		msgs = append(msgs, &core.EmailMessage{
			To:      []mail.Address{{Name: n.ApplicantName, Address: n.Email}},
			Subject: fmt.Sprintf("Application %s update", n.PortalID),
			BodyStr: fmt.Sprintf("Dear %s,\n\n%s\n\nApplication reference: %s\n", n.ApplicantName, text, n.PortalID),
		})
	}
	d.mailSvc.SendMessages(msgs...)
}
