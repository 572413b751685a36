package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogNotifier writes notices to the log instead of delivering them. Meant for
// local development.
type LogNotifier struct{}

func (LogNotifier) NotifyFollowRequest(_ context.Context, notice FollowRequestNotice) error {
	logrus.WithFields(logrus.Fields{
		"notice_id":  notice.ID,
		"from_user":  notice.FromUsername,
		"to_user":    notice.ToUsername,
		"accept_url": notice.AcceptURL,
		"reject_url": notice.RejectURL,
	}).Info("follow request notice")
	return nil
}
