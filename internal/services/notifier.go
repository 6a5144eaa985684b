package services

import (
	"github.com/anonto42/odin-book/backend/internal/models"
	"github.com/anonto42/odin-book/backend/internal/repositories"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notifier records notifications for content owners. A nil Notifier, or one
// without a repository, drops everything. Failures are logged and never
// returned to the caller.
type Notifier struct {
	repo repositories.NotificationRepository
	log  logrus.FieldLogger
}

func NewNotifier(repo repositories.NotificationRepository, log logrus.FieldLogger) *Notifier {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Notifier{repo: repo, log: log}
}

func (n *Notifier) Enabled() bool {
	return n != nil && n.repo != nil
}

// Notify tells recipient that actor did something to target.
func (n *Notifier) Notify(kind string, actor, recipient, target primitive.ObjectID, targetType, message string) {
	if !n.Enabled() || actor == recipient {
		return
	}
	notification := &models.Notification{
		Type:        kind,
		ActorID:     actor.Hex(),
		RecipientID: recipient.Hex(),
		TargetID:    target.Hex(),
		TargetType:  targetType,
		Message:     message,
	}
	if err := n.repo.CreateNotification(notification); err != nil {
		n.log.WithError(err).WithFields(logrus.Fields{
			"type":      kind,
			"recipient": recipient.Hex(),
		}).Warn("failed to create notification")
	}
}
