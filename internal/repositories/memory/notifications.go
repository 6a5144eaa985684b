package memory

import (
	"sort"

	"github.com/anonto42/odin-book/backend/internal/models"
	"github.com/anonto42/odin-book/backend/internal/repositories"
)

// NotificationRepository implements repositories.NotificationRepository.
type NotificationRepository struct{ s *Store }

func (r *NotificationRepository) CreateNotification(n *models.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextNotifID++
	n.ID = r.s.nextNotifID
	if n.CreatedAt.IsZero() {
		n.CreatedAt = r.s.now()
	}
	r.s.notifications[n.ID] = *n
	return nil
}

func (r *NotificationRepository) GetByRecipientID(recipientID string, page, limit int) ([]models.Notification, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := []models.Notification{}
	for _, n := range r.s.notifications {
		if n.RecipientID == recipientID {
			all = append(all, n)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	total := int64(len(all))
	start := (page - 1) * limit
	if start >= len(all) {
		return []models.Notification{}, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *NotificationRepository) GetUnreadCount(recipientID string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, notif := range r.s.notifications {
		if notif.RecipientID == recipientID && !notif.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *NotificationRepository) MarkAsRead(notificationID uint, recipientID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[notificationID]
	if !ok || n.RecipientID != recipientID {
		return repositories.ErrNotificationNotFound
	}
	n.IsRead = true
	r.s.notifications[notificationID] = n
	return nil
}

func (r *NotificationRepository) MarkAllAsRead(recipientID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, n := range r.s.notifications {
		if n.RecipientID == recipientID {
			n.IsRead = true
			r.s.notifications[id] = n
		}
	}
	return nil
}

func (r *NotificationRepository) DeleteByUserID(userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for id, n := range r.s.notifications {
		if n.RecipientID == userID || n.ActorID == userID {
			delete(r.s.notifications, id)
			count++
		}
	}
	return count, nil
}
