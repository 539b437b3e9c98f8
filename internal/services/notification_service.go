package services

import (
	"log"

	"stayops-backend/internal/models"
)

// Notifier receives lifecycle events. Delivery is best effort; core
// operations never fail because a notification could not be sent.
type Notifier interface {
	TaskAssigned(task *models.Task)
	TaskReviewed(task *models.Task, approved bool)
	LeadAssigned(lead *models.Lead)
}

// Broadcaster pushes an event to connected realtime clients. Implemented
// by the websocket hub; nil-safe to leave unset in tests.
type Broadcaster interface {
	Broadcast(event string, payload interface{})
}

// NotificationService logs every event and fans it out over the
// websocket hub when one is attached.
type NotificationService struct {
	hub Broadcaster
}

func NewNotificationService(hub Broadcaster) *NotificationService {
	return &NotificationService{hub: hub}
}

func (s *NotificationService) emit(event string, payload interface{}) {
	if s.hub != nil {
		s.hub.Broadcast(event, payload)
	}
}

func (s *NotificationService) TaskAssigned(task *models.Task) {
	if task.AssigneeUserID != nil {
		log.Printf("[Notify] task %d assigned to user %d", task.ID, *task.AssigneeUserID)
	} else {
		log.Printf("[Notify] task %d assigned to external contact %s", task.ID, task.ExternalContact)
	}
	s.emit("task_assigned", task)
}

func (s *NotificationService) TaskReviewed(task *models.Task, approved bool) {
	verdict := "rejected"
	if approved {
		verdict = "approved"
	}
	log.Printf("[Notify] task %d %s by user %d", task.ID, verdict, derefInt(task.ReviewedBy))
	s.emit("task_reviewed", task)
}

func (s *NotificationService) LeadAssigned(lead *models.Lead) {
	log.Printf("[Notify] lead %d assigned to user %d", lead.ID, derefInt(lead.AssignedUserID))
	s.emit("lead_assigned", lead)
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
