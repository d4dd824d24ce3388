package ws

import (
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const (
	EventApplicationStatusChanged = "application.status_changed"
	EventInterviewReportReady     = "interview.report_ready"
	EventResumeAnalyzed           = "resume.analyzed"
	EventBoothInterest            = "booth.interest"
	EventConnectionRequested      = "connection.requested"
	EventConnectionUpdated        = "connection.updated"
)

type Message struct {
	Type      string `json:"type"`
	Data      any    `json:"data"`
	Timestamp string `json:"timestamp"`
}

var defaultHub atomic.Pointer[Hub]

func SetDefaultHub(h *Hub) {
	defaultHub.Store(h)
}

// Notify sends an event to every connection of the given users. It is a
// no-op until SetDefaultHub is called.
func Notify(userIDs []uuid.UUID, eventType string, data any) {
	h := defaultHub.Load()
	if h == nil || len(userIDs) == 0 {
		return
	}
	b, err := json.Marshal(Message{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		h.log().WithError(err).WithField("type", eventType).Warn("ws notify marshal failed")
		return
	}
	seen := make(map[uuid.UUID]struct{}, len(userIDs))
	for _, id := range userIDs {
		if _, ok := seen[id]; ok || id == uuid.Nil {
			continue
		}
		seen[id] = struct{}{}
		h.SendTo(id, b)
	}
}
