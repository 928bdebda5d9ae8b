package http

import (
	"net/http"
)

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	limit := queryInt(r, "limit", 50)

	notifs, err := s.deps.Storage.ListNotifications(r.Context(), uid, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	unread, err := s.deps.Storage.CountUnreadNotifications(r.Context(), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}

	items := make([]notificationJSON, 0, len(notifs))
	for _, n := range notifs {
		items = append(items, toNotificationJSON(n))
	}

	NewResponse().JSON(struct {
		Notifications []notificationJSON `json:"notifications"`
		UnreadCount   int                `json:"unread_count"`
	}{Notifications: items, UnreadCount: unread}).Write(w)
}

// handleNotificationCheck runs the rule engine synchronously for the
// caller. The same evaluation runs async after every transaction write.
func (s *Server) handleNotificationCheck(w http.ResponseWriter, r *http.Request) {
	res, err := s.deps.Notifier.Check(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(toCheckResultJSON(res)).Write(w)
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	if err := s.deps.Storage.MarkNotificationRead(r.Context(), userID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Storage.MarkAllNotificationsRead(r.Context(), userID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
