package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/socialhub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/socialhub/internal/service"
)

func CreateNotification(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		me, ok := caller(w, r, d)
		if !ok {
			return
		}
		var in service.CreateNotificationInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, r, d, err)
			return
		}
		n, err := d.Notifications.Create(r.Context(), me.ID, in)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusCreated, n)
	}
}

// UpdateNotification lets the recipient mark a notification read or edit it.
// Unknown ids and notifications of others both answer 404.
func UpdateNotification(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		me, ok := caller(w, r, d)
		if !ok {
			return
		}
		id, err := parseID(chi.URLParam(r, "id"), "id")
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		var in service.UpdateNotificationInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, r, d, err)
			return
		}
		n, err := d.Notifications.Update(r.Context(), me.ID, id, in)
		if err != nil {
			writeNotificationError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusAccepted, n)
	}
}

func GetNotification(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		me, ok := caller(w, r, d)
		if !ok {
			return
		}
		id, err := parseID(chi.URLParam(r, "id"), "id")
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		n, err := d.Notifications.Get(r.Context(), me.ID, id)
		if err != nil {
			writeNotificationError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, n)
	}
}

// MyNotifications lists the caller's inbox.
func MyNotifications(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		me, ok := caller(w, r, d)
		if !ok {
			return
		}
		list, err := d.Notifications.ListByRecipient(r.Context(), me.ID)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func AllNotifications(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := d.Notifications.ListAll(r.Context())
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// Notification lookups use 404 for missing records, unlike the profile API.
func writeNotificationError(w http.ResponseWriter, r *http.Request, d deps.Deps, err error) {
	if isNotFound(err) {
		writeFailure(w, d, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, r, d, err)
}
