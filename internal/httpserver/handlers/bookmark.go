package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/socialhub/internal/domain"
	"github.com/MrSnakeDoc/socialhub/internal/httpserver/deps"
)

// BookmarkStatusHeader tells clients whether an add created the bookmark.
const BookmarkStatusHeader = "X-Bookmark-Status"

type bookmarkRequest struct {
	PostID uint `json:"psid"`
}

type bookmarkResponse struct {
	Bookmark domain.Bookmark `json:"bookmark"`
	Status   string          `json:"status"`
}

// AddBookmark answers 201 for a new bookmark and 200 when the pair already
// existed. Both carry the stored bookmark.
func AddBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		me, ok := caller(w, r, d)
		if !ok {
			return
		}
		postID, ok := bookmarkTarget(w, r, d)
		if !ok {
			return
		}

		res, err := d.Bookmarks.Add(r.Context(), me.ID, postID)
		if err != nil {
			writeError(w, r, d, err)
			return
		}

		status := http.StatusCreated
		if res.Status == domain.BookmarkAlreadyExists {
			status = http.StatusOK
		}
		w.Header().Set(BookmarkStatusHeader, res.Status.String())
		writeJSON(w, status, bookmarkResponse{Bookmark: res.Bookmark, Status: res.Status.String()})
	}
}

func RemoveBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		me, ok := caller(w, r, d)
		if !ok {
			return
		}
		postID, ok := bookmarkTarget(w, r, d)
		if !ok {
			return
		}
		if err := d.Bookmarks.Remove(r.Context(), me.ID, postID); err != nil {
			writeError(w, r, d, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		me, ok := caller(w, r, d)
		if !ok {
			return
		}
		posts, err := d.Bookmarks.List(r.Context(), me.ID)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, posts)
	}
}

// HasBookmark answers 1 or 0. The post id comes from the "post" header or
// the ?post= query parameter.
func HasBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		me, ok := caller(w, r, d)
		if !ok {
			return
		}
		raw := r.Header.Get("post")
		if strings.TrimSpace(raw) == "" {
			raw = r.URL.Query().Get("post")
		}
		postID, err := parseID(raw, "post")
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		has, err := d.Bookmarks.Has(r.Context(), me.ID, postID)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		answer := 0
		if has {
			answer = 1
		}
		writeJSON(w, http.StatusOK, answer)
	}
}

func CountBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := parseID(chi.URLParam(r, "postID"), "postID")
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		n, err := d.Bookmarks.Count(r.Context(), postID)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, n)
	}
}

func bookmarkTarget(w http.ResponseWriter, r *http.Request, d deps.Deps) (uint, bool) {
	var req bookmarkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, d, err)
		return 0, false
	}
	if req.PostID == 0 {
		writeFailure(w, d, http.StatusBadRequest, "psid is required")
		return 0, false
	}
	return req.PostID, true
}
