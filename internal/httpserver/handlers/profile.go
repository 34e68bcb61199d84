package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/socialhub/internal/domain"
	"github.com/MrSnakeDoc/socialhub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/socialhub/internal/service"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type followRequest struct {
	Email string `json:"email"`
}

type tokenResponse struct {
	Authorization string `json:"Authorization"`
}

// Login accepts a JSON body or form values. The username may be an email.
func Login(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if isForm(r) {
			if err := r.ParseForm(); err != nil {
				writeFailure(w, d, http.StatusBadRequest, "malformed form body")
				return
			}
			req.Username, req.Password = r.PostForm.Get("username"), r.PostForm.Get("password")
		} else if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, d, err)
			return
		}

		p, token, err := d.Profiles.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		setToken(w, token)
		writeJSON(w, http.StatusOK, p)
	}
}

func Register(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in service.RegisterInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, r, d, err)
			return
		}
		p, token, err := d.Profiles.Register(r.Context(), in)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		setToken(w, token)
		writeJSON(w, http.StatusCreated, p)
	}
}

// GetProfile answers 202 on success and 400 for unknown ids.
func GetProfile(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(chi.URLParam(r, "id"), "id")
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		p, err := d.Profiles.GetByID(r.Context(), id)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusAccepted, p)
	}
}

func UpdateProfile(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		me, ok := caller(w, r, d)
		if !ok {
			return
		}
		var in service.UpdateInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, r, d, err)
			return
		}
		p, token, err := d.Profiles.Update(r.Context(), me.ID, in)
		if errors.Is(err, domain.ErrConflict) {
			// a taken username or email is a rejected update like any other
			writeFailure(w, d, http.StatusBadRequest, err.Error())
			return
		}
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		setToken(w, token)
		writeJSON(w, http.StatusAccepted, p)
	}
}

// Follow and Unfollow answer with a fresh token since the follow-set is part
// of what clients read back after login.
func Follow(d deps.Deps) http.HandlerFunc {
	return followHandler(d, d.Profiles.Follow)
}

func Unfollow(d deps.Deps) http.HandlerFunc {
	return followHandler(d, d.Profiles.Unfollow)
}

type followFunc func(ctx context.Context, callerID uint, email string) (domain.Profile, string, error)

func followHandler(d deps.Deps, apply followFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		me, ok := caller(w, r, d)
		if !ok {
			return
		}
		email, err := followTarget(r)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		if email == "" {
			writeFailure(w, d, http.StatusBadRequest, "email is required")
			return
		}
		_, token, err := apply(r.Context(), me.ID, email)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		setToken(w, token)
		writeJSON(w, http.StatusAccepted, tokenResponse{Authorization: token})
	}
}

// followTarget reads the email from a form body, the ?email= query or a
// JSON body, in that order.
func followTarget(r *http.Request) (string, error) {
	if isForm(r) {
		if err := r.ParseForm(); err != nil {
			return "", fmt.Errorf("%w: malformed form body", domain.ErrValidation)
		}
		return strings.TrimSpace(r.PostForm.Get("email")), nil
	}
	if email := strings.TrimSpace(r.URL.Query().Get("email")); email != "" {
		return email, nil
	}
	var req followRequest
	if err := decodeJSON(r, &req); err != nil {
		return "", err
	}
	return strings.TrimSpace(req.Email), nil
}

func ProfilePage(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := strconv.Atoi(chi.URLParam(r, "n"))
		if err != nil {
			writeFailure(w, d, http.StatusBadRequest, "page must be a number")
			return
		}
		profiles, err := d.Profiles.Page(r.Context(), n)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, profiles)
	}
}

func SearchProfiles(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := searchQuery(r)
		profiles, err := d.Profiles.Search(r.Context(), query)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, profiles)
	}
}

// searchQuery returns the decoded {query} segment. chi matches on the
// decoded path unless the URL carried escapes that decoding would lose (a
// %2F, say), in which case the parameter is still escaped.
func searchQuery(r *http.Request) string {
	raw := chi.URLParam(r, "query")
	if r.URL.RawPath == "" {
		return raw
	}
	if q, err := url.PathUnescape(raw); err == nil {
		return q
	}
	return raw
}

func isForm(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")
}
