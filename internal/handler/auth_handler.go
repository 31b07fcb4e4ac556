package handler

import (
	"net/http"
	"time"

	"go-todo-list/internal/middleware"
	"go-todo-list/internal/model"
	"go-todo-list/internal/service"
	"go-todo-list/pkg/apierror"
)

const sessionCookie = "token"

type CookieConfig struct {
	Secure bool
	TTL    time.Duration
}

type AuthHandler struct {
	service *service.AuthService
	cookie  CookieConfig
}

func NewAuthHandler(service *service.AuthService, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{service: service, cookie: cookie}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload model.RegisterRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	if _, err := h.service.Register(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusCreated, "user created")
}

// Login answers with the token in the body and also sets it as an HttpOnly
// cookie for browser clients.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload model.LoginRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.service.Login(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    resp.Token,
		Path:     "/",
		Expires:  resp.ExpiresAt,
		MaxAge:   int(h.cookie.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, resp)
}

// Me echoes the verified token claims without touching the store.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthenticated("missing token"))
		return
	}

	writeJSON(w, http.StatusOK, model.MeResponse{User: claims})
}
