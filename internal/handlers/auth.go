package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/cargoline/apiserver/internal/services"
	"github.com/cargoline/apiserver/internal/session"
	"github.com/cargoline/apiserver/types"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

const birthdayLayout = "2006-01-02"

type AuthService interface {
	Login(ctx context.Context, username, password string) (types.Session, error)
	Register(ctx context.Context, reg types.Registration) error
}

// AuthHandler provides session authentication endpoints.
type AuthHandler struct {
	auth     AuthService
	sessions *session.Manager
	validate *validator.Validate
}

func NewAuthHandler(auth AuthService, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		sessions: sessions,
		validate: newValidator(),
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, auth AuthService, sessions *session.Manager) {
	handler := NewAuthHandler(auth, sessions)

	r.Post("/login", handler.Login)
	r.Post("/register", handler.Register)
	r.Post("/logout", handler.Logout)
}

// Login checks credentials and starts a session.
// Unknown users and wrong passwords get the same 401.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	sess, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) || errors.Is(err, services.ErrInvalidPassword) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		log.Ctx(r.Context()).Error().Err(err).Msg("login failed")
		writeError(w, http.StatusInternalServerError, "failed to authenticate")
		return
	}

	if err := h.sessions.Issue(w, r, sess); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("failed to issue session")
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	writeMessage(w, http.StatusOK, "Login successful")
}

// Register creates a client account. It does not log the caller in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	reg, err := req.toRegistration()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Error:   "validation failed",
			Details: map[string]string{"birthday": "datetime=" + birthdayLayout},
		})
		return
	}

	if err := h.auth.Register(r.Context(), reg); err != nil {
		if errors.Is(err, services.ErrUsernameTaken) {
			writeError(w, http.StatusConflict, "username already exists")
			return
		}
		log.Ctx(r.Context()).Error().Err(err).Msg("registration failed")
		writeError(w, http.StatusInternalServerError, "failed to register")
		return
	}

	writeMessage(w, http.StatusCreated, "Registration successful")
}

// Logout ends the caller's session. It succeeds without one.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Clear(w, r); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("failed to delete session")
	}
	writeMessage(w, http.StatusOK, "Logged out successfully")
}

type LoginRequest struct {
	Username string `json:"username" validate:"required,notblank"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Username   string              `json:"username" validate:"required,notblank,max=150"`
	Password   string              `json:"password" validate:"required"`
	FirstName  string              `json:"first_name" validate:"required,notblank,max=150"`
	LastName   string              `json:"last_name" validate:"required,notblank,max=150"`
	Patronymic *string             `json:"patronymic" validate:"omitempty,max=150"`
	Birthday   string              `json:"birthday" validate:"required,datetime=2006-01-02"`
	Details    *BankDetailsRequest `json:"details" validate:"required"`
}

type BankDetailsRequest struct {
	INN                  string `json:"inn" validate:"required,number,len=10|len=12"`
	KPP                  string `json:"kpp" validate:"required,number,len=9"`
	AccountNumber        string `json:"account_number" validate:"required,number,len=20"`
	BIK                  string `json:"bik" validate:"required,number,len=9"`
	CorrespondentAccount string `json:"correspondent_account" validate:"required,number,len=20"`
	BankName             string `json:"bank_name" validate:"required,notblank,max=255"`
	BankAddress          string `json:"bank_address" validate:"required,notblank,max=255"`
}

func (req RegisterRequest) toRegistration() (types.Registration, error) {
	birthday, err := time.Parse(birthdayLayout, req.Birthday)
	if err != nil {
		return types.Registration{}, err
	}

	var patronymic *string
	if req.Patronymic != nil {
		if p := strings.TrimSpace(*req.Patronymic); p != "" {
			patronymic = &p
		}
	}

	return types.Registration{
		Username:   strings.TrimSpace(req.Username),
		Password:   req.Password,
		FirstName:  strings.TrimSpace(req.FirstName),
		LastName:   strings.TrimSpace(req.LastName),
		Patronymic: patronymic,
		Birthday:   birthday,
		Details: types.BankDetails{
			INN:                  req.Details.INN,
			KPP:                  req.Details.KPP,
			AccountNumber:        req.Details.AccountNumber,
			BIK:                  req.Details.BIK,
			CorrespondentAccount: req.Details.CorrespondentAccount,
			BankName:             strings.TrimSpace(req.Details.BankName),
			BankAddress:          strings.TrimSpace(req.Details.BankAddress),
		},
	}, nil
}
