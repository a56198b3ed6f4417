package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pezzottify/catalog-server/internal/apierr"
	"github.com/pezzottify/catalog-server/internal/authz"
	"github.com/pezzottify/catalog-server/internal/useraccount"
	"github.com/pezzottify/catalog-server/internal/validation"
)

var rsaChallenges = newChallengeStore()

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if apiErr := decodeJSON(r, &req); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeValidationError(w, r, verr.Error())
		return
	}

	result, apiErr := h.Users.Login(r.Context(), useraccount.LoginRequest{
		Handle:     req.Handle,
		Password:   req.Password,
		DeviceUUID: req.DeviceUUID,
		DeviceType: useraccount.DeviceType(req.DeviceType),
		DeviceName: req.DeviceName,
		OSInfo:     req.OSInfo,
	}, time.Now())
	if apiErr != nil {
		writeError(w, r, apiErr)
		return
	}

	setSessionCookie(w, result.Token)
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := tokenFromRequest(r)
	if token != "" {
		if err := h.Users.Logout(r.Context(), token); err != nil {
			writeError(w, r, err)
			return
		}
	}
	clearSessionCookie(w)
	writeNoContent(w)
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	sess := authz.SessionFromContext(r.Context())
	if sess == nil {
		writeError(w, r, apierr.Unauthorized("no authenticated session"))
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// handleChallengeIssue returns a nonce the client signs with its
// registered device RSA key to authenticate without sending a password.
func (h *Handler) handleChallengeIssue(w http.ResponseWriter, r *http.Request) {
	handle := r.URL.Query().Get("handle")
	if handle == "" {
		writeValidationError(w, r, "handle query parameter is required")
		return
	}
	nonce, err := rsaChallenges.issue(handle, time.Now())
	if err != nil {
		writeError(w, r, apierr.Wrap(apierr.KindInternal, "issue challenge", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"challenge": nonce})
}

// handleChallengeRedeem verifies a signed challenge against the user's
// registered RSA public keys and issues an auth token on success.
func (h *Handler) handleChallengeRedeem(w http.ResponseWriter, r *http.Request) {
	var req challengeRequest
	if apiErr := decodeJSON(r, &req); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeValidationError(w, r, verr.Error())
		return
	}

	now := time.Now()
	nonce, ok := rsaChallenges.redeem(req.Handle, now)
	if !ok {
		writeError(w, r, errChallengeExpired)
		return
	}

	user, err := h.Users.GetUserByHandle(r.Context(), req.Handle)
	if err != nil {
		writeError(w, r, apierr.Unauthorized("invalid handle or signature"))
		return
	}
	cred, err := h.Users.GetCredential(r.Context(), user.ID)
	if err != nil || !verifyRSAChallenge(cred.RSAPublicKeys, nonce, req.Signature) {
		writeError(w, r, apierr.Unauthorized("invalid handle or signature"))
		return
	}

	result, apiErr := h.Users.Login(r.Context(), useraccount.LoginRequest{
		Handle:     req.Handle,
		DeviceUUID: req.DeviceUUID,
		DeviceType: useraccount.DeviceType(req.DeviceType),
		DeviceName: req.DeviceName,
		OSInfo:     req.OSInfo,
	}, now)
	if apiErr != nil {
		writeError(w, r, apiErr)
		return
	}

	setSessionCookie(w, result.Token)
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleRedeemInvite(w http.ResponseWriter, r *http.Request) {
	var req redeemInviteRequest
	if apiErr := decodeJSON(r, &req); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeValidationError(w, r, verr.Error())
		return
	}

	result, apiErr := h.Users.RedeemInviteToken(r.Context(), req.Token, useraccount.LoginRequest{
		DeviceUUID: req.DeviceUUID,
		DeviceType: useraccount.DeviceType(req.DeviceType),
		DeviceName: req.DeviceName,
		OSInfo:     req.OSInfo,
	}, time.Now())
	if apiErr != nil {
		writeError(w, r, apiErr)
		return
	}

	setSessionCookie(w, result.Token)
	writeJSON(w, http.StatusOK, result)
}

func routeParam(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}
