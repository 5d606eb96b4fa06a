// Package handler is the thin HTTP layer over the ledger service. It
// delegates to the service without embedding business logic so transport
// concerns remain isolated.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"trustledger/internal/ledger/models"
	"trustledger/internal/platform/middleware"
	"trustledger/internal/ratelimit"
	"trustledger/pkg/credential"
	id "trustledger/pkg/domain"
	dErrors "trustledger/pkg/domain-errors"
	"trustledger/pkg/platform/httputil"
	"trustledger/pkg/requestcontext"
)

// Service defines the ledger operations the HTTP layer exposes.
type Service interface {
	RegisterNamespace(ctx context.Context, controller id.Address) (id.NamespaceID, error)
	GetNamespace(ctx context.Context, nsID id.NamespaceID) (models.Namespace, error)
	RegisterIdentity(ctx context.Context, nsID id.NamespaceID, doc models.IdentityDocument) (id.IdentityID, error)
	GetIdentity(ctx context.Context, identityID id.IdentityID) (models.Identity, error)
	ResolveIdentityID(ctx context.Context, nsID id.NamespaceID, owner id.Address) (id.IdentityID, error)
	Verify(ctx context.Context, nsID id.NamespaceID, hash id.Hash, claimedIssuer id.Address, signature []byte, expiresAt time.Time) (bool, error)
	Revoke(ctx context.Context, nsID id.NamespaceID, hash id.Hash, issuer id.Address, signature []byte, expiresAt time.Time) error
	VoteProviders(ctx context.Context, nsID id.NamespaceID, identityIDs []id.IdentityID, votes []id.Vote) error
	GetProviderScore(ctx context.Context, nsID id.NamespaceID, identityID id.IdentityID) (scaledAverage, totalVotes uint64, err error)
}

// Handler handles the ledger endpoints.
type Handler struct {
	logger        *slog.Logger
	ledger        Service
	validator     middleware.TokenValidator
	verifyLimiter *ratelimit.Limiter
}

// New creates a new ledger Handler. A nil limiter leaves the verification
// probe unthrottled.
func New(ledger Service, logger *slog.Logger, validator middleware.TokenValidator, verifyLimiter *ratelimit.Limiter) *Handler {
	return &Handler{
		logger:        logger,
		ledger:        ledger,
		validator:     validator,
		verifyLimiter: verifyLimiter,
	}
}

// Register registers the ledger routes with the chi router. Reads are open;
// mutations require a caller token.
func (h *Handler) Register(r chi.Router) {
	ledgerRouter := chi.NewRouter()
	ledgerRouter.Use(middleware.Timeout(30 * time.Second))
	ledgerRouter.Use(middleware.ContentTypeJSON)

	ledgerRouter.Get("/namespaces/{namespaceID}", h.handleGetNamespace)
	ledgerRouter.Get("/namespaces/{namespaceID}/identities/resolve", h.handleResolveIdentity)
	ledgerRouter.Get("/namespaces/{namespaceID}/providers/{identityID}/score", h.handleGetScore)
	ledgerRouter.Get("/identities/{identityID}", h.handleGetIdentity)

	ledgerRouter.Post("/credentials/hash", h.handleCredentialHash)

	// The probe is open to anyone, so it is the one route worth throttling.
	ledgerRouter.Group(func(probe chi.Router) {
		if h.verifyLimiter != nil {
			probe.Use(ratelimit.Middleware(h.verifyLimiter, h.logger))
		}
		probe.Post("/credentials/verify", h.handleVerify)
	})

	ledgerRouter.Group(func(authed chi.Router) {
		authed.Use(middleware.RequireCaller(h.validator, h.logger))
		authed.Post("/namespaces", h.handleRegisterNamespace)
		authed.Post("/namespaces/{namespaceID}/identities", h.handleRegisterIdentity)
		authed.Post("/namespaces/{namespaceID}/votes", h.handleVoteProviders)
		authed.Post("/credentials/revoke", h.handleRevoke)
	})

	r.Mount("/v1", ledgerRouter)
}

type registerNamespaceRequest struct {
	Controller string `json:"controller"`
}

type registerNamespaceResponse struct {
	NamespaceID id.NamespaceID `json:"namespace_id"`
}

func (h *Handler) handleRegisterNamespace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerNamespaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.warnBadRequest(ctx, "invalid register namespace request", err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	controller, err := id.ParseAddress(req.Controller)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	nsID, err := h.ledger.RegisterNamespace(ctx, controller)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, registerNamespaceResponse{NamespaceID: nsID})
}

type namespaceResponse struct {
	NamespaceID id.NamespaceID `json:"namespace_id"`
	Controller  id.Address     `json:"controller"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (h *Handler) handleGetNamespace(w http.ResponseWriter, r *http.Request) {
	nsID, err := id.ParseNamespaceID(chi.URLParam(r, "namespaceID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	ns, err := h.ledger.GetNamespace(r.Context(), nsID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, namespaceResponse{
		NamespaceID: ns.ID,
		Controller:  ns.Controller,
		CreatedAt:   ns.CreatedAt,
	})
}

type registerIdentityRequest struct {
	Document models.IdentityDocument `json:"document"`
}

type registerIdentityResponse struct {
	IdentityID id.IdentityID `json:"identity_id"`
}

func (h *Handler) handleRegisterIdentity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	nsID, err := id.ParseNamespaceID(chi.URLParam(r, "namespaceID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req registerIdentityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.warnBadRequest(ctx, "invalid register identity request", err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	identityID, err := h.ledger.RegisterIdentity(ctx, nsID, req.Document)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, registerIdentityResponse{IdentityID: identityID})
}

type identityResponse struct {
	IdentityID id.IdentityID           `json:"identity_id"`
	Namespace  id.NamespaceID          `json:"namespace_id"`
	Owner      id.Address              `json:"owner"`
	Document   models.IdentityDocument `json:"document"`
	CreatedAt  time.Time               `json:"created_at"`
}

func (h *Handler) handleGetIdentity(w http.ResponseWriter, r *http.Request) {
	identityID, err := id.ParseIdentityID(chi.URLParam(r, "identityID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	identity, err := h.ledger.GetIdentity(r.Context(), identityID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, identityResponse{
		IdentityID: identity.ID,
		Namespace:  identity.Namespace,
		Owner:      identity.Owner,
		Document:   identity.Document,
		CreatedAt:  identity.CreatedAt,
	})
}

type resolveIdentityResponse struct {
	IdentityID id.IdentityID `json:"identity_id"`
	Registered bool          `json:"registered"`
}

func (h *Handler) handleResolveIdentity(w http.ResponseWriter, r *http.Request) {
	nsID, err := id.ParseNamespaceID(chi.URLParam(r, "namespaceID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	owner, err := id.ParseAddress(r.URL.Query().Get("owner"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	identityID, err := h.ledger.ResolveIdentityID(r.Context(), nsID, owner)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resolveIdentityResponse{
		IdentityID: identityID,
		Registered: identityID != id.NoIdentity,
	})
}

type credentialProofRequest struct {
	NamespaceID id.NamespaceID `json:"namespace_id"`
	Hash        string         `json:"credential_hash"`
	Issuer      string         `json:"issuer"`
	Signature   hexBytes       `json:"signature"`
	ExpiresAt   time.Time      `json:"expires_at"`
}

type verifyResponse struct {
	Valid bool `json:"valid"`
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := h.decodeProof(w, r)
	if !ok {
		return
	}
	hash, err := id.ParseHash(req.Hash)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	issuer, err := id.ParseAddress(req.Issuer)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	valid, err := h.ledger.Verify(ctx, req.NamespaceID, hash, issuer, req.Signature, req.ExpiresAt)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, verifyResponse{Valid: valid})
}

func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := h.decodeProof(w, r)
	if !ok {
		return
	}
	hash, err := id.ParseHash(req.Hash)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	issuer, err := id.ParseAddress(req.Issuer)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.ledger.Revoke(ctx, req.NamespaceID, hash, issuer, req.Signature, req.ExpiresAt); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
}

type voteProvidersRequest struct {
	IdentityIDs []id.IdentityID `json:"identity_ids"`
	Votes       []id.Vote       `json:"votes"`
}

func (h *Handler) handleVoteProviders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	nsID, err := id.ParseNamespaceID(chi.URLParam(r, "namespaceID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req voteProvidersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.warnBadRequest(ctx, "invalid vote request", err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.ledger.VoteProviders(ctx, nsID, req.IdentityIDs, req.Votes); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

type scoreResponse struct {
	ScaledAverage uint64 `json:"scaled_average"`
	TotalVotes    uint64 `json:"total_votes"`
}

func (h *Handler) handleGetScore(w http.ResponseWriter, r *http.Request) {
	nsID, err := id.ParseNamespaceID(chi.URLParam(r, "namespaceID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	identityID, err := id.ParseIdentityID(chi.URLParam(r, "identityID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	avg, count, err := h.ledger.GetProviderScore(r.Context(), nsID, identityID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, scoreResponse{ScaledAverage: avg, TotalVotes: count})
}

type credentialHashRequest struct {
	NamespaceID   id.NamespaceID `json:"namespace_id"`
	Issuer        string         `json:"issuer"`
	Subject       string         `json:"subject"`
	IssuedAt      time.Time      `json:"issued_at"`
	ExpiresAt     time.Time      `json:"expires_at"`
	PayloadDigest string         `json:"payload_digest"`
}

// handleCredentialHash computes the canonical content hash a credential's
// signature must cover. A convenience for issuers and verifiers so both
// sides hash the same bytes.
func (h *Handler) handleCredentialHash(w http.ResponseWriter, r *http.Request) {
	var req credentialHashRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.warnBadRequest(r.Context(), "invalid credential hash request", err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	issuer, err := id.ParseAddress(req.Issuer)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	digest, err := id.ParseHash(req.PayloadDigest)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	cred := credential.Credential{
		Namespace:     req.NamespaceID,
		Issuer:        issuer,
		Subject:       req.Subject,
		IssuedAt:      req.IssuedAt,
		ExpiresAt:     req.ExpiresAt,
		PayloadDigest: digest,
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"credential_hash": cred.Hash().String()})
}

func (h *Handler) decodeProof(w http.ResponseWriter, r *http.Request) (credentialProofRequest, bool) {
	var req credentialProofRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.warnBadRequest(r.Context(), "invalid credential proof", err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return req, false
	}
	return req, true
}

func (h *Handler) warnBadRequest(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err.Error(),
	)
}
