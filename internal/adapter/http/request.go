package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/go-chi/chi/v5/middleware"

	"cpop-ledger/internal/core/domain"
	"cpop-ledger/internal/core/port"
)

const maxBodyBytes = 64 << 10

// signature is a detached signature in base58 text form.
type signature []byte

func (s *signature) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*s = nil
		return nil
	}
	decoded := base58.Decode(string(b))
	if len(decoded) == 0 {
		return fmt.Errorf("signature is not base58")
	}
	*s = decoded
	return nil
}

// signedBody is embedded by every mutating request body.
type signedBody struct {
	Signer    domain.Identity `json:"signer"`
	Signature signature       `json:"signature"`
}

func (b signedBody) signed() port.Signed {
	return port.Signed{Signer: b.Signer, Signature: b.Signature}
}

type errorResponse struct {
	Code    domain.Code `json:"code"`
	Message string      `json:"message"`
}

// decode reads a JSON body into v, rejecting unknown fields and bodies
// over maxBodyBytes.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON: %w", domain.ErrInvalidParameters, err)
	}
	return nil
}

// statusOf maps a ledger error code to an HTTP status.
func statusOf(code domain.Code) int {
	switch code {
	case domain.CodeInvalidParameters:
		return http.StatusBadRequest
	case domain.CodeUnauthorized:
		return http.StatusForbidden
	case domain.CodeCampaignNotFound:
		return http.StatusNotFound
	case domain.CodeDuplicateCampaign, domain.CodeCampaignNotActive, domain.CodeExceedsSupply,
		domain.CodeInvalidTransition, domain.CodeStaleSnapshot:
		return http.StatusConflict
	case domain.CodeTransferFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as {code, message}. Errors without a ledger code
// are logged and hidden behind a generic message.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.CodeOf(err)
	status := statusOf(code)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			slog.String("path", r.URL.Path),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.Any("error", err),
		)
		msg = "internal error"
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		status = http.StatusRequestEntityTooLarge
	}
	h.writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// encoding should rarely fail; the status line is already sent
		h.logger.Error("encode response error", slog.Any("error", err))
	}
}
