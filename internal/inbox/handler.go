package inbox

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/conneroisu/folio/internal/contact"
	folioerrors "github.com/conneroisu/folio/internal/errors"
	"github.com/conneroisu/folio/internal/logging"
)

const maxBodyBytes = 64 << 10

// ErrInvalidMessage is returned by Send for values that fail validation.
var ErrInvalidMessage = errors.New("invalid message")

// Send validates values and stores them. It lets a Controller deliver to the
// inbox in-process instead of over HTTP.
func (s *Store) Send(ctx context.Context, values contact.Values) error {
	if errs, ok := contact.ValidateAll(values); !ok {
		return folioerrors.Wrap(ErrInvalidMessage, folioerrors.ErrorTypeValidation,
			folioerrors.ErrCodeValidationFailed, joinMessages(errs))
	}
	_, err := s.Save(ctx, values)
	return err
}

func joinMessages(errs contact.FieldErrors) string {
	var msgs []string
	for _, field := range contact.Fields {
		if e := errs[field]; e != nil {
			msgs = append(msgs, e.Message)
		}
	}
	return strings.Join(msgs, "; ")
}

type createdResponse struct {
	ID         string `json:"id"`
	ReceivedAt string `json:"receivedAt"`
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Handler serves POST requests carrying {name,email,message}. Invalid
// messages get 422 with a field to message map; stored ones get 201.
type Handler struct {
	store  *Store
	logger logging.Logger
}

// NewHandler creates the endpoint handler.
func NewHandler(store *Store, logger logging.Logger) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{store: store, logger: logger.WithComponent("inbox")}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	var values contact.Values
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&values); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	if errs, ok := contact.ValidateAll(values); !ok {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:  "validation failed",
			Fields: errs.Messages(),
		})
		return
	}

	msg, err := h.store.Save(r.Context(), values)
	if err != nil {
		h.logger.Error(r.Context(), err, "Failed to store message")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to store message"})
		return
	}

	h.logger.Info(r.Context(), "Message received",
		"id", msg.ID,
		"from", logging.RedactEmail(msg.Email))
	writeJSON(w, http.StatusCreated, createdResponse{
		ID:         msg.ID,
		ReceivedAt: msg.ReceivedAt.Format("2006-01-02T15:04:05.000Z07:00"),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
