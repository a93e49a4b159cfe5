package status

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/carson-networks/expense-server/internal/logging"
	"github.com/carson-networks/expense-server/internal/storage"
)

// Handler reports whether the server can open a read session on its store.
type Handler struct {
	Storage storage.Storage
}

func NewHandler(store storage.Storage) Handler {
	return Handler{Storage: store}
}

func (h *Handler) Handler(w http.ResponseWriter, req *http.Request, logData *logging.LogData) error {
	if req.Method != http.MethodGet {
		w.WriteHeader(http.StatusBadRequest)
		return errors.New("status: method not GET")
	}

	endTimer := logData.AddTiming("storeCheckMs")
	reader, err := h.Storage.Read(req.Context())
	endTimer()
	if err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return fmt.Errorf("status: store unavailable: %w", err)
	}
	_ = reader.Close()

	w.WriteHeader(http.StatusOK)
	return nil
}
