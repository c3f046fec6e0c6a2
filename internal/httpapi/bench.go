package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"

	"example.com/bnc-solver/internal/bench"
	"example.com/bnc-solver/internal/game"
	"example.com/bnc-solver/internal/solver"
)

// BenchRequest selects what to replay. Empty Secrets means the whole
// universe. Opener is a code or "random"; empty keeps the handler default.
type BenchRequest struct {
	Secrets []game.Code `json:"secrets"`
	Opener  string      `json:"opener"`
	Seed    uint64      `json:"seed"`
	Workers int         `json:"workers"`
}

type BenchHandler struct {
	Defaults bench.Config
	Log      *slog.Logger
}

func (h *BenchHandler) Run(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		return
	}

	var req BenchRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "invalid json: "+err.Error())
			return
		}
	}

	cfg := h.Defaults
	cfg.Options = append([]solver.Option(nil), h.Defaults.Options...)
	if req.Seed != 0 {
		cfg.Seed = req.Seed
	}
	if req.Workers > 0 {
		cfg.Workers = min(req.Workers, runtime.NumCPU())
	}
	if req.Opener != "" {
		opt, err := solver.ParseOpener(req.Opener)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		cfg.Options = append(cfg.Options, opt)
	}

	if len(req.Secrets) > game.UniverseSize {
		writeError(w, http.StatusBadRequest, "bad_request",
			fmt.Sprintf("at most %d secrets per run, got %d", game.UniverseSize, len(req.Secrets)))
		return
	}
	for i, c := range req.Secrets {
		// null decodes to the zero Code without calling UnmarshalText
		if c.IsZero() {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("secrets[%d] is not a code", i))
			return
		}
	}

	secrets := req.Secrets
	if len(secrets) == 0 {
		secrets = game.Universe()
	}

	rep, err := bench.Run(r.Context(), secrets, cfg, h.Log)
	if err != nil {
		if errors.Is(err, r.Context().Err()) {
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
