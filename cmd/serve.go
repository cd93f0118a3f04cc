package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/jsphweid/midiscore/config"
	"github.com/jsphweid/midiscore/file"
	"github.com/jsphweid/midiscore/input"
	"github.com/jsphweid/midiscore/model"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
)

const maxPieceBytes = 1 << 20

var serveListen string

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "address to listen on (default from config, :8080)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves renders over HTTP",
	Long: `Serves renders over HTTP.

  POST /render                      piece JSON in, audio/midi out
  GET  /scales/{scale}/notes        ?octave=4&positions=0,2,4&unicode=true`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := serveListen
		if addr == "" {
			addr = globalConfig.Listen
		}
		return serve(cmd.Context(), globalConfig, addr)
	},
}

func serve(ctx context.Context, cfg *config.Config, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", addr)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func NewRouter(cfg *config.Config) http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/render", HandleRender(cfg)).Methods("POST")
	router.HandleFunc("/scales/{scale}/notes", HandleScaleNotes).Methods("GET")
	return cors.Default().Handler(router)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("could not write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
}

func HandleRender(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPieceBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeJSON(w, http.StatusRequestEntityTooLarge, model.ErrorResponse{
					Error: fmt.Sprintf("piece is larger than %d bytes", tooLarge.Limit),
				})
				return
			}
			writeError(w, err)
			return
		}

		var opts []input.Option
		if cfg.RepairJSON || r.URL.Query().Get("repair") == "true" {
			opts = append(opts, input.WithRepair())
		}
		p, err := input.Parse(body, opts...)
		if err != nil {
			writeError(w, err)
			return
		}
		data, err := p.Bytes(cfg.Instrument())
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", file.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.DefaultName()))
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		if _, err := w.Write(data); err != nil {
			slog.Warn("could not write render", "error", err)
			return
		}
		slog.Debug("rendered", "tracks", len(p.Tracks), "bytes", len(data))
	}
}

func HandleScaleNotes(w http.ResponseWriter, r *http.Request) {
	scaleName := mux.Vars(r)["scale"]
	query := r.URL.Query()

	octave := 4
	if v := query.Get("octave"); v != "" {
		o, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, errors.Errorf("octave %q is not an integer", v))
			return
		}
		octave = o
	}

	var positions []int
	if v := query.Get("positions"); v != "" {
		p, err := parsePositions(strings.Split(v, ","))
		if err != nil {
			writeError(w, err)
			return
		}
		positions = p
	}

	res, err := Spell(scaleName, octave, positions, query.Get("unicode") == "true")
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
