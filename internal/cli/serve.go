package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	scerrors "github.com/matzehuels/scenesync/pkg/errors"
	"github.com/matzehuels/scenesync/pkg/inspect"
	"github.com/matzehuels/scenesync/pkg/replay"
	"github.com/matzehuels/scenesync/pkg/sceneio"
)

// serveCommand creates the serve command for the HTTP inspector.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve <scene.toml>",
		Short: "Serve a mounted scene over HTTP",
		Long: `Mount a scene and expose it over HTTP.

Endpoints:
  GET  /snapshot       state of every mounted node
  GET  /views/{id}     one view with its representations
  POST /frames/next    apply the next frame
  POST /frames/reset   return to the parsed scene
  POST /apply          apply {"target": "...", "props": "kSlice = 5"}`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sceneio.Load(args[0])
			if err != nil {
				return err
			}
			sess, _, err := replay.NewSession(s, c.Logger)
			if err != nil {
				return err
			}
			defer sess.Close()

			srv := &http.Server{
				Addr:              addr,
				Handler:           newInspector(sess, c.Logger),
				ReadHeaderTimeout: 5 * time.Second,
			}
			printInfo(cmd.OutOrStdout(), "Serving %s on http://%s", args[0], addr)
			return listen(cmd.Context(), srv, c.Logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	return cmd
}

// listen runs srv until ctx ends, then shuts it down.
func listen(ctx context.Context, srv *http.Server, logger *log.Logger) error {
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// =============================================================================
// Inspector
// =============================================================================

// inspector serves one session. Requests are serialized because a session
// is single-threaded.
type inspector struct {
	mu     sync.Mutex
	sess   *replay.Session
	logger *log.Logger
}

func newInspector(sess *replay.Session, logger *log.Logger) http.Handler {
	in := &inspector{sess: sess, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(in.logRequests)

	r.Get("/snapshot", in.snapshot)
	r.Get("/views/{id}", in.view)
	r.Post("/frames/next", in.next)
	r.Post("/frames/reset", in.reset)
	r.Post("/apply", in.apply)
	return r
}

func (in *inspector) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		in.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", ww.Status(), "duration", time.Since(start))
	})
}

func (in *inspector) snapshot(w http.ResponseWriter, r *http.Request) {
	in.mu.Lock()
	defer in.mu.Unlock()
	writeJSON(w, http.StatusOK, in.sess.Snapshot())
}

// viewResponse is a view with the nodes mounted below it.
type viewResponse struct {
	ID              string         `json:"id"`
	Path            string         `json:"path"`
	Actors          int            `json:"actors"`
	Background      [3]float64     `json:"background"`
	Representations []inspect.Node `json:"representations"`
}

func (in *inspector) view(w http.ResponseWriter, r *http.Request) {
	in.mu.Lock()
	defer in.mu.Unlock()

	id := chi.URLParam(r, "id")
	snap := in.sess.Snapshot()
	v, ok := snap.View(id)
	if !ok {
		writeError(w, scerrors.New(scerrors.ErrCodeNotFound, "view %q not found", id))
		return
	}
	resp := viewResponse{ID: v.ID, Path: v.Path, Actors: v.Actors, Background: v.Background}
	for _, n := range snap.Representations() {
		if parent, _ := n.Parent(); parent == v.Path {
			resp.Representations = append(resp.Representations, n)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (in *inspector) next(w http.ResponseWriter, r *http.Request) {
	in.mu.Lock()
	defer in.mu.Unlock()

	fr, ok, err := in.sess.Step()
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusConflict, errorResponse{Code: "NO_FRAMES", Error: "every frame has been applied"})
		return
	}
	writeJSON(w, http.StatusOK, fr)
}

func (in *inspector) reset(w http.ResponseWriter, r *http.Request) {
	in.mu.Lock()
	defer in.mu.Unlock()

	fr, err := in.sess.Reset()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fr)
}

// applyRequest is the body of POST /apply.
type applyRequest struct {
	Target string `json:"target"`
	Props  string `json:"props"`
}

func (in *inspector) apply(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, scerrors.Wrap(scerrors.ErrCodeInvalidInput, err, "decode request"))
		return
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	fr, err := in.sess.Apply(req.Target, req.Props)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fr)
}

// =============================================================================
// Responses
// =============================================================================

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps error codes to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	code := scerrors.GetCode(err)
	if code == "" {
		code = scerrors.ErrCodeInternal
	}
	status := http.StatusInternalServerError
	switch code {
	case scerrors.ErrCodeNotFound:
		status = http.StatusNotFound
	case scerrors.ErrCodeInvalidInput, scerrors.ErrCodeConfiguration:
		status = http.StatusBadRequest
	}
	writeJSON(w, status, errorResponse{Code: string(code), Error: scerrors.UserMessage(err)})
}
