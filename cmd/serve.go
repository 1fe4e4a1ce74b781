package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tribly-hq/dashboard-cli/internal/apierr"
	"github.com/tribly-hq/dashboard-cli/internal/gbpauth"
	"github.com/tribly-hq/dashboard-cli/internal/model"
	"github.com/tribly-hq/dashboard-cli/internal/report"
	"github.com/tribly-hq/dashboard-cli/internal/store"
	"github.com/tribly-hq/dashboard-cli/pkg/tribly"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard API locally",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initApp(ctx, "serve")
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env.Client, env.Store, env.Builder, cfg.App.BaseURL),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// newRouter assembles the API surface. The handlers proxy the backend
// through the same client and classifier the CLI commands use, so a
// local dashboard frontend sees identical reports.
func newRouter(client tribly.Client, st store.Store, builder *report.Builder, appBaseURL string) http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/report/{placeID}", func(w http.ResponseWriter, req *http.Request) {
			rep, err := builder.Build(req.Context(), chi.URLParam(req, "placeID"))
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, rep)
		})

		r.Get("/businesses", func(w http.ResponseWriter, req *http.Request) {
			q := req.URL.Query()
			page, err := client.OnboardedBusinesses(req.Context(), model.BusinessFilter{
				Search:       q.Get("search"),
				Category:     q.Get("category"),
				StatusFilter: q.Get("status_filter"),
				City:         q.Get("city"),
				Area:         q.Get("area"),
				OnboardedBy:  q.Get("onboarded_by"),
				Page:         atoiOr(q.Get("page"), 1),
				PageSize:     atoiOr(q.Get("page_size"), 50),
			})
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, page)
		})

		r.Post("/auth-sessions", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				BusinessName  string `json:"business_name"`
				BusinessPhone string `json:"business_phone"`
				PlaceID       string `json:"place_id"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
				return
			}
			if body.BusinessName == "" || body.BusinessPhone == "" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"message": "business_name and business_phone are required"})
				return
			}

			b := gbpauth.Business{Name: body.BusinessName, Phone: body.BusinessPhone, PlaceID: body.PlaceID}
			sessionID, err := client.CreateAuthSession(req.Context(), tribly.CreateAuthSessionRequest{
				BusinessName:  b.Name,
				BusinessPhone: b.Phone,
				PlaceID:       b.PlaceID,
			})
			if err != nil {
				writeError(w, err)
				return
			}
			if err := st.SaveAuthSession(req.Context(), b.Key(), sessionID); err != nil {
				writeError(w, err)
				return
			}

			link := gbpauth.WhatsAppLink(b.Phone, b.Name, gbpauth.AuthLink(appBaseURL, sessionID, b.Name))
			writeJSON(w, http.StatusCreated, map[string]string{
				"session_id":    sessionID,
				"whatsapp_link": link,
			})
		})

		r.Get("/auth-sessions/{sessionID}/status", func(w http.ResponseWriter, req *http.Request) {
			session, err := client.AuthSessionStatus(req.Context(), chi.URLParam(req, "sessionID"))
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, session)
		})

		r.Post("/businesses/{businessKey}/action-items/{itemID}/done", func(w http.ResponseWriter, req *http.Request) {
			err := st.MarkActionItemDone(req.Context(), chi.URLParam(req, "businessKey"), chi.URLParam(req, "itemID"))
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusNoContent, nil)
		})

		r.Delete("/businesses/{businessKey}/action-items/{itemID}/done", func(w http.ResponseWriter, req *http.Request) {
			err := st.UndoActionItemDone(req.Context(), chi.URLParam(req, "businessKey"), chi.URLParam(req, "itemID"))
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusNoContent, nil)
		})
	})

	return r
}

// requestID tags every request with a uuid for log correlation.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		zap.L().Debug("request",
			zap.String("request_id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v) //nolint:errcheck
	}
}

// writeError maps backend errors onto the local API: structured API
// errors keep their status and message, everything else is a 502.
func writeError(w http.ResponseWriter, err error) {
	if apiErr, ok := apierr.AsAPIError(err); ok {
		writeJSON(w, apiErr.StatusCode, map[string]string{"message": apiErr.Message})
		return
	}
	zap.L().Error("handler error", zap.Error(err))
	writeJSON(w, http.StatusBadGateway, map[string]string{"message": "upstream request failed"})
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil || n < 1 {
		return def
	}
	return n
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
