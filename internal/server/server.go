package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"guestpost-checkout/internal/checkout"
	"guestpost-checkout/internal/config"
)

// CHECKOUT JSON SURFACE
//
// A thin contract for the (external) front end: one controller per session
// id, operations mapped 1:1 onto controller methods. Rendering, styling and
// localization stay on the other side of this boundary.

type Server struct {
	baseCtx  context.Context
	cfg      *config.Config
	api      checkout.MarketplaceAPI
	state    checkout.PersistedState
	journal  checkout.Journal
	operator checkout.OperatorNotifier
	logger   *zap.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

// session pairs a controller with its toast and redirect sinks. Toasts are
// drained by the next status read.
type session struct {
	ctrl   *checkout.Controller
	toasts *toastBox
	nav    *redirectBox
}

func New(
	baseCtx context.Context,
	cfg *config.Config,
	apiClient checkout.MarketplaceAPI,
	state checkout.PersistedState,
	journal checkout.Journal,
	operator checkout.OperatorNotifier,
	logger *zap.Logger,
) *Server {
	return &Server{
		baseCtx:  baseCtx,
		cfg:      cfg,
		api:      apiClient,
		state:    state,
		journal:  journal,
		operator: operator,
		logger:   logger,
		sessions: make(map[string]*session),
	}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api/checkout").Subrouter()

	api.HandleFunc("/sessions", s.handleCreateSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{id}/proceed", s.handleProceed).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/back", s.handleBack).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/profile", s.handleSaveProfile).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/country", s.handleSelectCountry).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/calling-code", s.handleSelectCallingCode).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/complete", s.handleCompletePurchase).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/payment/resume", s.handleResumePayment).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/popup/close", s.handleClosePopup).Methods(http.MethodPost)

	return r
}

// Run serves the checkout surface until ctx is cancelled, then drains open
// sessions.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.ListenAddr,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)

		s.mu.Lock()
		for _, sess := range s.sessions {
			sess.ctrl.Teardown()
		}
		s.mu.Unlock()
		return nil

	case err := <-errCh:
		return err
	}
}

func (s *Server) newController(token, userID string) *session {
	toasts := &toastBox{}
	nav := &redirectBox{}

	ctrl := checkout.NewController(s.baseCtx, checkout.ControllerConfig{
		API:                s.api,
		State:              s.state,
		Journal:            s.journal,
		Notifier:           toasts,
		Navigator:          nav,
		Operator:           s.operator,
		Logger:             s.logger,
		PollInterval:       s.cfg.PollInterval,
		InitialLoadingDamp: s.cfg.InitialLoadingDamp,
		AuthRedirectDelay:  s.cfg.AuthRedirectDelay,
		SignInRoute:        s.cfg.SignInRoute,
		OrderConfirmRoute:  s.cfg.OrderConfirmRoute,
	}, token, userID)

	return &session{ctrl: ctrl, toasts: toasts, nav: nav}
}

func (s *Server) session(id string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// toastBox collects user-visible notifications until the next status read.
type toastBox struct {
	mu     sync.Mutex
	toasts []Toast
}

type Toast struct {
	Level string `json:"level"`
	Code  string `json:"code"`
}

func (t *toastBox) Success(code string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.toasts = append(t.toasts, Toast{Level: "success", Code: code})
}

func (t *toastBox) Error(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.toasts = append(t.toasts, Toast{Level: "error", Code: checkout.CodeOf(err)})
}

func (t *toastBox) Drain() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.toasts
	t.toasts = nil
	return out
}

// redirectBox records the latest navigation request for the front end to
// follow.
type redirectBox struct {
	mu    sync.Mutex
	route string
}

func (r *redirectBox) NavigateTo(route string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.route = route
}

func (r *redirectBox) Route() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.route
}
