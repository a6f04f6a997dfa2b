package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"guestpost-checkout/internal/checkout"
)

type createSessionRequest struct {
	AuthToken   string   `json:"auth_token"`
	UserID      string   `json:"user_id"`
	DisplayName string   `json:"display_name"`
	CartIDs     []string `json:"cart_ids"`
}

// contentPayload is the wire form of both step-1 variants.
type contentPayload struct {
	Option      string `json:"option"`
	Notes       string `json:"notes"`
	AnchorLink  string `json:"anchor_link"`
	BackupEmail string `json:"backup_email"`
	FileMode    string `json:"file_mode"`
	FileName    string `json:"file_name"`
	FileData    []byte `json:"file_data"`
	FileURL     string `json:"file_url"`
	Topic       string `json:"topic"`
	Anchor      string `json:"anchor"`
	WordCount   int    `json:"word_count"`
	Currency    string `json:"currency"`
	Network     string `json:"network"`
}

func (p contentPayload) toContentRequest() checkout.ContentRequest {
	if p.Option == checkout.ContentPublisher {
		return checkout.PublisherContent{
			Topic:       p.Topic,
			Anchor:      p.Anchor,
			AnchorLink:  p.AnchorLink,
			BackupEmail: p.BackupEmail,
			WordCount:   p.WordCount,
		}
	}
	return checkout.ClientContent{
		Notes:       p.Notes,
		AnchorLink:  p.AnchorLink,
		BackupEmail: p.BackupEmail,
		FileMode:    p.FileMode,
		FileName:    p.FileName,
		FileData:    p.FileData,
		FileURL:     p.FileURL,
	}
}

type sessionView struct {
	Session  checkout.Session `json:"session"`
	Toasts   []Toast          `json:"toasts"`
	Redirect string           `json:"redirect,omitempty"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	sess := s.newController(req.AuthToken, req.UserID)
	sess.ctrl.Mount(r.Context(), req.DisplayName, req.CartIDs)

	view := s.view(sess)

	s.mu.Lock()
	s.sessions[view.Session.ID] = sess
	s.mu.Unlock()

	s.logger.Info("Checkout session created",
		zap.String("session_id", view.Session.ID),
		zap.String("user_id", req.UserID),
		zap.Int("cart_ids", len(req.CartIDs)))

	s.writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(mux.Vars(r)["id"])
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, s.view(sess))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		sess.ctrl.Teardown()
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleProceed(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(mux.Vars(r)["id"])
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	var payload contentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	// Validation failures surface as toasts in the view; the step does not
	// advance.
	_ = sess.ctrl.Proceed(payload.toContentRequest())
	s.writeJSON(w, http.StatusOK, s.view(sess))
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(mux.Vars(r)["id"])
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	sess.ctrl.Back()
	s.writeJSON(w, http.StatusOK, s.view(sess))
}

func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(mux.Vars(r)["id"])
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	var info checkout.PersonalInfo
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	_ = sess.ctrl.SaveProfile(r.Context(), info)
	s.writeJSON(w, http.StatusOK, s.view(sess))
}

func (s *Server) handleSelectCountry(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(mux.Vars(r)["id"])
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	var req struct {
		Country string `json:"country"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	sess.ctrl.SelectCountry(r.Context(), req.Country)
	s.writeJSON(w, http.StatusOK, s.view(sess))
}

func (s *Server) handleSelectCallingCode(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(mux.Vars(r)["id"])
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	sess.ctrl.SelectCallingCode(r.Context(), req.Code)
	s.writeJSON(w, http.StatusOK, s.view(sess))
}

func (s *Server) handleCompletePurchase(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(mux.Vars(r)["id"])
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	var payload contentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	// Submission errors are surfaced as toasts; the session stays
	// recoverable so the front end can retry.
	_ = sess.ctrl.CompletePurchase(r.Context(), payload.toContentRequest(), payload.Currency, payload.Network)
	s.writeJSON(w, http.StatusOK, s.view(sess))
}

func (s *Server) handleResumePayment(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(mux.Vars(r)["id"])
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	resumed := sess.ctrl.ResumePayment(r.Context())
	if !resumed {
		http.Error(w, "no payment to resume", http.StatusConflict)
		return
	}
	s.writeJSON(w, http.StatusOK, s.view(sess))
}

func (s *Server) handleClosePopup(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(mux.Vars(r)["id"])
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	sess.ctrl.ClosePopup()
	s.writeJSON(w, http.StatusOK, s.view(sess))
}

func (s *Server) view(sess *session) sessionView {
	return sessionView{
		Session:  sess.ctrl.Session(),
		Toasts:   sess.toasts.Drain(),
		Redirect: sess.nav.Route(),
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}
