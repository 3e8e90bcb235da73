package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/couchcryptid/flood-area-service/internal/domain"
	"github.com/couchcryptid/flood-area-service/internal/pipeline"
	"github.com/couchcryptid/flood-area-service/internal/session"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 64 << 10

type searchRequest struct {
	Query string `json:"query"`
}

type selectRequest struct {
	RadiusMiles float64 `json:"radius_miles"`
}

type selectionRequest struct {
	Checked []string          `json:"checked"`
	Single  domain.SingleArea `json:"single"`
}

type areaView struct {
	domain.FloodArea
	Summary string `json:"summary"`
}

type selectionView struct {
	Place       domain.Place         `json:"place"`
	RadiusMiles float64              `json:"radius_miles,omitempty"`
	CutoffMiles float64              `json:"cutoff_miles,omitempty"`
	Warnings    []areaView           `json:"warning_areas"`
	Alerts      []areaView           `json:"alert_areas"`
	Failed      []domain.AreaFailure `json:"failed,omitempty"`
	Partial     bool                 `json:"partial"`
}

type sessionView struct {
	ID            string                 `json:"id"`
	Profile       string                 `json:"profile"`
	LastSearch    *domain.PlaceSearch    `json:"last_search,omitempty"`
	Selection     *selectionView         `json:"selection,omitempty"`
	Subscriptions domain.SubscriptionSet `json:"subscriptions"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

type subscriptionsView struct {
	AreaIDs  domain.SubscriptionSet `json:"area_ids"`
	Warnings []string               `json:"warning_area_ids"`
	Alerts   []string               `json:"alert_area_ids"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.journey.CreateSession(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusCreated, s.sessionView(sess))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.journey.Session(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, s.sessionView(sess))
}

func (s *Server) handleSearchPlaces(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	var search domain.PlaceSearch
	err := s.journey.WithSession(r.Context(), chi.URLParam(r, "sessionID"), func(sess *session.Session) error {
		var err error
		search, err = s.journey.ResolvePlace(r.Context(), sess, req.Query)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, search)
}

func (s *Server) handleSelectPlace(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	var sel session.Selection
	err := s.journey.WithSession(r.Context(), chi.URLParam(r, "sessionID"), func(sess *session.Session) error {
		var err error
		sel, err = s.journey.SelectPlace(r.Context(), sess, chi.URLParam(r, "placeID"), req.RadiusMiles)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, newSelectionView(sel))
}

func (s *Server) handleGetSubscriptions(w http.ResponseWriter, r *http.Request) {
	sess, err := s.journey.Session(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, s.subscriptionsView(sess.Subscriptions))
}

func (s *Server) handleApplySelection(action domain.SubscriptionAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req selectionRequest
		if err := decodeBody(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		s.updateSubscriptions(w, r, pipeline.Update{
			Action:  action,
			Checked: req.Checked,
			Single:  req.Single,
		})
	}
}

func (s *Server) handleRemoveSubscription(w http.ResponseWriter, r *http.Request) {
	s.updateSubscriptions(w, r, pipeline.Update{
		Action: domain.ActionRemove,
		AreaID: chi.URLParam(r, "areaID"),
	})
}

func (s *Server) updateSubscriptions(w http.ResponseWriter, r *http.Request, u pipeline.Update) {
	var set domain.SubscriptionSet
	err := s.journey.WithSession(r.Context(), chi.URLParam(r, "sessionID"), func(sess *session.Session) error {
		var err error
		set, err = s.journey.UpdateSubscription(r.Context(), sess, u)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, s.subscriptionsView(set))
}

func (s *Server) sessionView(sess *session.Session) sessionView {
	v := sessionView{
		ID:            sess.ID,
		Profile:       s.journey.Policy().Name,
		LastSearch:    sess.LastSearch,
		Subscriptions: sess.Subscriptions,
		CreatedAt:     sess.CreatedAt,
		UpdatedAt:     sess.UpdatedAt,
	}
	if sess.Selection != nil {
		sel := newSelectionView(*sess.Selection)
		v.Selection = &sel
	}
	return v
}

func (s *Server) subscriptionsView(set domain.SubscriptionSet) subscriptionsView {
	scheme := s.journey.Policy().Scheme
	return subscriptionsView{
		AreaIDs:  set,
		Warnings: nonNil(set.InCategory(scheme, domain.CategoryWarning)),
		Alerts:   nonNil(set.InCategory(scheme, domain.CategoryAlert)),
	}
}

func newSelectionView(sel session.Selection) selectionView {
	c := sel.Classification
	return selectionView{
		Place:       sel.Place,
		RadiusMiles: sel.RadiusMiles,
		CutoffMiles: sel.CutoffMiles,
		Warnings:    areaViews(c.Warnings, sel),
		Alerts:      areaViews(c.Alerts, sel),
		Failed:      c.Failed,
		Partial:     c.Partial(),
	}
}

func areaViews(areas []domain.FloodArea, sel session.Selection) []areaView {
	out := make([]areaView, 0, len(areas))
	for _, a := range areas {
		out = append(out, areaView{FloodArea: a, Summary: a.Summary(sel.Place.Name, sel.CutoffMiles)})
	}
	return out
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

// decodeBody reads an optional JSON body into dst. An empty body leaves dst
// untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("malformed request body: %v: %w", err, domain.ErrInvalidInput)
	}
	return nil
}
