package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/CaiJingLong/Tally/internal/config"
	"github.com/CaiJingLong/Tally/internal/dates"
	"github.com/CaiJingLong/Tally/internal/locale"
	"github.com/CaiJingLong/Tally/internal/resource"
	"github.com/CaiJingLong/Tally/internal/search"
)

// resourceView is a summary decorated with labels in the caller's language.
type resourceView struct {
	resource.Summary
	ExpiryDisplay  string `json:"expiry_display"`
	RemainingLabel string `json:"remaining_label"`
}

type resourcesResponse struct {
	Total     int            `json:"total"`
	Resources []resourceView `json:"resources"`
}

type groupsResponse struct {
	Groups []string `json:"groups"`
}

type parseResponse struct {
	Input   string `json:"input"`
	Date    string `json:"date"`
	Display string `json:"display"`
	Unix    int64  `json:"unix"`
}

type errorResponse struct {
	Error string `json:"error"`
	Input string `json:"input,omitempty"`
}

// localizer picks the language from ?lang= first, then Accept-Language.
func (s *CalendarServer) localizer(r *http.Request) *locale.Localizer {
	if s.Catalog == nil {
		return nil
	}
	return s.Catalog.For(r.URL.Query().Get(config.QueryParamLang), r.Header.Get(config.HeaderAcceptLanguage))
}

// snapshot returns the latest resources, or false before the first sync.
func (s *CalendarServer) snapshot(w http.ResponseWriter) ([]resource.Summary, bool) {
	list := s.resources.Load()
	if list == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: config.HTTPMsgInitializing})
		return nil, false
	}
	return *list, true
}

// handleResources filters the snapshot with the search query.
// An unusable pattern yields an empty list, never an error.
func (s *CalendarServer) handleResources(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode, err := search.ParseMode(q.Get(config.QueryParamMode))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: config.HTTPMsgBadMode, Input: q.Get(config.QueryParamMode)})
		return
	}

	list, ok := s.snapshot(w)
	if !ok {
		return
	}
	s.Metrics.IncSearch(mode.String())

	matched := search.Filter(list, search.Query{Pattern: q.Get(config.QueryParamQ), Mode: mode}, q.Get(config.QueryParamGroup))

	loc := s.localizer(r)
	views := make([]resourceView, 0, len(matched))
	for _, m := range matched {
		views = append(views, resourceView{
			Summary:        m,
			ExpiryDisplay:  dates.Display(m.ExpiryDate, loc.Lang()),
			RemainingLabel: loc.RemainingDays(m.RemainingDays),
		})
	}
	writeJSON(w, http.StatusOK, resourcesResponse{Total: len(views), Resources: views})
}

func (s *CalendarServer) handleGroups(w http.ResponseWriter, r *http.Request) {
	list, ok := s.snapshot(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, groupsResponse{Groups: resource.Groups(list)})
}

// handleParseDate turns free text into a canonical date, or answers 422
// with a hint in the caller's language.
func (s *CalendarServer) handleParseDate(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get(config.QueryParamText)
	loc := s.localizer(r)

	d, err := dates.Parse(text)
	s.Metrics.IncDateParse(err == nil)
	if err != nil {
		hint := config.TKeyErrDateFormat
		if errors.Is(err, dates.ErrEmpty) {
			hint = config.TKeyErrDateEmpty
		}
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: loc.Msg(hint), Input: text})
		return
	}

	writeJSON(w, http.StatusOK, parseResponse{
		Input:   text,
		Date:    dates.Canonical(d),
		Display: dates.Display(d, loc.Lang()),
		Unix:    d.Unix(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}
