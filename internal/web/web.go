// Package web exposes the rendered agenda and its geometry over HTTP:
// an SVG page the capture step screenshots, a JSON view of the slot and
// semantics lists, and hit-testing for the pointer bridge.
package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"agendacal/internal/agenda"
	"agendacal/internal/battery"
	"agendacal/internal/config"
	"agendacal/internal/ics"
	"agendacal/internal/l10n"
	appLog "agendacal/internal/log"
	"agendacal/internal/model"
	"agendacal/internal/render"
)

// Server provides the HTTP API and the agenda pages.
type Server struct {
	cfg   *config.Config
	debug bool
	mux   *http.ServeMux

	// viewMu serializes access to the layout engine and semantics owner;
	// both are single-goroutine state per the agenda core's contract.
	viewMu    sync.Mutex
	engine    *agenda.Engine
	semantics *agenda.Semantics

	// occMu guards the occurrence cache, which avoids repeating the ICS
	// fetch/parse/expand work on every HTTP request.
	occMu    sync.Mutex
	occCache *occurrenceCache

	// batteryMu guards the battery status cache so I2C (or the mock) is
	// not hit on every call.
	batteryMu    sync.RWMutex
	batteryCache *batteryCache
}

type occurrenceCache struct {
	occurrences []model.Occurrence
	updatedAt   time.Time
}

type batteryCache struct {
	status    battery.Status
	updatedAt time.Time
}

// NewServer constructs a Server.
func NewServer(cfg *config.Config, debug bool) *Server {
	s := &Server{
		cfg:       cfg,
		debug:     debug,
		mux:       http.NewServeMux(),
		engine:    agenda.NewEngine(),
		semantics: agenda.NewSemantics(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the http.Handler, wrapped with basic auth when
// configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// StartServer starts an HTTP server bound to cfg.Listen.
func StartServer(_ context.Context, cfg *config.Config, debug bool) error {
	s := NewServer(cfg, debug)
	appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen, "debug", debug)
	return http.ListenAndServe(cfg.Listen, s.Handler())
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty username or password counts as disabled.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware protects all handlers except /health.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="AgendaCal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/agenda", s.handleAgendaJSON)
	s.mux.HandleFunc("/api/hit", s.handleHit)
	s.mux.HandleFunc("/api/battery", s.handleBattery)
	s.mux.HandleFunc("/agenda", s.handleAgendaPage)
	s.mux.HandleFunc("/agenda.svg", s.handleAgendaSVG)
	s.mux.HandleFunc("/preview.png", s.handlePreview)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// layoutConfig builds the per-pass layout configuration from the
// application config.
func (s *Server) layoutConfig() agenda.LayoutConfig {
	a := s.cfg.Agenda
	return agenda.LayoutConfig{
		Width:            a.Width,
		Height:           a.Height,
		TextScale:        a.TextScale,
		TimedItemHeight:  a.TimedItemHeight,
		AllDayItemHeight: a.AllDayItemHeight,
		TimeLabelWidth:   a.TimeLabelWidth,
		SubjectFontSize:  a.SubjectFontSize,
		TimeFontSize:     a.TimeFontSize,
		Locale:           s.cfg.Locale,
		TimeFormat:       a.TimeFormat,
	}
}

// selectedDate parses the ?date=YYYY-MM-DD query parameter in the display
// timezone; missing parameter means today, an explicit "none" means no
// selection (exercises the informational path).
func (s *Server) selectedDate(r *http.Request) (time.Time, error) {
	loc := resolveLocationOrLocal(s.cfg.Timezone)
	raw := r.URL.Query().Get("date")
	switch raw {
	case "":
		now := time.Now().In(loc)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc), nil
	case "none":
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", raw, err)
	}
	return t, nil
}

// appointmentsFor assembles the appointment list for one day, going
// through the TTL'd occurrence cache.
func (s *Server) appointmentsFor(ctx context.Context, selectedDate time.Time) ([]model.Appointment, error) {
	if selectedDate.IsZero() {
		return nil, nil
	}
	occs, err := s.occurrences(ctx, selectedDate)
	if err != nil {
		return nil, err
	}

	colors := make(map[string]string, len(s.cfg.ICS))
	for _, src := range s.cfg.ICS {
		colors[sourceID(src)] = src.Color
	}

	filter := ics.DayFilter{
		Colors:            colors,
		HighlightKeywords: s.cfg.HighlightRed,
		ShowAllDay:        s.cfg.ShowAllDay,
	}
	return filter.AppointmentsForDay(occs, selectedDate), nil
}

// occurrences fetches, parses and expands the configured feeds around the
// selected date, caching the result briefly.
func (s *Server) occurrences(ctx context.Context, around time.Time) ([]model.Occurrence, error) {
	const cacheTTL = 30 * time.Second

	s.occMu.Lock()
	defer s.occMu.Unlock()
	if s.occCache != nil && time.Since(s.occCache.updatedAt) < cacheTTL {
		return s.occCache.occurrences, nil
	}

	sources := make([]ics.Source, 0, len(s.cfg.ICS))
	for _, csrc := range s.cfg.ICS {
		if csrc.URL == "" {
			continue
		}
		sources = append(sources, ics.Source{
			ID:    sourceID(csrc),
			URL:   csrc.URL,
			Color: csrc.Color,
		})
	}
	if len(sources) == 0 {
		return nil, nil
	}

	cacheDir := "/var/lib/agendacal/ics-cache"
	if s.debug {
		cacheDir = "./cache/ics-cache"
	}
	fetcher := ics.NewFetcher(cacheDir)

	results, fetchErrs := fetcher.FetchAll(ctx, sources)
	if len(fetchErrs) > 0 {
		appLog.Error("one or more ICS fetches failed", errorsAggregate(fetchErrs), "error_count", len(fetchErrs))
	}

	parsed := make([]ics.ParsedEvent, 0)
	for _, res := range results {
		events, err := ics.ParseICS(res.Source, res.Body)
		if err != nil {
			appLog.Error("parse failed for source", err, "id", res.Source.ID)
			continue
		}
		parsed = append(parsed, events...)
	}

	loc := resolveLocationOrLocal(s.cfg.Timezone)
	expanded, err := ics.ExpandOccurrences(parsed, ics.ExpandConfig{
		DisplayLocation: loc,
		RangeStart:      around.AddDate(0, 0, -1),
		RangeEnd:        around.AddDate(0, 0, 2),
	})
	if err != nil {
		return nil, err
	}

	s.occCache = &occurrenceCache{
		occurrences: expanded.Occurrences,
		updatedAt:   time.Now(),
	}
	return expanded.Occurrences, nil
}

// slotDTO / nodeDTO are the JSON shapes for /api/agenda.
type slotDTO struct {
	Rect      agenda.RoundedRect `json:"rect"`
	Subject   string             `json:"subject"`
	Start     time.Time          `json:"start"`
	End       time.Time          `json:"end"`
	AllDay    bool               `json:"all_day"`
	Spanned   bool               `json:"spanned"`
	Recurring bool               `json:"recurring"`
	Color     string             `json:"color"`
	SourceID  string             `json:"source_id"`
	UID       string             `json:"uid"`
}

type nodeDTO struct {
	ID        int                `json:"id"`
	Rect      agenda.RoundedRect `json:"rect"`
	Label     string             `json:"label"`
	Direction string             `json:"direction"`
}

type agendaResponse struct {
	SelectedDate string    `json:"selected_date,omitempty"`
	Slots        []slotDTO `json:"slots"`
	Semantics    []nodeDTO `json:"semantics"`
}

// handleAgendaJSON returns the computed slot rectangles and the derived
// accessibility nodes for a date.
//
// GET /api/agenda?date=2024-05-01 (date defaults to today; "none" forces
// the no-selection state).
func (s *Server) handleAgendaJSON(w http.ResponseWriter, r *http.Request) {
	selected, err := s.selectedDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	appointments, err := s.appointmentsFor(r.Context(), selected)
	if err != nil {
		appLog.Error("agenda assembly failed", err)
		writeError(w, http.StatusInternalServerError, "failed to assemble agenda")
		return
	}

	cfg := s.layoutConfig()

	s.viewMu.Lock()
	slots := s.engine.ComputeSlots(appointments, selected, cfg)
	nodes := s.semantics.Rebuild(slots, selected, cfg,
		l10n.Describe(s.cfg.Locale),
		l10n.InfoLabel(s.cfg.Locale, selected),
		l10n.Direction(s.cfg.Locale))

	resp := agendaResponse{
		Slots:     make([]slotDTO, 0, len(slots)),
		Semantics: make([]nodeDTO, 0, len(nodes)),
	}
	if !selected.IsZero() {
		resp.SelectedDate = selected.Format("2006-01-02")
	}
	for _, slot := range slots {
		a := slot.Appointment
		resp.Slots = append(resp.Slots, slotDTO{
			Rect:      *slot.Rect,
			Subject:   a.Subject,
			Start:     a.Start,
			End:       a.End,
			AllDay:    a.AllDay,
			Spanned:   a.IsSpanned(),
			Recurring: a.ShowsRecurrenceGlyph(),
			Color:     a.Color,
			SourceID:  a.SourceID,
			UID:       a.UID,
		})
	}
	for _, n := range nodes {
		dir := "ltr"
		if n.Direction == agenda.DirectionRTL {
			dir = "rtl"
		}
		resp.Semantics = append(resp.Semantics, nodeDTO{
			ID:        n.Handle.ID(),
			Rect:      n.Rect,
			Label:     n.Label,
			Direction: dir,
		})
	}
	s.viewMu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

// handleHit resolves a surface point to the slot under it.
//
// GET /api/hit?x=12&y=80&date=2024-05-01 → the slot DTO, or 204 when the
// point falls outside every slot rectangle.
func (s *Server) handleHit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	x, errX := strconv.ParseFloat(q.Get("x"), 64)
	y, errY := strconv.ParseFloat(q.Get("y"), 64)
	if errX != nil || errY != nil {
		writeError(w, http.StatusBadRequest, "x and y query parameters are required")
		return
	}
	selected, err := s.selectedDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	appointments, err := s.appointmentsFor(r.Context(), selected)
	if err != nil {
		appLog.Error("agenda assembly failed", err)
		writeError(w, http.StatusInternalServerError, "failed to assemble agenda")
		return
	}

	s.viewMu.Lock()
	slots := s.engine.ComputeSlots(appointments, selected, s.layoutConfig())
	hit := agenda.SlotAt(slots, x, y)
	var dto *slotDTO
	if hit != nil {
		a := hit.Appointment
		dto = &slotDTO{
			Rect:      *hit.Rect,
			Subject:   a.Subject,
			Start:     a.Start,
			End:       a.End,
			AllDay:    a.AllDay,
			Spanned:   a.IsSpanned(),
			Recurring: a.ShowsRecurrenceGlyph(),
			Color:     a.Color,
			SourceID:  a.SourceID,
			UID:       a.UID,
		}
	}
	s.viewMu.Unlock()

	if dto == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// renderSVGFor computes the agenda and renders it to SVG.
func (s *Server) renderSVGFor(ctx context.Context, selected time.Time) (string, error) {
	appointments, err := s.appointmentsFor(ctx, selected)
	if err != nil {
		return "", err
	}

	cfg := s.layoutConfig()
	s.viewMu.Lock()
	slots := s.engine.ComputeSlots(appointments, selected, cfg)
	svg := render.New(cfg).RenderSVG(slots, selected)
	s.viewMu.Unlock()
	return svg, nil
}

// handleAgendaSVG serves the raw SVG document.
func (s *Server) handleAgendaSVG(w http.ResponseWriter, r *http.Request) {
	selected, err := s.selectedDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	svg, err := s.renderSVGFor(r.Context(), selected)
	if err != nil {
		appLog.Error("agenda render failed", err)
		writeError(w, http.StatusInternalServerError, "failed to render agenda")
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(svg))
}

// handleAgendaPage wraps the SVG in a minimal HTML page. The capture step
// waits for the data-ready attribute before taking the screenshot.
func (s *Server) handleAgendaPage(w http.ResponseWriter, r *http.Request) {
	selected, err := s.selectedDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	svg, err := s.renderSVGFor(r.Context(), selected)
	if err != nil {
		appLog.Error("agenda render failed", err)
		writeError(w, http.StatusInternalServerError, "failed to render agenda")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `<!DOCTYPE html>
<html><head><meta charset="utf-8"><style>body{margin:0}</style></head>
<body><div data-ready="true">%s</div></body></html>
`, svg)
}

// handlePreview serves the last captured PNG from disk. Path rules match
// cmd/agendacal: /var/lib/agendacal/preview.png, ./cache/preview.png in
// debug mode.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	previewPath := "/var/lib/agendacal/preview.png"
	if s.debug {
		previewPath = "./cache/preview.png"
	}
	http.ServeFile(w, r, previewPath)
}

// handleBattery exposes the cached battery status for the Web UI.
func (s *Server) handleBattery(w http.ResponseWriter, r *http.Request) {
	const batteryCacheTTL = 30 * time.Second

	s.batteryMu.RLock()
	bc := s.batteryCache
	s.batteryMu.RUnlock()
	if bc != nil && time.Since(bc.updatedAt) < batteryCacheTTL {
		writeJSON(w, http.StatusOK, bc.status)
		return
	}

	br := battery.DefaultReader()
	status, err := br.Read(r.Context())
	if err != nil {
		appLog.Error("battery read failed", err)
		writeError(w, http.StatusInternalServerError, "failed to read battery")
		return
	}

	s.batteryMu.Lock()
	s.batteryCache = &batteryCache{status: status, updatedAt: time.Now()}
	s.batteryMu.Unlock()

	writeJSON(w, http.StatusOK, status)
}

func sourceID(src config.ICSConfig) string {
	if src.ID != "" {
		return src.ID
	}
	if src.Name != "" {
		return src.Name
	}
	return src.URL
}

func resolveLocationOrLocal(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", name)
		return time.Local
	}
	return loc
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}

// errorsAggregate joins multiple errors into one for logging.
func errorsAggregate(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	var b strings.Builder
	for i, e := range errs {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(e.Error())
	}
	return errors.New(b.String())
}
