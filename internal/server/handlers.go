package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"MarketExplorer/internal/collector"
	"MarketExplorer/internal/export"
	"MarketExplorer/internal/filter"
	"MarketExplorer/internal/model"
	"MarketExplorer/internal/report"
	"MarketExplorer/internal/store"
	"MarketExplorer/internal/strategy"

	"github.com/gin-gonic/gin"
)

// stateView is State without the snapshot payload.
type stateView struct {
	Instrument  string       `json:"instrument"`
	Live        bool         `json:"live"`
	Loading     bool         `json:"loading"`
	Error       string       `json:"error,omitempty"`
	Retryable   bool         `json:"retryable,omitempty"`
	Version     uint64       `json:"version"`
	Source      model.Source `json:"source,omitempty"`
	RequestID   string       `json:"requestId,omitempty"`
	Days        int          `json:"days"`
	GeneratedAt *time.Time   `json:"generatedAt,omitempty"`
}

func viewOf(st store.State) stateView {
	v := stateView{
		Instrument: st.Instrument,
		Live:       st.Live,
		Loading:    st.Loading,
		Error:      st.Error,
		Retryable:  collector.IsRetryable(st.Err),
		Version:    st.Version,
	}
	if snap := st.Snapshot; snap != nil {
		v.Source = snap.Source
		v.RequestID = snap.RequestID
		v.Days = len(snap.Daily)
		at := snap.GeneratedAt
		v.GeneratedAt = &at
	}
	return v
}

// snapshot returns the published snapshot, loading it on first use.
func (s *Server) snapshot(c *gin.Context) (*model.Snapshot, bool) {
	if snap := s.store.Snapshot(); snap != nil {
		return snap, true
	}
	snap, err := s.store.Refresh(c.Request.Context())
	if err != nil {
		if errors.Is(err, store.ErrSuperseded) {
			if snap := s.store.Snapshot(); snap != nil {
				return snap, true
			}
		}
		respondError(c, err)
		return nil, false
	}
	return snap, true
}

// indexParam reads ?index=, defaulting to the last day.
func indexParam(c *gin.Context, n int) (int, bool) {
	raw := c.Query("index")
	if raw == "" {
		return n - 1, n > 0
	}
	i, err := strconv.Atoi(raw)
	if err != nil || i < 0 || i >= n {
		return 0, false
	}
	return i, true
}

func (s *Server) getHealth(c *gin.Context) {
	st := s.store.State()
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"version":    s.opts.Version,
		"instrument": st.Instrument,
		"live":       st.Live,
		"time":       s.opts.Now().UTC(),
	})
}

func (s *Server) getInstruments(c *gin.Context) {
	resp := gin.H{
		"instruments": s.listInstruments(),
		"selected":    s.store.State().Instrument,
	}
	if c.Query("remote") == "true" {
		if s.opts.Coins == nil {
			writeError(c, http.StatusNotFound, ErrCodeUnsupported, "no coin directory configured", false)
			return
		}
		coins, err := s.opts.Coins.ListCoins(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		resp["coins"] = coins
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) listInstruments() []string {
	s.instMu.RLock()
	defer s.instMu.RUnlock()
	return append([]string(nil), s.instruments...)
}

type registerRequest struct {
	Instrument string `json:"instrument" binding:"required"`
	CoinID     string `json:"coinId" binding:"required"`
}

// postInstruments validates a coin id with the provider and maps a pair to it.
func (s *Server) postInstruments(c *gin.Context) {
	if s.opts.Coins == nil {
		writeError(c, http.StatusNotFound, ErrCodeUnsupported, "no coin directory configured", false)
		return
	}
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if _, _, err := collector.SplitPair(req.Instrument); err != nil {
		badRequest(c, err.Error())
		return
	}
	ok, err := s.opts.Coins.ValidateCoinID(c.Request.Context(), req.CoinID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !ok {
		writeError(c, http.StatusNotFound, ErrCodeNotFound, fmt.Sprintf("unknown coin id %q", req.CoinID), false)
		return
	}
	if err := s.opts.Coins.Register(req.Instrument, req.CoinID); err != nil {
		badRequest(c, err.Error())
		return
	}

	instrument := strings.ToUpper(req.Instrument)
	s.instMu.Lock()
	if !slices.Contains(s.instruments, instrument) {
		s.instruments = append(s.instruments, instrument)
		slices.Sort(s.instruments)
	}
	s.instMu.Unlock()

	c.JSON(http.StatusCreated, gin.H{
		"instrument":  instrument,
		"coinId":      req.CoinID,
		"instruments": s.listInstruments(),
	})
}

func (s *Server) getState(c *gin.Context) {
	c.JSON(http.StatusOK, viewOf(s.store.State()))
}

func (s *Server) getDaily(c *gin.Context) {
	snap, ok := s.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"instrument": snap.Instrument,
		"source":     snap.Source,
		"records":    snap.Daily,
	})
}

func (s *Server) getBuckets(c *gin.Context) {
	g, err := model.ParseGranularity(c.Param("granularity"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	snap, ok := s.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"instrument":  snap.Instrument,
		"granularity": g,
		"buckets":     snap.Buckets(g),
	})
}

func (s *Server) getIndicators(c *gin.Context) {
	snap, ok := s.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, snap.Indicators)
}

func (s *Server) getSignals(c *gin.Context) {
	snap, ok := s.snapshot(c)
	if !ok {
		return
	}
	i, ok := indexParam(c, snap.Indicators.Len())
	if !ok {
		badRequest(c, fmt.Sprintf("index must be between 0 and %d", snap.Indicators.Len()-1))
		return
	}
	point, _ := snap.Indicators.At(i)
	c.JSON(http.StatusOK, gin.H{
		"index":      i,
		"signals":    strategy.Classify(&snap.Indicators, i),
		"indicators": point,
	})
}

func (s *Server) getFiltered(c *gin.Context) {
	var crit filter.Criteria
	if err := c.ShouldBindQuery(&crit); err != nil {
		badRequest(c, err.Error())
		return
	}
	period, err := filter.ParsePeriod(string(crit.Period))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	crit.Period = period

	snap, ok := s.snapshot(c)
	if !ok {
		return
	}
	records := filter.Apply(snap.Daily, crit, s.opts.Now())
	c.JSON(http.StatusOK, gin.H{
		"criteria":      crit,
		"activeFilters": crit.ActiveCount(),
		"count":         len(records),
		"total":         len(snap.Daily),
		"records":       records,
	})
}

func (s *Server) getExport(c *gin.Context) {
	kind, err := export.ParseKind(c.Param("kind"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	snap, ok := s.snapshot(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, kind, snap); err != nil {
		respondError(c, err)
		return
	}
	name := export.Filename(snap.Instrument, kind, model.NewDate(s.opts.Now()))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (s *Server) getReport(c *gin.Context) {
	snap, ok := s.snapshot(c)
	if !ok {
		return
	}
	i, ok := indexParam(c, len(snap.Daily))
	if !ok {
		badRequest(c, "index out of range")
		return
	}
	text, err := report.FormatMetrics(snap, i)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	c.String(http.StatusOK, text)
}

func (s *Server) getMonthlyReport(c *gin.Context) {
	snap, ok := s.snapshot(c)
	if !ok {
		return
	}
	c.String(http.StatusOK, report.FormatMonthlySummary(snap.Monthly))
}

type instrumentRequest struct {
	Instrument string `json:"instrument" binding:"required"`
}

func (s *Server) postInstrument(c *gin.Context) {
	var req instrumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if _, _, err := collector.SplitPair(req.Instrument); err != nil {
		badRequest(c, err.Error())
		return
	}
	s.respondLoad(c, func() (*model.Snapshot, error) {
		return s.store.SetInstrument(c.Request.Context(), req.Instrument)
	})
}

type liveRequest struct {
	Live *bool `json:"live" binding:"required"`
}

func (s *Server) postLive(c *gin.Context) {
	var req liveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	s.respondLoad(c, func() (*model.Snapshot, error) {
		return s.store.SetLive(c.Request.Context(), *req.Live)
	})
}

func (s *Server) postRefresh(c *gin.Context) {
	s.respondLoad(c, func() (*model.Snapshot, error) {
		return s.store.Refresh(c.Request.Context())
	})
}

func (s *Server) postRegenerate(c *gin.Context) {
	s.respondLoad(c, func() (*model.Snapshot, error) {
		return s.store.Regenerate(c.Request.Context())
	})
}

func (s *Server) deleteCache(c *gin.Context) {
	s.store.ClearCache()
	c.Status(http.StatusNoContent)
}

// respondLoad runs a state-changing load and replies with the resulting state.
func (s *Server) respondLoad(c *gin.Context, load func() (*model.Snapshot, error)) {
	if _, err := load(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(s.store.State()))
}
