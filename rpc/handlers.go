package rpc

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"treasurechain/core/types"
	"treasurechain/crypto"
	"treasurechain/native/common"
	"treasurechain/native/treasure"
)

const (
	defaultLeaders = 10
	maxLeaders     = 100
)

func pathKey(r *http.Request, name string) (uint64, error) {
	raw := chi.URLParam(r, name)
	key, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", common.ErrValidation, name, raw)
	}
	return key, nil
}

func pathAccount(r *http.Request, name string) ([20]byte, error) {
	addr, err := crypto.ParseAccount(chi.URLParam(r, name))
	if err != nil {
		return addr, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	return addr, nil
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var tx types.Transaction
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&tx); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: decode transaction: %v", common.ErrValidation, err))
		return
	}
	receipt, err := s.backend.Apply(&tx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (s *Server) handleHeight(w http.ResponseWriter, r *http.Request) {
	height, err := s.backend.Height()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"height": height})
}

func (s *Server) handleTreasures(w http.ResponseWriter, r *http.Request) {
	list, err := s.backend.Treasures()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]treasureView, 0, len(list))
	for _, t := range list {
		out = append(out, newTreasureView(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleExpired(w http.ResponseWriter, r *http.Request) {
	keys, err := s.backend.Expired(time.Now().Unix())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if keys == nil {
		keys = []uint64{}
	}
	writeJSON(w, http.StatusOK, map[string][]uint64{"keys": keys})
}

func (s *Server) handleTreasure(w http.ResponseWriter, r *http.Request) {
	key, err := pathKey(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	t, err := s.backend.Treasure(key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTreasureView(t))
}

func (s *Server) handleQueue(w http.ResponseWriter, r *http.Request) {
	key, err := pathKey(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	queue, err := s.backend.Queue(key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]awardView, 0, len(queue))
	for _, a := range queue {
		out = append(out, newAwardView(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAward(w http.ResponseWriter, r *http.Request) {
	key, err := pathKey(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	award, err := s.backend.Award(key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newAwardView(award))
}

func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	check, unlock, err := s.backend.Prices()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pricesView{Check: check, Unlock: unlock})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAccount(r, "addr")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	balance, err := s.backend.Balance(addr, strings.ToUpper(chi.URLParam(r, "symbol")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"owner":   crypto.FormatAddress(addr),
		"balance": balance,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.backend.TokenStats(strings.ToUpper(chi.URLParam(r, "symbol")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newStatsView(stats))
}

func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAccount(r, "addr")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	account, err := s.backend.Account(addr)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"address":   crypto.FormatAddress(addr),
		"nonce":     account.Nonce,
		"createdAt": account.CreatedAt,
	})
}

func (s *Server) handleCrew(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAccount(r, "addr")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	crew, err := s.backend.Crew(addr)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, crewView{
		User:      crypto.FormatAddress(crew.User),
		ImageHash: crew.ImageHash,
		Quote:     crew.Quote,
		UpdatedAt: crew.UpdatedAt,
	})
}

func (s *Server) handleTickets(w http.ResponseWriter, r *http.Request) {
	var kind treasure.TicketKind
	switch chi.URLParam(r, "kind") {
	case "check":
		kind = treasure.TicketCheck
	case "unlock":
		kind = treasure.TicketUnlock
	default:
		s.writeError(w, r, fmt.Errorf("%w: unknown ticket kind", common.ErrNotFound))
		return
	}
	tickets, err := s.backend.Tickets(kind)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]ticketView, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, newTicketView(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	results, err := s.backend.Results()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]resultView, 0, len(results))
	for _, res := range results {
		out = append(out, newResultView(res))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleParams(w http.ResponseWriter, r *http.Request) {
	list, err := s.backend.Params()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]settingView, 0, len(list))
	for _, setting := range list {
		out = append(out, newSettingView(setting))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleParam(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	setting, ok, err := s.backend.Param(key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !ok {
		s.writeError(w, r, fmt.Errorf("%w: setting %q", common.ErrNotFound, key))
		return
	}
	writeJSON(w, http.StatusOK, newSettingView(setting))
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.leaderboard == nil {
		s.writeError(w, r, fmt.Errorf("%w: scoreboard disabled", common.ErrNotFound))
		return
	}
	limit := defaultLeaders
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.writeError(w, r, fmt.Errorf("%w: invalid limit", common.ErrValidation))
			return
		}
		limit = parsed
	}
	if limit > maxLeaders {
		limit = maxLeaders
	}
	leaders, err := s.leaderboard.Leaders(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, leaders)
}
