// Package server exposes the marketplace engine over HTTP JSON-RPC and
// a websocket event stream.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pixelmesh/gomarketd/internal/core/market"
	"github.com/pixelmesh/gomarketd/internal/storage/history"
)

const (
	maxRequestBody   = 1 << 20
	listingCacheSize = 4096
	shutdownGrace    = 5 * time.Second
)

// Server runs the RPC surface over one engine.
type Server struct {
	engine  *market.Engine
	history *history.Index
	log     *zap.SugaredLogger
	hub     *Hub
	version string

	listingCache *lru.Cache[uint64, listingResult]
	registry     map[string]methodFunc
	httpServer   *http.Server
}

// New creates a server. The history index is optional.
func New(engine *market.Engine, hist *history.Index, log *zap.SugaredLogger, version string) (*Server, error) {
	cache, err := lru.New[uint64, listingResult](listingCacheSize)
	if err != nil {
		return nil, err
	}
	s := &Server{
		engine:       engine,
		history:      hist,
		log:          log,
		hub:          NewHub(log),
		version:      version,
		listingCache: cache,
	}
	s.registry = s.methods()

	// Committed operations invalidate cached listings and feed the
	// websocket stream and trade index.
	engine.Subscribe(func(ev market.Event) {
		if ev.SaleID != 0 {
			s.listingCache.Remove(ev.SaleID)
		}
		s.hub.Broadcast(ev)
		if s.history != nil {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := s.history.RecordEvent(ctx, ev, time.Now()); err != nil {
				s.log.Warnw("history record failed", "event", ev.Type, "err", err)
			}
		}
	})
	return s, nil
}

// Run serves until the context is cancelled.
func (s *Server) Run(ctx context.Context, listen string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRPC)
	mux.HandleFunc("/ws", s.hub.HandleUpgrade)

	s.httpServer = &http.Server{
		Addr:              listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Infow("rpc server listening", "addr", listen)
		err := s.httpServer.ListenAndServe()
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		s.hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// rpcRequest is the envelope of one call:
// {"method": "...", "params": [{...}]}.
type rpcRequest struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params,omitempty"`
}

type rpcResponse struct {
	Result any `json:"result"`
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		s.writeError(w, &rpcError{Code: "badRequest", Message: "unreadable body"})
		return
	}
	var req rpcRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, &rpcError{Code: "badRequest", Message: "malformed request"})
		return
	}

	method, ok := s.registry[req.Method]
	if !ok {
		s.writeError(w, &rpcError{Code: "unknownMethod", Message: req.Method})
		return
	}
	var params json.RawMessage
	if len(req.Params) > 0 {
		params = req.Params[0]
	}

	result, rpcErr := method(r.Context(), params)
	if rpcErr != nil {
		s.writeError(w, rpcErr)
		return
	}
	s.writeResult(w, result)
}

func (s *Server) writeResult(w http.ResponseWriter, result any) {
	if err := json.NewEncoder(w).Encode(rpcResponse{Result: result}); err != nil {
		s.log.Warnw("response write failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, rpcErr *rpcError) {
	if err := json.NewEncoder(w).Encode(rpcResponse{Result: rpcErr}); err != nil {
		s.log.Warnw("response write failed", "err", err)
	}
}
