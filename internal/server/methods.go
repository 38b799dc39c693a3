package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pixelmesh/gomarketd/internal/core/market"
	"github.com/pixelmesh/gomarketd/internal/core/typeddata"
	"github.com/pixelmesh/gomarketd/internal/core/types"
)

// rpcError is a method failure reported inside the response envelope.
type rpcError struct {
	Code    string `json:"error"`
	Message string `json:"error_message,omitempty"`
}

func errBadParams(err error) *rpcError {
	return &rpcError{Code: "invalidParams", Message: err.Error()}
}

type methodFunc func(ctx context.Context, params json.RawMessage) (any, *rpcError)

func (s *Server) methods() map[string]methodFunc {
	return map[string]methodFunc{
		"submit":         s.handleSubmit,
		"market_listing": s.handleListing,
		"market_config":  s.handleConfig,
		"market_history": s.handleHistory,
		"market_nonce":   s.handleNonce,
		"server_info":    s.handleServerInfo,
	}
}

// submitResult is the response body of a submit call.
type submitResult struct {
	Applied  bool             `json:"applied"`
	Result   string           `json:"result"`
	Code     int              `json:"code"`
	Category string           `json:"category"`
	Meta     *market.Metadata `json:"meta,omitempty"`
}

func (s *Server) handleSubmit(ctx context.Context, params json.RawMessage) (any, *rpcError) {
	if len(params) == 0 {
		return nil, errBadParams(fmt.Errorf("missing operation"))
	}
	op, err := market.FromJSON(params)
	if err != nil {
		return nil, &rpcError{Code: "unknownOperation", Message: err.Error()}
	}

	res, meta, err := s.engine.Apply(op)
	if err != nil && !res.OK() && res != market.ResMalformed {
		s.log.Errorw("apply failed", "op", op.OpName(), "err", err)
		return nil, &rpcError{Code: "internal", Message: err.Error()}
	}
	out := submitResult{
		Applied:  res.OK(),
		Result:   res.String(),
		Code:     int(res),
		Category: res.Category().String(),
		Meta:     meta,
	}
	if err != nil {
		out.Result = fmt.Sprintf("%s: %v", res, err)
	}
	return out, nil
}

type listingParams struct {
	SaleID uint64 `json:"sale_id"`
}

type listingResult struct {
	Listing *market.Listing  `json:"listing"`
	Bid     *market.BidState `json:"bid,omitempty"`
}

func (s *Server) handleListing(ctx context.Context, params json.RawMessage) (any, *rpcError) {
	var p listingParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, errBadParams(err)
	}
	if p.SaleID == 0 {
		return nil, errBadParams(fmt.Errorf("sale_id is required"))
	}

	if cached, ok := s.listingCache.Get(p.SaleID); ok {
		return cached, nil
	}
	listing, bid, err := s.engine.Listing(p.SaleID)
	if err != nil {
		return nil, &rpcError{Code: "internal", Message: err.Error()}
	}
	if listing == nil {
		return nil, &rpcError{Code: "noSale", Message: "no such sale"}
	}
	result := listingResult{Listing: listing, Bid: bid}
	s.listingCache.Add(p.SaleID, result)
	return result, nil
}

type configResult struct {
	Admin    types.Address    `json:"admin"`
	Treasury *market.Treasury `json:"treasury"`
	Domain   domainInfo       `json:"domain"`
}

type domainInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	ChainID uint64 `json:"chain_id"`
}

func (s *Server) handleConfig(ctx context.Context, params json.RawMessage) (any, *rpcError) {
	treasury, err := s.engine.Treasury()
	if err != nil {
		return nil, &rpcError{Code: "internal", Message: err.Error()}
	}
	d := s.engine.Domain()
	return configResult{
		Admin:    s.engine.Admin(),
		Treasury: treasury,
		Domain:   domainInfo{Name: d.Name, Version: d.Version, ChainID: d.ChainID},
	}, nil
}

type historyParams struct {
	Collection string `json:"collection,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

func (s *Server) handleHistory(ctx context.Context, params json.RawMessage) (any, *rpcError) {
	if s.history == nil {
		return nil, &rpcError{Code: "notEnabled", Message: "trade history is not enabled"}
	}
	var p historyParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, errBadParams(err)
		}
	}
	var (
		trades any
		err    error
	)
	if p.Collection != "" {
		trades, err = s.history.ByCollection(ctx, p.Collection, p.Limit)
	} else {
		trades, err = s.history.Recent(ctx, p.Limit)
	}
	if err != nil {
		return nil, &rpcError{Code: "internal", Message: err.Error()}
	}
	return map[string]any{"trades": trades}, nil
}

type nonceParams struct {
	Signer     types.Address `json:"signer"`
	SaleID     uint64        `json:"sale_id,omitempty"`
	Collection types.Address `json:"collection,omitzero"`
	TokenID    uint64        `json:"token_id,omitempty"`
}

// handleNonce reports the counter a signer must use in its next signed
// authorization. Exactly one of sale_id or (collection, token_id)
// selects the context.
func (s *Server) handleNonce(ctx context.Context, params json.RawMessage) (any, *rpcError) {
	var p nonceParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, errBadParams(err)
	}
	if p.Signer.IsZero() {
		return nil, errBadParams(fmt.Errorf("signer is required"))
	}
	var scope types.Hash
	switch {
	case p.SaleID != 0:
		scope = typeddata.BidContext(p.SaleID)
	case !p.Collection.IsZero():
		scope = typeddata.SaleContext(p.Collection, p.TokenID)
	default:
		return nil, errBadParams(fmt.Errorf("sale_id or collection is required"))
	}
	nonce, err := s.engine.NextNonce(p.Signer, scope)
	if err != nil {
		return nil, &rpcError{Code: "internal", Message: err.Error()}
	}
	return map[string]any{"nonce": nonce}, nil
}

func (s *Server) handleServerInfo(ctx context.Context, params json.RawMessage) (any, *rpcError) {
	return map[string]any{
		"version":     s.version,
		"applied_ops": s.engine.AppliedOps(),
		"ws_clients":  s.hub.ClientCount(),
	}, nil
}
