// Package api exposes asset snapshots and the proofs of their trees over
// HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dev3-labs/assetsnap/common"
	"github.com/dev3-labs/assetsnap/merkle"
	"github.com/dev3-labs/assetsnap/snapshot"
	"github.com/ethereum/go-ethereum/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/exp/slices"
)

const (
	InvalidRequestBody  = "INVALID_REQUEST_BODY"
	InvalidParameter    = "INVALID_REQUEST_PARAMETER"
	ResourceNotFound    = "RESOURCE_NOT_FOUND"
	UnsupportedChainID  = "UNSUPPORTED_CHAIN_ID"
	InternalServerError = "INTERNAL_SERVER_ERROR"
)

// Server serves the snapshot API.
type Server struct {
	snapshots SnapshotService
	trees     snapshot.TreeRepository
	// chains accepted for new snapshots; empty accepts all
	chains []common.ChainID
	log    log.Logger
}

func NewServer(snapshots SnapshotService, trees snapshot.TreeRepository, chains []common.ChainID) *Server {
	return &Server{
		snapshots: snapshots,
		trees:     trees,
		chains:    slices.Clone(chains),
		log:       log.New("module", "api"),
	}
}

// Handler returns the router of the API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Route("/v1/asset-snapshots", func(r chi.Router) {
		r.Post("/", s.createSnapshot)
		r.Get("/{id}", s.getSnapshot)
		r.Get("/by-project/{projectId}", s.getSnapshotsByProject)
	})
	r.Route("/v1/payout-info/{chainId}/{assetContractAddress}/tree/{rootHash}", func(r chi.Router) {
		r.Get("/", s.getTree)
		r.Get("/path/{walletAddress}", s.getPath)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, ResourceNotFound, "no such endpoint")
	})
	return r
}

// ListenAndServe serves the API on the given address until the context is
// cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() {
		s.log.Info("Serving API", "addr", addr)
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}
	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdown); err != nil {
		return err
	}
	if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("Served request", "method", r.Method, "path", r.URL.Path, "status", ww.Status(),
			"elapsed", time.Since(start), "id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) createSnapshot(w http.ResponseWriter, r *http.Request) {
	var req createSnapshotRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, InvalidRequestBody, err.Error())
		return
	}
	params, err := req.toParams()
	if err != nil {
		writeError(w, http.StatusBadRequest, InvalidRequestBody, err.Error())
		return
	}
	if len(s.chains) > 0 && !slices.Contains(s.chains, params.ChainID) {
		writeError(w, http.StatusBadRequest, UnsupportedChainID, fmt.Sprintf("chain %d is not supported", params.ChainID))
		return
	}

	id, err := s.snapshots.Submit(r.Context(), params)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, createSnapshotResponse{ID: id})
}

func (req createSnapshotRequest) toParams() (snapshot.CreateParams, error) {
	res := snapshot.CreateParams{Name: strings.TrimSpace(req.Name), ChainID: common.ChainID(req.ChainID)}
	if res.Name == "" {
		return res, fmt.Errorf("name is required")
	}
	if req.ChainID <= 0 {
		return res, fmt.Errorf("chain_id is required")
	}
	if req.PayoutBlockNumber == nil {
		return res, fmt.Errorf("payout_block_number is required")
	}
	res.TargetBlock = common.BlockNumber(*req.PayoutBlockNumber)

	var err error
	if res.ProjectID, err = uuid.Parse(req.ProjectID); err != nil {
		return res, fmt.Errorf("invalid project_id; %w", err)
	}
	if res.AssetContractAddress, err = common.ParseAddress(req.AssetAddress); err != nil {
		return res, fmt.Errorf("invalid asset_address; %w", err)
	}
	for _, s := range req.IgnoredHolderAddresses {
		a, err := common.ParseAddress(s)
		if err != nil {
			return res, fmt.Errorf("invalid ignored_holder_addresses; %w", err)
		}
		if !slices.Contains(res.IgnoredHolderAddresses, a) {
			res.IgnoredHolderAddresses = append(res.IgnoredHolderAddresses, a)
		}
	}
	return res, nil
}

func (s *Server) getSnapshot(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, InvalidParameter, "invalid snapshot id")
		return
	}
	res, found, err := s.snapshots.GetByID(r.Context(), id)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, ResourceNotFound, "asset snapshot not found")
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotResponse(*res))
}

func (s *Server) getSnapshotsByProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "projectId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, InvalidParameter, "invalid project id")
		return
	}
	var statuses []snapshot.Status
	for _, value := range r.URL.Query()["status"] {
		for _, name := range strings.Split(value, ",") {
			status, err := snapshot.ParseStatus(strings.ToUpper(strings.TrimSpace(name)))
			if err != nil {
				writeError(w, http.StatusBadRequest, InvalidParameter, err.Error())
				return
			}
			statuses = append(statuses, status)
		}
	}

	snapshots, err := s.snapshots.GetAllByProjectAndStatuses(r.Context(), projectID, statuses)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	res := snapshotsResponse{AssetSnapshots: make([]snapshotResponse, 0, len(snapshots))}
	for _, cur := range snapshots {
		res.AssetSnapshots = append(res.AssetSnapshots, toSnapshotResponse(cur))
	}
	writeJSON(w, http.StatusOK, res)
}

func treeParams(r *http.Request) (snapshot.FetchTreeParams, error) {
	chainID, err := common.ParseChainID(chi.URLParam(r, "chainId"))
	if err != nil {
		return snapshot.FetchTreeParams{}, err
	}
	contract, err := common.ParseAddress(chi.URLParam(r, "assetContractAddress"))
	if err != nil {
		return snapshot.FetchTreeParams{}, err
	}
	return snapshot.FetchTreeParams{
		RootHash:             merkle.NewHash(chi.URLParam(r, "rootHash")),
		ChainID:              chainID,
		AssetContractAddress: contract,
	}, nil
}

func (s *Server) getTree(w http.ResponseWriter, r *http.Request) {
	params, err := treeParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, InvalidParameter, err.Error())
		return
	}
	stored, found, err := s.trees.FetchTree(r.Context(), params)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, ResourceNotFound, "payout does not exist for specified parameters")
		return
	}
	writeJSON(w, http.StatusOK, stored.Tree)
}

func (s *Server) getPath(w http.ResponseWriter, r *http.Request) {
	params, err := treeParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, InvalidParameter, err.Error())
		return
	}
	wallet, err := common.ParseAddress(chi.URLParam(r, "walletAddress"))
	if err != nil {
		writeError(w, http.StatusBadRequest, InvalidParameter, err.Error())
		return
	}

	contained, err := s.trees.ContainsAddress(r.Context(), params, wallet)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if !contained {
		writeError(w, http.StatusNotFound, ResourceNotFound, "payout does not exist for specified parameters or account is not included in payout")
		return
	}
	stored, found, err := s.trees.FetchTree(r.Context(), params)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, ResourceNotFound, "payout does not exist for specified parameters")
		return
	}
	proof, found := stored.Tree.ProofFor(wallet)
	if !found {
		writeError(w, http.StatusNotFound, ResourceNotFound, "account is not included in payout")
		return
	}
	writeJSON(w, http.StatusOK, pathResponse{
		WalletAddress: common.LowerHex(proof.Holder.Address),
		WalletBalance: proof.Holder.Balance.String(),
		Path:          proof.Path,
		Proof:         proof.SiblingHashes(),
	})
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error("Request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	writeError(w, http.StatusInternalServerError, InternalServerError, "internal server error")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, errorCode, message string) {
	writeJSON(w, code, errorResponse{ErrorCode: errorCode, Message: message})
}
