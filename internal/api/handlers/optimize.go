package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/wonny/betafolio/backend/internal/contracts"
	"github.com/wonny/betafolio/backend/pkg/logger"
)

// maxBodyBytes bounds optimize request bodies
const maxBodyBytes = 64 << 10

// OptimizeHandler handles portfolio optimization requests
// ⭐ SSOT: 최적화 API 핸들러는 이 구조체에서만
type OptimizeHandler struct {
	optimizer contracts.Optimizer
	logger    *logger.Logger
}

// NewOptimizeHandler creates a new optimize handler
func NewOptimizeHandler(optimizer contracts.Optimizer, log *logger.Logger) *OptimizeHandler {
	return &OptimizeHandler{
		optimizer: optimizer,
		logger:    log,
	}
}

// OptimizeRequest is the wire form of an optimization request.
// num_stocks and target_beta also accept numeric strings; target_return accepts 0.12, 12 or "12%".
type OptimizeRequest struct {
	NumStocks    *FlexInt        `json:"num_stocks"`
	TargetBeta   *FlexFloat      `json:"target_beta"`
	TargetReturn json.RawMessage `json:"target_return"`
	Strategy     string          `json:"strategy"`
}

// FlexInt decodes 10, 10.0 or "10"; fractional numbers truncate
type FlexInt int

func (n *FlexInt) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		v, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil {
			return fmt.Errorf("num_stocks: %q is not an integer", text)
		}
		*n = FlexInt(v)
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return errors.New("num_stocks must be an integer")
	}
	if math.Abs(f) > math.MaxInt32 {
		return errors.New("num_stocks is out of range")
	}
	*n = FlexInt(int(f))
	return nil
}

// FlexFloat decodes 1.2 or "1.2"
type FlexFloat float64

func (v *FlexFloat) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return fmt.Errorf("target_beta: %q is not a number", text)
		}
		*v = FlexFloat(f)
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return errors.New("target_beta must be a number")
	}
	*v = FlexFloat(f)
	return nil
}

// Optimize runs one optimization
// POST /api/optimize
func (h *OptimizeHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		respondError(w, http.StatusBadRequest, "No data provided")
		return
	}

	var wire OptimizeRequest
	if err := json.Unmarshal(body, &wire); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid input format: "+err.Error())
		return
	}

	req, err := h.toRequest(wire)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"num_stocks":    req.Count,
		"target_beta":   req.TargetBeta,
		"target_return": req.TargetReturn,
		"strategy":      req.Strategy,
	}).Debug("Optimization request")

	result, err := h.optimizer.Optimize(r.Context(), req)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.WithError(err).Error("Optimization failed")
			respondError(w, status, "Internal server error")
			return
		}
		respondError(w, status, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// toRequest applies defaults and normalizes the target return
func (h *OptimizeHandler) toRequest(wire OptimizeRequest) (contracts.OptimizationRequest, error) {
	strategy, err := contracts.ParseStrategy(wire.Strategy)
	if err != nil {
		return contracts.OptimizationRequest{}, err
	}

	req := contracts.OptimizationRequest{
		Count:      contracts.DefaultCount,
		TargetBeta: contracts.DefaultBeta,
		Strategy:   strategy,
	}
	if wire.NumStocks != nil {
		req.Count = int(*wire.NumStocks)
	}
	if wire.TargetBeta != nil {
		req.TargetBeta = float64(*wire.TargetBeta)
	}

	target, err := ParseTargetReturn(wire.TargetReturn)
	if err != nil {
		// 변환 불가 값은 목표 수익률 없음으로 처리
		h.logger.WithError(err).Warn("Could not convert target_return, ignoring it")
	}
	req.TargetReturn = target

	return req, nil
}

// ParseTargetReturn converts a raw target_return value to a decimal.
// Strings are percentages ("12%" or "12"); numbers above 1 are percentages.
// null, empty and NaN mean no target.
func ParseTargetReturn(raw json.RawMessage) (*float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		text = strings.TrimSpace(strings.ReplaceAll(text, "%", ""))
		if text == "" {
			return nil, nil
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, err
		}
		v /= 100
		return &v, nil
	}

	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, errors.New("target_return must be a number or percentage string")
	}
	if math.IsNaN(v) {
		return nil, nil
	}
	v = contracts.NormalizeTargetReturn(v)
	return &v, nil
}
