// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ChrisAnz19/evidence-search/evidence"
)

// Upper bound on candidates per batch request, to keep fan-out sane.
const maxBatchSize = 50

// EvidenceRequest is the payload for a single lookup.
type EvidenceRequest struct {
	Query      string `json:"query"`
	Company    string `json:"company,omitempty"`
	Role       string `json:"role,omitempty"`
	Industry   string `json:"industry,omitempty"`
	MaxResults int    `json:"max_results,omitempty"`
}

// BatchEvidenceRequest is the payload for a batch lookup.
type BatchEvidenceRequest struct {
	Candidates      []EvidenceRequest `json:"candidates"`
	MaxConcurrent   int               `json:"max_concurrent,omitempty"`
	MaxPerCandidate int               `json:"max_per_candidate,omitempty"`
}

// BatchEvidenceResponse carries per-candidate results in input order.
type BatchEvidenceResponse struct {
	Results []evidence.SearchResult `json:"results"`
}

func (r EvidenceRequest) toQuery() evidence.SearchQuery {
	return evidence.SearchQuery{
		Text:     strings.TrimSpace(r.Query),
		Company:  strings.TrimSpace(r.Company),
		Role:     strings.TrimSpace(r.Role),
		Industry: strings.TrimSpace(r.Industry),
	}
}

// handleEvidence handles POST /api/v1/evidence. Provider failures never
// surface as HTTP errors; the coordinator folds them into the result.
func (a *API) handleEvidence(c *gin.Context) {
	var req EvidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}

	query := req.toQuery()
	if query.IsEmpty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query text or at least one hint is required"})
		return
	}

	result := a.finder.FindEvidence(c.Request.Context(), query)
	result.Candidates = a.boundCandidates(result, req.MaxResults)

	c.JSON(http.StatusOK, result)
}

// handleEvidenceBatch handles POST /api/v1/evidence/batch.
func (a *API) handleEvidenceBatch(c *gin.Context) {
	var req BatchEvidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}

	if len(req.Candidates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "candidates list is required"})
		return
	}
	if len(req.Candidates) > maxBatchSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "too many candidates in one batch"})
		return
	}

	queries := make([]evidence.SearchQuery, 0, len(req.Candidates))
	for i, candidate := range req.Candidates {
		query := candidate.toQuery()
		if query.IsEmpty() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "empty candidate query", "index": i})
			return
		}
		queries = append(queries, query)
	}

	results := a.finder.FindEvidenceBatch(c.Request.Context(), queries, req.MaxConcurrent)
	for i := range results {
		results[i].Candidates = a.boundCandidates(results[i], req.MaxPerCandidate)
	}

	c.JSON(http.StatusOK, BatchEvidenceResponse{Results: results})
}

// boundCandidates dedupes and truncates one result's candidate list. The
// requested bound is capped by the configured per-query maximum.
func (a *API) boundCandidates(result evidence.SearchResult, requested int) []evidence.URLCandidate {
	limit := a.config.Search().MaxResultsPerQuery
	if requested > 0 && requested < limit {
		limit = requested
	}
	return evidence.Assemble([]evidence.SearchResult{result}, limit)
}
