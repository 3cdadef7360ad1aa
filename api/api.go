// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/ChrisAnz19/evidence-search/config"
	"github.com/ChrisAnz19/evidence-search/evidence"
	"github.com/ChrisAnz19/evidence-search/metrics"
)

// EvidenceFinder is the coordinator surface the API depends on.
type EvidenceFinder interface {
	FindEvidence(ctx context.Context, q evidence.SearchQuery) evidence.SearchResult
	FindEvidenceBatch(ctx context.Context, queries []evidence.SearchQuery, maxConcurrent int) []evidence.SearchResult
}

// API exposes the evidence lookup endpoints.
type API struct {
	finder  EvidenceFinder
	config  *config.Container
	metrics metrics.Metrics
	logger  *logrus.Logger
}

// New creates an API. metrics may be nil.
func New(finder EvidenceFinder, cfg *config.Container, m metrics.Metrics, logger *logrus.Logger) *API {
	return &API{
		finder:  finder,
		config:  cfg,
		metrics: m,
		logger:  logger,
	}
}

// RegisterRoutes attaches all endpoints to router.
func (a *API) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", a.handleHealth)

	if a.metrics != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(a.metrics.GetRegistry(), promhttp.HandlerOpts{})))
	}

	v1 := router.Group("/api/v1")
	v1.Use(a.metricsMiddleware())
	v1.POST("/evidence", a.handleEvidence)
	v1.POST("/evidence/batch", a.handleEvidenceBatch)
}

func (a *API) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": a.config.ServiceName(),
	})
}
