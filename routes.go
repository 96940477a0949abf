package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"scholar-graph/apierr"
	"scholar-graph/filter"
	"scholar-graph/graph"
	"scholar-graph/models"
	"scholar-graph/services"
)

// application bündelt die Services hinter der HTTP-API.
type application struct {
	graphs        *services.GraphService
	scholars      *services.ScholarService
	relationships *services.RelationshipService
	importer      *services.ScholarImporter
	// nil, wenn S3 nicht konfiguriert ist
	snapshots *services.SnapshotService
	log       *zap.Logger
}

func (a *application) routes(router *gin.Engine) {
	a.setupNetworkRoutes(router)
	a.setupScholarRoutes(router)
	a.setupRelationshipRoutes(router)
	a.setupSnapshotRoutes(router)
}

// respondError übersetzt einen Service-Fehler in den passenden HTTP-Status.
func (a *application) respondError(c *gin.Context, err error) {
	status := apierr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		a.log.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// respondGraph liefert leere Ergebnisse mit Status 200 und Begründung aus.
func (a *application) respondGraph(c *gin.Context, g *graph.Graph, err error) {
	if err != nil && !apierr.IsEmptyResult(err) {
		a.respondError(c, err)
		return
	}
	if g == nil {
		g = graph.Empty()
	}
	resp := gin.H{"success": true, "empty": g.IsEmpty(), "data": g}
	var e *apierr.Error
	if errors.As(err, &e) && e.Err != nil {
		resp["reason"] = e.Err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

func (a *application) setupNetworkRoutes(router *gin.Engine) {
	rg := router.Group("/network-data")

	rg.GET("", func(c *gin.Context) {
		opts := filter.Options{}
		for _, key := range []string{filter.KeyHideNotInterested, filter.KeyShowAllScholars} {
			if v, ok := c.GetQuery(key); ok {
				opts[key] = v
			}
		}
		// Nicht lesbare Werte werden verworfen, es bleibt die Standard-Sichtbarkeit.
		q, issues := filter.Compile(opts)
		for _, issue := range issues {
			a.log.Warn("Ignoring network-data option", zap.String("key", issue.Key), zap.String("reason", issue.Reason))
		}
		g, err := a.graphs.AssembleGraph(c.Request.Context(), q.Visibility)
		a.respondGraph(c, g, err)
	})

	// Optionen generisch lesen, damit Strings wie "true" oder "100" akzeptiert werden
	rg.POST("/filter", func(c *gin.Context) {
		opts := filter.Options{}
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindBodyWith(&opts, binding.JSON); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body. Expected a JSON object of filter options."})
				return
			}
		}
		g, err := a.graphs.FilterGraph(c.Request.Context(), opts)
		a.respondGraph(c, g, err)
	})
}

func (a *application) setupScholarRoutes(router *gin.Engine) {
	rg := router.Group("/scholars")

	rg.GET("/:id", func(c *gin.Context) {
		detail, err := a.scholars.Detail(c.Request.Context(), c.Param("id"))
		if err != nil {
			a.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, detail)
	})

	rg.POST("/import", func(c *gin.Context) {
		rec, err := services.DecodeRecord(c.Request.Body)
		if err != nil {
			a.respondError(c, err)
			return
		}
		res, err := a.importer.ImportRecord(c.Request.Context(), rec)
		if err != nil {
			a.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	})

	rg.PUT("/:id/role", func(c *gin.Context) {
		var req struct {
			Role any `json:"role"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.Role == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body. 'role' field is required."})
			return
		}
		role, err := models.ParseRole(cast.ToString(req.Role))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		id := c.Param("id")
		if err := a.scholars.SetRole(c.Request.Context(), id, role); err != nil {
			a.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "scholar_id": id, "role": role})
	})
}

func (a *application) setupRelationshipRoutes(router *gin.Engine) {
	rg := router.Group("/relationships")

	rg.POST("", func(c *gin.Context) {
		var key services.RelationshipKey
		if err := c.ShouldBindJSON(&key); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		rel, err := a.relationships.Add(c.Request.Context(), key)
		if err != nil {
			a.respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, rel)
	})

	rg.POST("/delete-batch", func(c *gin.Context) {
		var req struct {
			Relationships []services.RelationshipKey `json:"relationships"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		n, err := a.relationships.DeleteBatch(c.Request.Context(), req.Relationships)
		if err != nil {
			a.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "deleted": n})
	})
}

func (a *application) setupSnapshotRoutes(router *gin.Engine) {
	router.POST("/snapshots", func(c *gin.Context) {
		if a.snapshots == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "snapshot export is not configured"})
			return
		}
		res, err := a.snapshots.Export(c.Request.Context())
		if err != nil {
			a.respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, res)
	})
}
