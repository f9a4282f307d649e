package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bitbucket.org/mmdatafocus/budgets_backend/config"
	"bitbucket.org/mmdatafocus/budgets_backend/handlers"
	"bitbucket.org/mmdatafocus/budgets_backend/middlewares"
	"bitbucket.org/mmdatafocus/budgets_backend/models"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const defaultPort = "8080"

func newRouter() *gin.Engine {
	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", "X-Correlation-Id")
	r.Use(cors.New(corsConfig))
	r.Use(middlewares.CorrelationMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/login", handlers.Login)

	api := r.Group("/api", middlewares.AuthMiddleware())

	api.GET("/projects", handlers.ListProjects)
	api.POST("/projects", handlers.CreateProject)
	api.GET("/projects/:projectId", handlers.GetProject)
	api.PATCH("/projects/:projectId", handlers.UpdateProject)
	api.DELETE("/projects/:projectId", handlers.DeleteProject)
	api.POST("/projects/:projectId/rebuild", handlers.RebuildProjectSummaries)
	api.GET("/projects/:projectId/export", handlers.ExportBudgetWorkbook)

	// Plain budget: line items hang directly off the summary.
	plain := api.Group("/projects/:projectId/budget")
	plain.GET("/summary", handlers.GetBudgetSummary(models.HierarchyBudget))
	plain.PATCH("/summary", handlers.UpdateBudgetSummary(models.HierarchyBudget))
	registerItemRoutes(plain, models.HierarchyBudget)

	// Extra budget: an activity level sits between summary and items.
	extra := api.Group("/projects/:projectId/extra-budget")
	extra.GET("/summary", handlers.GetBudgetSummary(models.HierarchyExtra))
	extra.PATCH("/summary", handlers.UpdateBudgetSummary(models.HierarchyExtra))
	extra.GET("/activities", handlers.ListActivities)
	extra.POST("/activities", handlers.CreateActivity)
	extra.GET("/activities/:activityId", handlers.GetActivity)
	extra.PATCH("/activities/:activityId", handlers.UpdateActivity)
	extra.DELETE("/activities/:activityId", handlers.DeleteActivity)
	registerItemRoutes(extra.Group("/activities/:activityId"), models.HierarchyExtra)

	return r
}

func registerItemRoutes(g *gin.RouterGroup, h models.Hierarchy) {
	g.GET("/items/:kind", handlers.ListLineItems(h))
	g.POST("/items/:kind", handlers.CreateLineItem(h))
	g.GET("/items/:kind/:itemId", handlers.GetLineItem(h))
	g.PUT("/items/:kind/:itemId", handlers.UpdateLineItem(h))
	g.DELETE("/items/:kind/:itemId", handlers.DeleteLineItem(h))

	// Sub-materials live under :kind to keep the route tree wildcard
	// consistent; the handlers reject any kind other than materials.
	g.GET("/items/:kind/:itemId/sub-materials", handlers.ListSubMaterials(h))
	g.POST("/items/:kind/:itemId/sub-materials", handlers.CreateSubMaterial(h))
	g.PUT("/items/:kind/:itemId/sub-materials/:subId", handlers.UpdateSubMaterial(h))
	g.DELETE("/items/:kind/:itemId/sub-materials/:subId", handlers.DeleteSubMaterial(h))
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: newRouter(),
	}

	// Start listening before connecting backends (Cloud Run wants the
	// port open quickly); requests racing the store connect get a 502.
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	config.ConnectStoreWithRetry()
	config.ConnectRedisWithRetry()
	log.Printf("budgets backend listening on :%s", port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
