package router

import (
	"github.com/gin-gonic/gin"

	"shelfwatch/server/internal/handler"
)

type Config struct {
	ProductHandler *handler.ProductHandler
}

func NewRouter(cfg *Config) *gin.Engine {
	router := gin.Default()

	api := router.Group("/v1/")
	registerProductRoutes(api, cfg.ProductHandler)

	return router
}
