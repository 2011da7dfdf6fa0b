package router

import (
	"github.com/gin-gonic/gin"

	"shelfwatch/server/internal/handler"
)

func registerProductRoutes(router *gin.RouterGroup, productHandler *handler.ProductHandler) {
	products := router.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/count", productHandler.GetCount)
		products.GET("/deals", productHandler.GetGoodDeals)
		products.GET("/:id", productHandler.GetProduct)
		products.GET("/:id/history", productHandler.GetPriceHistory)
	}
}
