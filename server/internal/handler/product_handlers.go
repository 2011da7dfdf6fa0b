package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"shelfwatch/server/internal/service"
)

type ProductHandler struct {
	productService *service.ProductsService
}

func NewProductHandler(service *service.ProductsService) *ProductHandler {
	return &ProductHandler{
		productService: service,
	}
}

func (h *ProductHandler) GetProducts(c *gin.Context) {
	brand := c.Query("brand")
	priceCategory := c.Query("priceCategory")
	ratingCategory := c.Query("ratingCategory")
	products := h.productService.GetProducts(brand, priceCategory, ratingCategory)
	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.productService.GetProduct(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) GetPriceHistory(c *gin.Context) {
	history := h.productService.GetPriceHistory(c.Param("id"))
	c.JSON(http.StatusOK, history)
}

func (h *ProductHandler) GetCount(c *gin.Context) {
	var message any
	if c.Query("groupBy") == "priceCategory" {
		message = h.productService.GetCountPerPriceCategory()
	} else {
		message = gin.H{"count": h.productService.GetCountProducts()}
	}
	c.JSON(http.StatusOK, message)
}

func (h *ProductHandler) GetGoodDeals(c *gin.Context) {
	c.JSON(http.StatusOK, h.productService.GetGoodDeals())
}
