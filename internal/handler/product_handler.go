package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/12344-munna/order-handler/internal/domain"
	"github.com/12344-munna/order-handler/internal/service"
)

// ProductHandler is the admin catalog surface used to maintain the products
// the webhook flow reads.
type ProductHandler struct {
	catalogService *service.CatalogService
	logger         *zap.Logger
}

func NewProductHandler(catalogService *service.CatalogService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req domain.CreateProductRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrProductExists) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "Product already exists",
			})
			return
		}

		h.logger.Error("Failed to create product",
			zap.String("product_code", req.ProductCode),
			zap.Error(err))

		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create product",
		})
		return
	}

	c.JSON(http.StatusCreated, toProductResponse(product))
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	productCode := c.Param("code")

	product, err := h.catalogService.GetProduct(c.Request.Context(), productCode)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
			return
		}

		h.logger.Error("Failed to get product",
			zap.String("product_code", productCode),
			zap.Error(err))

		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get product",
		})
		return
	}

	c.JSON(http.StatusOK, toProductResponse(product))
}

func toProductResponse(product *domain.Product) domain.ProductResponse {
	return domain.ProductResponse{
		ProductCode:     product.ProductCode,
		Name:            product.Name,
		BuyingPrice:     product.BuyingPrice,
		SellingPrice:    product.SellingPrice,
		Sizes:           product.Sizes,
		AvailableAmount: product.AvailableAmount,
	}
}
