package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ikkim/storefront-backend/internal/app/service"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

// GetAllProducts returns all products
// GET /api/v1/products
func (ctrl *ProductController) GetAllProducts(c *gin.Context) {
	products, err := ctrl.productService.ListProducts(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	resp := make([]ProductResponse, 0, len(products))
	for i := range products {
		resp = append(resp, newProductResponse(&products[i]))
	}
	c.JSON(http.StatusOK, gin.H{
		"products": resp,
		"count":    len(resp),
	})
}

// GetProductByID returns a product by ID
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProductByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	product, err := ctrl.productService.GetProductByID(c.Request.Context(), id)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": newProductResponse(product),
	})
}

// CreateProduct creates a new product
// POST /api/v1/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := ctrl.productService.CreateProduct(c.Request.Context(), req.toInput())
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created successfully",
		"product": newProductResponse(product),
	})
}

// UpdateProduct applies a partial update
// PATCH /api/v1/products/:id
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := ctrl.productService.UpdateProduct(c.Request.Context(), id, req.toPatch())
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product updated successfully",
		"product": newProductResponse(product),
	})
}

// DeleteProduct deletes a product together with its reviews and order lines
// DELETE /api/v1/products/:id
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := ctrl.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product deleted successfully",
	})
}
