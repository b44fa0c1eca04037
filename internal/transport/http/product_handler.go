package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kekec/storefront/internal/service"
	"github.com/kekec/storefront/internal/util"
)

type ProductHandler struct {
	products *service.ProductService
}

func RegisterProducts(e *echo.Echo, accounts *service.AccountService, products *service.ProductService) {
	handler := &ProductHandler{products: products}

	protected := e.Group("/api/products", RequireAuth(accounts))
	protected.POST("", handler.createProduct)
}

func (h *ProductHandler) createProduct(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("not authenticated, please login"))
	}

	input := service.ProductCreateInput{
		Name:     c.FormValue("name"),
		SKU:      c.FormValue("sku"),
		Category: c.FormValue("category"),
	}

	if raw := strings.TrimSpace(c.FormValue("quantity")); raw != "" {
		quantity, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, util.Error("quantity must be a whole number"))
		}
		input.Quantity = quantity
	}
	if raw := strings.TrimSpace(c.FormValue("price")); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, util.Error("price must be a number"))
		}
		input.Price = price
	}
	if description := strings.TrimSpace(c.FormValue("description")); description != "" {
		input.Description = &description
	}

	file, err := c.FormFile("image")
	if err == nil && file != nil {
		src, openErr := file.Open()
		if openErr != nil {
			return c.JSON(http.StatusBadRequest, util.Error("could not read uploaded image"))
		}
		defer src.Close()
		input.Image = &service.ProductImageUpload{
			Reader:      src,
			Size:        file.Size,
			FileName:    file.Filename,
			ContentType: file.Header.Get(echo.HeaderContentType),
		}
	}

	product, err := h.products.Create(c.Request().Context(), user.ID, input)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("could not create product"))
	}
	return c.JSON(http.StatusCreated, product)
}
