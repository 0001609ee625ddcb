package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "productcatalog/internal/log"
	"productcatalog/internal/services"
)

// CatalogHandler serves the read-only HTML view of the catalog.
type CatalogHandler struct {
	Products *services.ProductService
}

// GET /products
func (h *CatalogHandler) Page(c *fiber.Ctx) error {
	views, err := h.Products.List(c.UserContext(), services.GetProductsRequest{})
	if err != nil {
		applog.Error(c, "catalog.list.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load products"})
	}
	active := views[:0:0]
	inStock := 0
	for _, v := range views {
		if v.IsDeleted && c.Query("show") != "all" {
			continue
		}
		active = append(active, v)
		if v.StockStatusName == "InStock" {
			inStock++
		}
	}
	return render(c, "products", fiber.Map{
		"Products": active,
		"Count":    len(active),
		"InStock":  inStock,
		"ShowAll":  c.Query("show") == "all",
	})
}

// NotFound is the fallback for unknown paths.
func NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Page not found"})
}
