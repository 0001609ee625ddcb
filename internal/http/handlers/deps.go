package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"productcatalog/internal/repos"
	"productcatalog/internal/services"
)

type Deps struct {
	Products       *services.ProductService
	ProductHandler *ProductHandler
	CatalogHandler *CatalogHandler
}

func NewDeps(db *sqlx.DB, notifier services.Notifier, logger *zap.Logger) *Deps {
	store := repos.NewStore(db)
	productSvc := services.NewProductService(store, notifier, logger)

	return &Deps{
		Products:       productSvc,
		ProductHandler: &ProductHandler{Products: productSvc},
		CatalogHandler: &CatalogHandler{Products: productSvc},
	}
}

// Mount registers the API, the catalog page and the health check. Register
// the NotFound fallback after any routes added later.
func (d *Deps) Mount(app fiber.Router) {
	api := app.Group("/api/products")
	api.Get("/", d.ProductHandler.List)
	api.Post("/", d.ProductHandler.Create)
	api.Get("/:id", d.ProductHandler.Get)
	api.Put("/:id", d.ProductHandler.Update)
	api.Delete("/:id", d.ProductHandler.Delete)
	api.Put("/:id/setQuantity", d.ProductHandler.SetQuantity)
	api.Put("/:id/softDelete", d.ProductHandler.SoftDelete)
	api.Put("/:id/restore", d.ProductHandler.Restore)

	app.Get("/products", d.CatalogHandler.Page)
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
}
