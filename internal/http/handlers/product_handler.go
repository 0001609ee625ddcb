package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	applog "productcatalog/internal/log"
	"productcatalog/internal/services"
	"productcatalog/internal/validate"
)

type ProductHandler struct {
	Products *services.ProductService
}

// productID parses a route id; anything but an integer >= 1 does not match a product.
func productID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id < 1 {
		applog.Security(c, "validation.fail", map[string]any{"field": "id", "value": c.Params("id")})
		return 0, false
	}
	return id, true
}

func notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// fail maps a service error to a response. Validation problems are the caller's
// fault; anything else goes to the app error handler.
func fail(c *fiber.Ctx, action string, err error) error {
	var verr *validate.Error
	if errors.As(err, &verr) {
		applog.Security(c, "validation.fail", map[string]any{"action": action, "violations": verr.Violations})
		return badRequest(c, verr.Error())
	}
	applog.Error(c, action+".fail", err, nil)
	return err
}

func respond(c *fiber.Ctx, v services.Optional[services.ProductView]) error {
	view, ok := v.Get()
	if !ok {
		return notFound(c)
	}
	return c.JSON(view)
}

// GET /api/products
func (h *ProductHandler) List(c *fiber.Ctx) error {
	views, err := h.Products.List(c.UserContext(), services.GetProductsRequest{})
	if err != nil {
		return fail(c, "product.list", err)
	}
	if len(views) == 0 {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(views)
}

// GET /api/products/:id
func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return notFound(c)
	}
	v, err := h.Products.Get(c.UserContext(), services.GetProductRequest{ID: id})
	if err != nil {
		return fail(c, "product.get", err)
	}
	return respond(c, v)
}

// POST /api/products
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req services.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	if ok, msg := req.IsValid(); !ok {
		applog.Security(c, "validation.fail", map[string]any{"action": "product.create", "violations": msg})
		return badRequest(c, msg)
	}
	view, err := h.Products.Create(c.UserContext(), req)
	if err != nil {
		return fail(c, "product.create", err)
	}
	applog.Audit(c, "product.create", map[string]any{"product_id": view.ID, "name": view.Name})
	id := strconv.FormatInt(view.ID, 10)
	c.Location("/api/products/" + id)
	return c.Status(fiber.StatusCreated).JSON(view.ID)
}

type quantityBody struct {
	Quantity *int `json:"quantity"`
}

// PUT /api/products/:id/setQuantity
func (h *ProductHandler) SetQuantity(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return notFound(c)
	}
	var body quantityBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "malformed request body")
	}
	v, err := h.Products.SetQuantity(c.UserContext(), services.SetQuantityRequest{ID: id, Quantity: body.Quantity})
	if err != nil {
		return fail(c, "product.quantity.set", err)
	}
	if view, ok := v.Get(); ok {
		applog.Audit(c, "product.quantity.set", map[string]any{
			"product_id": id, "quantity": view.Quantity, "stock_status": view.StockStatusName,
		})
	}
	return respond(c, v)
}

type detailsBody struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// PUT /api/products/:id
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return notFound(c)
	}
	var body detailsBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "malformed request body")
	}
	v, err := h.Products.Update(c.UserContext(), services.UpdateProductRequest{
		ID: id, Name: body.Name, Description: body.Description,
	})
	if err != nil {
		return fail(c, "product.update", err)
	}
	if v.Found() {
		applog.Audit(c, "product.update", map[string]any{"product_id": id, "name": body.Name})
	}
	return respond(c, v)
}

// DELETE /api/products/:id
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return notFound(c)
	}
	v, err := h.Products.HardDelete(c.UserContext(), services.ProductIDRequest{ID: id})
	if err != nil {
		return fail(c, "product.delete", err)
	}
	if !v.Found() {
		return notFound(c)
	}
	applog.Audit(c, "product.delete", map[string]any{"product_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}

// PUT /api/products/:id/softDelete
func (h *ProductHandler) SoftDelete(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return notFound(c)
	}
	v, err := h.Products.SoftDelete(c.UserContext(), services.ProductIDRequest{ID: id})
	if err != nil {
		return fail(c, "product.soft_delete", err)
	}
	if v.Found() {
		applog.Audit(c, "product.soft_delete", map[string]any{"product_id": id})
	}
	return respond(c, v)
}

// PUT /api/products/:id/restore
func (h *ProductHandler) Restore(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return notFound(c)
	}
	v, err := h.Products.Restore(c.UserContext(), services.ProductIDRequest{ID: id})
	if err != nil {
		return fail(c, "product.restore", err)
	}
	if v.Found() {
		applog.Audit(c, "product.restore", map[string]any{"product_id": id})
	}
	return respond(c, v)
}
