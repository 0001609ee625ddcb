package services

import "productcatalog/internal/validate"

func idRule(id int64) string { return validate.AtLeast("Id", &id, 1) }

func joinRules[T any](rules ...validate.RuleSet[T]) validate.RuleSet[T] {
	var out validate.RuleSet[T]
	for _, rs := range rules {
		out = append(out, rs...)
	}
	return out
}

func nameRule[T any](get func(T) string) validate.RuleSet[T] {
	return validate.RuleSet[T]{
		func(r T) string { return validate.NotEmpty("Name", get(r)) },
		func(r T) string { return validate.Length("Name", get(r), 3, 50) },
	}
}

func descriptionRule[T any](get func(T) string) validate.RuleSet[T] {
	return validate.RuleSet[T]{
		func(r T) string { return validate.MaxLength("Description", get(r), 500) },
	}
}

// GetProductRequest asks for a single product.
type GetProductRequest struct {
	ID int64
}

var getProductRules = validate.RuleSet[GetProductRequest]{
	func(r GetProductRequest) string { return idRule(r.ID) },
}

func (r GetProductRequest) IsValid() (bool, string) { return getProductRules.Check(r) }
func (r GetProductRequest) Validate() error         { return getProductRules.Must(r) }

// GetProductsRequest lists the catalog. It has no rules today.
type GetProductsRequest struct{}

func (GetProductsRequest) IsValid() (bool, string) { return true, "" }
func (GetProductsRequest) Validate() error         { return nil }

type CreateProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Quantity    *int   `json:"quantity"`
}

var createProductRules = joinRules(
	nameRule(func(r CreateProductRequest) string { return r.Name }),
	descriptionRule(func(r CreateProductRequest) string { return r.Description }),
	validate.RuleSet[CreateProductRequest]{
		func(r CreateProductRequest) string { return validate.Present("Quantity", r.Quantity) },
		func(r CreateProductRequest) string { return validate.AtLeast("Quantity", r.Quantity, 0) },
	},
)

func (r CreateProductRequest) IsValid() (bool, string) { return createProductRules.Check(r) }
func (r CreateProductRequest) Validate() error         { return createProductRules.Must(r) }

// SetQuantityRequest takes a pointer so a missing quantity is not mistaken for 0.
type SetQuantityRequest struct {
	ID       int64 `json:"-"`
	Quantity *int  `json:"quantity"`
}

// The id is not validated; an unknown id yields an absent result.
var setQuantityRules = validate.RuleSet[SetQuantityRequest]{
	func(r SetQuantityRequest) string { return validate.Present("Quantity", r.Quantity) },
	func(r SetQuantityRequest) string { return validate.AtLeast("Quantity", r.Quantity, 0) },
}

func (r SetQuantityRequest) IsValid() (bool, string) { return setQuantityRules.Check(r) }
func (r SetQuantityRequest) Validate() error         { return setQuantityRules.Must(r) }

type UpdateProductRequest struct {
	ID          int64  `json:"-"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var updateProductRules = joinRules(
	nameRule(func(r UpdateProductRequest) string { return r.Name }),
	descriptionRule(func(r UpdateProductRequest) string { return r.Description }),
)

func (r UpdateProductRequest) IsValid() (bool, string) { return updateProductRules.Check(r) }
func (r UpdateProductRequest) Validate() error         { return updateProductRules.Must(r) }

// ProductIDRequest targets soft delete, restore and hard delete.
type ProductIDRequest struct {
	ID int64
}

var productIDRules = validate.RuleSet[ProductIDRequest]{
	func(r ProductIDRequest) string { return idRule(r.ID) },
}

func (r ProductIDRequest) IsValid() (bool, string) { return productIDRules.Check(r) }
func (r ProductIDRequest) Validate() error         { return productIDRules.Must(r) }
