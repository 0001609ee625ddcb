package domain

import (
	"errors"
	"time"
)

var ErrIDAlreadyAssigned = errors.New("product id already assigned")

// StockStatus is derived from quantity and never set directly.
type StockStatus int

const (
	OutOfStock StockStatus = iota
	InStock
)

func (s StockStatus) String() string {
	if s == InStock {
		return "InStock"
	}
	return "OutOfStock"
}

func statusFor(qty int) StockStatus {
	if qty > 0 {
		return InStock
	}
	return OutOfStock
}

// StockTransition reports whether the latest SetQuantity call flipped the stock status.
type StockTransition struct {
	BecameInStock    bool
	BecameOutOfStock bool
}

// Changed is true when either flag is set.
func (t StockTransition) Changed() bool { return t.BecameInStock || t.BecameOutOfStock }

// Audit timestamps are owned by the persistence layer.
type Audit struct {
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
}

type Product struct {
	id          int64
	name        string
	description string
	quantity    int
	status      StockStatus
	deleted     bool
	audit       Audit
}

// NewProduct builds an active product. Name and description are expected to be
// validated by the caller.
func NewProduct(name, description string, quantity int) *Product {
	p := &Product{name: name, description: description}
	p.SetQuantity(quantity)
	return p
}

// Snapshot is the stored shape of a product.
type Snapshot struct {
	ID          int64
	Name        string
	Description string
	Quantity    int
	IsDeleted   bool
	Audit       Audit
}

// LoadProduct rebuilds a product from storage. The stock status is derived, no
// transition is reported.
func LoadProduct(s Snapshot) *Product {
	qty := max(s.Quantity, 0)
	return &Product{
		id:          s.ID,
		name:        s.Name,
		description: s.Description,
		quantity:    qty,
		status:      statusFor(qty),
		deleted:     s.IsDeleted,
		audit:       s.Audit,
	}
}

func (p *Product) ID() int64                { return p.id }
func (p *Product) Name() string             { return p.name }
func (p *Product) Description() string      { return p.description }
func (p *Product) Quantity() int            { return p.quantity }
func (p *Product) StockStatus() StockStatus { return p.status }
func (p *Product) IsDeleted() bool          { return p.deleted }
func (p *Product) Audit() Audit             { return p.audit }

func (p *Product) Snapshot() Snapshot {
	return Snapshot{
		ID:          p.id,
		Name:        p.name,
		Description: p.description,
		Quantity:    p.quantity,
		IsDeleted:   p.deleted,
		Audit:       p.audit,
	}
}

// Update replaces name and description. Quantity and status are untouched.
func (p *Product) Update(name, description string) {
	p.name = name
	p.description = description
}

// SetQuantity is the only way quantity changes. Values <= 0 clamp to 0.
func (p *Product) SetQuantity(quantity int) StockTransition {
	if quantity <= 0 {
		quantity = 0
	}
	p.quantity = quantity

	prev := p.status
	p.status = statusFor(quantity)
	switch {
	case prev == OutOfStock && p.status == InStock:
		return StockTransition{BecameInStock: true}
	case prev == InStock && p.status == OutOfStock:
		return StockTransition{BecameOutOfStock: true}
	}
	return StockTransition{}
}

// SoftDelete marks the product deleted. Returns false if it already was.
func (p *Product) SoftDelete() bool {
	if p.deleted {
		return false
	}
	p.deleted = true
	return true
}

// Restore reactivates a soft-deleted product. Returns false if it was active.
func (p *Product) Restore() bool {
	if !p.deleted {
		return false
	}
	p.deleted = false
	return true
}

// AssignID is called by persistence once the row exists.
func (p *Product) AssignID(id int64) error {
	if p.id != 0 {
		return ErrIDAlreadyAssigned
	}
	p.id = id
	return nil
}

// StampAudit is called by persistence after a commit.
func (p *Product) StampAudit(a Audit) { p.audit = a }
