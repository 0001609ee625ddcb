package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"productcatalog/internal/domain"
)

// ErrStaleProduct means the row was removed between load and commit.
var ErrStaleProduct = errors.New("product no longer exists")

const tsLayout = time.RFC3339Nano

func formatTS(t time.Time) string { return t.UTC().Format(tsLayout) }

func parseTS(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(tsLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

type productRow struct {
	ID          int64  `db:"id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	Quantity    int    `db:"quantity"`
	IsDeleted   bool   `db:"is_deleted"`
	CreatedAt   string `db:"created_at"`
	UpdatedAt   string `db:"updated_at"`
	DeletedAt   string `db:"deleted_at"`
}

func (r productRow) product() *domain.Product {
	audit := domain.Audit{UpdatedAt: parseTS(r.UpdatedAt), DeletedAt: parseTS(r.DeletedAt)}
	if t := parseTS(r.CreatedAt); t != nil {
		audit.CreatedAt = *t
	}
	return domain.LoadProduct(domain.Snapshot{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Quantity:    r.Quantity,
		IsDeleted:   r.IsDeleted,
		Audit:       audit,
	})
}

const selectProducts = `
  SELECT
    id, name, description, quantity, is_deleted,
    created_at, COALESCE(updated_at,'') AS updated_at, COALESCE(deleted_at,'') AS deleted_at
  FROM products`

// Store hands out sessions over one database. It is safe to share.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewStore(db *sqlx.DB) *Store { return &Store{db: db, now: time.Now} }

// WithClock overrides the audit clock.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Begin() domain.UnitOfWork { return &Session{store: s} }

type opKind int

const (
	opCreate opKind = iota
	opUpdate
	opDelete
)

type pendingOp struct {
	kind opKind
	p    *domain.Product
}

// Session is a request-scoped unit of work. Writes are buffered until Commit;
// reads see committed rows only. Not safe for concurrent use.
type Session struct {
	store   *Store
	pending []pendingOp
}

func (s *Session) Products() domain.ProductRepository { return &ProductRepo{s: s} }

// Pending reports how many changes wait for Commit.
func (s *Session) Pending() int { return len(s.pending) }

// Commit applies the buffered changes in one transaction, in the order they were
// registered, and stamps ids and audit timestamps on the aggregates.
func (s *Session) Commit(ctx context.Context) error {
	if len(s.pending) == 0 {
		return nil
	}
	now := s.store.now().UTC()
	ts := formatTS(now)

	tx, err := s.store.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	type stamp struct {
		p     *domain.Product
		id    int64
		audit domain.Audit
	}
	stamps := make([]stamp, 0, len(s.pending))

	for _, op := range s.pending {
		p := op.p
		audit := p.Audit()
		switch op.kind {
		case opCreate:
			res, err := tx.ExecContext(ctx, `
				INSERT INTO products(name, description, quantity, is_deleted, created_at, deleted_at)
				VALUES (?, ?, ?, ?, ?, ?)
			`, p.Name(), p.Description(), p.Quantity(), p.IsDeleted(), ts, nullTS(deletedAt(p, nil, now)))
			if err != nil {
				return fmt.Errorf("insert product: %w", err)
			}
			id, err := res.LastInsertId()
			if err != nil {
				return err
			}
			audit = domain.Audit{CreatedAt: now, DeletedAt: deletedAt(p, nil, now)}
			stamps = append(stamps, stamp{p: p, id: id, audit: audit})

		case opUpdate:
			audit.UpdatedAt = &now
			audit.DeletedAt = deletedAt(p, audit.DeletedAt, now)
			res, err := tx.ExecContext(ctx, `
				UPDATE products
				SET name = ?, description = ?, quantity = ?, is_deleted = ?, updated_at = ?, deleted_at = ?
				WHERE id = ?
			`, p.Name(), p.Description(), p.Quantity(), p.IsDeleted(), ts, nullTS(audit.DeletedAt), p.ID())
			if err != nil {
				return fmt.Errorf("update product %d: %w", p.ID(), err)
			}
			if err := expectOne(res, p.ID()); err != nil {
				return err
			}
			stamps = append(stamps, stamp{p: p, audit: audit})

		case opDelete:
			res, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, p.ID())
			if err != nil {
				return fmt.Errorf("delete product %d: %w", p.ID(), err)
			}
			if err := expectOne(res, p.ID()); err != nil {
				return err
			}
			audit.DeletedAt = &now
			stamps = append(stamps, stamp{p: p, audit: audit})
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	for _, st := range stamps {
		if st.id != 0 {
			if err := st.p.AssignID(st.id); err != nil {
				return err
			}
		}
		st.p.StampAudit(st.audit)
	}
	s.pending = nil
	return nil
}

// deletedAt keeps an existing soft-delete stamp, sets one on first delete and
// clears it once the product is active again.
func deletedAt(p *domain.Product, prev *time.Time, now time.Time) *time.Time {
	if !p.IsDeleted() {
		return nil
	}
	if prev != nil {
		return prev
	}
	return &now
}

func nullTS(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTS(*t), Valid: true}
}

func expectOne(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("product %d: %w", id, ErrStaleProduct)
	}
	return nil
}

// ProductRepo is the product gateway bound to one session.
type ProductRepo struct{ s *Session }

func (r *ProductRepo) register(kind opKind, p *domain.Product) error {
	if p == nil {
		return errors.New("nil product")
	}
	r.s.pending = append(r.s.pending, pendingOp{kind: kind, p: p})
	return nil
}

func (r *ProductRepo) Create(_ context.Context, p *domain.Product) error {
	if p != nil && p.ID() != 0 {
		return domain.ErrIDAlreadyAssigned
	}
	return r.register(opCreate, p)
}

func (r *ProductRepo) Update(_ context.Context, p *domain.Product) error {
	return r.register(opUpdate, p)
}

func (r *ProductRepo) Delete(_ context.Context, p *domain.Product) error {
	return r.register(opDelete, p)
}

func (r *ProductRepo) Get(ctx context.Context, id int64) (*domain.Product, bool, error) {
	var row productRow
	err := r.s.store.db.GetContext(ctx, &row, selectProducts+` WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return row.product(), true, nil
}

func (r *ProductRepo) GetAll(ctx context.Context) ([]*domain.Product, error) {
	var rows []productRow
	if err := r.s.store.db.SelectContext(ctx, &rows, selectProducts+` ORDER BY id`); err != nil {
		return nil, err
	}
	out := make([]*domain.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.product())
	}
	return out, nil
}
