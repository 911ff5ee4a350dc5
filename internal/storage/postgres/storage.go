package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/polkiloo/orderdesk/internal/domain/errors"
	"github.com/polkiloo/orderdesk/internal/domain/model"
	"github.com/polkiloo/orderdesk/internal/domain/repository"
)

// Pool is the subset of pgxpool.Pool the storage depends on; pgxmock
// satisfies it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   Pool
	logger *slog.Logger
}

type orderRepository struct {
	storage *Storage
}

type auditRepository struct {
	storage *Storage
}

type templateRepository struct {
	storage *Storage
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) Audit() repository.AuditRepository {
	return &auditRepository{storage: s}
}

func (s *Storage) Templates() repository.TemplateRepository {
	return &templateRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS orders (
            order_id TEXT PRIMARY KEY,
            requester_id BIGINT NOT NULL,
            requester_name TEXT NOT NULL DEFAULT '',
            discipline TEXT NOT NULL,
            work_type TEXT NOT NULL,
            custom_work TEXT NOT NULL DEFAULT '',
            description TEXT NOT NULL DEFAULT '',
            deadline DATE NOT NULL,
            requested_budget DOUBLE PRECISION NOT NULL DEFAULT 0,
            final_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
            payment_status TEXT NOT NULL DEFAULT 'unpaid',
            payment_link TEXT NOT NULL DEFAULT '',
            plagiarism_system TEXT,
            plagiarism_percent INT,
            submitted_files TEXT[] NOT NULL DEFAULT '{}',
            delivered_files TEXT[] NOT NULL DEFAULT '{}',
            status TEXT NOT NULL DEFAULT 'new',
            tags TEXT[] NOT NULL DEFAULT '{}',
            fulfiller_id BIGINT NOT NULL DEFAULT 0,
            fulfiller_name TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            completed_at TIMESTAMPTZ
        )`,
		`CREATE TABLE IF NOT EXISTS admin_actions (
            id SERIAL PRIMARY KEY,
            admin_id BIGINT NOT NULL,
            action TEXT NOT NULL,
            order_id TEXT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS message_history (
            id SERIAL PRIMARY KEY,
            order_id TEXT NOT NULL,
            sender_role TEXT NOT NULL,
            body TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS response_templates (
            id SERIAL PRIMARY KEY,
            name TEXT NOT NULL,
            category TEXT NOT NULL DEFAULT '',
            body TEXT NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_requester ON orders(requester_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status)`,
		`CREATE INDEX IF NOT EXISTS idx_admin_actions_admin ON admin_actions(admin_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_message_history_order ON message_history(order_id, created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

const orderColumns = `order_id, requester_id, requester_name, discipline, work_type, custom_work,
       description, deadline, requested_budget, final_amount, payment_status, payment_link,
       plagiarism_system, plagiarism_percent, submitted_files, delivered_files,
       status, tags, fulfiller_id, fulfiller_name, created_at, completed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*model.Order, error) {
	var (
		o             model.Order
		plagSystem    *string
		plagPercent   *int
		paymentStatus string
		status        string
	)

	err := row.Scan(
		&o.ID, &o.RequesterID, &o.RequesterName, &o.Discipline, &o.WorkType, &o.CustomWork,
		&o.Description, &o.Deadline, &o.RequestedBudget, &o.FinalAmount, &paymentStatus, &o.PaymentLink,
		&plagSystem, &plagPercent, &o.SubmittedFiles, &o.DeliveredFiles,
		&status, &o.Tags, &o.FulfillerID, &o.FulfillerName, &o.CreatedAt, &o.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	o.PaymentStatus = model.PaymentStatus(paymentStatus)
	o.Status = model.OrderStatus(status)
	if plagSystem != nil {
		percent := 0
		if plagPercent != nil {
			percent = *plagPercent
		}
		o.Plagiarism = &model.PlagiarismCheck{
			System:         model.PlagiarismSystem(*plagSystem),
			MinOriginality: percent,
		}
	}
	return &o, nil
}

func statusStrings(statuses []model.OrderStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

// --- OrderRepository implementation ---

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	const query = `INSERT INTO orders (
            order_id, requester_id, requester_name, discipline, work_type, custom_work,
            description, deadline, requested_budget, final_amount, payment_status, payment_link,
            plagiarism_system, plagiarism_percent, submitted_files, delivered_files,
            status, tags, fulfiller_id, fulfiller_name, created_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)`

	var plagSystem *string
	var plagPercent *int
	if order.Plagiarism != nil {
		system := string(order.Plagiarism.System)
		percent := order.Plagiarism.MinOriginality
		plagSystem = &system
		plagPercent = &percent
	}

	submitted := order.SubmittedFiles
	if submitted == nil {
		submitted = []string{}
	}
	delivered := order.DeliveredFiles
	if delivered == nil {
		delivered = []string{}
	}
	tags := order.Tags
	if tags == nil {
		tags = []string{}
	}

	_, err := r.storage.pool.Exec(ctx, query,
		order.ID, order.RequesterID, order.RequesterName, string(order.Discipline), string(order.WorkType), order.CustomWork,
		order.Description, order.Deadline, order.RequestedBudget, order.FinalAmount, string(order.PaymentStatus), order.PaymentLink,
		plagSystem, plagPercent, submitted, delivered,
		string(order.Status), tags, order.FulfillerID, order.FulfillerName, order.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domainErrors.ErrDuplicateID
		}
		return err
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_id=$1`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.storage.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) ListByRequester(ctx context.Context, requesterID int64) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE requester_id=$1 ORDER BY created_at DESC`
	return r.queryOrders(ctx, query, requesterID)
}

func (r *orderRepository) ListByStatus(ctx context.Context, status model.OrderStatus) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE status=$1 ORDER BY created_at DESC`
	return r.queryOrders(ctx, query, string(status))
}

func (r *orderRepository) CountActive(ctx context.Context, requesterID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM orders WHERE requester_id=$1 AND status = ANY($2)`
	var count int
	err := r.storage.pool.QueryRow(ctx, query, requesterID, statusStrings(model.ActiveStatuses())).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// conditionalExec runs a guarded single-statement update and reports whether
// any row matched. A lost transition race yields false, never a partial write.
func (r *orderRepository) conditionalExec(ctx context.Context, query string, args ...any) (bool, error) {
	tag, err := r.storage.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id string, from []model.OrderStatus, to model.OrderStatus) (bool, error) {
	const query = `UPDATE orders SET status=$1 WHERE order_id=$2 AND status = ANY($3)`
	return r.conditionalExec(ctx, query, string(to), id, statusStrings(from))
}

func (r *orderRepository) SetPrice(ctx context.Context, id string, from []model.OrderStatus, amount float64, paymentLink string) (bool, error) {
	const query = `UPDATE orders SET final_amount=$1, payment_link=$2, status=$3
                   WHERE order_id=$4 AND status = ANY($5)`
	return r.conditionalExec(ctx, query, amount, paymentLink, string(model.OrderStatusWaitingPayment), id, statusStrings(from))
}

func (r *orderRepository) MarkPaid(ctx context.Context, id string, from []model.OrderStatus) (bool, error) {
	const query = `UPDATE orders SET status=$1, payment_status=$2
                   WHERE order_id=$3 AND status = ANY($4) AND payment_link <> ''`
	return r.conditionalExec(ctx, query, string(model.OrderStatusPaid), string(model.PaymentStatusPaid), id, statusStrings(from))
}

func (r *orderRepository) SetDelivered(ctx context.Context, id string, from []model.OrderStatus, files []string) (bool, error) {
	const query = `UPDATE orders SET status=$1, delivered_files=$2
                   WHERE order_id=$3 AND status = ANY($4)`
	return r.conditionalExec(ctx, query, string(model.OrderStatusWorkUploaded), files, id, statusStrings(from))
}

func (r *orderRepository) Complete(ctx context.Context, id string, from []model.OrderStatus, completedAt time.Time) (bool, error) {
	const query = `UPDATE orders SET status=$1, completed_at=$2
                   WHERE order_id=$3 AND status = ANY($4) AND completed_at IS NULL`
	return r.conditionalExec(ctx, query, string(model.OrderStatusCompleted), completedAt, id, statusStrings(from))
}

func (r *orderRepository) AssignFulfiller(ctx context.Context, id string, from []model.OrderStatus, fulfillerID int64, fulfillerName string) (bool, error) {
	const query = `UPDATE orders SET status=$1, fulfiller_id=$2, fulfiller_name=$3
                   WHERE order_id=$4 AND status = ANY($5)`
	return r.conditionalExec(ctx, query, string(model.OrderStatusInProgress), fulfillerID, fulfillerName, id, statusStrings(from))
}

func (r *orderRepository) UpdateTags(ctx context.Context, id string, tags []string) error {
	if tags == nil {
		tags = []string{}
	}
	const query = `UPDATE orders SET tags=$1 WHERE order_id=$2`
	tag, err := r.storage.pool.Exec(ctx, query, tags, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *orderRepository) ListCompletedBefore(ctx context.Context, cutoff time.Time) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
              WHERE status=$1 AND completed_at IS NOT NULL AND completed_at < $2
                AND cardinality(delivered_files) > 0
              ORDER BY completed_at`
	return r.queryOrders(ctx, query, string(model.OrderStatusCompleted), cutoff)
}

func (r *orderRepository) Delete(ctx context.Context, id string) error {
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM message_history WHERE order_id=$1`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM admin_actions WHERE order_id=$1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM orders WHERE order_id=$1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domainErrors.ErrNotFound
		}
		return nil
	})
}

// --- AuditRepository implementation ---

func (r *auditRepository) LogAdminAction(ctx context.Context, adminID int64, action, orderID string) error {
	const query = `INSERT INTO admin_actions (admin_id, action, order_id) VALUES ($1, $2, $3)`
	var id *string
	if orderID != "" {
		id = &orderID
	}
	_, err := r.storage.pool.Exec(ctx, query, adminID, action, id)
	return err
}

func (r *auditRepository) SaveMessage(ctx context.Context, orderID string, sender model.SenderRole, body string) error {
	const query = `INSERT INTO message_history (order_id, sender_role, body) VALUES ($1, $2, $3)`
	_, err := r.storage.pool.Exec(ctx, query, orderID, string(sender), body)
	return err
}

func (r *auditRepository) MessageHistory(ctx context.Context, orderID string) ([]model.HistoryMessage, error) {
	const query = `SELECT id, order_id, sender_role, body, created_at
                   FROM message_history WHERE order_id=$1 ORDER BY created_at`
	rows, err := r.storage.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.HistoryMessage
	for rows.Next() {
		var m model.HistoryMessage
		var sender string
		if err := rows.Scan(&m.ID, &m.OrderID, &sender, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Sender = model.SenderRole(sender)
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// --- TemplateRepository implementation ---

func (r *templateRepository) Create(ctx context.Context, name, category, body string) (*model.ResponseTemplate, error) {
	const query = `INSERT INTO response_templates (name, category, body) VALUES ($1, $2, $3) RETURNING id`
	tmpl := model.ResponseTemplate{Name: name, Category: category, Body: body}
	if err := r.storage.pool.QueryRow(ctx, query, name, category, body).Scan(&tmpl.ID); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

func (r *templateRepository) List(ctx context.Context) ([]model.ResponseTemplate, error) {
	const query = `SELECT id, name, category, body FROM response_templates ORDER BY category, name`
	rows, err := r.storage.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.ResponseTemplate
	for rows.Next() {
		var t model.ResponseTemplate
		if err := rows.Scan(&t.ID, &t.Name, &t.Category, &t.Body); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *templateRepository) Get(ctx context.Context, id int64) (*model.ResponseTemplate, error) {
	const query = `SELECT id, name, category, body FROM response_templates WHERE id=$1`
	var t model.ResponseTemplate
	err := r.storage.pool.QueryRow(ctx, query, id).Scan(&t.ID, &t.Name, &t.Category, &t.Body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *templateRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM response_templates WHERE id=$1`
	tag, err := r.storage.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Logger returns storage logger.
func (s *Storage) Logger() *slog.Logger {
	return s.logger
}
