package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eddy-neller/shop-api-sub001/internal/core/domain"
	"github.com/eddy-neller/shop-api-sub001/internal/core/port"
	"github.com/eddy-neller/shop-api-sub001/internal/repository"
)

type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var userColumns = []string{
	"id",
	"username",
	"firstname",
	"lastname",
	"email",
	"password_hash",
	"roles",
	"status",
	"total_wrong_password",
	"total_wrong_two_factor_code",
	"total_two_factor_sms_sent",
	"activation_mail_sent",
	"activation_token",
	"activation_token_ttl",
	"activation_last_attempt",
	"reset_mail_sent",
	"reset_token",
	"reset_token_ttl",
	"preferences",
	"avatar",
	"last_visit",
	"login_count",
	"created_at",
	"updated_at",
}

// UserRepository implements port.UserRepository using PostgreSQL.
type UserRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewUserRepository constructs a repository backed by any executor that
// satisfies pgExecutor.
func NewUserRepository(exec pgExecutor) *UserRepository {
	repo := &UserRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// WithTx returns a repository instance that executes statements within the
// supplied transaction.
func (r *UserRepository) WithTx(tx pgx.Tx) *UserRepository {
	if tx == nil {
		return r
	}
	return &UserRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// FindByID retrieves a user aggregate by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	stmt, args, err := r.builder.
		Select(userColumns...).
		From("identity.users").
		Where(squirrel.Eq{"id": id.String()}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}

	return r.scanUser(r.exec.QueryRow(ctx, stmt, args...))
}

// FindByEmail retrieves a user aggregate by its normalized email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email domain.EmailAddress) (*domain.User, error) {
	stmt, args, err := r.builder.
		Select(userColumns...).
		From("identity.users").
		Where(squirrel.Eq{"email": email.String()}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user by email sql: %w", err)
	}

	return r.scanUser(r.exec.QueryRow(ctx, stmt, args...))
}

// FindByResetToken retrieves the user holding the given reset token. Token
// liveness is the aggregate's concern, not the query's.
func (r *UserRepository) FindByResetToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, repository.ErrNotFound
	}

	stmt, args, err := r.builder.
		Select(userColumns...).
		From("identity.users").
		Where(squirrel.Eq{"reset_token": token}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user by reset token sql: %w", err)
	}

	return r.scanUser(r.exec.QueryRow(ctx, stmt, args...))
}

// Save upserts the aggregate's snapshot in a single statement.
func (r *UserRepository) Save(ctx context.Context, user *domain.User) error {
	s := user.Snapshot()

	rolesJSON, err := json.Marshal(s.Roles)
	if err != nil {
		return fmt.Errorf("marshal roles: %w", err)
	}
	preferencesJSON, err := json.Marshal(s.Preferences)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}

	stmt, args, err := r.builder.Insert("identity.users").
		Columns(userColumns...).
		Values(
			s.ID,
			s.Username,
			nullStringPtr(s.Firstname),
			nullStringPtr(s.Lastname),
			s.Email,
			s.PasswordHash,
			rolesJSON,
			s.Status,
			s.Security.TotalWrongPassword,
			s.Security.TotalWrongTwoFactorCode,
			s.Security.TotalTwoFactorSmsSent,
			s.ActiveEmail.MailSent,
			nullString(s.ActiveEmail.Token),
			nullTime(s.ActiveEmail.TokenTTL),
			nullTime(s.ActiveEmail.LastAttempt),
			s.ResetPassword.MailSent,
			nullString(s.ResetPassword.Token),
			nullTime(s.ResetPassword.TokenTTL),
			preferencesJSON,
			s.Avatar,
			s.LastVisit,
			s.LoginCount,
			s.CreatedAt,
			s.UpdatedAt,
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			firstname = EXCLUDED.firstname,
			lastname = EXCLUDED.lastname,
			email = EXCLUDED.email,
			password_hash = EXCLUDED.password_hash,
			roles = EXCLUDED.roles,
			status = EXCLUDED.status,
			total_wrong_password = EXCLUDED.total_wrong_password,
			total_wrong_two_factor_code = EXCLUDED.total_wrong_two_factor_code,
			total_two_factor_sms_sent = EXCLUDED.total_two_factor_sms_sent,
			activation_mail_sent = EXCLUDED.activation_mail_sent,
			activation_token = EXCLUDED.activation_token,
			activation_token_ttl = EXCLUDED.activation_token_ttl,
			activation_last_attempt = EXCLUDED.activation_last_attempt,
			reset_mail_sent = EXCLUDED.reset_mail_sent,
			reset_token = EXCLUDED.reset_token,
			reset_token_ttl = EXCLUDED.reset_token_ttl,
			preferences = EXCLUDED.preferences,
			avatar = EXCLUDED.avatar,
			last_visit = EXCLUDED.last_visit,
			login_count = EXCLUDED.login_count,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert user sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return repository.ErrConflict
		}
		return fmt.Errorf("upsert user: %w", err)
	}

	return nil
}

// Delete removes the user row.
func (r *UserRepository) Delete(ctx context.Context, id domain.UserID) error {
	stmt, args, err := r.builder.Delete("identity.users").
		Where(squirrel.Eq{"id": id.String()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete user sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// List returns users matching the query plus the unpaged total.
func (r *UserRepository) List(ctx context.Context, query port.ListUsersQuery) ([]*domain.User, int, error) {
	base := r.builder.Select(userColumns...).
		From("identity.users").
		OrderBy("created_at DESC")
	count := r.builder.Select("COUNT(*)").From("identity.users")

	if query.Status != nil {
		base = base.Where(squirrel.Eq{"status": string(*query.Status)})
		count = count.Where(squirrel.Eq{"status": string(*query.Status)})
	}
	if query.Search != "" {
		pattern := "%" + query.Search + "%"
		filter := squirrel.Or{
			squirrel.ILike{"username": pattern},
			squirrel.ILike{"email": pattern},
		}
		base = base.Where(filter)
		count = count.Where(filter)
	}
	if query.Limit > 0 {
		base = base.Limit(uint64(query.Limit))
	}
	if query.Offset > 0 {
		base = base.Offset(uint64(query.Offset))
	}

	stmt, args, err := base.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list users sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate users: %w", err)
	}

	countStmt, countArgs, err := count.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count users sql: %w", err)
	}

	var total int64
	if err := r.exec.QueryRow(ctx, countStmt, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("scan users count: %w", err)
	}

	return users, int(total), nil
}

func (r *UserRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var (
		s                     domain.UserSnapshot
		firstname             sql.NullString
		lastname              sql.NullString
		activationToken       sql.NullString
		activationTTL         *time.Time
		activationLastAttempt *time.Time
		resetToken            sql.NullString
		resetTTL              *time.Time
		rolesJSON             []byte
		preferencesJSON       []byte
	)

	if err := row.Scan(
		&s.ID,
		&s.Username,
		&firstname,
		&lastname,
		&s.Email,
		&s.PasswordHash,
		&rolesJSON,
		&s.Status,
		&s.Security.TotalWrongPassword,
		&s.Security.TotalWrongTwoFactorCode,
		&s.Security.TotalTwoFactorSmsSent,
		&s.ActiveEmail.MailSent,
		&activationToken,
		&activationTTL,
		&activationLastAttempt,
		&s.ResetPassword.MailSent,
		&resetToken,
		&resetTTL,
		&preferencesJSON,
		&s.Avatar,
		&s.LastVisit,
		&s.LoginCount,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	if firstname.Valid {
		s.Firstname = &firstname.String
	}
	if lastname.Valid {
		s.Lastname = &lastname.String
	}
	if activationToken.Valid {
		s.ActiveEmail.Token = activationToken.String
	}
	if activationTTL != nil {
		s.ActiveEmail.TokenTTL = *activationTTL
	}
	if activationLastAttempt != nil {
		s.ActiveEmail.LastAttempt = *activationLastAttempt
	}
	if resetToken.Valid {
		s.ResetPassword.Token = resetToken.String
	}
	if resetTTL != nil {
		s.ResetPassword.TokenTTL = *resetTTL
	}

	if len(rolesJSON) > 0 {
		if err := json.Unmarshal(rolesJSON, &s.Roles); err != nil {
			return nil, fmt.Errorf("unmarshal roles: %w", err)
		}
	}
	if len(preferencesJSON) > 0 {
		if err := json.Unmarshal(preferencesJSON, &s.Preferences); err != nil {
			return nil, fmt.Errorf("unmarshal preferences: %w", err)
		}
	}

	user, err := domain.Reconstitute(s)
	if err != nil {
		return nil, fmt.Errorf("reconstitute user: %w", err)
	}

	return user, nil
}

func nullStringPtr(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullTime(value time.Time) any {
	if value.IsZero() {
		return nil
	}
	return value
}

var _ port.UserRepository = (*UserRepository)(nil)
