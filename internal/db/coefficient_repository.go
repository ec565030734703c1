package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/stunsim/internal/stun"
)

// ErrProfileNotFound is returned when a coefficient profile has no rows.
var ErrProfileNotFound = errors.New("coefficient profile not found")

const (
	kindDamage = "damage"
	kindAttack = "attack"
)

// CoefficientRepository хранит профили коэффициентов стана в БД.
type CoefficientRepository struct {
	db *pgxpool.Pool
}

// NewCoefficientRepository создаёт новый CoefficientRepository.
func NewCoefficientRepository(db *pgxpool.Pool) *CoefficientRepository {
	return &CoefficientRepository{db: db}
}

// LoadProfile загружает профиль по имени.
// Типы, отсутствующие в профиле, берутся из stun.DefaultCoefficients.
func (r *CoefficientRepository) LoadProfile(ctx context.Context, name string) (stun.Coefficients, error) {
	query := `
		SELECT kind, key, value
		FROM stun_coefficients
		WHERE profile = $1
		ORDER BY kind, key
	`

	rows, err := r.db.Query(ctx, query, name)
	if err != nil {
		return stun.Coefficients{}, fmt.Errorf("querying profile %q: %w", name, err)
	}
	defer rows.Close()

	coeffs := stun.DefaultCoefficients()
	found := 0
	for rows.Next() {
		var kind, key string
		var value float64
		if err := rows.Scan(&kind, &key, &value); err != nil {
			return stun.Coefficients{}, fmt.Errorf("scanning coefficient row: %w", err)
		}

		switch kind {
		case kindDamage:
			dt, err := stun.ParseDamageType(key)
			if err != nil {
				return stun.Coefficients{}, fmt.Errorf("loading profile %q: %w", name, err)
			}
			coeffs.Damage[dt] = value
		case kindAttack:
			at, err := stun.ParseAttackType(key)
			if err != nil {
				return stun.Coefficients{}, fmt.Errorf("loading profile %q: %w", name, err)
			}
			coeffs.Attack[at] = value
		default:
			return stun.Coefficients{}, fmt.Errorf("loading profile %q: unknown kind %q", name, kind)
		}
		found++
	}
	if err := rows.Err(); err != nil {
		return stun.Coefficients{}, fmt.Errorf("iterating coefficient rows: %w", err)
	}

	if found == 0 {
		return stun.Coefficients{}, fmt.Errorf("%w: %q", ErrProfileNotFound, name)
	}
	if err := coeffs.Validate(); err != nil {
		return stun.Coefficients{}, fmt.Errorf("loading profile %q: %w", name, err)
	}

	slog.Debug("coefficient profile loaded", "profile", name, "rows", found)
	return coeffs, nil
}

// SaveProfile сохраняет полный профиль (upsert всех строк в одной транзакции).
func (r *CoefficientRepository) SaveProfile(ctx context.Context, name string, coeffs stun.Coefficients) error {
	if name == "" {
		return fmt.Errorf("%w: empty profile name", stun.ErrInvalidInput)
	}
	if err := coeffs.Validate(); err != nil {
		return fmt.Errorf("saving profile %q: %w", name, err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	query := `
		INSERT INTO stun_coefficients (profile, kind, key, value, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (profile, kind, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`

	batch := &pgx.Batch{}
	for _, dt := range stun.DamageTypes {
		batch.Queue(query, name, kindDamage, dt.String(), coeffs.Damage[dt])
	}
	for _, at := range stun.AttackTypes {
		batch.Queue(query, name, kindAttack, at.String(), coeffs.Attack[at])
	}

	br := tx.SendBatch(ctx, batch)
	for range batch.Len() {
		if _, err := br.Exec(); err != nil {
			br.Close() //nolint:errcheck
			return fmt.Errorf("upserting profile %q: %w", name, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close coefficient batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing profile %q: %w", name, err)
	}

	slog.Info("coefficient profile saved", "profile", name)
	return nil
}

// ListProfiles возвращает имена всех профилей в алфавитном порядке.
func (r *CoefficientRepository) ListProfiles(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT profile FROM stun_coefficients ORDER BY profile`)
	if err != nil {
		return nil, fmt.Errorf("querying profiles: %w", err)
	}

	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collecting profiles: %w", err)
	}
	return names, nil
}
