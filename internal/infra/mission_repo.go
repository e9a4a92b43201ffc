package infra

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Vovarama1992/mission_tower/internal/config"
	"github.com/Vovarama1992/mission_tower/internal/ports"
)

const missionColumns = `id, mission_title, involved_pups, main_location, mission_script, translation, is_requested, audio_ready, created_at`

type missionRepo struct {
	db      *sql.DB
	dialect string
}

func NewMissionRepo(db *sql.DB, dialect string) ports.MissionRepo {
	return &missionRepo{db: db, dialect: dialect}
}

// rebind turns ? placeholders into $n for postgres.
func (r *missionRepo) rebind(query string) string {
	if r.dialect != config.DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMission(row scanner) (*ports.Mission, error) {
	var (
		m    ports.Mission
		pups string
	)
	if err := row.Scan(
		&m.ID,
		&m.Title,
		&pups,
		&m.Location,
		&m.Script,
		&m.Translation,
		&m.IsRequested,
		&m.AudioReady,
		dbTime{&m.CreatedAt},
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ports.ErrMissionNotFound
		}
		return nil, err
	}
	m.Pups = ports.ParsePups(pups)
	return &m, nil
}

// dbTime accepts both native timestamps and the text form sqlite hands back
// for RETURNING columns.
type dbTime struct{ t *time.Time }

func (d dbTime) Scan(v any) error {
	switch x := v.(type) {
	case nil:
		return nil
	case time.Time:
		*d.t = x
		return nil
	case []byte:
		return d.parse(string(x))
	case string:
		return d.parse(x)
	}
	return fmt.Errorf("unsupported time value %T", v)
}

func (d dbTime) parse(s string) error {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00"} {
		if t, err := time.Parse(layout, s); err == nil {
			*d.t = t
			return nil
		}
	}
	return fmt.Errorf("unparseable time %q", s)
}

// timeArg matches the column format: sqlite stores CURRENT_TIMESTAMP as UTC text.
func (r *missionRepo) timeArg(t time.Time) any {
	if r.dialect == config.DriverPostgres {
		return t
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}

func (r *missionRepo) queryOne(ctx context.Context, query string, args ...any) (*ports.Mission, error) {
	return scanMission(r.db.QueryRowContext(ctx, r.rebind(query), args...))
}

func (r *missionRepo) Insert(ctx context.Context, m *ports.Mission) (*ports.Mission, error) {
	if m == nil {
		return nil, ports.ErrMissingField
	}
	for name, v := range map[string]string{
		"mission_title":  m.Title,
		"main_location":  m.Location,
		"mission_script": m.Script,
		"translation":    m.Translation,
	} {
		if strings.TrimSpace(v) == "" {
			return nil, fmt.Errorf("%w: %s", ports.ErrMissingField, name)
		}
	}

	created, err := r.queryOne(ctx, `
		INSERT INTO missions (mission_title, involved_pups, main_location, mission_script, translation, is_requested, audio_ready)
		VALUES (?, ?, ?, ?, ?, FALSE, FALSE)
		RETURNING `+missionColumns,
		m.Title, m.PupsString(), m.Location, m.Script, m.Translation,
	)
	if err != nil {
		return nil, fmt.Errorf("insert mission: %w", err)
	}
	return created, nil
}

func (r *missionRepo) GetByID(ctx context.Context, id int64) (*ports.Mission, error) {
	return r.queryOne(ctx, `SELECT `+missionColumns+` FROM missions WHERE id = ?`, id)
}

func (r *missionRepo) GetByTitle(ctx context.Context, title string) (*ports.Mission, error) {
	return r.queryOne(ctx, `
		SELECT `+missionColumns+` FROM missions
		WHERE mission_title = ?
		ORDER BY id ASC
		LIMIT 1
	`, title)
}

func (r *missionRepo) Latest(ctx context.Context) (*ports.Mission, error) {
	return r.queryOne(ctx, `SELECT `+missionColumns+` FROM missions ORDER BY id DESC LIMIT 1`)
}

func (r *missionRepo) CountUnrequested(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM missions
		WHERE is_requested = FALSE AND audio_ready = TRUE
	`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count unrequested: %w", err)
	}
	return n, nil
}

func (r *missionRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, r.rebind(`DELETE FROM missions WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete mission %d: %w", id, err)
	}
	return nil
}

func (r *missionRepo) MarkAudioReady(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.rebind(`UPDATE missions SET audio_ready = TRUE WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("mark audio ready %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark audio ready %d: %w", id, err)
	}
	if n == 0 {
		return ports.ErrMissionNotFound
	}
	return nil
}

func (r *missionRepo) DeleteDrafts(ctx context.Context, createdBefore time.Time) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, r.rebind(`
		DELETE FROM missions
		WHERE audio_ready = FALSE AND created_at < ?
		RETURNING id
	`), r.timeArg(createdBefore))
	if err != nil {
		return nil, fmt.Errorf("delete drafts: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// RequestOldest is a single UPDATE ... RETURNING, so two callers can never
// receive the same row. Postgres skips rows locked by a concurrent request.
func (r *missionRepo) RequestOldest(ctx context.Context) (*ports.Mission, error) {
	lock := ""
	if r.dialect == config.DriverPostgres {
		lock = "FOR UPDATE SKIP LOCKED"
	}

	return r.queryOne(ctx, `
		UPDATE missions SET is_requested = TRUE
		WHERE id = (
			SELECT id FROM missions
			WHERE is_requested = FALSE AND audio_ready = TRUE
			ORDER BY id ASC
			LIMIT 1
			`+lock+`
		)
		AND is_requested = FALSE
		RETURNING `+missionColumns)
}

func (r *missionRepo) RequestByID(ctx context.Context, id int64) (*ports.Mission, error) {
	return r.queryOne(ctx, `
		UPDATE missions SET is_requested = TRUE
		WHERE id = ? AND audio_ready = TRUE
		RETURNING `+missionColumns, id)
}

func (r *missionRepo) RequestByTitle(ctx context.Context, title string) (*ports.Mission, error) {
	return r.queryOne(ctx, `
		UPDATE missions SET is_requested = TRUE
		WHERE id = (
			SELECT id FROM missions
			WHERE mission_title = ? AND audio_ready = TRUE
			ORDER BY id ASC
			LIMIT 1
		)
		RETURNING `+missionColumns, title)
}
