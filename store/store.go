package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ansel1/merry/v2"
	_ "github.com/glebarez/go-sqlite"
	"github.com/google/uuid"
	"github.com/reelcut/reelcut-engine/analytics"
	"github.com/reelcut/reelcut-engine/events"
	"github.com/reelcut/reelcut-engine/services/mediainfo"
	"github.com/reelcut/reelcut-engine/timeline"
	"github.com/rs/zerolog"
	"github.com/teris-io/shortid"
)

// undoDepth bounds the per-project snapshot rings.
const undoDepth = 64

const schemaSQL = `
CREATE TABLE IF NOT EXISTS projects (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL DEFAULT '',
	schema_version INTEGER NOT NULL,
	document       TEXT NOT NULL,
	created_at     INTEGER NOT NULL,
	updated_at     INTEGER NOT NULL
);
`

type Store struct {
	conn   *sql.DB
	logger zerolog.Logger
	broker *events.Broker     // optional, nil disables change events
	media  mediainfo.Provider // optional, nil disables source duration fill

	lock     sync.Mutex
	sessions map[string]*session
}

// session holds the in-memory undo and redo snapshots of one project. They
// are not persisted, a restart starts with empty history.
type session struct {
	undo []timeline.Timeline
	redo []timeline.Timeline
}

func (sess *session) pushUndo(tl timeline.Timeline) {
	sess.undo = append(sess.undo, tl.Clone())
	if len(sess.undo) > undoDepth {
		sess.undo = sess.undo[len(sess.undo)-undoDepth:]
	}
}

func New(dbPath string, logger zerolog.Logger, broker *events.Broker, media mediainfo.Provider) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, merry.Wrap(err)
		}
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, merry.Wrap(err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	if err := conn.Ping(); err != nil {
		return nil, merry.Wrap(err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			return nil, merry.Wrap(err)
		}
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		return nil, merry.Wrap(err)
	}

	return &Store{
		conn:     conn,
		logger:   logger,
		broker:   broker,
		media:    media,
		sessions: map[string]*session{},
	}, nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

// CreateProject mints a project with an empty two-track timeline.
func (s *Store) CreateProject(name string, fps float64, canvasWidth, canvasHeight int) (*Project, error) {
	if fps <= 0 {
		fps = 25
	}
	now := time.Now().Unix()

	p := &Project{
		ID:            shortid.MustGenerate(),
		Name:          name,
		SchemaVersion: CurrentSchemaVersion,
		Timeline: timeline.Timeline{
			FPS:          fps,
			CanvasWidth:  canvasWidth,
			CanvasHeight: canvasHeight,
			Tracks: []timeline.Track{
				{ID: uuid.NewString(), Name: "V1", Order: 0, Visible: true},
				{ID: uuid.NewString(), Name: "A1", Order: 1, Visible: true},
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.saveProject(p); err != nil {
		return nil, err
	}

	s.publish(events.TypeProjectCreated, p.ID, ProjectSummary{
		ID:            p.ID,
		Name:          p.Name,
		SchemaVersion: p.SchemaVersion,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	})
	s.logger.Info().Str("projectId", p.ID).Str("name", name).Msg("project created")

	return p, nil
}

// GetProject loads and normalizes one project. When normalization changed the
// document, the repaired version is written back immediately.
func (s *Store) GetProject(id string) (*Project, error) {
	row := s.conn.QueryRow(
		`SELECT id, name, schema_version, document, created_at, updated_at FROM projects WHERE id = ?`, id)

	var p Project
	var document string
	err := row.Scan(&p.ID, &p.Name, &p.SchemaVersion, &document, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, merry.Wrap(ErrProjectNotFound)
	}
	if err != nil {
		return nil, merry.Wrap(err)
	}
	if err := json.Unmarshal([]byte(document), &p.Timeline); err != nil {
		return nil, merry.Wrap(err)
	}

	if Normalize(&p) {
		s.logger.Info().Str("projectId", p.ID).Msg("normalized project document on load")
		if err := s.saveProject(&p); err != nil {
			return nil, err
		}
	}

	return &p, nil
}

func (s *Store) ListProjects() ([]ProjectSummary, error) {
	rows, err := s.conn.Query(
		`SELECT id, name, schema_version, created_at, updated_at FROM projects ORDER BY updated_at DESC`)
	if err != nil {
		return nil, merry.Wrap(err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []ProjectSummary
	for rows.Next() {
		var p ProjectSummary
		if err := rows.Scan(&p.ID, &p.Name, &p.SchemaVersion, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, merry.Wrap(err)
		}
		out = append(out, p)
	}
	return out, merry.Wrap(rows.Err())
}

// Apply runs one command against the project: compute on a clone, drop stale
// transitions, validate, then commit, snapshot for undo and publish the
// change event. A failing command leaves the stored document untouched.
func (s *Store) Apply(ctx context.Context, projectID string, cmd Command) (*Project, *Outcome, error) {
	started := time.Now()

	s.lock.Lock()
	defer s.lock.Unlock()

	p, err := s.GetProject(projectID)
	if err != nil {
		return nil, nil, err
	}

	if add, ok := cmd.(AddItem); ok {
		cmd = s.fillSourceDuration(ctx, add)
	}

	next := p.Timeline.Clone()
	outcome, err := cmd.Apply(&next)
	if err != nil {
		return nil, nil, err
	}
	outcome.RemovedTransitionIDs = append(outcome.RemovedTransitionIDs, dropInvalidTransitions(&next)...)

	if err := timeline.Validate(next); err != nil {
		return nil, nil, err
	}

	sess := s.session(projectID)
	sess.pushUndo(p.Timeline)
	sess.redo = nil

	p.Timeline = next
	p.UpdatedAt = time.Now().Unix()
	if err := s.saveProject(p); err != nil {
		return nil, nil, err
	}

	s.publish(cmd.EventType(), projectID, outcome)
	if a := analytics.GetService(); a != nil {
		a.EditApplied(cmd.Name(), projectID, len(next.Items), time.Since(started).Milliseconds())
	}
	s.logger.Info().
		Str("projectId", projectID).
		Str("command", cmd.Name()).
		Msg("command applied")

	return p, outcome, nil
}

type restoredPayload struct {
	Direction string `json:"direction"`
}

func (s *Store) Undo(projectID string) (*Project, error) {
	return s.restore(projectID, "undo")
}

func (s *Store) Redo(projectID string) (*Project, error) {
	return s.restore(projectID, "redo")
}

func (s *Store) restore(projectID, direction string) (*Project, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	sess := s.session(projectID)
	p, err := s.GetProject(projectID)
	if err != nil {
		return nil, err
	}

	switch direction {
	case "undo":
		if len(sess.undo) == 0 {
			return nil, merry.Wrap(ErrNothingToUndo)
		}
		prev := sess.undo[len(sess.undo)-1]
		sess.undo = sess.undo[:len(sess.undo)-1]
		sess.redo = append(sess.redo, p.Timeline.Clone())
		p.Timeline = prev
	case "redo":
		if len(sess.redo) == 0 {
			return nil, merry.Wrap(ErrNothingToRedo)
		}
		next := sess.redo[len(sess.redo)-1]
		sess.redo = sess.redo[:len(sess.redo)-1]
		sess.undo = append(sess.undo, p.Timeline.Clone())
		p.Timeline = next
	}

	p.UpdatedAt = time.Now().Unix()
	if err := s.saveProject(p); err != nil {
		return nil, err
	}

	s.publish(events.TypeProjectRestored, projectID, restoredPayload{Direction: direction})
	s.logger.Info().Str("projectId", projectID).Str("direction", direction).Msg("history restored")

	return p, nil
}

// UndoDepth reports how many undo and redo steps the project currently has.
func (s *Store) UndoDepth(projectID string) (undo, redo int) {
	s.lock.Lock()
	defer s.lock.Unlock()
	sess := s.session(projectID)
	return len(sess.undo), len(sess.redo)
}

func (s *Store) session(projectID string) *session {
	sess, ok := s.sessions[projectID]
	if !ok {
		sess = &session{}
		s.sessions[projectID] = sess
	}
	return sess
}

// fillSourceDuration resolves the asset's probed length for media items that
// arrive without one, so trims can bound against real material.
func (s *Store) fillSourceDuration(ctx context.Context, cmd AddItem) Command {
	if s.media == nil || !cmd.Item.Kind.IsMedia() || cmd.Item.MediaID == "" || cmd.Item.SourceDuration > 0 {
		return cmd
	}
	info, err := s.media.Lookup(ctx, cmd.Item.MediaID)
	if err != nil {
		s.logger.Warn().Err(err).Str("mediaId", cmd.Item.MediaID).Msg("media info lookup failed")
		return cmd
	}
	cmd.Item.SourceDuration = info.DurationFrames
	return cmd
}

func (s *Store) saveProject(p *Project) error {
	document, err := json.Marshal(p.Timeline)
	if err != nil {
		return merry.Wrap(err)
	}

	_, err = s.conn.Exec(`
		INSERT INTO projects (id, name, schema_version, document, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			schema_version = excluded.schema_version,
			document = excluded.document,
			updated_at = excluded.updated_at`,
		p.ID, p.Name, p.SchemaVersion, string(document), p.CreatedAt, p.UpdatedAt)
	return merry.Wrap(err)
}

func (s *Store) publish(eventType, projectID string, data any) {
	if s.broker == nil {
		return
	}
	event, err := events.NewEvent(eventType, projectID, data)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to build change event")
		return
	}
	s.broker.Publish(event)
}
