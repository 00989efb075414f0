package repository

import (
	"database/sql"
)

// snapshotKey is the singleton row id for the question-data catalogue.
const snapshotKey = "global"

// VersionRepository stores the question-data snapshot. The payload is opaque;
// only the version number is interpreted, and it only ever moves forward.
type VersionRepository struct {
	db *sql.DB
}

func NewVersionRepository(db *sql.DB) *VersionRepository {
	return &VersionRepository{db: db}
}

// ApplyIfNewer replaces the stored snapshot iff the proposed version is
// strictly greater than the current one. The compare-and-swap is a single
// guarded upsert, so concurrent proposals arriving out of order settle on the
// highest version with no partial payload interleaving.
func (r *VersionRepository) ApplyIfNewer(version int64, payload []byte) (bool, int64, error) {
	res, err := r.db.Exec(`
		INSERT INTO question_data_versions (id, version, payload, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO UPDATE
		SET version = EXCLUDED.version, payload = EXCLUDED.payload, updated_at = CURRENT_TIMESTAMP
		WHERE question_data_versions.version < EXCLUDED.version
	`, snapshotKey, version, payload)
	if err != nil {
		return false, 0, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, 0, err
	}
	if rows == 1 {
		return true, version, nil
	}

	current, err := r.CurrentVersion()
	if err != nil {
		return false, 0, err
	}
	return false, current, nil
}

// CurrentVersion returns the stored version, or 0 when no snapshot exists yet.
func (r *VersionRepository) CurrentVersion() (int64, error) {
	var version int64
	err := r.db.QueryRow(`SELECT version FROM question_data_versions WHERE id = $1`, snapshotKey).Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return version, nil
}

// GetSnapshot returns the stored payload and version, or sql.ErrNoRows.
func (r *VersionRepository) GetSnapshot() (int64, []byte, error) {
	var version int64
	var payload []byte
	err := r.db.QueryRow(`SELECT version, payload FROM question_data_versions WHERE id = $1`, snapshotKey).
		Scan(&version, &payload)
	if err != nil {
		return 0, nil, err
	}
	return version, payload, nil
}
