package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"videosearch-backend/internal/models"
	"videosearch-backend/internal/search"
)

type VideoRepo struct {
	pool *pgxpool.Pool
}

func NewVideoRepo(pool *pgxpool.Pool) *VideoRepo {
	return &VideoRepo{pool: pool}
}

// ReplaceVideo upserts the video row and rewrites its segments in one
// transaction. Segment row ids are fresh on every re-ingest, so readers
// must never assume ids are stable across replacements.
func (r *VideoRepo) ReplaceVideo(ctx context.Context, v *models.VideoRecord) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `INSERT INTO videos (id, title, file_name, upload_date, public_url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			file_name = EXCLUDED.file_name,
			upload_date = EXCLUDED.upload_date,
			public_url = EXCLUDED.public_url`,
		v.ID, v.Title, v.FileName, v.UploadDate, v.PublicURL,
	)
	if err != nil {
		return err
	}

	if _, err = tx.Exec(ctx, "DELETE FROM segments WHERE video_id = $1", v.ID); err != nil {
		return err
	}

	for _, seg := range v.Segments {
		_, err = tx.Exec(ctx, `INSERT INTO segments (video_id, ordinal, start_time, end_time, body, start_seconds)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			v.ID, seg.Ordinal, seg.StartTime, seg.EndTime, seg.Text, seg.StartSeconds,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *VideoRepo) ListVideos(ctx context.Context) ([]*models.VideoRecord, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT id, title, file_name, upload_date, public_url FROM videos ORDER BY upload_date, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []*models.VideoRecord
	for rows.Next() {
		v := &models.VideoRecord{}
		if err := rows.Scan(&v.ID, &v.Title, &v.FileName, &v.UploadDate, &v.PublicURL); err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

func (r *VideoRepo) DeleteVideo(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM videos WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("video %q not found", id)
	}
	return nil
}

// SegmentsByVideo loads one video's full transcript in ordinal order.
func (r *VideoRepo) SegmentsByVideo(ctx context.Context, videoID string) ([]models.TranscriptSegment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT ordinal, start_time, end_time, body, start_seconds
		FROM segments WHERE video_id = $1 ORDER BY ordinal`, videoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var segments []models.TranscriptSegment
	for rows.Next() {
		var seg models.TranscriptSegment
		if err := rows.Scan(&seg.Ordinal, &seg.StartTime, &seg.EndTime, &seg.Text, &seg.StartSeconds); err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}
	return segments, rows.Err()
}

// QuerySegments is the first pass of a remote keyword search: rows
// matching ANY token, capped. The AND filtering happens caller-side.
func (r *VideoRepo) QuerySegments(ctx context.Context, tokens []string, limit int) ([]search.StoredSegment, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	conds := make([]string, len(tokens))
	args := make([]interface{}, 0, len(tokens)+1)
	for i, tok := range tokens {
		conds[i] = fmt.Sprintf("body ILIKE $%d", i+1)
		args = append(args, "%"+tok+"%")
	}
	args = append(args, limit)

	query := fmt.Sprintf(`SELECT id, video_id, ordinal, start_time, end_time, body, start_seconds
		FROM segments WHERE %s ORDER BY video_id, id LIMIT $%d`,
		strings.Join(conds, " OR "), len(tokens)+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStoredSegments(rows)
}

// FetchByRowIDs fetches segment rows by primary key, silently skipping
// ids that do not exist.
func (r *VideoRepo) FetchByRowIDs(ctx context.Context, ids []int64) ([]search.StoredSegment, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, video_id, ordinal, start_time, end_time, body, start_seconds
		FROM segments WHERE id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStoredSegments(rows)
}

func scanStoredSegments(rows pgx.Rows) ([]search.StoredSegment, error) {
	var out []search.StoredSegment
	for rows.Next() {
		var s search.StoredSegment
		if err := rows.Scan(&s.RowID, &s.VideoID, &s.Ordinal, &s.StartTime, &s.EndTime, &s.Text, &s.StartSeconds); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
