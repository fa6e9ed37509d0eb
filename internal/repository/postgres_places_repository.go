package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"MasjidFinder-App/internal/domain/model"
	"MasjidFinder-App/internal/domain/repository"
	"MasjidFinder-App/internal/infrastructure/database"
)

// PostgresPlacesRepository PostGIS付きPostgreSQLを使用したキャッシュストアの実装
type PostgresPlacesRepository struct {
	client *database.PostgreSQLClient
}

// NewPostgresPlacesRepository 新しいPostgresPlacesRepositoryインスタンスを作成
func NewPostgresPlacesRepository(client *database.PostgreSQLClient) repository.PlacesRepository {
	return &PostgresPlacesRepository{
		client: client,
	}
}

// EnsureSchema cached_placesテーブルと必要なインデックスを作成する。
// 地理検索用のGiSTインデックスと、古いエントリスキャン用のlast_fetched_atインデックスを張る
func EnsureSchema(ctx context.Context, client *database.PostgreSQLClient) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS cached_places (
			place_id          TEXT PRIMARY KEY,
			name              TEXT NOT NULL DEFAULT '',
			latitude          DOUBLE PRECISION NOT NULL,
			longitude         DOUBLE PRECISION NOT NULL,
			location          GEOGRAPHY(POINT, 4326) NOT NULL,
			formatted_address TEXT NOT NULL DEFAULT '',
			suburb            TEXT,
			region            TEXT,
			postal_code       TEXT,
			phone             TEXT,
			website           TEXT,
			editorial_summary TEXT,
			rating            DOUBLE PRECISION,
			review_count      INTEGER,
			business_status   TEXT,
			is_open_now       BOOLEAN,
			opening_hours     JSONB,
			photo_url         TEXT,
			photo_refs        JSONB,
			last_fetched_at   TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cached_places_location ON cached_places USING GIST (location)`,
		`CREATE INDEX IF NOT EXISTS idx_cached_places_last_fetched_at ON cached_places (last_fetched_at)`,
	}

	for _, stmt := range statements {
		if _, err := client.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("スキーマの作成に失敗: %w", err)
		}
	}
	return nil
}

// placeRow cached_placesテーブルの1行を受け取るための構造体
type placeRow struct {
	PlaceID          string
	Name             string
	Latitude         float64
	Longitude        float64
	FormattedAddress string
	Suburb           sql.NullString
	Region           sql.NullString
	PostalCode       sql.NullString
	Phone            sql.NullString
	Website          sql.NullString
	EditorialSummary sql.NullString
	Rating           sql.NullFloat64
	ReviewCount      sql.NullInt64
	BusinessStatus   sql.NullString
	IsOpenNow        sql.NullBool
	OpeningHours     sql.NullString
	PhotoURL         sql.NullString
	PhotoRefs        sql.NullString
	LastFetchedAt    time.Time
}

// selectColumns SELECT句の共通カラムリスト
const selectColumns = `place_id, name, latitude, longitude, formatted_address,
	suburb, region, postal_code, phone, website, editorial_summary,
	rating, review_count, business_status, is_open_now,
	opening_hours, photo_url, photo_refs, last_fetched_at`

// scanInto 行を placeRow にスキャンする
func (row *placeRow) scanInto(scan func(dest ...any) error) error {
	return scan(&row.PlaceID, &row.Name, &row.Latitude, &row.Longitude, &row.FormattedAddress,
		&row.Suburb, &row.Region, &row.PostalCode, &row.Phone, &row.Website, &row.EditorialSummary,
		&row.Rating, &row.ReviewCount, &row.BusinessStatus, &row.IsOpenNow,
		&row.OpeningHours, &row.PhotoURL, &row.PhotoRefs, &row.LastFetchedAt)
}

// ToCachedPlace placeRow を model.CachedPlace に変換
func (row *placeRow) ToCachedPlace() (*model.CachedPlace, error) {
	place := &model.CachedPlace{
		PlaceID:          row.PlaceID,
		Name:             row.Name,
		Latitude:         row.Latitude,
		Longitude:        row.Longitude,
		FormattedAddress: row.FormattedAddress,
		LastFetchedAt:    row.LastFetchedAt,
	}

	place.Suburb = nullableString(row.Suburb)
	place.Region = nullableString(row.Region)
	place.PostalCode = nullableString(row.PostalCode)
	place.Phone = nullableString(row.Phone)
	place.Website = nullableString(row.Website)
	place.EditorialSummary = nullableString(row.EditorialSummary)
	place.BusinessStatus = nullableString(row.BusinessStatus)
	place.PhotoURL = nullableString(row.PhotoURL)

	if row.Rating.Valid {
		rating := row.Rating.Float64
		place.Rating = &rating
	}
	if row.ReviewCount.Valid {
		count := int(row.ReviewCount.Int64)
		place.ReviewCount = &count
	}
	if row.IsOpenNow.Valid {
		openNow := row.IsOpenNow.Bool
		place.IsOpenNow = &openNow
	}

	if row.OpeningHours.Valid && row.OpeningHours.String != "" {
		var hours model.OpeningHours
		if err := json.Unmarshal([]byte(row.OpeningHours.String), &hours); err != nil {
			return nil, fmt.Errorf("opening_hours JSONBパースエラー: %w", err)
		}
		place.OpeningHours = &hours
	}

	if row.PhotoRefs.Valid && row.PhotoRefs.String != "" {
		var refs []string
		if err := json.Unmarshal([]byte(row.PhotoRefs.String), &refs); err != nil {
			return nil, fmt.Errorf("photo_refs JSONBパースエラー: %w", err)
		}
		place.PhotoRefs = refs
	}

	return place, nil
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// GetByPlaceID 指定されたplace_idのエントリを取得する
func (r *PostgresPlacesRepository) GetByPlaceID(ctx context.Context, placeID string) (*model.CachedPlace, error) {
	query := `SELECT ` + selectColumns + ` FROM cached_places WHERE place_id = $1`

	var row placeRow
	err := row.scanInto(r.client.DB.QueryRowContext(ctx, query, placeID).Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("place_id %s: %w", placeID, model.ErrPlaceNotFound)
		}
		return nil, fmt.Errorf("キャッシュ済みプレイスの取得に失敗: %w", err)
	}

	return row.ToCachedPlace()
}

// FindFreshWithinRadius 中心点から半径以内かつ鮮度条件を満たすエントリを距離昇順で取得する。
// 鮮度の境界は包含（last_fetched_at がちょうど fetchedAfter の行は新鮮扱い）
func (r *PostgresPlacesRepository) FindFreshWithinRadius(ctx context.Context, center model.LatLng, radiusMeters int, fetchedAfter time.Time) ([]model.CachedPlace, error) {
	query := `
		SELECT ` + selectColumns + `
		FROM cached_places
		WHERE ST_DWithin(
			location,
			ST_GeogFromText('POINT(' || $2 || ' ' || $1 || ')'),
			$3
		)
		AND last_fetched_at >= $4
		ORDER BY ST_Distance(location, ST_GeogFromText('POINT(' || $2 || ' ' || $1 || ')'))
		LIMIT 50
	`

	rows, err := r.client.DB.QueryContext(ctx, query, center.Lat, center.Lng, radiusMeters, fetchedAfter)
	if err != nil {
		return nil, fmt.Errorf("周辺プレイス検索に失敗: %w", err)
	}
	defer rows.Close()

	return collectPlaces(rows)
}

// ListStale last_fetched_at が olderThan より古いエントリを古い順に取得する
func (r *PostgresPlacesRepository) ListStale(ctx context.Context, olderThan time.Time, limit int) ([]model.CachedPlace, error) {
	query := `
		SELECT ` + selectColumns + `
		FROM cached_places
		WHERE last_fetched_at < $1
		ORDER BY last_fetched_at ASC
		LIMIT $2
	`

	rows, err := r.client.DB.QueryContext(ctx, query, olderThan, limit)
	if err != nil {
		return nil, fmt.Errorf("古いエントリの取得に失敗: %w", err)
	}
	defer rows.Close()

	return collectPlaces(rows)
}

func collectPlaces(rows *sql.Rows) ([]model.CachedPlace, error) {
	var places []model.CachedPlace
	for rows.Next() {
		var row placeRow
		if err := row.scanInto(rows.Scan); err != nil {
			return nil, fmt.Errorf("プレイスデータスキャンエラー: %w", err)
		}

		place, err := row.ToCachedPlace()
		if err != nil {
			return nil, err
		}
		places = append(places, *place)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("行イテレーション中のエラー: %w", err)
	}

	return places, nil
}

// Upsert place_idをキーにエントリを挿入または全体更新する。
// last_fetched_at はGREATESTで単調非減少を保証する
func (r *PostgresPlacesRepository) Upsert(ctx context.Context, place *model.CachedPlace) error {
	if err := ValidatePlaceCoordinates(place); err != nil {
		return err
	}

	openingHoursJSON, photoRefsJSON, err := marshalJSONColumns(place)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO cached_places (
			place_id, name, latitude, longitude, location, formatted_address,
			suburb, region, postal_code, phone, website, editorial_summary,
			rating, review_count, business_status, is_open_now,
			opening_hours, photo_url, photo_refs, last_fetched_at
		) VALUES (
			$1, $2, $3, $4, ST_GeogFromText($5), $6,
			$7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16,
			$17, $18, $19, $20
		)
		ON CONFLICT (place_id) DO UPDATE SET
			name = EXCLUDED.name,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			location = EXCLUDED.location,
			formatted_address = EXCLUDED.formatted_address,
			suburb = EXCLUDED.suburb,
			region = EXCLUDED.region,
			postal_code = EXCLUDED.postal_code,
			phone = EXCLUDED.phone,
			website = EXCLUDED.website,
			editorial_summary = EXCLUDED.editorial_summary,
			rating = EXCLUDED.rating,
			review_count = EXCLUDED.review_count,
			business_status = EXCLUDED.business_status,
			is_open_now = EXCLUDED.is_open_now,
			opening_hours = EXCLUDED.opening_hours,
			photo_url = EXCLUDED.photo_url,
			photo_refs = EXCLUDED.photo_refs,
			last_fetched_at = GREATEST(cached_places.last_fetched_at, EXCLUDED.last_fetched_at)
	`

	_, err = r.client.DB.ExecContext(ctx, query,
		place.PlaceID, place.Name, place.Latitude, place.Longitude, PlaceToWKT(place), place.FormattedAddress,
		place.Suburb, place.Region, place.PostalCode, place.Phone, place.Website, place.EditorialSummary,
		place.Rating, place.ReviewCount, place.BusinessStatus, place.IsOpenNow,
		openingHoursJSON, place.PhotoURL, photoRefsJSON, place.LastFetchedAt,
	)
	if err != nil {
		return fmt.Errorf("プレイスのアップサートに失敗: %w", err)
	}

	return nil
}

// TouchLastFetched 指定エントリの last_fetched_at のみを更新する。
// 他のフィールドには一切触れず、タイムスタンプの単調非減少も保証する
func (r *PostgresPlacesRepository) TouchLastFetched(ctx context.Context, placeID string, fetchedAt time.Time) error {
	query := `
		UPDATE cached_places
		SET last_fetched_at = GREATEST(last_fetched_at, $2)
		WHERE place_id = $1
	`

	result, err := r.client.DB.ExecContext(ctx, query, placeID, fetchedAt)
	if err != nil {
		return fmt.Errorf("last_fetched_atの更新に失敗: %w", err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("place_id %s: %w", placeID, model.ErrPlaceNotFound)
	}

	return nil
}

// marshalJSONColumns JSONB列用の値を構築する
func marshalJSONColumns(place *model.CachedPlace) (openingHours, photoRefs any, err error) {
	if place.OpeningHours != nil {
		data, err := json.Marshal(place.OpeningHours)
		if err != nil {
			return nil, nil, fmt.Errorf("opening_hoursのJSONマーシャル失敗: %w", err)
		}
		openingHours = string(data)
	}
	if len(place.PhotoRefs) > 0 {
		data, err := json.Marshal(place.PhotoRefs)
		if err != nil {
			return nil, nil, fmt.Errorf("photo_refsのJSONマーシャル失敗: %w", err)
		}
		photoRefs = string(data)
	}
	return openingHours, photoRefs, nil
}
