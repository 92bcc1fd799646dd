package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"

	"hotelbook/internal/domain"
)

const errDupEntry = 1062

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// mapErr folds driver errors into domain sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var me *mysqldrv.MySQLError
	if errors.As(err, &me) && me.Number == errDupEntry {
		return fmt.Errorf("%w: %s", domain.ErrDuplicate, me.Message)
	}
	return err
}

func createdAt(t time.Time) time.Time {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Truncate(time.Millisecond)
}

type scanner interface{ Scan(dest ...any) error }

// ---- users ----

func (r *Repo) GetUser(ctx context.Context, id int64) (domain.User, error) {
	var u domain.User
	var role string
	err := r.db.QueryRowContext(ctx, getUserSQL, id).Scan(&u.ID, &u.Name, &u.Email, &role, &u.CreatedAt)
	if err != nil {
		return domain.User{}, mapErr(err)
	}
	u.Role = domain.Role(role)
	return u, nil
}

func (r *Repo) CreateUser(ctx context.Context, u *domain.User) error {
	u.CreatedAt = createdAt(u.CreatedAt)
	res, err := r.db.ExecContext(ctx, insertUserSQL, u.ID, u.Name, u.Email, string(u.Role), u.PasswordHash, u.CreatedAt)
	if err != nil {
		return mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = id
	return nil
}

// ---- hotels ----

func scanHotel(s scanner) (domain.Hotel, error) {
	var h domain.Hotel
	var lat, lng, avgCost, avgRating sql.NullFloat64
	var formatted, zipcode string
	if err := s.Scan(
		&h.ID, &h.UserID, &h.Name, &h.Description, &h.Website, &h.Phone, &h.Email, &h.Address,
		&lat, &lng, &formatted, &zipcode, &h.Photo, &avgCost, &avgRating, &h.CreatedAt,
	); err != nil {
		return domain.Hotel{}, err
	}
	if lat.Valid && lng.Valid {
		h.Location = &domain.Location{Lat: lat.Float64, Lng: lng.Float64, FormattedAddress: formatted, Zipcode: zipcode}
	}
	if avgCost.Valid {
		v := avgCost.Float64
		h.AverageCost = &v
	}
	if avgRating.Valid {
		v := avgRating.Float64
		h.AverageRating = &v
	}
	return h, nil
}

// locationArgs returns lat, lng, formatted address, zipcode.
func locationArgs(l *domain.Location) (any, any, string, string) {
	if l == nil {
		return nil, nil, "", ""
	}
	return l.Lat, l.Lng, l.FormattedAddress, l.Zipcode
}

func (r *Repo) queryHotels(ctx context.Context, q string, args ...any) ([]domain.Hotel, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Hotel
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *Repo) ListHotels(ctx context.Context, q domain.ListQuery) (domain.Page[domain.Hotel], error) {
	where, args, err := buildWhere(hotelColumns, q.Filters)
	if err != nil {
		return domain.Page[domain.Hotel]{}, err
	}
	order, err := buildOrder(hotelColumns, q.Sort)
	if err != nil {
		return domain.Page[domain.Hotel]{}, err
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM hotels h"+where, args...).Scan(&total); err != nil {
		return domain.Page[domain.Hotel]{}, err
	}
	items, err := r.queryHotels(ctx, "SELECT "+hotelCols+" FROM hotels h"+where+order+" LIMIT ? OFFSET ?",
		append(args, q.Limit, q.Offset())...)
	if err != nil {
		return domain.Page[domain.Hotel]{}, err
	}
	if err := r.populateRooms(ctx, items); err != nil {
		return domain.Page[domain.Hotel]{}, err
	}
	return domain.Page[domain.Hotel]{Items: items, Total: total}, nil
}

// populateRooms attaches each hotel's rooms with a single IN query.
func (r *Repo) populateRooms(ctx context.Context, hotels []domain.Hotel) error {
	if len(hotels) == 0 {
		return nil
	}
	idx := make(map[int64]int, len(hotels))
	args := make([]any, len(hotels))
	for i, h := range hotels {
		idx[h.ID] = i
		args[i] = h.ID
	}
	rooms, err := r.queryRooms(ctx, false,
		"SELECT "+roomCols+" FROM rooms r WHERE r.hotel_id IN ("+placeholders(len(args))+") ORDER BY r.id", args...)
	if err != nil {
		return err
	}
	for _, rm := range rooms {
		i := idx[rm.HotelID]
		hotels[i].Rooms = append(hotels[i].Rooms, rm)
	}
	return nil
}

func (r *Repo) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	h, err := scanHotel(r.db.QueryRowContext(ctx, getHotelSQL, id))
	return h, mapErr(err)
}

func (r *Repo) FindHotelByOwner(ctx context.Context, userID int64) (domain.Hotel, error) {
	h, err := scanHotel(r.db.QueryRowContext(ctx, hotelByOwnerSQL, userID))
	return h, mapErr(err)
}

func (r *Repo) HotelsInBounds(ctx context.Context, b domain.Bounds) ([]domain.Hotel, error) {
	q := hotelsInBoundsSQL
	args := []any{b.MinLat, b.MaxLat}
	switch {
	case b.AllLng:
	case b.WrapsLng:
		q += " AND (h.lng >= ? OR h.lng <= ?)"
		args = append(args, b.MinLng, b.MaxLng)
	default:
		q += " AND h.lng BETWEEN ? AND ?"
		args = append(args, b.MinLng, b.MaxLng)
	}
	return r.queryHotels(ctx, q, args...)
}

func (r *Repo) CreateHotel(ctx context.Context, h *domain.Hotel) error {
	if h.Photo == "" {
		h.Photo = domain.DefaultPhoto
	}
	h.CreatedAt = createdAt(h.CreatedAt)
	lat, lng, formatted, zip := locationArgs(h.Location)
	res, err := r.db.ExecContext(ctx, insertHotelSQL,
		h.ID, h.UserID, h.Name, h.Description, h.Website, h.Phone, h.Email, h.Address,
		lat, lng, formatted, zip, h.Photo, h.CreatedAt,
	)
	if err != nil {
		return mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = id
	return nil
}

func (r *Repo) UpdateHotel(ctx context.Context, h domain.Hotel) error {
	lat, lng, formatted, zip := locationArgs(h.Location)
	_, err := r.db.ExecContext(ctx, updateHotelSQL,
		h.Name, h.Description, h.Website, h.Phone, h.Email, h.Address,
		lat, lng, formatted, zip, h.ID,
	)
	return mapErr(err)
}

func (r *Repo) DeleteHotel(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, q := range []string{
		`DELETE FROM reviews WHERE hotel_id = ?`,
		`DELETE FROM rooms WHERE hotel_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return err
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM hotels WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return tx.Commit()
}

func (r *Repo) SetHotelPhoto(ctx context.Context, id int64, photo string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE hotels SET photo = ? WHERE id = ?`, photo, id)
	return err
}

func (r *Repo) SetAverageCost(ctx context.Context, id int64, cost float64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE hotels SET average_cost = ? WHERE id = ?`, cost, id)
	return err
}

func (r *Repo) SetAverageRating(ctx context.Context, id int64, rating float64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE hotels SET average_rating = ? WHERE id = ?`, rating, id)
	return err
}

// ---- rooms ----

func scanRoom(s scanner, withHotel bool) (domain.Room, error) {
	var rm domain.Room
	var roomType []byte
	dest := []any{
		&rm.ID, &rm.HotelID, &rm.UserID, &rm.Title, &rm.Description, &rm.Available, &rm.Cost,
		&roomType, &rm.MinimumOccupancy, &rm.Photo, &rm.CreatedAt,
	}
	var hs domain.HotelSummary
	if withHotel {
		dest = append(dest, &hs.Name, &hs.Description)
	}
	if err := s.Scan(dest...); err != nil {
		return domain.Room{}, err
	}
	if err := json.Unmarshal(roomType, &rm.RoomType); err != nil {
		return domain.Room{}, fmt.Errorf("room %d: bad room_type: %w", rm.ID, err)
	}
	if withHotel {
		hs.ID = rm.HotelID
		rm.Hotel = &hs
	}
	return rm, nil
}

func (r *Repo) queryRooms(ctx context.Context, withHotel bool, q string, args ...any) ([]domain.Room, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Room
	for rows.Next() {
		rm, err := scanRoom(rows, withHotel)
		if err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

func (r *Repo) ListRooms(ctx context.Context, q domain.ListQuery) (domain.Page[domain.Room], error) {
	where, args, err := buildWhere(roomColumns, q.Filters)
	if err != nil {
		return domain.Page[domain.Room]{}, err
	}
	order, err := buildOrder(roomColumns, q.Sort)
	if err != nil {
		return domain.Page[domain.Room]{}, err
	}
	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM rooms r"+where, args...).Scan(&total); err != nil {
		return domain.Page[domain.Room]{}, err
	}
	items, err := r.queryRooms(ctx, true, roomWithHotelSQL+where+order+" LIMIT ? OFFSET ?", append(args, q.Limit, q.Offset())...)
	if err != nil {
		return domain.Page[domain.Room]{}, err
	}
	return domain.Page[domain.Room]{Items: items, Total: total}, nil
}

func (r *Repo) ListRoomsByHotel(ctx context.Context, hotelID int64) ([]domain.Room, error) {
	return r.queryRooms(ctx, false, "SELECT "+roomCols+" FROM rooms r WHERE r.hotel_id = ? ORDER BY r.id", hotelID)
}

func (r *Repo) GetRoom(ctx context.Context, id int64) (domain.Room, error) {
	rm, err := scanRoom(r.db.QueryRowContext(ctx, roomWithHotelSQL+" WHERE r.id = ?", id), true)
	return rm, mapErr(err)
}

func (r *Repo) CreateRoom(ctx context.Context, rm *domain.Room) error {
	types, err := json.Marshal(rm.RoomType)
	if err != nil {
		return err
	}
	if rm.Photo == "" {
		rm.Photo = domain.DefaultPhoto
	}
	rm.CreatedAt = createdAt(rm.CreatedAt)
	res, err := r.db.ExecContext(ctx, insertRoomSQL,
		rm.ID, rm.HotelID, rm.UserID, rm.Title, rm.Description, rm.Available, rm.Cost,
		string(types), rm.MinimumOccupancy, rm.Photo, rm.CreatedAt,
	)
	if err != nil {
		return mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rm.ID = id
	return nil
}

func (r *Repo) UpdateRoom(ctx context.Context, rm domain.Room) error {
	types, err := json.Marshal(rm.RoomType)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, updateRoomSQL,
		rm.Title, rm.Description, rm.Available, rm.Cost, string(types), rm.MinimumOccupancy, rm.ID)
	return mapErr(err)
}

func (r *Repo) DeleteRoom(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repo) SetRoomPhoto(ctx context.Context, id int64, photo string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE rooms SET photo = ? WHERE id = ?`, photo, id)
	return err
}

func (r *Repo) AverageRoomCost(ctx context.Context, hotelID int64) (float64, bool, error) {
	var avg sql.NullFloat64
	if err := r.db.QueryRowContext(ctx, averageCostSQL, hotelID).Scan(&avg); err != nil {
		return 0, false, err
	}
	return avg.Float64, avg.Valid, nil
}

// ---- reviews ----

func scanReview(s scanner, withHotel bool) (domain.Review, error) {
	var rv domain.Review
	dest := []any{&rv.ID, &rv.HotelID, &rv.UserID, &rv.Title, &rv.Text, &rv.Rating, &rv.CreatedAt}
	var hs domain.HotelSummary
	if withHotel {
		dest = append(dest, &hs.Name, &hs.Description)
	}
	if err := s.Scan(dest...); err != nil {
		return domain.Review{}, err
	}
	if withHotel {
		hs.ID = rv.HotelID
		rv.Hotel = &hs
	}
	return rv, nil
}

func (r *Repo) queryReviews(ctx context.Context, withHotel bool, q string, args ...any) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Review
	for rows.Next() {
		rv, err := scanReview(rows, withHotel)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r *Repo) ListReviews(ctx context.Context, q domain.ListQuery) (domain.Page[domain.Review], error) {
	where, args, err := buildWhere(reviewColumns, q.Filters)
	if err != nil {
		return domain.Page[domain.Review]{}, err
	}
	order, err := buildOrder(reviewColumns, q.Sort)
	if err != nil {
		return domain.Page[domain.Review]{}, err
	}
	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reviews v"+where, args...).Scan(&total); err != nil {
		return domain.Page[domain.Review]{}, err
	}
	items, err := r.queryReviews(ctx, true, reviewWithHotelSQL+where+order+" LIMIT ? OFFSET ?", append(args, q.Limit, q.Offset())...)
	if err != nil {
		return domain.Page[domain.Review]{}, err
	}
	return domain.Page[domain.Review]{Items: items, Total: total}, nil
}

func (r *Repo) ListReviewsByHotel(ctx context.Context, hotelID int64) ([]domain.Review, error) {
	return r.queryReviews(ctx, false, "SELECT "+reviewCols+" FROM reviews v WHERE v.hotel_id = ? ORDER BY v.id", hotelID)
}

func (r *Repo) GetReview(ctx context.Context, id int64) (domain.Review, error) {
	rv, err := scanReview(r.db.QueryRowContext(ctx, reviewWithHotelSQL+" WHERE v.id = ?", id), true)
	return rv, mapErr(err)
}

func (r *Repo) CreateReview(ctx context.Context, rv *domain.Review) error {
	rv.CreatedAt = createdAt(rv.CreatedAt)
	res, err := r.db.ExecContext(ctx, insertReviewSQL, rv.ID, rv.HotelID, rv.UserID, rv.Title, rv.Text, rv.Rating, rv.CreatedAt)
	if err != nil {
		return mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rv.ID = id
	return nil
}

func (r *Repo) UpdateReview(ctx context.Context, rv domain.Review) error {
	_, err := r.db.ExecContext(ctx, updateReviewSQL, rv.Title, rv.Text, rv.Rating, rv.ID)
	return mapErr(err)
}

func (r *Repo) DeleteReview(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repo) AverageRating(ctx context.Context, hotelID int64) (float64, bool, error) {
	var avg sql.NullFloat64
	if err := r.db.QueryRowContext(ctx, averageRatingSQL, hotelID).Scan(&avg); err != nil {
		return 0, false, err
	}
	return avg.Float64, avg.Valid, nil
}

// Purge empties every table; used by the seeder's destroy mode.
func (r *Repo) Purge(ctx context.Context) error {
	for _, t := range []string{"reviews", "rooms", "hotels", "users"} {
		if _, err := r.db.ExecContext(ctx, "DELETE FROM "+t); err != nil {
			return fmt.Errorf("purge %s: %w", t, err)
		}
	}
	return nil
}

var _ domain.Store = (*Repo)(nil)
