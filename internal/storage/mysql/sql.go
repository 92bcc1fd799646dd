package mysql

const hotelCols = `h.id, h.user_id, h.name, h.description, h.website, h.phone, h.email, h.address,
  h.lat, h.lng, h.formatted_address, h.zipcode, h.photo, h.average_cost, h.average_rating, h.created_at`

const roomCols = `r.id, r.hotel_id, r.user_id, r.title, r.description, r.available, r.cost,
  r.room_type, r.minimum_occupancy, r.photo, r.created_at`

// Note: `text` is reserved; keep it quoted everywhere.
const reviewCols = "v.id, v.hotel_id, v.user_id, v.title, v.`text`, v.rating, v.created_at"

const insertUserSQL = `
INSERT INTO users (id, name, email, role, password_hash, created_at)
VALUES (NULLIF(?, 0), ?, ?, ?, ?, ?)
`

const getUserSQL = `SELECT id, name, email, role, created_at FROM users WHERE id = ?`

const insertHotelSQL = `
INSERT INTO hotels
  (id, user_id, name, description, website, phone, email, address,
   lat, lng, formatted_address, zipcode, photo, created_at)
VALUES
  (NULLIF(?, 0), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// Owner, photo and the derived averages are not client writable.
const updateHotelSQL = `
UPDATE hotels SET
  name              = ?,
  description       = ?,
  website           = ?,
  phone             = ?,
  email             = ?,
  address           = ?,
  lat               = ?,
  lng               = ?,
  formatted_address = ?,
  zipcode           = ?
WHERE id = ?
`

const getHotelSQL = `SELECT ` + hotelCols + ` FROM hotels h WHERE h.id = ?`

const hotelByOwnerSQL = `SELECT ` + hotelCols + ` FROM hotels h WHERE h.user_id = ? ORDER BY h.id LIMIT 1`

const hotelsInBoundsSQL = `SELECT ` + hotelCols + ` FROM hotels h
WHERE h.lat IS NOT NULL AND h.lng IS NOT NULL AND h.lat BETWEEN ? AND ?`

const insertRoomSQL = `
INSERT INTO rooms
  (id, hotel_id, user_id, title, description, available, cost, room_type, minimum_occupancy, photo, created_at)
VALUES
  (NULLIF(?, 0), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const updateRoomSQL = `
UPDATE rooms SET
  title             = ?,
  description       = ?,
  available         = ?,
  cost              = ?,
  room_type         = ?,
  minimum_occupancy = ?
WHERE id = ?
`

const roomWithHotelSQL = `SELECT ` + roomCols + `, h.name, h.description
FROM rooms r JOIN hotels h ON h.id = r.hotel_id`

const averageCostSQL = `SELECT AVG(cost) FROM rooms WHERE hotel_id = ?`

const insertReviewSQL = "INSERT INTO reviews (id, hotel_id, user_id, title, `text`, rating, created_at)\n" +
	"VALUES (NULLIF(?, 0), ?, ?, ?, ?, ?, ?)"

const updateReviewSQL = "UPDATE reviews SET title = ?, `text` = ?, rating = ? WHERE id = ?"

const reviewWithHotelSQL = `SELECT ` + reviewCols + `, h.name, h.description
FROM reviews v JOIN hotels h ON h.id = v.hotel_id`

const averageRatingSQL = `SELECT AVG(rating) FROM reviews WHERE hotel_id = ?`
