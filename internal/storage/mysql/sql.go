package mysql

const insertHotelSQL = `
INSERT INTO hotels
  (id, name, location, image, description, price, rating, stripe_price_id)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?)
`

const updateHotelSQL = `
UPDATE hotels
SET name = ?, location = ?, image = ?, description = ?, price = ?,
    updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`

const updateHotelPriceSQL = `
UPDATE hotels SET price = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
`

const setStripePriceIDSQL = `
UPDATE hotels SET stripe_price_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
`

const deleteHotelSQL = `DELETE FROM hotels WHERE id = ?`

const getHotelSQL = `
SELECT h.id, h.name, h.location, h.image, h.description, h.price, h.rating,
       h.stripe_price_id,
       GROUP_CONCAT(r.id ORDER BY r.id) AS review_ids
FROM hotels h
LEFT JOIN reviews r ON r.hotel_id = h.id
WHERE h.id = ?
GROUP BY h.id
`

// listHotelsSelect feeds the listing planner's projection: identity, facets,
// price, rating, and the review reference list. The embedding never lives in
// this store, so it cannot leak out of it.
const listHotelsSelect = `
SELECT h.id, h.name, h.location, h.image, h.price, h.rating,
       COUNT(r.id) AS review_count,
       GROUP_CONCAT(r.id ORDER BY r.id) AS review_ids
FROM hotels h
LEFT JOIN reviews r ON r.hotel_id = h.id
`

const countHotelsSelect = `SELECT COUNT(*) FROM hotels h`

const listLocationsSQL = `SELECT DISTINCT location FROM hotels ORDER BY location`

const insertReviewSQL = `
INSERT INTO reviews (hotel_id, rating, comment, user_id, full_name)
VALUES (?, ?, ?, ?, ?)
`

const listReviewsSQL = `
SELECT id, hotel_id, rating, comment, user_id, full_name, created_at
FROM reviews
WHERE hotel_id = ?
ORDER BY id
`

// Aggregate rating follows the review average; NULL again if the last
// review goes away.
const refreshRatingSQL = `
UPDATE hotels
SET rating = (SELECT AVG(rating) FROM reviews WHERE hotel_id = ?),
    updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`
