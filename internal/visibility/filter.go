package visibility

import (
	"gorm.io/gorm"
)

// Scopes for content listing queries. Every public listing surface
// composes these so hidden content, suspended authors, and excluded
// authors are filtered in the database rather than after the fact.

// NotHidden filters out auto-hidden and admin-hidden rows
func NotHidden(db *gorm.DB) *gorm.DB {
	return db.Where("is_hidden = ?", false)
}

// ExcludeAuthors filters rows whose author column is in the exclusion
// set. An empty set applies no condition.
func ExcludeAuthors(set Set, column string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		ids := set.IDs()
		if len(ids) == 0 {
			return db
		}
		return db.Where(column+" NOT IN ?", ids)
	}
}

// ExcludeSuspendedAuthors filters rows authored by suspended accounts
func ExcludeSuspendedAuthors(column string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" NOT IN (?)",
			db.Session(&gorm.Session{NewDB: true}).
				Table("users").
				Select("id").
				Where("is_suspended = ?", true))
	}
}

// MatchKeyword applies a case-insensitive substring match across the
// given columns
func MatchKeyword(keyword string, columns ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if keyword == "" || len(columns) == 0 {
			return db
		}
		pattern := "%" + keyword + "%"
		clause := columns[0] + " ILIKE ?"
		args := []interface{}{pattern}
		for _, col := range columns[1:] {
			clause += " OR " + col + " ILIKE ?"
			args = append(args, pattern)
		}
		return db.Where("("+clause+")", args...)
	}
}

// MatchGenres filters rows whose genres array overlaps the given list
func MatchGenres(genres []string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if len(genres) == 0 {
			return db
		}
		arr := "{"
		for i, g := range genres {
			if i > 0 {
				arr += ","
			}
			arr += g
		}
		arr += "}"
		return db.Where("genres && ?", arr)
	}
}

// Cursor implements keyset pagination anchored on the last item the
// client has seen. Pages are ordered newest first with the row ID as
// tiebreaker so identical timestamps cannot skip or repeat items.
type Cursor struct {
	AfterID string
	Limit   int
}

// Apply adds ordering, the keyset condition, and the limit to a query.
// The table name is needed to anchor the subquery that looks up the
// cursor row's position. A cursor whose anchor row no longer exists is
// treated as absent, so a client paging past a deleted post gets the
// first page back instead of a silently empty one.
func (c Cursor) Apply(db *gorm.DB, table string) *gorm.DB {
	q := db.Order(table + ".created_at DESC, " + table + ".id DESC")
	if c.AfterID != "" {
		q = q.Where(
			"(("+table+".created_at, "+table+".id) < (SELECT created_at, id FROM "+table+" WHERE id = ?)"+
				" OR NOT EXISTS (SELECT 1 FROM "+table+" WHERE id = ?))",
			c.AfterID, c.AfterID,
		)
	}
	if c.Limit > 0 {
		q = q.Limit(c.Limit)
	}
	return q
}

// NextCursor returns the cursor for the following page, or empty when
// the page came back short and there is nothing more to fetch.
func NextCursor(ids []string, limit int) string {
	if limit <= 0 || len(ids) < limit {
		return ""
	}
	return ids[len(ids)-1]
}
