package catalog

import "database/sql"

// Actor is the read model returned by actor queries.
// Two actors may share an Identity; ID is what makes them distinct.
type Actor struct {
	ID        int64
	Identity  string
	Birthdate sql.NullTime
}

// Tables lists the catalog tables in dependency order.
var Tables = []string{"director", "country", "film", "film_country", "actor", "role"}

// TableStats holds the row count of one table.
type TableStats struct {
	Table string `json:"table"`
	Rows  int64  `json:"rows"`
}
