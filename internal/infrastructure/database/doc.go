// Package database opens and migrates the station's SQLite store.
//
// One file per station holds the resource/datum documents emitted by
// area-detector captures and the DM workflow audit trail. SQLite fits the
// write pattern here: one daemon process, a handful of inserts per frame,
// dashboards reading through the HTTP API rather than the file.
//
// Schema migrations are plain SQL file pairs (NNN_name.up.sql /
// NNN_name.down.sql) compiled into the binary. The migrations package
// registers them via RegisterMigrations in its init; callers then only
// need:
//
//	db, err := database.Open(cfg.Database)
//	if err != nil { ... }
//	defer db.Close()
//	if err := db.Migrate(ctx); err != nil { ... }
//
// Thread Safety: the embedded *sql.DB is safe for concurrent use; Migrate
// and Rollback are meant for startup and tests, not concurrent callers.
package database
