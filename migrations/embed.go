// Package migrations carries the station store schema into the binary.
//
// Importing it for side effects registers the embedded SQL with the
// database package, so deployments never depend on loose .sql files:
//
//	import _ "github.com/BCDA-APS/beamtools/migrations"
package migrations

import (
	"embed"

	"github.com/BCDA-APS/beamtools/internal/infrastructure/database"
)

//go:embed *.sql
var schemaFS embed.FS

func init() {
	database.RegisterMigrations(schemaFS, ".")
}
