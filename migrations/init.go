package migrations

import (
	"io/fs"

	activities "github.com/goliatone/go-activities"
)

func init() {
	coreFS, err := fs.Sub(activities.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return
	}
	Register(CoreSource, coreFS)
}
