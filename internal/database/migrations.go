// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package database

import (
	"fmt"

	"gorm.io/gorm"
)

// Migrate runs all schema migrations
func Migrate(db *gorm.DB) error {
	models := []interface{}{
		&Note{},
		&Event{},
		&Task{},
		&TrackerDef{},
		&Entity{},
		&HabitDef{},
		&TaxonomyRule{},
		&TaxonomyEntry{},
	}

	for _, model := range models {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	return nil
}
