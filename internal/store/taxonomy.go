// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package store

import (
	"fmt"

	gocache "github.com/patrickmn/go-cache"

	"github.com/daybook-io/daybook/internal/database"
)

// LoadTaxonomyRules returns user-authored classification rules, highest
// priority first.
func (s *Store) LoadTaxonomyRules() ([]database.TaxonomyRule, error) {
	if cached, found := s.cache.Get(cacheKeyTaxonomyRules); found {
		return cached.([]database.TaxonomyRule), nil
	}

	var rules []database.TaxonomyRule
	if err := s.db.Order("priority DESC, id ASC").Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("failed to load taxonomy rules: %w", err)
	}

	s.cache.Set(cacheKeyTaxonomyRules, rules, gocache.DefaultExpiration)
	return rules, nil
}

// CreateTaxonomyRule persists a user rule.
func (s *Store) CreateTaxonomyRule(rule *database.TaxonomyRule) error {
	if rule.Match == "" {
		return fmt.Errorf("taxonomy rule match cannot be empty")
	}
	if err := s.db.Create(rule).Error; err != nil {
		return fmt.Errorf("failed to create taxonomy rule: %w", err)
	}
	s.cache.Delete(cacheKeyTaxonomyRules)
	return nil
}

// RecordTaxonomyPair upserts a resolved (category, subcategory) pair into
// the user's accumulated taxonomy. Idempotent.
func (s *Store) RecordTaxonomyPair(category, subcategory string) error {
	if category == "" {
		return nil
	}

	var entry database.TaxonomyEntry
	err := s.db.Where("category = ? AND subcategory = ?", category, subcategory).
		FirstOrCreate(&entry, database.TaxonomyEntry{Category: category, Subcategory: subcategory}).Error
	if err != nil {
		return fmt.Errorf("failed to record taxonomy pair: %w", err)
	}
	return nil
}

// ListTaxonomyEntries returns the accumulated user taxonomy.
func (s *Store) ListTaxonomyEntries() ([]database.TaxonomyEntry, error) {
	var entries []database.TaxonomyEntry
	if err := s.db.Order("category ASC, subcategory ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list taxonomy entries: %w", err)
	}
	return entries, nil
}
