// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package parser

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/daybook-io/daybook/internal/config"
)

// ErrNoCredential is returned when assisted-only mode runs without an API
// key. The capture must be rejected before anything is materialized.
var ErrNoCredential = errors.New("assisted-only parser mode requires an API key")

// Selector chooses and runs exactly one strategy per capture, with
// fallback to the local parser when the mode allows it.
type Selector struct {
	mode     string
	hasKey   bool
	assisted Strategy
	local    Strategy
}

// NewSelector builds a selector from parser configuration. The assisted
// strategy may be nil when no key is configured.
func NewSelector(cfg config.ParserConfig) *Selector {
	s := &Selector{
		mode:   cfg.Mode,
		hasKey: cfg.HasAPIKey(),
		local:  NewLocalStrategy(),
	}
	if s.hasKey {
		s.assisted = NewAssistedStrategy(NewOpenAIClient(cfg.BaseURL, cfg.APIKey, cfg.Model))
	}
	return s
}

// NewSelectorWithStrategies wires explicit strategies, used by tests.
func NewSelectorWithStrategies(mode string, assisted, local Strategy) *Selector {
	return &Selector{
		mode:     mode,
		hasKey:   assisted != nil,
		assisted: assisted,
		local:    local,
	}
}

// Preflight reports the hard abort condition: assisted-only mode with no
// credential. Callers check this before materializing anything.
func (s *Selector) Preflight() error {
	if s.mode == config.ParserModeLLM && !s.hasKey {
		return ErrNoCredential
	}
	return nil
}

// Run executes the configured strategy and returns its result plus the
// name of the strategy that produced it.
//
// Rules: a non-local mode with a key attempts the assisted parser first.
// On assisted failure, hybrid falls back to the local parser while
// assisted-only surfaces the error. An empty assisted result is terminal
// in assisted-only mode but re-parsed locally in hybrid mode.
// Assisted-only mode without a key rejects the capture outright.
func (s *Selector) Run(ctx context.Context, text string, anchorMs int64) (*Result, string, error) {
	if s.mode == config.ParserModeLLM && !s.hasKey {
		return nil, "", ErrNoCredential
	}

	if s.mode != config.ParserModeLocal && s.hasKey {
		result, err := s.assisted.Parse(ctx, text, anchorMs)
		if err != nil {
			if s.mode == config.ParserModeHybrid {
				log.Printf("Assisted parser failed, falling back to local: %v", err)
				return s.runLocal(ctx, text, anchorMs)
			}
			return nil, s.assisted.Name(), fmt.Errorf("assisted parse failed: %w", err)
		}

		if result.Empty() {
			if s.mode == config.ParserModeHybrid {
				log.Printf("Assisted parser returned nothing, running local parser")
				return s.runLocal(ctx, text, anchorMs)
			}
			log.Printf("Assisted parser returned nothing; capture is a no-op")
			return result, s.assisted.Name(), nil
		}

		return result, s.assisted.Name(), nil
	}

	return s.runLocal(ctx, text, anchorMs)
}

func (s *Selector) runLocal(ctx context.Context, text string, anchorMs int64) (*Result, string, error) {
	result, err := s.local.Parse(ctx, text, anchorMs)
	if err != nil {
		return nil, s.local.Name(), fmt.Errorf("local parse failed: %w", err)
	}
	return result, s.local.Name(), nil
}
