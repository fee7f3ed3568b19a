// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package parser

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daybook-io/daybook/internal/config"
)

func anchorAt(hour int) int64 {
	return time.Date(2025, 3, 10, hour, 0, 0, 0, time.Local).UnixMilli()
}

func TestLocalParseSingleEvent(t *testing.T) {
	result := ParseCaptureNatural("walked the dog", anchorAt(9))
	require.Len(t, result.Events, 1)
	assert.Equal(t, "Walked the dog", result.Events[0].Title)
	assert.Nil(t, result.Events[0].StartAt)
	assert.False(t, result.Events[0].ExplicitTime)
}

func TestLocalParseSplitsClauses(t *testing.T) {
	result := ParseCaptureNatural("lunch with Sam. Walked after", anchorAt(12))
	require.Len(t, result.Events, 2)
	assert.Contains(t, result.Events[0].People, "Sam")
}

func TestLocalParseTaskDetection(t *testing.T) {
	result := ParseCaptureNatural("need to call the dentist", anchorAt(9))
	assert.Empty(t, result.Events)
	require.Len(t, result.Tasks, 1)
	assert.Equal(t, KindTask, result.Tasks[0].Kind)
	assert.Equal(t, "Call the dentist", result.Tasks[0].Title)
}

func TestLocalParseChecklistAttachesToTask(t *testing.T) {
	text := "need to pack for the trip\n- passport\n- [x] chargers\n- socks"
	result := ParseCaptureNatural(text, anchorAt(9))
	require.Len(t, result.Tasks, 1)
	assert.Equal(t, []string{"passport", "chargers", "socks"}, result.Tasks[0].Checklist)
}

func TestLocalParseCompletedTask(t *testing.T) {
	result := ParseCaptureNatural("done: filed the expense report", anchorAt(9))
	require.Len(t, result.Tasks, 1)
	assert.True(t, result.Tasks[0].Completed)
}

func TestLocalParseExplicitRange(t *testing.T) {
	result := ParseCaptureNatural("standup meeting 9-9:30am", anchorAt(8))
	require.Len(t, result.Events, 1)
	ev := result.Events[0]
	require.NotNil(t, ev.StartAt)
	require.NotNil(t, ev.EndAt)
	assert.True(t, ev.ExplicitTime)
	start := time.UnixMilli(*ev.StartAt)
	assert.Equal(t, 9, start.Hour())
	end := time.UnixMilli(*ev.EndAt)
	assert.Equal(t, 30, end.Minute())
}

func TestLocalParseBareRangeIsNotATime(t *testing.T) {
	result := ParseCaptureNatural("reviewed chapters 7-8 of the manuscript", anchorAt(9))
	require.Len(t, result.Events, 1)
	assert.False(t, result.Events[0].ExplicitTime)
	assert.Nil(t, result.Events[0].StartAt)
}

func TestLocalParseReadingOnlyClauseIsNotAnEvent(t *testing.T) {
	result := ParseCaptureNatural("mood was 7-8 today", anchorAt(9))
	assert.Empty(t, result.Events)
}

func TestLocalParseEpisodeClauseIsNotAnEvent(t *testing.T) {
	result := ParseCaptureNatural("started my period", anchorAt(9))
	assert.Empty(t, result.Events)
}

func TestLocalParseAtTimeWithDuration(t *testing.T) {
	result := ParseCaptureNatural("dentist at 3pm ~45 min", anchorAt(9))
	require.Len(t, result.Events, 1)
	ev := result.Events[0]
	require.NotNil(t, ev.StartAt)
	start := time.UnixMilli(*ev.StartAt)
	end := time.UnixMilli(*ev.EndAt)
	assert.Equal(t, 15, start.Hour())
	assert.Equal(t, 45*time.Minute, end.Sub(start))
}

func TestLocalParseStripsSignalTokens(t *testing.T) {
	result := ParseCaptureNatural("deep work session #work !4 ~2h", anchorAt(9))
	require.Len(t, result.Events, 1)
	ev := result.Events[0]
	assert.Equal(t, "Deep work session", ev.Title)
	assert.Equal(t, 4, ev.Importance)
	assert.Equal(t, 120, ev.DurationMinutes)
	assert.Contains(t, ev.Tags, "work")
}

func TestLocalParsePicksUpMealAndWorkout(t *testing.T) {
	result := ParseCaptureNatural("lunch: chicken and rice. gym after, bench 3x10", anchorAt(12))
	require.Len(t, result.Meals, 1)
	assert.Equal(t, "lunch", result.Meals[0].Kind)
	require.Len(t, result.Workouts, 1)
	require.Len(t, result.Workouts[0].Exercises, 1)
}

func TestLocalStrategyNeverErrors(t *testing.T) {
	s := NewLocalStrategy()
	result, err := s.Parse(context.Background(), "", anchorAt(9))
	require.NoError(t, err)
	assert.True(t, result.Empty())
}

func TestDecodeResultContentPlainJSON(t *testing.T) {
	result, err := decodeResultContent(`{"events":[{"title":"Walk"}],"tasks":[{"title":"Buy milk"}]}`)
	require.NoError(t, err)
	require.Len(t, result.Events, 1)
	assert.Equal(t, KindEvent, result.Events[0].Kind)
	require.Len(t, result.Tasks, 1)
	assert.Equal(t, KindTask, result.Tasks[0].Kind)
}

func TestDecodeResultContentFencedJSON(t *testing.T) {
	result, err := decodeResultContent("```json\n{\"events\":[],\"tasks\":[{\"title\":\"Call mom\"}]}\n```")
	require.NoError(t, err)
	require.Len(t, result.Tasks, 1)
}

func TestDecodeResultContentGarbage(t *testing.T) {
	_, err := decodeResultContent("sorry, I cannot help with that")
	assert.Error(t, err)
}

func TestSelectorLLMModeWithoutKeyRejects(t *testing.T) {
	s := NewSelector(config.ParserConfig{Mode: config.ParserModeLLM})
	_, _, err := s.Run(context.Background(), "walked", anchorAt(9))
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestSelectorLocalModeIgnoresAssisted(t *testing.T) {
	mock := &MockClient{}
	s := NewSelectorWithStrategies(config.ParserModeLocal, NewAssistedStrategy(mock), NewLocalStrategy())
	result, name, err := s.Run(context.Background(), "walked the dog", anchorAt(9))
	require.NoError(t, err)
	assert.Equal(t, "local", name)
	assert.Len(t, result.Events, 1)
	assert.Equal(t, 0, mock.CallCount)
}

func TestSelectorHybridFallsBackOnError(t *testing.T) {
	mock := &MockClient{
		ParseCaptureFunc: func(ctx context.Context, text string, anchorMs int64) (*Result, error) {
			return nil, fmt.Errorf("rate limited")
		},
	}
	s := NewSelectorWithStrategies(config.ParserModeHybrid, NewAssistedStrategy(mock), NewLocalStrategy())
	result, name, err := s.Run(context.Background(), "walked the dog", anchorAt(9))
	require.NoError(t, err)
	assert.Equal(t, "local", name)
	assert.Len(t, result.Events, 1)
	assert.Equal(t, 1, mock.CallCount)
}

func TestSelectorLLMModeSurfacesError(t *testing.T) {
	mock := &MockClient{
		ParseCaptureFunc: func(ctx context.Context, text string, anchorMs int64) (*Result, error) {
			return nil, fmt.Errorf("rate limited")
		},
	}
	s := NewSelectorWithStrategies(config.ParserModeLLM, NewAssistedStrategy(mock), NewLocalStrategy())
	_, _, err := s.Run(context.Background(), "walked the dog", anchorAt(9))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestSelectorHybridRerunsLocalOnEmpty(t *testing.T) {
	mock := &MockClient{}
	s := NewSelectorWithStrategies(config.ParserModeHybrid, NewAssistedStrategy(mock), NewLocalStrategy())
	result, name, err := s.Run(context.Background(), "walked the dog", anchorAt(9))
	require.NoError(t, err)
	assert.Equal(t, "local", name)
	assert.Len(t, result.Events, 1)
}

func TestSelectorLLMModeEmptyIsTerminal(t *testing.T) {
	mock := &MockClient{}
	s := NewSelectorWithStrategies(config.ParserModeLLM, NewAssistedStrategy(mock), NewLocalStrategy())
	result, name, err := s.Run(context.Background(), "walked the dog", anchorAt(9))
	require.NoError(t, err)
	assert.Equal(t, "assisted", name)
	assert.True(t, result.Empty())
}

func TestSelectorPrefersAssistedResult(t *testing.T) {
	mock := &MockClient{
		ParseCaptureFunc: func(ctx context.Context, text string, anchorMs int64) (*Result, error) {
			return &Result{Events: []Item{{Kind: KindEvent, Title: "Walk"}}}, nil
		},
	}
	s := NewSelectorWithStrategies(config.ParserModeHybrid, NewAssistedStrategy(mock), NewLocalStrategy())
	result, name, err := s.Run(context.Background(), "walked the dog", anchorAt(9))
	require.NoError(t, err)
	assert.Equal(t, "assisted", name)
	require.Len(t, result.Events, 1)
	assert.Equal(t, "Walk", result.Events[0].Title)
}
