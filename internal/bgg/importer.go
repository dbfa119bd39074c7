// Package bgg imports game metadata from BoardGameGeek.
//
// The pipeline is: recognise a game page URL, fetch its XML "thing" document,
// pull fields out with an Extractor, bucket the numeric ones and insert a
// models.Game row.
package bgg

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"gamecatalog/backend/internal/logging"
	"gamecatalog/backend/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var gamePath = regexp.MustCompile(`^/boardgame(?:expansion)?/(\d+)(?:/|$)`)

// ParseGameID extracts the numeric ID from a game page URL such as
// https://boardgamegeek.com/boardgame/174430/gloomhaven.
func ParseGameID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err == nil && u.Scheme == "" && u.Host == "" && raw != "" {
		// Pasted without a scheme, e.g. "boardgamegeek.com/boardgame/13".
		u, err = url.Parse("https://" + raw)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	host := strings.ToLower(u.Hostname())
	if host != "boardgamegeek.com" && host != "www.boardgamegeek.com" {
		return "", fmt.Errorf("%w: unexpected host %q", ErrInvalidURL, host)
	}
	m := gamePath.FindStringSubmatch(u.Path)
	if m == nil {
		return "", fmt.Errorf("%w: no game id in path %q", ErrInvalidURL, u.Path)
	}
	return m[1], nil
}

// Importer turns BoardGameGeek URLs into catalog rows.
type Importer struct {
	db        *gorm.DB
	fetcher   Fetcher
	extractor Extractor
	upsert    bool
}

// Option configures an Importer.
type Option func(*Importer)

// WithUpsert makes re-imports of a known bgg_id update the existing row
// instead of inserting another one.
func WithUpsert(enabled bool) Option {
	return func(im *Importer) { im.upsert = enabled }
}

// WithExtractor replaces the default PatternExtractor.
func WithExtractor(ex Extractor) Option {
	return func(im *Importer) { im.extractor = ex }
}

// NewImporter returns an insert-only importer unless WithUpsert is given.
func NewImporter(db *gorm.DB, fetcher Fetcher, opts ...Option) *Importer {
	im := &Importer{
		db:        db,
		fetcher:   fetcher,
		extractor: PatternExtractor{},
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// ImportFromURL fetches, normalizes and stores the game behind rawURL and
// returns the persisted row. Errors wrap ErrInvalidURL, ErrUpstreamFetch or
// ErrPersistence. Nothing is retried.
func (im *Importer) ImportFromURL(ctx context.Context, rawURL string) (*models.Game, error) {
	id, err := ParseGameID(rawURL)
	if err != nil {
		return nil, err
	}

	log := logging.Ctx(ctx).With().Str("bgg_id", id).Logger()

	doc, err := im.fetcher.FetchThing(ctx, id)
	if err != nil {
		log.Warn().Err(err).Msg("BGG fetch failed")
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFetch, err)
	}

	game := NewGame(Parse(im.extractor, doc), id, rawURL)

	if im.upsert {
		err = im.upsertGame(ctx, game)
	} else {
		err = im.db.WithContext(ctx).Create(game).Error
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to persist imported game")
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	log.Info().Uint("game_id", game.ID).Str("title", game.Title).Bool("upsert", im.upsert).Msg("game imported")
	return game, nil
}

// NewGame builds an unsaved catalog row from extracted fields.
func NewGame(t Thing, bggID, sourceURL string) *models.Game {
	return &models.Game{
		Title:            t.Name,
		Description:      t.Description,
		ImageURL:         t.Image,
		AdditionalImages: datatypes.JSONSlice[string]{},
		Difficulty:       DifficultyBucket(t.AverageWeight),
		GameType:         models.GameTypeBoardGame,
		PlayTime:         PlayTimeBucket(t.PlayingTime),
		MinPlayers:       t.MinPlayers,
		MaxPlayers:       t.MaxPlayers,
		SuggestedAge:     AgeLabel(t.MinAge),
		BGGID:            bggID,
		BGGURL:           strings.TrimSpace(sourceURL),
	}
}

// upsertGame refreshes the imported columns of the oldest row with the same
// bgg_id, keeping curated data (tags, extra images), or inserts a new row.
func (im *Importer) upsertGame(ctx context.Context, game *models.Game) error {
	return im.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Game
		err := tx.Where("bgg_id = ?", game.BGGID).Order("id").First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(game).Error
		}
		if err != nil {
			return err
		}

		err = tx.Model(&existing).
			Select("Title", "Description", "ImageURL", "Difficulty", "GameType", "PlayTime",
				"MinPlayers", "MaxPlayers", "SuggestedAge", "BGGURL").
			Updates(game).Error
		if err != nil {
			return err
		}
		return tx.First(game, existing.ID).Error
	})
}
