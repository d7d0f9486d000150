package settings

import (
	"context"
	"errors"
	"fmt"

	"marketplace-console/internal/forms"
	"marketplace-console/internal/models"
	"marketplace-console/internal/querycache"
	"marketplace-console/internal/realtime"
	"marketplace-console/internal/seo"
	"marketplace-console/internal/store"
)

// Service reads and upserts the SEO singleton and per-agent CS settings.
// Values are handed to callers explicitly; nothing reads them ambiently.
type Service struct {
	seo   store.Collection[models.SEOSettings]
	cs    store.Collection[models.CSUserSettings]
	cache *querycache.Cache
	hub   *realtime.Hub
}

// NewService creates a settings service. cache and hub may be nil.
func NewService(seoTable store.Collection[models.SEOSettings], cs store.Collection[models.CSUserSettings], cache *querycache.Cache, hub *realtime.Hub) *Service {
	return &Service{seo: seoTable, cs: cs, cache: cache, hub: hub}
}

// DefaultSEO is returned before the settings row is first saved
func DefaultSEO() *models.SEOSettings {
	return &models.SEOSettings{ID: models.SEOSettingsID, DefaultLocale: "id"}
}

// DefaultCS is returned for an agent who never saved preferences
func DefaultCS(userID string) *models.CSUserSettings {
	return &models.CSUserSettings{
		UserID:             userID,
		Language:           "id",
		MaxConcurrentChats: 3,
		AutoAssign:         true,
		SoundNotifications: true,
	}
}

// SEO returns the saved SEO settings or the defaults
func (s *Service) SEO(ctx context.Context) (*models.SEOSettings, error) {
	load := func() (*models.SEOSettings, error) {
		row, err := s.seo.Get(ctx, models.SEOSettingsID)
		if errors.Is(err, store.ErrNotFound) {
			return DefaultSEO(), nil
		}
		return row, err
	}
	if s.cache == nil {
		return load()
	}
	return querycache.Fetch(s.cache, models.CollectionSEOSettings, models.SEOSettingsID, load)
}

// UpdateSEO validates the submitted fields and writes them, creating the row on first save
func (s *Service) UpdateSEO(ctx context.Context, raw map[string]string) (*models.SEOSettings, error) {
	values, err := forms.SEOSettingsForm.Bind(raw, true)
	if err != nil {
		return nil, err
	}

	_, err = s.seo.Get(ctx, models.SEOSettingsID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		values["id"] = models.SEOSettingsID
		if _, ok := values["default_locale"]; !ok {
			values["default_locale"] = "id"
		}
		if _, err := s.seo.Insert(ctx, values); err != nil {
			return nil, fmt.Errorf("failed to create seo settings: %w", err)
		}
		s.changed(models.CollectionSEOSettings, realtime.EventInsert, models.SEOSettingsID)
	case err != nil:
		return nil, err
	default:
		if err := s.seo.Update(ctx, models.SEOSettingsID, values); err != nil {
			return nil, fmt.Errorf("failed to update seo settings: %w", err)
		}
		s.changed(models.CollectionSEOSettings, realtime.EventUpdate, models.SEOSettingsID)
	}
	return s.seo.Get(ctx, models.SEOSettingsID)
}

// Score computes the SEO score of the saved settings
func (s *Service) Score(ctx context.Context) (seo.Report, error) {
	settings, err := s.SEO(ctx)
	if err != nil {
		return seo.Report{}, err
	}
	return seo.Score(*settings), nil
}

// CS returns an agent's preferences or the defaults
func (s *Service) CS(ctx context.Context, userID string) (*models.CSUserSettings, error) {
	row, err := s.findCS(ctx, userID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return DefaultCS(userID), nil
	}
	return row, nil
}

// UpdateCS validates and upserts an agent's preferences
func (s *Service) UpdateCS(ctx context.Context, userID string, raw map[string]string) (*models.CSUserSettings, error) {
	if userID == "" {
		return nil, &forms.ValidationError{Form: forms.CSSettingsForm.Name, Fields: []forms.FieldError{{Field: "user_id", Message: "is required"}}}
	}
	values, err := forms.CSSettingsForm.Bind(raw, true)
	if err != nil {
		return nil, err
	}

	row, err := s.findCS(ctx, userID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		d := DefaultCS(userID)
		insert := map[string]interface{}{
			"user_id":              userID,
			"language":             d.Language,
			"max_concurrent_chats": d.MaxConcurrentChats,
			"auto_assign":          d.AutoAssign,
			"sound_notifications":  d.SoundNotifications,
		}
		for k, v := range values {
			insert[k] = v
		}
		id, err := s.cs.Insert(ctx, insert)
		if err != nil {
			return nil, fmt.Errorf("failed to create cs settings: %w", err)
		}
		s.changed(models.CollectionCSUserSettings, realtime.EventInsert, id)
		return s.cs.Get(ctx, id)
	}

	if err := s.cs.Update(ctx, row.ID, values); err != nil {
		return nil, fmt.Errorf("failed to update cs settings: %w", err)
	}
	s.changed(models.CollectionCSUserSettings, realtime.EventUpdate, row.ID)
	return s.cs.Get(ctx, row.ID)
}

func (s *Service) findCS(ctx context.Context, userID string) (*models.CSUserSettings, error) {
	rows, err := s.cs.Select(ctx, store.Query{Filters: map[string]interface{}{"user_id": userID}, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (s *Service) changed(collection string, typ realtime.EventType, id string) {
	if s.cache != nil {
		s.cache.Invalidate(collection)
	}
	if s.hub != nil {
		s.hub.Notify(collection, typ, id)
	}
}
