// Package timezone anchors wall-clock timestamps to the hotel's configured
// zone (APP_TIMEZONE, an IANA name such as "America/Denver"). Stay dates
// are calendar dates and are kept as UTC midnights regardless of the zone.
package timezone

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"aspen/config"
	"aspen/shared/constant"

	"github.com/rs/zerolog/log"
)

var (
	loadOnce    sync.Once
	loaded      atomic.Bool
	appLocation = time.UTC
)

// Load resolves name once; later calls are no-ops. Unknown names fall back to UTC.
func Load(name string) *time.Location {
	loadOnce.Do(func() {
		defer loaded.Store(true)

		if name == constant.Empty {
			log.Warn().Msg("No timezone configured, using UTC")

			return
		}

		loc, err := time.LoadLocation(name)
		if err != nil {
			log.Error().Err(err).Str("timezone", name).Msg("Failed to load timezone, falling back to UTC")

			return
		}

		appLocation = loc

		log.Info().Str("timezone", loc.String()).Msg("Application timezone initialized")
	})

	return appLocation
}

// Location returns the hotel zone, loading it from config on first use.
func Location() *time.Location {
	if loaded.Load() {
		return appLocation
	}

	return Load(config.Get().App.Timezone)
}

// Now returns the current time in the hotel zone.
func Now() time.Time {
	return time.Now().In(Location())
}

// Format renders t in the hotel zone.
func Format(t time.Time, layout string) string {
	return t.In(Location()).Format(layout)
}

// DateOf keeps the calendar date of t, as seen in t's own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()

	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD stay date.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(constant.DateOnlyFormat, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}

	return t, nil
}
