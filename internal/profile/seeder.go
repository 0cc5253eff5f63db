package profile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/m3rciful/weatherbot/core/bootstrap"
)

// ImportSeeder copies profiles from a legacy JSON file into svc's store.
// A missing file is not an error; a malformed one is.
func ImportSeeder(path string, svc *Service) bootstrap.Seeder {
	return bootstrap.SeederFunc(func(ctx context.Context) error {
		if path == "" {
			return nil
		}
		legacy, err := NewFileStore(path).Load(ctx)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("import profiles: %w", err)
		}
		n := svc.Import(ctx, legacy)
		svc.log.LogAttrs(ctx, slog.LevelInfo, "profiles imported",
			slog.String("event", "profiles.import"),
			slog.String("path", path),
			slog.Int("profiles", n),
		)
		return nil
	})
}
