package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/service"
)

type options struct {
	ingredients string
	tags        string
	stats       bool
}

func main() {
	var opts options
	flag.StringVar(&opts.ingredients, "ingredients", "", "CSV file of name,measurement_unit rows")
	flag.StringVar(&opts.tags, "tags", "", "JSON file with an array of {name, color, slug}")
	flag.BoolVar(&opts.stats, "stats", false, "Print how many users favorited each recipe")
	flag.Parse()

	if opts.ingredients == "" && opts.tags == "" && !opts.stats {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	db, err := database.Open(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	if cfg.AutoMigrate {
		if err := database.RunMigrations(db, cfg.Migrations); err != nil {
			logging.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	if err := run(context.Background(), db, opts, os.Stdout); err != nil {
		logging.Fatal().Err(err).Msg("import failed")
	}
}

func run(ctx context.Context, db *gorm.DB, opts options, out io.Writer) error {
	tags, err := service.NewTagService(db)
	if err != nil {
		return err
	}
	catalog := service.NewCatalogService(db, tags)

	if opts.ingredients != "" {
		res, err := importFile(opts.ingredients, func(r io.Reader) (service.ImportResult, error) {
			return catalog.ImportIngredients(ctx, r)
		})
		if err != nil {
			return fmt.Errorf("ingredients: %w", err)
		}
		fmt.Fprintf(out, "ingredients: %d created, %d skipped\n", res.Created, res.Skipped)
	}

	if opts.tags != "" {
		res, err := importFile(opts.tags, func(r io.Reader) (service.ImportResult, error) {
			return catalog.ImportTags(ctx, r)
		})
		if err != nil {
			return fmt.Errorf("tags: %w", err)
		}
		fmt.Fprintf(out, "tags: %d created, %d skipped\n", res.Created, res.Skipped)
	}

	if opts.stats {
		// FavoriteCounts never touches images
		counts, err := service.NewRecipeService(db, nil).FavoriteCounts(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tRECIPE\tFAVORITES")
		for _, c := range counts {
			fmt.Fprintf(tw, "%d\t%s\t%d\n", c.RecipeID, c.Name, c.FavoriteCount)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func importFile(path string, load func(io.Reader) (service.ImportResult, error)) (service.ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return service.ImportResult{}, err
	}
	defer f.Close()
	return load(f)
}
