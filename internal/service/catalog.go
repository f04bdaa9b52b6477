package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
)

// ImportResult counts what an import did.
type ImportResult struct {
	Created int
	Skipped int
}

// TagSeed is one entry of a tag import file.
type TagSeed struct {
	Name  string `json:"name" validate:"required,max=200"`
	Color string `json:"color" validate:"omitempty,tagcolor"`
	Slug  string `json:"slug" validate:"required,max=200,slug"`
}

// CatalogService loads the admin-managed tag and ingredient catalogs.
type CatalogService struct {
	db       *gorm.DB
	validate *validator.Validate
	tags     *TagService
}

func NewCatalogService(db *gorm.DB, tags *TagService) *CatalogService {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("tagcolor", func(fl validator.FieldLevel) bool {
		return models.TagColorPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return models.SlugPattern.MatchString(fl.Field().String())
	})
	return &CatalogService{db: db, validate: v, tags: tags}
}

// ImportIngredients reads "name,measurement_unit" rows after a header line
// and creates the pairs that do not exist yet.
func (s *CatalogService) ImportIngredients(ctx context.Context, r io.Reader) (ImportResult, error) {
	var res ImportResult

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		return res, fmt.Errorf("failed to read header: %w", err)
	}

	db := s.db.WithContext(ctx)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("line %d: %w", line, err)
		}
		if len(row) < 2 {
			return res, fmt.Errorf("line %d: expected name and measurement unit", line)
		}
		name, unit := strings.TrimSpace(row[0]), strings.TrimSpace(row[1])
		if name == "" || unit == "" {
			res.Skipped++
			continue
		}

		ing := models.Ingredient{Name: name, MeasurementUnit: unit}
		out := db.Where(&ing).FirstOrCreate(&ing)
		if out.Error != nil {
			return res, fmt.Errorf("line %d: failed to save ingredient: %w", line, out.Error)
		}
		if out.RowsAffected > 0 {
			res.Created++
		} else {
			res.Skipped++
		}
	}

	logging.Ctx(ctx).Info().Int("created", res.Created).Int("skipped", res.Skipped).Msg("ingredients imported")
	return res, nil
}

// ImportTags reads a JSON array of tags, validates every entry and creates
// the ones whose slug is new. Nothing is written if any entry is invalid.
func (s *CatalogService) ImportTags(ctx context.Context, r io.Reader) (ImportResult, error) {
	var res ImportResult

	var seeds []TagSeed
	if err := json.NewDecoder(r).Decode(&seeds); err != nil {
		return res, fmt.Errorf("failed to decode tags: %w", err)
	}

	for i := range seeds {
		seeds[i].Color = strings.ToUpper(strings.TrimSpace(seeds[i].Color))
		if seeds[i].Color == "" {
			seeds[i].Color = models.DefaultTagColor
		}
		if err := s.validate.Struct(seeds[i]); err != nil {
			return res, fmt.Errorf("tag %d (%s): %w", i, seeds[i].Slug, err)
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, seed := range seeds {
			tag := models.Tag{Name: seed.Name, Color: seed.Color, Slug: seed.Slug}
			out := tx.Where(models.Tag{Slug: seed.Slug}).Attrs(tag).FirstOrCreate(&tag)
			if out.Error != nil {
				if isUniqueViolation(out.Error) {
					return fmt.Errorf("tag %s: name already used by another tag", seed.Slug)
				}
				return out.Error
			}
			if out.RowsAffected > 0 {
				res.Created++
			} else {
				res.Skipped++
			}
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, fmt.Errorf("failed to import tags: %w", err)
	}

	if s.tags != nil {
		s.tags.Invalidate()
	}
	logging.Ctx(ctx).Info().Int("created", res.Created).Int("skipped", res.Skipped).Msg("tags imported")
	return res, nil
}
