// seed creates a demo account with a handful of travel plans in the
// configured store. Re-running it leaves existing data alone.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"time"

	"github.com/ErlanBelekov/travel-ease/config"
	"github.com/ErlanBelekov/travel-ease/internal/domain"
	"github.com/ErlanBelekov/travel-ease/internal/email"
	"github.com/ErlanBelekov/travel-ease/internal/infrastructure/imagestore"
	"github.com/ErlanBelekov/travel-ease/internal/infrastructure/mongo"
	"github.com/ErlanBelekov/travel-ease/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/travel-ease/internal/repository"
	"github.com/ErlanBelekov/travel-ease/internal/token"
	"github.com/ErlanBelekov/travel-ease/internal/usecase"
)

const (
	seedName     = "Demo Traveler"
	seedEmail    = "demo@travelease.local"
	seedPassword = "travelease-demo"
)

type planSpec struct {
	title     string
	plan      string
	locations []string
	inDays    int
}

var plans = []planSpec{
	{"Cherry blossoms in Kyoto", "Philosopher's Path at dawn, then Fushimi Inari before the crowds.", []string{"Kyoto", "Nara"}, 30},
	{"Lisbon long weekend", "Tram 28, pastel de nata tasting, sunset at Miradouro da Senhora do Monte.", []string{"Lisbon", "Sintra"}, 45},
	{"Iceland ring road", "Ten days clockwise. Book the Myvatn baths in advance.", []string{"Reykjavik", "Vik", "Akureyri"}, 120},
	{"Issyk-Kul summer", "Yurt camp on the south shore, hike to Skazka canyon.", []string{"Karakol", "Cholpon-Ata"}, 200},
	{"Patagonia trek", "W trek in Torres del Paine, refugios booked.", []string{}, 365},
}

func main() {
	if err := run(context.Background()); err != nil {
		log.Fatalf("seed: %v", err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	users, planRepo, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	images, err := openImages(ctx, cfg)
	if err != nil {
		return err
	}

	tokens := token.NewService([]byte(cfg.JWTSecret))
	mailer := email.NewSender("local", "", "", logger)
	authUsecase := usecase.NewAuthUsecase(users, tokens, mailer, cfg.BcryptCost, logger)
	planUsecase := usecase.NewPlanUsecase(planRepo, images, cfg.PlaceholderImageURL(), logger)

	account, err := authUsecase.Register(ctx, usecase.RegisterInput{
		FullName: seedName,
		Email:    seedEmail,
		Password: seedPassword,
	})
	if errors.Is(err, domain.ErrEmailTaken) {
		account, err = authUsecase.Login(ctx, seedEmail, seedPassword)
	}
	if err != nil {
		return fmt.Errorf("demo account: %w", err)
	}

	existing, err := planUsecase.ListPlans(ctx, account.User.ID)
	if err != nil {
		return fmt.Errorf("list plans: %w", err)
	}

	var inserted int
	placeholder := cfg.PlaceholderImageURL()
	if len(existing) == 0 {
		for _, spec := range plans {
			date := time.Now().AddDate(0, 0, spec.inDays).Truncate(24 * time.Hour).UnixMilli()
			_, err := planUsecase.CreatePlan(ctx, account.User.ID, usecase.PlanInput{
				Title:           spec.title,
				Plan:            spec.plan,
				PlannedLocation: spec.locations,
				ImageURL:        &placeholder,
				PlannedDate:     &date,
			})
			if err != nil {
				return fmt.Errorf("create plan %q: %w", spec.title, err)
			}
			inserted++
		}
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  Store:         %s\n", cfg.StoreDriver)
	fmt.Printf("  User:          %s / %s\n", seedEmail, seedPassword)
	fmt.Printf("  User ID:       %s\n", account.User.ID)
	fmt.Printf("  Plans created: %d  (%d already existing)\n", inserted, len(existing))
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  Step 1: log in:")
	fmt.Println()
	fmt.Printf("    curl -s -X POST %s/login \\\n", cfg.PublicBaseURL)
	fmt.Printf("      -H 'Content-Type: application/json' \\\n")
	fmt.Printf("      -d '{\"email\":\"%s\",\"password\":\"%s\"}'\n", seedEmail, seedPassword)
	fmt.Println("    # → {\"accessToken\":\"eyJ...\", ...}")
	fmt.Println()
	fmt.Println("  Step 2: list plans:")
	fmt.Println()
	fmt.Println("    export JWT=eyJ...")
	fmt.Printf("    curl -s %s/get-all-plans -H \"Authorization: Bearer $JWT\"\n", cfg.PublicBaseURL)
	fmt.Println()
	fmt.Println("  Step 3: search:")
	fmt.Println()
	fmt.Printf("    curl -s '%s/search?query=kyoto' -H \"Authorization: Bearer $JWT\"\n", cfg.PublicBaseURL)
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (repository.UserRepository, repository.PlanRepository, func(), error) {
	if cfg.StoreDriver == "postgres" {
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("db connect: %w", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, nil, fmt.Errorf("migrate: %w", err)
		}
		return postgres.NewUserRepository(pool), postgres.NewPlanRepository(pool), pool.Close, nil
	}

	store, err := mongo.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := store.EnsureIndexes(ctx); err != nil {
		_ = store.Close(ctx)
		return nil, nil, nil, fmt.Errorf("mongo indexes: %w", err)
	}
	return store.Users(), store.Plans(), func() { _ = store.Close(context.Background()) }, nil
}

func openImages(ctx context.Context, cfg *config.Config) (repository.ImageStore, error) {
	if cfg.ImageStore == "s3" {
		s3Store, err := imagestore.NewS3(ctx, imagestore.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			return nil, fmt.Errorf("s3: %w", err)
		}
		return s3Store, nil
	}

	disk, err := imagestore.NewDisk(cfg.UploadDir, cfg.PublicBaseURL)
	if err != nil {
		return nil, fmt.Errorf("image dir: %w", err)
	}
	return disk, nil
}
