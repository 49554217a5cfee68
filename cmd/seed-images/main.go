package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"cloud.google.com/go/storage"
	"github.com/caarlos0/env/v9"
	"github.com/google/uuid"
	"github.com/ymatsuda/torikae-backend/internal/model"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Uploads placeholder photos for seeded items that have no image yet, so the
// catalog is browsable in demo environments.

type Config struct {
	StorageBucket  string `env:"STORAGE_BUCKET,required"`
	DBHost         string `env:"DB_HOST,required"`
	DBUser         string `env:"DB_USER,required"`
	DBPassword     string `env:"DB_PASSWORD,required"`
	DBName         string `env:"DB_NAME,required"`
	DBPort         string `env:"DB_PORT" envDefault:"3306"`
	TimeoutSeconds int    `env:"TIMEOUT_SECONDS" envDefault:"300"`
	UpdateImages   bool   `env:"UPDATE_IMAGES" envDefault:"false"`
}

func main() {
	ctx := context.Background()
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("failed to parse env: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.TimeoutSeconds)*time.Second)
	defer cancel()

	db, err := connectDB(cfg)
	if err != nil {
		log.Fatalf("failed to connect db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql db: %v", err)
	}
	defer sqlDB.Close()

	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		log.Fatalf("failed to init storage: %v", err)
	}
	defer storageClient.Close()
	bucket := storageClient.Bucket(cfg.StorageBucket)

	var items []model.Item
	q := db.WithContext(ctx)
	if !cfg.UpdateImages {
		q = q.Where("image_url IS NULL")
	}
	if err := q.Find(&items).Error; err != nil {
		log.Fatalf("failed to list items: %v", err)
	}

	updated := 0
	for i := range items {
		item := &items[i]
		img, err := fetchPlaceholder(ctx, item.ID)
		if err != nil {
			log.Printf("placeholder fetch failed (item %d): %v", item.ID, err)
			continue
		}
		publicURL, err := upload(ctx, bucket, cfg.StorageBucket, item.ID, img)
		if err != nil {
			log.Printf("upload failed (item %d): %v", item.ID, err)
			continue
		}
		item.ImageURL = &publicURL
		if err := db.WithContext(ctx).Save(item).Error; err != nil {
			log.Printf("save failed (item %d): %v", item.ID, err)
			continue
		}
		updated++
	}
	log.Printf("updated %d/%d item images", updated, len(items))
}

func connectDB(cfg Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
	return gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
}

func fetchPlaceholder(ctx context.Context, itemID uint64) ([]byte, error) {
	u := fmt.Sprintf("https://picsum.photos/seed/item-%d/640/480", itemID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("placeholder status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func upload(ctx context.Context, bucket *storage.BucketHandle, bucketName string, itemID uint64, data []byte) (string, error) {
	objectName := fmt.Sprintf("items/%d.jpg", itemID)
	token := uuid.NewString()

	w := bucket.Object(objectName).NewWriter(ctx)
	w.ContentType = "image/jpeg"
	w.Metadata = map[string]string{
		"firebaseStorageDownloadTokens": token,
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		bucketName, url.PathEscape(objectName), token), nil
}
