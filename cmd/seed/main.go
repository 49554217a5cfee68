package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/ymatsuda/torikae-backend/internal/config"
	"github.com/ymatsuda/torikae-backend/internal/db"
	"github.com/ymatsuda/torikae-backend/internal/model"
)

type seedOwner struct {
	UID   string
	Items []seedItem
}

type seedItem struct {
	Title       string
	Description string
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}

	if err := gdb.AutoMigrate(
		&model.Item{},
		&model.SwipeEvent{},
		&model.Match{},
		&model.ExchangeMessage{},
		&model.Notification{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	var count int64
	if err := gdb.WithContext(ctx).Model(&model.Item{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count items: %w", err)
	}
	if count > 0 && os.Getenv("FORCE_SEED") != "true" {
		log.Printf("items already present (%d); set FORCE_SEED=true to seed anyway", count)
		return nil
	}

	owners := buildSeedOwners()
	tx := gdb.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin: %w", tx.Error)
	}
	total := 0
	for _, o := range owners {
		for _, si := range o.Items {
			item := model.Item{
				OwnerUID:    o.UID,
				Title:       si.Title,
				Description: si.Description,
				Status:      model.ItemStatusAvailable,
			}
			if err := tx.Create(&item).Error; err != nil {
				tx.Rollback()
				return fmt.Errorf("create item %q: %w", si.Title, err)
			}
			total++
		}
	}
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	log.Printf("seeded %d items across %d demo owners", total, len(owners))
	return nil
}

func buildSeedOwners() []seedOwner {
	catalogs := [][]seedItem{
		{
			{"クロスバイク", "通勤で使っていたクロスバイク。整備済みです。"},
			{"折りたたみテーブル", "アウトドア用の軽量テーブル。"},
		},
		{
			{"アコースティックギター", "初心者向けモデル。弦は張り替え済み。"},
			{"ミラーレスカメラ", "レンズキット付き。動作良好。"},
		},
		{
			{"ボードゲームセット", "家族で数回遊んだだけの美品。"},
			{"電気ケトル", "一人暮らし向けの小型ケトル。"},
			{"厚手のブランケット", "冬物の入れ替えで手放します。"},
		},
	}
	owners := make([]seedOwner, 0, len(catalogs))
	for _, items := range catalogs {
		owners = append(owners, seedOwner{
			UID:   "demo-" + uuid.NewString(),
			Items: items,
		})
	}
	return owners
}
