package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	"ticket-system/pkg/config"
	"ticket-system/pkg/database/postgresql"
	"ticket-system/seeders"
)

func main() {
	log.Println("======================================================")
	log.Println("       🌱 СИСТЕМА СИДЕРОВ (Наполнение БД)           ")
	log.Println("======================================================")

	runInventory := flag.Bool("inventory", false, "Наполнить склад инструментов")
	runProformas := flag.Int("proformas", 0, "Создать указанное количество тестовых проформ")
	runAll := flag.Bool("all", false, "Склад и 20 тестовых проформ")

	flag.Parse()

	if !*runInventory && *runProformas == 0 && !*runAll {
		log.Println("❌ Не выбран ни один сидер для запуска.")
		log.Println("")
		log.Println("Доступные флаги:")
		flag.PrintDefaults()
		log.Println("")
		log.Println("Примеры использования:")
		log.Println("  go run ./seeders/cmd/seed -inventory")
		log.Println("  go run ./seeders/cmd/seed -proformas 50")
		log.Println("  go run ./seeders/cmd/seed -all")
		log.Println("======================================================")
		return
	}

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}
	ctx := context.Background()
	dbPool, err := postgresql.ConnectDB(ctx, cfg.Postgres, zap.NewNop())
	if err != nil {
		log.Fatalf("❌ Не удалось подключиться к БД: %v", err)
	}
	defer dbPool.Close()

	if *runAll || *runInventory {
		if err := seeders.SeedInventory(ctx, dbPool); err != nil {
			log.Fatalf("❌ Ошибка наполнения склада: %v", err)
		}
	}

	proformas := *runProformas
	if *runAll && proformas == 0 {
		proformas = 20
	}
	if proformas > 0 {
		if err := seeders.SeedProformas(ctx, dbPool, proformas); err != nil {
			log.Fatalf("❌ Ошибка создания проформ: %v", err)
		}
	}

	log.Println("✅ Все указанные операции сидирования успешно завершены.")
	log.Println("======================================================")
}
