package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ikkim/storefront-backend/config"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/db"
)

// 카탈로그 XLSX 파일의 상품을 등록한다.
// 열 순서: name | price | description | sku | stock_quantity
func main() {
	yes := flag.Bool("y", false, "skip the confirmation prompt")
	flag.Parse()

	// 명령줄 인자 확인
	if flag.NArg() < 1 {
		log.Fatal("Usage: go run cmd/seed/main.go [-y] <xlsx_file_path>")
	}
	filePath := flag.Arg(0)

	// 설정 로드
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// DB 연결
	database, err := db.Initialize(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close(database)

	if err := db.Migrate(database); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// XLSX 파일 읽기
	fmt.Printf("Reading XLSX file: %s\n", filePath)
	file, err := os.Open(filePath)
	if err != nil {
		log.Fatal("Failed to open XLSX:", err)
	}
	defer file.Close()

	rows, invalid, err := service.ParseCatalogWorkbook(file)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}
	for _, rowErr := range invalid {
		fmt.Printf("Skipping %v\n", rowErr)
	}
	fmt.Printf("Total products to import: %d\n", len(rows))

	// 사용자 확인
	if !*yes {
		fmt.Print("Do you want to proceed with the import? (yes/no): ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Import cancelled.")
			return
		}
	}

	products := service.NewProductService(repository.NewStore(database))
	result := service.ImportCatalog(context.Background(), products, rows)

	for _, failed := range result.Failed {
		fmt.Printf("Failed %v\n", failed)
	}
	fmt.Println("Import completed!")
	fmt.Printf("Created: %d, failed: %d, unparsable: %d\n", len(result.Created), len(result.Failed), len(invalid))
}
