package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/grovetools/luminashot/config"
	"github.com/grovetools/luminashot/logging"
)

func main() {
	schemaBytes, err := config.GenerateSchema(map[string]interface{}{
		"logging": &logging.Config{},
	})
	if err != nil {
		log.Fatalf("Error generating schema: %v", err)
	}

	outputDir := "schema"
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		log.Fatalf("Error creating schema directory: %v", err)
	}

	outputPath := filepath.Join(outputDir, "luminashot.schema.json")
	if err := os.WriteFile(outputPath, append(schemaBytes, '\n'), 0644); err != nil {
		log.Fatalf("Error writing schema file: %v", err)
	}

	log.Printf("Successfully generated schema at %s", outputPath)
}
