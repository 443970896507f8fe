package main

import (
	"fmt"
	"time"

	"github.com/aluiziolira/go-price-bulletin/models"
)

const separator = "--------------------------------------------------"

func printSummary(label string, duration time.Duration, requests, failures int64, outputFile string, metrics map[string]interface{}) {
	fmt.Println("\n" + separator)
	fmt.Println("Export complete")
	fmt.Printf("  Bulletin:      %s\n", label)

	totalRows := int64(0)
	if processed, ok := metrics["processed_rows"].(int64); ok {
		totalRows = processed
	}
	fmt.Printf("  Rows written:  %d\n", totalRows)

	fmt.Printf("  Downloads:     %d\n", requests)
	fmt.Printf("  Failed:        %d\n", failures)
	if valErrors, ok := metrics["validation_errors"].(map[string]int); ok && len(valErrors) > 0 {
		fmt.Printf("  Validation:    %v\n", valErrors)
	}
	fmt.Printf("  Duration:      %v\n", duration)
	fmt.Printf("  Output file:   %s\n", outputFile)
	fmt.Println(separator)
}

func printRangeSummary(result *models.RangeResult) {
	fmt.Println("\n" + separator)
	fmt.Printf("Range %s .. %s\n", result.From, result.To)
	for _, day := range result.Summary {
		line := fmt.Sprintf("  %s  %-9s  %4d", day.Date, day.Status, day.TotalProductCount)
		if day.Error != "" {
			line += "  " + day.Error
		}
		fmt.Println(line)
	}
	fmt.Printf("  Processed %d/%d days, %d failed\n", result.ProcessedDays, result.TotalDays, result.FailedDays)
}
