package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"registry-harvester/config"
	"registry-harvester/fetcher"
	"registry-harvester/filter"
	"registry-harvester/harvester"
	"registry-harvester/models"
	"registry-harvester/sheets"
	"registry-harvester/workbook"
)

func main() {
	url := flag.String("url", "", "Single register URL to harvest (overrides the config catalog)")
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	details := flag.Bool("details", false, "Enrich rows from per-row detail pages (with -url)")
	out := flag.String("out", "", "Output XLSX path (overrides config)")
	spreadsheetURL := flag.String("spreadsheet", "", "Google Sheets URL to mirror results into (optional)")
	credentialsPath := flag.String("credentials", "", "Path to Google service account credentials JSON file (or use GOOGLE_SHEETS_CREDENTIALS env var)")
	flag.Parse()

	cfg := loadConfig(*configPath)
	if *out != "" {
		cfg.Output = *out
	}

	// A single ad-hoc URL replaces the configured catalog.
	if *url != "" {
		cfg.Sources = []config.Source{{
			Name:    fmt.Sprintf("Harvest_%s", time.Now().Format("20060102_150405")),
			URL:     *url,
			Mode:    config.ModePages,
			Details: *details,
		}}
	}

	if len(cfg.Sources) == 0 {
		log.Fatalf("Error: no sources configured\n")
	}

	results := harvestSources(cfg)

	wb := workbook.NewWriter()
	for _, result := range results {
		if err := wb.AddSheet(result); err != nil {
			log.Printf("Warning: Failed to add sheet for %q: %v\n", result.Name, err)
		}
	}
	if err := wb.Save(cfg.Output); err != nil {
		log.Fatalf("Error: Failed to save workbook: %v\n", err)
	}
	fmt.Printf("All data saved to %s\n", cfg.Output)

	if *spreadsheetURL != "" {
		writeToGoogleSheets(*spreadsheetURL, *credentialsPath, results)
	}
}

// harvestSources runs every configured source sequentially and returns
// one result per source, in catalog order.
func harvestSources(cfg *config.Config) []*models.HarvestResult {
	client := fetcher.NewClient(cfg.UserAgent, time.Duration(cfg.DelaySeconds)*time.Second)

	var results []*models.HarvestResult
	for _, src := range cfg.Sources {
		log.Printf("[MAIN] Processing source: %s\n", src.Name)

		h := harvester.New(client, harvester.Options{
			Details:        src.Details,
			DetailSelector: src.DetailSelector,
			PageLength:     src.PageLength,
		})

		var result *models.HarvestResult
		switch src.Mode {
		case config.ModeOffset:
			result = h.HarvestAll(src.Name, h.OffsetSeed(src.URL))
		case config.ModeJSON:
			result = h.HarvestJSON(src.Name, src.URL)
		default:
			result = h.HarvestAll(src.Name, harvester.Seed(src.URL))
		}

		if len(result.Rows) == 0 {
			log.Printf("[MAIN] No data found for %s\n", src.Name)
		}

		result = filter.NewFilter(src.Columns).Apply(result)
		results = append(results, result)
	}

	return results
}

// writeToGoogleSheets mirrors the results into a spreadsheet; failures
// are warnings since the workbook on disk is the primary output.
func writeToGoogleSheets(spreadsheetURL, credentialsPath string, results []*models.HarvestResult) {
	spreadsheetID := sheets.ExtractSpreadsheetID(spreadsheetURL)
	if spreadsheetID == "" {
		log.Printf("Warning: Could not extract spreadsheet ID from URL: %s\n", spreadsheetURL)
		return
	}

	writer, err := sheets.NewWriter(spreadsheetID, credentialsPath)
	if err != nil {
		log.Printf("Warning: Failed to initialize Google Sheets writer: %v\n", err)
		return
	}

	for _, result := range results {
		if _, _, err := writer.CreateSheetAndWriteResult(result); err != nil {
			log.Printf("Warning: Failed to write %q to Google Sheets: %v\n", result.Name, err)
		}
	}
}

// loadConfig loads configuration from file or returns defaults.
func loadConfig(configPath string) *config.Config {
	if _, err := os.Stat(configPath); err == nil {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			log.Printf("Warning: Failed to load config file: %v. Using defaults.\n", err)
			return config.GetDefaultConfig()
		}
		return cfg
	}
	log.Println("Config file not found. Using default configuration.")
	return config.GetDefaultConfig()
}
