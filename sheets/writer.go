package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"registry-harvester/models"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Writer mirrors harvest results into a Google Sheets spreadsheet, one
// sheet per result.
type Writer struct {
	service       *sheets.Service
	spreadsheetID string
}

// NewWriter creates a new Google Sheets writer. Credentials come from
// the given file path or, when empty, the GOOGLE_SHEETS_CREDENTIALS
// environment variable.
func NewWriter(spreadsheetID string, credentialsPath string) (*Writer, error) {
	ctx := context.Background()

	var credsJSON []byte
	var err error

	if credentialsPath != "" {
		credsJSON, err = os.ReadFile(credentialsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
	} else {
		credsEnv := strings.TrimSpace(os.Getenv("GOOGLE_SHEETS_CREDENTIALS"))
		if credsEnv == "" {
			return nil, fmt.Errorf("credentials not found: GOOGLE_SHEETS_CREDENTIALS environment variable is empty or not set")
		}
		credsJSON = []byte(credsEnv)
	}

	// Validate before handing to the API client so a misconfigured
	// environment fails with a readable message.
	var creds map[string]interface{}
	if err := json.Unmarshal(credsJSON, &creds); err != nil {
		return nil, fmt.Errorf("invalid credentials JSON: %w", err)
	}
	if creds["type"] != "service_account" {
		return nil, fmt.Errorf("credentials must be a service account JSON file (type: service_account), got type: %v", creds["type"])
	}

	service, err := sheets.NewService(ctx, option.WithCredentialsJSON(credsJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{
		service:       service,
		spreadsheetID: spreadsheetID,
	}, nil
}

// CreateSheetAndWriteResult creates a new sheet at the front of the
// spreadsheet and writes the result's header and rows into it. Returns
// the created sheet's name and ID.
func (w *Writer) CreateSheetAndWriteResult(result *models.HarvestResult) (string, int64, error) {
	sheetName := sanitizeSheetName(result.Name)
	if len(sheetName) > 100 {
		sheetName = sheetName[:100]
	}

	addSheetRequest := &sheets.AddSheetRequest{
		Properties: &sheets.SheetProperties{
			Title: sheetName,
			Index: 0,
		},
	}

	batchUpdateRequest := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{AddSheet: addSheetRequest},
		},
	}

	batchUpdateResp, err := w.service.Spreadsheets.BatchUpdate(w.spreadsheetID, batchUpdateRequest).Do()
	if err != nil {
		return "", 0, fmt.Errorf("failed to create sheet: %w", err)
	}

	var sheetID int64
	if len(batchUpdateResp.Replies) > 0 && batchUpdateResp.Replies[0].AddSheet != nil {
		sheetID = batchUpdateResp.Replies[0].AddSheet.Properties.SheetId
	}

	values := resultValues(result)
	if len(values) == 0 {
		log.Printf("No rows to write for sheet '%s'\n", sheetName)
		return sheetName, sheetID, nil
	}

	range_ := fmt.Sprintf("%s!A1", sheetName)
	valueRange := &sheets.ValueRange{Values: values}

	_, err = w.service.Spreadsheets.Values.Update(w.spreadsheetID, range_, valueRange).
		ValueInputOption("RAW").
		Do()
	if err != nil {
		return "", 0, fmt.Errorf("failed to write to sheet: %w", err)
	}

	log.Printf("Successfully wrote %d rows to sheet '%s'\n", len(result.Rows), sheetName)
	return sheetName, sheetID, nil
}

// resultValues flattens a result into the API's cell grid. A header
// whose arity disagrees with any row is dropped in favor of positional
// columns, matching the workbook writer.
func resultValues(result *models.HarvestResult) [][]interface{} {
	var values [][]interface{}

	header := result.Header
	for _, row := range result.Rows {
		if len(header) > 0 && len(row) != len(header) {
			log.Printf("Warning: header/row arity mismatch in %q, writing positional columns\n", result.Name)
			header = nil
			break
		}
	}

	if len(header) > 0 {
		headerRow := make([]interface{}, len(header))
		for i, name := range header {
			headerRow[i] = name
		}
		values = append(values, headerRow)
	}

	for _, row := range result.Rows {
		cells := make([]interface{}, len(row))
		for i, cell := range row {
			cells[i] = cell
		}
		values = append(values, cells)
	}

	return values
}

// sanitizeSheetName removes characters Google Sheets rejects in sheet
// names.
func sanitizeSheetName(name string) string {
	invalidChars := []string{"/", "\\", "?", "*", "[", "]"}
	result := name
	for _, char := range invalidChars {
		result = strings.ReplaceAll(result, char, "_")
	}
	result = strings.TrimSpace(result)
	if result == "" {
		result = "Sheet1"
	}
	return result
}

// ExtractSpreadsheetID extracts the spreadsheet ID from a Google Sheets
// URL such as https://docs.google.com/spreadsheets/d/ID/edit?usp=sharing.
func ExtractSpreadsheetID(url string) string {
	parts := strings.Split(url, "/d/")
	if len(parts) < 2 {
		return ""
	}

	idPart := parts[1]
	if idx := strings.Index(idPart, "/"); idx != -1 {
		idPart = idPart[:idx]
	}
	if idx := strings.Index(idPart, "?"); idx != -1 {
		idPart = idPart[:idx]
	}

	return strings.TrimSpace(idPart)
}
