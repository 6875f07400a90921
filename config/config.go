package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Source modes: how a source is paginated and parsed.
const (
	ModePages  = "pages"  // follow "next" anchors from page to page
	ModeOffset = "offset" // start/length query parameters until total
	ModeJSON   = "json"   // single machine-readable endpoint
)

// ColumnSelect picks one output column by a case-insensitive header
// substring and optionally renames it.
type ColumnSelect struct {
	Match  string `yaml:"match"`
	Rename string `yaml:"rename"`
}

// Source describes one registry to harvest into its own sheet.
type Source struct {
	Name           string         `yaml:"name"`
	URL            string         `yaml:"url"`
	Mode           string         `yaml:"mode"`
	PageLength     int            `yaml:"page_length"`
	Details        bool           `yaml:"details"`
	DetailSelector string         `yaml:"detail_selector"`
	Columns        []ColumnSelect `yaml:"columns"`
}

// Config is the harvest run configuration.
type Config struct {
	UserAgent    string   `yaml:"user_agent"`
	DelaySeconds int      `yaml:"delay_seconds"`
	Output       string   `yaml:"output"`
	Sources      []Source `yaml:"sources"`
}

// LoadConfig loads configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// GetDefaultConfig returns the built-in source catalog: the practitioner
// registers with detail enrichment, the offset-paginated pharmacist
// register, and the distribution endpoint.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Sources: []Source{
			{Name: "Local Licensed Practitioners’ Master Register", URL: "https://kmpdc.go.ke/Registers/practitioners.php", Mode: ModePages, Details: true},
			{Name: "Medical & Dental General Practice Register", URL: "https://kmpdc.go.ke/Registers/General_Practitioners.php", Mode: ModePages, Details: true},
			{Name: "Medical & Dental Registrar Register", URL: "https://kmpdc.go.ke/Registers/Registrar.php", Mode: ModePages, Details: true},
			{Name: "Medical & Dental Senior Registrar Register", URL: "https://kmpdc.go.ke/Registers/Senior_Registrar.php", Mode: ModePages, Details: true},
			{Name: "Medical & Dental Specialist Practice Register", URL: "https://kmpdc.go.ke/Registers/Specialist_Practice.php", Mode: ModePages, Details: true},
			{Name: "Community Oral Health Officers’ Register", URL: "https://kmpdc.go.ke/Registers/Community_Oral_Health.php", Mode: ModePages, Details: true},
			{Name: "Medical & Dental Internship Register", URL: "https://kmpdc.go.ke/Registers/Internship.php", Mode: ModePages, Details: true},
			{Name: "Foreign Practitioners’ Register", URL: "https://kmpdc.go.ke/Registers/Foreign_Practitioners.php", Mode: ModePages, Details: true},
			{Name: "Foreign Students’ Register", URL: "https://kmpdc.go.ke/Registers/Foreign_Students.php", Mode: ModePages, Details: true},
			{
				Name:       "Pharmacists Register",
				URL:        "https://practice.pharmacyboardkenya.org/LicenseStatus?register=pharmacists",
				Mode:       ModeOffset,
				PageLength: 100,
				Columns: []ColumnSelect{
					{Match: "name", Rename: "Full Name"},
					{Match: "licen", Rename: "Licence_No"},
				},
			},
			{Name: "Pharmacists Distribution", URL: "https://practice.pharmacyboardkenya.org/ajax/public?graph=distribution", Mode: ModeJSON},
		},
	}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.DelaySeconds <= 0 {
		c.DelaySeconds = 1
	}
	if c.Output == "" {
		c.Output = "harvest.xlsx"
	}
	for i := range c.Sources {
		if c.Sources[i].Mode == "" {
			c.Sources[i].Mode = ModePages
		}
	}
}
