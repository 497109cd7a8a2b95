package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitenav/internal/sidebar"
)

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	exampleConfig := Config{
		Site: SiteConfig{
			Title:       "My Documentation",
			Description: "Tutorials and reference material",
			BaseURL:     "https://docs.example.com",
		},
		Content: ContentConfig{Directory: "./content"},
		Output:  OutputConfig{Directory: "./site"},
		Sidebar: sidebar.Spec{Groups: []sidebar.Group{
			{
				Label: "Guides",
				Items: []sidebar.Node{
					{Item: &sidebar.Item{Label: "Example Guide", Slug: "guides/example"}},
				},
			},
			{
				Label:        "Challenges",
				Autogenerate: &sidebar.Autogenerate{Directory: "challenges"},
			},
			{
				Label:        "Reference",
				Autogenerate: &sidebar.Autogenerate{Directory: "reference"},
			},
		}},
		Preview: PreviewConfig{Port: 4321},
	}

	data, err := yaml.Marshal(&exampleConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
