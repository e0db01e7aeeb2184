package x

import (
	"encoding/json"
	"fmt"
	"os"

	"casevault/pkg/config"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v2"
)

// LoadEnv loads environment variables from a .env file if one is present
func LoadEnv() error {
	if err := godotenv.Load(); err != nil {
		// Instead of returning an error, we'll just log a message
		fmt.Println("No .env file found, proceeding with default values")
	}
	return nil
}

// LoadConfig processes environment variables into a Config struct
func LoadConfig() (config.Config, error) {
	var env config.Config
	if err := envconfig.Process("", &env); err != nil {
		return env, fmt.Errorf("error loading environment variables: %w", err)
	}
	return env, nil
}

// ConvertMapToJson converts a map[string]string to a JSON string
func ConvertMapToJson(parameters map[string]string) (string, error) {
	jsonBytes, err := json.Marshal(parameters)
	if err != nil {
		return "", fmt.Errorf("error converting map to JSON: %v", err)
	}
	return string(jsonBytes), nil
}

// ConvertJsonToMap converts a JSON string into a map[string]string.
func ConvertJsonToMap(jsonString string) (map[string]string, error) {
	var result map[string]string
	if err := json.Unmarshal([]byte(jsonString), &result); err != nil {
		return nil, fmt.Errorf("error converting JSON to map: %v", err)
	}
	return result, nil
}

// PrintJSON prints data in JSON format
func PrintJSON(data interface{}) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		fmt.Printf("Error marshaling to JSON: %v\n", err)
		return err
	}
	fmt.Println(string(jsonData))
	return nil
}

// PrintYAML prints data in YAML format
func PrintYAML(data interface{}) error {
	yamlData, err := yaml.Marshal(data)
	if err != nil {
		fmt.Printf("Error marshaling to YAML: %v\n", err)
		return err
	}
	fmt.Println(string(yamlData))
	return nil
}

// PrintTable prints rows in a table format using github.com/olekukonko/tablewriter
func PrintTable(headers []string, rows [][]string) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)

	table.SetHeader(headers)
	for _, row := range rows {
		table.Append(row)
	}
	table.Render()
}

// TruncateMessage shortens a message to 30 characters for table display
func TruncateMessage(message string) string {
	if len(message) > 30 {
		return message[:27] + "..."
	}
	return message
}
