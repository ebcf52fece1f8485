// Command config-schema emits a JSON Schema for the run configuration
// file, for editor validation of the YAML.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/invopop/jsonschema"

	compatdata "github.com/thunderbird/webext-compat-data"
)

func main() {
	schema := jsonschema.Reflect(&compatdata.Config{})

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		log.Fatalf("failed to marshal schema: %v", err)
	}

	outputPath := "config-schema.json"
	if len(os.Args) > 1 {
		outputPath = os.Args[1]
	}

	if err := os.WriteFile(outputPath, data, 0o600); err != nil {
		log.Fatalf("failed to write schema file: %v", err)
	}

	fmt.Printf("schema written to %s\n", outputPath)
}
