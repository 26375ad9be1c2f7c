// Command packc compiles an authored character JSON document into a binary
// pack, and can emit the JSON schema designers validate their documents
// against.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"fightstate/runtime/internal/authored"
)

func main() {
	var (
		inPath     string
		outPath    string
		schemaPath string
	)
	flag.StringVar(&inPath, "in", "", "authored character JSON to compile")
	flag.StringVar(&outPath, "out", "", "path to write the compiled pack")
	flag.StringVar(&schemaPath, "schema", "", "write the document JSON schema and exit")
	flag.Parse()

	if schemaPath != "" {
		if err := writeSchema(schemaPath); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write schema: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if inPath == "" || outPath == "" {
		fmt.Fprintln(os.Stderr, "--in and --out are required")
		os.Exit(1)
	}
	if err := compile(inPath, outPath); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func compile(inPath, outPath string) error {
	f, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	doc, err := authored.Load(f)
	if err != nil {
		return err
	}
	data, err := authored.Compile(doc)
	if err != nil {
		return err
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write pack: %w", err)
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace pack: %w", err)
	}
	fmt.Printf("compiled %s (%d states, %d bytes) -> %s\n",
		doc.Name, len(doc.States), len(data), outPath)
	return nil
}

func writeSchema(outPath string) error {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}
	schema := reflector.Reflect(new(authored.Document))
	schema.Title = "Fightstate Character Document"
	schema.Description = "Validates designer-authored character state files"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}
	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}
	return os.Rename(tmpPath, outPath)
}
