package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/summary"
	"github.com/goliatone/go-formflow/pkg/tui"
	"github.com/goliatone/go-formflow/pkg/wizard"
)

func main() {
	source := flag.String("schema", "form.yaml", "form schema path (YAML or JSON)")
	formID := flag.String("form", "local", "form identifier used for progress saves")
	output := flag.String("output", "", "output file for collected values (stdout if empty)")
	printSummary := flag.Bool("summary", false, "render a review summary instead of raw JSON")
	flag.Parse()

	ctx := context.Background()

	loader := schema.NewLoader(schema.LoaderOptions{})
	form, err := loader.Load(ctx, schema.SourceFromFile(*source))
	if err != nil {
		log.Fatalf("Failed to load schema: %v", err)
	}

	ctrl, err := wizard.New(*formID, form)
	if err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}

	filler := tui.NewFiller()
	values, err := filler.Run(ctx, ctrl)
	if err != nil {
		log.Fatalf("Session failed: %v", err)
	}

	var out []byte
	if *printSummary {
		renderer, err := summary.New()
		if err != nil {
			log.Fatalf("Failed to build summary renderer: %v", err)
		}
		text, err := renderer.Render("Review your answers", form, values)
		if err != nil {
			log.Fatalf("Failed to render summary: %v", err)
		}
		out = []byte(text)
	} else {
		out, err = json.MarshalIndent(values, "", "  ")
		if err != nil {
			log.Fatalf("Failed to encode values: %v", err)
		}
		out = append(out, '\n')
	}

	if *output != "" {
		if err := os.WriteFile(*output, out, 0o644); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		fmt.Printf("Responses written to %s\n", *output)
	} else {
		fmt.Print(string(out))
	}
}
