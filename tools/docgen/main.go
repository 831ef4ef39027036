// Package main generates CLI reference documentation for the aat client and
// the ad-alert-tracker server binary.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	aat "github.com/donaldgifford/ad-alert-tracker/cmd/aat/cmd"
	server "github.com/donaldgifford/ad-alert-tracker/cmd/ad-alert-tracker/cmd"
)

func main() {
	output := flag.String("output", "docs/cli", "output directory for generated markdown")
	flag.Parse()

	trees := map[string]*cobra.Command{
		"aat":              aat.Root(),
		"ad-alert-tracker": server.Root(),
	}

	for name, root := range trees {
		dir := filepath.Join(*output, name)
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Fatalf("creating output directory: %v", err)
		}

		root.DisableAutoGenTag = true
		if err := doc.GenMarkdownTree(root, dir); err != nil {
			log.Fatalf("generating %s docs: %v", name, err)
		}
	}

	fmt.Printf("CLI docs generated in %s/\n", *output)
}
