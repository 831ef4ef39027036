// Package main is the entry point for the ad-alert-tracker.
package main

import (
	"os"

	"github.com/donaldgifford/ad-alert-tracker/cmd/ad-alert-tracker/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
