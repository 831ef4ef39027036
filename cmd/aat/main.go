// Package main is the entry point for the aat CLI client.
package main

import (
	"github.com/donaldgifford/ad-alert-tracker/cmd/aat/cmd"
)

func main() {
	cmd.Execute()
}
