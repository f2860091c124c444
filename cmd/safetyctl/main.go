package main

import (
	"os"

	"github.com/steven-d-pennington/restricted-diet-app/backend/cmd/safetyctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
