package main

import (
	"os"

	"github.com/charmbracelet/log"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.New(os.Stderr).Fatal("sitetack failed", "err", err)
	}
}
