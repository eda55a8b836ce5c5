package main

import (
	"log"

	"github.com/thiagokokada/gitscope/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		log.Fatalf("gitscope: %v", err)
	}
}
