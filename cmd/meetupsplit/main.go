package main

import (
	"log"
	"os"

	"meetupsplit/internal/cmd"
	"meetupsplit/internal/helper"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		run(cmd.Split, nil)
		return
	}

	switch args[0] {
	case "--help", "-h", "help":
		helper.PrintHelp()
	case "split":
		run(cmd.Split, args[1:])
	case "check":
		run(cmd.Check, args[1:])
	default:
		// bare "meetupsplit PATH" runs split on PATH
		run(cmd.Split, args)
	}
}

func run(fn func([]string) error, args []string) {
	if err := fn(args); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
}
