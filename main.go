package main

import (
	"log"

	"registration-system/cmd"

	_ "registration-system/migrations"
)

func main() {
	if err := cmd.Start(); err != nil {
		log.Fatal(err)
	}
}
