package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/psiai/psiai-backend/internal/auth"
)

func main() {
	length := flag.Int("length", auth.DefaultKeyLength, "number of characters in the generated key")
	flag.Parse()

	key, err := auth.GenerateKey(*length)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to generate key: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Generated API key:")
	fmt.Println(key)
	fmt.Println()
	fmt.Println("Add this line to your .env file:")
	fmt.Printf("API_KEY=%s\n", key)
}
