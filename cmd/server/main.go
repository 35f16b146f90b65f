// Command server runs the kids dictionary HTTP API.
//
// Configuration is read from the environment (and an optional .env file
// in the working directory) or from the YAML file named by CONFIG_PATH.
//
// Flags:
//
//	--env  print the supported environment variables and exit
//
// Exit codes: 0 = clean shutdown, 1 = error.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/heartmarshall/kiddict-backend/internal/app"
	"github.com/heartmarshall/kiddict-backend/internal/config"
)

func main() {
	describe := flag.Bool("env", false, "print supported environment variables and exit")
	flag.Parse()

	if *describe {
		desc, err := config.Describe()
		if err != nil {
			log.Fatalf("describe config: %v", err)
		}
		fmt.Println(desc)
		return
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("load .env: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("server: %v", err)
	}
}
