package main

import (
	"context"
	"fmt"
	"os"

	"github.com/apex/log"

	"github.com/leonardcser/hi/internal/logger"
)

func main() {
	os.Exit(realMain(context.Background(), os.Args))
}

func realMain(ctx context.Context, args []string) int {
	if os.Getenv("HI_LOG") != "" {
		if err := logger.InitFromEnv(); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		defer logger.Close()
	} else {
		// Keep stderr quiet for scripted use unless asked for.
		log.SetHandler(logger.NewHandler(os.Stderr))
		level := os.Getenv("HI_LOG_LEVEL")
		if level == "" {
			level = "error"
		}
		if err := logger.SetLevel(level); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}

	if err := NewApp().Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
