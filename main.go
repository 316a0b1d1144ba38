package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"bingohall/cmd"
	"bingohall/database"
)

func main() {
	// "bingohall migrate ..." manages the schema without opening the hall
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := handleMigrationCommand(); err != nil {
			log.Fatal("Migration error:", err)
		}
		return
	}

	// Cancelling ctx stops the orchestrator and the retry worker
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Rounds left open on SIGINT/SIGTERM are refunded by RecoverRooms on the next start
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Received shutdown signal, closing the bingo hall...")
		cancel()
	}()

	if err := cmd.Run(ctx); err != nil {
		log.Fatal("Bingo hall error:", err)
	}
}

func handleMigrationCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: bingohall migrate [up|down|status] [args...]")
	}

	command := os.Args[2]
	switch command {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(os.Args) > 3 {
			steps = os.Args[3]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migration command: %s", command)
	}
}
