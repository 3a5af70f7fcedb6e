// Command staff manages staff accounts and the dream team from the shell.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"generalstuff/auth"
	"generalstuff/common"
	"generalstuff/config"
	"generalstuff/database"
	"generalstuff/logger"
	"generalstuff/models"
	"generalstuff/store"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  staff create <username> <password> [email]  - create a staff account")
	fmt.Println("  staff promote <username>                    - grant staff rights")
	fmt.Println("  staff demote <username>                     - revoke staff rights")
	fmt.Println("  staff dream-team <username> on|off          - feature a member on the home page")
	os.Exit(1)
}

func main() {
	if len(os.Args) < 3 {
		usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	zlog, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	db, err := common.ConnectDb(cfg.SqliteDB, zlog)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.RunMigrations(db, zlog); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	st := store.New(db)
	ctx := context.Background()
	username := os.Args[2]

	switch os.Args[1] {
	case "create":
		if len(os.Args) < 4 {
			usage()
		}
		email := ""
		if len(os.Args) > 4 {
			email = os.Args[4]
		}
		err = createStaff(ctx, st, username, os.Args[3], email)
	case "promote":
		err = st.SetStaff(ctx, username, true)
	case "demote":
		err = st.SetStaff(ctx, username, false)
	case "dream-team":
		if len(os.Args) < 4 || (os.Args[3] != "on" && os.Args[3] != "off") {
			usage()
		}
		err = st.SetDreamTeam(ctx, username, os.Args[3] == "on")
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		usage()
	}

	if errors.Is(err, store.ErrNotFound) {
		fmt.Printf("Account %s not found\n", username)
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("%s failed: %v", os.Args[1], err)
	}
	fmt.Printf("Done: %s %s\n", os.Args[1], username)
}

func createStaff(ctx context.Context, st *store.Store, username, password, email string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	account := &models.Account{Username: username, Email: email, PasswordHash: hash, IsStaff: true}
	return st.CreateAccountWithProfile(ctx, account)
}
