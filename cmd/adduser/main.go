package main

import (
	"bufio"   // Piped password input
	"context" // Store calls
	"flag"    // Command line flags
	"fmt"     // Output
	"io"      // Streams
	"os"      // Process streams
	"strings" // Input cleanup

	"finance_tracker/internal/apperr" // Error taxonomy
	"finance_tracker/internal/config" // Configuration
	"finance_tracker/internal/db"     // Store connection
	"finance_tracker/internal/store"  // Record store
	"finance_tracker/internal/utils"  // Password hashing

	"golang.org/x/term" // Hidden password prompt
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	email := fs.String("email", "", "Email of the new user")
	name := fs.String("name", "", "Display name (optional)")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	sqlitePath := fs.String("sqlite", "", "Use this SQLite file instead of the configured store")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" {
		fmt.Fprintln(stdout, "Usage: adduser -email <email> [-name <name>] [-password <password>] [-sqlite <path>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: email")
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		var err error
		password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout)
	}
	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}

	cfg := config.LoadConfig()
	if *sqlitePath != "" {
		cfg.DBDriver = config.DriverSQLite
		cfg.SQLitePath = *sqlitePath
	}
	conn, err := db.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close(conn)

	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	var displayName *string
	if n := strings.TrimSpace(*name); n != "" {
		displayName = &n
	}
	normalized := strings.ToLower(strings.TrimSpace(*email))
	user, err := store.CreateUser(context.Background(), conn, normalized, hash, displayName)
	if err != nil {
		if apperr.Is(err, apperr.Conflict) {
			return fmt.Errorf("user %s already exists", normalized)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(stdout, "User %s created successfully with ID %d\n", user.Email, user.ID)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	// Hide input when attached to a terminal
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
