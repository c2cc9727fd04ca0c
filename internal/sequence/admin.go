package sequence

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// EnsureAdmin provisions the administrative account. It is idempotent:
// when an account with the configured name already exists nothing is
// changed. When no password is configured a random one is generated and
// printed once to out; it is never stored anywhere in plaintext.
func EnsureAdmin(ctx context.Context, dsn, username, password string, logger *slog.Logger, out io.Writer) error {
	if username == "" {
		return fmt.Errorf("admin username must not be empty")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	var exists bool
	err = db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check admin account: %w", err)
	}
	if exists {
		fmt.Fprintf(out, "admin account %q already exists, skipping\n", username)
		logger.Info("admin account present", "username", username)
		return nil
	}

	generated := false
	if password == "" {
		password, err = randomPassword()
		if err != nil {
			return err
		}
		generated = true
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, is_admin) VALUES ($1, $2, $3, TRUE)`,
		username, username+"@minitweet.local", string(hash),
	)
	if err != nil {
		return fmt.Errorf("create admin account: %w", err)
	}

	if generated {
		fmt.Fprintf(out, "created admin account %q with generated password: %s\n", username, password)
		fmt.Fprintln(out, "store this password now, it will not be shown again")
	} else {
		fmt.Fprintf(out, "created admin account %q\n", username)
	}
	logger.Info("admin account created", "username", username)
	return nil
}

func randomPassword() (string, error) {
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate password: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
