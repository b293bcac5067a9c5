// Package bootstrap seeds the first administrator and toggles account activation from the CLI.
package bootstrap

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/darrenak403/clothingshop-be/internal/audit"
	"github.com/darrenak403/clothingshop-be/internal/domain/repository"
	"github.com/darrenak403/clothingshop-be/internal/observability/logger"
	"github.com/darrenak403/clothingshop-be/internal/security/password"
	"github.com/darrenak403/clothingshop-be/internal/validation"
)

var (
	ErrAdminExists     = errors.New("bootstrap: account already exists")
	ErrInvalidInput    = errors.New("bootstrap: invalid input")
	ErrPasswordsDiffer = errors.New("bootstrap: passwords do not match")
)

// Hasher is the subset of the password hasher used here.
type Hasher interface {
	Hash(plain string) (string, error)
}

// AdminConfig holds what EnsureAdmin needs. Empty Email or Password triggers the prompt
// unless SkipPrompt is set.
type AdminConfig struct {
	Credentials repository.CredentialStore
	Hasher      Hasher
	Policy      password.Policy

	FullName   string
	Email      string
	Password   string
	SkipPrompt bool

	// Prompt reads the missing values. Defaults to the terminal.
	Prompt func() (email, password string, err error)
}

// EnsureAdmin creates an Admin account for cfg.Email. It returns the account and
// whether it was created; an existing account with that email is left untouched.
func EnsureAdmin(ctx context.Context, cfg AdminConfig) (*repository.User, bool, error) {
	log := logger.From(ctx).With(logger.Component("bootstrap"), logger.Op("EnsureAdmin"))

	if cfg.Email == "" || cfg.Password == "" {
		if cfg.SkipPrompt {
			return nil, false, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
		}
		prompt := cfg.Prompt
		if prompt == nil {
			prompt = TerminalPrompt(os.Stdin, os.Stdout)
		}
		email, pw, err := prompt()
		if err != nil {
			return nil, false, err
		}
		if cfg.Email == "" {
			cfg.Email = email
		}
		if cfg.Password == "" {
			cfg.Password = pw
		}
	}

	email := validation.NormalizeEmail(cfg.Email)
	if !validation.ValidEmail(email) {
		return nil, false, fmt.Errorf("%w: email %q", ErrInvalidInput, cfg.Email)
	}
	if ok, reasons := cfg.Policy.Validate(cfg.Password); !ok {
		return nil, false, fmt.Errorf("%w: password: %s", ErrInvalidInput, strings.Join(reasons, "; "))
	}

	existing, err := cfg.Credentials.GetByEmail(ctx, email)
	switch {
	case err == nil:
		log.Info("account exists, skipping", logger.UserID(existing.ID))
		return existing, false, nil
	case !repository.IsNotFound(err):
		return nil, false, fmt.Errorf("lookup %s: %w", email, err)
	}

	role, err := cfg.Credentials.GetRoleByName(ctx, repository.RoleAdmin)
	if err != nil {
		return nil, false, fmt.Errorf("admin role: %w", err)
	}
	hash, err := cfg.Hasher.Hash(cfg.Password)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}

	name := cfg.FullName
	if name == "" {
		name = "Administrator"
	}
	u, err := cfg.Credentials.Create(ctx, repository.CreateUserInput{
		FullName:     name,
		Email:        email,
		PasswordHash: hash,
		RoleID:       role.ID,
	})
	if err != nil {
		if repository.IsConflict(err) {
			return nil, false, ErrAdminExists
		}
		return nil, false, fmt.Errorf("create admin: %w", err)
	}
	audit.Log(ctx, audit.EventAdminCreated, logger.UserID(u.ID), logger.Email(u.Email), logger.Role(role.Name))
	return u, true, nil
}

// TerminalPrompt asks for an email on in and reads the password twice without echo
// when in is a terminal.
func TerminalPrompt(in *os.File, out io.Writer) func() (string, string, error) {
	return func() (string, string, error) {
		reader := bufio.NewReader(in)
		fmt.Fprint(out, "Admin email: ")
		email, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", "", err
		}
		email = strings.TrimSpace(email)

		readSecret := func(label string) (string, error) {
			fmt.Fprint(out, label)
			if term.IsTerminal(int(in.Fd())) {
				b, err := term.ReadPassword(int(in.Fd()))
				fmt.Fprintln(out)
				return string(b), err
			}
			line, err := reader.ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				return "", err
			}
			return strings.TrimRight(line, "\r\n"), nil
		}

		pw, err := readSecret("Admin password: ")
		if err != nil {
			return "", "", err
		}
		confirm, err := readSecret("Confirm password: ")
		if err != nil {
			return "", "", err
		}
		if pw != confirm {
			return "", "", ErrPasswordsDiffer
		}
		return email, pw, nil
	}
}
