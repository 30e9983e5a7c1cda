package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/keygate/internal/client/client"
	"github.com/dmitrijs2005/keygate/internal/common"
)

var errNotLoggedIn = errors.New("not logged in; run 'login' first")

func (a *App) Register(ctx context.Context) error {
	userName, err := GetSimpleText(a.reader, "Enter user name", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	secret, err := getPassword(a.out, "Admin secret (leave empty for a regular account)")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(secret)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	u, err := a.api.Register(ctx, userName, string(password), string(secret))
	if err != nil {
		return err
	}

	a.printf("Registered %s (admin: %t)\n", u.Username, u.IsAdmin)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	userName, err := GetSimpleText(a.reader, "Enter user name", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	tok, err := a.api.Login(ctx, userName, string(password))
	if err != nil {
		return err
	}

	if err := a.tokens.Save(tok); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	a.token = tok
	a.userName = userName

	a.printf("Login successful\n")
	return nil
}

func (a *App) Logout(context.Context) error {
	a.token = ""
	a.userName = ""
	if err := a.tokens.Clear(); err != nil {
		return err
	}
	a.printf("Logged out\n")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	name, err := a.api.Me(ctx, a.token)
	if err != nil {
		return a.authFailed(err)
	}
	a.userName = name
	a.printf("%s\n", name)
	return nil
}

func (a *App) Users(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	users, err := a.api.ListUsers(ctx, a.token)
	if err != nil {
		return a.authFailed(err)
	}
	for _, u := range users {
		role := "regular"
		if u.IsAdmin {
			role = "admin"
		}
		a.printf("%-24s %s\n", u.Username, role)
	}
	return nil
}

func (a *App) SetRole(ctx context.Context, target string, makeAdmin bool) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	if target == "" {
		return errors.New("user name required")
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	var (
		u   *client.User
		err error
	)
	if makeAdmin {
		u, err = a.api.Promote(ctx, a.token, target)
	} else {
		u, err = a.api.Demote(ctx, a.token, target)
	}
	if err != nil {
		return a.authFailed(err)
	}
	a.printf("%s is now %s\n", u.Username, map[bool]string{true: "an admin", false: "a regular user"}[u.IsAdmin])
	return nil
}

func (a *App) Array(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	arr, err := a.api.Array(ctx, a.token)
	if err != nil {
		return a.authFailed(err)
	}
	for i, v := range arr {
		a.printf("%d: %v\n", i, v)
	}
	return nil
}

// authFailed drops a token the server no longer accepts.
func (a *App) authFailed(err error) error {
	if errors.Is(err, client.ErrUnauthorized) {
		a.token = ""
		_ = a.tokens.Clear()
		return fmt.Errorf("session expired, please log in again: %w", err)
	}
	return err
}

// Exec runs one command. It reports whether the caller should stop.
func (a *App) Exec(ctx context.Context, cmd string, args []string) (bool, error) {
	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}

	switch strings.ToLower(cmd) {
	case "help":
		if a.isLoggedIn() {
			a.printf("Available commands: whoami, users, promote <user>, demote <user>, array, logout, exit\n")
		} else {
			a.printf("Available commands: register, login, exit\n")
		}
		return false, nil
	case "register":
		return false, a.Register(ctx)
	case "login":
		return false, a.Login(ctx)
	case "logout":
		return false, a.Logout(ctx)
	case "whoami", "me":
		return false, a.WhoAmI(ctx)
	case "users":
		return false, a.Users(ctx)
	case "promote":
		return false, a.SetRole(ctx, arg, true)
	case "demote":
		return false, a.SetRole(ctx, arg, false)
	case "array":
		return false, a.Array(ctx)
	case "exit", "quit":
		a.printf("Bye!\n")
		return true, nil
	default:
		return false, fmt.Errorf("unknown command: %s", cmd)
	}
}
