package command

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/jobboard-go/internal/cli/config"
	"github.com/yndnr/jobboard-go/internal/cli/connection"
)

// LoginCommand exchanges an email for a session token.
func LoginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Obtain a session token and save it",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "email",
				Aliases:  []string{"e"},
				Usage:    "Identity to log in as",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "no-save",
				Usage: "Print the token without saving it to the config file",
			},
		},
		Action: login,
	}
}

// LogoutCommand expires the session and forgets the saved token.
func LogoutCommand() *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "End the session and remove the saved token",
		Action: logout,
	}
}

func login(c *cli.Context) error {
	email := strings.TrimSpace(c.String("email"))

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := newClient(c).Post(ctx, "/jwt", map[string]string{"email": email})
	if err != nil {
		return err
	}
	token := connection.SessionToken(resp)
	if err := connection.ParseResponse(resp, nil); err != nil {
		return err
	}
	if token == "" {
		return errors.New("server did not set a session cookie")
	}

	if !c.Bool("no-save") {
		s := GetSettings(c)
		s.File.Token = token
		s.File.Email = email
		if err := config.Save(s.File, s.ConfigPath); err != nil {
			return fmt.Errorf("save token: %w", err)
		}
		fmt.Fprintf(c.App.ErrWriter, "Logged in as %s; token saved to %s\n", email, s.ConfigPath)
	}
	fmt.Fprintln(c.App.Writer, token)
	return nil
}

func logout(c *cli.Context) error {
	if err := call(c, http.MethodPost, "/logout", nil, nil); err != nil {
		return err
	}

	s := GetSettings(c)
	if s.File.Token != "" {
		s.File.Token = ""
		s.File.Email = ""
		if err := config.Save(s.File, s.ConfigPath); err != nil {
			return fmt.Errorf("clear token: %w", err)
		}
	}
	fmt.Fprintln(c.App.Writer, "Logged out.")
	return nil
}
