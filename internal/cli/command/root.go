package command

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/jobboard-go/internal/cli/config"
	"github.com/yndnr/jobboard-go/internal/cli/connection"
	"github.com/yndnr/jobboard-go/internal/cli/output"
	"github.com/yndnr/jobboard-go/internal/infra/buildinfo"
)

// requestTimeout bounds each server call.
const requestTimeout = 30 * time.Second

const settingsKey = "settings"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "jobboard-cli",
		Usage:   "Job board command-line client",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			LoginCommand(),
			LogoutCommand(),
			JobCommand(),
			ApplicationCommand(),
			TokenCommand(),
		},
		Before: loadSettings,
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "CLI config file",
			EnvVars: []string{"JOBBOARD_CLI_CONFIG"},
			Value:   config.DefaultConfigPath(),
		},
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "Server URL (e.g., http://127.0.0.1:5000)",
			EnvVars: []string{"JOBBOARD_SERVER"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.StringFlag{
			Name:    "token",
			Usage:   "Session token (defaults to the one saved by login)",
			EnvVars: []string{"JOBBOARD_TOKEN"},
		},
	}
}

// Settings are the effective global options: flags and environment over
// the config file over defaults.
type Settings struct {
	Server string
	Output output.Format
	Token  string

	ConfigPath string
	File       *config.CLIConfig
}

func loadSettings(c *cli.Context) error {
	path := c.String("config")
	file, err := config.Load(path)
	if err != nil {
		return err
	}

	s := &Settings{
		Server:     file.Server,
		Token:      file.Token,
		ConfigPath: path,
		File:       file,
	}
	if c.IsSet("server") {
		s.Server = c.String("server")
	}
	if c.IsSet("token") {
		s.Token = c.String("token")
	}

	outputFlag := file.Output
	if c.IsSet("output") {
		outputFlag = c.String("output")
	}
	if s.Output, err = output.ParseFormat(outputFlag); err != nil {
		return err
	}

	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]any)
	}
	c.App.Metadata[settingsKey] = s
	return nil
}

// GetSettings retrieves the settings resolved by the app's Before hook.
func GetSettings(c *cli.Context) *Settings {
	if s, ok := c.App.Metadata[settingsKey].(*Settings); ok {
		return s
	}
	return &Settings{Server: config.Default().Server, Output: output.FormatTable, File: config.Default()}
}

func newClient(c *cli.Context) *connection.HTTPClient {
	s := GetSettings(c)
	return connection.NewHTTPClient(s.Server, s.Token, "jobboard-cli/"+buildinfo.Get().Version)
}

func requestContext(c *cli.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context, requestTimeout)
}

// render writes data to the app writer. columns apply to table output of
// document lists.
func render(c *cli.Context, data any, columns ...string) error {
	return output.NewFormatter(GetSettings(c).Output, columns).Format(c.App.Writer, data)
}

// call sends one request and decodes the response into target.
func call(c *cli.Context, method, path string, body, target any) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := newClient(c).Do(ctx, method, path, body)
	if err != nil {
		return err
	}
	return connection.ParseResponse(resp, target)
}

// requireArg returns the n-th positional argument.
func requireArg(c *cli.Context, n int, name string) (string, error) {
	v := c.Args().Get(n)
	if v == "" {
		return "", fmt.Errorf("%s required", name)
	}
	return v, nil
}

func escape(segment string) string {
	return url.PathEscape(segment)
}

// parseFields turns KEY=VALUE pairs into a document. A value that is a
// JSON number, boolean or null keeps that type; anything else is a string.
func parseFields(pairs []string) (map[string]any, error) {
	doc := make(map[string]any, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid field %q, want KEY=VALUE", p)
		}
		doc[key] = fieldValue(value)
	}
	return doc, nil
}

func fieldValue(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	if n, ok := parseNumber(s); ok {
		return n
	}
	return s
}

// parseNumber accepts plain integers and decimals, normalized so the
// result is always a valid JSON number.
func parseNumber(s string) (json.Number, bool) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return json.Number(strconv.FormatInt(n, 10)), true
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' && r != '-' {
			return "", false
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return json.Number(strconv.FormatFloat(f, 'f', -1, 64)), true
	}
	return "", false
}
