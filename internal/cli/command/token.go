package command

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/jobboard-go/pkg/token"
)

// credential is what "token verify" prints.
type credential struct {
	Email     string    `json:"email" yaml:"email"`
	IssuedAt  time.Time `json:"issued_at" yaml:"issued_at"`
	ExpiresAt time.Time `json:"expires_at" yaml:"expires_at"`
}

// TokenCommand signs and checks session tokens locally with the server
// secret, without contacting the server.
func TokenCommand() *cli.Command {
	secretFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:     "secret",
			Usage:    "Server signing secret",
			EnvVars:  []string{"JOBBOARD_SECURITY_JWT_SECRET"},
			Required: true,
		}
	}

	return &cli.Command{
		Name:  "token",
		Usage: "Issue or inspect session tokens offline",
		Subcommands: []*cli.Command{
			{
				Name:  "issue",
				Usage: "Sign a session token",
				Flags: []cli.Flag{
					secretFlag(),
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Identity to put in the token",
						Required: true,
					},
					&cli.DurationFlag{
						Name:  "ttl",
						Usage: "Token lifetime",
						Value: time.Hour,
					},
				},
				Action: tokenIssue,
			},
			{
				Name:      "verify",
				Usage:     "Check a token and show its claims",
				ArgsUsage: "TOKEN",
				Flags:     []cli.Flag{secretFlag()},
				Action:    tokenVerify,
			},
		},
	}
}

func newCodec(c *cli.Context) (*token.Codec, error) {
	secret := c.String("secret")
	if len(secret) < token.MinSecretLength {
		return nil, fmt.Errorf("secret must be at least %d bytes", token.MinSecretLength)
	}
	return token.NewCodec([]byte(secret))
}

func tokenIssue(c *cli.Context) error {
	codec, err := newCodec(c)
	if err != nil {
		return err
	}
	if c.Duration("ttl") <= 0 {
		return fmt.Errorf("--ttl must be positive")
	}

	raw, _, err := codec.Sign(c.String("email"), c.Duration("ttl"))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, raw)
	return nil
}

func tokenVerify(c *cli.Context) error {
	raw, err := requireArg(c, 0, "token")
	if err != nil {
		return err
	}
	codec, err := newCodec(c)
	if err != nil {
		return err
	}

	claims, err := codec.Parse(raw)
	if err != nil {
		return err
	}
	cred := credential{Email: claims.Email}
	if claims.IssuedAt != nil {
		cred.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		cred.ExpiresAt = claims.ExpiresAt.Time
	}
	return render(c, cred)
}
