package command

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/urfave/cli/v2"
)

var jobColumns = []string{"_id", "title", "company", "location", "hr_email", "applicationCount"}

// insertResult mirrors the server's insert acknowledgement.
type insertResult struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

// JobCommand returns the job subcommand group.
func JobCommand() *cli.Command {
	return &cli.Command{
		Name:  "job",
		Usage: "Browse and post jobs",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List jobs",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "email",
						Aliases: []string{"e"},
						Usage:   "Only jobs posted by this address",
					},
				},
				Action: jobList,
			},
			{
				Name:      "get",
				Usage:     "Show one job",
				ArgsUsage: "JOB_ID",
				Action:    jobGet,
			},
			{
				Name:  "create",
				Usage: "Post a job",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     "field",
						Aliases:  []string{"f"},
						Usage:    "Job field as KEY=VALUE (repeatable)",
						Required: true,
					},
				},
				Action: jobCreate,
			},
		},
	}
}

func jobList(c *cli.Context) error {
	path := "/jobs"
	if email := c.String("email"); email != "" {
		path += "?email=" + url.QueryEscape(email)
	}

	var jobs []map[string]any
	if err := call(c, http.MethodGet, path, nil, &jobs); err != nil {
		return err
	}
	return render(c, jobs, jobColumns...)
}

func jobGet(c *cli.Context) error {
	id, err := requireArg(c, 0, "job ID")
	if err != nil {
		return err
	}

	var job map[string]any
	if err := call(c, http.MethodGet, "/jobs/"+escape(id), nil, &job); err != nil {
		return err
	}
	return render(c, job)
}

func jobCreate(c *cli.Context) error {
	doc, err := parseFields(c.StringSlice("field"))
	if err != nil {
		return err
	}

	var result insertResult
	if err := call(c, http.MethodPost, "/jobs", doc, &result); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, result.InsertedID)
	return nil
}
