package command

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/urfave/cli/v2"
)

var applicationColumns = []string{"_id", "job_id", "application_email", "title", "company", "status"}

// ApplicationCommand returns the application subcommand group.
func ApplicationCommand() *cli.Command {
	return &cli.Command{
		Name:    "application",
		Aliases: []string{"app"},
		Usage:   "Submit and review job applications",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List your own applications (needs a session)",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "email",
						Aliases: []string{"e"},
						Usage:   "Applicant address (defaults to the logged-in identity)",
					},
				},
				Action: applicationList,
			},
			{
				Name:      "for-job",
				Usage:     "List the applications to a job",
				ArgsUsage: "JOB_ID",
				Action:    applicationsForJob,
			},
			{
				Name:  "submit",
				Usage: "Apply to a job",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "job-id",
						Aliases:  []string{"j"},
						Usage:    "Job to apply to",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Applicant address",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:    "field",
						Aliases: []string{"f"},
						Usage:   "Extra field as KEY=VALUE (repeatable)",
					},
				},
				Action: applicationSubmit,
			},
			{
				Name:      "status",
				Usage:     "Set the status of an application",
				ArgsUsage: "APPLICATION_ID STATUS",
				Action:    applicationStatus,
			},
		},
	}
}

func applicationList(c *cli.Context) error {
	email := c.String("email")
	if email == "" {
		email = GetSettings(c).File.Email
	}
	if email == "" {
		return errors.New("--email required (no saved login)")
	}

	var apps []map[string]any
	if err := call(c, http.MethodGet, "/job-applications?email="+url.QueryEscape(email), nil, &apps); err != nil {
		return err
	}
	return render(c, apps, applicationColumns...)
}

func applicationsForJob(c *cli.Context) error {
	jobID, err := requireArg(c, 0, "job ID")
	if err != nil {
		return err
	}

	var apps []map[string]any
	if err := call(c, http.MethodGet, "/job-applications/jobs/"+escape(jobID), nil, &apps); err != nil {
		return err
	}
	return render(c, apps, applicationColumns...)
}

func applicationSubmit(c *cli.Context) error {
	doc, err := parseFields(c.StringSlice("field"))
	if err != nil {
		return err
	}
	doc["job_id"] = c.String("job-id")
	doc["application_email"] = c.String("email")

	var result insertResult
	if err := call(c, http.MethodPost, "/job-applications", doc, &result); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, result.InsertedID)
	return nil
}

func applicationStatus(c *cli.Context) error {
	id, err := requireArg(c, 0, "application ID")
	if err != nil {
		return err
	}
	status, err := requireArg(c, 1, "status")
	if err != nil {
		return err
	}

	var result struct {
		ModifiedCount int `json:"modifiedCount"`
	}
	if err := call(c, http.MethodPatch, "/job-applications/"+escape(id), map[string]string{"status": status}, &result); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Application %s set to %q.\n", id, status)
	return nil
}
