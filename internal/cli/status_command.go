package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"vidu-cli/internal/config"
	"vidu-cli/internal/model"
	"vidu-cli/internal/vidu"
)

type statusReport struct {
	TaskID       string         `json:"task_id"`
	State        string         `json:"state,omitempty"`
	Terminal     bool           `json:"terminal"`
	ViaURL       string         `json:"via_url,omitempty"`
	Queries      int            `json:"queries"`
	Response     map[string]any `json:"response"`
	VideoURL     string         `json:"video_url,omitempty"`
	DownloadedTo string         `json:"downloaded_to,omitempty"`
}

func runStatus(args []string) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	taskID := fs.String("task-id", "", "task id from the submit response (required)")
	wait := fs.Bool("wait", false, "poll until the task reaches success or failed")
	interval := fs.Duration("interval", vidu.DefaultPollInterval, "polling interval")
	timeout := fs.Duration("timeout", vidu.DefaultPollTimeout, "polling timeout")
	download := fs.String("download", "", "download the video to this path when available")
	verbose := fs.Bool("verbose", false, "log each endpoint attempt")
	urlTemplate := fs.String("url", "", "override endpoint URL template; use a {task_id} placeholder")
	method := fs.String("method", http.MethodGet, "HTTP method when using --url: GET|POST")
	jsonOut := fs.Bool("json", false, "print JSON output")

	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	if strings.TrimSpace(*taskID) == "" {
		return errors.New("--task-id is required")
	}
	override, err := endpointOverride(*urlTemplate, *method)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	client := vidu.NewClient(cfg)
	client.Verbose = *verbose

	poller := &vidu.Poller{
		Client:   client,
		Interval: *interval,
		Timeout:  *timeout,
		Wait:     *wait,
		Override: override,
	}
	if !*jsonOut {
		poller.OnTransition = func(state, viaURL string) {
			if state == "" {
				state = "(none)"
			}
			fmt.Printf("state: %s (via %s)\n", state, viaURL)
		}
	}

	outcome, err := poller.Run(context.Background(), strings.TrimSpace(*taskID))
	if errors.Is(err, vidu.ErrPollTimeout) {
		return exitWithCode(2, err)
	}
	if err != nil {
		return err
	}

	return reportOutcome(client, strings.TrimSpace(*taskID), outcome, *download, *jsonOut)
}

func endpointOverride(urlTemplate, method string) (*vidu.EndpointOverride, error) {
	template := strings.TrimSpace(urlTemplate)
	if template == "" {
		return nil, nil
	}
	m := strings.ToUpper(strings.TrimSpace(method))
	if m != http.MethodGet && m != http.MethodPost {
		return nil, fmt.Errorf("invalid --method %q (expected GET or POST)", method)
	}
	return &vidu.EndpointOverride{URLTemplate: template, Method: m}, nil
}

// reportOutcome prints the terminal (or single-shot) observation and, on
// success, extracts and optionally downloads the video. A failed task maps
// to exit status 1; a missing video URL is reported but not fatal.
func reportOutcome(client *vidu.Client, taskID string, outcome vidu.PollOutcome, downloadPath string, jsonOut bool) error {
	report := statusReport{
		TaskID:   taskID,
		State:    outcome.State,
		Terminal: outcome.Terminal(),
		ViaURL:   outcome.ViaURL,
		Queries:  outcome.Queries,
		Response: outcome.Body,
	}

	if outcome.State == model.StateSuccess {
		if videoURL, ok := vidu.ExtractVideoURL(outcome.Body); ok {
			report.VideoURL = videoURL
		}
	}

	if !jsonOut {
		fmt.Println()
		fmt.Println("full response:")
		fmt.Println(prettyJSON(outcome.Body))
		if outcome.State == model.StateSuccess {
			if report.VideoURL != "" {
				fmt.Printf("\nvideo URL: %s\n", report.VideoURL)
			} else {
				fmt.Println("\ncould not auto-detect a video URL in the response; check the fields above")
			}
		}
	}

	if report.VideoURL != "" && downloadPath != "" {
		if !jsonOut {
			fmt.Printf("downloading to: %s\n", downloadPath)
		}
		start := time.Now()
		if err := client.Download(context.Background(), report.VideoURL, downloadPath); err != nil {
			return err
		}
		report.DownloadedTo = downloadPath
		if !jsonOut {
			fmt.Printf("download complete (%s in %s)\n", downloadedSize(downloadPath), time.Since(start).Round(time.Millisecond))
		}
	}

	if jsonOut {
		if err := printJSON(report); err != nil {
			return err
		}
	}

	if outcome.State == model.StateFailed {
		return fmt.Errorf("task %s failed", taskID)
	}
	return nil
}

func downloadedSize(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return "unknown size"
	}
	return formatBytesIEC(info.Size())
}
