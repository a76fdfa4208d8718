package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"vidu-cli/internal/config"
	"vidu-cli/internal/vidu"
)

func runSubmit(args []string) error {
	fs := flag.NewFlagSet("submit", flag.ContinueOnError)
	model := fs.String("model", vidu.DefaultModel, "model: viduq1|viduq1-classic|vidu2.0|vidu1.5")
	image := fs.String("image", vidu.DefaultImage, "image URL or data URL (base64)")
	prompt := fs.String("prompt", vidu.DefaultPrompt, "text prompt")
	duration := fs.String("duration", "", "clip duration in seconds (empty = service default)")
	seed := fs.String("seed", "", "generation seed (empty = random)")
	resolution := fs.String("resolution", "", "output resolution: 360p|720p|1080p")
	amplitude := fs.String("movement-amplitude", vidu.DefaultMovementAmplitude, "camera movement: auto|small|medium|large")
	bgm := fs.String("bgm", "", "add background music: true|false")
	payload := fs.String("payload", "", "opaque payload string passed through to callbacks")
	offPeak := fs.String("off-peak", "false", "queue during off-peak hours: true|false")
	watermark := fs.String("watermark", "", "add watermark: true|false")
	callbackURL := fs.String("callback-url", "", "completion callback URL")
	jsonOut := fs.Bool("json", false, "print JSON output")

	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	req, err := buildGenerationRequest(submitFlags{
		Model:       *model,
		Image:       *image,
		Prompt:      *prompt,
		Duration:    *duration,
		Seed:        *seed,
		Resolution:  *resolution,
		Amplitude:   *amplitude,
		BGM:         *bgm,
		Payload:     *payload,
		OffPeak:     *offPeak,
		Watermark:   *watermark,
		CallbackURL: *callbackURL,
	})
	if err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	client := vidu.NewClient(cfg)

	if !*jsonOut {
		fmt.Printf("POST %s\n", client.SubmitURL())
		fmt.Println("payload:")
		fmt.Println(prettyJSON(req))
	}

	resp, err := client.Submit(context.Background(), req)
	if err != nil {
		var apiErr *vidu.APIError
		if errors.As(err, &apiErr) {
			fmt.Fprintf(os.Stderr, "request failed: %s\n", apiErr.Status)
			fmt.Fprintln(os.Stderr, prettyJSONBytes(apiErr.Body))
			return errors.New("submission rejected by the API")
		}
		return err
	}

	if *jsonOut {
		return printJSON(resp)
	}
	fmt.Println()
	fmt.Println("response:")
	fmt.Println(prettyJSON(resp))
	return nil
}

type submitFlags struct {
	Model       string
	Image       string
	Prompt      string
	Duration    string
	Seed        string
	Resolution  string
	Amplitude   string
	BGM         string
	Payload     string
	OffPeak     string
	Watermark   string
	CallbackURL string
}

// buildGenerationRequest translates flag values into a wire request, leaving
// untouched options out entirely so they are omitted from the body.
func buildGenerationRequest(f submitFlags) (*vidu.GenerationRequest, error) {
	req := &vidu.GenerationRequest{
		Model:             strings.TrimSpace(f.Model),
		Prompt:            f.Prompt,
		Resolution:        strings.TrimSpace(f.Resolution),
		MovementAmplitude: strings.TrimSpace(f.Amplitude),
		Payload:           f.Payload,
		CallbackURL:       strings.TrimSpace(f.CallbackURL),
	}
	if img := strings.TrimSpace(f.Image); img != "" {
		req.Images = []string{img}
	}

	var err error
	if req.Duration, err = parseOptionalInt("duration", f.Duration); err != nil {
		return nil, err
	}
	if req.Seed, err = parseOptionalInt("seed", f.Seed); err != nil {
		return nil, err
	}
	if req.BGM, err = parseOptionalBoolFlag("bgm", f.BGM); err != nil {
		return nil, err
	}
	if req.OffPeak, err = parseOptionalBoolFlag("off-peak", f.OffPeak); err != nil {
		return nil, err
	}
	if req.Watermark, err = parseOptionalBoolFlag("watermark", f.Watermark); err != nil {
		return nil, err
	}
	return req, nil
}

func parseOptionalInt(name, raw string) (*int, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("invalid --%s %q (expected a non-negative integer)", name, raw)
	}
	return &n, nil
}

func parseOptionalBoolFlag(name, raw string) (*bool, error) {
	b, err := vidu.ParseOptionalBool(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return b, nil
}
