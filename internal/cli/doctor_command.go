package cli

import (
	"errors"
	"flag"
	"fmt"

	"vidu-cli/internal/config"
)

func runDoctor(args []string) error {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	res := config.Doctor()
	if *jsonOut {
		if err := printJSON(res); err != nil {
			return err
		}
		if !res.OK {
			return errors.New("doctor checks failed")
		}
		return nil
	}

	for _, c := range res.Checks {
		status := "ok"
		if !c.OK {
			status = "fail"
		}
		fmt.Printf("%s: %s (%s)\n", c.Name, status, c.Message)
	}
	if !res.OK {
		return errors.New("doctor checks failed")
	}
	fmt.Println("doctor: all checks passed")
	return nil
}
