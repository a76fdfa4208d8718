package cli

import (
	"fmt"

	"vidu-cli/internal/version"
)

func Run(args []string) error {
	if len(args) == 0 {
		printRootUsage()
		return nil
	}

	switch args[0] {
	case "submit":
		return runSubmit(args[1:])
	case "status":
		return runStatus(args[1:])
	case "watch":
		return runWatch(args[1:])
	case "doctor":
		return runDoctor(args[1:])
	case "version":
		fmt.Println(version.Value)
		return nil
	case "help", "-h", "--help":
		printRootUsage()
		return nil
	default:
		printRootUsage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printRootUsage() {
	fmt.Println("vidu-cli: image-to-video generation from the command line")
	fmt.Println()
	fmt.Println("Quick Start:")
	fmt.Println("  export VIDU_API_KEY=<your key>   (or put it in a .env file)")
	fmt.Println("  vidu-cli submit --image <url> --prompt \"...\"")
	fmt.Println("  vidu-cli status --task-id <id> --wait --download out.mp4")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  submit   submit an image-to-video generation request")
	fmt.Println("  status   query task status; optionally poll and download the result")
	fmt.Println("  watch    live terminal view of a task until it finishes")
	fmt.Println("  doctor   run credential and configuration preflight checks")
	fmt.Println("  version  print the CLI version")
	fmt.Println()
	fmt.Println("Notes:")
	fmt.Println("  - Use --json on commands for machine-readable output")
	fmt.Println("  - VIDU_API_BASE overrides the API base URL")
}
