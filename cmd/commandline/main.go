package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/ethanbaker/soundscript/pkg/sdk"
	"github.com/ethanbaker/soundscript/pkg/utils"
	"github.com/rs/zerolog/log"
)

const usage = `Commands:
  process <path>   upload an audio file and run every step on the server
  upload <path>    transcribe an audio file without saving it
  list             list saved transcriptions, newest first
  show <id>        show a transcription with its summary
  delete <id>      delete a transcription and its summaries
  health           check the backend
  help             show this message
  exit             quit`

var errExit = errors.New("exit")

func main() {
	// Find env file
	envFile := ".env"
	if os.Getenv("ENV_FILE") != "" {
		envFile = os.Getenv("ENV_FILE")
	}

	// Load global config
	cfg := utils.NewConfigFromEnv(envFile)
	utils.SetupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := sdk.NewClient(cfg.GetWithDefault("API_URL", "http://localhost:8080"), cfg.Get("API_KEY"))

	// Run a single command when one is given
	if len(os.Args) > 1 {
		if err := runCommand(ctx, client, os.Stdout, os.Args[1:]); err != nil && !errors.Is(err, errExit) {
			log.Fatal().Err(err).Msg("[COMMANDLINE]: command failed")
		}
		return
	}

	if err := startInteractiveSession(ctx, client, os.Stdin, os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("[COMMANDLINE]: interactive session failed")
	}
}

// startInteractiveSession reads commands line by line until exit or EOF
func startInteractiveSession(ctx context.Context, client *sdk.Client, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "SoundScript command line. Type 'help' for commands, 'exit' to quit.")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\n> ")

		if !scanner.Scan() {
			break
		}

		args := strings.Fields(scanner.Text())
		if len(args) == 0 {
			continue
		}

		err := runCommand(ctx, client, out, args)
		if errors.Is(err, errExit) {
			break
		}
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}

	return nil
}

// runCommand executes one command against the backend
func runCommand(ctx context.Context, client *sdk.Client, out io.Writer, args []string) error {
	switch args[0] {
	case "exit", "quit":
		return errExit

	case "help":
		fmt.Fprintln(out, usage)
		return nil

	case "health":
		if err := client.Health(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "OK")
		return nil

	case "list":
		listings, err := client.ListTranscriptions(ctx)
		if err != nil {
			return err
		}
		if len(listings) == 0 {
			fmt.Fprintln(out, "No transcriptions")
			return nil
		}
		for _, l := range listings {
			fmt.Fprintf(out, "%d\t%s\t%s\t%s\n", l.ID, l.Date, l.FileName, deref(l.Keywords))
		}
		return nil

	case "show":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		detail, err := client.GetTranscription(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s (%s)\n\n%s\n", detail.FileName, detail.Date, detail.Transcript)
		if detail.HasSummary() {
			fmt.Fprintf(out, "\nSummary:\n%s\n\nKeywords: %s\n", deref(detail.Summary), deref(detail.Keywords))
		}
		return nil

	case "delete":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		if err := client.DeleteTranscription(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted transcription %d\n", id)
		return nil

	case "upload", "process":
		if len(args) < 2 {
			return fmt.Errorf("usage: %s <path>", args[0])
		}
		return sendFile(ctx, client, out, args[0], args[1])
	}

	return fmt.Errorf("unknown command %q, type 'help' for commands", args[0])
}

// sendFile uploads an audio file through either the upload or process route
func sendFile(ctx context.Context, client *sdk.Client, out io.Writer, command, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	name := filepath.Base(path)

	if command == "upload" {
		resp, err := client.Upload(ctx, name, file)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d chunks\n\n%s\n", len(resp.TranscriptionChunks), resp.FullTranscription)
		return nil
	}

	resp, err := client.Process(ctx, name, file)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Run %s finished in state %s\n", resp.Run.ID, resp.Run.State)
	fmt.Fprintf(out, "Transcription %d: %s\n\nSummary:\n%s\n\nKeywords: %s\n",
		resp.Run.TranscriptionID, resp.Run.FileName, resp.Run.Summary, resp.Run.Keywords)
	return nil
}

func parseID(args []string) (uint, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("usage: %s <id>", args[0])
	}
	id, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid transcription id %q", args[1])
	}
	return uint(id), nil
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
