package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/blackwell-systems/rulemine/internal/store"
)

// stdin is swapped out by tests.
var stdin io.Reader = os.Stdin

// stdinIsTTY reports whether prompts can be answered interactively.
func stdinIsTTY() bool {
	f, ok := stdin.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// promptLine prints prompt and reads one trimmed line from r.
func promptLine(r *bufio.Reader, prompt string) (string, error) {
	fmt.Print(prompt)
	response, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && response != "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(response), nil
}

// resolvePaths returns the input and report paths from args, prompting for
// the missing ones when interactive is set.
func resolvePaths(args []string, interactive bool) (input, report string, err error) {
	if len(args) > 0 {
		input = args[0]
	}
	if len(args) > 1 {
		report = args[1]
	}
	if input != "" && report != "" {
		return input, report, nil
	}
	if !interactive {
		return "", "", errors.New("missing paths: usage: rulemine mine <input> <report>")
	}

	reader := bufio.NewReader(stdin)
	if input == "" {
		if input, err = promptLine(reader, "Please enter the path to the browsing file: "); err != nil {
			return "", "", err
		}
	}
	if report == "" {
		if report, err = promptLine(reader, "Please enter the path to the logging file: "); err != nil {
			return "", "", err
		}
	}
	if input == "" || report == "" {
		return "", "", errors.New("missing paths: both an input and a report path are required")
	}
	return input, report, nil
}

// openStore opens the run database. With create set the schema is created
// when missing; otherwise an uninitialized database yields
// store.ErrNotInitialized from the first query.
func openStore(create bool) (*store.Store, error) {
	path, err := getDBPath()
	if err != nil {
		return nil, err
	}

	st, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if create {
		if err := st.CreateSchema(); err != nil {
			st.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return st, nil
}

// resolveRun returns the run named by id, or the latest run when id is
// empty.
func resolveRun(st *store.Store, id string) (*store.Run, error) {
	if id == "" {
		return st.LatestRun()
	}
	return st.GetRun(id)
}

// friendlyError rewrites store errors into actionable messages.
func friendlyError(err error) error {
	switch {
	case errors.Is(err, store.ErrNotInitialized):
		return store.ErrNotInitialized
	case errors.Is(err, store.ErrRunNotFound):
		return fmt.Errorf("%w\nRun 'rulemine runs' to list stored runs", err)
	}
	return err
}
