package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"genka/internal/validate"
)

// errInvalid makes the command exit non-zero after the report was printed.
var errInvalid = errors.New("document failed validation")

func (a *app) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [document.json]",
		Short: "Check a construction cost document for internal consistency",
		Long: `check reads a cost document (basic_info, work_categories, duration) and
verifies that the contract amount matches the line items, that every line
amount equals quantity times unit price, and that the stated duration matches
the number of days between its dates.

The report is printed as JSON. Reads stdin when no file is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			doc, err := validate.ParseDocument(data)
			if err != nil {
				return err
			}
			rep := validate.Doc(doc)
			a.logger.Debug("Document checked", "valid", rep.Valid, "count", rep.Count)
			if err := writeJSON(a.stdout, rep); err != nil {
				return err
			}
			if !rep.Valid {
				return errInvalid
			}
			return nil
		},
	}
}

func (a *app) placeholdersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "placeholders [file]",
		Short: "List placeholder text left in a construction plan",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			rep := validate.ScanPlaceholders(string(data))
			return writeJSON(a.stdout, rep)
		},
	}
}

func readInput(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", args[0], err)
	}
	return data, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
